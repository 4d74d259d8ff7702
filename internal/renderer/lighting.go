// internal/renderer/lighting.go
//
// Light uniform upload for the skinned shader
package renderer

import (
	"fmt"

	"github.com/normanking/heroavatar/internal/scene"
)

// SetLightUniforms uploads the rig to the shader's uLights array. Lights
// beyond scene.MaxLights are ignored.
func SetLightUniforms(shader *Shader, rig *scene.LightingRig) {
	if rig == nil {
		shader.SetInt("uLightCount", 0)
		return
	}

	count := len(rig.Lights)
	if count > scene.MaxLights {
		count = scene.MaxLights
	}

	for i := 0; i < count; i++ {
		light := rig.Lights[i]
		prefix := fmt.Sprintf("uLights[%d].", i)

		shader.SetInt(prefix+"type", lightTypeIndex(light.Type))
		shader.SetVec3(prefix+"position", light.Position)
		shader.SetVec3(prefix+"color", light.Color)
		shader.SetFloat(prefix+"intensity", light.Intensity)
		shader.SetFloat(prefix+"range", light.Range)
	}

	shader.SetInt("uLightCount", int32(count))
	shader.SetVec3("uAmbientColor", rig.Ambient())
}

// lightTypeIndex maps scene light types to the shader's type codes.
func lightTypeIndex(t scene.LightType) int32 {
	switch t {
	case scene.LightTypeDirectional:
		return 1
	case scene.LightTypeSpot:
		return 2
	}
	return 0
}
