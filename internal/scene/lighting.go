// internal/scene/lighting.go
//
// Light definitions and the portfolio lighting rig
package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType defines the type of light source
type LightType int

const (
	LightTypePoint LightType = iota
	LightTypeDirectional
	LightTypeSpot
)

// MaxLights matches the light array length in the shaders.
const MaxLights = 4

// Light represents a light source
type Light struct {
	Type      LightType
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32 // point/spot falloff distance, 0 for none
}

// LightingRig represents a collection of lights for a scene
type LightingRig struct {
	Lights           []Light
	AmbientColor     mgl32.Vec3
	AmbientIntensity float32
}

// NewPortfolioLighting is the hero art direction: bright neutral ambient
// with a violet key from the upper right.
func NewPortfolioLighting() *LightingRig {
	return &LightingRig{
		Lights: []Light{
			{
				Type:      LightTypeDirectional,
				Position:  mgl32.Vec3{5, 5, 3},
				Color:     mgl32.Vec3{0xa8 / 255.0, 0x55 / 255.0, 0xf7 / 255.0},
				Intensity: 2.0,
			},
		},
		AmbientColor:     mgl32.Vec3{1, 1, 1},
		AmbientIntensity: 1.5,
	}
}

// AddPoint appends a point light, dropping it if the rig is full.
func (rig *LightingRig) AddPoint(pos, color mgl32.Vec3, intensity, rng float32) bool {
	if len(rig.Lights) >= MaxLights {
		return false
	}
	rig.Lights = append(rig.Lights, Light{
		Type:      LightTypePoint,
		Position:  pos,
		Color:     color,
		Intensity: intensity,
		Range:     rng,
	})
	return true
}

// Ambient returns the premultiplied ambient term.
func (rig *LightingRig) Ambient() mgl32.Vec3 {
	return rig.AmbientColor.Mul(rig.AmbientIntensity)
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into linear 0..1 components.
func ParseHexColor(s string) (mgl32.Vec3, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("color %q: %w", s, err)
	}
	return mgl32.Vec3{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
