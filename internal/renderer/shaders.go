package renderer

// File names looked up in Config.ShaderDir. Missing files fall back to the
// built-in sources below.
const (
	skinnedVertFile = "skinned.vert"
	skinnedFragFile = "skinned.frag"
)

const skinnedVertSrc = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aTexCoord;
layout(location = 3) in vec4 aJoints;
layout(location = 4) in vec4 aWeights;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

uniform bool uSkinned;
uniform mat4 uJoints[128];

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    mat4 skin = mat4(1.0);
    if (uSkinned) {
        float total = aWeights.x + aWeights.y + aWeights.z + aWeights.w;
        if (total > 0.0001) {
            skin = aWeights.x * uJoints[int(aJoints.x)] +
                   aWeights.y * uJoints[int(aJoints.y)] +
                   aWeights.z * uJoints[int(aJoints.z)] +
                   aWeights.w * uJoints[int(aJoints.w)];
        }
    }

    mat4 model = uModel * skin;
    vec4 worldPos = model * vec4(aPos, 1.0);
    vWorldPos = worldPos.xyz;
    vNormal = mat3(transpose(inverse(model))) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * worldPos;
}
` + "\x00"

const skinnedFragSrc = `#version 410 core
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vTexCoord;

out vec4 FragColor;

#define MAX_LIGHTS 4
#define RECIPROCAL_PI 0.3183098861837907

struct Light {
    int type;        // 0 point, 1 directional, 2 spot
    vec3 position;
    vec3 color;
    float intensity;
    float range;
};

uniform Light uLights[MAX_LIGHTS];
uniform int uLightCount;
uniform vec3 uAmbientColor;

uniform vec4 uBaseColor;
uniform bool uHasTexture;
uniform sampler2D uAlbedo;

void main() {
    vec4 albedo = uBaseColor;
    if (uHasTexture) {
        albedo *= texture(uAlbedo, vTexCoord);
    }

    vec3 N = normalize(vNormal);
    if (!gl_FrontFacing) {
        N = -N;
    }

    vec3 diffuse = albedo.rgb * RECIPROCAL_PI;
    vec3 color = uAmbientColor * diffuse;

    for (int i = 0; i < uLightCount && i < MAX_LIGHTS; i++) {
        vec3 L;
        float attenuation = 1.0;
        if (uLights[i].type == 1) {
            L = normalize(uLights[i].position);
        } else {
            vec3 toLight = uLights[i].position - vWorldPos;
            float d = length(toLight);
            L = toLight / max(d, 0.0001);
            if (uLights[i].range > 0.0) {
                float f = clamp(1.0 - pow(d / uLights[i].range, 4.0), 0.0, 1.0);
                attenuation = f * f / max(d * d, 0.01);
            } else {
                attenuation = 1.0 / max(d * d, 0.01);
            }
        }
        float NdotL = max(dot(N, L), 0.0);
        color += diffuse * uLights[i].color * uLights[i].intensity * NdotL * attenuation;
    }

    FragColor = vec4(color, albedo.a);
}
` + "\x00"
