package opengl

// MaxLights is the number of point lights the scene shader evaluates.
const MaxLights = 4

// maxJoints must match scene.MaxJoints.
const maxJoints = 64

// Texture units. The displacement map is sampled in the vertex stage.
const (
	unitAlbedo = iota
	unitShadow
	unitNormal
	unitRoughness
	unitMetalness
	unitAO
	unitEmissive
	unitDisplacement
	unitSky
)

// sceneVertSrc transforms, skins and displaces one vertex. Matrices arrive
// row-major from math.Mat4 and are read as their transpose, so M * v here
// equals v * M on the CPU.
const sceneVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;
layout(location = 4) in vec3 inTangent;
layout(location = 5) in vec3 inBitangent;
layout(location = 6) in vec4 inJoints;
layout(location = 7) in vec4 inWeights;

#define MAX_JOINTS 64

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;

uniform bool skinned;
uniform mat4 jointMatrices[MAX_JOINTS];

uniform sampler2D displacementMap;
uniform bool      hasDisplacementMap;
uniform float     displacementScale;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;
out vec3 fragTangent;
out vec3 fragBitangent;

void main() {
    vec4 position  = vec4(inPosition, 1.0);
    vec3 normal    = inNormal;
    vec3 tangent   = inTangent;
    vec3 bitangent = inBitangent;

    if (skinned) {
        mat4 skin = inWeights.x * jointMatrices[int(inJoints.x)]
                  + inWeights.y * jointMatrices[int(inJoints.y)]
                  + inWeights.z * jointMatrices[int(inJoints.z)]
                  + inWeights.w * jointMatrices[int(inJoints.w)];
        position  = skin * position;
        mat3 s    = mat3(skin);
        normal    = s * normal;
        tangent   = s * tangent;
        bitangent = s * bitangent;
    }

    if (hasDisplacementMap) {
        float h = texture(displacementMap, inUV).r;
        position.xyz += normalize(normal) * h * displacementScale;
    }

    mat3 normalMat = mat3(model);
    vec4 worldPos  = model * position;

    gl_Position       = mvp * position;
    fragColor         = inColor;
    fragNormal        = normalMat * normal;
    fragUV            = inUV;
    fragWorldPos      = worldPos.xyz;
    fragLightSpacePos = lightViewProj * worldPos;
    fragTangent       = normalMat * tangent;
    fragBitangent     = normalMat * bitangent;
}
` + "\x00"

// sceneFragSrc is a metallic-roughness Cook-Torrance shader with point
// lights falling off by inverse square, optionally windowed by range.
// Output is linear; the render target encodes it for display.
const sceneFragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;
in vec3 fragTangent;
in vec3 fragBitangent;

out vec4 outColor;

#define MAX_LIGHTS 4
uniform int   lightCount;
uniform vec3  lightPos[MAX_LIGHTS];
uniform vec3  lightColor[MAX_LIGHTS];
uniform float lightIntensity[MAX_LIGHTS];
uniform float lightRange[MAX_LIGHTS];
uniform vec3  ambientColor;
uniform vec3  cameraPos;

uniform vec3  matAlbedo;
uniform float matOpacity;
uniform float matMetallic;
uniform float matRoughness;
uniform vec3  matEmissive;
uniform bool  vertexColors;
uniform bool  unlit;
uniform bool  receiveShadow;

uniform sampler2D albedoMap;
uniform bool      hasAlbedoMap;
uniform sampler2D normalMap;
uniform bool      hasNormalMap;
uniform sampler2D roughnessMap;
uniform bool      hasRoughnessMap;
uniform sampler2D metalnessMap;
uniform bool      hasMetalnessMap;
uniform sampler2D aoMap;
uniform bool      hasAOMap;
uniform sampler2D emissiveMap;
uniform bool      hasEmissiveMap;

uniform sampler2DShadow shadowMap;
uniform bool            hasShadows;
uniform int             shadowLight;
uniform float           shadowTexel;

const float PI = 3.14159265359;

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (fragLightSpacePos.w <= 0.0 || p.z > 1.0) return 1.0;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * shadowTexel, p.z - 0.0015));
        }
    }
    return shadow / 9.0;
}

float distanceAttenuation(float dist, float range) {
    float atten = 1.0 / max(dist * dist, 0.0001);
    if (range > 0.0) {
        float r = dist / range;
        float w = clamp(1.0 - r * r * r * r, 0.0, 1.0);
        atten *= w * w;
    }
    return atten;
}

float distributionGGX(float NdH, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float d  = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySchlickGGX(float cosTheta, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return cosTheta / (cosTheta * (1.0 - k) + k);
}

vec3 fresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 evalPBR(vec3 N, vec3 V, vec3 L, vec3 radiance, vec3 albedo, float metallic, float roughness, vec3 F0) {
    float NdL = max(dot(N, L), 0.0);
    if (NdL <= 0.0) return vec3(0.0);

    vec3  H   = normalize(V + L);
    float NdV = max(dot(N, V), 0.0);

    float D = distributionGGX(max(dot(N, H), 0.0), roughness);
    float G = geometrySchlickGGX(NdV, roughness) * geometrySchlickGGX(NdL, roughness);
    vec3  F = fresnelSchlick(max(dot(H, V), 0.0), F0);

    vec3 kD       = (vec3(1.0) - F) * (1.0 - metallic);
    vec3 specular = D * G * F / max(4.0 * NdV * NdL, 0.001);
    return (kD * albedo / PI + specular) * radiance * NdL;
}

void main() {
    vec4 base = vec4(matAlbedo, matOpacity);
    if (vertexColors) {
        base *= fragColor;
    }
    if (hasAlbedoMap) {
        base *= texture(albedoMap, fragUV);
    }
    if (unlit) {
        outColor = base;
        return;
    }

    vec3 N = normalize(fragNormal);
    if (!gl_FrontFacing) {
        N = -N;
    }
    if (hasNormalMap) {
        mat3 TBN = mat3(normalize(fragTangent), normalize(fragBitangent), N);
        N = normalize(TBN * (texture(normalMap, fragUV).rgb * 2.0 - 1.0));
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    float roughness = matRoughness;
    if (hasRoughnessMap) {
        roughness *= texture(roughnessMap, fragUV).g;
    }
    roughness = clamp(roughness, 0.04, 1.0);
    float metallic = matMetallic;
    if (hasMetalnessMap) {
        metallic *= texture(metalnessMap, fragUV).b;
    }
    float ao = hasAOMap ? texture(aoMap, fragUV).r : 1.0;

    vec3 albedo = base.rgb;
    vec3 F0     = mix(vec3(0.04), albedo, metallic);
    vec3 color  = ambientColor * albedo * ao;

    float shadow = (hasShadows && receiveShadow) ? calcShadow() : 1.0;
    for (int i = 0; i < lightCount && i < MAX_LIGHTS; i++) {
        vec3  toLight  = lightPos[i] - fragWorldPos;
        float dist     = length(toLight);
        vec3  radiance = lightColor[i] * lightIntensity[i] * distanceAttenuation(dist, lightRange[i]);
        if (i == shadowLight) {
            radiance *= shadow;
        }
        color += evalPBR(N, V, toLight / max(dist, 0.0001), radiance, albedo, metallic, roughness, F0);
    }

    vec3 emissive = matEmissive;
    if (hasEmissiveMap) {
        emissive *= texture(emissiveMap, fragUV).rgb;
    }
    outColor = vec4(color + emissive, base.a);
}
` + "\x00"

// depthVertSrc renders shadow casters; it skins like the scene shader so
// animated models cast matching shadows.
const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 6) in vec4 inJoints;
layout(location = 7) in vec4 inWeights;

#define MAX_JOINTS 64
uniform mat4 lightMVP;
uniform bool skinned;
uniform mat4 jointMatrices[MAX_JOINTS];

void main() {
    vec4 position = vec4(inPosition, 1.0);
    if (skinned) {
        mat4 skin = inWeights.x * jointMatrices[int(inJoints.x)]
                  + inWeights.y * jointMatrices[int(inJoints.y)]
                  + inWeights.z * jointMatrices[int(inJoints.z)]
                  + inWeights.w * jointMatrices[int(inJoints.w)];
        position = skin * position;
    }
    gl_Position = lightMVP * position;
}
` + "\x00"

const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"
