package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// DirectionalLight shines along -Direction (Direction points from the origin towards the light).
type DirectionalLight struct {
	Direction rl.Vector3
	Intensity float32
}

// Lighting is an ambient term plus up to maxLights directional lights, all white.
type Lighting struct {
	Ambient     float32
	Directional []DirectionalLight
}

const maxLights = 4

// DefaultLighting is a soft ambient fill with a key light from the front and a rim light
// from above and behind.
func DefaultLighting() Lighting {
	return Lighting{
		Ambient: 0.7,
		Directional: []DirectionalLight{
			{Direction: rl.NewVector3(0, 0, 1), Intensity: 0.5},
			{Direction: rl.NewVector3(0, 1, -1), Intensity: 0.3},
		},
	}
}

// litShader wraps the lit program and the uniform locations set once per frame.
type litShader struct {
	shader       rl.Shader
	viewPosLoc   int32
	ambientLoc   int32
	countLoc     int32
	dirsLoc      int32
	intensityLoc int32
}

func loadLitShader() *litShader {
	s := rl.LoadShaderFromMemory(litVS, litFS)
	if !rl.IsShaderValid(s) {
		return nil
	}
	return &litShader{
		shader:       s,
		viewPosLoc:   rl.GetShaderLocation(s, "viewPos"),
		ambientLoc:   rl.GetShaderLocation(s, "ambient"),
		countLoc:     rl.GetShaderLocation(s, "lightCount"),
		dirsLoc:      rl.GetShaderLocation(s, "lightDirs"),
		intensityLoc: rl.GetShaderLocation(s, "lightIntensities"),
	}
}

// apply uploads the lights and camera position (cgo-safe: local arrays).
func (l *litShader) apply(lights Lighting, viewPos rl.Vector3) {
	n := min(len(lights.Directional), maxLights)
	var dirs [maxLights * 3]float32
	var intensities [maxLights]float32
	for i := 0; i < n; i++ {
		d := rl.Vector3Normalize(lights.Directional[i].Direction)
		dirs[i*3], dirs[i*3+1], dirs[i*3+2] = d.X, d.Y, d.Z
		intensities[i] = lights.Directional[i].Intensity
	}
	view := [3]float32{viewPos.X, viewPos.Y, viewPos.Z}
	amb := [3]float32{lights.Ambient, lights.Ambient, lights.Ambient}
	count := [1]float32{float32(n)}
	if l.viewPosLoc >= 0 {
		rl.SetShaderValueV(l.shader, l.viewPosLoc, view[:], rl.ShaderUniformVec3, 1)
	}
	if l.ambientLoc >= 0 {
		rl.SetShaderValueV(l.shader, l.ambientLoc, amb[:], rl.ShaderUniformVec3, 1)
	}
	if l.countLoc >= 0 {
		rl.SetShaderValueV(l.shader, l.countLoc, count[:], rl.ShaderUniformFloat, 1)
	}
	if l.dirsLoc >= 0 {
		rl.SetShaderValueV(l.shader, l.dirsLoc, dirs[:], rl.ShaderUniformVec3, maxLights)
	}
	if l.intensityLoc >= 0 {
		rl.SetShaderValueV(l.shader, l.intensityLoc, intensities[:], rl.ShaderUniformFloat, maxLights)
	}
}

func (l *litShader) unload() {
	rl.UnloadShader(l.shader)
}

// Lambert: ambient plus up to MAX_LIGHTS directional lights, no specular.
const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 mvp;
uniform mat4 matModel;
uniform mat4 matNormal;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  fragPosition = vec3(matModel * vec4(vertexPosition, 1.0));
  fragNormal = normalize(vec3(matNormal * vec4(vertexNormal, 0.0)));
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`
	litFS = `#version 330
#define MAX_LIGHTS 4
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 ambient;
uniform float lightCount;
uniform vec3 lightDirs[MAX_LIGHTS];
uniform float lightIntensities[MAX_LIGHTS];
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  if (!gl_FrontFacing) N = -N;
  vec3 light = ambient;
  for (int i = 0; i < MAX_LIGHTS; i++) {
    if (float(i) >= lightCount) break;
    light += max(dot(N, normalize(lightDirs[i])), 0.0) * lightIntensities[i];
  }
  finalColor = vec4(colDiffuse.rgb * light, colDiffuse.a);
}
`
)
