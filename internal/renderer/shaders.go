package renderer

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Stage selects one of the two sources of a program.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	if s == FragmentStage {
		return "fragment"
	}
	return "vertex"
}

// Hooks declared by the standard shader.
const (
	HookDisplacementPars = "displacementmap_pars_vertex"
	HookDisplacement     = "displacementmap_vertex"
	HookBumpPars         = "bumpmap_pars_fragment"
	HookNormalMaps       = "normal_fragment_maps"
)

const hookPrefix = "// #hook "

// HookMarker returns the source line that declares hook name.
func HookMarker(name string) string {
	return hookPrefix + name
}

// =============================================================
//
//	Shaders
//
// =============================================================

// Shader is a vertex/fragment program. Sources are immutable once created;
// extension produces a new Shader.
type Shader struct {
	name           string
	vertexSource   string
	fragmentSource string
	uniforms       []*Uniform
	program        uint32
	isCompiled     bool
}

// NewShader creates an uncompiled program from GLSL sources.
func NewShader(name, vertexSource, fragmentSource string, uniforms ...*Uniform) *Shader {
	return &Shader{
		name:           name,
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		uniforms:       uniforms,
	}
}

func (shader *Shader) Name() string { return shader.name }

// Source returns the GLSL text of one stage.
func (shader *Shader) Source(stage Stage) string {
	if stage == FragmentStage {
		return shader.fragmentSource
	}
	return shader.vertexSource
}

// Hooks lists the hook markers declared in a stage, in source order.
func (shader *Shader) Hooks(stage Stage) []string {
	var hooks []string
	scanner := bufio.NewScanner(strings.NewReader(shader.Source(stage)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, hookPrefix) {
			hooks = append(hooks, strings.TrimSpace(strings.TrimPrefix(line, hookPrefix)))
		}
	}
	return hooks
}

// HasHook reports whether a stage declares the named hook.
func (shader *Shader) HasHook(stage Stage, name string) bool {
	for _, h := range shader.Hooks(stage) {
		if h == name {
			return true
		}
	}
	return false
}

// Uniforms returns the uniforms owned by this program.
func (shader *Shader) Uniforms() []*Uniform {
	return shader.uniforms
}

// Uniform looks up an owned uniform by name.
func (shader *Shader) Uniform(name string) (*Uniform, bool) {
	for _, u := range shader.uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return nil, false
}

func (shader *Shader) IsValid() bool {
	return shader != nil && shader.vertexSource != "" && shader.fragmentSource != ""
}

func (shader *Shader) IsCompiled() bool {
	return shader.isCompiled
}

// Compile builds the GL program. Requires a current GL context.
func (shader *Shader) Compile() error {
	vertexShader, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("%s: %w", shader.name, err)
	}
	fragmentShader, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return fmt.Errorf("%s: %w", shader.name, err)
	}
	program, err := GenShaderProgram(vertexShader, fragmentShader)
	if err != nil {
		return fmt.Errorf("%s: %w", shader.name, err)
	}
	shader.program = program
	shader.isCompiled = true
	return nil
}

// Delete frees the GL program.
func (shader *Shader) Delete() {
	if shader.isCompiled {
		gl.DeleteProgram(shader.program)
		shader.isCompiled = false
	}
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

var standardVertexSource = `#version 330 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat4 viewProjection;

out vec3 vWorldPosition;
out vec2 vUv;

// #hook displacementmap_pars_vertex

void main() {
    vec3 transformed = inPosition;
    vec3 objectNormal = inNormal;

    // #hook displacementmap_vertex

    vec4 worldPosition = model * vec4(transformed, 1.0);
    vWorldPosition = worldPosition.xyz;
    vUv = inTexCoord;
    gl_Position = viewProjection * worldPosition;
}
`

var standardFragmentSource = `#version 330 core

in vec3 vWorldPosition;
in vec2 vUv;

uniform vec3 diffuseColor;
uniform struct Light {
    vec3 position;
    vec3 color;
    float intensity;
} light;
uniform vec3 ambientColor;
uniform float ambientIntensity;

out vec4 FragColor;

// #hook bumpmap_pars_fragment

void main() {
    // Flat shading: face normal from screen-space derivatives. It always faces
    // the viewer, so both sides are lit.
    vec3 normal = normalize(cross(dFdx(vWorldPosition), dFdy(vWorldPosition)));
    vec3 diffuse = diffuseColor;

    // #hook normal_fragment_maps

    vec3 lightDir = normalize(light.position);
    float diff = max(dot(normal, lightDir), 0.0);
    vec3 irradiance = ambientColor * ambientIntensity + light.color * light.intensity * diff;
    FragColor = vec4(diffuse * irradiance, 1.0);
}
`

// StandardShader returns the base flat-shaded program with the four displacement
// and normal hooks declared.
func StandardShader() *Shader {
	return NewShader("standard", standardVertexSource, standardFragmentSource)
}
