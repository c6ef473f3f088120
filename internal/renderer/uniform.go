package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformType is the GLSL type of a uniform.
type UniformType int

const (
	UniformFloat UniformType = iota
	UniformVec3
	UniformInt
)

func (t UniformType) GLSL() string {
	switch t {
	case UniformVec3:
		return "vec3"
	case UniformInt:
		return "int"
	}
	return "float"
}

// Uniform is a named program input owned by a single Shader. The render loop
// writes it every frame; renderers read it when drawing.
type Uniform struct {
	Name  string
	Type  UniformType
	value mgl32.Vec3
}

// NewFloatUniform creates a float uniform with an initial value.
func NewFloatUniform(name string, value float32) *Uniform {
	return &Uniform{Name: name, Type: UniformFloat, value: mgl32.Vec3{value}}
}

// NewVec3Uniform creates a vec3 uniform with an initial value.
func NewVec3Uniform(name string, value mgl32.Vec3) *Uniform {
	return &Uniform{Name: name, Type: UniformVec3, value: value}
}

// SetFloat updates a float uniform. It satisfies postfx.PhaseSink.
func (u *Uniform) SetFloat(v float32) {
	u.value[0] = v
}

func (u *Uniform) Float() float32 {
	return u.value[0]
}

func (u *Uniform) SetVec3(v mgl32.Vec3) {
	u.value = v
}

func (u *Uniform) Vec3() mgl32.Vec3 {
	return u.value
}

// Declaration returns the GLSL declaration line.
func (u *Uniform) Declaration() string {
	return fmt.Sprintf("uniform %s %s;", u.Type.GLSL(), u.Name)
}

// Apply uploads the current value through a location cache.
func (u *Uniform) Apply(cache *UniformCache) {
	switch u.Type {
	case UniformVec3:
		cache.SetVec3(u.Name, u.value)
	case UniformInt:
		cache.SetInt(u.Name, int32(u.value[0]))
	default:
		cache.SetFloat(u.Name, u.value[0])
	}
}

func (u *Uniform) clone() *Uniform {
	c := *u
	return &c
}
