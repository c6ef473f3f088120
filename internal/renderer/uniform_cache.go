package renderer

import (
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformCache resolves uniform locations of one linked program once. Names the
// linker dropped (or never declared, as in a degraded displacement program)
// resolve to -1 and are remembered, so setters for them are a map lookup.
type UniformCache struct {
	program   uint32
	locations map[string]int32
	lookup    func(program uint32, name string) int32
}

func glUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func NewUniformCache(program uint32) *UniformCache {
	return &UniformCache{
		program:   program,
		locations: make(map[string]int32),
		lookup:    glUniformLocation,
	}
}

// Program returns the program the cache resolves against.
func (uc *UniformCache) Program() uint32 {
	return uc.program
}

// Location returns the location of name, -1 if the program has no such
// active uniform.
func (uc *UniformCache) Location(name string) int32 {
	if loc, ok := uc.locations[name]; ok {
		return loc
	}
	loc := uc.lookup(uc.program, name)
	uc.locations[name] = loc
	return loc
}

// Inactive lists the names looked up so far that the program does not use.
func (uc *UniformCache) Inactive() []string {
	var names []string
	for name, loc := range uc.locations {
		if loc == -1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (uc *UniformCache) SetFloat(name string, value float32) {
	if loc := uc.Location(name); loc != -1 {
		gl.Uniform1f(loc, value)
	}
}

func (uc *UniformCache) SetInt(name string, value int32) {
	if loc := uc.Location(name); loc != -1 {
		gl.Uniform1i(loc, value)
	}
}

func (uc *UniformCache) SetVec3(name string, v mgl32.Vec3) {
	if loc := uc.Location(name); loc != -1 {
		gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (uc *UniformCache) SetMat4(name string, m mgl32.Mat4) {
	if loc := uc.Location(name); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// Clear forgets every location. Call it after relinking the program.
func (uc *UniformCache) Clear() {
	uc.locations = make(map[string]int32)
}
