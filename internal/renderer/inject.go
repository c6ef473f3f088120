package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAnchorNotFound is returned when an injection anchor does not occur in the
	// target source.
	ErrAnchorNotFound = errors.New("anchor not found")

	// ErrDuplicateUniform is returned when an extension declares a uniform name
	// the program already owns.
	ErrDuplicateUniform = errors.New("duplicate uniform")
)

// InjectAfter inserts code immediately after the first occurrence of anchor.
// The anchor itself stays in place. When the anchor is missing the source is
// returned unchanged together with ErrAnchorNotFound.
func InjectAfter(source, anchor, code string) (string, error) {
	idx := strings.Index(source, anchor)
	if anchor == "" || idx < 0 {
		return source, fmt.Errorf("%w: %q", ErrAnchorNotFound, anchor)
	}
	end := idx + len(anchor)
	return source[:end] + code + source[end:], nil
}

// Snippet is code placed after a hook marker of one stage.
type Snippet struct {
	Stage Stage
	Hook  string
	Code  string
}

// Extension describes an augmentation of a base program.
type Extension struct {
	Name     string
	Uniforms []*Uniform
	// UniformHooks names, per stage, the hook that receives the uniform
	// declarations. Stages without an entry get no declarations.
	UniformHooks map[Stage]string
	Snippets     []Snippet
}

// AnchorTags names the hooks an extension is injected at.
type AnchorTags struct {
	VertexPars   string `toml:"vertex_pars" json:"vertexPars"`
	Vertex       string `toml:"vertex" json:"vertex"`
	FragmentPars string `toml:"fragment_pars" json:"fragmentPars"`
	Fragment     string `toml:"fragment" json:"fragment"`
}

// DefaultAnchorTags returns the hooks declared by StandardShader.
func DefaultAnchorTags() AnchorTags {
	return AnchorTags{
		VertexPars:   HookDisplacementPars,
		Vertex:       HookDisplacement,
		FragmentPars: HookBumpPars,
		Fragment:     HookNormalMaps,
	}
}

// Extend returns a new program made of the base sources with the extension
// injected. The base is never modified. On error the returned program is the
// base itself.
func (shader *Shader) Extend(ext Extension) (*Shader, error) {
	seen := make(map[string]bool, len(shader.uniforms)+len(ext.Uniforms))
	for _, u := range shader.uniforms {
		seen[u.Name] = true
	}
	for _, u := range ext.Uniforms {
		if seen[u.Name] {
			return shader, fmt.Errorf("%s: %w: %s", ext.Name, ErrDuplicateUniform, u.Name)
		}
		seen[u.Name] = true
	}

	sources := map[Stage]string{
		VertexStage:   shader.vertexSource,
		FragmentStage: shader.fragmentSource,
	}
	for _, stage := range []Stage{VertexStage, FragmentStage} {
		src, err := injectStage(sources[stage], stage, ext)
		if err != nil {
			return shader, fmt.Errorf("%s: %s stage: %w", ext.Name, stage, err)
		}
		sources[stage] = src
	}

	uniforms := make([]*Uniform, 0, len(shader.uniforms)+len(ext.Uniforms))
	for _, u := range shader.uniforms {
		uniforms = append(uniforms, u.clone())
	}
	uniforms = append(uniforms, ext.Uniforms...)

	return NewShader(shader.name+"+"+ext.Name, sources[VertexStage], sources[FragmentStage], uniforms...), nil
}

// injectStage groups the code per hook, keeping declaration order, and injects
// each group once.
func injectStage(src string, stage Stage, ext Extension) (string, error) {
	var hooks []string
	code := map[string]*strings.Builder{}
	add := func(hook, text string) {
		b, ok := code[hook]
		if !ok {
			b = &strings.Builder{}
			code[hook] = b
			hooks = append(hooks, hook)
		}
		b.WriteString("\n")
		b.WriteString(text)
	}

	if hook, ok := ext.UniformHooks[stage]; ok && len(ext.Uniforms) > 0 {
		decls := make([]string, len(ext.Uniforms))
		for i, u := range ext.Uniforms {
			decls[i] = u.Declaration()
		}
		add(hook, strings.Join(decls, "\n"))
	}
	for _, s := range ext.Snippets {
		if s.Stage == stage {
			add(s.Hook, s.Code)
		}
	}

	for _, hook := range hooks {
		if hook == "" {
			return src, fmt.Errorf("%w: empty hook name", ErrAnchorNotFound)
		}
		var err error
		src, err = InjectAfter(src, HookMarker(hook), code[hook].String())
		if err != nil {
			return src, err
		}
	}
	return src, nil
}
