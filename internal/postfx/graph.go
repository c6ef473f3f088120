package postfx

import "fmt"

// Graph is a validated, immutable ordered pass list.
type Graph struct {
	passes     []Pass
	persistent map[Resource]bool
	transient  []Resource
}

// BuildGraph validates passes against the graph rules:
//   - exactly one terminal pass, executed last
//   - every resource has at most one writer, and the scene is never written by a pass
//   - fresh reads name the scene or a transient resource written by an earlier pass
//   - stale reads and writes of persistent resources never alias: persistent
//     resources may only be read stale
func BuildGraph(passes []Pass, persistent ...Resource) (*Graph, error) {
	if len(passes) == 0 {
		return nil, fmt.Errorf("%w: no passes", ErrInvalidGraph)
	}

	g := &Graph{
		passes:     passes,
		persistent: make(map[Resource]bool, len(persistent)),
	}
	for _, r := range persistent {
		g.persistent[r] = true
	}

	written := map[Resource]string{}
	for i, p := range passes {
		last := i == len(passes)-1
		if p.Kind() == KindTerminal && !last {
			return nil, fmt.Errorf("%w: terminal pass %q at position %d is not last", ErrInvalidGraph, p.Name(), i)
		}
		if last && p.Kind() != KindTerminal {
			return nil, fmt.Errorf("%w: last pass %q is not terminal", ErrInvalidGraph, p.Name())
		}

		for _, in := range p.Inputs() {
			switch {
			case in.Read == Stale && !g.persistent[in.Resource]:
				return nil, fmt.Errorf("%w: pass %q reads transient %q stale", ErrInvalidGraph, p.Name(), in.Resource)
			case in.Read == Fresh && g.persistent[in.Resource]:
				return nil, fmt.Errorf("%w: pass %q reads persistent %q fresh", ErrInvalidGraph, p.Name(), in.Resource)
			case in.Read == Fresh && in.Resource != ResourceScene:
				if _, ok := written[in.Resource]; !ok {
					return nil, fmt.Errorf("%w: pass %q reads %q before any pass writes it", ErrInvalidGraph, p.Name(), in.Resource)
				}
			}
		}

		if p.Kind() == KindTerminal {
			if p.Output() != "" {
				return nil, fmt.Errorf("%w: terminal pass %q declares output %q", ErrInvalidGraph, p.Name(), p.Output())
			}
			continue
		}

		out := p.Output()
		if out == "" {
			return nil, fmt.Errorf("%w: pass %q declares no output", ErrInvalidGraph, p.Name())
		}
		if out == ResourceScene {
			return nil, fmt.Errorf("%w: pass %q writes the scene input", ErrInvalidGraph, p.Name())
		}
		if prev, ok := written[out]; ok {
			return nil, fmt.Errorf("%w: %q written by both %q and %q", ErrInvalidGraph, out, prev, p.Name())
		}
		written[out] = p.Name()
		if !g.persistent[out] {
			g.transient = append(g.transient, out)
		}
	}
	return g, nil
}

// Passes returns the passes in execution order.
func (g *Graph) Passes() []Pass {
	return g.passes
}

// Terminal returns the last pass.
func (g *Graph) Terminal() Pass {
	return g.passes[len(g.passes)-1]
}

// Transient returns the transient resources written by the graph, in write order.
func (g *Graph) Transient() []Resource {
	return g.transient
}

// IsPersistent reports whether r carries content across frames.
func (g *Graph) IsPersistent(r Resource) bool {
	return g.persistent[r]
}
