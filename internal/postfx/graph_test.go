package postfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPass struct {
	name   string
	kind   PassKind
	inputs []Input
	output Resource
}

func (p stubPass) Name() string                  { return p.name }
func (p stubPass) Kind() PassKind                { return p.kind }
func (p stubPass) Inputs() []Input               { return p.inputs }
func (p stubPass) Output() Resource              { return p.output }
func (p stubPass) Execute(_ []*Target, _ *Target) {}

func TestBuildGraphStandardChain(t *testing.T) {
	passes, err := StandardPasses(DefaultConfig(), &recordingDisplay{})
	require.NoError(t, err)

	g, err := BuildGraph(passes, ResourceHistory)
	require.NoError(t, err)

	names := make([]string, 0, len(g.Passes()))
	for _, p := range g.Passes() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"blend", "save", "bloom", "output"}, names)
	assert.Equal(t, KindTerminal, g.Terminal().Kind())
	assert.Equal(t, []Resource{ResourceBlended, ResourceBloomed}, g.Transient())
	assert.True(t, g.IsPersistent(ResourceHistory))
}

func TestStandardChainWithoutBloom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BloomEnabled = false
	passes, err := StandardPasses(cfg, &recordingDisplay{})
	require.NoError(t, err)
	require.Len(t, passes, 3)
	assert.Equal(t, []Input{{Resource: ResourceBlended, Read: Fresh}}, passes[2].Inputs())
}

func TestBuildGraphRejects(t *testing.T) {
	blend := NewBlendPass(0.5)
	output := NewOutputPass(ResourceBlended, &recordingDisplay{})

	tests := []struct {
		name   string
		passes []Pass
	}{
		{"empty", nil},
		{"no terminal", []Pass{blend}},
		{"terminal not last", []Pass{blend, output, NewSavePass(ResourceBlended)}},
		{"two writers", []Pass{blend, NewBlendPass(0.2), output}},
		{"read before write", []Pass{NewSavePass(ResourceBlended), blend, output}},
		{"stale read of transient", []Pass{
			blend,
			stubPass{name: "stale", kind: KindCompute, inputs: []Input{{ResourceBlended, Stale}}, output: "x"},
			output,
		}},
		{"fresh read of persistent", []Pass{
			blend,
			NewSavePass(ResourceBlended),
			stubPass{name: "aliased", kind: KindCompute, inputs: []Input{{ResourceHistory, Fresh}}, output: "x"},
			output,
		}},
		{"writes scene", []Pass{
			stubPass{name: "overwrite", kind: KindCompute, inputs: []Input{{ResourceScene, Fresh}}, output: ResourceScene},
			NewOutputPass(ResourceScene, &recordingDisplay{}),
		}},
		{"terminal with output", []Pass{
			blend,
			stubPass{name: "sink", kind: KindTerminal, inputs: []Input{{ResourceBlended, Fresh}}, output: "x"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildGraph(tt.passes, ResourceHistory)
			assert.ErrorIs(t, err, ErrInvalidGraph)
		})
	}
}
