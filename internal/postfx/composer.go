package postfx

import (
	"fmt"

	"Afterglow/internal/logger"

	"go.uber.org/zap"
)

// GraphFactory builds a fresh pass list. It is called at construction and after
// every resize so no pass outlives the targets of its build.
type GraphFactory func(cfg Config, display Display) ([]Pass, error)

// StandardPasses builds blend -> save -> bloom -> output.
func StandardPasses(cfg Config, display Display) ([]Pass, error) {
	capture := ResourceBlended
	if cfg.CaptureSource == CaptureScene {
		capture = ResourceScene
	}

	passes := []Pass{
		NewBlendPass(cfg.MixRatio),
		NewSavePass(capture),
	}

	source := ResourceBlended
	if cfg.BloomEnabled {
		bloom, err := NewBloomPass(ResourceBlended, cfg.BloomStrength, cfg.BloomRadius, cfg.BloomThreshold)
		if err != nil {
			return nil, err
		}
		passes = append(passes, bloom)
		source = ResourceBloomed
	}

	return append(passes, NewOutputPass(source, display)), nil
}

// Composer is the per-frame pass scheduler. It owns the pass graph, every render
// target, the history buffer and the phase clock. All methods must be called from
// the rendering thread.
type Composer struct {
	cfg     Config
	scene   Scene
	display Display
	clock   Clock
	factory GraphFactory
	sinks   []PhaseSink
	alloc   *Allocator

	width, height   int
	graph           *Graph
	sceneTarget     *Target
	targets         map[Resource]*Target
	history         *HistoryBuffer
	capturesHistory bool

	frame  uint64
	phase  float32
	err    error
	closed bool
}

// Option customizes a Composer.
type Option func(*Composer)

// WithClock replaces the default wall clock.
func WithClock(clock Clock) Option {
	return func(c *Composer) { c.clock = clock }
}

// WithPhaseSink registers a uniform that receives the displacement phase every tick.
func WithPhaseSink(sink PhaseSink) Option {
	return func(c *Composer) {
		if sink != nil {
			c.sinks = append(c.sinks, sink)
		}
	}
}

// WithGraphFactory replaces StandardPasses.
func WithGraphFactory(factory GraphFactory) Option {
	return func(c *Composer) { c.factory = factory }
}

// NewComposer validates cfg, allocates every target at the viewport size, builds the
// graph and subscribes to viewport resizes. On error nothing is left allocated.
func NewComposer(cfg Config, viewport Viewport, scene Scene, display Display, opts ...Option) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Composer{
		cfg:     cfg,
		scene:   scene,
		display: display,
		clock:   NewWallClock(),
		factory: StandardPasses,
		alloc:   NewAllocator(cfg.MaxTargetSize),
	}
	for _, opt := range opts {
		opt(c)
	}

	width, height := viewport.Size()
	if err := c.build(width, height); err != nil {
		return nil, err
	}

	viewport.OnResize(func(width, height int) {
		if c.closed {
			logger.Log.Debug("Ignoring resize of closed composer", zap.Int("width", width), zap.Int("height", height))
			return
		}
		if err := c.Resize(width, height); err != nil {
			logger.Log.Error("Pipeline rebuild failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		}
	})

	logger.Log.Info("Composer initialized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("passes", len(c.graph.Passes())),
		zap.Float32("mixRatio", cfg.MixRatio),
		zap.String("captureSource", string(cfg.CaptureSource)))
	return c, nil
}

func (c *Composer) build(width, height int) error {
	passes, err := c.factory(c.cfg, c.display)
	if err != nil {
		return err
	}
	graph, err := BuildGraph(passes, ResourceHistory)
	if err != nil {
		return err
	}

	c.sceneTarget, err = c.alloc.Allocate(width, height, Transient)
	if err != nil {
		c.teardown()
		return fmt.Errorf("scene target: %w", err)
	}

	c.targets = make(map[Resource]*Target, len(graph.Transient()))
	for _, r := range graph.Transient() {
		t, err := c.alloc.Allocate(width, height, Transient)
		if err != nil {
			c.teardown()
			return fmt.Errorf("%s target: %w", r, err)
		}
		c.targets[r] = t
	}

	c.history, err = NewHistoryBuffer(c.alloc, width, height)
	if err != nil {
		c.teardown()
		return err
	}

	c.capturesHistory = false
	for _, p := range passes {
		if p.Output() == ResourceHistory {
			c.capturesHistory = true
		}
	}

	c.graph = graph
	c.width, c.height = width, height
	return nil
}

func (c *Composer) teardown() {
	c.alloc.ReleaseAll()
	c.graph = nil
	c.sceneTarget = nil
	c.targets = nil
	c.history = nil
}

// Resize releases every target and rebuilds the pipeline at the new size. A failed
// rebuild leaves the composer torn down; Tick then reports the error.
func (c *Composer) Resize(width, height int) error {
	if c.closed {
		return ErrClosed
	}
	if c.graph != nil && width == c.width && height == c.height {
		return nil
	}

	c.teardown()
	if err := c.build(width, height); err != nil {
		c.err = err
		return err
	}
	c.err = nil
	logger.Log.Info("Pipeline rebuilt", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Tick renders one frame: update the phase, render the scene, run every pass in
// order, then swap the history buffer.
func (c *Composer) Tick() error {
	if c.closed {
		return ErrClosed
	}
	if c.graph == nil {
		return c.err
	}

	c.phase = Phase(c.clock.Elapsed())
	for _, sink := range c.sinks {
		sink.SetFloat(c.phase)
	}

	c.scene.RenderScene(c.sceneTarget)
	if !c.history.Primed() && c.cfg.HistoryPrime == PrimeFirstFrame {
		c.history.Prime(c.sceneTarget)
	}

	for _, p := range c.graph.Passes() {
		decl := p.Inputs()
		in := make([]*Target, len(decl))
		for i, d := range decl {
			in[i] = c.resolve(d.Resource, d.Read)
		}
		var out *Target
		if p.Kind() != KindTerminal {
			out = c.resolveOutput(p.Output())
		}
		p.Execute(in, out)
	}

	if c.capturesHistory {
		c.history.Swap()
		c.history.markWritten()
	}
	c.frame++
	return nil
}

func (c *Composer) resolve(r Resource, read Read) *Target {
	switch {
	case r == ResourceScene:
		return c.sceneTarget
	case r == ResourceHistory && read == Stale:
		return c.history.Front()
	}
	return c.targets[r]
}

func (c *Composer) resolveOutput(r Resource) *Target {
	if r == ResourceHistory {
		return c.history.Back()
	}
	return c.targets[r]
}

// Close releases every target. Further ticks return ErrClosed.
func (c *Composer) Close() {
	if c.closed {
		return
	}
	c.teardown()
	c.closed = true
	logger.Log.Info("Composer closed", zap.Uint64("frames", c.frame))
}

// Targets returns every live target keyed by resource. The history entry lists the
// front half first.
func (c *Composer) Targets() map[Resource][]*Target {
	if c.graph == nil {
		return nil
	}
	out := map[Resource][]*Target{
		ResourceScene:   {c.sceneTarget},
		ResourceHistory: c.history.Targets(),
	}
	for r, t := range c.targets {
		out[r] = []*Target{t}
	}
	return out
}

// Graph returns the current pass graph, nil when torn down.
func (c *Composer) Graph() *Graph { return c.graph }

// Size returns the size of the current build.
func (c *Composer) Size() (int, int) { return c.width, c.height }

// Frame returns the number of completed ticks.
func (c *Composer) Frame() uint64 { return c.frame }

// Phase returns the phase pushed on the last tick.
func (c *Composer) Phase() float32 { return c.phase }

// Config returns the configuration the composer was built with.
func (c *Composer) Config() Config { return c.cfg }
