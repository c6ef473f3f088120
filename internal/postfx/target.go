package postfx

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lifecycle tells the composer whether a target lives for one graph build or must
// carry content across frames.
type Lifecycle int

const (
	Transient Lifecycle = iota
	Persistent
)

func (l Lifecycle) String() string {
	if l == Persistent {
		return "persistent"
	}
	return "transient"
}

// DefaultMaxTargetSize bounds either dimension of a render target.
const DefaultMaxTargetSize = 8192

// Target is an offscreen RGBA color buffer with normalized float channels.
// Width and height are fixed for the life of the target.
type Target struct {
	id        uint64
	Width     int
	Height    int
	Lifecycle Lifecycle
	Pix       []float32 // RGBA, row-major, 4 floats per pixel
	released  bool
}

// ID returns the allocation handle. Handles are never reused by an Allocator.
func (t *Target) ID() uint64 { return t.id }

// Released reports whether the allocator has reclaimed this target.
func (t *Target) Released() bool { return t.released }

// SameSize reports whether o has identical dimensions.
func (t *Target) SameSize(o *Target) bool {
	return o != nil && t.Width == o.Width && t.Height == o.Height
}

func (t *Target) offset(x, y int) int {
	return (y*t.Width + x) * 4
}

// At returns the color at (x, y).
func (t *Target) At(x, y int) mgl32.Vec4 {
	i := t.offset(x, y)
	return mgl32.Vec4{t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3]}
}

// Set writes the color at (x, y).
func (t *Target) Set(x, y int, c mgl32.Vec4) {
	i := t.offset(x, y)
	t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c[0], c[1], c[2], c[3]
}

// Fill sets every pixel to c.
func (t *Target) Fill(c mgl32.Vec4) {
	for i := 0; i < len(t.Pix); i += 4 {
		t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c[0], c[1], c[2], c[3]
	}
}

// Clear zeroes the target.
func (t *Target) Clear() {
	for i := range t.Pix {
		t.Pix[i] = 0
	}
}

// Sample reads the target bilinearly at normalized coordinates with
// clamp-to-edge addressing.
func (t *Target) Sample(u, v float32) mgl32.Vec4 {
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	x1 := clampInt(x0+1, 0, t.Width-1)
	y1 := clampInt(y0+1, 0, t.Height-1)
	x0 = clampInt(x0, 0, t.Width-1)
	y0 = clampInt(y0, 0, t.Height-1)

	top := lerpVec4(t.At(x0, y0), t.At(x1, y0), tx)
	bottom := lerpVec4(t.At(x0, y1), t.At(x1, y1), tx)
	return lerpVec4(top, bottom, ty)
}

// CopyFrom writes src into t. Equal sizes copy verbatim; otherwise src is resampled
// with its own filter.
func (t *Target) CopyFrom(src *Target) {
	if t.SameSize(src) {
		copy(t.Pix, src.Pix)
		return
	}
	for y := 0; y < t.Height; y++ {
		v := (float32(y) + 0.5) / float32(t.Height)
		for x := 0; x < t.Width; x++ {
			u := (float32(x) + 0.5) / float32(t.Width)
			t.Set(x, y, src.Sample(u, v))
		}
	}
}

// ToRGBA quantizes the target into an 8-bit image, clamping channels to [0,1].
func (t *Target) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pix {
		img.Pix[i] = toByte(c)
	}
	return img
}

// AppendRGB24 appends the target as packed 8-bit RGB rows, top row first.
func (t *Target) AppendRGB24(buf []byte) []byte {
	for i := 0; i < len(t.Pix); i += 4 {
		buf = append(buf, toByte(t.Pix[i]), toByte(t.Pix[i+1]), toByte(t.Pix[i+2]))
	}
	return buf
}

func (t *Target) String() string {
	return fmt.Sprintf("target#%d(%dx%d %s)", t.id, t.Width, t.Height, t.Lifecycle)
}

func toByte(c float32) uint8 {
	return uint8(math32.Round(clamp01(c) * 255))
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerpVec4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

// Allocator hands out render targets with unique, increasing handles and tracks the
// live set so a rebuild can release everything at once.
type Allocator struct {
	MaxSize int
	nextID  uint64
	live    map[uint64]*Target
}

// NewAllocator creates an allocator bounding target dimensions to maxSize.
// A non-positive maxSize selects DefaultMaxTargetSize.
func NewAllocator(maxSize int) *Allocator {
	if maxSize <= 0 {
		maxSize = DefaultMaxTargetSize
	}
	return &Allocator{
		MaxSize: maxSize,
		live:    make(map[uint64]*Target),
	}
}

// Allocate creates a cleared target.
func (a *Allocator) Allocate(width, height int, lifecycle Lifecycle) (*Target, error) {
	if width <= 0 || height <= 0 || width > a.MaxSize || height > a.MaxSize {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", ErrBufferAllocation, width, height, a.MaxSize)
	}
	a.nextID++
	t := &Target{
		id:        a.nextID,
		Width:     width,
		Height:    height,
		Lifecycle: lifecycle,
		Pix:       make([]float32, width*height*4),
	}
	a.live[t.id] = t
	return t, nil
}

// Release reclaims a single target.
func (a *Allocator) Release(t *Target) {
	if t == nil || t.released {
		return
	}
	t.released = true
	t.Pix = nil
	delete(a.live, t.id)
}

// ReleaseAll reclaims every live target.
func (a *Allocator) ReleaseAll() {
	for _, t := range a.live {
		t.released = true
		t.Pix = nil
	}
	a.live = make(map[uint64]*Target)
}

// Live returns the number of targets not yet released.
func (a *Allocator) Live() int {
	return len(a.live)
}
