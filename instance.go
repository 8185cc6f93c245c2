package termtext

import "fmt"

// GlyphInstance is one textured glyph quad. Memory layout matches the
// OpenGL instance attribute layout.
type GlyphInstance struct {
	Cell   [2]float32 // Column, row
	Atlas  [4]float32 // x, y, w, h in atlas pixels
	Offset [2]float32 // Bitmap offset from the cell's top-left, in pixels
	Page   float32    // Atlas texture index
	Color  [4]uint8   // RGBA
}

// BackgroundInstance is one filled cell background.
type BackgroundInstance struct {
	Cell  [2]float32 // Column, row
	Span  float32    // Width in cells
	Color [4]uint8   // RGBA
}

// UnderlineInstance is one underline segment.
type UnderlineInstance struct {
	Cell  [2]float32 // Column, row
	Span  float32    // Width in cells
	Color [4]uint8   // RGB, alpha always opaque
}

// defaultInstanceCapacity is the initial capacity of an instance buffer.
const defaultInstanceCapacity = 256

// InstanceBuffer is a per-frame instance array. Reset keeps the capacity,
// so a steady frame does not allocate; Append doubles the capacity when
// full and never shrinks it.
type InstanceBuffer[T any] struct {
	items []T
	limit int // maximum capacity, 0 for none
}

// NewInstanceBuffer creates a buffer with the given initial capacity and
// capacity limit (0 for unlimited).
func NewInstanceBuffer[T any](capacity, limit int) *InstanceBuffer[T] {
	if limit > 0 {
		capacity = min(capacity, limit)
	}
	return &InstanceBuffer[T]{
		items: make([]T, 0, capacity),
		limit: limit,
	}
}

// Reset empties the buffer for a new frame. Retains allocated capacity.
func (b *InstanceBuffer[T]) Reset() {
	b.items = b.items[:0]
}

// Append adds v, growing the buffer if needed. It returns ErrOutOfMemory
// when the buffer is full at its limit.
func (b *InstanceBuffer[T]) Append(v T) error {
	if len(b.items) == cap(b.items) {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.items = append(b.items, v)
	return nil
}

func (b *InstanceBuffer[T]) grow() error {
	newCap := cap(b.items) * 2
	if newCap == 0 {
		newCap = 16
	}
	if b.limit > 0 && newCap > b.limit {
		if cap(b.items) >= b.limit {
			return fmt.Errorf("%w: instance buffer limit %d reached", ErrOutOfMemory, b.limit)
		}
		newCap = b.limit
	}
	items := make([]T, len(b.items), newCap)
	copy(items, b.items)
	b.items = items
	return nil
}

// Items returns this frame's instances. The slice is only valid until the
// next Reset.
func (b *InstanceBuffer[T]) Items() []T { return b.items }

// Len returns the number of instances this frame.
func (b *InstanceBuffer[T]) Len() int { return len(b.items) }

// Cap returns the allocated capacity.
func (b *InstanceBuffer[T]) Cap() int { return cap(b.items) }
