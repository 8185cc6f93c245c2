package termtext

import (
	"log/slog"
	"sync/atomic"
)

// refCount is a holder count whose transition to zero happens exactly once.
// Releases past zero are ignored.
type refCount struct {
	n atomic.Int32
}

func (c *refCount) init() { c.n.Store(1) }

func (c *refCount) retain() bool {
	for {
		n := c.n.Load()
		if n <= 0 {
			return false
		}
		if c.n.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release decrements the count and reports whether this call dropped it to
// zero.
func (c *refCount) release() (last, ok bool) {
	for {
		n := c.n.Load()
		if n <= 0 {
			return false, false
		}
		if c.n.CompareAndSwap(n, n-1) {
			return n == 1, true
		}
	}
}

func (c *refCount) load() int { return int(c.n.Load()) }

// SharedFont is a reference-counted Font. Every holder calls Release once
// when done; the Font is closed when the last holder releases it.
type SharedFont struct {
	font *Font
	refs refCount
}

// NewSharedFont wraps f with a count of one held by the caller.
func NewSharedFont(f *Font) *SharedFont {
	s := &SharedFont{font: f}
	s.refs.init()
	return s
}

// Font returns the wrapped font.
func (s *SharedFont) Font() *Font { return s.font }

// Retain adds a holder and returns s for convenience. Retaining a released
// font is a no-op logged as a warning.
func (s *SharedFont) Retain() *SharedFont {
	if !s.refs.retain() {
		Logger().Warn("font: retain after final release", slog.String("face", s.font.Name()))
	}
	return s
}

// Release drops one holder, closing the font on the last release. It
// reports whether this call closed the font.
func (s *SharedFont) Release() bool {
	last, ok := s.refs.release()
	if !ok {
		Logger().Warn("font: release after final release", slog.String("face", s.font.Name()))
		return false
	}
	if !last {
		return false
	}
	if err := s.font.Close(); err != nil {
		Logger().Warn("font: close failed", slog.String("face", s.font.Name()), slog.Any("err", err))
	}
	return true
}

// Refs returns the current number of holders.
func (s *SharedFont) Refs() int { return s.refs.load() }
