package termtext

import (
	"fmt"
	"slices"
	"sort"
)

// packItem is one rectangle to place. W and H exclude padding.
type packItem struct {
	W, H int

	Page int
	X, Y int
}

// spanIndex is the broad phase of the packer: placed rectangles sorted by
// their starting x so a candidate only needs checking against rectangles
// whose horizontal span can reach it.
//
// Invariant: rects is sorted by X ascending and maxW is the widest rect.
type spanIndex struct {
	rects []Rect
	maxW  int
}

func (s *spanIndex) reset() {
	s.rects = s.rects[:0]
	s.maxW = 0
}

func (s *spanIndex) insert(r Rect) {
	i := sort.Search(len(s.rects), func(i int) bool { return s.rects[i].X > r.X })
	s.rects = slices.Insert(s.rects, i, r)
	s.maxW = max(s.maxW, r.W)
}

// collide returns a placed rectangle overlapping r. A rectangle starting at
// or before r.X-maxW ends at or before r.X, so the search starts just past
// that bound and stops at the first rectangle starting beyond r's right edge.
func (s *spanIndex) collide(r Rect) (Rect, bool) {
	lo := r.X - s.maxW
	i := sort.Search(len(s.rects), func(i int) bool { return s.rects[i].X > lo })
	for ; i < len(s.rects) && s.rects[i].X < r.X+r.W; i++ {
		if s.rects[i].Intersects(r) {
			return s.rects[i], true
		}
	}
	return Rect{}, false
}

// find scans rows top to bottom and columns left to right for the first
// free w×h slot in a size×size page. A blocked column jumps past its
// blocker, and a fully blocked row jumps to the lowest blocker bottom seen
// on it, since every blocker still covers the rows above its bottom.
func (s *spanIndex) find(w, h, size int) (x, y int, ok bool) {
	for y = 0; y+h <= size; {
		next := size
		for x = 0; x+w <= size; {
			c, hit := s.collide(Rect{X: x, Y: y, W: w, H: h})
			if !hit {
				return x, y, true
			}
			next = min(next, c.Y+c.H)
			x = c.X + c.W
		}
		y = max(next, y+1)
	}
	return 0, 0, false
}

// packer assigns pages and positions to items already sorted largest
// first. All pages share one size: the first page doubles from minSize
// until everything fits or maxSize is reached, after which further pages
// of maxSize are opened up to maxPages.
type packer struct {
	minSize  int
	maxSize  int
	maxPages int
	padding  int

	index spanIndex
}

// pack places every item and returns the page size and page count.
func (p *packer) pack(items []packItem) (size, pages int, err error) {
	for i := range items {
		if items[i].W+p.padding > p.maxSize || items[i].H+p.padding > p.maxSize {
			return 0, 0, fmt.Errorf("%w: %dx%d > %d", ErrGlyphTooLarge, items[i].W, items[i].H, p.maxSize)
		}
	}

	pending := make([]int, len(items))
	for i := range pending {
		pending[i] = i
	}
	if len(pending) == 0 {
		return p.minSize, 0, nil
	}

	size = p.minSize
	var rest []int
	for {
		rest = p.fill(items, pending, size, 0)
		if len(rest) == 0 {
			return size, 1, nil
		}
		if size >= p.maxSize {
			break
		}
		// Retry from scratch on a canvas twice as large.
		size = min(size*2, p.maxSize)
	}

	pages = 1
	for len(rest) > 0 {
		if pages >= p.maxPages {
			return 0, 0, fmt.Errorf("%w: %d glyphs left after %d textures of %d",
				ErrAtlasFull, len(rest), pages, size)
		}
		// An empty page always takes at least the first item, since none
		// is larger than a page.
		rest = p.fill(items, rest, size, pages)
		pages++
	}
	return size, pages, nil
}

// fill places as many pending items as fit on one empty page and returns
// the ones that did not.
func (p *packer) fill(items []packItem, pending []int, size, page int) []int {
	p.index.reset()
	var rest []int
	for _, i := range pending {
		it := &items[i]
		w, h := it.W+p.padding, it.H+p.padding
		x, y, ok := p.index.find(w, h, size)
		if !ok {
			rest = append(rest, i)
			continue
		}
		p.index.insert(Rect{X: x, Y: y, W: w, H: h})
		it.Page, it.X, it.Y = page, x, y
	}
	return rest
}
