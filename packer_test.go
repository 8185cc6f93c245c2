package termtext

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func randomItems(r *rand.Rand, n, maxW, maxH int) []packItem {
	items := make([]packItem, n)
	for i := range items {
		items[i] = packItem{W: 1 + r.IntN(maxW), H: 1 + r.IntN(maxH)}
	}
	slices.SortFunc(items, func(a, b packItem) int { return b.W*b.H - a.W*a.H })
	return items
}

// checkPlacement fails if any two padded items on one page overlap or an
// item leaves its page.
func checkPlacement(t *testing.T, items []packItem, size, pages, padding int) {
	t.Helper()
	for i, a := range items {
		if a.Page < 0 || a.Page >= pages {
			t.Fatalf("item %d on page %d of %d", i, a.Page, pages)
		}
		ra := Rect{X: a.X, Y: a.Y, W: a.W + padding, H: a.H + padding}
		if ra.X < 0 || ra.Y < 0 || ra.X+ra.W > size || ra.Y+ra.H > size {
			t.Fatalf("item %d at %+v outside %dx%d page", i, ra, size, size)
		}
		for j := i + 1; j < len(items); j++ {
			b := items[j]
			if a.Page != b.Page {
				continue
			}
			rb := Rect{X: b.X, Y: b.Y, W: b.W + padding, H: b.H + padding}
			if ra.Intersects(rb) {
				t.Fatalf("items %d %+v and %d %+v overlap on page %d", i, ra, j, rb, a.Page)
			}
		}
	}
}

func TestPackerNoOverlap(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := range 20 {
		items := randomItems(r, 200, 24, 32)
		p := packer{minSize: 64, maxSize: 1024, maxPages: 4, padding: 1}
		size, pages, err := p.pack(items)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		checkPlacement(t, items, size, pages, 1)
	}
}

func TestPackerGrowsBeforeAddingPages(t *testing.T) {
	// 64 glyphs of 16x16 (17x17 padded) need more than a 128 page.
	items := make([]packItem, 64)
	for i := range items {
		items[i] = packItem{W: 16, H: 16}
	}
	p := packer{minSize: 128, maxSize: 512, maxPages: 4, padding: 1}
	size, pages, err := p.pack(items)
	if err != nil {
		t.Fatal(err)
	}
	if size != 256 || pages != 1 {
		t.Errorf("size=%d pages=%d, want one 256 page", size, pages)
	}
	checkPlacement(t, items, size, pages, 1)
}

func TestPackerAddsPagesAtMaxSize(t *testing.T) {
	// A 64 page holds 4 padded 31x31 items, so 10 items need 3 pages.
	items := make([]packItem, 10)
	for i := range items {
		items[i] = packItem{W: 31, H: 31}
	}
	p := packer{minSize: 32, maxSize: 64, maxPages: 3, padding: 1}
	size, pages, err := p.pack(items)
	if err != nil {
		t.Fatal(err)
	}
	if size != 64 || pages != 3 {
		t.Errorf("size=%d pages=%d, want 3 pages of 64", size, pages)
	}
	checkPlacement(t, items, size, pages, 1)
}

func TestPackerErrors(t *testing.T) {
	t.Run("atlas full", func(t *testing.T) {
		items := make([]packItem, 13)
		for i := range items {
			items[i] = packItem{W: 31, H: 31}
		}
		p := packer{minSize: 32, maxSize: 64, maxPages: 3, padding: 1}
		if _, _, err := p.pack(items); !errors.Is(err, ErrAtlasFull) {
			t.Errorf("err = %v, want ErrAtlasFull", err)
		}
	})
	t.Run("glyph too large", func(t *testing.T) {
		items := []packItem{{W: 64, H: 10}}
		p := packer{minSize: 32, maxSize: 64, maxPages: 3, padding: 1}
		if _, _, err := p.pack(items); !errors.Is(err, ErrGlyphTooLarge) {
			t.Errorf("err = %v, want ErrGlyphTooLarge", err)
		}
	})
}

func TestPackerTerminatesWhenAreaFits(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := range 20 {
		const maxSize, maxPages = 256, 2
		items := randomItems(r, 150, 20, 20)
		area := 0
		for _, it := range items {
			area += (it.W + 1) * (it.H + 1)
		}
		if area >= maxSize*maxSize {
			continue
		}
		p := packer{minSize: 32, maxSize: maxSize, maxPages: maxPages, padding: 1}
		size, pages, err := p.pack(items)
		if err != nil {
			t.Fatalf("round %d: area %d: %v", round, area, err)
		}
		if pages > maxPages {
			t.Fatalf("round %d: %d pages", round, pages)
		}
		checkPlacement(t, items, size, pages, 1)
	}
}

func TestPackerEmpty(t *testing.T) {
	p := packer{minSize: 32, maxSize: 64, maxPages: 1}
	size, pages, err := p.pack(nil)
	if err != nil || size != 32 || pages != 0 {
		t.Errorf("pack(nil) = %d, %d, %v", size, pages, err)
	}
}

func TestSpanIndexCollide(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	var idx spanIndex
	var placed []Rect
	for range 300 {
		c := Rect{X: r.IntN(200), Y: r.IntN(200), W: 1 + r.IntN(30), H: 1 + r.IntN(30)}

		var want bool
		for _, p := range placed {
			if p.Intersects(c) {
				want = true
				break
			}
		}
		got, hit := idx.collide(c)
		if hit != want {
			t.Fatalf("collide(%+v) = %v, brute force says %v", c, hit, want)
		}
		if hit && !got.Intersects(c) {
			t.Fatalf("collide(%+v) returned non-overlapping %+v", c, got)
		}
		if !hit {
			idx.insert(c)
			placed = append(placed, c)
		}
	}
	if !slices.IsSortedFunc(idx.rects, func(a, b Rect) int { return a.X - b.X }) {
		t.Error("index not sorted by x")
	}
}
