package tacticalmap

import "testing"

func TestPixelToCellRoundTrip(t *testing.T) {
	g := Grid{Kind: GridSquare, Size: 50}
	c, err := g.PixelToCell(Point{X: 125, Y: 75})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Col != 2 || c.Row != 1 {
		t.Errorf("cell = %+v, want {2 1}", c)
	}
	center, err := g.CellToPixelCenter(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back, _ := g.PixelToCell(center); back != c {
		t.Errorf("pixel_to_cell(cell_to_pixel_center(%+v)) = %+v", c, back)
	}
}

func TestPixelToCellNoGrid(t *testing.T) {
	g := Grid{Kind: GridNone}
	if _, err := g.PixelToCell(Point{X: 1, Y: 1}); err != ErrNoGrid {
		t.Errorf("err = %v, want ErrNoGrid", err)
	}
}

func TestCellToPixelCenter(t *testing.T) {
	g := Grid{Kind: GridSquare, Size: 50}
	p, err := g.CellToPixelCenter(Cell{Col: 1, Row: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.X != 75 || p.Y != 75 {
		t.Errorf("center = %+v, want {75 75}", p)
	}
}

func TestSnapToCell(t *testing.T) {
	g := Grid{Kind: GridSquare, Size: 50}
	p, err := g.SnapToCell(Point{X: 61, Y: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.X != 75 || p.Y != 25 {
		t.Errorf("snapped = %+v, want {75 25}", p)
	}
}

func TestFeetToPixelsWithGrid(t *testing.T) {
	g := Grid{Kind: GridSquare, Size: 50}
	if got := g.FeetToPixels(10); got != 100 {
		t.Errorf("feet_to_px(10) = %v, want 100", got)
	}
}

func TestFeetToPixelsFallback(t *testing.T) {
	g := Grid{Kind: GridNone}
	if got := g.FeetToPixels(5); got != fallbackPxPerFiveFeet {
		t.Errorf("feet_to_px fallback = %v, want %v", got, fallbackPxPerFiveFeet)
	}
}

func TestClampToMap(t *testing.T) {
	p := ClampToMap(Point{X: -10, Y: 500}, 100, 100)
	if p.X != 0 || p.Y != 100 {
		t.Errorf("clamped = %+v, want {0 100}", p)
	}
	// Idempotent on an already-clamped point.
	p2 := ClampToMap(p, 100, 100)
	if p2 != p {
		t.Errorf("clamp not idempotent: %+v != %+v", p2, p)
	}
}

func TestGridValid(t *testing.T) {
	if !(Grid{Kind: GridNone}).valid() {
		t.Error("gridless grid with zero size should be valid")
	}
	if (Grid{Kind: GridNone, Size: 10}).valid() {
		t.Error("gridless grid with nonzero size should be invalid")
	}
	if !(Grid{Kind: GridSquare, Size: 10}).valid() {
		t.Error("square grid with positive size should be valid")
	}
	if (Grid{Kind: GridSquare, Size: 0}).valid() {
		t.Error("square grid with zero size should be invalid")
	}
}
