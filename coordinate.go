package tacticalmap

import "math"

// GridKind selects the tabletop grid geometry drawn over a map.
type GridKind uint8

const (
	GridNone GridKind = iota
	GridSquare
	GridHex
)

// feetPerGridUnit is the D&D 5e convention: one grid square is 5 feet.
const feetPerGridUnit = 5.0

// fallbackPxPerFiveFeet is the pixel-per-5ft ratio used for feet<->pixel
// conversion when a map has no grid (GridKind == GridNone), fixed at 70 px
// to match the common VTT default grid size.
const fallbackPxPerFiveFeet = 70.0

// Grid describes a map's tabletop grid: its kind, the pixel size of one
// grid unit, and the pixel offset of cell (0,0)'s top-left corner.
//
// Invariant: Size > 0 iff Kind != GridNone.
type Grid struct {
	Kind             GridKind
	Size             float64 // pixel length of one grid unit (5 ft)
	OffsetX, OffsetY float64
}

// valid reports whether the grid has a usable, positive cell size.
func (g Grid) valid() bool {
	if g.Kind == GridNone {
		return g.Size == 0
	}
	return g.Size > 0
}

// Cell identifies a grid square by column and row, both zero-based.
type Cell struct {
	Col, Row int
}

// PixelToCell converts a pixel position to the grid cell containing it.
// Only valid when the grid has a kind other than GridNone; callers must
// not call this on a gridless map, so this returns
// the zero Cell and ErrNoGrid rather than guessing.
func (g Grid) PixelToCell(p Point) (Cell, error) {
	if g.Kind == GridNone {
		return Cell{}, ErrNoGrid
	}
	return Cell{
		Col: int(math.Floor((p.X - g.OffsetX) / g.Size)),
		Row: int(math.Floor((p.Y - g.OffsetY) / g.Size)),
	}, nil
}

// CellToPixelTopLeft returns the pixel position of a cell's top-left corner.
func (g Grid) CellToPixelTopLeft(c Cell) (Point, error) {
	if g.Kind == GridNone {
		return Point{}, ErrNoGrid
	}
	return Point{
		X: g.OffsetX + float64(c.Col)*g.Size,
		Y: g.OffsetY + float64(c.Row)*g.Size,
	}, nil
}

// CellToPixelCenter returns the pixel position of a cell's center.
func (g Grid) CellToPixelCenter(c Cell) (Point, error) {
	tl, err := g.CellToPixelTopLeft(c)
	if err != nil {
		return Point{}, err
	}
	half := g.Size / 2
	return Point{X: tl.X + half, Y: tl.Y + half}, nil
}

// SnapToCell returns the center of the grid cell containing p. Used for
// grid-coordinate entities (traps, POIs) that always live at a cell
// center. Requires a grid; see PixelToCell.
func (g Grid) SnapToCell(p Point) (Point, error) {
	c, err := g.PixelToCell(p)
	if err != nil {
		return Point{}, err
	}
	return g.CellToPixelCenter(c)
}

// FeetToPixels converts a distance in feet to pixels, using the grid's
// pixel-per-5ft ratio if a grid is present, otherwise the fixed fallback.
// This conversion is total — it never fails.
func (g Grid) FeetToPixels(feet float64) float64 {
	pxPerUnit := fallbackPxPerFiveFeet
	if g.Kind != GridNone && g.Size > 0 {
		pxPerUnit = g.Size
	}
	return feet / feetPerGridUnit * pxPerUnit
}

// ClampToMap clamps p to the rectangle [0, width] x [0, height]. Idempotent:
// clamping an already-clamped point returns it unchanged.
func ClampToMap(p Point, width, height float64) Point {
	return Point{
		X: clampRange(p.X, 0, width),
		Y: clampRange(p.Y, 0, height),
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
