package tacticalmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallSegmentsOpen(t *testing.T) {
	w := Wall{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}
	segs := w.Segments()
	assert.Len(t, segs, 2)
}

func TestWallSegmentsClosed(t *testing.T) {
	w := Wall{Closed: true, Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}
	segs := w.Segments()
	if assert.Len(t, segs, 3, "closing edge included") {
		last := segs[2]
		assert.Equal(t, Point{X: 10, Y: 10}, last.A)
		assert.Equal(t, Point{X: 0, Y: 0}, last.B)
	}
}

func TestWallSegmentsDegenerate(t *testing.T) {
	w := Wall{Points: []Point{{X: 0, Y: 0}}}
	assert.Nil(t, w.Segments(), "single-point wall should produce no segments")
}

func TestMapValidateGridInvariant(t *testing.T) {
	m := &Map{WidthPx: 100, HeightPx: 100, Grid: Grid{Kind: GridSquare, Size: 0}}
	assert.Error(t, m.validate(), "a square grid with size 0 should violate the grid invariant")

	m.Grid = Grid{Kind: GridNone}
	assert.NoError(t, m.validate(), "gridless map with zero size should be valid")
}

func TestMapValidateDimensions(t *testing.T) {
	m := &Map{WidthPx: 0, HeightPx: 100, Grid: Grid{Kind: GridNone}}
	assert.Error(t, m.validate(), "zero width should violate the map dimension invariant")
}
