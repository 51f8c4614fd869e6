package tacticalmap

// EntityKind parameterizes the Drag Engine's coordinate adapter.
// Pixel-based kinds commit a raw pixel position (snapping only if the
// caller opts in); grid-based kinds commit a cell, or the raw pixel
// position when the map has no grid.
type EntityKind uint8

const (
	EntityTokenPixel EntityKind = iota
	EntityLightPixel
	EntityTrapGrid
	EntityPOIGrid
)

func (k EntityKind) gridBased() bool {
	return k == EntityTrapGrid || k == EntityPOIGrid
}

// DragState is the Drag Engine's state machine position. A DragController
// always starts and ends a gesture at DragIdle.
type DragState uint8

const (
	DragIdle DragState = iota
	DragMouseDown
	DragDragging
)

// DragResult is what a completed or cancelled gesture produced.
type DragResult struct {
	Committed bool
	Pixel     Point // valid when Committed && (!kind.gridBased() || no grid)
	Cell      Cell  // valid when Committed && kind.gridBased() && grid present
}

// DragController runs a single drag gesture for one entity at a time —
// only one drag is active per surface. It holds no
// reference to a Store; the caller supplies the commit function so the
// controller stays a pure state machine, testable without a Store.
type DragController struct {
	kind    EntityKind
	grid    Grid
	hasGrid bool
	snap    bool

	state     DragState
	startPx   Point
	currentPx Point
}

// NewDragController creates a controller for entities of kind, against a
// map whose dimensions/grid are given. snap controls whether a
// pixel-based kind snaps to the nearest cell center on drop when a grid is
// present.
func NewDragController(kind EntityKind, grid Grid, snap bool) *DragController {
	return &DragController{kind: kind, grid: grid, hasGrid: grid.Kind != GridNone, snap: snap}
}

// State returns the controller's current state.
func (d *DragController) State() DragState { return d.state }

// StartPosition returns the pixel position the active (or just-ended)
// gesture began at, so a caller whose commit callback failed or whose drop
// landed out of bounds can snap the entity's rendered position back to it.
func (d *DragController) StartPosition() Point { return d.startPx }

// MouseDown begins a gesture at a pixel position. A no-op if a gesture is
// already in progress (single-drag-at-a-time).
func (d *DragController) MouseDown(start Point) {
	if d.state != DragIdle {
		return
	}
	d.state = DragMouseDown
	d.startPx = start
	d.currentPx = start
}

// Move updates the in-progress gesture's current pixel position.
func (d *DragController) Move(current Point) {
	if d.state == DragIdle {
		return
	}
	d.state = DragDragging
	d.currentPx = current
}

// Cancel aborts the gesture without committing (an ESC
// keypress or equivalent). Always returns to DragIdle.
func (d *DragController) Cancel() {
	d.state = DragIdle
}

// Drop commits or rejects the gesture at its current position and
// resets the controller to DragIdle. commit is called only when the
// coordinate adapter and bounds check pass; if commit returns an error the
// returned result is uncommitted and the caller reverts the entity to
// StartPosition().
//
// widthPx/heightPx bound the map for the out-of-bounds check: a drop
// outside the map bounds is rejected (Cancel).
func (d *DragController) Drop(widthPx, heightPx float64, commit func(DragResult) error) DragResult {
	if d.state == DragIdle {
		return DragResult{}
	}
	defer func() { d.state = DragIdle }()

	pos := d.currentPx
	if !(Rect{Width: widthPx, Height: heightPx}).Contains(pos.X, pos.Y) {
		return DragResult{}
	}

	result := d.adapt(pos)
	if commit != nil {
		if err := commit(result); err != nil {
			return DragResult{}
		}
	}
	return result
}

// adapt applies the coordinate adapter rule for the controller's kind.
func (d *DragController) adapt(pos Point) DragResult {
	if d.kind.gridBased() {
		if !d.hasGrid {
			return DragResult{Committed: true, Pixel: pos}
		}
		cell, err := d.grid.PixelToCell(pos)
		if err != nil {
			return DragResult{Committed: true, Pixel: pos}
		}
		return DragResult{Committed: true, Cell: cell}
	}
	if d.snap && d.hasGrid {
		snapped, err := d.grid.SnapToCell(pos)
		if err == nil {
			return DragResult{Committed: true, Pixel: snapped}
		}
	}
	return DragResult{Committed: true, Pixel: pos}
}
