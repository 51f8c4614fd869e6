package tacticalmap

import (
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// MapID uniquely identifies a Map. Maps are identified by UUID (assigned at
// import time) rather than a small integer, since they are also used as
// on-disk file stems: {data_dir}/<owner>/maps/<uuid>.uvtt.
type MapID = uuid.UUID

// AmbientLight is the map-wide baseline illumination.
type AmbientLight uint8

const (
	AmbientBright AmbientLight = iota
	AmbientDim
	AmbientDarkness
)

// Owner identifies the campaign-manager entity (campaign, module, etc.)
// that owns an imported map. The engine treats this as an opaque pair used
// only to namespace on-disk storage; ownership semantics belong to the
// host application.
type Owner struct {
	Kind string
	ID   int64
}

// ImageRef is an opaque handle to a map's decoded background image. It is
// an ebiten.Image so a host renderer can draw it directly with zero extra
// copies; the engine never draws it itself (the stated non-goals: GPU compute).
type ImageRef = ebiten.Image

// Wall is a polyline of 2+ points in pixel space, stored as consecutive
// segments for the Visibility Engine. Immutable after load.
type Wall struct {
	ID     int
	Points []Point
	Closed bool // true when the source polyline's first point equals its last
}

// Segments returns the wall's consecutive line segments. A closed wall's
// segments additionally include the one connecting its last point back to
// its first.
func (w Wall) Segments() []Segment {
	n := len(w.Points)
	if n < 2 {
		return nil
	}
	segs := make([]Segment, 0, n)
	for i := 0; i < n-1; i++ {
		segs = append(segs, Segment{A: w.Points[i], B: w.Points[i+1]})
	}
	if w.Closed && n > 2 {
		segs = append(segs, Segment{A: w.Points[n-1], B: w.Points[0]})
	}
	return segs
}

// Portal is a door-like gap in a wall. A closed portal behaves as a wall
// segment for visibility purposes; an open portal is transparent.
type Portal struct {
	ID       int
	Segment  Segment
	IsClosed bool
	// Bound is true when this portal is anchored to a specific wall
	// segment for rendering purposes. A portal imported with no matching
	// wall segment (see UVTT importer) has Bound == false and behaves as
	// a free-floating toggleable occluder.
	Bound bool
}

// MapLight is a light embedded directly in a UVTT document. Unlike a
// placed LightSource, it is always lit, cannot be toggled, and is never
// owned by a token.
type MapLight struct {
	ID       int
	Position Point
	BrightFt float64
	DimFt    float64
	Color    Color
	HasColor bool
}

// Map is the authoritative static description of a tabletop map: its
// image, grid, ambient light, and UVTT-derived geometry (walls, portals,
// embedded lights). Runtime entities (tokens, placed lights, markers) are
// NOT part of Map — they live in the per-map mapEntry owned by the Store,
// since they mutate far more often and are never re-derived from a UVTT
// document.
type Map struct {
	ID       MapID
	Owner    Owner
	Name     string
	Image    *ImageRef
	WidthPx  float64
	HeightPx float64
	Grid     Grid

	AmbientLight AmbientLight

	Walls     []Wall
	Portals   []Portal
	MapLights []MapLight
}

// validate checks the structural invariants that apply to a Map's static
// fields. Called after UVTT import and before a Map is handed to the Store.
func (m *Map) validate() error {
	if !m.Grid.valid() {
		return formatErr(ErrInvariantViolation, "grid size must be > 0 iff grid kind is not none")
	}
	if m.WidthPx <= 0 || m.HeightPx <= 0 {
		return formatErr(ErrInvariantViolation, "map dimensions must be positive")
	}
	return nil
}
