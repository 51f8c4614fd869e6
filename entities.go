package tacticalmap

// TokenKind classifies a placed token for rendering and visibility rules.
// Only TokenPC tokens ever act as Visibility Engine observers — players'
// visibility is determined only by their own characters.
type TokenKind uint8

const (
	TokenPC TokenKind = iota
	TokenNPC
	TokenMonster
	TokenObject
)

// CreatureSize is the D&D 5e size category, used by hosts for token
// footprint rendering; the engine itself only stores it and never uses it
// for hit areas or occlusion.
type CreatureSize uint8

const (
	SizeTiny CreatureSize = iota
	SizeSmall
	SizeMedium
	SizeLarge
	SizeHuge
	SizeGargantuan
)

// Token is a runtime entity placed on a map: a PC, NPC, monster, or
// inanimate object. Position is always in pixel space.
type Token struct {
	ID    int
	MapID MapID

	Name  string
	Kind  TokenKind
	Size  CreatureSize
	Color Color

	ImageRef *ImageRef // optional; nil means "use a host-side default"

	Position         Point
	VisibleToPlayers bool
	IsDead           bool
	VisionRadiusFt   float64
	DarkvisionFt     float64
}

// TokenDraft carries the fields needed to place a new token; ID and MapID
// are assigned by the Store. Hidden inverts the usual zero value so a
// palette placement is visible to players by default; set it to place a
// token already hidden (an ambushing monster dropped mid-encounter) without
// a separate SetTokenVisibility call. VisibleToPlayers can still be
// changed at any time after placement via Store.SetTokenVisibility.
type TokenDraft struct {
	Name           string
	Kind           TokenKind
	Size           CreatureSize
	Color          Color
	ImageRef       *ImageRef
	Position       Point
	Hidden         bool
	VisionRadiusFt float64
	DarkvisionFt   float64
}

// LightSource is a light placed by the DM at runtime (as opposed to a
// MapLight embedded in a UVTT document). If AttachedTokenID is non-zero,
// ComposeLighting centers the light on that token's current position each
// tick (the stored Position field is not updated) — a weak reference
// resolved fresh per tick rather than a cached pointer. While the token is
// dead or absent the light contributes nothing; Store.RemoveToken detaches
// it, after which it shines from its own Position.
type LightSource struct {
	ID    int
	MapID MapID

	Position Point
	BrightFt float64
	DimFt    float64
	Color    Color
	HasColor bool
	IsLit    bool

	AttachedTokenID int // 0 means unattached
}

// LightDraft carries the fields needed to place a new light.
type LightDraft struct {
	Position Point
	BrightFt float64
	DimFt    float64
	Color    Color
	HasColor bool
	IsLit    bool
	AttachTo int // token id, or 0 for unattached
}

// MarkerKind distinguishes the two grid-coordinate marker entities.
type MarkerKind uint8

const (
	MarkerTrap MarkerKind = iota
	MarkerPOI
)

// Marker is a trap or point-of-interest. Unlike tokens and lights, markers
// live in grid coordinates (column, row) per UVTT convention — this
// asymmetry between pixel-space and grid-space entities is an explicit
// invariant of the data model, not an oversight; the
// Go type system enforces it by giving Marker a Cell field where Token and
// LightSource have a Point field.
type Marker struct {
	ID    int
	MapID MapID

	Kind             MarkerKind
	Position         Cell
	VisibleToPlayers bool
	Label            string
	Icon             string
}

// MarkerDraft carries the fields needed to place a new marker.
// VisibleToPlayers defaults to false (zero value): a newly placed trap or
// POI starts hidden from players until the DM reveals it via
// Store.SetMarkerVisibility, matching how traps are normally run at the
// table.
type MarkerDraft struct {
	Kind             MarkerKind
	Position         Cell
	VisibleToPlayers bool
	Label            string
	Icon             string
}
