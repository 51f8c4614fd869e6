package tacticalmap

// RenderLayer names one layer in the bottom-to-top composition order. A
// host renderer draws layers in this order; this package
// only decides what belongs in each layer, never how to paint it.
type RenderLayer uint8

const (
	LayerMapImage RenderLayer = iota
	LayerDimLight
	LayerBrightLight
	LayerDarknessVeil
	LayerVisionCutouts
	LayerFogMask
	LayerTokens
	LayerPortalMarkers // DM only
	LayerUIOverlays    // DM only
)

// VisionCutout is a single vision-revealing shape in the Render Model's
// cutout layer: either a polygon (hard edge, from the Visibility Engine)
// or a circle (soft blurred edge, circular fallback) — never both for the
// same observer.
type VisionCutout struct {
	Polygon  Polygon
	Circle   VisionCircle
	IsCircle bool
}

// DMRender is always-unoccluded, full-information render data for the DM
// surface: every entity, always, with optional debug overlays.
type DMRender struct {
	MapImage *ImageRef
	Tokens   []Token
	Lights   []LightSource
	Markers  []Marker
	Walls    []Wall
	Portals  []Portal

	DebugObserverPolygons []Polygon // populated only when los_debug is set
}

// PlayerRender is what the Player surface is allowed to see, after fog,
// blackout, and token-LOS gating are applied.
type PlayerRender struct {
	Blackout bool // when true every other field is meaningless

	MapImage *ImageRef
	RevealMap bool

	Cutouts []VisionCutout
	Tokens  []Token
	Lights  []LitCircle
	Markers []Marker
}

// RenderInputs bundles everything BuildRenderModel needs: the session's
// current policy flags, the active map's static geometry, and the entity
// snapshot the Store holds for it.
type RenderInputs struct {
	Session *MapSession
	Map     *Map

	Tokens  []Token
	Lights  []LightSource
	Markers []Marker
}

// BuildRenderModel computes the DM and Player render data for one tick. It
// is a pure function of its inputs — no I/O, no mutation — matching the
// conceptual signature `(MapSession, Entities, VisibilityOutputs,
// Ambient) -> (DMRender, PlayerRender)`; visibility and lighting are
// computed internally here rather than threaded in separately, since both
// are themselves pure functions of the same inputs.
func BuildRenderModel(in RenderInputs) (DMRender, PlayerRender) {
	dm := DMRender{
		MapImage: in.Map.Image,
		Tokens:   in.Tokens,
		Lights:   in.Lights,
		Markers:  in.Markers,
		Walls:    in.Map.Walls,
		Portals:  in.Map.Portals,
	}

	if in.Session.Blackout {
		return dm, PlayerRender{Blackout: true}
	}

	hasWalls := len(in.Map.Walls) > 0
	occluders := OccludingSegments(in.Map.Walls, in.Map.Portals)
	observers := pcObservers(in.Tokens)
	results := visibilityResultsFor(in.Map.Grid, observers, occluders, hasWalls)

	if in.Session.LOSDebug {
		for _, r := range results {
			if r.HasPolygon {
				dm.DebugObserverPolygons = append(dm.DebugObserverPolygons, r.Polygon)
			}
		}
	}

	player := PlayerRender{
		MapImage:  in.Map.Image,
		RevealMap: in.Session.RevealMap,
	}

	lights := ComposeLighting(in.Map.Grid, in.Lights, in.Map.MapLights, in.Tokens)
	for _, t := range observers {
		if t.DarkvisionFt > 0 {
			lights = append(lights, DarkvisionCircle(in.Map.Grid, t))
		}
	}
	lights = MergeOverlappingColors(lights)

	if in.Session.RevealMap {
		player.Tokens = visibleToPlayers(in.Tokens)
		player.Markers = visibleMarkers(in.Markers)
		player.Lights = lights
		return dm, player
	}

	player.Cutouts = cutoutsFrom(results, hasWalls)
	player.Lights = lights
	player.Markers = visibleMarkers(in.Markers)
	player.Tokens = visiblePlayerTokens(in.Tokens, results, in.Session.TokenOnlyLOS, hasWalls)

	return dm, player
}

func pcObservers(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind == TokenPC && !t.IsDead {
			out = append(out, t)
		}
	}
	return out
}

func visibilityResultsFor(grid Grid, observers []Token, occluders []Segment, hasWalls bool) []VisibilityResult {
	results := make([]VisibilityResult, 0, len(observers))
	for _, t := range observers {
		obs := Observer{Position: t.Position, RadiusPx: grid.FeetToPixels(t.VisionRadiusFt)}
		if !hasWalls {
			results = append(results, VisibilityResult{Observer: obs, HasPolygon: false})
			continue
		}
		poly, ok := ComputeVisibility(obs, occluders)
		results = append(results, VisibilityResult{Observer: obs, Polygon: poly, HasPolygon: ok})
	}
	return results
}

func cutoutsFrom(results []VisibilityResult, hasWalls bool) []VisionCutout {
	cutouts := make([]VisionCutout, 0, len(results))
	for _, r := range results {
		if hasWalls && r.HasPolygon {
			cutouts = append(cutouts, VisionCutout{Polygon: r.Polygon})
		} else {
			cutouts = append(cutouts, VisionCutout{Circle: VisionCircleFallback(r.Observer), IsCircle: true})
		}
	}
	return cutouts
}

func visibleToPlayers(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.VisibleToPlayers {
			out = append(out, t)
		}
	}
	return out
}

func visibleMarkers(markers []Marker) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if m.VisibleToPlayers {
			out = append(out, m)
		}
	}
	return out
}

// visiblePlayerTokens applies the token_only_los gate:
// PC tokens are always visible; non-PC tokens are hidden unless their
// position lies inside a PC observer's polygon. The mode requires UVTT
// walls — without them it falls back to "all tokens visible".
func visiblePlayerTokens(tokens []Token, results []VisibilityResult, tokenOnlyLOS, hasWalls bool) []Token {
	if !tokenOnlyLOS || !hasWalls {
		return visibleToPlayers(tokens)
	}

	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.VisibleToPlayers {
			continue
		}
		if t.Kind == TokenPC {
			out = append(out, t)
			continue
		}
		if tokenVisibleToAnyObserver(t, results) {
			out = append(out, t)
		}
	}
	return out
}

func tokenVisibleToAnyObserver(t Token, results []VisibilityResult) bool {
	for _, r := range results {
		if r.HasPolygon && r.Polygon.ContainsPoint(t.Position.X, t.Position.Y) {
			return true
		}
	}
	return false
}
