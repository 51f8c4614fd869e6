package tacticalmap

// LightBand is the reveal strength a point gets from a single light
// contribution — a composition rule, not a calculation: bright circles
// fully reveal, dim circles partially reveal, and the ambient base sits
// beneath both.
type LightBand uint8

const (
	BandNone LightBand = iota
	BandDim
	BandBright
)

// LitCircle is a resolved, positioned light contribution in pixel space,
// ready for the Render Model to layer: a bright disc of BrightRadiusPx
// inside a dim disc of DimRadiusPx, tinted by Color when HasColor is set.
type LitCircle struct {
	Center         Point
	BrightRadiusPx float64
	DimRadiusPx    float64
	Color          Color
	HasColor       bool
}

// tokenIndex resolves an attached light's owning token by id, reporting
// not-alive for a dead or removed token: ComposeLighting treats such a
// light as unlit for the tick rather than tracking a stale position.
type tokenIndex map[int]Token

func (idx tokenIndex) TokenPosition(id int) (Point, bool) {
	t, ok := idx[id]
	if !ok || t.IsDead {
		return Point{}, false
	}
	return t.Position, true
}

// ComposeLighting resolves the active light set for a tick: every lit
// LightSource (attached lights track their token's current
// position, and are skipped if the token is dead or gone), plus every
// MapLight (always lit, position fixed). grid converts
// each light's bright_ft/dim_ft into pixel radii.
func ComposeLighting(grid Grid, sources []LightSource, mapLights []MapLight, tokens []Token) []LitCircle {
	idx := make(tokenIndex, len(tokens))
	for _, t := range tokens {
		idx[t.ID] = t
	}

	circles := make([]LitCircle, 0, len(sources)+len(mapLights))
	for _, l := range sources {
		if !l.IsLit {
			continue
		}
		pos := l.Position
		if l.AttachedTokenID != 0 {
			p, alive := idx.TokenPosition(l.AttachedTokenID)
			if !alive {
				continue
			}
			pos = p
		}
		circles = append(circles, LitCircle{
			Center:         pos,
			BrightRadiusPx: grid.FeetToPixels(l.BrightFt),
			DimRadiusPx:    grid.FeetToPixels(l.BrightFt + l.DimFt),
			Color:          l.Color,
			HasColor:       l.HasColor,
		})
	}
	for _, l := range mapLights {
		circles = append(circles, LitCircle{
			Center:         l.Position,
			BrightRadiusPx: grid.FeetToPixels(l.BrightFt),
			DimRadiusPx:    grid.FeetToPixels(l.BrightFt + l.DimFt),
			Color:          l.Color,
			HasColor:       l.HasColor,
		})
	}
	return circles
}

// DarkvisionCircle returns a token's darkvision range as a dim-light
// circle centered on it: darkvision never promotes
// darkness beyond dim, so it deliberately has no bright radius.
func DarkvisionCircle(grid Grid, token Token) LitCircle {
	return LitCircle{
		Center:      token.Position,
		DimRadiusPx: grid.FeetToPixels(token.DarkvisionFt),
	}
}

// MergeOverlappingColors blends the colors of lights whose dim discs
// overlap into a single composed tint per overlap group, via
// BlendColors — so a cell covered by more than one colored light gets the
// actual composed wash rather than a stack of independent overlays the
// host has to blend itself. Circles are grouped by pairwise dim-radius
// overlap; uncolored or non-overlapping circles pass through unchanged.
func MergeOverlappingColors(circles []LitCircle) []LitCircle {
	n := len(circles)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < n; i++ {
		if !circles[i].HasColor {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !circles[j].HasColor {
				continue
			}
			reach := circles[i].DimRadiusPx + circles[j].DimRadiusPx
			if circles[i].Center.Distance(circles[j].Center) <= reach {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range circles {
		if circles[i].HasColor {
			groups[find(i)] = append(groups[find(i)], i)
		}
	}

	out := append([]LitCircle(nil), circles...)
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		colors := make([]Color, len(members))
		weights := make([]float64, len(members))
		for k, idx := range members {
			colors[k] = circles[idx].Color
			weights[k] = circles[idx].BrightRadiusPx + circles[idx].DimRadiusPx
		}
		blended := BlendColors(colors, weights)
		for _, idx := range members {
			out[idx].Color = blended
		}
	}
	return out
}

// BandAt reports the strongest band a point falls into across every
// circle in circles.
func BandAt(p Point, circles []LitCircle) LightBand {
	band := BandNone
	for _, c := range circles {
		d := p.Distance(c.Center)
		if d <= c.BrightRadiusPx && band < BandBright {
			band = BandBright
		} else if d <= c.DimRadiusPx && band < BandDim {
			band = BandDim
		}
	}
	return band
}

// ComposeAmbient resolves the final reveal band at a point given the
// map's ambient light level and the active lit circles. When ambient is
// bright, lights never add beyond bright; when darkness, only lit circles
// (and the darkvision circles the caller mixes into circles) reveal
// anything.
func ComposeAmbient(ambient AmbientLight, p Point, circles []LitCircle) LightBand {
	switch ambient {
	case AmbientBright:
		return BandBright
	case AmbientDim:
		if b := BandAt(p, circles); b > BandDim {
			return b
		}
		return BandDim
	default: // AmbientDarkness
		return BandAt(p, circles)
	}
}
