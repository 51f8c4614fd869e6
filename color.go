package tacticalmap

import "github.com/lucasb-eyer/go-colorful"

// Color represents an RGBA color with components in [0, 1]. Not
// premultiplied — premultiplication, if any, is left to the host renderer.
// Matches the rendering vocabulary an Ebitengine-based host already
// knows, so a Render Model overlay can be handed straight to it without
// translation.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the neutral tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is pure opaque black, used for the blackout surface and the
// darkness veil base layer.
var ColorBlack = Color{0, 0, 0, 1}

// BlendMode names a compositing operation in a host renderer's vocabulary.
// No Render Model type in this package carries a BlendMode, and no package
// in this module performs pixel compositing — that is strictly a host
// renderer's job (the stated non-goals: shaders/GPU compute).
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter — suited to colored light tint passes
	BlendMultiply                  // multiply — suited to an ambient darkness veil
	BlendErase                     // destination-out — suited to punching bright/dim holes in darkness
)

// toColorful converts a Color to a go-colorful Color for its blending
// math. Out-of-range components are not clamped here; callers
// that need a displayable value should clamp first.
func (c Color) toColorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// fromColorful converts back, carrying over alpha unchanged since
// go-colorful has no alpha channel.
func fromColorful(c colorful.Color, alpha float64) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}
}

// BlendColors composes the colored contribution of multiple simultaneously
// active lights covering the same point, by interpolating RGB components
// (go-colorful's BlendRgb, not its linear-RGB variant) in proportion to
// each light's weight — the lighting contribution is a
// composition rule rather than a calculation; this is that rule's color
// arithmetic. Lights with zero combined weight yield
// ColorWhite (no tint).
func BlendColors(colors []Color, weights []float64) Color {
	if len(colors) == 0 {
		return ColorWhite
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return ColorWhite
	}

	blended := colors[0].toColorful()
	accumulated := weights[0]
	for i := 1; i < len(colors); i++ {
		w := weights[i]
		if w <= 0 {
			continue
		}
		accumulated += w
		t := w / accumulated
		blended = blended.BlendRgb(colors[i].toColorful(), t)
	}

	alpha := 0.0
	for i, w := range weights {
		alpha += (w / total) * colors[i].A
	}
	return fromColorful(blended, alpha)
}
