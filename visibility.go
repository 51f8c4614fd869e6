package tacticalmap

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Observer is a visibility query: a point in pixel space and a vision
// radius in pixels. Only PC-class tokens ever become Observers — players'
// visibility is determined only by their own characters — but callers are
// responsible for that filtering; this package computes whatever Observer
// it's given.
type Observer struct {
	Position Point
	RadiusPx float64
}

// ComputeVisibility returns the star-shaped polygon of points visible from
// obs.Position within obs.RadiusPx, given the set of occluding segments
// (wall segments plus closed-portal segments). It is a pure, reentrant
// function: the same inputs always produce the same
// polygon, and it never errors.
//
// When obs.RadiusPx <= 0 it returns an empty polygon. When occluders is
// empty (a degenerate/wall-less map) it returns ok=false so the caller
// falls back to a circular vision cutout (fallback
// mode); no polygon approximation of the vision circle is produced for
// that case.
func ComputeVisibility(obs Observer, occluders []Segment) (poly Polygon, ok bool) {
	if obs.RadiusPx <= 0 {
		return Polygon{}, true
	}
	if len(occluders) == 0 {
		return Polygon{}, false
	}

	angles := collectInterestAngles(obs.Position, occluders)
	points := make([]Point, 0, len(angles))
	for _, a := range angles {
		points = append(points, castRay(obs.Position, a, obs.RadiusPx, occluders))
	}
	return Polygon{Points: points}, true
}

// ComputeVisibilityBatch computes a visibility polygon for each observer
// concurrently, joining before returning so callers that mutate shared
// state afterward (Store persistence, Render Model assembly) see a fully
// serialized sequence point. The returned slice is in the same order as
// observers; a per-observer error can only arise from ctx cancellation,
// since ComputeVisibility itself never errors.
func ComputeVisibilityBatch(ctx context.Context, observers []Observer, occluders []Segment) ([]VisibilityResult, error) {
	results := make([]VisibilityResult, len(observers))
	g, gctx := errgroup.WithContext(ctx)
	for i, obs := range observers {
		i, obs := i, obs
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			poly, ok := ComputeVisibility(obs, occluders)
			results[i] = VisibilityResult{Observer: obs, Polygon: poly, HasPolygon: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// VisibilityResult pairs an Observer with its computed polygon.
type VisibilityResult struct {
	Observer   Observer
	Polygon    Polygon
	HasPolygon bool
}

// VisionCircleFallback returns the circular vision cutout used by the
// Render Model when a map has no occluding geometry (fallback mode).
func VisionCircleFallback(obs Observer) VisionCircle {
	return VisionCircle{Center: obs.Position, Radius: obs.RadiusPx}
}

// collectInterestAngles gathers the angle from origin to every occluder
// endpoint, each augmented by +/-epsilon to capture both sides of the
// corner, plus circleSamples evenly spaced angles around the full circle,
// then sorts and dedups them so the output
// polygon's vertices are in angular order.
func collectInterestAngles(origin Point, occluders []Segment) []float64 {
	seen := make(map[float64]bool, len(occluders)*4)
	var angles []float64
	add := func(a float64) {
		a = normalizeAngle(a)
		if !seen[a] {
			seen[a] = true
			angles = append(angles, a)
		}
	}
	for _, seg := range occluders {
		for _, p := range [2]Point{seg.A, seg.B} {
			base := p.Sub(origin).Angle()
			add(base - angleEpsilon)
			add(base)
			add(base + angleEpsilon)
		}
	}
	// Evenly spaced angles close the polygon around origin in directions no
	// occluder endpoint covers, so unobstructed rays reach the vision circle.
	for k := 0; k < circleSamples; k++ {
		add(float64(k) * 2 * math.Pi / circleSamples)
	}
	sort.Float64s(angles)
	return angles
}

// angleEpsilon is the angular nudge used to straddle occluder corners.
// Distinct from the geometric epsilon since it's a radian offset, not a
// pixel-space tolerance.
const angleEpsilon = 1e-6

// circleSamples is the number of evenly spaced sweep angles added on top of
// the occluder-endpoint angles.
const circleSamples = 64

func normalizeAngle(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// castRay finds the nearest occluder hit along angle from origin within
// radius, falling back to the point on the bounding circle when nothing is
// hit. Ties within epsilon distance are broken by nearest-first.
func castRay(origin Point, angle, radius float64, occluders []Segment) Point {
	best := radius
	for _, seg := range occluders {
		hit, t, _ := RaySegmentIntersect(origin, angle, seg)
		if !hit || t > radius+epsilon {
			continue
		}
		if t < best-epsilon {
			best = t
		}
	}
	if best > radius {
		best = radius
	}
	return Point{
		X: origin.X + math.Cos(angle)*best,
		Y: origin.Y + math.Sin(angle)*best,
	}
}

// OccludingSegments collects the currently-occluding segments for a map's
// walls and portals: every wall segment, plus the segment of any portal
// whose IsClosed flag is currently true. Open portals contribute nothing;
// recomputing this fresh on every call is what makes a portal's
// closed->open flip take effect immediately.
func OccludingSegments(walls []Wall, portals []Portal) []Segment {
	var segs []Segment
	for _, w := range walls {
		segs = append(segs, w.Segments()...)
	}
	for _, p := range portals {
		if p.IsClosed {
			segs = append(segs, p.Segment)
		}
	}
	return segs
}
