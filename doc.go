// Package tacticalmap implements the tactical map engine for a desktop D&D
// 5e campaign manager: a two-surface (DM / Player) tabletop renderer with a
// line-of-sight + lighting + fog-of-war pipeline, synchronized viewports,
// and an interactive token/entity model driven by drag gestures on a shared
// canvas.
//
// The package covers everything upstream of pixels on screen: the
// authoritative per-map state ([Store]), coordinate conversion ([Grid]),
// visibility and lighting computation ([ComputeVisibility], [ComposeLighting]),
// drag/drop placement ([DragController]), the DM<->Player event protocol
// ([Channel]), and UVTT map import/export ([ImportUVTT], [ExportUVTT]). It
// deliberately does not draw anything: [BuildRenderModel] produces plain
// data that a host renderer (Ebitengine, or anything else) turns into
// pixels.
//
// # Quick start
//
//	store := tacticalmap.NewStore(dataDir)
//	m, err := store.ImportUVTT(data, tacticalmap.Owner{Kind: "campaign", ID: 7}, "Goblin Warren")
//	sess, err := store.LoadMap(m.ID)
//	tok, err := store.AddToken(tacticalmap.TokenDraft{
//		Name: "Aria", Kind: tacticalmap.TokenPC,
//		Position: tacticalmap.Point{X: 350, Y: 350}, VisionRadiusFt: 60,
//	})
//	tokens, _ := store.ListTokens(m.ID)
//	dm, player := tacticalmap.BuildRenderModel(tacticalmap.RenderInputs{
//		Session: sess, Map: m, Tokens: tokens,
//	})
//
// # Surfaces
//
// Two render sinks are fed by [BuildRenderModel] each tick: the DM surface
// (always unoccluded, with optional debug overlays) and the Player surface
// (fog/blackout/token-LOS applied). A [Channel] carries the DM->Player
// synchronization events described by the Display Channel protocol,
// including the Player surface's "request current state" handshake on
// display open.
//
// Concurrency model: single-threaded cooperative, one logical update per
// surface per tick. The Store is the single owner of mutable per-map state
// and only the DM surface may mutate it. [BuildRenderModel] and the Store's
// fog updates compute per-observer polygons one after another;
// [ComputeVisibilityBatch] is a concurrent variant (via
// golang.org/x/sync/errgroup) that joins before returning, so Store
// mutations remain totally ordered from the caller's perspective.
package tacticalmap
