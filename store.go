package tacticalmap

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// mapEntry is the Store's per-map authoritative runtime state. The
// imported UVTT-derived geometry (walls, map lights, grid, image) is
// treated as read-only after load; only Portals (open/closed), ambient
// light, and the entity collections mutate.
type mapEntry struct {
	def     *Map
	portals []Portal // mutable copy of def.Portals

	ambientLight AmbientLight

	tokens  map[int]*Token
	lights  map[int]*LightSource
	markers map[int]*Marker

	nextTokenID, nextLightID, nextMarkerID int
}

func newMapEntry(m *Map) *mapEntry {
	portals := append([]Portal(nil), m.Portals...)
	return &mapEntry{
		def:          m,
		portals:      portals,
		ambientLight: m.AmbientLight,
		tokens:       make(map[int]*Token),
		lights:       make(map[int]*LightSource),
		markers:      make(map[int]*Marker),
	}
}

// Store is the single owner of mutable per-map state. Only
// the DM surface mutates a Store; the Player surface holds a read-through
// cache populated by the Display Channel (see PlayerView).
type Store struct {
	dataDir string
	maps    map[MapID]*Map
	runtime map[MapID]*mapEntry
	session *MapSession
	channel *Channel
}

// NewStore creates an empty Store rooted at dataDir ({data_dir}). dataDir may be empty if the caller never imports or saves
// state to disk (e.g. in tests).
func NewStore(dataDir string) *Store {
	s := &Store{
		dataDir: dataDir,
		maps:    make(map[MapID]*Map),
		runtime: make(map[MapID]*mapEntry),
	}
	s.channel = NewChannel()
	s.channel.Subscribe(s.serveRequestState)
	return s
}

// Channel returns the Store's Display Channel. Subscribe a PlayerView (or
// any Handler) to it to receive synchronization events.
func (s *Store) Channel() *Channel { return s.channel }

// registerMap adds a Map definition (from UVTT import, or any other
// source) to the Store without loading it as the active map.
func (s *Store) registerMap(m *Map) {
	s.maps[m.ID] = m
	s.runtime[m.ID] = newMapEntry(m)
}

// LoadMap establishes id as the active map, returning a fresh MapSession.
// load_map re-establishes an existing session's active map if one exists,
// rather than requiring a fresh Store per map.
func (s *Store) LoadMap(id MapID) (*MapSession, error) {
	m, ok := s.maps[id]
	if !ok {
		return nil, formatErr(ErrMapNotFound, "load_map %s", id)
	}
	s.session = NewMapSession(id)
	entry, ps, err := s.loadState(id)
	if err == nil {
		s.runtime[id] = entry
		s.session.Viewport = ps.Viewport
		s.session.RevealMap = ps.RevealMap
		s.session.TokenOnlyLOS = ps.TokenOnlyLOS
		s.session.Blackout = ps.Blackout
	}
	s.publishMapUpdate(m)
	return s.session, nil
}

// Session returns the current MapSession, or nil if no map has been loaded.
func (s *Store) Session() *MapSession { return s.session }

// Map returns the static Map definition for id.
func (s *Store) Map(id MapID) (*Map, bool) {
	m, ok := s.maps[id]
	return m, ok
}

func (s *Store) activeEntry() (*mapEntry, error) {
	if s.session == nil {
		return nil, formatErr(ErrMapNotFound, "no active map")
	}
	entry, ok := s.runtime[s.session.ActiveMapID]
	if !ok {
		return nil, formatErr(ErrMapNotFound, "active map %s", s.session.ActiveMapID)
	}
	return entry, nil
}

// --- Token operations ---

// AddToken places a new token on the active map. It fails with
// ErrOutOfBounds if draft.Position falls outside the map's pixel bounds
// (add_token guarantee).
func (s *Store) AddToken(draft TokenDraft) (*Token, error) {
	entry, err := s.activeEntry()
	if err != nil {
		return nil, err
	}
	if !(Rect{Width: entry.def.WidthPx, Height: entry.def.HeightPx}).Contains(draft.Position.X, draft.Position.Y) {
		return nil, formatErr(ErrOutOfBounds, "add_token at (%.1f,%.1f)", draft.Position.X, draft.Position.Y)
	}
	entry.nextTokenID++
	tok := &Token{
		ID:               entry.nextTokenID,
		MapID:            s.session.ActiveMapID,
		Name:             draft.Name,
		Kind:             draft.Kind,
		Size:             draft.Size,
		Color:            draft.Color,
		ImageRef:         draft.ImageRef,
		Position:         draft.Position,
		VisibleToPlayers: !draft.Hidden,
		VisionRadiusFt:   draft.VisionRadiusFt,
		DarkvisionFt:     draft.DarkvisionFt,
	}
	entry.tokens[tok.ID] = tok
	s.afterMutation(entry, mutationTokens)
	return tok, nil
}

// MoveToken updates a token's pixel position, notifying subscribers once.
func (s *Store) MoveToken(id int, pos Point) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	tok, ok := entry.tokens[id]
	if !ok {
		return formatErr(ErrEntityNotFound, "move_token %d", id)
	}
	if !(Rect{Width: entry.def.WidthPx, Height: entry.def.HeightPx}).Contains(pos.X, pos.Y) {
		return formatErr(ErrOutOfBounds, "move_token %d to (%.1f,%.1f)", id, pos.X, pos.Y)
	}
	tok.Position = pos
	s.afterMutation(entry, mutationTokens)
	return nil
}

// RemoveToken tombstones a token. Any light attached to it is detached
// rather than left pointing at a gone token.
func (s *Store) RemoveToken(id int) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	if _, ok := entry.tokens[id]; !ok {
		return formatErr(ErrEntityNotFound, "remove_token %d", id)
	}
	delete(entry.tokens, id)
	for _, l := range entry.lights {
		if l.AttachedTokenID == id {
			l.AttachedTokenID = 0
		}
	}
	s.afterMutation(entry, mutationTokens|mutationLights, id)
	return nil
}

// ListTokens returns a snapshot of every token on id's map.
func (s *Store) ListTokens(id MapID) ([]Token, error) {
	entry, ok := s.runtime[id]
	if !ok {
		return nil, formatErr(ErrMapNotFound, "list_tokens %s", id)
	}
	return tokenSnapshot(entry), nil
}

// SetTokenVisibility flips whether a token is visible to players,
// independent of reveal_map/token_only_los mode gating — this is the
// per-token override render.go's visibleToPlayers checks (an ambush
// monster the DM wants hidden even with reveal_map on).
func (s *Store) SetTokenVisibility(id int, visible bool) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	tok, ok := entry.tokens[id]
	if !ok {
		return formatErr(ErrEntityNotFound, "set_token_visibility %d", id)
	}
	tok.VisibleToPlayers = visible
	s.afterMutation(entry, mutationTokens)
	return nil
}

// SetTokenDead marks a token dead or alive. A dead token stops acting as a
// Visibility Engine observer (render.go's pcObservers) and any light
// attached to it is treated as unlit until it is revived (lighting.go's
// tokenIndex.TokenPosition).
func (s *Store) SetTokenDead(id int, dead bool) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	tok, ok := entry.tokens[id]
	if !ok {
		return formatErr(ErrEntityNotFound, "set_token_dead %d", id)
	}
	tok.IsDead = dead
	s.afterMutation(entry, mutationTokens|mutationLights)
	return nil
}

// --- Light operations ---

// AddLight places a new light source on the active map.
func (s *Store) AddLight(draft LightDraft) (*LightSource, error) {
	entry, err := s.activeEntry()
	if err != nil {
		return nil, err
	}
	entry.nextLightID++
	l := &LightSource{
		ID:              entry.nextLightID,
		MapID:           s.session.ActiveMapID,
		Position:        draft.Position,
		BrightFt:        draft.BrightFt,
		DimFt:           draft.DimFt,
		Color:           draft.Color,
		HasColor:        draft.HasColor,
		IsLit:           draft.IsLit,
		AttachedTokenID: draft.AttachTo,
	}
	entry.lights[l.ID] = l
	s.afterMutation(entry, mutationLights)
	return l, nil
}

// RemoveLight removes a placed light source.
func (s *Store) RemoveLight(id int) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	if _, ok := entry.lights[id]; !ok {
		return formatErr(ErrEntityNotFound, "remove_light %d", id)
	}
	delete(entry.lights, id)
	s.afterMutation(entry, mutationLights)
	return nil
}

// ToggleLight flips a placed light's lit flag.
func (s *Store) ToggleLight(id int) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	l, ok := entry.lights[id]
	if !ok {
		return formatErr(ErrEntityNotFound, "toggle_light %d", id)
	}
	l.IsLit = !l.IsLit
	s.afterMutation(entry, mutationLights)
	return nil
}

// ListLights returns a snapshot of every placed light on id's map.
func (s *Store) ListLights(id MapID) ([]LightSource, error) {
	entry, ok := s.runtime[id]
	if !ok {
		return nil, formatErr(ErrMapNotFound, "list_lights %s", id)
	}
	return lightSnapshot(entry), nil
}

// --- Marker operations ---

// AddMarker places a new trap or POI marker (grid coordinates) on the
// active map.
func (s *Store) AddMarker(draft MarkerDraft) (*Marker, error) {
	entry, err := s.activeEntry()
	if err != nil {
		return nil, err
	}
	entry.nextMarkerID++
	mk := &Marker{
		ID:               entry.nextMarkerID,
		MapID:            s.session.ActiveMapID,
		Kind:             draft.Kind,
		Position:         draft.Position,
		VisibleToPlayers: draft.VisibleToPlayers,
		Label:            draft.Label,
		Icon:             draft.Icon,
	}
	entry.markers[mk.ID] = mk
	s.afterMutation(entry, mutationNone)
	return mk, nil
}

// RemoveMarker removes a trap/POI marker.
func (s *Store) RemoveMarker(id int) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	if _, ok := entry.markers[id]; !ok {
		return formatErr(ErrEntityNotFound, "remove_marker %d", id)
	}
	delete(entry.markers, id)
	s.afterMutation(entry, mutationNone)
	return nil
}

// ListMarkers returns a snapshot of every marker on id's map.
func (s *Store) ListMarkers(id MapID) ([]Marker, error) {
	entry, ok := s.runtime[id]
	if !ok {
		return nil, formatErr(ErrMapNotFound, "list_markers %s", id)
	}
	out := make([]Marker, 0, len(entry.markers))
	for _, mk := range entry.markers {
		out = append(out, *mk)
	}
	return out, nil
}

// SetMarkerVisibility flips whether a trap/POI marker is visible to
// players — the DM's "reveal this" action once it's found. Markers have no
// dedicated Display Channel event, matching AddMarker/RemoveMarker above.
func (s *Store) SetMarkerVisibility(id int, visible bool) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	mk, ok := entry.markers[id]
	if !ok {
		return formatErr(ErrEntityNotFound, "set_marker_visibility %d", id)
	}
	mk.VisibleToPlayers = visible
	s.afterMutation(entry, mutationNone)
	return nil
}

// --- Portal / ambient light ---

// SetPortalState flips a portal open/closed. The Visibility Engine reads
// portal state fresh on every compute, so the effect on occlusion is
// immediate.
func (s *Store) SetPortalState(id int, closed bool) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	for i := range entry.portals {
		if entry.portals[i].ID == id {
			entry.portals[i].IsClosed = closed
			s.afterMutation(entry, mutationFog)
			return nil
		}
	}
	return formatErr(ErrEntityNotFound, "set_portal_state %d", id)
}

// SetAmbientLight sets the map's current ambient light level.
func (s *Store) SetAmbientLight(level AmbientLight) error {
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	entry.ambientLight = level
	s.afterMutation(entry, mutationFog)
	return nil
}

// --- Session (viewport / fog policy) operations ---

// SetViewport applies a new DM pan/zoom and mirrors it to the Player
// surface. DM-only.
func (s *Store) SetViewport(panX, panY, zoom float64) error {
	if s.session == nil {
		return formatErr(ErrMapNotFound, "set_viewport: no active map")
	}
	s.session.SetViewport(panX, panY, zoom)
	s.channel.Publish(Event{
		Type:  EventViewportUpdate,
		MapID: s.session.ActiveMapID,
		Payload: ViewportUpdatePayload{
			PanX: s.session.Viewport.PanX, PanY: s.session.Viewport.PanY, Zoom: s.session.Viewport.Zoom,
		},
	})
	entry, err := s.activeEntry()
	if err == nil {
		s.saveState(entry)
	}
	return nil
}

// SetRevealMap and SetTokenOnlyLOS toggle independent axes: setting one
// never changes the other. While reveal-map is on, BuildRenderModel ignores
// token-only LOS.
func (s *Store) SetRevealMap(v bool) error {
	if s.session == nil {
		return formatErr(ErrMapNotFound, "set_reveal_map: no active map")
	}
	s.session.RevealMap = v
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	s.afterMutation(entry, mutationFog)
	return nil
}

func (s *Store) SetTokenOnlyLOS(v bool) error {
	if s.session == nil {
		return formatErr(ErrMapNotFound, "set_token_only_los: no active map")
	}
	s.session.TokenOnlyLOS = v
	entry, err := s.activeEntry()
	if err != nil {
		return err
	}
	s.afterMutation(entry, mutationFog)
	return nil
}

// SetBlackout toggles the DM's blackout override.
func (s *Store) SetBlackout(v bool) error {
	if s.session == nil {
		return formatErr(ErrMapNotFound, "set_blackout: no active map")
	}
	s.session.Blackout = v
	s.channel.Publish(Event{
		Type:    EventBlackout,
		MapID:   s.session.ActiveMapID,
		Payload: BlackoutPayload{IsBlackout: v},
	})
	entry, err := s.activeEntry()
	if err == nil {
		s.saveState(entry)
	}
	return nil
}

// SetLOSDebug toggles verbose stderr trace logging of Store mutations,
// each with a dump of the map's tokens, lights and portals.
func (s *Store) SetLOSDebug(v bool) error {
	if s.session == nil {
		return formatErr(ErrMapNotFound, "set_los_debug: no active map")
	}
	s.session.LOSDebug = v
	return nil
}

// --- mutation plumbing ---

type mutationKind uint8

const (
	mutationNone mutationKind = 0
	mutationTokens mutationKind = 1 << iota
	mutationLights
	mutationFog
)

// afterMutation publishes the Display Channel events implied by kind,
// persists runtime state to disk, and (when LOSDebug is set) logs a trace
// line.
func (s *Store) afterMutation(entry *mapEntry, kind mutationKind, deadIDs ...int) {
	mapID := s.session.ActiveMapID

	if kind&mutationTokens != 0 {
		s.channel.Publish(Event{
			Type:  EventTokensUpdate,
			MapID: mapID,
			Payload: TokensUpdatePayload{
				Tokens:  tokenSnapshot(entry),
				DeadIDs: deadIDs,
			},
		})
	}
	if kind&mutationLights != 0 {
		s.channel.Publish(Event{
			Type:    EventLightsUpdate,
			MapID:   mapID,
			Payload: LightsUpdatePayload{LightSources: lightSnapshot(entry)},
		})
	}
	// Token and light mutations can change what's occluded/who's attached,
	// so any visibility-relevant mutation also republishes the fog update.
	if kind != mutationNone {
		s.publishFogUpdate(entry)
	}

	s.saveState(entry)

	if s.session.LOSDebug {
		debugLogf("store: mutation kind=%d map=%s tokens=%d lights=%d",
			kind, mapID, len(entry.tokens), len(entry.lights))
		debugLogf("store: entity snapshot:\n%s", spew.Sdump(entry.tokens, entry.lights, entry.portals))
	}
}

func (s *Store) publishMapUpdate(m *Map) {
	s.channel.Publish(Event{
		Type:  EventMapUpdate,
		MapID: m.ID,
		Payload: MapUpdatePayload{
			Grid: m.Grid, AmbientLight: m.AmbientLight, Width: m.WidthPx, Height: m.HeightPx,
		},
	})
}

func (s *Store) publishFogUpdate(entry *mapEntry) {
	hasWalls := len(entry.def.Walls) > 0
	occluders := OccludingSegments(entry.def.Walls, entry.portals)
	observers := pcObservers(tokenSnapshot(entry))
	results := visibilityResultsFor(entry.def.Grid, observers, occluders, hasWalls)

	var circles []VisionCircle
	var paths []Polygon
	for _, r := range results {
		if hasWalls && r.HasPolygon {
			paths = append(paths, r.Polygon)
		} else {
			circles = append(circles, VisionCircleFallback(r.Observer))
		}
	}

	s.channel.Publish(Event{
		Type:  EventFogUpdate,
		MapID: s.session.ActiveMapID,
		Payload: FogUpdatePayload{
			RevealMap:       s.session.RevealMap,
			TokenOnlyLOS:    s.session.TokenOnlyLOS,
			VisionCircles:   circles,
			VisibilityPaths: paths,
			Walls:           entry.def.Walls,
			UVTTLights:      entry.def.MapLights,
			AmbientLight:    entry.ambientLight,
		},
	})
}

// serveRequestState implements the DM side of the request-state
// handshake: on receiving EventRequestState, respond with the current-state
// burst in the required order (map-update, tokens-update, lights-update,
// fog-update, viewport-update, blackout).
func (s *Store) serveRequestState(evt Event) {
	if evt.Type != EventRequestState || s.session == nil {
		return
	}
	entry, err := s.activeEntry()
	if err != nil {
		return
	}
	m := s.maps[s.session.ActiveMapID]
	s.publishMapUpdate(m)
	s.channel.Publish(Event{Type: EventTokensUpdate, MapID: m.ID, Payload: TokensUpdatePayload{Tokens: tokenSnapshot(entry)}})
	s.channel.Publish(Event{Type: EventLightsUpdate, MapID: m.ID, Payload: LightsUpdatePayload{LightSources: lightSnapshot(entry)}})
	s.publishFogUpdate(entry)
	s.channel.Publish(Event{Type: EventViewportUpdate, MapID: m.ID, Payload: ViewportUpdatePayload{
		PanX: s.session.Viewport.PanX, PanY: s.session.Viewport.PanY, Zoom: s.session.Viewport.Zoom,
	}})
	s.channel.Publish(Event{Type: EventBlackout, MapID: m.ID, Payload: BlackoutPayload{IsBlackout: s.session.Blackout}})
}

func tokenSnapshot(entry *mapEntry) []Token {
	out := make([]Token, 0, len(entry.tokens))
	for _, t := range entry.tokens {
		out = append(out, *t)
	}
	return out
}

func lightSnapshot(entry *mapEntry) []LightSource {
	out := make([]LightSource, 0, len(entry.lights))
	for _, l := range entry.lights {
		out = append(out, *l)
	}
	return out
}

func debugLogf(format string, args ...any) {
	fmt.Fprintf(debugWriter, "[mapengine] "+format+"\n", args...)
}
