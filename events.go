package tacticalmap

// EventType identifies which Display Channel event a payload carries.
// Direction is DM->Player for every type except
// EventRequestState, which flows Player->DM.
type EventType uint8

const (
	EventMapUpdate EventType = iota
	EventViewportUpdate
	EventBlackout
	EventTokensUpdate
	EventFogUpdate
	EventLightsUpdate
	EventRequestState
)

// Event is the common envelope for every Display Channel message. Payload
// holds one of the *Event structs below, matching Type.
type Event struct {
	Type    EventType
	MapID   MapID
	Payload any
}

// MapUpdatePayload accompanies EventMapUpdate: a new map has been selected.
// The ordering contract requires this to precede the
// first TokensUpdatePayload/FogUpdatePayload for a new map on the Player
// surface.
type MapUpdatePayload struct {
	Grid         Grid
	AmbientLight AmbientLight
	Width        float64
	Height       float64
}

// ViewportUpdatePayload accompanies EventViewportUpdate.
type ViewportUpdatePayload struct {
	PanX, PanY float64
	Zoom       float64
}

// BlackoutPayload accompanies EventBlackout.
type BlackoutPayload struct {
	IsBlackout bool
}

// TokensUpdatePayload accompanies EventTokensUpdate. Tokens is a full
// snapshot (not a delta); DeadIDs lists tokens removed since the previous
// snapshot so a Player-side cache can drop them.
type TokensUpdatePayload struct {
	Tokens  []Token
	DeadIDs []int
}

// VisionCircle is the circular-cutout fallback used by the Render Model
// when a map has no UVTT walls to sweep a visibility polygon against.
type VisionCircle struct {
	Center Point
	Radius float64 // pixels
}

// FogUpdatePayload accompanies EventFogUpdate: anything that changes what
// the Player surface should see through the fog. VisibilityPaths/Walls
// are empty when the map has no UVTT walls, in which case VisionCircles
// carries the fallback circular cutouts instead. UVTTLights carries the
// map's embedded lights whether or not it has walls.
type FogUpdatePayload struct {
	RevealMap       bool
	TokenOnlyLOS    bool
	VisionCircles   []VisionCircle
	VisibilityPaths []Polygon
	Walls           []Wall
	UVTTLights      []MapLight
	AmbientLight    AmbientLight
}

// LightsUpdatePayload accompanies EventLightsUpdate.
type LightsUpdatePayload struct {
	LightSources []LightSource
}

// RequestStatePayload accompanies EventRequestState (Player->DM): the
// Player surface has just opened, or reconnected, and needs a full resync.
type RequestStatePayload struct{}

// Handler receives every event published on a Channel it subscribed to.
type Handler func(Event)

// Subscription allows removing a registered handler.
type Subscription struct {
	id      uint32
	channel *Channel
}

// Remove unregisters the handler so it no longer fires.
func (s Subscription) Remove() {
	if s.channel == nil {
		return
	}
	s.channel.unsubscribe(s.id)
}

type subscriber struct {
	id uint32
	fn Handler
}

// Channel is the strictly-typed DM<->Player event bus.
// It has no concept of "the DM" or "the Player" itself — it is a plain
// pub/sub bus; ownership of which side publishes which EventType is
// enforced by convention (Store publishes all DM->Player events; only a
// Player-side consumer publishes EventRequestState) and, for EventRequestState,
// by the Store's own subscription that serves the handshake burst.
type Channel struct {
	subs   []subscriber
	nextID uint32
}

// NewChannel creates an empty Display Channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Subscribe registers fn to receive every published event. Use the Event's
// Type field to filter, or wrap fn to do so before calling Subscribe.
func (c *Channel) Subscribe(fn Handler) Subscription {
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return Subscription{id: id, channel: c}
}

func (c *Channel) unsubscribe(id uint32) {
	for i := range c.subs {
		if c.subs[i].id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers evt to every current subscriber, in subscription order.
func (c *Channel) Publish(evt Event) {
	for _, sub := range c.subs {
		sub.fn(evt)
	}
}

// RequestState is called by the Player surface on open or reconnect. It is
// the only event type a Player surface ever originates; every other event
// flows DM-to-Player.
func (c *Channel) RequestState(mapID MapID) {
	c.Publish(Event{Type: EventRequestState, MapID: mapID, Payload: RequestStatePayload{}})
}

// PlayerView is a reference Player-side consumer of a Channel. It enforces
// the ordering/staleness contract: duplicate or out-of-order events for a
// stale map_id are discarded, and it tracks whether a MapUpdatePayload has
// been seen yet for the current map (no tokens/fog are applied before it,
// satisfying the map-update-precedes rule structurally rather than by
// caller discipline).
type PlayerView struct {
	currentMapID  MapID
	haveMapUpdate bool

	Grid         Grid
	AmbientLight AmbientLight
	Width        float64
	Height       float64
	Viewport     ViewportUpdatePayload
	Blackout     bool
	Tokens       []Token
	Lights       []LightSource
	Fog          FogUpdatePayload
}

// NewPlayerView creates an empty PlayerView. Attach it to a Channel with
// Attach.
func NewPlayerView() *PlayerView {
	return &PlayerView{}
}

// Attach subscribes the view to ch and returns the Subscription so the
// caller can Remove it when the Player surface closes.
func (v *PlayerView) Attach(ch *Channel) Subscription {
	return ch.Subscribe(v.handle)
}

func (v *PlayerView) handle(evt Event) {
	switch evt.Type {
	case EventRequestState:
		return // Player surface never consumes its own request
	case EventMapUpdate:
		v.currentMapID = evt.MapID
		v.haveMapUpdate = true
		p := evt.Payload.(MapUpdatePayload)
		v.Grid, v.AmbientLight, v.Width, v.Height = p.Grid, p.AmbientLight, p.Width, p.Height
		// A new map resets all derived state until fresh updates arrive.
		v.Tokens, v.Lights = nil, nil
		v.Fog = FogUpdatePayload{}
		return
	}

	// Every other event type is scoped to a map; ignore it if it's not for
	// the map we most recently saw a MapUpdate for. This tolerates events
	// from a prior map transition arriving out of order.
	if !v.haveMapUpdate || evt.MapID != v.currentMapID {
		return
	}

	switch evt.Type {
	case EventViewportUpdate:
		v.Viewport = evt.Payload.(ViewportUpdatePayload)
	case EventBlackout:
		v.Blackout = evt.Payload.(BlackoutPayload).IsBlackout
	case EventTokensUpdate:
		p := evt.Payload.(TokensUpdatePayload)
		v.Tokens = p.Tokens
	case EventLightsUpdate:
		v.Lights = evt.Payload.(LightsUpdatePayload).LightSources
	case EventFogUpdate:
		v.Fog = evt.Payload.(FogUpdatePayload)
	}
}
