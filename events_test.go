package tacticalmap

import "testing"

func TestChannelPublishDeliversInSubscriptionOrder(t *testing.T) {
	ch := NewChannel()
	var order []int
	ch.Subscribe(func(Event) { order = append(order, 1) })
	ch.Subscribe(func(Event) { order = append(order, 2) })
	ch.Publish(Event{Type: EventBlackout})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestSubscriptionRemoveStopsDelivery(t *testing.T) {
	ch := NewChannel()
	var count int
	sub := ch.Subscribe(func(Event) { count++ })
	ch.Publish(Event{Type: EventBlackout})
	sub.Remove()
	ch.Publish(Event{Type: EventBlackout})
	if count != 1 {
		t.Errorf("handler fired %d times after removal, want 1", count)
	}
}

func TestPlayerViewIgnoresEventsBeforeMapUpdate(t *testing.T) {
	ch := NewChannel()
	pv := NewPlayerView()
	pv.Attach(ch)

	mapID := newTestMapID()
	ch.Publish(Event{Type: EventTokensUpdate, MapID: mapID, Payload: TokensUpdatePayload{Tokens: []Token{{ID: 1}}}})
	if pv.Tokens != nil {
		t.Error("tokens-update before any map-update should be discarded")
	}
}

func TestPlayerViewDiscardsStaleMapEvents(t *testing.T) {
	ch := NewChannel()
	pv := NewPlayerView()
	pv.Attach(ch)

	mapA, mapB := newTestMapID(), newTestMapID()
	ch.Publish(Event{Type: EventMapUpdate, MapID: mapA, Payload: MapUpdatePayload{Width: 100}})
	// Move to mapB; the tokens-update for mapA that follows is stale.
	ch.Publish(Event{Type: EventMapUpdate, MapID: mapB, Payload: MapUpdatePayload{Width: 200}})
	ch.Publish(Event{Type: EventTokensUpdate, MapID: mapA, Payload: TokensUpdatePayload{Tokens: []Token{{ID: 7}}}})

	if pv.Width != 200 {
		t.Fatalf("current map should be mapB after its map-update, width = %v", pv.Width)
	}
	if pv.Tokens != nil {
		t.Error("tokens-update for the now-stale mapA should be discarded")
	}
}

func TestPlayerViewMapUpdateResetsDerivedState(t *testing.T) {
	ch := NewChannel()
	pv := NewPlayerView()
	pv.Attach(ch)

	mapID := newTestMapID()
	ch.Publish(Event{Type: EventMapUpdate, MapID: mapID, Payload: MapUpdatePayload{}})
	ch.Publish(Event{Type: EventTokensUpdate, MapID: mapID, Payload: TokensUpdatePayload{Tokens: []Token{{ID: 1}}}})
	if len(pv.Tokens) != 1 {
		t.Fatalf("expected 1 token before reselecting the map")
	}

	otherMap := newTestMapID()
	ch.Publish(Event{Type: EventMapUpdate, MapID: otherMap, Payload: MapUpdatePayload{}})
	if pv.Tokens != nil {
		t.Error("selecting a new map should reset the token cache")
	}
}

func TestPlayerViewNeverOriginatesEventsOtherThanRequestState(t *testing.T) {
	ch := NewChannel()
	var types []EventType
	ch.Subscribe(func(evt Event) { types = append(types, evt.Type) })
	ch.RequestState(newTestMapID())
	if len(types) != 1 || types[0] != EventRequestState {
		t.Errorf("RequestState published %v, want exactly [EventRequestState]", types)
	}
}
