package tacticalmap

import "testing"

func baseRenderMap(grid Grid) *Map {
	return &Map{WidthPx: 2000, HeightPx: 2000, Grid: grid}
}

// TestRenderModelCircularFallback: a square-grid map with no walls, one PC
// at (350,350) with 60ft vision, grid 70px/5ft, ambient darkness. The fog
// cutout should be a circle of radius 60/5*70 = 840px centered on the PC.
func TestRenderModelCircularFallback(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	m.AmbientLight = AmbientDarkness
	pc := Token{ID: 1, Kind: TokenPC, Position: Point{X: 350, Y: 350}, VisionRadiusFt: 60, VisibleToPlayers: true}
	sess := NewMapSession(newTestMapID())

	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc}})

	if len(player.Cutouts) != 1 {
		t.Fatalf("len(cutouts) = %d, want 1", len(player.Cutouts))
	}
	cutout := player.Cutouts[0]
	if !cutout.IsCircle {
		t.Fatal("a wall-less map should produce a circular cutout")
	}
	if cutout.Circle.Center != pc.Position {
		t.Errorf("circle center = %+v, want %+v", cutout.Circle.Center, pc.Position)
	}
	if want := 840.0; cutout.Circle.Radius != want {
		t.Errorf("circle radius = %v, want %v", cutout.Circle.Radius, want)
	}
}

func TestRenderModelRevealMapHasNoFog(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	sess := NewMapSession(newTestMapID())
	sess.RevealMap = true
	pc := Token{ID: 1, Kind: TokenPC, Position: Point{X: 10, Y: 10}, VisionRadiusFt: 30, VisibleToPlayers: true}

	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc}})
	if len(player.Cutouts) != 0 {
		t.Errorf("reveal_map=true should yield zero fog coverage, got %d cutouts", len(player.Cutouts))
	}
	if len(player.Tokens) != 1 {
		t.Error("reveal_map should still show tokens")
	}
}

func TestRenderModelBlackoutOverridesEverything(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	sess := NewMapSession(newTestMapID())
	sess.RevealMap = true
	sess.Blackout = true
	pc := Token{ID: 1, Kind: TokenPC, Position: Point{X: 10, Y: 10}, VisionRadiusFt: 30, VisibleToPlayers: true}

	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc}})
	if !player.Blackout {
		t.Fatal("expected Blackout=true to win over RevealMap")
	}
	if len(player.Tokens) != 0 || len(player.Cutouts) != 0 {
		t.Error("blackout should yield no other render data")
	}
}

func TestRenderModelTokenOnlyLOSHidesUnseenMonster(t *testing.T) {
	// PC at (100,100) behind a vertical wall at x=200: a monster beyond the
	// wall is hidden, but moving it in front of the wall brings it inside
	// the PC's visibility polygon.
	walls := []Wall{
		{Points: []Point{{X: 200, Y: 0}, {X: 200, Y: 1000}}},
	}
	m := &Map{WidthPx: 1000, HeightPx: 1000, Grid: Grid{Kind: GridSquare, Size: 70}, Walls: walls}
	sess := NewMapSession(newTestMapID())
	sess.TokenOnlyLOS = true

	pc := Token{ID: 1, Kind: TokenPC, Position: Point{X: 100, Y: 100}, VisionRadiusFt: 1000, VisibleToPlayers: true}
	farMonster := Token{ID: 2, Kind: TokenMonster, Position: Point{X: 250, Y: 250}, VisibleToPlayers: true}

	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc, farMonster}})
	for _, tok := range player.Tokens {
		if tok.ID == 2 {
			t.Error("monster outside the PC's visibility polygon should be hidden under token-only-LOS")
		}
	}

	nearMonster := Token{ID: 2, Kind: TokenMonster, Position: Point{X: 150, Y: 150}, VisibleToPlayers: true}
	_, player2 := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc, nearMonster}})
	var found bool
	for _, tok := range player2.Tokens {
		if tok.ID == 2 {
			found = true
		}
	}
	if !found {
		t.Error("monster moved inside the PC's visibility polygon should become visible")
	}
}

func TestRenderModelTokenOnlyLOSRequiresWalls(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	sess := NewMapSession(newTestMapID())
	sess.TokenOnlyLOS = true
	pc := Token{ID: 1, Kind: TokenPC, Position: Point{X: 10, Y: 10}, VisionRadiusFt: 30, VisibleToPlayers: true}
	monster := Token{ID: 2, Kind: TokenMonster, Position: Point{X: 900, Y: 900}, VisibleToPlayers: true}

	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc, monster}})
	if len(player.Tokens) != 2 {
		t.Error("without UVTT walls, token-only-LOS should fall back to showing all tokens")
	}
}

func TestRenderModelDMAlwaysUnoccluded(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	m.Walls = []Wall{{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}}
	sess := NewMapSession(newTestMapID())
	sess.Blackout = true
	monster := Token{ID: 1, Kind: TokenMonster, Position: Point{X: 900, Y: 900}}

	dm, _ := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{monster}})
	if len(dm.Tokens) != 1 {
		t.Error("DM render should always show every entity, regardless of blackout/fog")
	}
}

func TestRenderModelRevealMapStillHidesUnflaggedTokens(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	sess := NewMapSession(newTestMapID())
	sess.RevealMap = true
	pc := Token{ID: 1, Kind: TokenPC, Position: Point{X: 10, Y: 10}, VisionRadiusFt: 30, VisibleToPlayers: true}
	hidden := Token{ID: 2, Kind: TokenMonster, Position: Point{X: 900, Y: 900}, VisibleToPlayers: false}

	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Tokens: []Token{pc, hidden}})
	for _, tok := range player.Tokens {
		if tok.ID == 2 {
			t.Error("reveal_map should not override a token's own visible_to_players flag")
		}
	}
	if len(player.Tokens) != 1 {
		t.Errorf("player.Tokens = %+v, want only the flagged-visible PC", player.Tokens)
	}
}

func TestRenderModelMarkersHiddenFromPlayersUnlessFlagged(t *testing.T) {
	m := baseRenderMap(Grid{Kind: GridSquare, Size: 70})
	sess := NewMapSession(newTestMapID())
	sess.RevealMap = true
	markers := []Marker{
		{ID: 1, VisibleToPlayers: true, Label: "visible"},
		{ID: 2, VisibleToPlayers: false, Label: "hidden"},
	}
	_, player := BuildRenderModel(RenderInputs{Session: sess, Map: m, Markers: markers})
	if len(player.Markers) != 1 || player.Markers[0].ID != 1 {
		t.Errorf("player markers = %+v, want only the visible one", player.Markers)
	}
}
