package tacticalmap

import "testing"

func TestClampZoom(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.01, MinZoom},
		{1, 1},
		{100, MaxZoom},
	}
	for _, tt := range tests {
		if got := clampZoom(tt.in); got != tt.want {
			t.Errorf("clampZoom(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewMapSessionDefaults(t *testing.T) {
	id := newTestMapID()
	s := NewMapSession(id)
	if s.ActiveMapID != id {
		t.Errorf("active map = %v, want %v", s.ActiveMapID, id)
	}
	if s.Viewport.Zoom != DefaultZoom {
		t.Errorf("zoom = %v, want %v", s.Viewport.Zoom, DefaultZoom)
	}
	if s.RevealMap || s.TokenOnlyLOS || s.Blackout || s.LOSDebug {
		t.Error("all boolean axes should default false")
	}
}

func TestMapSessionSetViewportClamps(t *testing.T) {
	s := NewMapSession(newTestMapID())
	s.SetViewport(5, 6, -1)
	if s.Viewport.Zoom != MinZoom {
		t.Errorf("zoom = %v, want clamped to %v", s.Viewport.Zoom, MinZoom)
	}
	if s.Viewport.PanX != 5 || s.Viewport.PanY != 6 {
		t.Errorf("pan = (%v,%v), want (5,6)", s.Viewport.PanX, s.Viewport.PanY)
	}
}
