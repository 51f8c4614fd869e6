package tacticalmap

import (
	"errors"
	"testing"
)

func TestFormatErrWrapsSentinel(t *testing.T) {
	err := formatErr(ErrMapNotFound, "load_map %s", "abc")
	if !errors.Is(err, ErrMapNotFound) {
		t.Error("formatErr result should satisfy errors.Is against the sentinel")
	}
	if got := err.Error(); got == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestStoreErrorsAreDistinguishableSentinels(t *testing.T) {
	s := NewStore("")
	_, err := s.LoadMap(newTestMapID())
	if !errors.Is(err, ErrMapNotFound) {
		t.Errorf("LoadMap on an unknown id should wrap ErrMapNotFound, got %v", err)
	}
}
