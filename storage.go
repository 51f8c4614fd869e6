package tacticalmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// debugWriter is where SetLOSDebug-gated trace lines go. A var rather than
// a hardcoded os.Stderr so tests can redirect it.
var debugWriter = os.Stderr

// Layout helpers implementing on-disk scheme:
//
//	{data_dir}/<owner_kind>/<owner_id>/maps/<uuid>.uvtt
//	{data_dir}/<owner_kind>/<owner_id>/maps/<uuid>.<image_ext>
//	{data_dir}/<owner_kind>/<owner_id>/maps/<uuid>.state.json

func ownerDir(dataDir string, o Owner) string {
	return filepath.Join(dataDir, o.Kind, strconv.FormatInt(o.ID, 10), "maps")
}

func uvttPath(dataDir string, o Owner, id MapID) string {
	return filepath.Join(ownerDir(dataDir, o), id.String()+".uvtt")
}

func imagePath(dataDir string, o Owner, id MapID, ext string) string {
	return filepath.Join(ownerDir(dataDir, o), id.String()+ext)
}

func statePath(dataDir string, o Owner, id MapID) string {
	return filepath.Join(ownerDir(dataDir, o), id.String()+".state.json")
}

// readImageFile locates and reads a map's stored background image,
// trying each known extension in turn since the on-disk stem doesn't
// encode which one was sniffed at import time.
func readImageFile(dataDir string, o Owner, id MapID) ([]byte, error) {
	for _, ext := range []string{".png", ".jpg", ".webp", ".bin"} {
		data, err := os.ReadFile(imagePath(dataDir, o, id, ext))
		if err == nil {
			return data, nil
		}
	}
	return nil, os.ErrNotExist
}

// writeFileAtomic writes data to path by first writing to a sibling temp
// file and renaming over the destination, so a crash mid-write never leaves
// a truncated map or state file behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// persistedState is the on-disk shape of a map's mutable runtime state
// (tokens, lights, markers, portal overrides, ambient
// light, and viewport/fog session flags survive a reload; UVTT-derived
// static geometry does not need to be duplicated here since it is
// re-derived from the .uvtt file on LoadMap).
type persistedState struct {
	AmbientLight AmbientLight `json:"ambient_light"`
	Portals      []Portal     `json:"portals"`
	Tokens       []Token      `json:"tokens"`
	Lights       []LightSource `json:"lights"`
	Markers      []Marker     `json:"markers"`

	NextTokenID  int `json:"next_token_id"`
	NextLightID  int `json:"next_light_id"`
	NextMarkerID int `json:"next_marker_id"`

	Viewport     Viewport `json:"viewport"`
	RevealMap    bool     `json:"reveal_map"`
	TokenOnlyLOS bool     `json:"token_only_los"`
	Blackout     bool     `json:"blackout"`
}

// saveState writes entry's current runtime state to disk. A no-op (not an
// error) when the Store has no dataDir, so callers can use a Store purely
// in-memory (e.g. in tests) without touching the filesystem.
func (s *Store) saveState(entry *mapEntry) {
	if s.dataDir == "" {
		return
	}
	ps := persistedState{
		AmbientLight: entry.ambientLight,
		Portals:      entry.portals,
		Tokens:       tokenSnapshot(entry),
		Lights:       lightSnapshot(entry),
		NextTokenID:  entry.nextTokenID,
		NextLightID:  entry.nextLightID,
		NextMarkerID: entry.nextMarkerID,
	}
	for _, mk := range entry.markers {
		ps.Markers = append(ps.Markers, *mk)
	}
	if s.session != nil {
		ps.Viewport = s.session.Viewport
		ps.RevealMap = s.session.RevealMap
		ps.TokenOnlyLOS = s.session.TokenOnlyLOS
		ps.Blackout = s.session.Blackout
	}

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		// Marshaling a plain data struct of known-safe types cannot fail in
		// practice; surfacing it on debugWriter rather than a panic matches
		// a non-fatal persistence hiccup.
		fmt.Fprintf(debugWriter, "[mapengine] saveState: marshal: %v\n", err)
		return
	}
	path := statePath(s.dataDir, entry.def.Owner, entry.def.ID)
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		fmt.Fprintf(debugWriter, "[mapengine] saveState: write %s: %v\n", path, err)
	}
}

// loadState reads a previously persisted runtime state for id, if any, and
// layers it onto a fresh mapEntry derived from the registered Map
// definition, plus the session-level fields (viewport, fog flags) it
// carried. Returns an error (not fatal to LoadMap) when no state file
// exists yet, or the file is unreadable/corrupt — LoadMap keeps the map's
// current in-memory runtime state and a default session in that case.
func (s *Store) loadState(id MapID) (*mapEntry, *persistedState, error) {
	if s.dataDir == "" {
		return nil, nil, formatErr(ErrMapNotFound, "load_state: no data dir configured")
	}
	m, ok := s.maps[id]
	if !ok {
		return nil, nil, formatErr(ErrMapNotFound, "load_state %s", id)
	}
	path := statePath(s.dataDir, m.Owner, id)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, nil, formatErr(ErrInvalidUVTT, "load_state %s: corrupt state file", id)
	}

	entry := newMapEntry(m)
	entry.ambientLight = ps.AmbientLight
	if len(ps.Portals) > 0 {
		entry.portals = ps.Portals
	}
	for i := range ps.Tokens {
		t := ps.Tokens[i]
		entry.tokens[t.ID] = &t
	}
	for i := range ps.Lights {
		l := ps.Lights[i]
		entry.lights[l.ID] = &l
	}
	for i := range ps.Markers {
		mk := ps.Markers[i]
		entry.markers[mk.ID] = &mk
	}
	entry.nextTokenID = ps.NextTokenID
	entry.nextLightID = ps.NextLightID
	entry.nextMarkerID = ps.NextMarkerID

	return entry, &ps, nil
}
