package tacticalmap

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/webp"
)

// uvttDocument mirrors the subset of the UVTT JSON schema the importer
// cares about. Unknown fields are ignored by encoding/json by default.
type uvttDocument struct {
	Image      string `json:"image"`
	Resolution struct {
		MapOrigin     uvttPoint `json:"map_origin"`
		MapSize       uvttPoint `json:"map_size"`
		PixelsPerGrid float64   `json:"pixels_per_grid"`
	} `json:"resolution"`
	LineOfSight [][]uvttPoint  `json:"line_of_sight"`
	Portals     []uvttPortal   `json:"portals"`
	Lights      []uvttLight    `json:"lights"`
	Environment struct {
		AmbientLight string `json:"ambient_light"`
	} `json:"environment"`
}

type uvttPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type uvttPortal struct {
	Position uvttPoint   `json:"position"`
	Bounds   []uvttPoint `json:"bounds"`
	Closed   *bool       `json:"closed"`
}

type uvttLight struct {
	Position uvttPoint `json:"position"`
	Range    float64   `json:"range"`
	Color    string    `json:"color"`
}

// ImportUVTT parses a UVTT document, decodes its embedded image, derives
// grid/wall/portal/light geometry, and persists the result under owner's
// directory in the Store's data_dir. The returned Map is also registered
// with the Store so a subsequent LoadMap(m.ID) succeeds. On any validation
// failure the import is aborted and no storage is written: on any
// validation failure the import fails and storage is left untouched.
func (s *Store) ImportUVTT(data []byte, owner Owner, name string) (*Map, error) {
	var doc uvttDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, formatErr(ErrInvalidUVTT, "parse: %v", err)
	}
	if doc.Resolution.PixelsPerGrid <= 0 {
		return nil, formatErr(ErrInvalidUVTT, "resolution.pixels_per_grid must be > 0")
	}

	imgBytes, ext, err := decodeEmbeddedImage(doc.Image)
	if err != nil {
		return nil, formatErr(ErrInvalidUVTT, "decode image: %v", err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		decoded, err = webp.Decode(bytes.NewReader(imgBytes))
	}
	if err != nil {
		return nil, formatErr(ErrInvalidUVTT, "decode image: %v", err)
	}

	gridSize := doc.Resolution.PixelsPerGrid
	var widthPx, heightPx float64
	if doc.Resolution.MapSize.X > 0 && doc.Resolution.MapSize.Y > 0 {
		widthPx = doc.Resolution.MapSize.X * gridSize
		heightPx = doc.Resolution.MapSize.Y * gridSize
	} else {
		bounds := decoded.Bounds()
		widthPx = float64(bounds.Dx())
		heightPx = float64(bounds.Dy())
	}

	walls := buildWalls(doc.LineOfSight, gridSize)
	portals := buildPortals(doc.Portals, gridSize, walls)
	lights := buildMapLights(doc.Lights, gridSize)

	id := uuid.New()
	m := &Map{
		ID:       id,
		Owner:    owner,
		Name:     name,
		Image:    ebiten.NewImageFromImage(decoded),
		WidthPx:  widthPx,
		HeightPx: heightPx,
		Grid: Grid{
			Kind: GridSquare,
			Size: gridSize,
		},
		AmbientLight: parseAmbientLight(doc.Environment.AmbientLight),
		Walls:        walls,
		Portals:      portals,
		MapLights:    lights,
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	if s.dataDir != "" {
		if err := writeFileAtomic(uvttPath(s.dataDir, owner, id), data, 0o644); err != nil {
			return nil, formatErr(ErrInvalidUVTT, "write uvtt: %v", err)
		}
		if err := writeFileAtomic(imagePath(s.dataDir, owner, id, ext), imgBytes, 0o644); err != nil {
			return nil, formatErr(ErrInvalidUVTT, "write image: %v", err)
		}
	}

	s.registerMap(m)
	return m, nil
}

// decodeEmbeddedImage splits the UVTT "image" field's base64 payload
// (optionally prefixed by a data URL header) into raw bytes plus a sniffed
// file extension.
func decodeEmbeddedImage(field string) (data []byte, ext string, err error) {
	payload := field
	if idx := bytes.IndexByte([]byte(field), ','); idx >= 0 && bytes.HasPrefix([]byte(field), []byte("data:")) {
		payload = field[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return raw, sniffImageExt(raw), nil
}

func sniffImageExt(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}):
		return ".png"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xff, 0xd8, 0xff}):
		return ".jpg"
	case len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return ".webp"
	default:
		return ".bin"
	}
}

// buildWalls converts UVTT's line_of_sight polylines (grid units) into
// pixel-space Walls, marking a polyline closed when its first and last
// points coincide within epsilon.
func buildWalls(polylines [][]uvttPoint, gridSize float64) []Wall {
	walls := make([]Wall, 0, len(polylines))
	for i, poly := range polylines {
		if len(poly) < 2 {
			continue
		}
		pts := make([]Point, len(poly))
		for j, p := range poly {
			pts[j] = Point{X: p.X * gridSize, Y: p.Y * gridSize}
		}
		closed := pts[0].Distance(pts[len(pts)-1]) < epsilon
		walls = append(walls, Wall{ID: i + 1, Points: pts, Closed: closed})
	}
	return walls
}

// buildPortals converts UVTT portal entries into Portals, binding each to
// the wall segment whose endpoints coincide with the portal's bounds
// (within epsilon). A portal with no matching wall segment imports as a
// free-floating, unbound occluder.
func buildPortals(entries []uvttPortal, gridSize float64, walls []Wall) []Portal {
	portals := make([]Portal, 0, len(entries))
	for i, e := range entries {
		if len(e.Bounds) < 2 {
			continue
		}
		a := Point{X: e.Bounds[0].X * gridSize, Y: e.Bounds[0].Y * gridSize}
		b := Point{X: e.Bounds[len(e.Bounds)-1].X * gridSize, Y: e.Bounds[len(e.Bounds)-1].Y * gridSize}
		seg := Segment{A: a, B: b}

		closed := true
		if e.Closed != nil {
			closed = *e.Closed
		}

		bound := false
		for _, w := range walls {
			for _, ws := range w.Segments() {
				if segmentEndpointsMatch(ws, seg) {
					bound = true
					break
				}
			}
			if bound {
				break
			}
		}

		portals = append(portals, Portal{ID: i + 1, Segment: seg, IsClosed: closed, Bound: bound})
	}
	return portals
}

func segmentEndpointsMatch(a, b Segment) bool {
	direct := a.A.Distance(b.A) < epsilon && a.B.Distance(b.B) < epsilon
	swapped := a.A.Distance(b.B) < epsilon && a.B.Distance(b.A) < epsilon
	return direct || swapped
}

// buildMapLights converts UVTT light entries (grid-unit position, radius)
// into MapLights. UVTT expresses radius in grid units; 5 ft per grid unit
// converts it to feet. UVTT's lights[] carries one "range", not separate
// bright/dim fields, so the range is split evenly: the inner half is the
// bright band and the outer half the dim band, whose outer edge lies at the
// full range.
func buildMapLights(entries []uvttLight, gridSize float64) []MapLight {
	lights := make([]MapLight, 0, len(entries))
	for i, e := range entries {
		ft := e.Range * feetPerGridUnit
		c, hasColor := parseHexColor(e.Color)
		lights = append(lights, MapLight{
			ID:       i + 1,
			Position: Point{X: e.Position.X * gridSize, Y: e.Position.Y * gridSize},
			BrightFt: ft * 0.5,
			DimFt:    ft * 0.5,
			Color:    c,
			HasColor: hasColor,
		})
	}
	return lights
}

// parseHexColor parses a UVTT "RRGGBBAA" or "RRGGBB" hex string into a
// Color with components in [0,1]. An empty or malformed string reports
// hasColor=false and leaves color as the zero value.
func parseHexColor(s string) (c Color, hasColor bool) {
	s = trimHexPrefix(s)
	if len(s) != 6 && len(s) != 8 {
		return Color{}, false
	}
	r, okR := hexByte(s[0:2])
	g, okG := hexByte(s[2:4])
	b, okB := hexByte(s[4:6])
	if !okR || !okG || !okB {
		return Color{}, false
	}
	a := 1.0
	if len(s) == 8 {
		av, okA := hexByte(s[6:8])
		if !okA {
			return Color{}, false
		}
		a = float64(av) / 255
	}
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: a}, true
}

func trimHexPrefix(s string) string {
	if len(s) > 0 && s[0] == '#' {
		return s[1:]
	}
	return s
}

func hexByte(s string) (byte, bool) {
	if len(s) != 2 {
		return 0, false
	}
	hi, okHi := hexDigit(s[0])
	lo, okLo := hexDigit(s[1])
	if !okHi || !okLo {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func parseAmbientLight(s string) AmbientLight {
	switch s {
	case "dim":
		return AmbientDim
	case "darkness":
		return AmbientDarkness
	default:
		return AmbientBright
	}
}

// ExportUVTT serializes a Map back into a UVTT document, the inverse of
// ImportUVTT. The image bytes are looked up on disk via dataDir/owner/id;
// if that file is unavailable the image field is omitted rather than
// failing the whole export, since walls/portals/lights round-trip
// independently of the image.
func (s *Store) ExportUVTT(m *Map) ([]byte, error) {
	doc := uvttDocument{}
	doc.Resolution.PixelsPerGrid = m.Grid.Size
	doc.Resolution.MapSize = uvttPoint{X: m.WidthPx / m.Grid.Size, Y: m.HeightPx / m.Grid.Size}
	doc.Environment.AmbientLight = ambientLightString(m.AmbientLight)

	for _, w := range m.Walls {
		poly := make([]uvttPoint, len(w.Points))
		for i, p := range w.Points {
			poly[i] = uvttPoint{X: p.X / m.Grid.Size, Y: p.Y / m.Grid.Size}
		}
		if w.Closed && len(poly) > 0 && poly[len(poly)-1] != poly[0] {
			poly = append(poly, poly[0])
		}
		doc.LineOfSight = append(doc.LineOfSight, poly)
	}

	for _, p := range m.Portals {
		closed := p.IsClosed
		doc.Portals = append(doc.Portals, uvttPortal{
			Bounds: []uvttPoint{
				{X: p.Segment.A.X / m.Grid.Size, Y: p.Segment.A.Y / m.Grid.Size},
				{X: p.Segment.B.X / m.Grid.Size, Y: p.Segment.B.Y / m.Grid.Size},
			},
			Closed: &closed,
		})
	}

	for _, l := range m.MapLights {
		rangeGrid := (l.BrightFt + l.DimFt) / feetPerGridUnit
		entry := uvttLight{
			Position: uvttPoint{X: l.Position.X / m.Grid.Size, Y: l.Position.Y / m.Grid.Size},
			Range:    rangeGrid,
		}
		if l.HasColor {
			entry.Color = hexColorString(l.Color)
		}
		doc.Lights = append(doc.Lights, entry)
	}

	if s.dataDir != "" {
		if raw, err := readImageFile(s.dataDir, m.Owner, m.ID); err == nil {
			doc.Image = base64.StdEncoding.EncodeToString(raw)
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

func ambientLightString(a AmbientLight) string {
	switch a {
	case AmbientDim:
		return "dim"
	case AmbientDarkness:
		return "darkness"
	default:
		return "bright"
	}
}

func hexColorString(c Color) string {
	toByte := func(v float64) byte { return byte(math.Round(clamp01(v) * 255)) }
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 0, 8)
	for _, v := range []byte{toByte(c.R), toByte(c.G), toByte(c.B), toByte(c.A)} {
		buf = append(buf, hexDigits[v>>4], hexDigits[v&0xf])
	}
	return string(buf)
}
