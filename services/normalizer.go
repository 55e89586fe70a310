package services

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	"golang.org/x/net/html/charset"
)

// Field precedence for the JSON seatmap shapes, first present key wins
var (
	seatListKeys   = []string{"seats", "inventory"}
	seatIDKeys     = []string{"id", "seatId"}
	seatNumberKeys = []string{"seatNumber", "number"}
	seatPriceKeys  = []string{"price", "amount"}
)

// Normalizer converts capture records of every known shape into canonical seats
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize processes records in arrival order. Seats are concatenated per
// record then per seat, and the summary is computed over all of them.
func (n *Normalizer) Normalize(records []models.CaptureRecord) *models.Result {
	result := &models.Result{
		Availability: make([]models.Availability, 0),
		Seats:        make([]models.Seat, 0),
	}

	for _, rec := range records {
		switch rec.Kind() {
		case models.CaptureAvailability:
			a := n.ParseAvailability(rec.Data())
			a.SourceURL = rec.SourceURL()
			result.Availability = append(result.Availability, a)
			n.logger.Info("Processed availability data from %s (%d seatmap ids)", rec.SourceURL(), len(a.SeatmapIDs))

		case models.CaptureSeatmapXML:
			seats := n.ParseSeatmapXML(rec.Text())
			result.Seats = append(result.Seats, seats...)
			n.logger.Info("Parsed %d seats from XML: %s", len(seats), rec.SourceURL())

		case models.CaptureSeatmapJSON:
			seats := n.ParseSeatmapJSON(rec.Data())
			result.Seats = append(result.Seats, seats...)
			n.logger.Info("Parsed %d seats from JSON: %s", len(seats), rec.SourceURL())

		default:
			n.logger.Warn("Skipping capture of unknown kind %v: %s", rec.Kind(), rec.SourceURL())
		}
	}

	result.Summary = Summarize(result.Seats)
	return result
}

// ParseAvailability extracts seatmap ids and event metadata. Seatmap ids come
// from "seatmaps", else "seatMapId", else "seatMapIds". Anything that is not a
// JSON object yields an empty result.
func (n *Normalizer) ParseAvailability(data any) models.Availability {
	out := models.Availability{SeatmapIDs: make([]string, 0)}
	if raw, err := json.Marshal(data); err == nil {
		out.RawData = raw
	}

	obj, ok := data.(map[string]any)
	if !ok {
		n.logger.Warn("Availability payload is %T, not an object", data)
		return out
	}

	if v, ok := lookup(obj, "seatmaps"); ok {
		out.SeatmapIDs = appendIDs(out.SeatmapIDs, v)
	} else if v, ok := lookup(obj, "seatMapId"); ok {
		out.SeatmapIDs = appendIDs(out.SeatmapIDs, v)
	} else if v, ok := lookup(obj, "seatMapIds"); ok {
		out.SeatmapIDs = appendIDs(out.SeatmapIDs, v)
	}

	out.EventInfo = models.EventInfo{
		EventID:   textField(obj, "eventId"),
		EventName: textField(obj, "eventName"),
		Venue:     textField(obj, "venue"),
		Date:      textField(obj, "date"),
	}
	return out
}

// ParseSeatmapXML selects every <seat> element below the root. A document
// that does not parse yields no seats at all.
func (n *Normalizer) ParseSeatmapXML(text string) []models.Seat {
	seats, err := parseSeatElements(text)
	if err != nil {
		n.logger.Warn("Error parsing seatmap XML: %v", err)
		return []models.Seat{}
	}
	return seats
}

// internal subset entity declarations, parameter entities excluded
var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%"'>]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

func parseSeatElements(text string) ([]models.Seat, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = map[string]string{}
	seats := make([]models.Seat, 0)
	depth, roots := 0, 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return nil, errors.New("junk after document element")
				}
			} else if t.Name.Space == "" && t.Name.Local == "seat" {
				seats = append(seats, seatFromAttrs(t.Attr))
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return nil, errors.New("text outside document element")
			}
		case xml.Directive:
			if depth == 0 && roots == 0 {
				declareEntities(dec.Entity, t)
			}
		}
	}

	if roots == 0 {
		return nil, errors.New("no document element")
	}
	return seats, nil
}

// declareEntities registers the general entities of a DOCTYPE internal subset
// so that later references to them resolve. The first declaration wins.
func declareEntities(entities map[string]string, d xml.Directive) {
	if !bytes.HasPrefix(d, []byte("DOCTYPE")) {
		return
	}
	for _, m := range entityDecl.FindAllSubmatch(d, -1) {
		name := string(m[1])
		if _, ok := entities[name]; ok {
			continue
		}
		value := m[2]
		if value == nil {
			value = m[3]
		}
		entities[name] = string(value)
	}
}

func seatFromAttrs(attrs []xml.Attr) models.Seat {
	get := func(name string) *string {
		for _, a := range attrs {
			if a.Name.Space == "" && a.Name.Local == name {
				v := a.Value
				return &v
			}
		}
		return nil
	}

	seat := models.Seat{
		ID:         get("id"),
		Section:    get("section"),
		Row:        get("row"),
		SeatNumber: get("number"),
		Status:     models.StatusUnknown,
	}
	if p := get("price"); p != nil {
		seat.Price = models.NewStringPrice(*p)
	}
	// Availability is the literal status; a missing status means unavailable.
	if s := get("status"); s != nil {
		seat.Status = *s
		seat.Available = *s == "available"
	}
	return seat
}

// ParseSeatmapJSON reads seats from "seats" when non-empty, else "inventory".
// Entries that are not objects are skipped.
func (n *Normalizer) ParseSeatmapJSON(data any) []models.Seat {
	seats := make([]models.Seat, 0)

	obj, ok := data.(map[string]any)
	if !ok {
		n.logger.Warn("Seatmap payload is %T, not an object", data)
		return seats
	}

	var entries []any
	for _, key := range seatListKeys {
		if list, ok := obj[key].([]any); ok && len(list) > 0 {
			entries = list
			break
		}
	}

	for i, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			n.logger.Debug("Skipping seat entry %d: %T is not an object", i, e)
			continue
		}
		seats = append(seats, seatFromJSON(entry))
	}
	return seats
}

func seatFromJSON(entry map[string]any) models.Seat {
	seat := models.Seat{
		ID:         textOf(firstPresent(entry, seatIDKeys...)),
		Section:    textField(entry, "section"),
		Row:        textField(entry, "row"),
		SeatNumber: textOf(firstPresent(entry, seatNumberKeys...)),
		Price:      models.PriceFromJSON(firstPresent(entry, seatPriceKeys...)),
		Status:     models.StatusUnknown,
		Available:  true, // JSON seatmaps only flag the seats that are not available
	}
	if v, ok := entry["available"]; ok {
		seat.Available = truthy(v)
	}
	if s := textField(entry, "status"); s != nil {
		seat.Status = *s
	}
	return seat
}

// lookup returns a key's value when it is present and not null
func lookup(obj map[string]any, key string) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// firstPresent walks keys in order and returns the first usable value. Null and
// the empty string fall through to the next key; numeric zero does not.
func firstPresent(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		v, ok := lookup(obj, key)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

func textField(obj map[string]any, key string) *string {
	v, _ := lookup(obj, key)
	return textOf(v)
}

// textOf renders a decoded JSON value as an optional string
func textOf(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	case json.Number:
		s := t.String()
		return &s
	case bool:
		s := fmt.Sprint(t)
		return &s
	default:
		b, err := json.Marshal(t)
		if err != nil {
			s := fmt.Sprint(t)
			return &s
		}
		s := string(b)
		return &s
	}
}

func appendIDs(ids []string, v any) []string {
	if list, ok := v.([]any); ok {
		for _, item := range list {
			if s := textOf(item); s != nil {
				ids = append(ids, *s)
			}
		}
		return ids
	}
	if s := textOf(v); s != nil {
		ids = append(ids, *s)
	}
	return ids
}

// truthy follows JSON-ish truthiness: false, null, 0, "" and empty containers are false
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
