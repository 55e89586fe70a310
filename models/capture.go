package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CaptureKind tags what a retained network response contains
type CaptureKind int

const (
	CaptureAvailability CaptureKind = iota + 1
	CaptureSeatmapJSON
	CaptureSeatmapXML
)

func (k CaptureKind) String() string {
	switch k {
	case CaptureAvailability:
		return "availability"
	case CaptureSeatmapJSON:
		return "seatmap_json"
	case CaptureSeatmapXML:
		return "seatmap_xml"
	}
	return fmt.Sprintf("CaptureKind(%d)", int(k))
}

func (k CaptureKind) MarshalText() ([]byte, error) {
	switch k {
	case CaptureAvailability, CaptureSeatmapJSON, CaptureSeatmapXML:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown capture kind %d", int(k))
}

func (k *CaptureKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "availability":
		*k = CaptureAvailability
	case "seatmap_json":
		*k = CaptureSeatmapJSON
	case "seatmap_xml":
		*k = CaptureSeatmapXML
	default:
		return fmt.Errorf("unknown capture kind %q", b)
	}
	return nil
}

// CaptureRecord is one intercepted network response of interest.
// Fields are unexported so a record cannot change after it is built.
type CaptureRecord struct {
	kind      CaptureKind
	sourceURL string
	data      any    // decoded JSON, for the JSON kinds
	text      string // raw body, for seatmap XML
}

// NewAvailabilityCapture builds a record for a decoded availability body
func NewAvailabilityCapture(url string, data any) CaptureRecord {
	return CaptureRecord{kind: CaptureAvailability, sourceURL: url, data: data}
}

// NewSeatmapJSONCapture builds a record for a decoded seatmap body
func NewSeatmapJSONCapture(url string, data any) CaptureRecord {
	return CaptureRecord{kind: CaptureSeatmapJSON, sourceURL: url, data: data}
}

// NewSeatmapXMLCapture builds a record for a raw XML seatmap body
func NewSeatmapXMLCapture(url, text string) CaptureRecord {
	return CaptureRecord{kind: CaptureSeatmapXML, sourceURL: url, text: text}
}

func (r CaptureRecord) Kind() CaptureKind { return r.kind }
func (r CaptureRecord) SourceURL() string { return r.sourceURL }

// Data returns the decoded JSON value; nil for XML records
func (r CaptureRecord) Data() any { return r.data }

// Text returns the raw XML body; empty for JSON records
func (r CaptureRecord) Text() string { return r.text }

type captureLine struct {
	Kind    CaptureKind     `json:"kind"`
	URL     string          `json:"url"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the record as {kind, url, payload}; XML payloads become JSON strings
func (r CaptureRecord) MarshalJSON() ([]byte, error) {
	var payload any = r.data
	if r.kind == CaptureSeatmapXML {
		payload = r.text
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", r.kind, err)
	}
	return json.Marshal(captureLine{Kind: r.kind, URL: r.sourceURL, Payload: raw})
}

func (r *CaptureRecord) UnmarshalJSON(b []byte) error {
	var line captureLine
	if err := json.Unmarshal(b, &line); err != nil {
		return err
	}
	if line.Kind == 0 {
		return fmt.Errorf("capture %q has no kind", line.URL)
	}
	if len(line.Payload) == 0 {
		return fmt.Errorf("capture %q has no payload", line.URL)
	}

	if line.Kind == CaptureSeatmapXML {
		var text string
		if err := json.Unmarshal(line.Payload, &text); err != nil {
			return fmt.Errorf("xml payload must be a string: %w", err)
		}
		*r = NewSeatmapXMLCapture(line.URL, text)
		return nil
	}

	var data any
	dec := json.NewDecoder(bytes.NewReader(line.Payload))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return err
	}
	*r = CaptureRecord{kind: line.Kind, sourceURL: line.URL, data: data}
	return nil
}
