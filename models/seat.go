package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Seat is the canonical unit of inventory after format-specific normalization
type Seat struct {
	ID         *string `json:"id"`
	Section    *string `json:"section"`
	Row        *string `json:"row"`
	SeatNumber *string `json:"seat_number"`
	Price      *Price  `json:"price"`
	Status     string  `json:"status"`
	Available  bool    `json:"available"`
}

// StatusUnknown is used when the source carried no status
const StatusUnknown = "unknown"

// Price is an opaque price token, kept exactly as the source carried it.
// It may hold a number, a currency-formatted string or any other JSON value;
// two tokens are equal only if their encodings are equal.
type Price struct {
	raw string // canonical JSON encoding
}

// NewStringPrice wraps a textual price such as an XML attribute value
func NewStringPrice(s string) *Price {
	b, _ := json.Marshal(s)
	return &Price{raw: string(b)}
}

// PriceFromJSON wraps a value produced by a json.Decoder with UseNumber enabled
func PriceFromJSON(v any) *Price {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return NewStringPrice(fmt.Sprint(v))
	}
	return &Price{raw: string(b)}
}

// Key returns the grouping key of the token
func (p *Price) Key() string {
	if p == nil {
		return "null"
	}
	return p.raw
}

// IsNumeric reports whether the token was a JSON number
func (p *Price) IsNumeric() bool {
	if p == nil || p.raw == "" {
		return false
	}
	c := p.raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// String returns the token for display: strings unquoted, everything else as encoded
func (p *Price) String() string {
	if p == nil {
		return ""
	}
	if strings.HasPrefix(p.raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(p.raw), &s); err == nil {
			return s
		}
	}
	return p.raw
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.raw == "" {
		return []byte("null"), nil
	}
	return []byte(p.raw), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if !json.Valid(b) {
		return fmt.Errorf("invalid price token: %s", b)
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	enc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.raw = string(enc)
	return nil
}

// Str returns a pointer to s, for optional seat fields
func Str(s string) *string {
	return &s
}

// Deref returns the pointed-to string or fallback when nil
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
