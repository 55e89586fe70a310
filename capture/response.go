package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Response is an intercepted network response whose body has already been fetched
type Response interface {
	URL() string
	JSONBody() (any, error)
	TextBody() (string, error)
}

// BodyResponse is a Response backed by an in-memory body
type BodyResponse struct {
	url      string
	body     []byte
	fetchErr error

	once    sync.Once
	decoded any
	jsonErr error
}

// NewBodyResponse wraps a fetched body. A non-nil fetchErr makes both accessors fail.
func NewBodyResponse(url string, body []byte, fetchErr error) *BodyResponse {
	return &BodyResponse{url: url, body: body, fetchErr: fetchErr}
}

func (r *BodyResponse) URL() string {
	return r.url
}

// JSONBody decodes the body once and caches the outcome
func (r *BodyResponse) JSONBody() (any, error) {
	r.once.Do(func() {
		if r.fetchErr != nil {
			r.jsonErr = r.fetchErr
			return
		}
		r.decoded, r.jsonErr = DecodeJSON(r.body)
	})
	return r.decoded, r.jsonErr
}

func (r *BodyResponse) TextBody() (string, error) {
	if r.fetchErr != nil {
		return "", r.fetchErr
	}
	return string(r.body), nil
}

// DecodeJSON decodes exactly one JSON value, keeping numbers as json.Number
func DecodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty body")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}
