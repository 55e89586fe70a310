package capture

import (
	"errors"
	"sync"

	"seatmap-scraper/models"
)

var (
	ErrNilBuffer    = errors.New("capture buffer is not initialized")
	ErrBufferFrozen = errors.New("capture buffer is frozen")
)

// Buffer is an append-only, arrival-ordered log of capture records.
// Appends are safe from concurrent response handlers; Freeze ends the
// capture phase and hands out the final snapshot.
type Buffer struct {
	mu      sync.Mutex
	records []models.CaptureRecord
	frozen  bool
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a record. Identical records are kept twice.
func (b *Buffer) Append(r models.CaptureRecord) error {
	if b == nil {
		return ErrNilBuffer
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return ErrBufferFrozen
	}
	b.records = append(b.records, r)
	return nil
}

func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Snapshot copies the records captured so far
func (b *Buffer) Snapshot() []models.CaptureRecord {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.CaptureRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Freeze rejects further appends and returns the final snapshot. It may be called more than once.
func (b *Buffer) Freeze() ([]models.CaptureRecord, error) {
	if b == nil {
		return nil, ErrNilBuffer
	}
	b.mu.Lock()
	b.frozen = true
	b.mu.Unlock()
	return b.Snapshot(), nil
}
