package utils

import "sync"

// URLTracker counts how often each captured URL was seen
type URLTracker struct {
	mu   sync.Mutex
	seen map[string]int
}

// NewURLTracker creates a new tracker
func NewURLTracker() *URLTracker {
	return &URLTracker{seen: make(map[string]int)}
}

// Add records a sighting and returns true the first time url is seen
func (t *URLTracker) Add(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[url]++
	return t.seen[url] == 1
}

// Count returns the number of distinct URLs
func (t *URLTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
