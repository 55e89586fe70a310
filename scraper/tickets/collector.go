package tickets

import (
	"sync"

	"seatmap-scraper/capture"
	"seatmap-scraper/utils"
)

// FetchBody retrieves a response body once the browser has finished loading it
type FetchBody func() ([]byte, error)

// Collector bridges browser network events to the interceptor. It remembers
// wanted responses until their body is loaded, fetches each body off the event
// loop and hands the materialized response to the interceptor.
type Collector struct {
	interceptor *capture.Interceptor
	logger      *utils.Logger

	mu      sync.Mutex
	pending map[string]string // request id -> url
	closed  bool
	wg      sync.WaitGroup
}

// NewCollector creates a new Collector
func NewCollector(interceptor *capture.Interceptor, logger *utils.Logger) *Collector {
	return &Collector{
		interceptor: interceptor,
		logger:      logger,
		pending:     make(map[string]string),
	}
}

// ResponseReceived notes a response whose body may be worth fetching
func (c *Collector) ResponseReceived(requestID, url string) {
	if !c.interceptor.Wants(url) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.pending[requestID] = url
	}
}

// LoadingFinished fetches the body of a pending response in the background
func (c *Collector) LoadingFinished(requestID string, fetch FetchBody) {
	c.mu.Lock()
	url, ok := c.pending[requestID]
	delete(c.pending, requestID)
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		body, err := fetch()
		if _, herr := c.interceptor.Handle(capture.NewBodyResponse(url, body, err)); herr != nil {
			c.logger.Warn("Capture of %s lost: %v", url, herr)
		}
	}()
}

// LoadingFailed forgets a response that never completed
func (c *Collector) LoadingFailed(requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, requestID)
}

// Close stops accepting events and waits for in-flight fetches
func (c *Collector) Close() {
	c.mu.Lock()
	c.closed = true
	dropped := len(c.pending)
	c.pending = make(map[string]string)
	c.mu.Unlock()

	c.wg.Wait()
	if dropped > 0 {
		c.logger.Debug("%d responses were still loading when capture ended", dropped)
	}
}
