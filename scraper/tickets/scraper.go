package tickets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"seatmap-scraper/capture"
	"seatmap-scraper/config"
	"seatmap-scraper/models"
	"seatmap-scraper/services"
	"seatmap-scraper/utils"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

const sessionTimeout = 10 * time.Minute

// interactiveSelector matches price filters and similar controls whose clicks trigger seatmap requests
const interactiveSelector = `[class*="filter"], [class*="price"]`

// TicketScraper drives one browser session against an event page and captures its seat APIs
type TicketScraper struct {
	cfg         *config.Config
	logger      *utils.Logger
	rateLimiter *utils.RateLimiter
	normalizer  *services.Normalizer
}

// NewTicketScraper creates a new TicketScraper
func NewTicketScraper(cfg *config.Config, logger *utils.Logger) *TicketScraper {
	return &TicketScraper{
		cfg:         cfg,
		logger:      logger,
		rateLimiter: utils.NewRateLimiter(cfg.InteractionDelay),
		normalizer:  services.NewNormalizer(logger),
	}
}

// newContext creates a fresh chromedp context (one browser, one tab)
func (s *TicketScraper) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.UserAgent(s.cfg.UserAgent),
		chromedp.WindowSize(s.cfg.WindowWidth, s.cfg.WindowHeight),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(s.logger.Debug))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// Scrape loads the event page, captures seat API responses until the page
// has been exercised, then normalizes everything that was captured
func (s *TicketScraper) Scrape(ctx context.Context) (*models.Run, error) {
	run := &models.Run{
		ID:        uuid.NewString(),
		EventURL:  s.cfg.EventURL,
		StartedAt: time.Now(),
	}
	logger := s.logger.With("run", run.ID)
	logger.Info("Starting scrape of %s", s.cfg.EventURL)

	ctx, cancel := s.newContext(ctx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, sessionTimeout)
	defer cancelTimeout()

	buffer := capture.NewBuffer()
	interceptor := capture.NewInterceptor(s.cfg.Pipeline(), buffer, logger)
	collector := NewCollector(interceptor, logger)
	s.listen(ctx, collector)

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if err := s.navigate(ctx); err != nil {
		return nil, fmt.Errorf("failed to load event page: %w", err)
	}
	s.screenshot(ctx, "event_loaded.png")

	logger.Info("Waiting %v for API calls...", s.cfg.CaptureWindow)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.cfg.CaptureWindow):
	}

	s.interact(ctx)

	collector.Close()
	records, err := buffer.Freeze()
	if err != nil {
		return nil, err
	}

	logger.Info("Processing %d captured API calls", len(records))
	run.Captures = records
	run.DistinctURLs = interceptor.DistinctURLs()
	run.Result = s.normalizer.Normalize(records)
	run.FinishedAt = time.Now()
	return run, nil
}

// listen forwards network events to the collector. Handlers must not block
// the event loop, so body fetches run on their own goroutines.
func (s *TicketScraper) listen(ctx context.Context, collector *Collector) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			collector.ResponseReceived(string(e.RequestID), e.Response.URL)
		case *network.EventLoadingFinished:
			requestID := e.RequestID
			collector.LoadingFinished(string(requestID), func() ([]byte, error) {
				c := chromedp.FromContext(ctx)
				return network.GetResponseBody(requestID).Do(cdp.WithExecutor(ctx, c.Target))
			})
		case *network.EventLoadingFailed:
			collector.LoadingFailed(string(e.RequestID))
		}
	})
}

func (s *TicketScraper) navigate(ctx context.Context) error {
	return utils.RetryWithBackoff(ctx, s.cfg.MaxRetries, 2*time.Second, func() error {
		navCtx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
		defer cancel()
		if err := chromedp.Run(navCtx,
			chromedp.Navigate(s.cfg.EventURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
		); err != nil {
			return fmt.Errorf("navigate failed: %w", err)
		}
		s.logger.Info("Event page loaded")
		return nil
	}, s.logger)
}

// screenshot saves the current viewport; failures are only logged
func (s *TicketScraper) screenshot(ctx context.Context, name string) {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		s.logger.Warn("Screenshot failed: %v", err)
		return
	}
	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0755); err != nil {
		s.logger.Warn("Cannot create screenshot directory: %v", err)
		return
	}
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		s.logger.Warn("Cannot write screenshot: %v", err)
		return
	}
	s.logger.Info("Screenshot saved: %s", path)
}

// interact scrolls and clicks a few filter controls so the page issues more seat requests
func (s *TicketScraper) interact(ctx context.Context) {
	if err := chromedp.Run(ctx, chromedp.Evaluate(`window.scrollBy(0, 500)`, nil)); err != nil {
		s.logger.Warn("Interaction error: %v", err)
		return
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(interactiveSelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		s.logger.Warn("Interaction error: %v", err)
		return
	}
	if len(nodes) == 0 {
		return
	}
	s.logger.Info("Found %d interactive elements", len(nodes))

	for i, node := range nodes {
		if i >= s.cfg.MaxInteractions {
			break
		}
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return
		}
		if err := chromedp.Run(ctx, chromedp.MouseClickNode(node)); err != nil {
			s.logger.Debug("Click %d failed: %v", i+1, err)
		}
	}
	// Let the last click's requests settle.
	_ = s.rateLimiter.Wait(ctx)
}
