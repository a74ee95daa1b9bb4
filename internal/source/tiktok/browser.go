package tiktok

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"premise_fetcher/internal/domain"
)

const (
	cardSelector  = `[data-e2e="user-post-item"]`
	viewsSelector = `strong[data-e2e="video-views"]`
	maxScrolls    = 5
	scrollPause   = time.Second
)

// BrowserConfig configures the headless browser lister.
type BrowserConfig struct {
	// Bin is the Chromium binary. Empty means look it up on the system.
	Bin      string
	Headless bool
	Timeout  time.Duration
	BaseURL  string
}

// BrowserLister renders the profile grid in a headless Chromium and reads the
// video cards. The grid exposes view counts only; likes and comments stay 0.
type BrowserLister struct {
	cfg    BrowserConfig
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

func NewBrowserLister(cfg BrowserConfig, logger *slog.Logger) *BrowserLister {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &BrowserLister{
		cfg:    cfg,
		logger: logger.With("platform", domain.PlatformTikTok, "lister", "browser"),
	}
}

func (b *BrowserLister) List(ctx context.Context, handle, sort string, limit int) ([]domain.RawItem, error) {
	if sort == sortLikes {
		return nil, fmt.Errorf("%w: sorting by likes needs like counts, which the profile grid does not show", domain.ErrValidation)
	}

	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(browser)
	if err != nil {
		// A dead browser fails here on every call; drop it so the next call relaunches.
		b.discard(browser)
		return nil, domain.NewUpstreamError(domain.PlatformTikTok, "open browser page", err)
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Timeout(b.cfg.Timeout).Navigate(profileURL(b.cfg.BaseURL, handle)); err != nil {
		if ctx.Err() == nil {
			b.discard(browser)
		}
		return nil, domain.NewUpstreamError(domain.PlatformTikTok, "load profile page", err)
	}
	if err := page.Timeout(b.cfg.Timeout).WaitLoad(); err != nil {
		return nil, domain.NewUpstreamError(domain.PlatformTikTok, "load profile page", err)
	}

	var cards rod.Elements
	for i := 0; i < maxScrolls; i++ {
		cards, err = page.Timeout(5 * time.Second).Elements(cardSelector)
		if err != nil {
			return nil, domain.NewUpstreamError(domain.PlatformTikTok, "read video grid", err)
		}
		if len(cards) >= limit {
			break
		}
		if err := page.Mouse.Scroll(0, 1000, 1); err != nil {
			break
		}
		if err := pause(ctx, scrollPause); err != nil {
			return nil, err
		}
	}

	items := make([]domain.RawItem, 0, min(limit, len(cards)))
	seen := make(map[string]bool, len(cards))
	for _, card := range cards {
		if len(items) == limit {
			break
		}
		item, ok := b.readCard(card, handle)
		if !ok || seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		items = append(items, item)
	}

	b.logger.Debug("read profile grid", "handle", handle, "cards", len(cards), "items", len(items))
	return items, nil
}

func (b *BrowserLister) readCard(card *rod.Element, handle string) (domain.RawItem, bool) {
	has, link, err := card.Has("a")
	if err != nil || !has {
		return domain.RawItem{}, false
	}
	href, err := link.Attribute("href")
	if err != nil || href == nil || !strings.Contains(*href, "/video/") {
		return domain.RawItem{}, false
	}

	path, _, _ := strings.Cut(*href, "?")
	id := path[strings.LastIndex(path, "/")+1:]
	if id == "" {
		return domain.RawItem{}, false
	}

	item := domain.RawItem{
		ExternalID: id,
		Link:       fmt.Sprintf("%s/video/%s", profileURL(canonicalBase, handle), id),
		Author:     handle,
	}

	if has, img, err := card.Has("img"); err == nil && has {
		if alt, err := img.Attribute("alt"); err == nil && alt != nil {
			item.Body = strings.TrimSpace(*alt)
		}
	}
	if has, el, err := card.Has(viewsSelector); err == nil && has {
		if text, err := el.Text(); err == nil {
			views := parseCount(text)
			item.Views = &views
		}
	}

	return item, true
}

func (b *BrowserLister) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	path := b.cfg.Bin
	if path == "" {
		found, ok := launcher.LookPath()
		if !ok {
			return nil, fmt.Errorf("%w: tiktok browser mode needs a chromium binary and none was found", domain.ErrDisabled)
		}
		path = found
	}

	u, err := launcher.New().
		Bin(path).
		Headless(b.cfg.Headless).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", domain.ErrDisabled, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, domain.NewUpstreamError(domain.PlatformTikTok, "connect to browser", err)
	}

	b.browser = browser
	return browser, nil
}

// discard closes browser and forgets it if it is still the cached instance.
func (b *BrowserLister) discard(browser *rod.Browser) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if browser == nil || b.browser != browser {
		return
	}
	if err := b.browser.Close(); err != nil {
		b.logger.Debug("close stale browser", "error", err)
	}
	b.browser = nil
	b.logger.Warn("dropped unresponsive browser, the next listing relaunches it")
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close shuts the browser down if it was started.
func (b *BrowserLister) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
