package tiktok

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

const (
	DefaultBaseURL   = "https://www.tiktok.com"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	canonicalBase = "https://www.tiktok.com"
	defaultLimit  = 10
	maxLimit      = 50

	sortLikes = "likes"
	sortDate  = "date"
)

// Config holds TikTok adapter configuration.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Source reads profile metadata from the server-rendered profile page and
// delegates video listing to a VideoLister. A nil lister disables fetching.
type Source struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	lister     VideoLister
	logger     *slog.Logger
}

// New creates a new TikTok adapter.
func New(cfg Config, lister VideoLister, logger *slog.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		lister:    lister,
		logger:    logger.With("platform", domain.PlatformTikTok),
	}
}

func (s *Source) Platform() domain.Platform {
	return domain.PlatformTikTok
}

func (s *Source) Fetch(ctx context.Context, loc domain.Locator, opts domain.FetchOptions) (*domain.Batch, error) {
	if s.lister == nil {
		return nil, fmt.Errorf("%w: tiktok extraction is turned off", domain.ErrDisabled)
	}

	sort, err := source.CheckSort(opts.SortOrder, "", sortLikes, sortDate)
	if err != nil {
		return nil, err
	}
	limit, err := source.ClampLimit(opts.Limit, defaultLimit, maxLimit)
	if err != nil {
		return nil, err
	}

	meta, err := s.fetchProfile(ctx, loc.ID)
	if err != nil {
		return nil, err
	}

	items, err := s.lister.List(ctx, loc.ID, sort, limit)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	s.logger.Debug("listed videos", "handle", loc.ID, "sort", sort, "videos", len(items))

	return &domain.Batch{
		Source: domain.SourceInfo{
			ExternalID:  loc.ID,
			Name:        meta.displayName(loc.ID),
			URL:         profileURL(canonicalBase, loc.ID),
			Description: meta.Description,
			Followers:   meta.followers(),
		},
		Items: items,
	}, nil
}

func (s *Source) fetchProfile(ctx context.Context, handle string) (profileMeta, error) {
	return s.fetchPage(ctx, profileURL(s.baseURL, handle), "tiktok profile @"+handle)
}

// fetchPage reads the meta tags of a server-rendered page. what names the page in errors.
func (s *Source) fetchPage(ctx context.Context, pageURL, what string) (profileMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return profileMeta{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return profileMeta{}, domain.NewUpstreamError(domain.PlatformTikTok, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return profileMeta{}, fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	case resp.StatusCode != http.StatusOK:
		return profileMeta{}, domain.NewUpstreamError(domain.PlatformTikTok,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	meta, err := parseProfile(resp.Body)
	if err != nil {
		return profileMeta{}, domain.NewUpstreamError(domain.PlatformTikTok, "parse page", err)
	}
	return meta, nil
}
