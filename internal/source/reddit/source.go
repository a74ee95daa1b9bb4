package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "premise-fetcher/1.0"

	canonicalBase = "https://www.reddit.com"
	defaultLimit  = 25
	maxLimit      = 100
	defaultSort   = "hot"
)

var sortOrders = []string{"hot", "new", "top", "rising"}

// Config holds Reddit adapter configuration.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Source fetches subreddit listings from Reddit's public JSON endpoints.
type Source struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// New creates a new Reddit adapter.
func New(cfg Config, logger *slog.Logger) *Source {
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
		logger:    logger.With("platform", domain.PlatformReddit),
	}
}

func (s *Source) Platform() domain.Platform {
	return domain.PlatformReddit
}

// Fetch loads subreddit metadata and one page of posts.
func (s *Source) Fetch(ctx context.Context, loc domain.Locator, opts domain.FetchOptions) (*domain.Batch, error) {
	sort, err := source.CheckSort(opts.SortOrder, defaultSort, sortOrders...)
	if err != nil {
		return nil, err
	}
	limit, err := source.ClampLimit(opts.Limit, defaultLimit, maxLimit)
	if err != nil {
		return nil, err
	}

	name := url.PathEscape(loc.ID)

	var about Thing[About]
	if err := s.getJSON(ctx, fmt.Sprintf("%s/r/%s/about.json", s.baseURL, name), &about); err != nil {
		return nil, err
	}
	if about.Kind != "t5" || about.Data == nil {
		return nil, fmt.Errorf("%w: subreddit %s", domain.ErrNotFound, loc.ID)
	}

	var listing Thing[Listing]
	if err := s.getJSON(ctx, fmt.Sprintf("%s/r/%s/%s.json?limit=%d&raw_json=1", s.baseURL, name, sort, limit), &listing); err != nil {
		return nil, err
	}
	if listing.Data == nil || listing.Data.Children == nil {
		return nil, domain.NewUpstreamError(domain.PlatformReddit, "listing has no posts field", nil)
	}

	s.logger.Debug("fetched listing", "subreddit", loc.ID, "sort", sort, "posts", len(listing.Data.Children))

	return &domain.Batch{
		Source: domain.SourceInfo{
			ExternalID:  about.Data.ID,
			Name:        about.Data.DisplayName,
			URL:         canonicalBase + "/r/" + about.Data.DisplayName,
			Description: about.Data.PublicDescription,
			Followers:   about.Data.Subscribers,
		},
		Items: s.transform(listing.Data.Children),
	}, nil
}

func (s *Source) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.NewUpstreamError(domain.PlatformReddit, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: reddit returned %d", domain.ErrNotFound, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return domain.NewUpstreamError(domain.PlatformReddit,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return domain.NewUpstreamError(domain.PlatformReddit, "decode response", err)
	}
	return nil
}

func (s *Source) transform(children []Thing[Post]) []domain.RawItem {
	items := make([]domain.RawItem, 0, len(children))

	for _, c := range children {
		if c.Kind != "t3" || c.Data == nil {
			continue
		}
		p := c.Data

		var link string
		if p.Permalink != "" {
			link = canonicalBase + p.Permalink
		}

		items = append(items, domain.RawItem{
			ExternalID:  p.ID,
			Link:        link,
			Title:       p.Title,
			Body:        p.SelfText,
			Author:      p.Author,
			PublishedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Likes:       p.Ups,
			Comments:    p.NumComments,
		})
	}

	return items
}
