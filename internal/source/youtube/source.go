package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	defaultLimit = 20
	maxLimit     = 50
	defaultSort  = "viewCount"
)

var sortOrders = []string{"date", "rating", "relevance", "title", "videoCount", "viewCount"}

// Config holds YouTube Data API configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Source fetches channel videos from the YouTube Data API v3.
type Source struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// New creates a new YouTube adapter. Without an API key every fetch fails with
// domain.ErrDisabled; locator parsing still works.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger.With("platform", domain.PlatformYouTube),
	}
}

func (s *Source) Platform() domain.Platform {
	return domain.PlatformYouTube
}

// Fetch loads channel metadata, searches its videos and resolves their statistics.
func (s *Source) Fetch(ctx context.Context, loc domain.Locator, opts domain.FetchOptions) (*domain.Batch, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: youtube api key is not configured", domain.ErrDisabled)
	}

	order, err := source.CheckSort(opts.SortOrder, defaultSort, sortOrders...)
	if err != nil {
		return nil, err
	}
	limit, err := source.ClampLimit(opts.Limit, defaultLimit, maxLimit)
	if err != nil {
		return nil, err
	}

	var channels ListResponse[Channel]
	if err := s.get(ctx, "channels", url.Values{
		"part": {"snippet,statistics"},
		"id":   {loc.ID},
	}, &channels); err != nil {
		return nil, err
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("%w: channel %s", domain.ErrNotFound, loc.ID)
	}
	channel := channels.Items[0]

	var search ListResponse[SearchResult]
	if err := s.get(ctx, "search", url.Values{
		"part":       {"snippet"},
		"channelId":  {loc.ID},
		"maxResults": {strconv.Itoa(limit)},
		"order":      {order},
		"type":       {"video"},
	}, &search); err != nil {
		return nil, err
	}
	if search.Items == nil {
		return nil, domain.NewUpstreamError(domain.PlatformYouTube, "search response has no items field", nil)
	}

	ids := make([]string, 0, len(search.Items))
	for _, r := range search.Items {
		if r.ID.VideoID != "" {
			ids = append(ids, r.ID.VideoID)
		}
	}

	info := domain.SourceInfo{
		ExternalID:  channel.ID,
		Name:        channel.Snippet.Title,
		URL:         "https://www.youtube.com/channel/" + channel.ID,
		Description: channel.Snippet.Description,
		Followers:   parseCount(channel.Statistics.SubscriberCount),
	}
	if len(ids) == 0 {
		return &domain.Batch{Source: info, Items: []domain.RawItem{}}, nil
	}

	var videos ListResponse[Video]
	if err := s.get(ctx, "videos", url.Values{
		"part": {"snippet,statistics"},
		"id":   {strings.Join(ids, ",")},
	}, &videos); err != nil {
		return nil, err
	}

	s.logger.Debug("fetched videos", "channel", loc.ID, "order", order, "videos", len(videos.Items))

	return &domain.Batch{Source: info, Items: s.transform(orderLike(videos.Items, ids))}, nil
}

func (s *Source) get(ctx context.Context, resource string, params url.Values, v any) error {
	endpoint := s.baseURL + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.NewUpstreamError(domain.PlatformYouTube, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return domain.NewUpstreamError(domain.PlatformYouTube,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode),
			fmt.Errorf("%s: %s", resource, apiErr.Error.Message))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return domain.NewUpstreamError(domain.PlatformYouTube, "decode response", err)
	}
	return nil
}

func (s *Source) transform(videos []Video) []domain.RawItem {
	items := make([]domain.RawItem, 0, len(videos))

	for _, v := range videos {
		publishedAt, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt)
		if err != nil {
			s.logger.Warn("failed to parse date",
				"external_id", v.ID,
				"date", v.Snippet.PublishedAt,
			)
		}

		views := parseCount(v.Statistics.ViewCount)
		items = append(items, domain.RawItem{
			ExternalID:  v.ID,
			Link:        "https://www.youtube.com/watch?v=" + v.ID,
			Title:       v.Snippet.Title,
			Body:        v.Snippet.Description,
			Author:      v.Snippet.ChannelTitle,
			PublishedAt: publishedAt,
			Likes:       parseCount(v.Statistics.LikeCount),
			Comments:    parseCount(v.Statistics.CommentCount),
			Views:       &views,
		})
	}

	return items
}

// orderLike returns videos in the order of ids, which carries the search ranking.
func orderLike(videos []Video, ids []string) []Video {
	byID := make(map[string]Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	out := make([]Video, 0, len(videos))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// parseCount reads a Data API count. Hidden counts are absent and read as 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
