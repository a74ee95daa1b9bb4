package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

var videoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// parseVideoURL accepts watch?v=<id>, /shorts/<id>, /live/<id>, /embed/<id> and youtu.be/<id>.
func parseVideoURL(rawURL string) (string, error) {
	u, err := source.ParseURL(rawURL, "youtube.com", "youtu.be")
	if err != nil {
		return "", err
	}

	segs := source.PathSegments(u)
	var id string
	switch host := strings.ToLower(u.Hostname()); {
	case host == "youtu.be":
		if len(segs) == 1 {
			id = segs[0]
		}
	case len(segs) == 1 && segs[0] == "watch":
		id = u.Query().Get("v")
	case len(segs) >= 2 && (segs[0] == "shorts" || segs[0] == "live" || segs[0] == "embed"):
		id = segs[1]
	}

	if !videoID.MatchString(id) {
		return "", fmt.Errorf("%w: expected a video url like https://www.youtube.com/watch?v=<id>", domain.ErrValidation)
	}
	return id, nil
}

// FetchItem loads a single video with its statistics.
func (s *Source) FetchItem(ctx context.Context, rawURL string) (*domain.Batch, error) {
	id, err := parseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: youtube api key is not configured", domain.ErrDisabled)
	}

	var videos ListResponse[Video]
	if err := s.get(ctx, "videos", url.Values{
		"part": {"snippet,statistics"},
		"id":   {id},
	}, &videos); err != nil {
		return nil, err
	}
	if len(videos.Items) == 0 {
		return nil, fmt.Errorf("%w: youtube video %s", domain.ErrNotFound, id)
	}
	video := videos.Items[0]

	return &domain.Batch{
		Source: domain.SourceInfo{
			ExternalID: video.Snippet.ChannelID,
			Name:       video.Snippet.ChannelTitle,
			URL:        "https://www.youtube.com/channel/" + video.Snippet.ChannelID,
		},
		Items: s.transform(videos.Items[:1]),
	}, nil
}
