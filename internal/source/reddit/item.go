package reddit

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

var postID = regexp.MustCompile(`^[a-z0-9]{1,12}$`)

// parsePostURL accepts reddit.com/r/<name>/comments/<id>[/<slug>] and redd.it/<id>.
func parsePostURL(rawURL string) (string, error) {
	u, err := source.ParseURL(rawURL, "reddit.com", "redd.it")
	if err != nil {
		return "", err
	}

	segs := source.PathSegments(u)
	var id string
	if host := strings.ToLower(u.Hostname()); host == "redd.it" || strings.HasSuffix(host, ".redd.it") {
		if len(segs) == 1 {
			id = segs[0]
		}
	} else {
		for i, seg := range segs {
			if strings.EqualFold(seg, "comments") && i+1 < len(segs) {
				id = segs[i+1]
				break
			}
		}
	}

	id = strings.ToLower(id)
	if !postID.MatchString(id) {
		return "", fmt.Errorf("%w: expected a post url like https://www.reddit.com/r/<name>/comments/<id>", domain.ErrValidation)
	}
	return id, nil
}

// FetchItem loads a single post. The comments endpoint answers with the post
// listing followed by the comment listing; only the first is read.
func (s *Source) FetchItem(ctx context.Context, rawURL string) (*domain.Batch, error) {
	id, err := parsePostURL(rawURL)
	if err != nil {
		return nil, err
	}

	var listings []Thing[Listing]
	if err := s.getJSON(ctx, fmt.Sprintf("%s/comments/%s.json?limit=1&raw_json=1", s.baseURL, id), &listings); err != nil {
		return nil, err
	}
	if len(listings) == 0 || listings[0].Data == nil {
		return nil, fmt.Errorf("%w: reddit post %s", domain.ErrNotFound, id)
	}

	var post *Post
	for _, c := range listings[0].Data.Children {
		if c.Kind == "t3" && c.Data != nil {
			post = c.Data
			break
		}
	}
	if post == nil {
		return nil, fmt.Errorf("%w: reddit post %s", domain.ErrNotFound, id)
	}

	s.logger.Debug("fetched post", "post_id", id, "subreddit", post.Subreddit)

	return &domain.Batch{
		Source: domain.SourceInfo{
			Name: post.Subreddit,
			URL:  canonicalBase + "/r/" + post.Subreddit,
		},
		Items: s.transform([]Thing[Post]{{Kind: "t3", Data: post}}),
	}, nil
}
