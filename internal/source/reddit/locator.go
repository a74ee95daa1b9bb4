package reddit

import (
	"fmt"
	"regexp"
	"strings"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

var subredditName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_]{1,20}$`)

// ParseLocator accepts any reddit.com URL whose path starts with /r/<name>.
func (s *Source) ParseLocator(rawURL string) (domain.Locator, error) {
	u, err := source.ParseURL(rawURL, "reddit.com")
	if err != nil {
		return domain.Locator{}, err
	}

	segs := source.PathSegments(u)
	if len(segs) < 2 || !strings.EqualFold(segs[0], "r") {
		return domain.Locator{}, fmt.Errorf("%w: expected a subreddit url like https://www.reddit.com/r/<name>", domain.ErrValidation)
	}
	name := segs[1]
	if !subredditName.MatchString(name) {
		return domain.Locator{}, fmt.Errorf("%w: invalid subreddit name %q", domain.ErrValidation, name)
	}

	return domain.Locator{
		Platform:     domain.PlatformReddit,
		ID:           name,
		CanonicalURL: canonicalBase + "/r/" + name,
	}, nil
}
