package youtube

import (
	"fmt"
	"regexp"
	"strings"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

var channelID = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)

// ParseLocator accepts youtube.com/channel/<id> URLs only. Handle, /c/ and /user/
// URLs would need an extra lookup to resolve and are rejected.
func (s *Source) ParseLocator(rawURL string) (domain.Locator, error) {
	u, err := source.ParseURL(rawURL, "youtube.com")
	if err != nil {
		return domain.Locator{}, err
	}

	segs := source.PathSegments(u)
	if len(segs) == 0 {
		return domain.Locator{}, fmt.Errorf("%w: expected a channel url like https://www.youtube.com/channel/<id>", domain.ErrValidation)
	}

	switch {
	case segs[0] == "c", segs[0] == "user", strings.HasPrefix(segs[0], "@"):
		return domain.Locator{}, fmt.Errorf("%w: custom channel urls are not supported, use https://www.youtube.com/channel/<id>", domain.ErrValidation)
	case segs[0] != "channel" || len(segs) < 2:
		return domain.Locator{}, fmt.Errorf("%w: expected a channel url like https://www.youtube.com/channel/<id>", domain.ErrValidation)
	}

	id := segs[1]
	if !channelID.MatchString(id) {
		return domain.Locator{}, fmt.Errorf("%w: invalid channel id %q", domain.ErrValidation, id)
	}

	return domain.Locator{
		Platform:     domain.PlatformYouTube,
		ID:           id,
		CanonicalURL: "https://www.youtube.com/channel/" + id,
	}, nil
}
