package tiktok

import (
	"fmt"
	"regexp"
	"strings"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/source"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{2,24}$`)

// ParseLocator accepts tiktok.com/@<handle> profile URLs. Handles are case
// insensitive on TikTok, so the locator carries the lower-cased form.
func (s *Source) ParseLocator(rawURL string) (domain.Locator, error) {
	u, err := source.ParseURL(rawURL, "tiktok.com")
	if err != nil {
		return domain.Locator{}, err
	}

	segs := source.PathSegments(u)
	if len(segs) == 0 || !strings.HasPrefix(segs[0], "@") {
		return domain.Locator{}, fmt.Errorf("%w: expected a profile url like https://www.tiktok.com/@<handle>", domain.ErrValidation)
	}

	handle := strings.ToLower(strings.TrimPrefix(segs[0], "@"))
	if !handlePattern.MatchString(handle) {
		return domain.Locator{}, fmt.Errorf("%w: invalid tiktok handle %q", domain.ErrValidation, handle)
	}

	return domain.Locator{
		Platform:     domain.PlatformTikTok,
		ID:           handle,
		CanonicalURL: profileURL(canonicalBase, handle),
	}, nil
}

func profileURL(base, handle string) string {
	return strings.TrimRight(base, "/") + "/@" + handle
}
