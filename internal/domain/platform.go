package domain

import "fmt"

// Platform identifies the upstream platform a source belongs to.
type Platform string

const (
	PlatformYouTube Platform = "youtube" // video channel
	PlatformReddit  Platform = "reddit"  // forum community
	PlatformTikTok  Platform = "tiktok"  // short-video profile
)

// Platforms lists every supported platform.
var Platforms = []Platform{PlatformYouTube, PlatformReddit, PlatformTikTok}

// ParsePlatform validates a platform tag coming from user input.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrValidation, s)
}

func (p Platform) String() string {
	return string(p)
}
