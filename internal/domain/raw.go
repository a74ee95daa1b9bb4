package domain

import "time"

// FetchOptions are the adapter options accepted from callers.
// Zero values select the platform defaults.
type FetchOptions struct {
	SortOrder string `json:"sortOrder"`
	Limit     int    `json:"limit"`
}

// Locator is the platform-specific identifier extracted from a source URL.
type Locator struct {
	Platform Platform
	// ID is the community name, channel id or profile handle.
	ID string
	// CanonicalURL is the normalized URL stored on the source.
	CanonicalURL string
}

// SourceInfo describes the upstream origin as reported by the platform.
type SourceInfo struct {
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Followers   int64  `json:"followers,omitempty"`
}

// RawItem is an adapter's platform-neutral view of one upstream post or video.
type RawItem struct {
	ExternalID       string
	Link             string
	Title            string
	Body             string
	ShortDescription string
	Author           string
	PublishedAt      time.Time
	Likes            int64
	Comments         int64
	// Views is nil when the platform does not expose a view count.
	Views     *int64
	Synthetic bool
}

// Batch is the result of a single adapter fetch.
type Batch struct {
	Source SourceInfo
	Items  []RawItem
}
