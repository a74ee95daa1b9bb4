package domain

import "time"

// Source is a registered upstream origin (channel, subreddit, profile).
type Source struct {
	ID              string     `json:"id" db:"id"`
	Platform        Platform   `json:"platform" db:"platform"`
	URL             string     `json:"url" db:"url"`
	Name            string     `json:"name" db:"name"`
	RegisteredAt    time.Time  `json:"registeredAt" db:"registered_at"`
	LastExtractedAt *time.Time `json:"lastExtractedAt" db:"last_extracted_at"`
}

// Ref returns the snapshot of the source that is denormalized onto premises.
func (s *Source) Ref() SourceRef {
	return SourceRef{
		ID:       s.ID,
		Platform: s.Platform,
		URL:      s.URL,
		Name:     s.Name,
	}
}

// SourceRef is a point-in-time copy of a source stored on each premise.
type SourceRef struct {
	ID       string   `json:"id"`
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Name     string   `json:"name"`
}
