package domain

import "time"

// Premise is one canonical content item extracted from a source.
type Premise struct {
	ID               string    `json:"id"`
	Source           SourceRef `json:"source"`
	Link             string    `json:"link"`
	Body             string    `json:"premise"`
	ShortDescription string    `json:"shortDescription"`
	FirstPerson      string    `json:"firstPerson"`
	Metrics          Metrics   `json:"metrics"`
	Niche            string    `json:"niche"`
	SubNiche         string    `json:"subNiche"`
	Used             bool      `json:"used"`
	// Synthetic marks premises built from simulated upstream data.
	Synthetic bool      `json:"synthetic"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Metrics is the engagement snapshot observed at extraction time.
type Metrics struct {
	ObservedAt time.Time `json:"observedAt"`
	Likes      int64     `json:"likes"`
	Comments   int64     `json:"comments"`
	Views      int64     `json:"views"`
}

// Category holds an optional curation update. Nil fields are left untouched.
type Category struct {
	Niche    *string `json:"niche"`
	SubNiche *string `json:"subNiche"`
}
