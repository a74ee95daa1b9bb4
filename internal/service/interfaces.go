package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/query"
)

type SourceStore interface {
	Create(ctx context.Context, source *domain.Source) error
	Get(ctx context.Context, id string) (*domain.Source, error)
	GetByURL(ctx context.Context, url string) (*domain.Source, error)
	List(ctx context.Context) ([]domain.Source, error)
	MarkExtracted(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type PremiseStore interface {
	ExistsByLink(ctx context.Context, link string) (bool, error)
	// Insert stores a premise. It returns false without error when the link is already taken.
	Insert(ctx context.Context, premise *domain.Premise) (bool, error)
	Get(ctx context.Context, id string) (*domain.Premise, error)
	List(ctx context.Context, q query.Query) ([]domain.Premise, int, error)
	SetUsed(ctx context.Context, id string, used bool, at time.Time) (*domain.Premise, error)
	SetCategory(ctx context.Context, id string, category domain.Category, at time.Time) (*domain.Premise, error)
	// DeleteBySource removes every premise of a source and returns their links.
	DeleteBySource(ctx context.Context, sourceID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type NicheStore interface {
	List(ctx context.Context) ([]domain.Niche, error)
	Get(ctx context.Context, id string) (*domain.Niche, error)
	Create(ctx context.Context, niche *domain.Niche) error
	Update(ctx context.Context, niche *domain.Niche) error
	Delete(ctx context.Context, id string) error
}

type Adapter interface {
	Platform() domain.Platform
	ParseLocator(rawURL string) (domain.Locator, error)
	Fetch(ctx context.Context, locator domain.Locator, opts domain.FetchOptions) (*domain.Batch, error)
	// FetchItem loads the single post or video behind rawURL as a one-item batch.
	FetchItem(ctx context.Context, rawURL string) (*domain.Batch, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, premise *domain.Premise) error
	Close() error
}

type LinkCache interface {
	Seen(ctx context.Context, link string) (bool, error)
	Mark(ctx context.Context, link string) error
	Forget(ctx context.Context, links ...string) error
}

type Metrics interface {
	ObserveIngest(platform domain.Platform, status string, d time.Duration)
	AddItems(platform domain.Platform, outcome string, n int)
}
