package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"premise_fetcher/internal/domain"
)

// SourceService manages source registration and removal.
type SourceService struct {
	sources   SourceStore
	premises  PremiseStore
	txManager TransactionManager
	cache     LinkCache
	adapters  map[domain.Platform]Adapter
	logger    *slog.Logger
	now       func() time.Time
}

func NewSourceService(
	sources SourceStore,
	premises PremiseStore,
	txManager TransactionManager,
	cache LinkCache,
	adapters []Adapter,
	logger *slog.Logger,
) *SourceService {
	return &SourceService{
		sources:   sources,
		premises:  premises,
		txManager: txManager,
		cache:     cache,
		adapters:  adapterMap(adapters),
		logger:    logger.With("component", "sources"),
		now:       time.Now,
	}
}

// Register validates rawURL with the platform's locator rules and stores the
// source under its canonical URL. An empty name defaults to that URL.
func (s *SourceService) Register(ctx context.Context, platform domain.Platform, rawURL, name string) (*domain.Source, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrValidation)
	}

	adapter, err := lookupAdapter(s.adapters, platform)
	if err != nil {
		return nil, err
	}

	locator, err := adapter.ParseLocator(rawURL)
	if err != nil {
		return nil, err
	}

	existing, err := s.sources.GetByURL(ctx, locator.CanonicalURL)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: source %s already registered as %s", domain.ErrConflict, existing.URL, existing.ID)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get source by url: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = locator.CanonicalURL
	}

	source := &domain.Source{
		ID:           uuid.NewString(),
		Platform:     platform,
		URL:          locator.CanonicalURL,
		Name:         name,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.sources.Create(ctx, source); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	s.logger.Info("source registered", "source_id", source.ID, "platform", platform, "url", source.URL)
	return source, nil
}

func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.sources.Get(ctx, id)
}

func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.sources.List(ctx)
}

// Delete removes a source together with all of its premises.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	if _, err := s.sources.Get(ctx, id); err != nil {
		return err
	}

	var links []string
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		links, err = s.premises.DeleteBySource(txCtx, id)
		if err != nil {
			return fmt.Errorf("delete premises: %w", err)
		}
		if err := s.sources.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil && len(links) > 0 {
		if err := s.cache.Forget(ctx, links...); err != nil {
			s.logger.Warn("link cache cleanup failed", "source_id", id, "error", err)
		}
	}

	s.logger.Info("source deleted", "source_id", id, "premises", len(links))
	return nil
}
