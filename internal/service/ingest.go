package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/normalize"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"

	outcomeInserted  = "inserted"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// IngestService runs the fetch, normalize, dedup and insert pipeline for registered sources.
type IngestService struct {
	sources   SourceStore
	premises  PremiseStore
	adapters  map[domain.Platform]Adapter
	publisher Publisher
	cache     LinkCache
	metrics   Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewIngestService wires the pipeline. publisher, cache and metrics are optional.
func NewIngestService(
	sources SourceStore,
	premises PremiseStore,
	adapters []Adapter,
	publisher Publisher,
	cache LinkCache,
	metrics Metrics,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		sources:   sources,
		premises:  premises,
		adapters:  adapterMap(adapters),
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger.With("component", "ingest"),
		now:       time.Now,
	}
}

func adapterMap(adapters []Adapter) map[domain.Platform]Adapter {
	m := make(map[domain.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Platform()] = a
	}
	return m
}

func lookupAdapter(adapters map[domain.Platform]Adapter, p domain.Platform) (Adapter, error) {
	a, ok := adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDisabled, p)
	}
	return a, nil
}

// Ingest extracts new premises from a source. When expected is set, the source
// must belong to that platform; nothing is fetched or written otherwise.
func (s *IngestService) Ingest(ctx context.Context, sourceID string, expected domain.Platform, opts domain.FetchOptions) (*domain.IngestResult, error) {
	start := time.Now()

	source, err := s.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if expected != "" && source.Platform != expected {
		return nil, fmt.Errorf("%w: source %s is a %s source, not %s",
			domain.ErrTypeMismatch, source.ID, source.Platform, expected)
	}

	adapter, err := lookupAdapter(s.adapters, source.Platform)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("source_id", source.ID, "platform", source.Platform)
	logger.Info("starting extraction", "url", source.URL, "sort", opts.SortOrder, "limit", opts.Limit)

	locator, err := adapter.ParseLocator(source.URL)
	if err != nil {
		return nil, fmt.Errorf("parse locator: %w", err)
	}

	batch, err := adapter.Fetch(ctx, locator, opts)
	if err != nil {
		s.observe(source.Platform, statusFailure, time.Since(start))
		logger.Error("fetch failed", "error", err, "cause", upstreamCause(err))
		return nil, fmt.Errorf("fetch %s: %w", source.Platform, err)
	}

	logger.Info("fetched items from platform", "count", len(batch.Items))

	now := s.now().UTC()
	ref := source.Ref()
	result := &domain.IngestResult{
		SourceID: source.ID,
		Platform: source.Platform,
		Fetched:  len(batch.Items),
		Inserted: []domain.Premise{},
	}

	for _, item := range batch.Items {
		premise, err := normalize.Normalize(item, ref, now)
		if err != nil {
			result.Failed++
			logger.Warn("skipping item", "external_id", item.ExternalID, "error", err)
			continue
		}

		dup, err := s.isDuplicate(ctx, premise.Link)
		if err != nil {
			result.Failed++
			logger.Warn("dedup lookup failed", "link", premise.Link, "error", err)
			continue
		}
		if dup {
			result.Duplicates++
			continue
		}

		premise.ID = uuid.NewString()
		premise.CreatedAt = now
		premise.UpdatedAt = now

		inserted, err := s.premises.Insert(ctx, &premise)
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			result.Failed++
			logger.Warn("insert premise failed", "link", premise.Link, "error", err)
			continue
		}
		if !inserted || err != nil {
			result.Duplicates++
			s.markSeen(ctx, premise.Link)
			continue
		}

		result.Inserted = append(result.Inserted, premise)
		s.publish(ctx, &premise)
		s.markSeen(ctx, premise.Link)
	}

	result.InsertedCount = len(result.Inserted)
	if err := s.sources.MarkExtracted(ctx, source.ID, now); err != nil {
		return result, fmt.Errorf("mark extracted: %w", err)
	}

	result.Duration = time.Since(start)
	s.observe(source.Platform, statusSuccess, result.Duration)
	s.addItems(source.Platform, outcomeInserted, result.InsertedCount)
	s.addItems(source.Platform, outcomeDuplicate, result.Duplicates)
	s.addItems(source.Platform, outcomeFailed, result.Failed)

	logger.Info("extraction completed",
		"fetched", result.Fetched,
		"inserted", result.InsertedCount,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
		"duration", result.Duration,
	)

	return result, nil
}

// Preview fetches and normalizes a source URL without persisting anything.
func (s *IngestService) Preview(ctx context.Context, platform domain.Platform, rawURL string, opts domain.FetchOptions) (*domain.Analysis, error) {
	adapter, err := lookupAdapter(s.adapters, platform)
	if err != nil {
		return nil, err
	}

	locator, err := adapter.ParseLocator(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse locator: %w", err)
	}

	batch, err := adapter.Fetch(ctx, locator, opts)
	if err != nil {
		s.logger.Error("preview fetch failed", "platform", platform, "error", err, "cause", upstreamCause(err))
		return nil, fmt.Errorf("fetch %s: %w", platform, err)
	}

	name := batch.Source.Name
	if name == "" {
		name = locator.CanonicalURL
	}
	ref := domain.SourceRef{Platform: platform, URL: locator.CanonicalURL, Name: name}
	now := s.now().UTC()

	analysis := &domain.Analysis{Source: batch.Source, Premises: []domain.Premise{}}
	for _, item := range batch.Items {
		premise, err := normalize.Normalize(item, ref, now)
		if err != nil {
			analysis.Failed++
			continue
		}
		analysis.Premises = append(analysis.Premises, premise)
	}
	return analysis, nil
}

// PreviewItem fetches and normalizes a single post or video URL without persisting it.
func (s *IngestService) PreviewItem(ctx context.Context, platform domain.Platform, rawURL string) (*domain.ItemPreview, error) {
	adapter, err := lookupAdapter(s.adapters, platform)
	if err != nil {
		return nil, err
	}

	batch, err := adapter.FetchItem(ctx, rawURL)
	if err != nil {
		s.logger.Error("item fetch failed", "platform", platform, "error", err, "cause", upstreamCause(err))
		return nil, fmt.Errorf("fetch %s item: %w", platform, err)
	}
	if len(batch.Items) == 0 {
		return nil, fmt.Errorf("%w: %s item %s", domain.ErrNotFound, platform, rawURL)
	}

	name := batch.Source.Name
	if name == "" {
		name = batch.Source.URL
	}
	ref := domain.SourceRef{Platform: platform, URL: batch.Source.URL, Name: name}

	premise, err := normalize.Normalize(batch.Items[0], ref, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("normalize item: %w", err)
	}
	return &domain.ItemPreview{Source: batch.Source, Premise: premise}, nil
}

// SyncAll ingests every registered source with default options. Sources whose
// platform is disabled are skipped; other failures are counted and logged.
func (s *IngestService) SyncAll(ctx context.Context) (*domain.SyncStats, error) {
	start := time.Now()

	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	stats := &domain.SyncStats{}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := s.Ingest(ctx, source.ID, "", domain.FetchOptions{})
		switch {
		case errors.Is(err, domain.ErrDisabled):
			s.logger.Debug("platform disabled, skipping source", "source_id", source.ID, "platform", source.Platform)
			continue
		case err != nil:
			stats.Failed++
			s.logger.Error("source sync failed", "source_id", source.ID, "error", err)
			continue
		}

		stats.Sources++
		stats.Inserted += result.InsertedCount
		stats.Skipped += result.Duplicates
		stats.Failed += result.Failed
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// Enabled reports whether an adapter is registered for the platform.
func (s *IngestService) Enabled(p domain.Platform) bool {
	_, ok := s.adapters[p]
	return ok
}

// isDuplicate reports whether link is already stored. A cache hit is only a
// hint and is confirmed against the store, which stays authoritative after a
// database reset. A cache miss is left to Insert, which rejects taken links.
func (s *IngestService) isDuplicate(ctx context.Context, link string) (bool, error) {
	if s.cache == nil {
		return s.premises.ExistsByLink(ctx, link)
	}

	seen, err := s.cache.Seen(ctx, link)
	switch {
	case err != nil:
		s.logger.Warn("link cache lookup failed", "error", err)
		return s.premises.ExistsByLink(ctx, link)
	case !seen:
		return false, nil
	}

	exists, err := s.premises.ExistsByLink(ctx, link)
	if err != nil {
		return false, err
	}
	if !exists {
		s.logger.Debug("stale link cache entry", "link", link)
	}
	return exists, nil
}

func (s *IngestService) markSeen(ctx context.Context, link string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Mark(ctx, link); err != nil {
		s.logger.Warn("link cache mark failed", "error", err)
	}
}

func (s *IngestService) publish(ctx context.Context, premise *domain.Premise) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, premise); err != nil {
		s.logger.Warn("publish premise failed", "premise_id", premise.ID, "error", err)
	}
}

func (s *IngestService) observe(p domain.Platform, status string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveIngest(p, status, d)
	}
}

func (s *IngestService) addItems(p domain.Platform, outcome string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.AddItems(p, outcome, n)
	}
}

func upstreamCause(err error) error {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Cause
	}
	return nil
}
