package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/normalize"
	"premise_fetcher/internal/query"
)

// PremisePage is one page of a premise listing.
type PremisePage struct {
	Items      []domain.Premise `json:"items"`
	Pagination query.Pagination `json:"pagination"`
}

// PremiseService serves premise queries and curation updates.
type PremiseService struct {
	premises PremiseStore
	cache    LinkCache
	logger   *slog.Logger
	now      func() time.Time
}

func NewPremiseService(premises PremiseStore, cache LinkCache, logger *slog.Logger) *PremiseService {
	return &PremiseService{
		premises: premises,
		cache:    cache,
		logger:   logger.With("component", "premises"),
		now:      time.Now,
	}
}

func (s *PremiseService) List(ctx context.Context, params query.Params) (*PremisePage, error) {
	q := query.Build(params)

	items, total, err := s.premises.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list premises: %w", err)
	}
	if items == nil {
		items = []domain.Premise{}
	}

	return &PremisePage{Items: items, Pagination: q.Page.Paginate(total)}, nil
}

func (s *PremiseService) Get(ctx context.Context, id string) (*domain.Premise, error) {
	return s.premises.Get(ctx, id)
}

// MarkUsed sets the curation flag of a premise.
func (s *PremiseService) MarkUsed(ctx context.Context, id string, used bool) (*domain.Premise, error) {
	return s.premises.SetUsed(ctx, id, used, s.now().UTC())
}

// SetCategory updates niche and/or sub-niche. At least one of them must be given.
func (s *PremiseService) SetCategory(ctx context.Context, id string, category domain.Category) (*domain.Premise, error) {
	if category.Niche == nil && category.SubNiche == nil {
		return nil, fmt.Errorf("%w: niche or subNiche is required", domain.ErrValidation)
	}
	if category.Niche != nil {
		v := strings.TrimSpace(*category.Niche)
		category.Niche = &v
	}
	if category.SubNiche != nil {
		v := strings.TrimSpace(*category.SubNiche)
		category.SubNiche = &v
	}
	return s.premises.SetCategory(ctx, id, category, s.now().UTC())
}

func (s *PremiseService) Delete(ctx context.Context, id string) error {
	premise, err := s.premises.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.premises.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Forget(ctx, premise.Link); err != nil {
			s.logger.Warn("link cache cleanup failed", "premise_id", id, "error", err)
		}
	}
	return nil
}

// FirstPerson returns the first-person rewrite of the premise body.
func (s *PremiseService) FirstPerson(ctx context.Context, id string) (string, error) {
	premise, err := s.premises.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return normalize.ToFirstPerson(premise.Body), nil
}
