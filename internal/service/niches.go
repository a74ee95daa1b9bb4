package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"premise_fetcher/internal/domain"
)

// NicheService manages the niche taxonomy. Premises reference niches by name
// only, so renaming or deleting a niche leaves premises untouched.
type NicheService struct {
	niches NicheStore
}

func NewNicheService(niches NicheStore) *NicheService {
	return &NicheService{niches: niches}
}

func (s *NicheService) List(ctx context.Context) ([]domain.Niche, error) {
	return s.niches.List(ctx)
}

func (s *NicheService) Create(ctx context.Context, name string, subNiches []string) (*domain.Niche, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	niche := &domain.Niche{
		ID:        uuid.NewString(),
		Name:      name,
		SubNiches: cleanSubNiches(subNiches),
	}
	if err := s.niches.Create(ctx, niche); err != nil {
		return nil, fmt.Errorf("create niche: %w", err)
	}
	return niche, nil
}

// Update renames a niche and/or replaces its sub-niches. Nil arguments are left unchanged.
func (s *NicheService) Update(ctx context.Context, id string, name *string, subNiches []string) (*domain.Niche, error) {
	niche, err := s.niches.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		niche.Name = n
	}
	if subNiches != nil {
		niche.SubNiches = cleanSubNiches(subNiches)
	}

	if err := s.niches.Update(ctx, niche); err != nil {
		return nil, fmt.Errorf("update niche: %w", err)
	}
	return niche, nil
}

// AddSubNiche appends a sub-niche, keeping insertion order.
func (s *NicheService) AddSubNiche(ctx context.Context, id, name string) (*domain.Niche, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: sub-niche name is required", domain.ErrValidation)
	}

	niche, err := s.niches.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if niche.HasSubNiche(name) {
		return nil, fmt.Errorf("%w: sub-niche %q already exists in %q", domain.ErrConflict, name, niche.Name)
	}

	niche.SubNiches = append(niche.SubNiches, name)
	if err := s.niches.Update(ctx, niche); err != nil {
		return nil, fmt.Errorf("update niche: %w", err)
	}
	return niche, nil
}

func (s *NicheService) Delete(ctx context.Context, id string) error {
	return s.niches.Delete(ctx, id)
}

func cleanSubNiches(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
