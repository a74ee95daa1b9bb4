package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"premise_fetcher/internal/domain"
)

type nicheRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	SubNiches pq.StringArray `db:"sub_niches"`
}

func (r *nicheRow) toDomain() domain.Niche {
	subs := []string(r.SubNiches)
	if subs == nil {
		subs = []string{}
	}
	return domain.Niche{ID: r.ID, Name: r.Name, SubNiches: subs}
}

type NicheStore struct {
	db *sqlx.DB
}

func NewNicheStore(db *sqlx.DB) *NicheStore {
	return &NicheStore{db: db}
}

func (s *NicheStore) List(ctx context.Context) ([]domain.Niche, error) {
	var rows []nicheRow
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		"SELECT id, name, sub_niches FROM niches ORDER BY name")
	if err != nil {
		return nil, err
	}

	niches := make([]domain.Niche, len(rows))
	for i := range rows {
		niches[i] = rows[i].toDomain()
	}
	return niches, nil
}

func (s *NicheStore) Get(ctx context.Context, id string) (*domain.Niche, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: niche %s", domain.ErrNotFound, id)
	}

	var row nicheRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row,
		"SELECT id, name, sub_niches FROM niches WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: niche %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	n := row.toDomain()
	return &n, nil
}

func (s *NicheStore) Create(ctx context.Context, niche *domain.Niche) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"INSERT INTO niches (id, name, sub_niches) VALUES ($1, $2, $3)",
		niche.ID, niche.Name, stringArray(niche.SubNiches))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: niche %q already exists", domain.ErrConflict, niche.Name)
	}
	return err
}

func (s *NicheStore) Update(ctx context.Context, niche *domain.Niche) error {
	if !validID(niche.ID) {
		return fmt.Errorf("%w: niche %s", domain.ErrNotFound, niche.ID)
	}
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE niches SET name = $2, sub_niches = $3 WHERE id = $1",
		niche.ID, niche.Name, stringArray(niche.SubNiches))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: niche %q already exists", domain.ErrConflict, niche.Name)
	}
	return affectedOne(res, err, "niche", niche.ID)
}

func (s *NicheStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: niche %s", domain.ErrNotFound, id)
	}
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, "DELETE FROM niches WHERE id = $1", id)
	return affectedOne(res, err, "niche", id)
}

func stringArray(v []string) pq.StringArray {
	if v == nil {
		return pq.StringArray{}
	}
	return v
}
