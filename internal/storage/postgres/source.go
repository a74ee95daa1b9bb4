package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"premise_fetcher/internal/domain"
)

const sourceColumns = `id, platform, url, name, registered_at, last_extracted_at`

type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) Create(ctx context.Context, source *domain.Source) error {
	query := `
		INSERT INTO sources (id, platform, url, name, registered_at, last_extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		source.ID,
		source.Platform,
		source.URL,
		source.Name,
		source.RegisteredAt,
		source.LastExtractedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: source %s already registered", domain.ErrConflict, source.URL)
	}
	return err
}

func (s *SourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	return s.getBy(ctx, "id", id)
}

func (s *SourceStore) GetByURL(ctx context.Context, url string) (*domain.Source, error) {
	return s.getBy(ctx, "url", url)
}

func (s *SourceStore) getBy(ctx context.Context, column, value string) (*domain.Source, error) {
	var source domain.Source
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE ` + column + ` = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &source, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, value)
	}
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func (s *SourceStore) List(ctx context.Context) ([]domain.Source, error) {
	sources := []domain.Source{}
	query := `SELECT ` + sourceColumns + ` FROM sources ORDER BY registered_at DESC, id`

	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &sources, query)
	return sources, err
}

func (s *SourceStore) MarkExtracted(ctx context.Context, id string, at time.Time) error {
	if !validID(id) {
		return fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE sources SET last_extracted_at = $2 WHERE id = $1", id, at)
	return affectedOne(res, err, "source", id)
}

func (s *SourceStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, "DELETE FROM sources WHERE id = $1", id)
	return affectedOne(res, err, "source", id)
}

func affectedOne(res sql.Result, err error, entity, id string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity, id)
	}
	return nil
}
