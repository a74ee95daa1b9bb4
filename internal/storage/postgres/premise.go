package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/query"
)

const premiseColumns = `id, source_id, source_platform, source_url, source_name, link, body,
	short_description, first_person, observed_at, likes, comments, views, niche, sub_niche,
	used, synthetic, created_at, updated_at`

// premiseRow is the flattened table shape of a premise.
type premiseRow struct {
	ID               string          `db:"id"`
	SourceID         string          `db:"source_id"`
	SourcePlatform   domain.Platform `db:"source_platform"`
	SourceURL        string          `db:"source_url"`
	SourceName       string          `db:"source_name"`
	Link             string          `db:"link"`
	Body             string          `db:"body"`
	ShortDescription string          `db:"short_description"`
	FirstPerson      string          `db:"first_person"`
	ObservedAt       time.Time       `db:"observed_at"`
	Likes            int64           `db:"likes"`
	Comments         int64           `db:"comments"`
	Views            int64           `db:"views"`
	Niche            string          `db:"niche"`
	SubNiche         string          `db:"sub_niche"`
	Used             bool            `db:"used"`
	Synthetic        bool            `db:"synthetic"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *premiseRow) toDomain() domain.Premise {
	return domain.Premise{
		ID: r.ID,
		Source: domain.SourceRef{
			ID:       r.SourceID,
			Platform: r.SourcePlatform,
			URL:      r.SourceURL,
			Name:     r.SourceName,
		},
		Link:             r.Link,
		Body:             r.Body,
		ShortDescription: r.ShortDescription,
		FirstPerson:      r.FirstPerson,
		Metrics: domain.Metrics{
			ObservedAt: r.ObservedAt.UTC(),
			Likes:      r.Likes,
			Comments:   r.Comments,
			Views:      r.Views,
		},
		Niche:     r.Niche,
		SubNiche:  r.SubNiche,
		Used:      r.Used,
		Synthetic: r.Synthetic,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

var sortColumns = map[query.SortField]string{
	query.SortCreatedAt:  "created_at",
	query.SortUpdatedAt:  "updated_at",
	query.SortObservedAt: "observed_at",
	query.SortLikes:      "likes",
	query.SortComments:   "comments",
	query.SortViews:      "views",
}

type PremiseStore struct {
	db *sqlx.DB
}

func NewPremiseStore(db *sqlx.DB) *PremiseStore {
	return &PremiseStore{db: db}
}

func (s *PremiseStore) ExistsByLink(ctx context.Context, link string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		"SELECT EXISTS (SELECT 1 FROM premises WHERE link = $1)", link)
	return exists, err
}

// Insert relies on the unique link constraint: a conflicting row is left
// untouched and reported as not inserted.
func (s *PremiseStore) Insert(ctx context.Context, p *domain.Premise) (bool, error) {
	stmt := `
		INSERT INTO premises (` + premiseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (link) DO NOTHING
		RETURNING id`

	var id string
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, stmt,
		p.ID,
		p.Source.ID,
		p.Source.Platform,
		p.Source.URL,
		p.Source.Name,
		p.Link,
		p.Body,
		p.ShortDescription,
		p.FirstPerson,
		p.Metrics.ObservedAt,
		p.Metrics.Likes,
		p.Metrics.Comments,
		p.Metrics.Views,
		p.Niche,
		p.SubNiche,
		p.Used,
		p.Synthetic,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case isUniqueViolation(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *PremiseStore) Get(ctx context.Context, id string) (*domain.Premise, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}

	var row premiseRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row,
		`SELECT `+premiseColumns+` FROM premises WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	p := row.toDomain()
	return &p, nil
}

func (s *PremiseStore) List(ctx context.Context, q query.Query) ([]domain.Premise, int, error) {
	if q.Filter.SourceID != "" && !validID(q.Filter.SourceID) {
		return []domain.Premise{}, 0, nil
	}

	where, args := whereClause(q.Filter)
	exec := GetExecutor(ctx, s.db)

	var total int
	if err := sqlx.GetContext(ctx, exec, &total, "SELECT COUNT(*) FROM premises"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count premises: %w", err)
	}

	args = append(args, q.Page.Size, q.Page.Offset())
	listQuery := fmt.Sprintf("SELECT %s FROM premises%s ORDER BY %s LIMIT $%d OFFSET $%d",
		premiseColumns, where, orderClause(q.Sort), len(args)-1, len(args))

	var rows []premiseRow
	if err := sqlx.SelectContext(ctx, exec, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("select premises: %w", err)
	}

	premises := make([]domain.Premise, len(rows))
	for i := range rows {
		premises[i] = rows[i].toDomain()
	}
	return premises, total, nil
}

func whereClause(f query.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.SourceID != "" {
		add("source_id = $%d", f.SourceID)
	}
	if f.Platform != "" {
		add("source_platform = $%d", f.Platform)
	}
	if f.Niche != "" {
		add("niche = $%d", f.Niche)
	}
	if f.SubNiche != "" {
		add("sub_niche = $%d", f.SubNiche)
	}
	if f.Used != nil {
		add("used = $%d", *f.Used)
	}
	if f.From != nil {
		add("observed_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("observed_at <= $%d", *f.To)
	}
	if f.MinLikes != nil {
		add("likes >= $%d", *f.MinLikes)
	}
	if f.MinComments != nil {
		add("comments >= $%d", *f.MinComments)
	}
	if f.MinViews != nil {
		add("views >= $%d", *f.MinViews)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(s query.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return col + " " + dir + ", id ASC"
}

func (s *PremiseStore) SetUsed(ctx context.Context, id string, used bool, at time.Time) (*domain.Premise, error) {
	return s.update(ctx, id, "used = $2, updated_at = $3", used, at)
}

// SetCategory updates only the non-nil fields of category.
func (s *PremiseStore) SetCategory(ctx context.Context, id string, category domain.Category, at time.Time) (*domain.Premise, error) {
	return s.update(ctx, id,
		"niche = COALESCE($2::text, niche), sub_niche = COALESCE($3::text, sub_niche), updated_at = $4",
		category.Niche, category.SubNiche, at)
}

func (s *PremiseStore) update(ctx context.Context, id, set string, args ...any) (*domain.Premise, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}

	var row premiseRow
	stmt := `UPDATE premises SET ` + set + ` WHERE id = $1 RETURNING ` + premiseColumns
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, stmt, append([]any{id}, args...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	p := row.toDomain()
	return &p, nil
}

func (s *PremiseStore) DeleteBySource(ctx context.Context, sourceID string) ([]string, error) {
	links := []string{}
	if !validID(sourceID) {
		return links, nil
	}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &links,
		"DELETE FROM premises WHERE source_id = $1 RETURNING link", sourceID)
	return links, err
}

func (s *PremiseStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, "DELETE FROM premises WHERE id = $1", id)
	return affectedOne(res, err, "premise", id)
}
