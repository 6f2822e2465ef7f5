package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

const resultsQuery = `
	SELECT
		r.id_results,
		r.url,
		r.keywords,
		r.reasoning_text,
		r.image_final_path,
		r.label_final,
		r.final_confidence,
		r.created_at,
		gd.status,
		gd.date_generated
	FROM results r
	LEFT JOIN generated_domains gd ON r.id_domain = gd.id_domain
`

const resultsOrder = ` ORDER BY r.id_results DESC`

// resultRow is one row of the crawler's classification results.
type resultRow struct {
	ID            int64           `db:"id_results"`
	URL           sql.NullString  `db:"url"`
	Keywords      sql.NullString  `db:"keywords"`
	Reasoning     sql.NullString  `db:"reasoning_text"`
	Image         sql.NullString  `db:"image_final_path"`
	Label         sql.NullString  `db:"label_final"`
	Confidence    sql.NullFloat64 `db:"final_confidence"`
	CreatedAt     sql.NullTime    `db:"created_at"`
	Status        sql.NullString  `db:"status"`
	DateGenerated sql.NullTime    `db:"date_generated"`
}

// PostgresSource reads the crawler's results table.
type PostgresSource struct {
	db          *sqlx.DB
	categorizer *Categorizer
	userID      string
	now         func() time.Time
}

// NewPostgres builds a PostgresSource. A non-empty userID limits rows to
// that crawler account.
func NewPostgres(db *sqlx.DB, categorizer *Categorizer, userID string) *PostgresSource {
	return &PostgresSource{db: db, categorizer: categorizer, userID: userID, now: time.Now}
}

// Name identifies the adapter.
func (s *PostgresSource) Name() string { return DriverPostgres }

// Fetch runs the results query, newest first.
func (s *PostgresSource) Fetch(ctx context.Context) ([]domain.LinkRecord, error) {
	query := resultsQuery
	var args []any
	if s.userID != "" {
		query += ` WHERE r.user_id = $1`
		args = append(args, s.userID)
	}
	query += resultsOrder

	var rows []resultRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}

	today := domain.DateOf(s.now())
	out := make([]domain.LinkRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toRecord(row, today))
	}
	return out, nil
}

func (s *PostgresSource) toRecord(row resultRow, today domain.Date) domain.LinkRecord {
	category, ok := domain.ParseCategory(row.Label.String)
	if !ok {
		category = s.categorizer.FromKeywords(row.Keywords.String)
	}

	confidence := DefaultConfidence
	if row.Confidence.Valid {
		confidence = clampPercent(row.Confidence.Float64 * 100)
	}

	return domain.LinkRecord{
		ID:               row.ID,
		Link:             row.URL.String,
		Category:         category,
		Confidence:       confidence,
		Status:           parseStatusOr(row.Status.String),
		DetectedDate:     dateOrToday(row.CreatedAt, today),
		LastModifiedDate: dateOrToday(row.DateGenerated, today),
		Reasoning:        orDefault(row.Reasoning.String, defaultReasoning),
		Image:            row.Image.String,
	}
}

func dateOrToday(t sql.NullTime, today domain.Date) domain.Date {
	if !t.Valid {
		return today
	}
	return domain.DateOf(t.Time.UTC())
}
