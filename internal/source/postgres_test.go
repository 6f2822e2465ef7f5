package source_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/source"
)

var resultColumns = []string{
	"id_results", "url", "keywords", "reasoning_text", "image_final_path",
	"label_final", "final_confidence", "created_at", "status", "date_generated",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestPostgresSource_MapsResults(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	created := time.Date(2026, 9, 12, 4, 0, 0, 0, time.UTC)
	generated := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM results r\s+LEFT JOIN generated_domains gd ON r.id_domain = gd.id_domain\s+ORDER BY r.id_results DESC`).
		WillReturnRows(sqlmock.NewRows(resultColumns).
			AddRow(42, "https://slot88.example", "judi, slot", "casino banner", "/img/42.png", nil, 0.934, created, "VERIFIED", generated).
			AddRow(41, "https://promo.example", "hadiah, bonus jackpot gacor", nil, nil, nil, nil, nil, nil, nil).
			AddRow(40, "https://x.example", nil, nil, nil, "Pornografi", 0.5, created, "unverified", nil))

	src := source.NewPostgres(db, source.NewCategorizer(source.DefaultKeywords), "")
	recs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.LinkRecord{
		ID:               42,
		Link:             "https://slot88.example",
		Category:         domain.CategoryGambling,
		Confidence:       93,
		Status:           domain.StatusVerified,
		DetectedDate:     "2026-09-12",
		LastModifiedDate: "2026-09-10",
		Reasoning:        "casino banner",
		Image:            "/img/42.png",
	}, recs[0])

	assert.Equal(t, domain.CategoryGambling, recs[1].Category, "keywords fall through to the categorizer")
	assert.Equal(t, source.DefaultConfidence, recs[1].Confidence)
	assert.Equal(t, "-", recs[1].Reasoning)
	assert.Equal(t, domain.StatusUnverified, recs[1].Status)

	assert.Equal(t, domain.CategoryPornography, recs[2].Category, "label wins over keywords")
	assert.Equal(t, 50, recs[2].Confidence)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_UserScope(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectQuery(`WHERE r.user_id = \$1 ORDER BY`).
		WithArgs("crawler-3").
		WillReturnRows(sqlmock.NewRows(resultColumns))

	recs, err := source.NewPostgres(db, source.NewCategorizer(nil), "crawler-3").Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QueryError(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	_, err := source.NewPostgres(db, source.NewCategorizer(nil), "").Fetch(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
}
