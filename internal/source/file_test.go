package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/source"
)

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestFileSource_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.csv")
	writeCSV(t, path, "link\nhttps://a.example\n")
	src := source.NewCSV(path, infralogger.NewNop())

	first, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	writeCSV(t, path, "link\nhttps://a.example\nhttps://b.example\n")
	cached, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	src.Invalidate()
	fresh, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestFileSource_DayRolloverReparses(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.csv")
	writeCSV(t, path, "link\nhttps://a.example\n")

	now := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	src := source.NewCSV(path, infralogger.NewNop(), source.WithFileClock(func() time.Time { return now }))

	recs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Date("2026-10-19"), recs[0].DetectedDate)

	now = now.Add(2 * time.Minute)
	recs, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Date("2026-10-20"), recs[0].DetectedDate)
}

func TestFileSource_WatchInvalidatesOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.csv")
	writeCSV(t, path, "link\nhttps://a.example\n")
	src := source.NewCSV(path, infralogger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, src.Watch(ctx))

	_, err := src.Fetch(ctx)
	require.NoError(t, err)

	writeCSV(t, path, "link\nhttps://a.example\nhttps://b.example\nhttps://c.example\n")

	require.Eventually(t, func() bool {
		recs, fetchErr := src.Fetch(ctx)
		return fetchErr == nil && len(recs) == 3
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	src := source.NewCSV(filepath.Join(t.TempDir(), "missing.csv"), infralogger.NewNop())
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestXLSX_FirstSheet(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	sheet := "Sheet1"
	rows := [][]any{
		{"ID", "URL", "Jenis", "Kepercayaan", "Status", "Flagged"},
		{21, "https://poker.example", "Judi", 91, "verified", "true"},
		{22, "https://fake-shop.example", "Penipuan", 77, "", ""},
	}
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	path := filepath.Join(t.TempDir(), "links.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src := source.NewXLSX(path, infralogger.NewNop())
	assert.Equal(t, source.DriverXLSX, src.Name())

	recs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(21), recs[0].ID)
	assert.Equal(t, domain.CategoryGambling, recs[0].Category)
	assert.Equal(t, 91, recs[0].Confidence)
	assert.True(t, recs[0].Flagged)
	assert.Equal(t, domain.CategoryFraud, recs[1].Category)
	assert.Equal(t, domain.StatusUnverified, recs[1].Status)
}
