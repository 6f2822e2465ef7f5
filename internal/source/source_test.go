package source_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/link-review/internal/source"
)

func TestNew_SelectsDriver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	csvSrc, err := source.New(ctx, source.Settings{Driver: source.DriverCSV, Path: "links.csv"}, source.Deps{})
	require.NoError(t, err)
	assert.Equal(t, source.DriverCSV, csvSrc.Name())

	httpSrc, err := source.New(ctx, source.Settings{Driver: source.DriverHTTP, URL: "http://upstream/links"}, source.Deps{})
	require.NoError(t, err)
	assert.Equal(t, source.DriverHTTP, httpSrc.Name())
}

func TestNew_WatchStartsForFileDrivers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	path := filepath.Join(t.TempDir(), "links.xlsx")
	src, err := source.New(ctx, source.Settings{Driver: source.DriverXLSX, Path: path, Watch: true}, source.Deps{})
	require.NoError(t, err)
	assert.Equal(t, source.DriverXLSX, src.Name())

	_, err = source.New(ctx, source.Settings{Driver: source.DriverCSV, Path: "/does/not/exist/links.csv", Watch: true}, source.Deps{})
	require.Error(t, err)
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, s := range []source.Settings{
		{Driver: "sqlite"},
		{Driver: source.DriverPostgres},
		{Driver: source.DriverElasticsearch},
	} {
		_, err := source.New(ctx, s, source.Deps{})
		assert.Error(t, err, s.Driver)
	}
}
