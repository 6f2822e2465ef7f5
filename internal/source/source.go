// Package source adapts upstream datasets of classified links into base
// domain.LinkRecords. Every adapter is read-only; failures are reported to
// the caller, which treats them as the upstream being unavailable.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// Drivers.
const (
	DriverCSV           = "csv"
	DriverXLSX          = "xlsx"
	DriverHTTP          = "http"
	DriverPostgres      = "postgres"
	DriverElasticsearch = "elasticsearch"
)

// Drivers lists every supported driver.
var Drivers = []string{DriverCSV, DriverXLSX, DriverHTTP, DriverPostgres, DriverElasticsearch}

// Source supplies the current base dataset.
type Source interface {
	Fetch(ctx context.Context) ([]domain.LinkRecord, error)
	Name() string
}

// Settings selects and tunes an adapter.
type Settings struct {
	Driver string
	// Path is the export file for csv and xlsx.
	Path string
	// Watch invalidates the file cache on change.
	Watch bool
	// URL is the upstream endpoint for http.
	URL     string
	Timeout time.Duration
	// Index and MaxRecords apply to elasticsearch.
	Index      string
	MaxRecords int
	// UserID scopes the postgres query to one crawler account when set.
	UserID   string
	Keywords map[domain.Category][]string
}

// Deps carries the shared clients adapters may need.
type Deps struct {
	DB     *sqlx.DB
	ES     *es.Client
	Logger infralogger.Logger
}

var errMissingDependency = errors.New("missing dependency")

// New builds the adapter named by s.Driver. For file drivers with Watch
// set, the watcher lives until ctx ends.
func New(ctx context.Context, s Settings, d Deps) (Source, error) {
	log := d.Logger
	if log == nil {
		log = infralogger.NewNop()
	}
	keywords := s.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	switch s.Driver {
	case DriverCSV, DriverXLSX:
		var fs *FileSource
		if s.Driver == DriverCSV {
			fs = NewCSV(s.Path, log)
		} else {
			fs = NewXLSX(s.Path, log)
		}
		if s.Watch {
			if err := fs.Watch(ctx); err != nil {
				return nil, err
			}
		}
		return fs, nil
	case DriverHTTP:
		return NewHTTP(s.URL, log, WithHTTPTimeout(s.Timeout)), nil
	case DriverPostgres:
		if d.DB == nil {
			return nil, fmt.Errorf("%s source: %w: database", s.Driver, errMissingDependency)
		}
		return NewPostgres(d.DB, NewCategorizer(keywords), s.UserID), nil
	case DriverElasticsearch:
		if d.ES == nil {
			return nil, fmt.Errorf("%s source: %w: elasticsearch client", s.Driver, errMissingDependency)
		}
		return NewElasticsearch(d.ES, s.Index, s.MaxRecords, NewCategorizer(keywords), log), nil
	default:
		return nil, fmt.Errorf("unknown source driver %q", s.Driver)
	}
}
