package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// NewCSV serves records from a CSV export with a header row.
func NewCSV(path string, log infralogger.Logger, opts ...FileOption) *FileSource {
	return newFileSource(DriverCSV, path, parseCSVFile, log, opts...)
}

func parseCSVFile(path string, today domain.Date) ([]domain.LinkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parseCSV(f, today)
}

func parseCSV(r io.Reader, today domain.Date) ([]domain.LinkRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.LinkRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	m, err := newTableMapper(header)
	if err != nil {
		return nil, err
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return m.mapRows(rows, today)
}
