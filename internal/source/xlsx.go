package source

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

var errNoSheets = errors.New("workbook has no sheets")

// NewXLSX serves records from the first sheet of an Excel export.
func NewXLSX(path string, log infralogger.Logger, opts ...FileOption) *FileSource {
	return newFileSource(DriverXLSX, path, parseXLSXFile, log, opts...)
}

func parseXLSXFile(path string, today domain.Date) ([]domain.LinkRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseWorkbook(f, today)
}

func parseWorkbook(f *excelize.File, today domain.Date) ([]domain.LinkRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []domain.LinkRecord{}, nil
	}

	m, err := newTableMapper(rows[0])
	if err != nil {
		return nil, err
	}
	return m.mapRows(rows[1:], today)
}
