// Package loader reads audit spreadsheets (.xlsx, .csv) into an in-memory table.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/FACorreiaa/auditoria/internal/domain/audit/sniffer"
	"github.com/FACorreiaa/auditoria/internal/domain/audit/table"
	"github.com/FACorreiaa/auditoria/internal/domain/common"
)

const (
	FormatXLSX = ".xlsx"
	FormatCSV  = ".csv"
)

// rows read between context checks
const cancelCheckEvery = 1000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options tunes how files are read.
type Options struct {
	Sheet     string // xlsx sheet; the first sheet when empty
	Delimiter rune   // csv delimiter; detected when zero
}

// Loader loads audit tables from disk.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// New creates a loader.
func New(opts Options, logger *slog.Logger) *Loader {
	return &Loader{
		opts:   opts,
		logger: logger,
	}
}

// Load reads the file at path, choosing the reader by extension.
func (l *Loader) Load(ctx context.Context, path string) (*table.Table, error) {
	format := strings.ToLower(filepath.Ext(path))
	if format != FormatXLSX && format != FormatCSV {
		return nil, fmt.Errorf("%w: %q (use .xlsx or .csv)", common.ErrUnsupportedFormat, format)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if format == FormatXLSX {
		return l.loadXLSX(ctx, path)
	}
	return l.loadCSV(ctx, path)
}

func (l *Loader) loadXLSX(ctx context.Context, path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.ErrEmptyTable
	}

	sheet := sheets[0]
	if l.opts.Sheet != "" {
		found := false
		for _, name := range sheets {
			if name == l.opts.Sheet {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q (sheets: %s)", common.ErrSheetNotFound, l.opts.Sheet, strings.Join(sheets, ", "))
		}
		sheet = l.opts.Sheet
	}

	// Raw values keep numeric cells in decimal-point form instead of the
	// workbook's display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	t, err := buildTable(ctx, rows)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("workbook loaded",
		"path", path,
		"sheet", sheet,
		"rows", t.Len(),
		"columns", t.Columns,
	)
	return t, nil
}

func (l *Loader) loadCSV(ctx context.Context, path string) (*table.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := normalizeEncoding(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	var config *sniffer.FileConfig
	if l.opts.Delimiter != 0 {
		config, err = sniffer.DetectConfigWithDelimiter(data, l.opts.Delimiter)
	} else {
		config, err = sniffer.DetectConfig(data)
	}
	if errors.Is(err, sniffer.ErrEmptyFile) {
		return nil, common.ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", path, err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = config.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		records = append(records, record)
	}

	t, err := buildTable(ctx, records)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("csv loaded",
		"path", path,
		"delimiter", string(config.Delimiter),
		"fingerprint", config.Fingerprint,
		"rows", t.Len(),
		"columns", t.Columns,
	)
	return t, nil
}

// buildTable uses the first non-blank record as header and skips blank records.
func buildTable(ctx context.Context, records [][]string) (*table.Table, error) {
	var t *table.Table
	for i, record := range records {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if table.IsBlank(record) {
			continue
		}
		if t == nil {
			t = table.New(record, nil)
			continue
		}
		t.Append(record)
	}

	if t == nil {
		return nil, common.ErrEmptyTable
	}
	return t, nil
}

// normalizeEncoding strips a UTF-8 BOM and decodes legacy Latin-1 exports.
func normalizeEncoding(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
