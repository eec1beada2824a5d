// Package aggregator reduces one audit column into summary totals.
package aggregator

import (
	"fmt"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/FACorreiaa/auditoria/internal/domain/audit/normalizer"
	"github.com/FACorreiaa/auditoria/internal/domain/audit/table"
	"github.com/FACorreiaa/auditoria/internal/domain/common"
)

const maxSuggestions = 3

// Summary is the result of one aggregation pass.
type Summary struct {
	TotalRows   int
	SumPositive float64 // values > 0, i.e. paid in excess
	SumNegative float64 // values < 0, i.e. paid short
	NetTotal    float64
}

// Analysis carries the Summary together with the per-row numbers it was built from.
type Analysis struct {
	Summary Summary
	Values  []float64 // one per row, in row order
	// Unparsed holds zero-based indexes of rows with non-empty text that
	// could not be parsed and counted as zero.
	Unparsed []int
}

// Aggregate normalizes every cell of column and totals the results.
func Aggregate(t *table.Table, column string) (Summary, error) {
	analysis, err := Analyze(t, column)
	if err != nil {
		return Summary{}, err
	}
	return analysis.Summary, nil
}

// Analyze is Aggregate keeping the intermediate numeric column.
func Analyze(t *table.Table, column string) (*Analysis, error) {
	cells, err := t.Column(column)
	if err != nil {
		return nil, invalidColumn(t, column)
	}

	analysis := &Analysis{
		Values: make([]float64, len(cells)),
	}

	for i, cell := range cells {
		if !cell.Valid {
			continue
		}
		val, err := normalizer.Parse(cell.Value)
		if err != nil {
			if strings.TrimSpace(cell.Value) != "" {
				analysis.Unparsed = append(analysis.Unparsed, i)
			}
			continue
		}
		analysis.Values[i] = val
	}

	analysis.Summary = summarize(analysis.Values)
	return analysis, nil
}

func summarize(values []float64) Summary {
	s := Summary{TotalRows: len(values)}
	for _, v := range values {
		switch {
		case v > 0:
			s.SumPositive += v
		case v < 0:
			s.SumNegative += v
		}
	}
	// Zero rows add nothing, so the net is exactly the two partial sums.
	s.NetTotal = s.SumPositive + s.SumNegative
	return s
}

func invalidColumn(t *table.Table, column string) error {
	suggestions := suggestColumns(t.Columns, column)
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: %q (available columns: %s)", common.ErrInvalidColumn, column, strings.Join(t.Columns, ", "))
	}
	return fmt.Errorf("%w: %q (did you mean %s?)", common.ErrInvalidColumn, column, strings.Join(quoteAll(suggestions), ", "))
}

func suggestColumns(columns []string, column string) []string {
	if len(columns) == 0 || column == "" {
		return nil
	}

	cm := closestmatch.New(columns, []int{2, 3})
	var out []string
	for _, s := range cm.ClosestN(column, maxSuggestions) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return quoted
}
