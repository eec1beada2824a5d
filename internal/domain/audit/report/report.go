// Package report renders an audit summary as human-readable text.
package report

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/auditoria/internal/domain/audit/aggregator"
)

// Conclusion is the qualitative reading of the net total.
type Conclusion int

const (
	Balanced Conclusion = iota
	Overpayment
	Underpayment
)

func (c Conclusion) String() string {
	switch c {
	case Overpayment:
		return "overpayment"
	case Underpayment:
		return "underpayment"
	default:
		return "balanced"
	}
}

// Conclude classifies a net total.
func Conclude(net float64) Conclusion {
	switch {
	case net > 0:
		return Overpayment
	case net < 0:
		return Underpayment
	default:
		return Balanced
	}
}

// Formatter renders summaries with a fixed number format.
type Formatter struct {
	format NumberFormat
}

// NewFormatter creates a formatter for the given number format.
func NewFormatter(format NumberFormat) *Formatter {
	return &Formatter{format: format}
}

// Render returns the multi-line audit report.
func (f *Formatter) Render(s aggregator.Summary) string {
	money := f.format.Amount

	lines := []string{
		fmt.Sprintf("Total de linhas analisadas: %d", s.TotalRows),
		fmt.Sprintf("Total pago a mais: %s", money(s.SumPositive)),
		fmt.Sprintf("Total pago a menos: %s", money(s.SumNegative)),
		fmt.Sprintf("RESULTADO FINAL DA AUDITORIA: %s", money(s.NetTotal)),
	}

	switch Conclude(s.NetTotal) {
	case Overpayment:
		lines = append(lines, fmt.Sprintf("Conclusão: O balanço final indica que foi realizado %s a mais.", money(s.NetTotal)))
	case Underpayment:
		lines = append(lines, fmt.Sprintf("Conclusão: O balanço final indica que foi realizado %s a menos.", money(s.NetTotal)))
	default:
		lines = append(lines, "Conclusão: O balanço final é zero.")
	}

	return strings.Join(lines, "\n")
}
