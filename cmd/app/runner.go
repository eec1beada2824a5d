// Package app wires the audit pipeline and drives a single run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/FACorreiaa/auditoria/internal/domain/common"
)

const reportHeader = "--- Análise da Auditoria ---"

// Run audits the configured file and prints the report to deps.Out.
func Run(ctx context.Context, deps *Dependencies) error {
	path := deps.Config.Input.File
	column := deps.Config.Input.Column

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", common.ErrFileNotFound, path)
	}

	fmt.Fprintf(deps.Out, "Carregando o arquivo: '%s'...\n", path)

	result, err := deps.AuditService.Run(ctx, path, column)
	if exportErr := exportMetrics(deps); exportErr != nil {
		deps.Logger.Warn("failed to write metrics textfile", "path", deps.Config.Metrics.TextfilePath, "error", exportErr)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Out)
	fmt.Fprintln(deps.Out, reportHeader)
	fmt.Fprintln(deps.Out, deps.Formatter.Render(result.Summary))

	return nil
}

// PrintError writes the operator-facing message for a failed run.
func PrintError(out io.Writer, path string, err error) {
	if errors.Is(err, common.ErrFileNotFound) {
		fmt.Fprintf(out, "ERRO: O arquivo '%s' não foi encontrado.\n", path)
		return
	}
	fmt.Fprintf(out, "Ocorreu um erro durante a análise: %v\n", err)
}

func exportMetrics(deps *Dependencies) error {
	if deps.Config.Metrics.TextfilePath == "" {
		return nil
	}
	return deps.Metrics.WriteTextfile(deps.Config.Metrics.TextfilePath)
}
