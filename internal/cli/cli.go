// Package cli wires the scanner engine to the terminal: progress display,
// hooks, and final report rendering.
package cli

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/stackvity/csv-charset/internal/cli/config"
	"github.com/stackvity/csv-charset/internal/cli/hooks"
	"github.com/stackvity/csv-charset/internal/cli/render"
	"github.com/stackvity/csv-charset/internal/cli/ui"
	"github.com/stackvity/csv-charset/pkg/scanner"
)

// Run executes a full scan with the given validated options and renders
// the report to stdout. The returned report's Cancelled flag lets the
// caller pick the interrupt exit code.
func Run(ctx context.Context, cancel context.CancelFunc, opts scanner.Options, cliOpts config.CLIOptions, logger *slog.Logger) (scanner.Report, error) {
	progressEnabled := !cliOpts.NoProgress &&
		!cliOpts.Verbose &&
		term.IsTerminal(int(os.Stderr.Fd()))

	var report scanner.Report
	var scanErr error

	if progressEnabled {
		// Progress renders on stderr so stdout stays clean for the report
		// (and for json/yaml/toml export piping).
		model := ui.NewModel(cancel)
		program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
		opts.EventHooks = hooks.NewCLIHooks(logger, program)

		scanDone := make(chan struct{})
		go func() {
			defer close(scanDone)
			report, scanErr = scanner.Scan(ctx, opts)
			// ScanCompleteMsg (sent by the hooks) quits the program; this
			// covers the validation-error path where no hook ever fires.
			program.Send(hooks.ScanCompleteMsg{Report: report})
		}()

		if _, err := program.Run(); err != nil {
			logger.Warn("progress display failed, continuing without it", slog.Any("error", err))
		}
		<-scanDone
	} else {
		opts.EventHooks = hooks.NewCLIHooks(logger, nil)
		report, scanErr = scanner.Scan(ctx, opts)
	}

	if scanErr != nil {
		return report, scanErr
	}

	if cliOpts.ReportFormat == config.ReportText {
		render.Report(os.Stdout, report, cliOpts.SummaryOnly, cliOpts.Details)
	} else if err := render.Export(os.Stdout, report, cliOpts.ReportFormat); err != nil {
		return report, err
	}
	return report, nil
}
