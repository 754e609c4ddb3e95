package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stackvity/csv-charset/internal/cli"
	"github.com/stackvity/csv-charset/internal/cli/config"
)

var (
	// Set at build time via -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	verbose bool
)

const interruptExitCode = 130

var rootCmd = &cobra.Command{
	Use:   "csv-charset [directory]",
	Short: "Detects the character encoding of CSV files across a folder hierarchy.",
	Long: `csv-charset scans the immediate subfolders of a top directory, finds CSV
files either recursively anywhere (--csv-mode any, the default) or only
inside a named subfolder (--csv-mode subdir with --bak <name>), and
classifies each file's character encoding in parallel.

Detection is fully offline: a BOM check, a UTF-16-without-BOM heuristic,
an ASCII fast path, and a statistical fallback, in that order. The run
ends with per-folder and overall encoding distributions.

A first interrupt (Ctrl+C) winds the scan down gracefully and reports
partial results; a second one forces immediate exit.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		forceExitOnSecondSignal(ctx)

		topDir := "."
		if len(args) == 1 {
			topDir = args[0]
		}

		opts, cliOpts, logger, err := config.LoadAndValidate(cfgFile, topDir, verbose, cmd.Flags())
		if err != nil {
			return err
		}

		report, err := cli.Run(ctx, cancel, opts, cliOpts, logger)
		if err != nil {
			return err
		}
		if report.Cancelled {
			os.Exit(interruptExitCode)
		}
		return nil
	},
}

// forceExitOnSecondSignal escalates a repeated interrupt to an immediate
// process exit. The first signal cancels ctx and the engine drains
// gracefully; anyone pressing Ctrl+C again wants out now.
func forceExitOnSecondSignal(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	go func() {
		<-ctx.Done()
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		fmt.Fprintln(os.Stderr, "forced exit")
		os.Exit(interruptExitCode)
	}()
}

// Execute runs the root command.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default: search . and ~/.config/csv-charset/)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output (disables the progress display)")

	flags := rootCmd.Flags()
	flags.String("csv-mode", "any", `Where to look for CSV files: "any" (recursive under each subfolder) or "subdir" (only inside --bak)`)
	flags.String("bak", "bak", "Name of the subfolder containing CSV files when --csv-mode subdir")
	flags.String("pattern", "all", `Folder selection: "all" or "underscore" (only names containing an underscore)`)
	flags.IntP("jobs", "j", 0, "Number of parallel workers (default: half the cores)")
	flags.Bool("fast", false, "Faster single-pass detection (lower I/O, slightly lower confidence)")
	flags.Int("sample-size", 65536, "Bytes to sample per detection pass")
	flags.String("name-delims", "_- ", "Characters treated as delimiters when deriving folder display names")
	flags.Bool("no-progress", false, "Disable the progress display")
	flags.BoolP("summary-only", "s", false, "Show only the overall summary")
	flags.BoolP("details", "d", false, "Show detailed information for each folder")
	flags.String("report-format", "text", `Report output format: "text", "json", "yaml" or "toml"`)
}
