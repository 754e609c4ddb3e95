// Package render turns a scan Report into terminal output: colored
// per-folder and overall distributions, or a machine-readable export.
// All formatting lives here; the engine only ever hands over counts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/stackvity/csv-charset/internal/cli/config"
	"github.com/stackvity/csv-charset/pkg/scanner"
	"github.com/stackvity/csv-charset/pkg/scanner/detect"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	asciiStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	otherStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// encodingStyle picks a color family for an encoding label: green for
// UTF-8, blue for ASCII, yellow for ISO/Windows code pages, red for
// binary and BOM-less wide encodings, magenta otherwise.
func encodingStyle(enc detect.Encoding) lipgloss.Style {
	switch enc {
	case detect.EncodingUTF8:
		return goodStyle
	case detect.EncodingASCII:
		return asciiStyle
	case detect.EncodingISO8859_1, detect.EncodingWindows1252, detect.EncodingKOI8R, detect.EncodingIBM866:
		return warnStyle
	case detect.EncodingBinary, detect.EncodingUTF16LE, detect.EncodingUTF16BE,
		detect.EncodingUTF32LE, detect.EncodingUTF32BE, detect.EncodingUnknown:
		return badStyle
	default:
		return otherStyle
	}
}

// Report writes the full human-readable report: the optional worker-cap
// notice, per-folder distributions (unless summaryOnly), discovery
// warnings, and the overall summary.
func Report(w io.Writer, report scanner.Report, summaryOnly, details bool) {
	if n := report.WorkerNotice; n != nil {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(
			"Limiting jobs from %d to %d (CPU=%d, files=%d) for stability",
			n.Requested, n.Effective, n.Cores, n.Files)))
	}
	if !summaryOnly {
		fmt.Fprintln(w, headerStyle.Render("Results by Folder:"))
		fmt.Fprintln(w)
		for _, fs := range report.Folders {
			folderDistribution(w, fs, details)
			fmt.Fprintln(w)
		}
	}
	for _, warning := range report.Warnings {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Warning: skipped %s: %s", warning.Path, warning.Err)))
	}
	summary(w, report)
}

func folderDistribution(w io.Writer, fs scanner.FolderStats, details bool) {
	if fs.Total == 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("No CSV files detected in %s (0 files)", fs.Folder.DisplayName)))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Encoding Distribution %s:", fs.Folder.DisplayName)))
	for _, row := range scanner.Distribution(fs.Encodings, fs.Total) {
		fmt.Fprintf(w, "  %s: %d files (%.1f%%)\n",
			encodingStyle(row.Encoding).Render(string(row.Encoding)), row.Count, row.Percentage)
	}
	if failed := fs.Total - fs.Detected; failed > 0 {
		fmt.Fprintf(w, "  %s: %d files\n", badStyle.Render("Undetected"), failed)
	}
	if details {
		fmt.Fprintf(w, "  %s: %d\n", countStyle.Render("Total files"), fs.Total)
		fmt.Fprintf(w, "  %s: %s\n", countStyle.Render("Folder path"), fs.Folder.Path)
	}
}

func summary(w io.Writer, report scanner.Report) {
	rule := ruleStyle.Render(strings.Repeat("═", 50))
	fmt.Fprintln(w, rule)
	title := "OVERALL SUMMARY"
	if report.Cancelled {
		title = "OVERALL SUMMARY (cancelled, partial results)"
	}
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w, rule)

	o := report.Overall
	fmt.Fprintf(w, "Total folders analyzed: %s\n", countStyle.Render(fmt.Sprintf("%d", o.Folders)))
	fmt.Fprintf(w, "Total CSV files processed: %s\n", countStyle.Render(fmt.Sprintf("%d", o.TotalFiles)))
	fmt.Fprintf(w, "Successfully detected: %s\n", goodStyle.Render(fmt.Sprintf("%d", o.Detected)))
	if failed := o.TotalFiles - o.Detected; failed > 0 {
		fmt.Fprintf(w, "Undetected or unreadable: %s\n", badStyle.Render(fmt.Sprintf("%d", failed)))
	}
	fmt.Fprintf(w, "Detection success rate: %s\n", goodStyle.Render(fmt.Sprintf("%.1f%%", o.SuccessRate())))
	fmt.Fprintf(w, "Total runtime: %s\n", elapsedStyle.Render(FormatDuration(o.Elapsed)))

	if len(o.Encodings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Overall Encoding Distribution:"))
		for _, row := range scanner.Distribution(o.Encodings, o.TotalFiles) {
			fmt.Fprintf(w, "  %s: %d files (%.1f%%)\n",
				encodingStyle(row.Encoding).Render(string(row.Encoding)), row.Count, row.Percentage)
		}
	}
	if report.Cancelled {
		fmt.Fprintln(w, dimStyle.Render("Scan interrupted; files never started are absent from the counts above."))
	}
}

// Export writes the report in a machine-readable format.
func Export(w io.Writer, report scanner.Report, format config.ReportFormat) error {
	switch format {
	case config.ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case config.ReportYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(report)
	case config.ReportTOML:
		return toml.NewEncoder(w).Encode(report)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// FormatDuration renders a duration the way the progress line does:
// "42s", "3m 12s", "1h 4m".
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}
