// Package hooks bridges scanner events to the CLI presentation layer:
// either the bubbletea progress program or plain logging when the TUI is
// disabled.
package hooks

import (
	"log/slog"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stackvity/csv-charset/pkg/scanner"
	"github.com/stackvity/csv-charset/pkg/scanner/detect"
)

// --- TUI message structs ---

// ScanStartMsg signals that discovery finished and processing begins.
type ScanStartMsg struct {
	Folders int
	Files   int
}

// WorkersCappedMsg carries the informational worker-cap notice.
type WorkersCappedMsg struct {
	Requested int
	Effective int
	Cores     int
	Files     int
}

// FileDoneMsg signals one completed classification.
type FileDoneMsg struct {
	Label     string
	Result    detect.Result
	Completed int
	Total     int
}

// ScanCompleteMsg signals the end of the run, including cancelled runs.
type ScanCompleteMsg struct{ Report scanner.Report }

// TUIProgram is the slice of tea.Program the hooks need. Decoupled as an
// interface so tests can capture messages without a terminal.
type TUIProgram interface {
	Send(msg tea.Msg)
}

// CLIHooks implements scanner.Hooks. All methods are safe for concurrent
// use; the engine calls OnFileDone from its aggregator goroutine.
type CLIHooks struct {
	logger  *slog.Logger
	program TUIProgram
	mu      sync.Mutex
}

// NewCLIHooks builds hooks that forward events to program when non-nil
// and always log at debug level.
func NewCLIHooks(logger *slog.Logger, program TUIProgram) *CLIHooks {
	return &CLIHooks{logger: logger, program: program}
}

// OnScanStart implements scanner.Hooks.
func (h *CLIHooks) OnScanStart(folders, files int) {
	h.logger.Debug("scan starting", slog.Int("folders", folders), slog.Int("files", files))
	h.send(ScanStartMsg{Folders: folders, Files: files})
}

// OnWorkersCapped implements scanner.Hooks.
func (h *CLIHooks) OnWorkersCapped(requested, effective, cores, files int) {
	h.logger.Info("limiting jobs",
		slog.Int("requested", requested),
		slog.Int("effective", effective),
		slog.Int("cores", cores),
		slog.Int("files", files))
	h.send(WorkersCappedMsg{Requested: requested, Effective: effective, Cores: cores, Files: files})
}

// OnFileDone implements scanner.Hooks.
func (h *CLIHooks) OnFileDone(folder *scanner.Folder, path string, res detect.Result, completed, total int) {
	label := filepath.Base(path)
	if folder != nil {
		label = folder.DisplayName + "/" + label
	}
	h.send(FileDoneMsg{Label: label, Result: res, Completed: completed, Total: total})
}

// OnScanComplete implements scanner.Hooks.
func (h *CLIHooks) OnScanComplete(report scanner.Report) {
	h.send(ScanCompleteMsg{Report: report})
}

func (h *CLIHooks) send(msg interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.program != nil {
		h.program.Send(msg)
	}
}
