package scanner

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/stackvity/csv-charset/pkg/scanner/detect"
)

// FolderStats aggregates the classification outcomes for one folder.
// Totals count results received, so under cancellation they reflect the
// files actually processed, never the files merely discovered.
type FolderStats struct {
	Folder    *Folder                 `json:"folder" yaml:"folder" toml:"folder"`
	Encodings map[detect.Encoding]int `json:"encodings" yaml:"encodings" toml:"encodings"`
	Total     int                     `json:"total" yaml:"total" toml:"total"`
	Detected  int                     `json:"detected" yaml:"detected" toml:"detected"`
}

// OverallStats aggregates outcomes across all folders.
type OverallStats struct {
	Encodings  map[detect.Encoding]int `json:"encodings" yaml:"encodings" toml:"encodings"`
	TotalFiles int                     `json:"totalFiles" yaml:"totalFiles" toml:"totalFiles"`
	Detected   int                     `json:"detected" yaml:"detected" toml:"detected"`
	Folders    int                     `json:"folders" yaml:"folders" toml:"folders"`
	Elapsed    time.Duration           `json:"elapsed" yaml:"elapsed" toml:"elapsed"`
}

// WorkerNotice records a worker-count cap for the reporting layer.
type WorkerNotice struct {
	Requested int `json:"requested" yaml:"requested" toml:"requested"`
	Effective int `json:"effective" yaml:"effective" toml:"effective"`
	Cores     int `json:"cores" yaml:"cores" toml:"cores"`
	Files     int `json:"files" yaml:"files" toml:"files"`
}

// Report is the final output of a scan, handed to the external renderer.
// A cancelled scan yields a Report with Cancelled set and statistics for
// everything completed before the cancellation point.
type Report struct {
	Folders      []FolderStats `json:"folders" yaml:"folders" toml:"folders"`
	Overall      OverallStats  `json:"overall" yaml:"overall" toml:"overall"`
	Warnings     []Warning     `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
	WorkerNotice *WorkerNotice `json:"workerNotice,omitempty" yaml:"workerNotice,omitempty" toml:"workerNotice,omitempty"`
	Cancelled    bool          `json:"cancelled" yaml:"cancelled" toml:"cancelled"`
}

// SuccessRate returns detected/total as a percentage, 0 when total is 0.
func (s OverallStats) SuccessRate() float64 {
	return successRate(s.Detected, s.TotalFiles)
}

// SuccessRate returns detected/total as a percentage, 0 when total is 0.
func (s FolderStats) SuccessRate() float64 {
	return successRate(s.Detected, s.Total)
}

func successRate(detected, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(detected) / float64(total) * 100
}

// DistributionRow is one encoding's share of a scope, percentage rounded
// to one decimal place at this reporting boundary; the aggregator itself
// stores exact counts only.
type DistributionRow struct {
	Encoding   detect.Encoding `json:"encoding" yaml:"encoding" toml:"encoding"`
	Count      int             `json:"count" yaml:"count" toml:"count"`
	Percentage float64         `json:"percentage" yaml:"percentage" toml:"percentage"`
}

// Distribution flattens an encoding->count map into rows ordered by count
// descending, then label ascending, for deterministic reporting.
func Distribution(encodings map[detect.Encoding]int, scopeTotal int) []DistributionRow {
	rows := make([]DistributionRow, 0, len(encodings))
	for enc, count := range encodings {
		var pct float64
		if scopeTotal > 0 {
			pct = math.Round(float64(count)/float64(scopeTotal)*1000) / 10
		}
		rows = append(rows, DistributionRow{Encoding: enc, Count: count, Percentage: pct})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Encoding < rows[j].Encoding
	})
	return rows
}

// statsAggregator is the single consumer of worker results. All counter
// writes happen on the aggregator goroutine; the mutex only guards the
// mid-scan snapshots taken by progress reporting.
type statsAggregator struct {
	mu      sync.Mutex
	folders map[*Folder]*FolderStats
	order   []*Folder
	overall OverallStats
}

func newStatsAggregator(folders []*Folder) *statsAggregator {
	a := &statsAggregator{
		folders: make(map[*Folder]*FolderStats, len(folders)),
		order:   folders,
	}
	for _, f := range folders {
		a.folders[f] = &FolderStats{Folder: f, Encodings: make(map[detect.Encoding]int)}
	}
	a.overall.Encodings = make(map[detect.Encoding]int)
	a.overall.Folders = len(folders)
	return a
}

// add records one classification outcome. Failed detections count under
// the unknown label so per-encoding sums always equal totals.
func (a *statsAggregator) add(folder *Folder, res detect.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fs := a.folders[folder]
	if fs == nil {
		// Result for an untracked folder would be a programming error;
		// count it overall so no file goes missing.
		fs = &FolderStats{Folder: folder, Encodings: make(map[detect.Encoding]int)}
		a.folders[folder] = fs
		a.order = append(a.order, folder)
		a.overall.Folders++
	}
	label := res.Encoding
	if !res.Detected() {
		label = detect.EncodingUnknown
	}
	fs.Encodings[label]++
	fs.Total++
	a.overall.Encodings[label]++
	a.overall.TotalFiles++
	if res.Detected() {
		fs.Detected++
		a.overall.Detected++
	}
}

// report freezes the current counters into a Report.
func (a *statsAggregator) report(elapsed time.Duration, warnings []Warning, notice *WorkerNotice, cancelled bool) Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	folders := make([]FolderStats, 0, len(a.order))
	for _, f := range a.order {
		fs := a.folders[f]
		cp := FolderStats{Folder: f, Total: fs.Total, Detected: fs.Detected, Encodings: make(map[detect.Encoding]int, len(fs.Encodings))}
		for k, v := range fs.Encodings {
			cp.Encodings[k] = v
		}
		folders = append(folders, cp)
	}
	overall := a.overall
	overall.Elapsed = elapsed
	overall.Encodings = make(map[detect.Encoding]int, len(a.overall.Encodings))
	for k, v := range a.overall.Encodings {
		overall.Encodings[k] = v
	}
	return Report{
		Folders:      folders,
		Overall:      overall,
		Warnings:     warnings,
		WorkerNotice: notice,
		Cancelled:    cancelled,
	}
}
