package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/stackvity/csv-charset/pkg/scanner/detect"
)

// Options holds all configuration for a scan run. It is built once from
// external input (flags, config file, environment) and never mutated by
// the engine.
type Options struct {
	// TopDir is the directory whose immediate subfolders are scanned.
	TopDir string `mapstructure:"topDir"`
	// Mode selects recursive-anywhere vs named-subfolder-only CSV search.
	Mode Mode `mapstructure:"mode"`
	// SubdirName is the child subfolder searched when Mode is "subdir".
	SubdirName string `mapstructure:"subdir"`
	// Pattern is the subfolder inclusion filter.
	Pattern Pattern `mapstructure:"pattern"`
	// Workers is the requested parallelism. 0 requests the default
	// (half the cores); the engine caps the effective value.
	Workers int `mapstructure:"workers"`
	// Fast selects single-pass classification.
	Fast bool `mapstructure:"fast"`
	// SampleSize is the number of bytes read per classification pass.
	SampleSize int `mapstructure:"sampleSize"`
	// NameDelims are the delimiter characters used to derive folder
	// display names.
	NameDelims string `mapstructure:"nameDelims"`

	// EventHooks receives progress callbacks. Implementations must be
	// thread-safe; OnFileDone is called from the aggregator goroutine.
	EventHooks Hooks `mapstructure:"-"`
	// Logger is the logging backend for all engine components.
	Logger slog.Handler `mapstructure:"-"`
	// ClassifierFactory overrides the default classifier construction
	// (used by tests).
	ClassifierFactory ClassifierFactory `mapstructure:"-"`
}

// ClassifierFactory builds the per-run classifier.
type ClassifierFactory func(sampleSize int, fast bool, loggerHandler slog.Handler) FileClassifier

// FileClassifier classifies a single file. detect.Classifier is the
// default implementation.
type FileClassifier interface {
	DetectFile(path string) detect.Result
}

// Validate checks the option combination before any I/O starts. Everything
// it rejects wraps ErrConfigValidation.
func (o *Options) Validate() error {
	if o.TopDir == "" {
		return fmt.Errorf("%w: top directory is required", ErrConfigValidation)
	}
	info, err := os.Stat(o.TopDir)
	if err != nil {
		return fmt.Errorf("%w: cannot access top directory %q: %v", ErrConfigValidation, o.TopDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrConfigValidation, o.TopDir)
	}
	switch o.Mode {
	case "", ModeAny, ModeSubdir:
	default:
		return fmt.Errorf("%w: unknown mode %q (want %q or %q)", ErrConfigValidation, o.Mode, ModeAny, ModeSubdir)
	}
	switch o.Pattern {
	case "", PatternAll, PatternUnderscore:
	default:
		return fmt.Errorf("%w: unknown pattern %q (want %q or %q)", ErrConfigValidation, o.Pattern, PatternAll, PatternUnderscore)
	}
	if o.SampleSize < 0 {
		return fmt.Errorf("%w: sample size must not be negative (got %d)", ErrConfigValidation, o.SampleSize)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: worker count must not be negative (got %d)", ErrConfigValidation, o.Workers)
	}
	if o.Mode == ModeSubdir && strings.ContainsAny(o.SubdirName, `/\`) {
		return fmt.Errorf("%w: subdir name %q must be a bare directory name", ErrConfigValidation, o.SubdirName)
	}
	return nil
}

// withDefaults returns a copy with zero-value fields resolved.
func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.SubdirName == "" {
		o.SubdirName = DefaultSubdirName
	}
	if o.Pattern == "" {
		o.Pattern = DefaultPattern
	}
	if o.SampleSize == 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.NameDelims == "" {
		o.NameDelims = DefaultNameDelims
	}
	if o.EventHooks == nil {
		o.EventHooks = &NoOpHooks{}
	}
	if o.ClassifierFactory == nil {
		o.ClassifierFactory = func(sampleSize int, fast bool, h slog.Handler) FileClassifier {
			return detect.NewClassifier(sampleSize, fast, h)
		}
	}
	return o
}

// Hooks defines callbacks surfaced to the reporting layer during a scan.
// Implementations must be thread-safe.
type Hooks interface {
	// OnScanStart fires once after discovery, before the pool starts.
	OnScanStart(folders, files int)
	// OnWorkersCapped fires when the effective worker count differs from
	// the requested one.
	OnWorkersCapped(requested, effective, cores, files int)
	// OnFileDone fires once per classified file with the monotonically
	// increasing completed count.
	OnFileDone(folder *Folder, path string, res detect.Result, completed, total int)
	// OnScanComplete fires once with the final report, including after
	// cancellation.
	OnScanComplete(report Report)
}

// NoOpHooks is the default, do-nothing Hooks implementation.
type NoOpHooks struct{}

func (*NoOpHooks) OnScanStart(folders, files int) {}
func (*NoOpHooks) OnWorkersCapped(requested, effective, cores, files int) {}
func (*NoOpHooks) OnFileDone(folder *Folder, path string, res detect.Result, completed, total int) {
}
func (*NoOpHooks) OnScanComplete(report Report) {}
