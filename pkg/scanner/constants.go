package scanner

import "github.com/stackvity/csv-charset/pkg/scanner/detect"

// Defaults used when setting up viper defaults in the CLI configuration
// loading process and when Options fields are left zero.
const (
	// DefaultMode is the default CSV search mode.
	DefaultMode = ModeAny
	// DefaultSubdirName is the child subfolder searched in subdir mode.
	DefaultSubdirName = "bak"
	// DefaultPattern is the default subfolder inclusion filter.
	DefaultPattern = PatternAll
	// DefaultNameDelims are the characters that split a folder name into
	// its display name.
	DefaultNameDelims = "_- "
	// DefaultSampleSize is the number of bytes read per detection pass.
	DefaultSampleSize = detect.DefaultSampleSize
	// DefaultWorkers requests the default parallelism: half the available
	// cores, floored at 1. 0 means "use the default".
	DefaultWorkers = 0
	// workerCoreFactor caps effective workers at this multiple of the
	// available cores regardless of the requested count.
	workerCoreFactor = 2
)
