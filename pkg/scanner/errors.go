package scanner

import "errors"

var (
	// ErrConfigValidation indicates the provided Options failed validation
	// before any I/O began. This is the only fatal error class: per-file
	// and per-folder problems are folded into statistics instead.
	ErrConfigValidation = errors.New("invalid scan configuration")

	// ErrDiscovery indicates the top directory itself could not be
	// enumerated. Individual subfolder failures are Warnings, not errors.
	ErrDiscovery = errors.New("discovery failed")
)
