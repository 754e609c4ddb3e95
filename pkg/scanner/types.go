package scanner

// Mode selects where CSV files are searched for inside each subfolder.
type Mode string

const (
	// ModeAny searches the entire subfolder subtree recursively.
	ModeAny Mode = "any"
	// ModeSubdir searches only inside one named child subfolder.
	ModeSubdir Mode = "subdir"
)

// Pattern selects which immediate subfolders of the top directory are scanned.
type Pattern string

const (
	// PatternAll keeps every subfolder.
	PatternAll Pattern = "all"
	// PatternUnderscore keeps only subfolders whose name contains an underscore.
	PatternUnderscore Pattern = "underscore"
)

// Folder is one immediate subfolder of the top directory together with the
// CSV files discovered under it. Folders are created once during discovery
// and are read-only afterwards. A folder with zero files is still part of
// the result set so it appears in reports instead of silently vanishing.
type Folder struct {
	Path        string   `json:"path" yaml:"path" toml:"path"`
	DisplayName string   `json:"displayName" yaml:"displayName" toml:"displayName"`
	Files       []string `json:"-" yaml:"-" toml:"-"`
}

// WorkItem is one file queued for classification. It is owned exclusively
// by the engine's dispatch loop until a worker consumes it.
type WorkItem struct {
	Folder *Folder
	Path   string
}

// Warning records a non-fatal discovery problem, such as a subfolder that
// could not be listed.
type Warning struct {
	Path string `json:"path" yaml:"path" toml:"path"`
	Err  string `json:"error" yaml:"error" toml:"error"`
}

// Discovery is the output of the single-threaded discovery pass: the
// ordered folder list, the flattened work-item list, and any warnings.
type Discovery struct {
	Folders  []*Folder
	Items    []WorkItem
	Warnings []Warning
}

// TotalFiles returns the number of discovered work items.
func (d *Discovery) TotalFiles() int { return len(d.Items) }
