package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover enumerates the immediate subfolders of the top directory and
// locates the CSV files each one contributes according to the configured
// mode. It runs single-threaded before the worker pool starts and performs
// a read-only traversal.
//
// Folders that cannot be listed are skipped with a recorded Warning;
// discovery is only fatal when the top directory itself is unreadable.
func Discover(ctx context.Context, opts Options) (*Discovery, error) {
	opts = opts.withDefaults()
	logger := slog.New(discardHandler(opts.Logger)).With(slog.String("component", "discovery"))

	entries, err := os.ReadDir(opts.TopDir)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot list top directory %q: %v", ErrDiscovery, opts.TopDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if opts.Pattern == PatternUnderscore && !strings.Contains(entry.Name(), "_") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	disc := &Discovery{}
	for _, name := range names {
		if ctx.Err() != nil {
			return disc, ctx.Err()
		}
		folderPath := filepath.Join(opts.TopDir, name)
		folder := &Folder{
			Path:        folderPath,
			DisplayName: displayName(name, opts.NameDelims),
		}

		var files []string
		var listErr error
		switch opts.Mode {
		case ModeSubdir:
			files, listErr = listSubdirCSVs(filepath.Join(folderPath, opts.SubdirName))
		default:
			files, listErr = walkCSVs(folderPath)
		}
		if listErr != nil {
			logger.Warn("skipping unlistable folder",
				slog.String("path", folderPath),
				slog.String("error", listErr.Error()))
			disc.Warnings = append(disc.Warnings, Warning{Path: folderPath, Err: listErr.Error()})
			continue
		}

		sort.Strings(files)
		folder.Files = files
		disc.Folders = append(disc.Folders, folder)
		for _, f := range files {
			disc.Items = append(disc.Items, WorkItem{Folder: folder, Path: f})
		}
		logger.Debug("folder discovered",
			slog.String("folder", folder.DisplayName),
			slog.Int("files", len(files)))
	}

	logger.Info("discovery complete",
		slog.Int("folders", len(disc.Folders)),
		slog.Int("files", len(disc.Items)),
		slog.Int("warnings", len(disc.Warnings)))
	return disc, nil
}

// walkCSVs recursively collects *.csv files (case-insensitive extension)
// under root. Symbolic links are not followed.
func walkCSVs(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Root unreadable is fatal for this folder; deeper problems
			// just prune the affected branch.
			if path == root {
				return err
			}
			return fs.SkipDir
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isCSV(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// listSubdirCSVs collects *.csv files directly inside dir. A missing dir
// contributes zero files and is not an error.
func listSubdirCSVs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isCSV(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// displayName derives the short folder label: the substring after the
// first (lowest-index) delimiter occurrence, or the full name when no
// delimiter matches.
func displayName(name, delims string) string {
	first := -1
	for _, d := range delims {
		if idx := strings.IndexRune(name, d); idx >= 0 && (first == -1 || idx < first) {
			first = idx
		}
	}
	if first == -1 {
		return name
	}
	return name[first+1:]
}
