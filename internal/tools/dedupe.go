package tools

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/studioscout/studioscout/internal/logger"
)

// DedupeFile removes duplicate rows from one CSV by case-insensitive name,
// keeping the first occurrence, and rewrites the file in place. Returns the
// row counts before and after.
func DedupeFile(path string) (before, after int, err error) {
	t, err := loadTable(path)
	if err != nil {
		return 0, 0, err
	}
	before = len(t.rows)
	if !t.hasColumn("name") || before == 0 {
		return before, before, nil
	}

	seen := make(map[string]bool, before)
	unique := t.rows[:0:0]
	for _, row := range t.rows {
		key := strings.ToLower(t.get(row, "name"))
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, row)
	}
	after = len(unique)
	if after == before {
		return before, after, nil
	}

	t.rows = unique
	if err := t.save(path); err != nil {
		return before, after, err
	}
	logger.Info("deduplicated file", "path", path, "before", before, "after", after)
	return before, after, nil
}

// DedupeDir runs DedupeFile over every CSV in a directory. Returns the
// total number of duplicate rows removed.
func DedupeDir(dir string) (removed int, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)
	for _, path := range paths {
		before, after, err := DedupeFile(path)
		if err != nil {
			logger.Warn("skipping file", "path", path, "error", err)
			continue
		}
		removed += before - after
	}
	return removed, nil
}
