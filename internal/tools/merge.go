package tools

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/output"
	"github.com/studioscout/studioscout/internal/record"
)

// MasterColumns is the merged-file schema: the standard export columns plus
// a source label naming the file each row came from.
var MasterColumns = append(append([]string{}, output.Columns...), "source")

// MergeOptions control one merge pass.
type MergeOptions struct {
	// Dedupe drops rows whose identity key was already seen (first
	// occurrence wins). Rows with no name and no identifier are always
	// kept.
	Dedupe bool
	// Exclude skips input files whose source label matches.
	Exclude []string
}

// MergeDir combines every CSV under dir into one master file with a source
// column. Returns the row count before and after identity-key deduplication.
func MergeDir(dir, masterPath string, opts MergeOptions) (total, written int, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, 0, err
	}
	sort.Strings(paths)

	excluded := make(map[string]bool, len(opts.Exclude)+1)
	excluded["master"] = true
	for _, label := range opts.Exclude {
		excluded[strings.ToLower(label)] = true
	}

	absMaster, _ := filepath.Abs(masterPath)
	var rows [][]string
	for _, path := range paths {
		if abs, _ := filepath.Abs(path); abs == absMaster {
			continue
		}
		label := SourceLabel(path)
		if excluded[label] {
			continue
		}
		fileRows, err := loadMergeRows(path, label)
		if err != nil {
			logger.Warn("skipping unreadable CSV", "path", path, "error", err)
			continue
		}
		rows = append(rows, fileRows...)
	}

	total = len(rows)
	if opts.Dedupe {
		rows = dedupeByKey(rows)
	}
	written = len(rows)

	if dir := filepath.Dir(masterPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, 0, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(masterPath)
	if err != nil {
		return 0, 0, fmt.Errorf("create %s: %w", masterPath, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(MasterColumns); err != nil {
		return 0, 0, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return 0, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, 0, err
	}

	logger.Info("merged exports", "path", masterPath, "total", total, "written", written)
	return total, written, nil
}

// SourceLabel derives a source name from an export filename:
// rethinkingthefuture_results.csv becomes rethinkingthefuture.
func SourceLabel(path string) string {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for _, suffix := range []string{"_results", "_designers", "_asid"} {
		if strings.HasSuffix(stem, suffix) {
			return strings.TrimSuffix(stem, suffix)
		}
	}
	return stem
}

// loadMergeRows reads one export and projects its columns onto the master
// schema, filling the source column with the file's label.
func loadMergeRows(path, label string) ([][]string, error) {
	t, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		out := make([]string, len(MasterColumns))
		for i, col := range MasterColumns {
			if col == "source" {
				out[i] = label
				continue
			}
			out[i] = t.get(row, col)
		}
		rows = append(rows, out)
	}
	return rows, nil
}

// dedupeByKey keeps the first row per identity key, so two firms sharing a
// name but not a website or email both survive the merge. Rows with neither
// a name nor an identifier are kept unconditionally.
func dedupeByKey(rows [][]string) [][]string {
	nameIdx := columnIndex("name")
	emailIdx := columnIndex("email")
	websiteIdx := columnIndex("website")

	seen := make(map[record.Key]bool, len(rows))
	unique := rows[:0:0]
	for _, row := range rows {
		r := record.Record{
			Name:    cellAt(row, nameIdx),
			Email:   cellAt(row, emailIdx),
			Website: cellAt(row, websiteIdx),
		}
		key := r.IdentityKey()
		if key == (record.Key{}) {
			unique = append(unique, row)
			continue
		}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, row)
		}
	}
	return unique
}

func columnIndex(col string) int {
	for i, c := range MasterColumns {
		if c == col {
			return i
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
