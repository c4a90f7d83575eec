// Package output persists records to tabular CSV files with a fixed column
// schema and idempotent append semantics.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/record"
)

// Columns is the fixed output schema, one row per record.
var Columns = []string{
	"name", "email", "phone", "website", "address",
	"city", "state", "zip_code", "social_media", "specialty", "source_url",
}

// WriteFile writes records to a CSV file. In append mode, previously
// persisted rows are loaded first and the deduplicated union is rewritten,
// so appending the same records twice leaves the row count unchanged.
func WriteFile(path string, records []*record.Record, appendMode bool) error {
	if len(records) == 0 {
		logger.Warn("no records to export", "path", path)
		return nil
	}

	records = record.Dedupe(records)

	if appendMode {
		if prior, err := ReadFile(path); err == nil {
			before := len(prior) + len(records)
			records = record.MergeDedupe(prior, records)
			if dropped := before - len(records); dropped > 0 {
				logger.Info("dropped duplicate rows on append", "path", path, "count", dropped)
			}
		} else if !os.IsNotExist(err) {
			logger.Warn("could not load existing CSV, overwriting", "path", path, "error", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	logger.Info("exported records", "path", path, "count", len(records))
	return nil
}

// ReadFile loads previously persisted records from a CSV file.
func ReadFile(path string) ([]*record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := columnIndex(rows[0])
	records := make([]*record.Record, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}
		r := &record.Record{
			Name:        get("name"),
			Email:       get("email"),
			Phone:       get("phone"),
			Website:     get("website"),
			Address:     get("address"),
			City:        get("city"),
			State:       get("state"),
			ZipCode:     get("zip_code"),
			SocialMedia: parseSocialMedia(get("social_media")),
			Specialty:   get("specialty"),
			SourceURL:   get("source_url"),
		}
		records = append(records, r)
	}
	return records, nil
}

// PageFilePath derives the per-page output path: designers.csv page 2
// becomes designers_page2.csv.
func PageFilePath(base string, page int) string {
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".csv"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_page" + strconv.Itoa(page) + ext
}

func row(r *record.Record) []string {
	return []string{
		r.Name, r.Email, r.Phone, r.Website, r.Address,
		r.City, r.State, r.ZipCode, r.SocialMediaString(), r.Specialty, r.SourceURL,
	}
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func parseSocialMedia(serialized string) map[string]string {
	if serialized == "" {
		return nil
	}
	social := make(map[string]string)
	for _, pair := range strings.Split(serialized, ",") {
		key, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		social[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return social
}
