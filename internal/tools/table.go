// Package tools implements offline passes over previously exported CSV
// files: repairing merged contact cells, enriching rows from the fetched
// web, merging per-site exports into a master file, and same-file
// deduplication.
//
// Unlike the output package, these passes preserve each file's own column
// set untouched aside from the cells they rewrite.
package tools

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// table is a CSV file held in memory with its original column order.
type table struct {
	header []string
	rows   [][]string
	index  map[string]int
}

func loadTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return &table{index: map[string]int{}}, nil
	}

	t := &table{
		header: all[0],
		rows:   all[1:],
		index:  make(map[string]int, len(all[0])),
	}
	for i, col := range t.header {
		t.index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return t, nil
}

func (t *table) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// get returns the trimmed cell value of a named column, or empty when the
// column or cell is absent.
func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// set writes a cell, growing the row if the file had ragged short rows.
func (t *table) set(row []string, col, value string) []string {
	i, ok := t.index[col]
	if !ok {
		return row
	}
	for len(row) <= i {
		row = append(row, "")
	}
	row[i] = value
	return row
}

func (t *table) hasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}
