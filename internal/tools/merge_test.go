package tools

import (
	"path/filepath"
	"testing"
)

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"output/rethinkingthefuture_results.csv", "rethinkingthefuture"},
		{"houzz_designers.csv", "houzz"},
		{"Yelp_Results.csv", "yelp"},
		{"plainfile.csv", "plainfile"},
	}
	for _, tt := range tests {
		if got := SourceLabel(tt.path); got != tt.want {
			t.Errorf("SourceLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMergeDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "alpha_results.csv"),
		"name,email,website\nAcme Studio,info@acme.design,https://acme.design\nJane Doe,,\n")
	writeCSV(t, filepath.Join(dir, "beta_results.csv"),
		"name,website,phone\nacme studio,HTTPS://ACME.DESIGN,555-0100\nBeta Firm,,555-0200\n")

	master := filepath.Join(dir, "master_results.csv")
	total, written, err := MergeDir(dir, master, MergeOptions{Dedupe: true})
	if err != nil {
		t.Fatalf("MergeDir: %v", err)
	}
	if total != 4 || written != 3 {
		t.Errorf("total = %d, written = %d, want 4 and 3", total, written)
	}

	rows := readCSV(t, master)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	header := rows[0]
	if header[len(header)-1] != "source" {
		t.Errorf("last column = %q, want source", header[len(header)-1])
	}
	// Files merge in sorted order; the first Acme Studio wins the key.
	if rows[1][0] != "Acme Studio" || rows[1][len(header)-1] != "alpha" {
		t.Errorf("first row = %v", rows[1])
	}
	var names []string
	for _, row := range rows[1:] {
		names = append(names, row[0])
	}
	for _, row := range rows[1:] {
		if row[0] == "acme studio" {
			t.Errorf("case-insensitive duplicate survived: %v", names)
		}
	}
}

// Two firms can trade under the same name; the merge keys on identity,
// not name alone, so both stay in the master file.
func TestMergeDir_SameNameDifferentWebsiteBothKept(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "a_results.csv"),
		"name,website\nAcme Studio,https://acme.nyc\n")
	writeCSV(t, filepath.Join(dir, "b_results.csv"),
		"name,website\nAcme Studio,https://acme.la\n")

	master := filepath.Join(dir, "master_results.csv")
	total, written, err := MergeDir(dir, master, MergeOptions{Dedupe: true})
	if err != nil {
		t.Fatalf("MergeDir: %v", err)
	}
	if total != 2 || written != 2 {
		t.Errorf("total = %d, written = %d, want both rows kept", total, written)
	}
}

func TestMergeDir_NoDedupe(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "a_results.csv"), "name\nSame Firm\n")
	writeCSV(t, filepath.Join(dir, "b_results.csv"), "name\nSame Firm\n")

	master := filepath.Join(dir, "master_results.csv")
	total, written, err := MergeDir(dir, master, MergeOptions{})
	if err != nil {
		t.Fatalf("MergeDir: %v", err)
	}
	if total != 2 || written != 2 {
		t.Errorf("total = %d, written = %d, want both 2", total, written)
	}
}

func TestMergeDir_SkipsMasterAndExcluded(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "alpha_results.csv"), "name\nAlpha Firm\n")
	writeCSV(t, filepath.Join(dir, "skipme_results.csv"), "name\nSkipped Firm\n")
	master := filepath.Join(dir, "master_results.csv")
	writeCSV(t, master, "name\nStale Master Row\n")

	_, written, err := MergeDir(dir, master, MergeOptions{Dedupe: true, Exclude: []string{"skipme"}})
	if err != nil {
		t.Fatalf("MergeDir: %v", err)
	}
	if written != 1 {
		t.Errorf("written = %d, want only the alpha row", written)
	}
	rows := readCSV(t, master)
	if rows[1][0] != "Alpha Firm" {
		t.Errorf("unexpected surviving row: %v", rows[1])
	}
}

func TestMergeDir_UnnamedRowsAlwaysKept(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "a_results.csv"), "name,email\n,one@x.com\n,two@x.com\n")

	master := filepath.Join(dir, "master_results.csv")
	_, written, err := MergeDir(dir, master, MergeOptions{Dedupe: true})
	if err != nil {
		t.Fatalf("MergeDir: %v", err)
	}
	if written != 2 {
		t.Errorf("written = %d, unnamed rows must not collapse", written)
	}
}
