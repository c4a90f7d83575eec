package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/studioscout/studioscout/internal/record"
)

func sampleRecords() []*record.Record {
	return []*record.Record{
		{
			Name:      "Jane Doe",
			Email:     "jane@janedoe.com",
			Phone:     "(212) 555-0100",
			Website:   "https://janedoe.com",
			City:      "New York",
			State:     "NY",
			ZipCode:   "10001",
			Specialty: "Residential",
			SocialMedia: map[string]string{
				"instagram": "https://instagram.com/janedoe",
				"facebook":  "https://facebook.com/janedoe",
			},
			SourceURL: "https://example.com/list",
		},
		{
			Name:      "Acme Studio",
			Website:   "https://acme.design",
			SourceURL: "https://example.com/list",
		},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteFile_SchemaAndContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteFile(path, sampleRecords(), false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	for i, col := range Columns {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "Jane Doe" || rows[1][3] != "https://janedoe.com" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	// Social media keys serialize in sorted order.
	if rows[1][8] != "facebook: https://facebook.com/janedoe, instagram: https://instagram.com/janedoe" {
		t.Errorf("social_media cell = %q", rows[1][8])
	}
}

func TestWriteFile_DedupesBeforeWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := append(sampleRecords(), sampleRecords()...)
	if err := WriteFile(path, records, false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if rows := readRows(t, path); len(rows) != 3 {
		t.Errorf("expected duplicates dropped, got %d rows", len(rows))
	}
}

func TestWriteFile_AppendIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := sampleRecords()

	if err := WriteFile(path, records, true); err != nil {
		t.Fatalf("first write: %v", err)
	}
	first := readRows(t, path)

	if err := WriteFile(path, records, true); err != nil {
		t.Fatalf("second write: %v", err)
	}
	second := readRows(t, path)

	if len(first) != len(second) {
		t.Errorf("append of identical records changed row count: %d -> %d", len(first), len(second))
	}
}

func TestWriteFile_AppendKeepsPriorRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteFile(path, sampleRecords(), true); err != nil {
		t.Fatalf("first write: %v", err)
	}

	fresh := []*record.Record{{Name: "New Studio", Website: "https://new.studio", SourceURL: "u"}}
	if err := WriteFile(path, fresh, true); err != nil {
		t.Fatalf("second write: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected prior rows kept plus one new, got %d rows", len(rows))
	}
	// Prior rows keep their position; new rows follow.
	if rows[1][0] != "Jane Doe" || rows[3][0] != "New Studio" {
		t.Errorf("unexpected row order: %v", rows)
	}
}

func TestWriteFile_EmptyInputLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteFile(path, nil, false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file for empty record set")
	}
}

func TestWriteFile_CreatesOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
	if err := WriteFile(path, sampleRecords(), false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file created under new dirs: %v", err)
	}
}

func TestReadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	want := sampleRecords()
	if err := WriteFile(path, want, false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("record count = %d, want %d", len(got), len(want))
	}
	if got[0].Name != "Jane Doe" || got[0].Phone != "(212) 555-0100" {
		t.Errorf("first record = %+v", got[0])
	}
	if got[0].SocialMedia["instagram"] != "https://instagram.com/janedoe" {
		t.Errorf("social media did not survive the round trip: %v", got[0].SocialMedia)
	}
	if got[1].Email != "" || got[1].SocialMedia != nil {
		t.Errorf("empty fields should read back empty: %+v", got[1])
	}
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReadFile_ToleratesColumnReorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	content := "website,name\nhttps://acme.design,Acme Studio\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Acme Studio" || got[0].Website != "https://acme.design" {
		t.Errorf("header-driven parse failed: %+v", got)
	}
}

func TestPageFilePath(t *testing.T) {
	tests := []struct {
		base string
		page int
		want string
	}{
		{"designers.csv", 2, "designers_page2.csv"},
		{"output/results.csv", 10, "output/results_page10.csv"},
		{"results", 3, "results_page3.csv"},
	}
	for _, tt := range tests {
		if got := PageFilePath(tt.base, tt.page); got != tt.want {
			t.Errorf("PageFilePath(%q, %d) = %q, want %q", tt.base, tt.page, got, tt.want)
		}
	}
}
