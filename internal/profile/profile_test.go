package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validProfile() *Profile {
	return &Profile{
		Name:    "test",
		BaseURL: "https://example.com",
		ListURL: "https://example.com/designers/",
		Selectors: Selectors{
			Listing: SelectorList{".listing"},
			Name:    SelectorList{"h3"},
		},
	}
}

// --- Validation Tests ---

func TestValidate_OK(t *testing.T) {
	if err := validProfile().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_NoURLSource(t *testing.T) {
	p := validProfile()
	p.ListURL = ""
	if err := p.Validate(); err == nil {
		t.Error("expected error when no URL source is configured")
	}
}

func TestValidate_MissingListingSelectors(t *testing.T) {
	p := validProfile()
	p.Selectors.Listing = nil
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty listing selectors")
	}
}

func TestValidate_MissingNameSelectors(t *testing.T) {
	p := validProfile()
	p.Selectors.Name = nil
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty name selectors")
	}
}

func TestValidate_BadBaseURL(t *testing.T) {
	p := validProfile()
	p.BaseURL = "not a url"
	if err := p.Validate(); err == nil {
		t.Error("expected error for malformed base URL")
	}
}

func TestValidate_PaginationRange(t *testing.T) {
	p := validProfile()
	p.Pagination = Pagination{Enabled: true, StartPage: 3, EndPage: 1, URLPattern: "{base_url}{page}/"}
	if err := p.Validate(); err == nil {
		t.Error("expected error for inverted page range")
	}
}

func TestValidate_PaginationNeedsPattern(t *testing.T) {
	p := validProfile()
	p.Pagination = Pagination{Enabled: true, StartPage: 1, EndPage: 3}
	if err := p.Validate(); err == nil {
		t.Error("expected error for pagination without url_pattern")
	}
}

// --- Strategy Tests ---

func TestStrategy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
		want   Strategy
	}{
		{"list url only", func(p *Profile) {}, StrategyNone},
		{"search template", func(p *Profile) {
			p.ListURL = ""
			p.SearchURLTemplate = "https://example.com/search?q={query}"
		}, StrategySearchIncrement},
		{"explicit urls", func(p *Profile) {
			p.ListURL = ""
			p.ListURLs = []string{"https://example.com/a", "https://example.com/b"}
		}, StrategyExplicitList},
		{"numeric range", func(p *Profile) {
			p.Pagination = Pagination{Enabled: true, StartPage: 1, EndPage: 3, URLPattern: "{base_url}{page}/"}
		}, StrategyNumericRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			if got := p.Strategy(); got != tt.want {
				t.Errorf("Strategy() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Block Phrases ---

func TestBlockPagePhrases_Default(t *testing.T) {
	p := validProfile()
	phrases := p.BlockPagePhrases()
	if len(phrases) != 3 {
		t.Fatalf("expected 3 default phrases, got %d", len(phrases))
	}
}

func TestBlockPagePhrases_Override(t *testing.T) {
	p := validProfile()
	p.BlockPhrases = []string{"robot check"}
	phrases := p.BlockPagePhrases()
	if len(phrases) != 1 || phrases[0] != "robot check" {
		t.Errorf("expected configured phrases, got %v", phrases)
	}
}

// --- Builtins ---

func TestBuiltins_AllValid(t *testing.T) {
	for _, name := range BuiltinNames() {
		p, ok := Builtin(name)
		if !ok {
			t.Fatalf("builtin %q not found", name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("builtin %q invalid: %v", name, err)
		}
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	if _, ok := Builtin("nope"); ok {
		t.Error("expected unknown builtin to miss")
	}
}

// --- YAML Loading ---

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	content := `
archdaily:
  base_url: https://www.archdaily.com
  list_url: https://www.archdaily.com/offices
  rate_limit: 1.5
  requires_js: true
  selectors:
    listing:
      - .office-card
    name: h3 a
    website: a[href^="http"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	profiles, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	p, ok := profiles["archdaily"]
	if !ok {
		t.Fatal("expected archdaily profile")
	}
	if p.Name != "archdaily" {
		t.Errorf("expected name filled from key, got %q", p.Name)
	}
	if p.RateLimit.Std() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s rate limit, got %v", p.RateLimit.Std())
	}
	if !p.RequiresJS {
		t.Error("expected requires_js true")
	}
	if len(p.Selectors.Name) != 1 || p.Selectors.Name[0] != "h3 a" {
		t.Errorf("scalar selector shorthand not expanded: %v", p.Selectors.Name)
	}
}

func TestLoadFile_InvalidProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	content := `
broken:
  base_url: https://example.com
  selectors:
    listing: [".x"]
    name: ["h3"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected validation error for profile with no URL source")
	}
}

func TestDuration_YAMLForms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	content := `
a:
  base_url: https://example.com
  list_url: https://example.com/list
  rate_limit: 750ms
  selectors:
    listing: [".x"]
    name: ["h3"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	profiles, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := profiles["a"].RateLimit.Std(); got != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", got)
	}
}
