// Package profile defines the declarative per-site scraping configuration:
// URLs, field selectors, pagination strategy, and rendering mode.
package profile

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Strategy identifies how a site is paginated.
type Strategy string

const (
	// StrategyNone fetches a single configured list page.
	StrategyNone Strategy = "none"
	// StrategySearchIncrement appends page=N to a search URL until exhausted.
	StrategySearchIncrement Strategy = "search-increment"
	// StrategyExplicitList iterates a pre-enumerated URL list once.
	StrategyExplicitList Strategy = "explicit-list"
	// StrategyNumericRange walks an integer page range through a URL pattern.
	StrategyNumericRange Strategy = "numeric-range"
)

// Duration is a time.Duration that unmarshals from YAML as either a Go
// duration string ("1500ms") or a bare number of seconds (2, 1.5).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		if parsed, perr := time.ParseDuration(asString); perr == nil {
			*d = Duration(parsed)
			return nil
		}
	}
	var seconds float64
	if err := node.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration %q", node.Value)
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SelectorList is an ordered sequence of candidate CSS selectors for one
// field. YAML accepts either a single scalar or a sequence.
type SelectorList []string

// UnmarshalYAML accepts "h3 a" as shorthand for ["h3 a"].
func (s *SelectorList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*s = SelectorList{single}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Selectors maps each extractable field to its candidate selectors.
type Selectors struct {
	Listing   SelectorList `yaml:"listing"`
	Name      SelectorList `yaml:"name"`
	Website   SelectorList `yaml:"website"`
	Phone     SelectorList `yaml:"phone"`
	Email     SelectorList `yaml:"email"`
	Address   SelectorList `yaml:"address"`
	City      SelectorList `yaml:"city"`
	State     SelectorList `yaml:"state"`
	ZipCode   SelectorList `yaml:"zip_code"`
	Specialty SelectorList `yaml:"specialty"`
	NextPage  SelectorList `yaml:"next_page"`
}

// Pagination configures numeric-range pagination. URLPattern substitutes
// {base_url} and {page}; with FirstPageNoSuffix the first page is fetched
// from the list URL itself.
type Pagination struct {
	Enabled           bool     `yaml:"enabled"`
	StartPage         int      `yaml:"start_page"`
	EndPage           int      `yaml:"end_page"`
	URLPattern        string   `yaml:"url_pattern"`
	FirstPageNoSuffix bool     `yaml:"first_page_no_suffix"`
	DelayBetweenPages Duration `yaml:"delay_between_pages"`
}

// Profile is the immutable configuration for one target site.
type Profile struct {
	Name              string     `yaml:"name" validate:"required"`
	BaseURL           string     `yaml:"base_url" validate:"required,url"`
	SearchURLTemplate string     `yaml:"search_url_template"`
	ListURL           string     `yaml:"list_url"`
	ListURLs          []string   `yaml:"list_urls"`
	RateLimit         Duration   `yaml:"rate_limit"`
	RequiresJS        bool       `yaml:"requires_js"`
	Pagination        Pagination `yaml:"pagination"`
	OutputFile        string     `yaml:"output_file"`
	Selectors         Selectors  `yaml:"selectors"`

	// BlockPhrases drives the block-page heuristic for this site. Empty
	// means the default challenge-page phrases.
	BlockPhrases []string `yaml:"block_phrases"`

	// LookupEmails enables the secondary per-listing fetch of the resolved
	// website to mine an email address. Off by default: it dominates run
	// latency.
	LookupEmails bool `yaml:"lookup_emails"`
}

var validate = validator.New()

// Validate checks the profile's structural invariants: a URL source must be
// configured and the listing and name selector lists must be non-empty.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if p.SearchURLTemplate == "" && p.ListURL == "" && len(p.ListURLs) == 0 {
		return fmt.Errorf("profile %q: one of search_url_template, list_url, list_urls is required", p.Name)
	}
	if len(p.Selectors.Listing) == 0 {
		return fmt.Errorf("profile %q: listing selectors must not be empty", p.Name)
	}
	if len(p.Selectors.Name) == 0 {
		return fmt.Errorf("profile %q: name selectors must not be empty", p.Name)
	}
	if p.Pagination.Enabled {
		if p.Pagination.EndPage < p.Pagination.StartPage {
			return fmt.Errorf("profile %q: pagination end_page %d before start_page %d",
				p.Name, p.Pagination.EndPage, p.Pagination.StartPage)
		}
		if p.Pagination.URLPattern == "" {
			return fmt.Errorf("profile %q: pagination requires url_pattern", p.Name)
		}
	}
	return nil
}

// Strategy derives the pagination strategy from which URL source and
// pagination settings are present.
func (p *Profile) Strategy() Strategy {
	switch {
	case p.Pagination.Enabled:
		return StrategyNumericRange
	case len(p.ListURLs) > 0:
		return StrategyExplicitList
	case p.SearchURLTemplate != "":
		return StrategySearchIncrement
	default:
		return StrategyNone
	}
}

// defaultBlockPhrases are the phrases the block-page heuristic looks for
// when a profile does not configure its own.
var defaultBlockPhrases = []string{
	"access denied",
	"why have i been blocked",
	"attention required",
}

// BlockPagePhrases returns the phrases used by the block-page heuristic.
func (p *Profile) BlockPagePhrases() []string {
	if len(p.BlockPhrases) > 0 {
		return p.BlockPhrases
	}
	return defaultBlockPhrases
}

// LoadFile reads additional profiles from a YAML file keyed by site name.
func LoadFile(path string) (map[string]*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var raw map[string]*Profile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for name, p := range raw {
		if p.Name == "" {
			p.Name = name
		}
		if p.RateLimit == 0 {
			p.RateLimit = Duration(time.Second)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return raw, nil
}
