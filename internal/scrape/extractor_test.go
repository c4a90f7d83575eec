package scrape

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/studioscout/studioscout/internal/fetch"
	"github.com/studioscout/studioscout/internal/profile"
)

func listingFrom(t *testing.T, html, root string) Listing {
	t.Helper()
	doc := parseDoc(t, html)
	sel := doc.Find(root).First()
	if sel.Length() == 0 {
		t.Fatalf("root selector %q matched nothing", root)
	}
	return Listing{Selection: sel, SourceURL: "https://example.com/list"}
}

func extractorProfile() *profile.Profile {
	return &profile.Profile{
		Name:    "test",
		BaseURL: "https://example.com",
		ListURL: "https://example.com/list",
		Selectors: profile.Selectors{
			Listing: profile.SelectorList{".listing"},
			Name:    profile.SelectorList{"h3", "h5"},
			Website: profile.SelectorList{"a.website"},
			Phone:   profile.SelectorList{".phone"},
			Email:   profile.SelectorList{"a.email"},
		},
	}
}

func TestExtract_NumberedListingEndToEnd(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>1. Jane Doe</h3>
		<a href="https://janedoe.com">Website</a>
		<p>Phone: 212-555-0100</p>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	r := e.Extract(context.Background(), listing)
	if r == nil {
		t.Fatal("expected a record")
	}
	if r.Name != "Jane Doe" {
		t.Errorf("Name = %q, want %q", r.Name, "Jane Doe")
	}
	if r.Website != "https://janedoe.com" {
		t.Errorf("Website = %q, want %q", r.Website, "https://janedoe.com")
	}
	if r.Phone != "(212) 555-0100" {
		t.Errorf("Phone = %q, want %q", r.Phone, "(212) 555-0100")
	}
	if r.SourceURL != "https://example.com/list" {
		t.Errorf("SourceURL = %q", r.SourceURL)
	}
}

func TestExtract_NoUsableNameReturnsNil(t *testing.T) {
	e := NewExtractor(extractorProfile(), nil)
	cases := []string{
		`<div class="listing"><p>just prose, no heading</p></div>`,
		`<div class="listing"><h3>No results found</h3></div>`,
		`<div class="listing"><h3>Loading...</h3></div>`,
		`<div class="listing"><h3>X</h3></div>`,
	}
	for _, html := range cases {
		listing := listingFrom(t, html, ".listing")
		if r := e.Extract(context.Background(), listing); r != nil {
			t.Errorf("expected nil record for %q, got name %q", html, r.Name)
		}
	}
}

func TestCleanName(t *testing.T) {
	e := NewExtractor(extractorProfile(), nil)
	tests := []struct {
		in, want string
	}{
		{"1. Jane Doe", "Jane Doe"},
		{"23.   Studio Triple", "Studio Triple"},
		{"Acme Studio | Architects in New York", "Acme Studio"},
		{"Form Lab | Top Interior Designers in Miami", "Form Lab"},
		{"  spaced   out\n name ", "spaced out name"},
		{"Search results", ""},
		{"Please try again later", ""},
		{"A", ""},
		{strings.Repeat("x", 500), ""},
	}
	for _, tt := range tests {
		if got := e.cleanName(tt.in); got != tt.want {
			t.Errorf("cleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveWebsite_SelectorWins(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a class="website" href="https://acme.design">site</a>
		<a href="https://other.example.net">other</a>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	if got := e.resolveWebsite(listing.Selection); got != "https://acme.design" {
		t.Errorf("resolveWebsite = %q", got)
	}
}

func TestResolveWebsite_ScanSkipsSocialAndInternal(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a href="https://www.instagram.com/acme">Instagram</a>
		<a href="https://example.com/profiles/acme">profile</a>
		<a href="/contact">contact</a>
		<a href="https://acme.design">Visit website</a>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	if got := e.resolveWebsite(listing.Selection); got != "https://acme.design" {
		t.Errorf("resolveWebsite = %q", got)
	}
}

func TestResolveWebsite_FromTextPattern(t *testing.T) {
	e := NewExtractor(extractorProfile(), nil)
	tests := []struct {
		html, want string
	}{
		{`<div class="listing"><h3>A Studio</h3><p>Website: acme.design</p></div>`, "http://www.acme.design"},
		{`<div class="listing"><h3>A Studio</h3><p>Website: www.acme.design</p></div>`, "http://www.acme.design"},
		{`<div class="listing"><h3>A Studio</h3><p>Website: https://acme.design</p></div>`, "https://acme.design"},
		{`<div class="listing"><h3>A Studio</h3><p>Website: pending</p></div>`, ""},
	}
	for _, tt := range tests {
		listing := listingFrom(t, tt.html, ".listing")
		if got := e.resolveWebsite(listing.Selection); got != tt.want {
			t.Errorf("resolveWebsite(%q) = %q, want %q", tt.html, got, tt.want)
		}
	}
}

func TestResolveWebsite_ImageWrappedLink(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a href="/gallery"><img src="thumb.jpg"></a>
		<a href="https://acme.design"><img src="portrait.jpg"></a>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	if got := e.resolveWebsite(listing.Selection); got != "https://acme.design" {
		t.Errorf("resolveWebsite = %q", got)
	}
}

func TestResolveWebsite_RelativeResolvedAgainstBase(t *testing.T) {
	prof := extractorProfile()
	prof.Selectors.Website = profile.SelectorList{"a.website"}
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a class="website" href="/firms/acme">site</a>
	</div>`, ".listing")

	e := NewExtractor(prof, nil)
	if got := e.resolveWebsite(listing.Selection); got != "https://example.com/firms/acme" {
		t.Errorf("resolveWebsite = %q", got)
	}
}

func TestResolveEmail_MailtoWins(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a class="email" href="mailto:Hello@Acme.design">email us</a>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	r := e.Extract(context.Background(), listing)
	if r == nil || r.Email != "hello@acme.design" {
		t.Fatalf("expected normalized mailto email, got %+v", r)
	}
}

func TestResolveEmail_TextTokenSkipsPlaceholders(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<p>Contact noreply@acme.design or info@acme.design for details.</p>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	r := e.Extract(context.Background(), listing)
	if r == nil || r.Email != "info@acme.design" {
		t.Fatalf("expected placeholder skipped, got %+v", r)
	}
}

type fakePages struct {
	pages map[string]string
	calls int
}

func (f *fakePages) Fetch(_ context.Context, pageURL string) (*fetch.Page, error) {
	f.calls++
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("no page for %s", pageURL)
	}
	return fetch.NewPageFromHTML(pageURL, body, 200)
}

func TestResolveEmail_DetailPageLookup(t *testing.T) {
	prof := extractorProfile()
	prof.LookupEmails = true
	pages := &fakePages{pages: map[string]string{
		"https://acme.design": `<html><body>Reach us at studio@acme.design</body></html>`,
	}}

	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a class="website" href="https://acme.design">site</a>
	</div>`, ".listing")

	e := NewExtractor(prof, pages)
	r := e.Extract(context.Background(), listing)
	if r == nil || r.Email != "studio@acme.design" {
		t.Fatalf("expected detail-page email, got %+v", r)
	}
	if pages.calls != 1 {
		t.Errorf("expected 1 detail fetch, got %d", pages.calls)
	}
}

func TestResolveEmail_LookupDisabledByDefault(t *testing.T) {
	pages := &fakePages{pages: map[string]string{}}
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a class="website" href="https://acme.design">site</a>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), pages)
	r := e.Extract(context.Background(), listing)
	if r == nil {
		t.Fatal("expected a record")
	}
	if r.Email != "" || pages.calls != 0 {
		t.Errorf("expected no lookup, got email %q after %d calls", r.Email, pages.calls)
	}
}

func TestCollectSocialLinks(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<a href="https://www.instagram.com/acme">ig</a>
		<a href="https://x.com/acme">x</a>
		<a href="https://instagram.com/acme-second">ig again</a>
		<a href="https://acme.design">site</a>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	social := e.collectSocialLinks(listing.Selection)
	if len(social) != 2 {
		t.Fatalf("expected 2 platforms, got %v", social)
	}
	if social["instagram"] != "https://www.instagram.com/acme" {
		t.Errorf("instagram = %q, want first occurrence kept", social["instagram"])
	}
	if social["twitter"] != "https://x.com/acme" {
		t.Errorf("twitter = %q", social["twitter"])
	}
}

func TestExtract_HeadingAsListingRoot(t *testing.T) {
	// When a heading itself is the listing (no container), the name selector
	// matches the root element rather than a descendant.
	doc := parseDoc(t, `<h3>5. Studio North</h3>`)
	listing := Listing{Selection: doc.Find("h3").First(), SourceURL: "u"}

	e := NewExtractor(extractorProfile(), nil)
	r := e.Extract(context.Background(), listing)
	if r == nil || r.Name != "Studio North" {
		t.Fatalf("expected heading text as name, got %+v", r)
	}
}

func TestExtract_PhoneLabelFallback(t *testing.T) {
	listing := listingFrom(t, `<div class="listing">
		<h3>Acme</h3>
		<span>Tel. +1 415 555 0100</span>
	</div>`, ".listing")

	e := NewExtractor(extractorProfile(), nil)
	r := e.Extract(context.Background(), listing)
	if r == nil || r.Phone != "+1 (415) 555-0100" {
		t.Fatalf("expected labeled phone normalized, got %+v", r)
	}
}
