// Package record defines the normalized contact record produced by a scrape
// and the identity-based deduplication applied across pages and runs.
package record

import (
	"regexp"
	"sort"
	"strings"
)

// Record is one business contact extracted from a directory listing.
// Name is the only required field; everything else is best-effort.
type Record struct {
	Name        string
	Email       string
	Phone       string
	Website     string
	Address     string
	City        string
	State       string
	ZipCode     string
	SocialMedia map[string]string
	Specialty   string
	SourceURL   string
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

var nonDigitRe = regexp.MustCompile(`\D`)

// New builds a Record carrying only its required fields. Callers fill in
// the rest and run Normalize before handing the record on.
func New(name, sourceURL string) *Record {
	return &Record{Name: name, SourceURL: sourceURL}
}

// Normalize applies field normalization in place and returns the record.
// Invalid emails are dropped rather than kept in a broken form.
func (r *Record) Normalize() *Record {
	r.Email = NormalizeEmail(r.Email)
	r.Phone = NormalizePhone(r.Phone)
	return r
}

// NormalizeEmail lowercases and validates an email address. Anything that
// does not look like local@domain.tld with a real TLD comes back empty.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	if !emailRe.MatchString(email) {
		return ""
	}
	return email
}

// NormalizePhone formats US-style phone numbers. Ten digits become
// "(XXX) XXX-XXXX", eleven digits with a leading 1 become
// "+1 (XXX) XXX-XXXX"; any other digit count passes through trimmed.
func NormalizePhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}
	digits := nonDigitRe.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	default:
		return strings.TrimSpace(phone)
	}
}

// Key is the identity used for deduplication: the lowercased name paired
// with the lowercased website, falling back to email, then name itself.
type Key struct {
	Name       string
	Identifier string
}

// IdentityKey computes the record's identity key. It is derived on demand
// and never stored on the record.
func (r *Record) IdentityKey() Key {
	id := r.Website
	if id == "" {
		id = r.Email
	}
	if id == "" {
		id = r.Name
	}
	return Key{
		Name:       strings.ToLower(r.Name),
		Identifier: strings.ToLower(id),
	}
}

// SocialMediaString serializes the social-media map as "key: value, key: value"
// with keys in sorted order so output is deterministic.
func (r *Record) SocialMediaString() string {
	if len(r.SocialMedia) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.SocialMedia))
	for k := range r.SocialMedia {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+r.SocialMedia[k])
	}
	return strings.Join(parts, ", ")
}
