package tools

import (
	"regexp"
	"strings"

	"github.com/studioscout/studioscout/internal/logger"
)

// Some directory pages run a phone or postal code straight into the email
// address inside one text node, producing cells like
// "212.477.0287info@cookfox.com". The local part of the email pattern must
// start with a letter so the digit prefix stays out of the match.
var (
	repairEmailRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9._%+-]*@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	nonDigitRe    = regexp.MustCompile(`\D`)
)

// SplitContactCell separates a merged contact cell into its phone, zip, and
// email parts. A digit prefix of exactly five digits is a postal code, seven
// or more is a phone number, anything else is dropped. A cell without an
// email-shaped token passes through unchanged in the email position.
func SplitContactCell(value string) (phone, zipCode, email string) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", "", ""
	}
	m := repairEmailRe.FindStringIndex(raw)
	if m == nil {
		return "", "", raw
	}
	email = raw[m[0]:m[1]]
	prefix := strings.TrimSpace(raw[:m[0]])
	if prefix == "" {
		return "", "", email
	}
	digits := nonDigitRe.ReplaceAllString(prefix, "")
	switch {
	case len(digits) == 5:
		return "", prefix, email
	case len(digits) >= 7:
		return prefix, "", email
	default:
		return "", "", email
	}
}

// RepairFile rewrites a CSV in place, splitting merged email cells into
// their phone, zip_code, and email columns. Existing phone and zip values
// are never overwritten. Returns the number of rows changed.
func RepairFile(path string) (int, error) {
	t, err := loadTable(path)
	if err != nil {
		return 0, err
	}
	if !t.hasColumn("email") || len(t.rows) == 0 {
		return 0, nil
	}

	changed := 0
	for i, row := range t.rows {
		emailBefore := t.get(row, "email")
		if emailBefore == "" {
			continue
		}
		phone, zipCode, email := SplitContactCell(emailBefore)
		if email == emailBefore {
			continue
		}
		row = t.set(row, "email", email)
		if phone != "" && t.get(row, "phone") == "" {
			row = t.set(row, "phone", phone)
		}
		if zipCode != "" && t.get(row, "zip_code") == "" {
			row = t.set(row, "zip_code", zipCode)
		}
		t.rows[i] = row
		changed++
	}

	if changed > 0 {
		if err := t.save(path); err != nil {
			return 0, err
		}
	}
	logger.Info("repaired contact cells", "path", path, "rows_changed", changed)
	return changed, nil
}
