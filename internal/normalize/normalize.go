// Package normalize turns raw, inconsistent extraction strings into values
// fit for comparison and storage. All functions are pure; failures surface
// as sentinel values, never as errors.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"salonscout/internal/model"
)

// Noise prefixes occasionally captured from UI chrome instead of the
// listing itself (navigation buttons, review tabs).
var noisePrefixes = []string{
	"搜尋", "前往", "路線", "導航", "評論",
	"Search", "Directions", "Reviews",
}

// Placeholder tokens that mean the page had not finished rendering.
var placeholderTokens = []string{
	"undefined", "null", "loading", "載入中", "...",
}

var (
	rePhoneDigits = regexp.MustCompile(`\d`)
	reLocalPhone  = regexp.MustCompile(`^0\d{1,2}-?\d{6,8}$`)
	reMobilePhone = regexp.MustCompile(`^09\d{2}-?\d{3}-?\d{3}$`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// NameResult carries both forms of a normalized name: Display preserves the
// original casing for storage, Folded is the case-folded comparison key.
type NameResult struct {
	Display string
	Folded  string
}

// Name normalizes a raw name candidate. ok is false when the input is
// empty, shorter than two runes after cleanup, or a render placeholder.
func Name(raw string) (NameResult, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NameResult{}, false
	}

	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	s = reSpaces.ReplaceAllString(s, " ")

	if utf8.RuneCountInString(s) < 2 {
		return NameResult{}, false
	}

	lower := strings.ToLower(s)
	for _, token := range placeholderTokens {
		if strings.Contains(lower, token) {
			return NameResult{}, false
		}
	}

	return NameResult{Display: s, Folded: lower}, true
}

// FoldName reduces an already-normalized display name to its comparison
// key under the punctuation-insensitive policy: case-folded with all
// punctuation, symbols and spaces removed.
func FoldName(display string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(display) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PhoneShape is a soft validity signal. Pattern mismatch never rejects a
// number on its own; the digit-count heuristic is the final gate.
type PhoneShape string

const (
	PhoneShapeLocal    PhoneShape = "local"    // 0X-XXXXXXX landline
	PhoneShapeMobile   PhoneShape = "mobile"   // 09XX-XXX-XXX
	PhoneShapeFreeform PhoneShape = "freeform" // enough digits, unknown layout
)

// Phone normalizes a raw phone candidate. Separators are stripped for the
// digit count; the original separator layout is kept in the stored value.
// Anything with fewer than eight digits degrades to the Unknown sentinel.
func Phone(raw string) (string, PhoneShape) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Unknown, PhoneShapeFreeform
	}

	digits := rePhoneDigits.FindAllString(s, -1)
	if len(digits) < 8 {
		return model.Unknown, PhoneShapeFreeform
	}

	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, s)

	switch {
	case reMobilePhone.MatchString(compact):
		return s, PhoneShapeMobile
	case reLocalPhone.MatchString(compact):
		return s, PhoneShapeLocal
	default:
		return s, PhoneShapeFreeform
	}
}

// Region describes the target region an address is checked against.
type Region struct {
	Tokens []string
	Postal *regexp.Regexp
}

// NewRegion compiles a region from config values. An empty or invalid
// postal pattern disables the postal check.
func NewRegion(tokens []string, postalPattern string) Region {
	region := Region{Tokens: tokens}
	if postalPattern != "" {
		if re, err := regexp.Compile(postalPattern); err == nil {
			region.Postal = re
		}
	}
	return region
}

// Address normalizes a raw address candidate. Free text passes through
// trimmed; inRegion reports whether the address mentions the target region
// by token or postal code. The filter decision belongs to the accumulator,
// not here.
func Address(raw string, region Region) (addr string, inRegion bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Unknown, false
	}

	for _, token := range region.Tokens {
		if token != "" && strings.Contains(s, token) {
			return s, true
		}
	}
	if region.Postal != nil && region.Postal.MatchString(s) {
		return s, true
	}
	return s, false
}
