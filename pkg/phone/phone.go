package phone

import "strings"

// Normalize reduces a phone number to its canonical digit string.
// Spaces, dashes, dots, parentheses and a leading "+" are stripped;
// anything left that is not a digit is dropped as well. The result is
// the only form ever used for comparisons and deduplication.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// International returns the "+"-prefixed form expected by gateways that
// require E.164-style recipients.
func International(raw string) string {
	digits := Normalize(raw)
	if digits == "" {
		return ""
	}

	return "+" + digits
}

// Variants lists the storage formats under which the same number may
// appear in contact records: bare digits, "+"-prefixed, and the
// leading-zero national form for the given country calling code.
// The canonical form is always first.
func Variants(raw string, countryCode string) []string {
	digits := Normalize(raw)
	if digits == "" {
		return nil
	}

	variants := []string{digits, "+" + digits}

	cc := Normalize(countryCode)
	if cc != "" {
		if rest, ok := strings.CutPrefix(digits, cc); ok && rest != "" {
			variants = append(variants, "0"+rest)
		}

		if rest, ok := strings.CutPrefix(digits, "0"); ok && rest != "" {
			variants = append(variants, cc+rest, "+"+cc+rest)
		}
	}

	return variants
}
