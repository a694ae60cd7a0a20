// Package text holds the canonicalization helpers shared by the statblock
// and spell parsers: the text cleaner, header normalization, and ordered
// rewrite tables.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// punctuation maps look-alike Unicode punctuation to ASCII.
var punctuation = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"’", "'", // right single quotation mark
)

var headerColon = regexp.MustCompile(`:\s*`)

// Clean canonicalizes extracted text: NFC composition, whitespace runs
// collapsed to a single space, ends trimmed, and dash/quote look-alikes
// replaced with their ASCII equivalents.
//
// Postcondition: Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return punctuation.Replace(s)
}

// NormalizeHeader turns a statblock row header such as "Base Attack/Grapple:"
// into its field key, "base_attack/grapple".
func NormalizeHeader(s string) string {
	s = Clean(s)
	s = ReplaceFirst(headerColon, s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

// Split splits s around sep and drops trailing empty fields, so that
// Split("a;b;", ";") yields ["a", "b"] and Split("", ";") yields nothing.
func Split(s, sep string) []string {
	return dropTrailingEmpty(strings.Split(s, sep))
}

// SplitRegexp is Split with a pattern separator.
func SplitRegexp(re *regexp.Regexp, s string) []string {
	return dropTrailingEmpty(re.Split(s, -1))
}

// SplitTrim splits like Split and trims surrounding whitespace from each part.
func SplitTrim(s, sep string) []string {
	parts := Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func dropTrailingEmpty(parts []string) []string {
	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}
	if n == 0 {
		return nil
	}
	return parts[:n]
}
