package text

import (
	"regexp"
	"strings"
)

type mode int

const (
	replaceAll mode = iota
	replaceFirst
	untilFixed
)

// Rule is one entry of an ordered rewrite table. Build rules with Literal,
// LiteralOnce, Regex, RegexOnce, or Until.
//
// Regex replacements use regexp.Expand syntax: ${1} for the first group.
type Rule struct {
	old  string
	re   *regexp.Regexp
	repl string
	mode mode
}

// Literal replaces every occurrence of old.
func Literal(old, repl string) Rule {
	return Rule{old: old, repl: repl, mode: replaceAll}
}

// LiteralOnce replaces the first occurrence of old.
func LiteralOnce(old, repl string) Rule {
	return Rule{old: old, repl: repl, mode: replaceFirst}
}

// Regex replaces every match of expr.
//
// Precondition: expr must compile; Regex panics otherwise.
func Regex(expr, repl string) Rule {
	return Rule{re: regexp.MustCompile(expr), repl: repl, mode: replaceAll}
}

// RegexOnce replaces the first match of expr.
//
// Precondition: expr must compile; RegexOnce panics otherwise.
func RegexOnce(expr, repl string) Rule {
	return Rule{re: regexp.MustCompile(expr), repl: repl, mode: replaceFirst}
}

// Until replaces the first match of expr repeatedly until the text stops
// changing.
//
// Precondition: expr must compile and each replacement must move the text
// towards a state with no match, or Apply will not terminate.
func Until(expr, repl string) Rule {
	return Rule{re: regexp.MustCompile(expr), repl: repl, mode: untilFixed}
}

// Apply runs the rule over s.
func (r Rule) Apply(s string) string {
	switch r.mode {
	case replaceFirst:
		if r.re == nil {
			return strings.Replace(s, r.old, r.repl, 1)
		}
		return ReplaceFirst(r.re, s, r.repl)
	case untilFixed:
		for {
			next := ReplaceFirst(r.re, s, r.repl)
			if next == s {
				return s
			}
			s = next
		}
	default:
		if r.re == nil {
			return strings.ReplaceAll(s, r.old, r.repl)
		}
		return r.re.ReplaceAllString(s, r.repl)
	}
}

// Rules is an ordered rewrite table. Order matters: later rules may rely on
// text produced by earlier ones.
type Rules []Rule

// Apply runs every rule in order.
func (rs Rules) Apply(s string) string {
	for _, r := range rs {
		s = r.Apply(s)
	}
	return s
}

// ReplaceFirst replaces only the leftmost match of re in s, expanding
// template references against that match.
func ReplaceFirst(re *regexp.Regexp, s, template string) string {
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	out := re.ExpandString(nil, template, s, m)
	return s[:m[0]] + string(out) + s[m[1]:]
}
