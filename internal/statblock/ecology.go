package statblock

import (
	"regexp"
	"strings"

	"github.com/cory-johannsen/srdcrawl/internal/text"
)

var environmentRewrites = text.Rules{
	text.RegexOnce(`\s*\.$`, ""),
	text.RegexOnce(`a(n)?\s+`, ""),
	text.Regex(`(\S)\(`, "${1} ("),
}

func (p *Parser) parseEnvironment(value string, out Parsed) error {
	out["environment"] = environmentRewrites.Apply(value)
	return nil
}

// organizationRewrites leaves one group per ";"-separated part. Commas
// inside a group's parenthesized makeup are kept as " , ".
var organizationRewrites = text.Rules{
	text.Literal(" hyena; ", " hyena -- "),
	text.Literal("solitary solitary", "solitary"),
	text.Literal("solitary (1)", "solitary"),
	text.Literal(",", ";"),
	text.Literal(".", ""),
	text.Until(`(\([^)]+);`, "${1} , "),
	text.Literal(") or ", ") ; "),
	text.Regex(`^(\S+) or `, "${1} ; "),
	text.Regex(`\s+,\s+`, ", "),
}

var leadingOr = regexp.MustCompile(`^\s*or\s+`)

func (p *Parser) parseOrganization(value string, out Parsed) error {
	var orgs []string
	for _, part := range text.SplitTrim(organizationRewrites.Apply(value), ";") {
		part = text.ReplaceFirst(leadingOr, part, "")
		if part == "none" {
			continue
		}
		orgs = append(orgs, part)
	}
	if len(orgs) > 0 {
		out["organization"] = orgs
	}
	return nil
}

var challengeRatingRewrites = text.Rules{
	text.LiteralOnce(" (see text)", ""),
	text.LiteralOnce("(normal)", ""),
	text.LiteralOnce(") or ", ") ; "),
	text.LiteralOnce("4 (5 with irresistible dance)", "4 ; 5 (with irresistible dance)"),
}

func (p *Parser) parseChallengeRating(value string, out Parsed) error {
	ratings := text.SplitTrim(challengeRatingRewrites.Apply(value), ";")
	if ratings == nil {
		ratings = []string{}
	}
	out["challenge_rating"] = ratings
	return nil
}

var treasureRewrites = text.Rules{
	text.Literal("1/10th", "1/10"),
	text.Regex(`\bplus\b`, " ; "),
	text.Regex(`\band\b`, " ; "),
	text.Literal(" (+5 str=bonus)", ""),
	text.Literal("50%", "1/2"),
	text.Literal("double", "2x"),
	text.Literal("triple", "3x"),
	text.Regex(`\bhalf `, "1/2 "),
	text.Literal(" (including equipment)", ""),
	text.Regex(` \(including (.+)\)`, " ; ${1}"),
	text.Literal("possessions noted below", ""),
}

var (
	treasureSeparator = regexp.MustCompile(`[,;]\s+`)
	leadingAnd        = regexp.MustCompile(`^and `)
)

func (p *Parser) parseTreasure(value string, out Parsed) error {
	var treasure []string
	for _, part := range text.SplitRegexp(treasureSeparator, treasureRewrites.Apply(value)) {
		part = text.ReplaceFirst(leadingAnd, strings.TrimSpace(part), "")
		if contains([]string{"", "none", "possessions noted below"}, part) {
			continue
		}
		treasure = append(treasure, part)
	}
	if len(treasure) > 0 {
		out["treasure"] = treasure
	}
	return nil
}

var alignmentExceptions = map[string]string{
	"usually chaotic good(wood: usually neutral)": "usually chaotic good (wood: usually neutral)",
}

func (p *Parser) parseAlignment(value string, out Parsed) error {
	value = text.ReplaceFirst(trailingPeriod, value, "")
	if fixed, ok := alignmentExceptions[value]; ok {
		value = fixed
	}
	out["alignment"] = value
	return nil
}

var noAdvancement = []string{"-", "--", "no", "none", "by character class", "special (see below)"}

func (p *Parser) parseAdvancement(value string, out Parsed) error {
	switch {
	case contains(noAdvancement, value):
		return nil
	case value == "3-5 hd (medium), 6-10 hd (large), or by character class":
		out["advancement"] = []string{"3-5 hd (medium)", "6-10 hd (large)"}
	default:
		out["advancement"] = text.SplitTrim(value, "; ")
	}
	return nil
}

func (p *Parser) parseLevelAdjustment(value string, out Parsed) error {
	if value == "-" || value == "- (improved familiar)" {
		return nil
	}
	out["level_adjustment"] = value
	return nil
}
