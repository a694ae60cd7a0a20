package statblock

import (
	"math"
	"regexp"
	"strconv"

	"github.com/cory-johannsen/srdcrawl/internal/text"
)

var (
	baseAttackGrapple = regexp.MustCompile(`^([+\-]?\d+)/([+\-]?\d+)\*?$`)
	baseAttackOnly    = regexp.MustCompile(`^([+\-]?\d+)/-$`)
)

func (p *Parser) parseBaseAttackGrapple(value string, out Parsed) error {
	if m := baseAttackGrapple.FindStringSubmatch(value); m != nil {
		out["base_attack"] = toInt(m[1])
		out["grapple"] = toInt(m[2])
		return nil
	}
	if m := baseAttackOnly.FindStringSubmatch(value); m != nil {
		out["base_attack"] = toInt(m[1])
		return nil
	}
	// stirge
	if value == "+1/-11 (+1 when attached)" {
		out["base_attack"] = 1
		out["grapple"] = -11
		return nil
	}
	return unparsed("base_attack/grapple", value)
}

var attackRewrites = text.Rules{
	text.Literal("3d6 sonic or 3d6 electricity", "3d6 sonic/electricity"),
	text.Literal("*", ""),
}

var fullAttackRewrites = text.Rules{
	text.Literal("3d6 sonic or 3d6 electricity", "3d6 sonic/electricity"),
	text.Regex(`^\+2 slams`, "2 slams"),
	text.Literal("*", ""),
	text.Literal(";", " or "),
}

func (p *Parser) parseAttack(value string, out Parsed) error {
	if attacks := collect(attackRewrites.Apply(value), " or ", "-"); len(attacks) > 0 {
		out["attack"] = attacks
	}
	return nil
}

func (p *Parser) parseFullAttack(value string, out Parsed) error {
	if attacks := collect(fullAttackRewrites.Apply(value), " or ", "", "-"); len(attacks) > 0 {
		out["full_attack"] = attacks
	}
	return nil
}

var spaceRewrites = text.Rules{
	text.Literal(" (4 squares)", ""),
	text.Literal("2-1/2 ft", "2.5 ft"),
	text.Regex(`\s+ft\s*$`, ""),
}

var reachRewrites = text.Rules{
	text.Literal("ft.", "ft"),
	text.Literal("15ft", "15 ft"),
}

var (
	spaceNumber        = regexp.MustCompile(`^\d+(\.\d+)?`)
	reachPlain         = regexp.MustCompile(`^(\d+)\s+ft\s*$`)
	reachQualified     = regexp.MustCompile(`^(\d+)\s+ft\s+\(([^)]+)\)\s*$`)
	reachQualification = regexp.MustCompile(`^(\d+)\s+ft\s+(.+)\s*$`)
)

func (p *Parser) parseSpaceReach(value string, out Parsed) error {
	parts := text.Split(value, "./")
	if len(parts) != 2 {
		return unparsed("space/reach", value)
	}

	rawSpace := spaceNumber.FindString(spaceRewrites.Apply(parts[0]))
	if rawSpace == "" {
		return unparsed("space/reach", parts[0])
	}
	space, err := strconv.ParseFloat(rawSpace, 64)
	if err != nil {
		return unparsed("space/reach", parts[0])
	}

	rawReach := reachRewrites.Apply(parts[1])
	reach := map[string]int{}
	if m := reachPlain.FindStringSubmatch(rawReach); m != nil {
		reach["base"] = toInt(m[1])
	} else if m := reachQualified.FindStringSubmatch(rawReach); m != nil {
		reach["base"] = toInt(m[1])
		for _, q := range text.SplitTrim(m[2], ",") {
			qm := reachQualification.FindStringSubmatch(q)
			if qm == nil {
				return unparsed("space/reach", q)
			}
			reach[qm[2]] = toInt(qm[1])
		}
	} else {
		return unparsed("space/reach", rawReach)
	}

	out["space"] = number(space)
	out["reach"] = reach
	return nil
}

var specialAttackRewrites = text.Rules{
	text.Literal("paralyis", "paralysis"),
	text.Literal("psi-like abilities)", "psi-like abilities"),
}

func (p *Parser) parseSpecialAttacks(value string, out Parsed) error {
	attacks := collect(specialAttackRewrites.Apply(value), ",", "", "-", "none", "see text")
	if len(attacks) > 0 {
		out["special_attacks"] = attacks
	}
	return nil
}

// number returns f as an int when whole. Fractional spaces such as 2.5 ft
// stay fractional.
func number(f float64) any {
	if f == math.Trunc(f) {
		return int(f)
	}
	return f
}
