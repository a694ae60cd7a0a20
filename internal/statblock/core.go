package statblock

import (
	"regexp"
	"strings"

	"github.com/cory-johannsen/srdcrawl/internal/dice"
	"github.com/cory-johannsen/srdcrawl/internal/text"
)

var sizeTypePattern = regexp.MustCompile(`^(\S+)\s+([^(]+)(\s+\(.+\))?$`)

var subtypeTrim = text.Rules{
	text.RegexOnce(`^\(`, ""),
	text.RegexOnce(`\)$`, ""),
}

func (p *Parser) parseSizeType(value string, out Parsed) error {
	m := sizeTypePattern.FindStringSubmatch(strings.ToLower(value))
	if m == nil {
		return unparsed("size/type", value)
	}
	size, err := p.vocab.Sizes.Normalize(m[1])
	if err != nil {
		return err
	}
	kind, err := p.vocab.Types.Normalize(m[2])
	if err != nil {
		return err
	}
	out["size"] = size
	out["type"] = kind

	if m[3] == "" {
		return nil
	}
	inner := strings.TrimSpace(subtypeTrim.Apply(strings.TrimSpace(m[3])))
	subtypes := []string{}
	for _, s := range text.Split(inner, ", ") {
		st, err := p.vocab.Subtypes.Normalize(s)
		if err != nil {
			return err
		}
		subtypes = append(subtypes, st)
	}
	out["subtype"] = subtypes
	return nil
}

// hitDiceRewrites turns statblock hit-dice prose into a roll specification:
// "1/2 d8 plus 1d4 (3 hp)" becomes "(1/2)d8 + 1d4".
var hitDiceRewrites = text.Rules{
	text.RegexOnce(`\s+\(\d+\s+hp\)$`, ""),
	text.Regex(`(\d+/\d+)\s+`, "(${1})"),
	text.Regex(`d(\d+)\s+\+\s+(\d+)$`, "d${1}+${2}"),
	text.Regex(`\s+plus\s+`, " + "),
	text.Regex(`(\d+d\d+)\+(\d+d\d+)`, "${1} + ${2}"),
}

func (p *Parser) parseHitDice(value string, out Parsed) error {
	spec := hitDiceRewrites.Apply(value)
	count, err := dice.HitDieCount(spec)
	if err != nil {
		return err
	}
	out["hit_dice"] = count.Value()
	out["hit_points"] = spec
	return nil
}

func (p *Parser) parseInitiative(value string, out Parsed) error {
	if !leadingInt.MatchString(value) {
		return unparsed("initiative", value)
	}
	out["initiative"] = toInt(value)
	return nil
}

var speedRewrites = text.Rules{
	text.Regex(`\s+\(\d+\s+squares?(; can't run)?\)`, ""),
	text.Regex(`\s+\(can't run\)`, ""),
	text.Regex(`\s+ft\.?`, ""),
	text.Literal(";", ","),
}

// speedExceptions are armor-conditional and oddly phrased movement modes,
// matched exactly before the general patterns.
var speedExceptions = map[string]func(speed map[string]any){
	"base fly speed 20 (perfect)": func(s map[string]any) {
		s["fly"] = 20
		s["fly_type"] = "perfect"
	},
	"fly 15 (perfect) in chainmail": func(s map[string]any) {
		s["chainmail"] = map[string]any{"fly": 15, "fly_type": "perfect"}
	},
	"swim 30 in breastplate": func(s map[string]any) {
		s["breastplate"] = map[string]any{"swim": 30}
	},
	"fly 40 (average) in plate barding": func(s map[string]any) {
		s["plate barding"] = map[string]any{"fly": 40, "fly_type": "average"}
	},
}

type speedPattern struct {
	re    *regexp.Regexp
	apply func(m []string, speed map[string]any)
}

func rate(key string) func([]string, map[string]any) {
	return func(m []string, s map[string]any) { s[key] = toInt(m[1]) }
}

var speedPatterns = []speedPattern{
	{regexp.MustCompile(`^(\d+)\s+in\s+(.+)$`), func(m []string, s map[string]any) { s[m[2]] = toInt(m[1]) }},
	{regexp.MustCompile(`^base\s+speed\s+(\d+)$`), rate("base")},
	{regexp.MustCompile(`^base\s+land\s+speed\s+(\d+)$`), rate("base")},
	{regexp.MustCompile(`^climb\s+(\d+)$`), rate("climb")},
	{regexp.MustCompile(`^swim\s+(\d+)$`), rate("swim")},
	{regexp.MustCompile(`^swim\s+speed\s+(\d+)$`), rate("swim")},
	{regexp.MustCompile(`^burrow\s+(\d+)$`), rate("burrow")},
	{regexp.MustCompile(`^fly\s+(\d+)\s*\(([a-z]+)\)$`), func(m []string, s map[string]any) {
		s["fly"] = toInt(m[1])
		s["fly_type"] = m[2]
	}},
	{regexp.MustCompile(`^fly\s+(\d+)$`), rate("fly")},
	{regexp.MustCompile(`^(\d+)\s+wheels$`), rate("wheels")},
	{regexp.MustCompile(`^(\d+)\s+legs$`), rate("legs")},
	{regexp.MustCompile(`^(\d+)\s+multiple\s+legs$`), rate("multiple_legs")},
	{regexp.MustCompile(`^(\d+)$`), rate("base")},
}

func (p *Parser) parseSpeed(value string, out Parsed) error {
	speed := map[string]any{}
	if strings.Contains(value, "can't run") {
		speed["run"] = false
	}

	rewritten := speedRewrites.Apply(value)
	for _, part := range text.SplitTrim(rewritten, ", ") {
		if fn, ok := speedExceptions[part]; ok {
			fn(speed)
			continue
		}
		matched := false
		for _, sp := range speedPatterns {
			if m := sp.re.FindStringSubmatch(part); m != nil {
				sp.apply(m, speed)
				matched = true
				break
			}
		}
		if !matched {
			return unparsed("speed", part)
		}
	}
	out["speed"] = speed
	return nil
}
