package statblock

import (
	"regexp"

	"github.com/cory-johannsen/srdcrawl/internal/text"
)

// Abilities is the parsed "Abilities" row. A missing score ("-") is 0.
type Abilities struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

var abilityRewrites = text.Rules{
	text.Literal(" (with gloves)", ""),
	text.Literal(" (with headband)", ""),
	text.Literal(" -, ", " 0, "),
	text.Regex(` -$`, " 0"),
	text.Literal(" , ", " 0, "),
	text.Literal("*", ""),
}

var abilitiesPattern = regexp.MustCompile(`^str (\d+), dex (\d+), con (\d+), int (\d+), wis (\d+), cha (\d+)$`)

func (p *Parser) parseAbilities(value string, out Parsed) error {
	value = abilityRewrites.Apply(value)
	m := abilitiesPattern.FindStringSubmatch(value)
	if m == nil {
		return unparsed("abilities", value)
	}
	out["abilities"] = Abilities{
		Strength:     toInt(m[1]),
		Dexterity:    toInt(m[2]),
		Constitution: toInt(m[3]),
		Intelligence: toInt(m[4]),
		Wisdom:       toInt(m[5]),
		Charisma:     toInt(m[6]),
	}
	return nil
}

// skillRewrites leaves one skill per ";"-separated part. Commas inside
// parenthesized conditional bonuses are restored after the global swap.
var skillRewrites = text.Rules{
	text.Literal("move silently +10, (+3 following tracks)", "move silently +10 (+3 following tracks)"),
	text.Literal(",", ";"),
	text.Literal("*", ""),
	text.Regex(`\+\s+(\d)`, "+${1}"),
	text.Until(`(\([^)]+);`, "${1},"),
	text.Literal("spot +16 survival +16", "spot +16 ; survival +16"),
	text.Literal("spot +11 swim +12", "spot +11 ; swim +12"),
}

// struckModifier keeps the second of two adjacent modifiers, which is what a
// struck-through correction leaves behind.
var struckModifier = regexp.MustCompile(`([+\-]\d+)\s+([+\-]\d+)$`)

var (
	skillPlain      = regexp.MustCompile(`^(.+) ([+\-]?\d+)$`)
	skillTwoBonuses = regexp.MustCompile(`^(.+) ([+\-]?\d+) \(([+\-]?\d+) (.+), ([+\-]?\d+) (.+)\)$`)
	skillOneBonus   = regexp.MustCompile(`^(.+) ([+\-]?\d+) \(([+\-]?\d+) (.+)\)$`)
)

// parseSkills yields a map from skill name to either its modifier or, for
// skills with conditional bonuses, a map holding "base" and each condition.
func (p *Parser) parseSkills(value string, out Parsed) error {
	skills := map[string]any{}
	for _, part := range text.SplitTrim(skillRewrites.Apply(value), ";") {
		part = text.ReplaceFirst(struckModifier, part, "${2}")

		if part == "-" {
			continue
		}
		if m := skillPlain.FindStringSubmatch(part); m != nil {
			skills[m[1]] = toInt(m[2])
		} else if m := skillTwoBonuses.FindStringSubmatch(part); m != nil {
			skills[m[1]] = map[string]int{
				"base": toInt(m[2]),
				m[4]:   toInt(m[3]),
				m[6]:   toInt(m[5]),
			}
		} else if m := skillOneBonus.FindStringSubmatch(part); m != nil {
			skills[m[1]] = map[string]int{
				"base": toInt(m[2]),
				m[4]:   toInt(m[3]),
			}
		} else {
			return unparsed("skills", part)
		}
	}
	if len(skills) > 0 {
		out["skills"] = skills
	}
	return nil
}

var featRewrites = text.Rules{
	text.Literal("blind fight", "blind-fight"),
	text.Literal(",", ";"),
	text.Literal(" plus human extra feat", "; human extra feat"),
	text.Until(`(\([^)]+);`, "${1},"),
}

// featCleanup drops list punctuation and the bonus-feat marker "b".
var featCleanup = text.Rules{
	text.RegexOnce(`\.$`, ""),
	text.RegexOnce(`^and\s+`, ""),
	text.RegexOnce(`\s*b$`, ""),
}

func (p *Parser) parseFeats(value string, out Parsed) error {
	var feats []string
	seen := map[string]bool{}
	for _, part := range text.SplitTrim(featRewrites.Apply(value), ";") {
		part = featCleanup.Apply(part)
		if part == "" || part == "-" || seen[part] {
			continue
		}
		seen[part] = true
		feats = append(feats, part)
	}
	if len(feats) > 0 {
		out["feats"] = feats
	}
	return nil
}
