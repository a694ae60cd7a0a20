package statblock

import (
	"regexp"

	"github.com/cory-johannsen/srdcrawl/internal/text"
)

// ArmorClass is the parsed "Armor Class" row. Mods maps a bonus label such
// as "dex" or "natural" to its value.
type ArmorClass struct {
	Total      int            `json:"total"`
	Touch      int            `json:"touch"`
	FlatFooted *int           `json:"flat-footed,omitempty"`
	Mods       map[string]int `json:"mods,omitempty"`
}

// Saves is the parsed "Saves" row. Reflex is nil for creatures that cannot
// move; FortitudePoison is set only when a separate poison save is listed.
type Saves struct {
	Fortitude       int  `json:"fortitude"`
	FortitudePoison *int `json:"fortitude_poison,omitempty"`
	Reflex          *int `json:"reflex,omitempty"`
	Will            int  `json:"will"`
}

func intPtr(n int) *int { return &n }

var armorClassRewrites = text.Rules{
	text.LiteralOnce(",,", ","),
	text.RegexOnce(`^ac\s+`, ""),
}

var armorClassPattern = regexp.MustCompile(`^(\d+)\s+\(([^(]+)\),\s+touch\s+(-?\d+),\s+flat-footed\s+(-?\d+)$`)

// armorClassExceptions are historical entries with broken punctuation.
var armorClassExceptions = map[string]ArmorClass{
	"14 (-1 size, +5 natural), touch 9, flat-footed - (see text)": {
		Total: 14, Touch: 9,
		Mods: map[string]int{"size": -1, "natural": 5},
	},
	"14 (+2 dex, +2 size, touch 14, flat-footed 12": {
		Total: 14, Touch: 14, FlatFooted: intPtr(12),
		Mods: map[string]int{"dex": 2, "size": 2},
	},
	"23 (+1 dex, +6 natural, +4 scale mail, +2 heavy shield, touch 11, flat-footed 22": {
		Total: 23, Touch: 11, FlatFooted: intPtr(22),
		Mods: map[string]int{"dex": 1, "natural": 6, "scale mail": 4, "heavy shield": 2},
	},
}

type labeledBonus struct {
	re    *regexp.Regexp
	label string // empty: the label is the pattern's second group
}

// armorClassMods are tried in order against each modifier in the list.
var armorClassMods = []labeledBonus{
	{regexp.MustCompile(`^([+\-]?\d+)\s+size$`), "size"},
	{regexp.MustCompile(`^([+\-]?\d+)\s+dex$`), "dex"},
	{regexp.MustCompile(`^([+\-]?\d+)\s+natural(\s+armor)?$`), "natural"},
	{regexp.MustCompile(`^([+\-]?\d+)\s+deflection$`), "deflection"},
	{regexp.MustCompile(`^([+\-]?\d+)\s+dodge$`), "dodge"},
	{regexp.MustCompile(`^([+\-]?\d+)\s+insight$`), "insight"},
	{regexp.MustCompile(`^ring of protection \+1$`), "ring of protection +1"},
	{regexp.MustCompile(`^([+\-]?\d+)\s+(.+)$`), ""},
}

func (p *Parser) parseArmorClass(value string, out Parsed) error {
	value = armorClassRewrites.Apply(value)

	if ac, ok := armorClassExceptions[value]; ok {
		out["armor_class"] = copyArmorClass(ac)
		return nil
	}

	m := armorClassPattern.FindStringSubmatch(value)
	if m == nil {
		return unparsed("armor_class", value)
	}
	ac := ArmorClass{Total: toInt(m[1]), Touch: toInt(m[3]), FlatFooted: intPtr(toInt(m[4]))}
	mods := map[string]int{}
	for _, part := range text.SplitTrim(m[2], ",") {
		if err := addArmorMod(mods, part); err != nil {
			return err
		}
	}
	if len(mods) > 0 {
		ac.Mods = mods
	}
	out["armor_class"] = ac
	return nil
}

func addArmorMod(mods map[string]int, part string) error {
	for _, b := range armorClassMods {
		m := b.re.FindStringSubmatch(part)
		switch {
		case m == nil:
			continue
		case b.label == "ring of protection +1":
			mods[b.label] = 1
		case b.label == "":
			mods[m[2]] = toInt(m[1])
		default:
			mods[b.label] = toInt(m[1])
		}
		return nil
	}
	return unparsed("armor_class", part)
}

// copyArmorClass detaches an exception entry from the shared table.
func copyArmorClass(ac ArmorClass) ArmorClass {
	cp := ac
	if ac.FlatFooted != nil {
		cp.FlatFooted = intPtr(*ac.FlatFooted)
	}
	if ac.Mods != nil {
		cp.Mods = make(map[string]int, len(ac.Mods))
		for k, v := range ac.Mods {
			cp.Mods[k] = v
		}
	}
	return cp
}

var (
	savesPattern       = regexp.MustCompile(`^fort\s+([+\-]\d+)\*?, ref\s+([+\-]\d*)\*?, will\s+([+\-]\d+)\*?$`)
	savesPoisonPattern = regexp.MustCompile(`^fort\s+([+\-]\d+)\*? \(([+\-]\d+) against poison\), ref\s+([+\-]\d*)\*?, will\s+([+\-]\d+)\*?$`)
)

func (p *Parser) parseSaves(value string, out Parsed) error {
	var saves Saves
	var reflex string
	if m := savesPattern.FindStringSubmatch(value); m != nil {
		saves.Fortitude = toInt(m[1])
		reflex = m[2]
		saves.Will = toInt(m[3])
	} else if m := savesPoisonPattern.FindStringSubmatch(value); m != nil {
		saves.Fortitude = toInt(m[1])
		saves.FortitudePoison = intPtr(toInt(m[2]))
		reflex = m[3]
		saves.Will = toInt(m[4])
	} else {
		return unparsed("saves", value)
	}
	// A "-" reflex save means the creature cannot move.
	if reflex != "-" {
		saves.Reflex = intPtr(toInt(reflex))
	}
	out["saves"] = saves
	return nil
}

// specialQualityRewrites fixes typos, then maps resistance and immunity prose
// to one "; "-separated tag per effect, then rewrites damage reduction and
// spell resistance. Longer phrases come before their prefixes.
var specialQualityRewrites = text.Rules{
	text.Literal("60ft", "60 ft"),
	text.Literal("lowlight", "low-light"),
	text.Literal("see in darkness", "darkvision"),
	text.Literal("twoweapon", "two-weapon"),

	text.LiteralOnce("resistance to electricity 10, fire 10, and sonic 10", "electricity resistance (10) ; fire resistance (10) ; sonic resistance (10)"),
	text.LiteralOnce("resistance to acid 10, cold 10, and electricity 10", "acid resistance (10) ; cold resistance (10) ; electricity resistance (10)"),
	text.LiteralOnce("resistance to acid 5, cold 5, and electricity 5", "acid resistance (5) ; cold resistance (5) ; electricity resistance (5)"),
	text.LiteralOnce("resistance to cold 5, electricity 5, and fire 5", "cold resistance (5) ; electricity resistance (5) ; fire resistance (5)"),
	text.LiteralOnce("resistance to acid, cold, and electricity 5", "acid resistance (5) ; cold resistance (5) ; electricity resistance (5)"),
	text.LiteralOnce("resistance to acid 10, cold 10, and fire 10", "acid resistance (10) ; cold resistance (10) ; fire resistance (10)"),
	text.LiteralOnce("resistance to cold 10 and electricity 10", "cold resistance (10) ; electricity resistance (10)"),
	text.LiteralOnce("resistance to electricity 10 and fire 10", "electricity resistance (10) ; fire resistance (10)"),
	text.LiteralOnce("resistance to cold 10 and sonic 10", "cold resistance (10) ; sonic resistance (10)"),
	text.LiteralOnce("resistance to acid 10 and cold 10", "acid resistance (10) ; cold resistance (10)"),
	text.LiteralOnce("resistance to acid 10 and fire 10", "acid resistance (10) ; fire resistance (10)"),
	text.LiteralOnce("resistance to cold 10 and fire 10", "cold resistance (10) ; fire resistance (10)"),
	text.LiteralOnce("resistance to cold, and fire 5", "cold resistance (5) ; fire resistance (5)"),
	text.LiteralOnce("resistance to cold and fire 5", "cold resistance (5) ; fire resistance (5)"),
	text.LiteralOnce("resistance to electricity 10", "electricity resistance (10)"),
	text.LiteralOnce("resistance to electricity 15", "electricity resistance (15)"),
	text.LiteralOnce("resistance to cold 10", "cold resistance (10)"),
	text.LiteralOnce("resistance to fire 10", "fire resistance (10)"),
	text.LiteralOnce("resistance to fire 5", "fire resistance (5)"),
	text.LiteralOnce("resistance to charm", "charm resistance"),

	text.LiteralOnce("immunity to fire, poison, disease, energy drain, and ability damage", "fire immunity ; poison immunity ; disease immunity ; energy drain immunity ; ability damage immunity"),
	text.LiteralOnce("immune to cold, electricity, polymorph, and mind-affecting attacks", "cold immunity ; electricity immunity ; polymorph immunity ; mind-affecting attack immunity"),
	text.LiteralOnce("immunity to fire, cold, charm, sleep, and fear", "fire immunity ; cold immunity ; charm immunity ; sleep immunity ; fear immunity"),
	text.LiteralOnce("immunity to critical hits and transformation", "critical hit immunity ; transformation immunity"),
	text.LiteralOnce("immunity to poison, petrification, and cold", "poison immunity ; petrification immunity ; cold immunity"),
	text.LiteralOnce("immunity to poison, charm, and compulsion", "poison immunity ; charm immunity ; compulsion immunity"),
	text.LiteralOnce("immunity to electricity, fire, and poison", "electricity immunity ; fire immunity ; poison immunity"),
	text.LiteralOnce("immunity to acid, cold, and petrification", "acid immunity ; cold immunity ; petrification immunity"),
	text.LiteralOnce("immunity to acid, electricity, and poison", "acid immunity ; electricity immunity ; poison immunity"),
	text.LiteralOnce("immunity to electricity and petrification", "electricity immunity ; petrification immunity"),
	text.LiteralOnce("immunity to fire, sleep, and paralysis", "fire immunity ; sleep immunity ; paralysis immunity"),
	text.LiteralOnce("immunity to sleep and charm effects", "sleep immunity ; charm effect immunity"),
	text.LiteralOnce("immunity to electricity and poison", "electricity immunity ; poison immunity"),
	text.LiteralOnce("immunity to sleep and paralysis", "sleep immunity ; paralysis immunity"),
	text.LiteralOnce("immunity to fire and poison", "fire immunity ; poison immunity"),
	text.LiteralOnce("immunity to fire and cold", "fire immunity ; cold immunity"),
	text.LiteralOnce("immunity to cold and fire", "cold immunity ; fire immunity"),
	text.LiteralOnce("immune to weapon damage", "weapon damage immunity"),
	text.LiteralOnce("immunity to electricity", "electricity immunity"),
	text.LiteralOnce("immunity to acid", "acid immunity"),
	text.LiteralOnce("immunity to cold", "cold immunity"),
	text.LiteralOnce("immunity to fire", "fire immunity"),
	text.LiteralOnce("immunity to magic", "magic immunity"),
	text.LiteralOnce("immunity to poison", "poison immunity"),
	text.LiteralOnce("immunity to psionics", "psionics immunity"),

	text.Regex(`\bdr\s+(\d+)/\s*`, "damage reduction ${1}/"),
	text.Regex(`\bsr\s+(\d+)`, " ; spell resistance (${1}) ; "),
	text.Regex(`spell resistance\s+(\d+)`, " ; spell resistance (${1}) ; "),
	text.Literal(" ft.", " ft"),
	text.Literal(" ft", ""),
	text.Literal(",", ";"),
}

var trailingPeriod = regexp.MustCompile(`\.$`)

func (p *Parser) parseSpecialQualities(value string, out Parsed) error {
	var qualities []string
	for _, part := range text.SplitTrim(specialQualityRewrites.Apply(value), ";") {
		part = trailingPeriod.ReplaceAllString(part, "")
		if contains([]string{"", "-", "also see text", "none"}, part) {
			continue
		}
		qualities = append(qualities, part)
	}
	if len(qualities) > 0 {
		out["special_qualities"] = qualities
	}
	return nil
}
