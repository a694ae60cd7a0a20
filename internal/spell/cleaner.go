package spell

import (
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
	"github.com/cory-johannsen/srdcrawl/internal/text"
)

// Cleaner structures raw spells against the page and rename tables and the
// class abbreviation table.
type Cleaner struct {
	pages   Table
	renames Table
	classes map[string]string
}

// NewCleaner creates a Cleaner. A nil renames table renames nothing.
//
// Precondition: pages and classes must be non-nil.
func NewCleaner(pages, renames Table, classes map[string]string) *Cleaner {
	if pages == nil || classes == nil {
		panic("spell.NewCleaner: pages and classes must be non-nil")
	}
	if renames == nil {
		renames = Table{}
	}
	return &Cleaner{pages: pages, renames: renames, classes: classes}
}

// Clean converts raw into a Spell, running the field fixers in order: name,
// page, level, components, casting time, range, duration.
//
// Postcondition: either a fully populated Spell or an error wrapping one of
// the parseerr kinds; raw is not modified.
func (c *Cleaner) Clean(raw RawSpell) (Spell, error) {
	s := Spell{
		Name:             raw.Name,
		RawName:          raw.Name,
		School:           raw.School,
		Subschool:        raw.Subschool,
		Descriptors:      raw.Descriptors,
		Description:      raw.Description,
		AdditionalTables: raw.AdditionalTables,
		Other:            maps.Clone(raw.Other),
	}
	if renamed, ok := c.renames[raw.Name]; ok {
		s.Name = renamed
	}

	page, ok := c.pages[s.RawName]
	if !ok {
		return Spell{}, parseerr.New(parseerr.ErrMissingLookup, "page", s.RawName)
	}
	s.Page = page

	level, err := c.level(raw.Level)
	if err != nil {
		return Spell{}, err
	}
	s.Level = Field[map[string]int]{Raw: raw.Level, Structured: level}
	s.Components = Field[Components]{Raw: raw.Components, Structured: components(raw.Components)}
	s.CastingTime = Field[Phrase]{Raw: raw.CastingTime, Structured: castingTime(raw.CastingTime)}
	s.Range = Field[Phrase]{Raw: raw.Range, Structured: spellRange(raw.Range)}
	s.Duration = Field[Phrase]{Raw: raw.Duration, Structured: duration(raw.Duration)}
	return s, nil
}

var classLevel = regexp.MustCompile(`^(\S+)\s+(\d+)`)

// level parses "Sor/Wiz 3, Clr 4" into {"Sorcerer": 3, "Wizard": 3, "Cleric": 4}.
func (c *Cleaner) level(raw string) (map[string]int, error) {
	levels := map[string]int{}
	for _, entry := range text.Split(raw, ", ") {
		m := classLevel.FindStringSubmatch(strings.TrimSpace(entry))
		if m == nil {
			return nil, parseerr.New(parseerr.ErrUnparsedPattern, "level", entry)
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, parseerr.New(parseerr.ErrUnparsedPattern, "level", entry)
		}

		class := m[1]
		if class == "Sor/Wiz" {
			levels["Sorcerer"] = n
			levels["Wizard"] = n
			continue
		}
		if full, ok := c.classes[class]; ok {
			class = full
		}
		levels[class] = n
	}
	return levels, nil
}

var optionalComponent = regexp.MustCompile(`^\(([^)]+)\)$`)

// components parses "V, S, M/DF, (F)" style lists. Alternatives are written
// with "/", optional components are parenthesized.
func components(raw string) Components {
	out := Components{Required: []Component{}}
	list := raw
	if strings.HasSuffix(list, "; see text") {
		out.SeeDescription = true
		list = strings.TrimSpace(strings.Replace(list, "; see text", "", 1))
	}
	for _, part := range text.SplitTrim(list, ", ") {
		switch {
		case strings.Contains(part, "/"):
			out.Required = append(out.Required, Component{AnyOf: text.SplitTrim(part, "/")})
		case strings.Contains(part, " (Brd only)"):
			name := strings.TrimSpace(strings.Replace(part, " (Brd only)", "", 1))
			out.Required = append(out.Required, Component{Name: name, Class: "Bard"})
		default:
			if m := optionalComponent.FindStringSubmatch(part); m != nil {
				out.Optional = append(out.Optional, m[1])
				continue
			}
			out.Required = append(out.Required, Component{Name: part})
		}
	}
	return out
}

// caveat strips a marker from a phrase and records it.
type caveat struct {
	re  *regexp.Regexp
	set func(*Caveats)
}

func (c caveat) strip(s string, flags *Caveats) string {
	m := c.re.FindString(s)
	if m == "" {
		return s
	}
	c.set(flags)
	return strings.TrimSpace(strings.Replace(s, m, "", 1))
}

func seeDescription(c *Caveats) { c.SeeDescription = true }
func dismissable(c *Caveats)    { c.Dismissable = true }
func concentration(c *Caveats)  { c.Concentration = true }

var seeText = caveat{regexp.MustCompile(`(?i)(?:; | or )?see text$`), seeDescription}

var castingTimes = map[string]string{
	"One minute":           "1 minute",
	"At least 10 minutes":  ">= 10 minutes",
	"1 minute or longer":   ">= 1 minute",
	"1 minute/lb. created": "1 min/lb",
}

func castingTime(raw string) Phrase {
	var p Phrase
	value := seeText.strip(raw, &p.Caveats)
	if fixed, ok := castingTimes[value]; ok {
		value = fixed
	}
	p.Value = value
	return p
}

var rangeRewrites = text.Rules{
	text.Regex(`(?i)ft\.`, "feet"),
	text.Regex(`(?i)one`, "1"),
}

var ranges = map[string]string{
	"Long (400 feet + 40 feet/level)":               "Long",
	"Medium (100 feet + 10 feet/level)":             "Medium",
	"Medium (100 feet + 10 feet level)":             "Medium",
	"Close (25 feet + 5 feet/2 levels)":             "Close",
	"Close (25 feet + 5 feet/2 levels)/ 100 feet":   "Close",
	"Anywhere within the area to be warded":         "In Warded Area",
	"Up to 10 feet/level":                           "<= 10 feet/level",
	"Personal and touch":                            "Personal and Touch",
	"Personal or close (25 feet + 5 feet/2 levels)": "Personal or Close",
	"Personal or touch":                             "Personal or Touch",
}

func spellRange(raw string) Phrase {
	var p Phrase
	value := rangeRewrites.Apply(seeText.strip(raw, &p.Caveats))
	if fixed, ok := ranges[value]; ok {
		value = fixed
	}
	p.Value = value
	return p
}

// durationCaveats run in order before the rewrites.
var durationCaveats = []caveat{
	seeText,
	{regexp.MustCompile(`(?i); see text for cause fear$`), seeDescription},
	{regexp.MustCompile(`\s+\(D\)`), dismissable},
	{regexp.MustCompile(`(?i)\s+or until discharged`), dismissable},
	{regexp.MustCompile(`(?i)\s+or less`), seeDescription},
	{regexp.MustCompile(`(?i)\s+or until (completed|expended|used|you return to your body|all beams are exhausted)`), seeDescription},
	{regexp.MustCompile(`(?i)^Concentration,?\s*`), concentration},
}

var durationRewrites = text.Rules{
	text.Regex(`(?i)one`, "1"),
	text.Regex(`(?i)two`, "2"),
	text.Regex(`(?i)seven`, "7"),
	text.Regex(`(?i)sixty`, "60"),
	text.Literal("min./", "min/"),
	text.Literal("minute/", "min/"),
	text.Literal("/ level", "/lvl"),
	text.Literal("/level", "/lvl"),
	text.Literal("hour/", "hr/"),
	text.Literal("caster level", "lvl"),
	text.Literal(" /", "/"),
	text.Literal("up to ", ""),
	text.Regex(`^\+ (\d)`, "+${1}"),
	text.Literal(" (apparent time)", ""),
	text.Literal(" plus 12 hours", ""),
	text.Literal(", then", "; then"),
	text.Literal("Permanent until discharged", "Until Triggered"),
	text.Literal(" (1 round)", ""),
	text.Literal(" (1d4 rounds)", ""),
	text.Literal(" (1d6 rounds)", ""),
	text.Literal("(1 round/lvl) or instantaneous", "Instantaneous or 1 round/lvl"),
	text.Literal("(maximum 10 rounds)", "10 rounds"),
	text.Literal("1 usage per 2 levels", "1 usage/(2 lvl)"),
	text.Literal("round per three levels", "round/(3 lvl)"),
	text.Literal("(4 rounds)", "4 rounds"),
	text.Literal(", whichever comes first", ""),
	text.Literal("1d4 rounds or 1 round", "1 or 1d4 rounds"),
	text.Literal(" or concentration (1 round/lvl)", " or 1 round/lvl"),
	text.Literal("Instantaneous/1 hour", "Instantaneous; 1 hour"),
	text.Literal("1 round/lvl and concentration + 3 rounds", "1 round/lvl; +3 rounds"),
	text.Literal("30 minutes and 2d6 rounds", "30 minutes; 2d6 rounds"),
	text.Literal("min.", "minute"),
}

var durations = map[string]string{
	"1d4+1 rounds, or 1d4+1 rounds after creatures leave the smoke cloud": "1d4+1 rounds",
	"IInstantaneous/10 minutes per HD of subject":                         "Instantaneous; 10 min/HD",
	"No more than 1 hr/lvl (destination is reached)":                      "1 hr/lvl",
	"Permanent; until released or 1d4 days + 1 day/lvl":                   "Permanent until discharged; 1d4 days + 1 day/lvl",
	"Until expended or 10 min/lvl":                                        "10 min/lvl or until expended",
	"Until landing or 1 round/lvl":                                        "1 round/lvl or until landed",
	"Up to 1 round/lvl":                                                   "Up to 1 round/lvl",
}

// duration normalizes a duration phrase: "1 round/level (D)" becomes
// "1 round/lvl" with the dismissable flag set.
func duration(raw string) Phrase {
	var p Phrase
	value := raw
	for _, c := range durationCaveats {
		value = c.strip(value, &p.Caveats)
	}
	value = durationRewrites.Apply(value)
	value = seeText.strip(value, &p.Caveats)
	if fixed, ok := durations[value]; ok {
		value = fixed
	}
	p.Value = value
	return p
}
