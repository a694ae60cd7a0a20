// Package vocab provides the closed vocabularies used to validate statblock
// sizes, creature types and subtypes, plus the spell class abbreviations.
//
// The data ships embedded in the binary and is loaded once by the caller;
// parsers receive it explicitly rather than reading package globals.
package vocab

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
)

//go:embed vocabulary.yaml
var embedded []byte

// hintThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const hintThreshold = 0.85

// Vocabulary is an immutable set of lowercase terms for one field.
type Vocabulary struct {
	field   string
	members map[string]struct{}
	ordered []string
}

// NewVocabulary builds a Vocabulary for field from members.
//
// Precondition: members must be lowercase, trimmed, non-empty and unique.
// Postcondition: returns a Vocabulary or an error naming the first bad member.
func NewVocabulary(field string, members []string) (*Vocabulary, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("vocabulary %q: no members", field)
	}
	v := &Vocabulary{
		field:   field,
		members: make(map[string]struct{}, len(members)),
		ordered: make([]string, 0, len(members)),
	}
	for _, m := range members {
		if m == "" || m != strings.ToLower(strings.TrimSpace(m)) {
			return nil, fmt.Errorf("vocabulary %q: member %q must be lowercase and trimmed", field, m)
		}
		if _, dup := v.members[m]; dup {
			return nil, fmt.Errorf("vocabulary %q: duplicate member %q", field, m)
		}
		v.members[m] = struct{}{}
		v.ordered = append(v.ordered, m)
	}
	return v, nil
}

// Field returns the field name reported in errors.
func (v *Vocabulary) Field() string { return v.field }

// Len returns the number of members.
func (v *Vocabulary) Len() int { return len(v.ordered) }

// Members returns a copy of the members in declaration order.
func (v *Vocabulary) Members() []string {
	out := make([]string, len(v.ordered))
	copy(out, v.ordered)
	return out
}

// Contains reports whether s is a member, exactly as given.
func (v *Vocabulary) Contains(s string) bool {
	_, ok := v.members[s]
	return ok
}

// Normalize lower-cases and trims s and returns it if it is a member.
//
// Postcondition: returns a member, or a *parseerr.Error wrapping
// parseerr.ErrUnrecognizedValue. Matching is exact; the error may carry
// the closest member as a hint.
func (v *Vocabulary) Normalize(s string) (string, error) {
	term := strings.ToLower(strings.TrimSpace(s))
	if v.Contains(term) {
		return term, nil
	}
	err := parseerr.New(parseerr.ErrUnrecognizedValue, v.field, term)
	err.Hint = v.closest(term)
	return "", err
}

func (v *Vocabulary) closest(term string) string {
	if term == "" {
		return ""
	}
	best, bestScore := "", 0.0
	for _, m := range v.ordered {
		if score := matchr.JaroWinkler(term, m, false); score > bestScore {
			best, bestScore = m, score
		}
	}
	if bestScore < hintThreshold {
		return ""
	}
	return best
}

// Set bundles every vocabulary the parsers need.
type Set struct {
	Sizes    *Vocabulary
	Types    *Vocabulary
	Subtypes *Vocabulary
	// ClassAbbreviations maps spell-list abbreviations ("Clr") to class names.
	ClassAbbreviations map[string]string
}

type yamlSet struct {
	Sizes              []string          `yaml:"sizes"`
	Types              []string          `yaml:"types"`
	Subtypes           []string          `yaml:"subtypes"`
	ClassAbbreviations map[string]string `yaml:"class_abbreviations"`
}

// Load parses the embedded vocabulary data.
//
// Postcondition: returns a fully populated Set or a non-nil error.
func Load() (*Set, error) {
	return Parse(embedded)
}

// Parse builds a Set from YAML data in the embedded file's layout.
//
// Precondition: data must be valid YAML.
// Postcondition: returns a fully populated Set or a non-nil error.
func Parse(data []byte) (*Set, error) {
	var raw yamlSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}
	sizes, err := NewVocabulary("size", raw.Sizes)
	if err != nil {
		return nil, err
	}
	types, err := NewVocabulary("type", raw.Types)
	if err != nil {
		return nil, err
	}
	subtypes, err := NewVocabulary("subtype", raw.Subtypes)
	if err != nil {
		return nil, err
	}
	if len(raw.ClassAbbreviations) == 0 {
		return nil, fmt.Errorf("vocabulary: class_abbreviations must not be empty")
	}
	return &Set{
		Sizes:              sizes,
		Types:              types,
		Subtypes:           subtypes,
		ClassAbbreviations: raw.ClassAbbreviations,
	}, nil
}

// MustLoad is Load that panics on error. The embedded data is fixed at build
// time, so a failure here is a programming error.
func MustLoad() *Set {
	s, err := Load()
	if err != nil {
		panic("vocab: MustLoad failed: " + err.Error())
	}
	return s
}
