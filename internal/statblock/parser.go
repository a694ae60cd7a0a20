// Package statblock turns the rows of a creature statblock table into typed
// values. Each known row header has its own grammar: an ordered rewrite
// table, a small exception table of literal historical entries, and a set of
// accepted shapes. Anything else is an error.
package statblock

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
	"github.com/cory-johannsen/srdcrawl/internal/text"
	"github.com/cory-johannsen/srdcrawl/internal/vocab"
)

// HeaderKey is the raw-map key under which the title row's second cell is
// stored.
const HeaderKey = "__header__"

// Parsed maps an output key such as "armor_class" to its typed value.
type Parsed map[string]any

// Row is one statblock table row as extracted from the page, before any
// cleaning.
type Row struct {
	Header string
	Value  string
}

// Statblock holds the cleaned text of every row alongside the parsed values.
type Statblock struct {
	Raw    map[string]string `json:"raw"`
	Parsed Parsed            `json:"parsed"`
}

// Monster is one crawled creature page.
type Monster struct {
	Name      string     `json:"name"`
	Statblock *Statblock `json:"statblock,omitempty"`
}

type fieldParser func(p *Parser, value string, out Parsed) error

var fieldParsers = map[string]fieldParser{
	"size/type":           (*Parser).parseSizeType,
	"hit_dice":            (*Parser).parseHitDice,
	"initiative":          (*Parser).parseInitiative,
	"speed":               (*Parser).parseSpeed,
	"armor_class":         (*Parser).parseArmorClass,
	"base_attack/grapple": (*Parser).parseBaseAttackGrapple,
	"attack":              (*Parser).parseAttack,
	"full_attack":         (*Parser).parseFullAttack,
	"space/reach":         (*Parser).parseSpaceReach,
	"special_attacks":     (*Parser).parseSpecialAttacks,
	"special_qualities":   (*Parser).parseSpecialQualities,
	"saves":               (*Parser).parseSaves,
	"abilities":           (*Parser).parseAbilities,
	"skills":              (*Parser).parseSkills,
	"feats":               (*Parser).parseFeats,
	"environment":         (*Parser).parseEnvironment,
	"organization":        (*Parser).parseOrganization,
	"challenge_rating":    (*Parser).parseChallengeRating,
	"treasure":            (*Parser).parseTreasure,
	"alignment":           (*Parser).parseAlignment,
	"advancement":         (*Parser).parseAdvancement,
	"level_adjustment":    (*Parser).parseLevelAdjustment,
}

// Headers returns the known normalized row headers in sorted order.
func Headers() []string {
	out := make([]string, 0, len(fieldParsers))
	for h := range fieldParsers {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Parser parses statblock rows against a fixed vocabulary set.
type Parser struct {
	vocab *vocab.Set
}

// NewParser creates a Parser.
//
// Precondition: v must be non-nil with all vocabularies populated.
func NewParser(v *vocab.Set) *Parser {
	if v == nil || v.Sizes == nil || v.Types == nil || v.Subtypes == nil {
		panic("statblock.NewParser: vocabulary set must be fully populated")
	}
	return &Parser{vocab: v}
}

// ParseField parses one row's cleaned, lower-cased value into out.
//
// Precondition: header is already normalized (see text.NormalizeHeader).
// Postcondition: on success out holds zero or more new keys for the row;
// the row may legitimately contribute nothing when its text means absence.
// An unknown header yields parseerr.ErrUnknownStatblockField.
func (p *Parser) ParseField(header, value string, out Parsed) error {
	fn, ok := fieldParsers[header]
	if !ok {
		return parseerr.New(parseerr.ErrUnknownStatblockField, header, value)
	}
	return fn(p, value, out)
}

// ParseRows builds a Statblock from a table's rows. The first row is the
// title row: only its second cell is kept, under HeaderKey, and title may be
// empty when that cell is absent.
//
// Postcondition: either every row parsed, or an error naming the first row
// that failed is returned and no Statblock is produced.
func (p *Parser) ParseRows(title string, rows []Row) (*Statblock, error) {
	sb := &Statblock{Raw: make(map[string]string, len(rows)+1), Parsed: Parsed{}}
	if title != "" {
		sb.Raw[HeaderKey] = text.Clean(title)
	}
	for _, row := range rows {
		header := text.NormalizeHeader(row.Header)
		value := text.Clean(strings.ToLower(row.Value))
		sb.Raw[header] = value
		if err := p.ParseField(header, value, sb.Parsed); err != nil {
			return nil, fmt.Errorf("parsing row %q: %w", header, err)
		}
	}
	return sb, nil
}

var leadingInt = regexp.MustCompile(`^[+\-]?\d+`)

// toInt reads the leading signed integer of s, or 0 when there is none.
func toInt(s string) int {
	n, _ := strconv.Atoi(leadingInt.FindString(strings.TrimSpace(s)))
	return n
}

func unparsed(field, value string) error {
	return parseerr.New(parseerr.ErrUnparsedPattern, field, value)
}

// collect splits value around sep, trims each part, and keeps the parts not
// listed in skip.
func collect(value, sep string, skip ...string) []string {
	var out []string
	for _, part := range text.SplitTrim(value, sep) {
		if contains(skip, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
