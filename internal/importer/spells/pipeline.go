// Package spells adapts spell page extraction and spell cleaning to the
// importer.
package spells

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cory-johannsen/srdcrawl/internal/spell"
)

// ExtractPipeline pulls raw spells out of a saved spell list page.
type ExtractPipeline struct {
	htmlPath string
}

// NewExtractPipeline creates an ExtractPipeline reading htmlPath.
func NewExtractPipeline(htmlPath string) *ExtractPipeline {
	return &ExtractPipeline{htmlPath: htmlPath}
}

// Inputs extracts every spell on the page. A malformed spell fails the
// whole page.
func (p *ExtractPipeline) Inputs(_ context.Context) ([]spell.RawSpell, error) {
	f, err := os.Open(p.htmlPath)
	if err != nil {
		return nil, fmt.Errorf("opening spell page: %w", err)
	}
	defer f.Close()

	raws, err := spell.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", p.htmlPath, err)
	}
	return raws, nil
}

func (p *ExtractPipeline) Label(raw spell.RawSpell) string { return raw.Name }

func (p *ExtractPipeline) Skip(spell.RawSpell) bool { return false }

// Build returns raw unchanged.
func (p *ExtractPipeline) Build(_ context.Context, raw spell.RawSpell) (spell.RawSpell, error) {
	return raw, nil
}

// CleanPipeline structures the raw spells in a JSON array file.
type CleanPipeline struct {
	inputPath string
	cleaner   *spell.Cleaner
}

// NewCleanPipeline creates a CleanPipeline over inputPath.
//
// Precondition: cleaner must be non-nil.
func NewCleanPipeline(inputPath string, cleaner *spell.Cleaner) *CleanPipeline {
	if cleaner == nil {
		panic("spells.NewCleanPipeline: cleaner must be non-nil")
	}
	return &CleanPipeline{inputPath: inputPath, cleaner: cleaner}
}

// Inputs decodes the input file.
//
// Postcondition: returns an error unless the file holds a JSON array of
// objects.
func (p *CleanPipeline) Inputs(_ context.Context) ([]spell.RawSpell, error) {
	data, err := os.ReadFile(p.inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading spells: %w", err)
	}
	var raws []spell.RawSpell
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p.inputPath, err)
	}
	return raws, nil
}

func (p *CleanPipeline) Label(raw spell.RawSpell) string { return raw.Name }

func (p *CleanPipeline) Skip(spell.RawSpell) bool { return false }

// Build cleans one spell.
func (p *CleanPipeline) Build(_ context.Context, raw spell.RawSpell) (spell.Spell, error) {
	return p.cleaner.Clean(raw)
}

// Name returns the record name of s.
func Name(s spell.Spell) string { return s.Name }
