// Package spell cleans spell records extracted from the SRD spell lists.
//
// A RawSpell holds the text of one spell as it appears on the page. Cleaner
// turns it into a Spell whose level, components, casting time, range, and
// duration each keep the raw text next to a structured value.
package spell

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// RawSpell is one spell as extracted from a spell list page. Statblock rows
// without a dedicated field, such as "target" or "saving_throw", live in
// Other and are written back at the top level.
type RawSpell struct {
	Name             string   `json:"name"`
	School           string   `json:"school,omitempty"`
	Subschool        string   `json:"subschool,omitempty"`
	Descriptors      []string `json:"descriptors,omitempty"`
	Level            string   `json:"level"`
	Components       string   `json:"components"`
	CastingTime      string   `json:"casting_time"`
	Range            string   `json:"range"`
	Duration         string   `json:"duration"`
	Description      []string `json:"description,omitempty"`
	AdditionalTables []string `json:"additional_tables,omitempty"`

	Other map[string]any `json:"-"`
}

var rawKeys = map[string]bool{
	"name": true, "school": true, "subschool": true, "descriptors": true,
	"level": true, "components": true, "casting_time": true, "range": true,
	"duration": true, "description": true, "additional_tables": true,
}

// Set assigns a statblock row by its normalized key.
func (s *RawSpell) Set(key, value string) {
	switch key {
	case "level":
		s.Level = value
	case "components":
		s.Components = value
	case "casting_time":
		s.CastingTime = value
	case "range":
		s.Range = value
	case "duration":
		s.Duration = value
	default:
		if s.Other == nil {
			s.Other = map[string]any{}
		}
		s.Other[key] = value
	}
}

// MarshalJSON writes the known fields followed by every entry of Other.
func (s RawSpell) MarshalJSON() ([]byte, error) {
	type plain RawSpell
	return withOther(plain(s), s.Other)
}

// UnmarshalJSON reads the known fields and keeps everything else in Other.
func (s *RawSpell) UnmarshalJSON(data []byte) error {
	type plain RawSpell
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, raw := range fields {
		if rawKeys[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if p.Other == nil {
			p.Other = map[string]any{}
		}
		p.Other[key] = v
	}
	*s = RawSpell(p)
	return nil
}

// Field pairs a raw value with its structured form.
type Field[T any] struct {
	Raw        string `json:"raw"`
	Structured T      `json:"structured"`
}

// Caveats are the markers stripped from a phrase while structuring it.
type Caveats struct {
	SeeDescription bool `json:"see_description,omitempty"`
	Dismissable    bool `json:"dismissable,omitempty"`
	Concentration  bool `json:"concentration,omitempty"`
}

// Phrase is a normalized casting time, range, or duration.
type Phrase struct {
	Caveats
	Value string `json:"value"`
}

// Component is one required spell component. Exactly one of Name and AnyOf
// is set; Class limits the requirement to casters of that class.
type Component struct {
	Name  string   `json:"name,omitempty"`
	AnyOf []string `json:"any_of,omitempty"`
	Class string   `json:"class,omitempty"`
}

// Components is the structured "Components" row.
type Components struct {
	Required       []Component `json:"required"`
	Optional       []string    `json:"optional,omitempty"`
	SeeDescription bool        `json:"see_description,omitempty"`
}

// Spell is a cleaned spell record.
type Spell struct {
	Name             string                `json:"name"`
	RawName          string                `json:"raw_name"`
	Page             string                `json:"page"`
	School           string                `json:"school,omitempty"`
	Subschool        string                `json:"subschool,omitempty"`
	Descriptors      []string              `json:"descriptors,omitempty"`
	Level            Field[map[string]int] `json:"level"`
	Components       Field[Components]     `json:"components"`
	CastingTime      Field[Phrase]         `json:"casting_time"`
	Range            Field[Phrase]         `json:"range"`
	Duration         Field[Phrase]         `json:"duration"`
	Description      []string              `json:"description,omitempty"`
	AdditionalTables []string              `json:"additional_tables,omitempty"`

	Other map[string]any `json:"-"`
}

// MarshalJSON writes the known fields followed by every entry of Other.
func (s Spell) MarshalJSON() ([]byte, error) {
	type plain Spell
	return withOther(plain(s), s.Other)
}

// withOther marshals v and appends, in key order, the entries of other that
// do not collide with one of v's own keys. HTML is left unescaped and v's
// fields keep their declaration order.
func withOther(v any, other map[string]any) ([]byte, error) {
	data, err := marshalUnescaped(v)
	if err != nil || len(other) == 0 {
		return data, err
	}
	var taken map[string]json.RawMessage
	if err := json.Unmarshal(data, &taken); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	empty := len(taken) == 0
	for _, key := range slices.Sorted(maps.Keys(other)) {
		if _, ok := taken[key]; ok {
			continue
		}
		k, err := marshalUnescaped(key)
		if err != nil {
			return nil, err
		}
		val, err := marshalUnescaped(other[key])
		if err != nil {
			return nil, err
		}
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
