package spell_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/srdcrawl/internal/spell"
)

func TestRawSpell_UnknownKeysKept(t *testing.T) {
	in := `{
		"name": "Bless",
		"school": "Enchantment",
		"level": "Clr 1, Pal 1",
		"components": "V, S, DF",
		"casting_time": "1 standard action",
		"range": "50 ft.",
		"area": "The caster and all allies within a 50-ft. burst",
		"duration": "1 min./level",
		"saving_throw": "None",
		"description": ["Bless fills your allies with courage."]
	}`
	var raw spell.RawSpell
	require.NoError(t, json.Unmarshal([]byte(in), &raw))

	assert.Equal(t, "Bless", raw.Name)
	assert.Equal(t, "Clr 1, Pal 1", raw.Level)
	assert.Equal(t, map[string]any{
		"area":         "The caster and all allies within a 50-ft. burst",
		"saving_throw": "None",
	}, raw.Other)

	out, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestSpell_MarshalJSON(t *testing.T) {
	s := spell.Spell{
		Name:    "Bless",
		RawName: "Bless",
		Page:    "205",
		Level:   spell.Field[map[string]int]{Raw: "Clr 1", Structured: map[string]int{"Cleric": 1}},
		Components: spell.Field[spell.Components]{Raw: "V, (F)", Structured: spell.Components{
			Required: []spell.Component{{Name: "V"}},
			Optional: []string{"F"},
		}},
		CastingTime: spell.Field[spell.Phrase]{Raw: "1 round", Structured: spell.Phrase{Value: "1 round"}},
		Range:       spell.Field[spell.Phrase]{Raw: "Touch", Structured: spell.Phrase{Value: "Touch"}},
		Duration: spell.Field[spell.Phrase]{Raw: "1 round/level (D)", Structured: spell.Phrase{
			Caveats: spell.Caveats{Dismissable: true},
			Value:   "1 round/lvl",
		}},
		Other: map[string]any{"target": "Creature touched", "name": "ignored"},
	}
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Bless",
		"raw_name": "Bless",
		"page": "205",
		"level": {"raw": "Clr 1", "structured": {"Cleric": 1}},
		"components": {"raw": "V, (F)", "structured": {"required": [{"name": "V"}], "optional": ["F"]}},
		"casting_time": {"raw": "1 round", "structured": {"value": "1 round"}},
		"range": {"raw": "Touch", "structured": {"value": "Touch"}},
		"duration": {"raw": "1 round/level (D)", "structured": {"dismissable": true, "value": "1 round/lvl"}},
		"target": "Creature touched"
	}`, string(out))
}

func encodeUnescaped(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(v))
	return buf.String()
}

func TestSpell_MarshalJSON_KeepsHTML(t *testing.T) {
	s := spell.Spell{
		Name:             "Acid Fog",
		AdditionalTables: []string{"<tr><td>a & b</td></tr>"},
		Other:            map[string]any{"effect": "<b>fog</b>"},
	}
	out := encodeUnescaped(t, s)
	assert.Contains(t, out, `"<tr><td>a & b</td></tr>"`)
	assert.Contains(t, out, `"effect":"<b>fog</b>"`)

	raw := encodeUnescaped(t, spell.RawSpell{Name: "Acid Fog", AdditionalTables: []string{"<tr></tr>"}, Other: map[string]any{"area": "x"}})
	assert.Contains(t, raw, `"<tr></tr>"`)
}

func TestSpell_MarshalJSON_KeyOrder(t *testing.T) {
	s := spell.Spell{
		Name:  "Bless",
		Other: map[string]any{"target": "Creature touched", "area": "50 ft.", "saving_throw": "None"},
	}
	out := encodeUnescaped(t, s)

	order := []string{`"name"`, `"raw_name"`, `"page"`, `"level"`, `"components"`, `"casting_time"`,
		`"range"`, `"duration"`, `"area"`, `"saving_throw"`, `"target"`}
	last := -1
	for _, key := range order {
		i := strings.Index(out, key)
		require.Greater(t, i, last, "key %s out of order in %s", key, out)
		last = i
	}

	bare := encodeUnescaped(t, spell.Spell{Name: "Bless"})
	assert.Less(t, strings.Index(bare, `"name"`), strings.Index(bare, `"duration"`))
}
