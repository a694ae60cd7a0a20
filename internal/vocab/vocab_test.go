package vocab_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
	"github.com/cory-johannsen/srdcrawl/internal/vocab"
)

func TestLoad_Counts(t *testing.T) {
	set, err := vocab.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, set.Sizes.Len())
	assert.Equal(t, 15, set.Types.Len())
	assert.Equal(t, 26, set.Subtypes.Len())
	assert.Equal(t, "Cleric", set.ClassAbbreviations["Clr"])
}

func TestNormalize_MembersUnchanged(t *testing.T) {
	set := vocab.MustLoad()
	for _, v := range []*vocab.Vocabulary{set.Sizes, set.Types, set.Subtypes} {
		for _, m := range v.Members() {
			got, err := v.Normalize(m)
			require.NoError(t, err, "%s %q", v.Field(), m)
			assert.Equal(t, m, got)
		}
	}
}

func TestNormalize_CaseAndWhitespaceTolerant(t *testing.T) {
	set := vocab.MustLoad()
	rapid.Check(t, func(t *rapid.T) {
		vocabs := []*vocab.Vocabulary{set.Sizes, set.Types, set.Subtypes}
		v := vocabs[rapid.IntRange(0, len(vocabs)-1).Draw(t, "vocab")]
		members := v.Members()
		m := members[rapid.IntRange(0, len(members)-1).Draw(t, "member")]

		pad := rapid.StringMatching(`[ \t]{0,3}`)
		input := pad.Draw(t, "lead") + strings.ToUpper(m) + pad.Draw(t, "trail")

		got, err := v.Normalize(input)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	})
}

func TestNormalize_RejectsOutsideVocabulary(t *testing.T) {
	set := vocab.MustLoad()
	rapid.Check(t, func(t *rapid.T) {
		term := rapid.StringMatching(`[a-z]{1,14}`).Draw(t, "term")
		_, err := set.Sizes.Normalize(term)
		if set.Sizes.Contains(term) {
			assert.NoError(t, err)
			return
		}
		assert.ErrorIs(t, err, parseerr.ErrUnrecognizedValue)
	})
}

func TestNormalize_UnrecognizedCarriesFieldAndHint(t *testing.T) {
	set := vocab.MustLoad()
	_, err := set.Sizes.Normalize("Gargantuanish")
	require.Error(t, err)

	var pe *parseerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "size", pe.Field)
	assert.Equal(t, "gargantuanish", pe.Text)
	assert.Equal(t, "gargantuan", pe.Hint)
}

func TestNormalize_NoHintForDistantTerm(t *testing.T) {
	set := vocab.MustLoad()
	_, err := set.Types.Normalize("qqqq")
	var pe *parseerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, pe.Hint)
}

func TestNewVocabulary_RejectsBadMembers(t *testing.T) {
	_, err := vocab.NewVocabulary("size", []string{"tiny", "tiny"})
	assert.Error(t, err)

	_, err = vocab.NewVocabulary("size", []string{"Tiny"})
	assert.Error(t, err)

	_, err = vocab.NewVocabulary("size", nil)
	assert.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := vocab.Parse([]byte("sizes: [unterminated"))
	assert.Error(t, err)
}

func TestParse_MissingClassAbbreviations(t *testing.T) {
	_, err := vocab.Parse([]byte("sizes: [tiny]\ntypes: [ooze]\nsubtypes: [fire]\n"))
	assert.Error(t, err)
}
