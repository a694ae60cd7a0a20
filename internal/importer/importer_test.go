package importer_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/srdcrawl/internal/importer"
	"github.com/cory-johannsen/srdcrawl/internal/spell"
	"github.com/cory-johannsen/srdcrawl/internal/storage"
)

type entry struct {
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// listPipeline builds an entry per input; inputs prefixed "bad" fail and
// inputs prefixed "skip" are skipped.
type listPipeline struct {
	inputs []string
	err    error
}

func (p listPipeline) Inputs(context.Context) ([]string, error) { return p.inputs, p.err }
func (p listPipeline) Label(in string) string { return in }
func (p listPipeline) Skip(in string) bool { return strings.HasPrefix(in, "skip") }
func (p listPipeline) Build(_ context.Context, in string) (entry, error) {
	if strings.HasPrefix(in, "bad") {
		return entry{}, fmt.Errorf("no statblock in %s", in)
	}
	return entry{Name: in}, nil
}

type memorySink struct {
	got [][]entry
	err error
}

func (s *memorySink) Write(_ context.Context, records []entry) error {
	s.got = append(s.got, records)
	return s.err
}

type memoryStore struct {
	recs []storage.Record
}

func (m *memoryStore) Put(_ context.Context, recs []storage.Record) error {
	m.recs = append(m.recs, recs...)
	return nil
}

func (m *memoryStore) Get(_ context.Context, kind, name string) (storage.Record, error) {
	for _, r := range m.recs {
		if r.Kind == kind && r.Name == name {
			return r, nil
		}
	}
	return storage.Record{}, storage.ErrNotFound
}

func (m *memoryStore) Count(_ context.Context, kind string) (int, error) {
	n := 0
	for _, r := range m.recs {
		if r.Kind == kind {
			n++
		}
	}
	return n, nil
}

func TestImporter_Run_DropsFailuresAndContinues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := &memorySink{}
	imp := importer.New[string, entry](listPipeline{inputs: []string{"owlbear", "bad-page", "skip-races", "stirge"}}, zap.New(core), sink)

	res, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Built: 2, Failed: 1, Skipped: 1}, res)
	require.Len(t, sink.got, 1)
	assert.Equal(t, []entry{{Name: "owlbear"}, {Name: "stirge"}}, sink.got[0])

	failed := logs.FilterMessage("failed to build record").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "bad-page", failed[0].ContextMap()["input"])
	assert.Contains(t, failed[0].ContextMap()["error"], "no statblock in bad-page")
	assert.Equal(t, 1, logs.FilterMessage("skipping input").Len())
}

func TestImporter_Run_InputError(t *testing.T) {
	sink := &memorySink{}
	imp := importer.New[string, entry](listPipeline{err: errors.New("links file missing")}, zap.NewNop(), sink)
	_, err := imp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "links file missing")
	assert.Empty(t, sink.got)
}

func TestImporter_Run_SinkError(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	imp := importer.New[string, entry](listPipeline{inputs: []string{"a"}}, zap.NewNop(), sink)
	_, err := imp.Run(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestImporter_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memorySink{}
	_, err := importer.New[string, entry](listPipeline{inputs: []string{"a"}}, zap.NewNop(), sink).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.got)
}

func TestNew_Preconditions(t *testing.T) {
	assert.Panics(t, func() { importer.New[string, entry](nil, zap.NewNop()) })
	assert.Panics(t, func() { importer.New[string, entry](listPipeline{}, nil) })
}

func TestFileSink_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "spells.json")
	sink := importer.NewFileSink[entry](path, importer.FormatJSON)

	require.NoError(t, sink.Write(context.Background(), []entry{{Name: "Acid Arrow", Notes: "<table>x & y</table>"}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"name\": \"Acid Arrow\",\n    \"notes\": \"<table>x & y</table>\"\n  }\n]\n", string(data))
}

func TestFileSink_EmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monsters.json")
	require.NoError(t, importer.NewFileSink[entry](path, importer.FormatJSON).Write(context.Background(), nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFileSink_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monsters.yaml")
	sink := importer.NewFileSink[map[string]any](path, importer.FormatYAML)
	records := []map[string]any{{"name": "Owlbear", "statblock": map[string]any{"parsed": map[string]any{"hit_dice": 5, "alignment": "true"}}}}
	require.NoError(t, sink.Write(context.Background(), records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- name: Owlbear\n")
	assert.NotContains(t, string(data), "{")

	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &back))
	parsed := back[0]["statblock"].(map[string]any)["parsed"].(map[string]any)
	assert.Equal(t, 5, parsed["hit_dice"])
	assert.Equal(t, "true", parsed["alignment"])
}

func TestNewFileSink_UnknownFormat(t *testing.T) {
	assert.Panics(t, func() { importer.NewFileSink[entry]("x", "xml") })
}

func TestStoreSink_Write(t *testing.T) {
	store := &memoryStore{}
	run := uuid.New()
	sink := importer.NewStoreSink(store, storage.KindMonster, run, func(e entry) string { return e.Name })

	require.NoError(t, sink.Write(context.Background(), []entry{{Name: "Owlbear"}, {Name: "Stirge"}}))
	require.Len(t, store.recs, 2)

	got, err := store.Get(context.Background(), storage.KindMonster, "Stirge")
	require.NoError(t, err)
	assert.Equal(t, run, got.RunID)
	assert.JSONEq(t, `{"name":"Stirge"}`, string(got.Document))
}

func TestNewStoreSink_Preconditions(t *testing.T) {
	name := func(e entry) string { return e.Name }
	assert.Panics(t, func() { importer.NewStoreSink[entry](nil, storage.KindSpell, uuid.New(), name) })
	assert.Panics(t, func() { importer.NewStoreSink(&memoryStore{}, "item", uuid.New(), name) })
	assert.Panics(t, func() { importer.NewStoreSink[entry](&memoryStore{}, storage.KindSpell, uuid.New(), nil) })
}

// Property: every input is counted exactly once and built records keep
// input order.
func TestImporter_Run_AccountsForEveryInput(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inputs := rapid.SliceOf(rapid.SampledFrom([]string{"owlbear", "bad", "skip", "stirge", "ghoul"})).Draw(rt, "inputs")
		sink := &memorySink{}
		res, err := importer.New[string, entry](listPipeline{inputs: inputs}, zap.NewNop(), sink).Run(context.Background())
		if err != nil {
			rt.Fatalf("Run: %v", err)
		}
		if res.Built+res.Failed+res.Skipped != len(inputs) {
			rt.Fatalf("result %+v does not account for %d inputs", res, len(inputs))
		}

		var want []string
		for _, in := range inputs {
			if in != "bad" && in != "skip" {
				want = append(want, in)
			}
		}
		got := make([]string, 0, len(sink.got[0]))
		for _, e := range sink.got[0] {
			got = append(got, e.Name)
		}
		if len(want) != len(got) {
			rt.Fatalf("built %v, want %v", got, want)
		}
		for i := range want {
			if want[i] != got[i] {
				rt.Fatalf("built %v, want %v", got, want)
			}
		}
	})
}

func TestEncodeJSON_Indents(t *testing.T) {
	data, err := importer.EncodeJSON(map[string]int{"ac": 14})
	require.NoError(t, err)
	var back map[string]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "{\n  \"ac\": 14\n}\n", string(data))
}

func TestEncodeJSON_SpellTablesUnescaped(t *testing.T) {
	data, err := importer.EncodeJSON([]spell.Spell{{Name: "Acid Fog", AdditionalTables: []string{"<tr><td>a & b</td></tr>"}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"<tr><td>a & b</td></tr>"`)
	assert.NotContains(t, string(data), `\u003c`)
}
