package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/srdcrawl/internal/storage"
)

// Output formats accepted by FileSink.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileSink writes the record list to a single file.
type FileSink[Out any] struct {
	path   string
	format string
}

// NewFileSink creates a FileSink writing format to path.
//
// Precondition: format is FormatJSON or FormatYAML.
func NewFileSink[Out any](path, format string) *FileSink[Out] {
	if format != FormatJSON && format != FormatYAML {
		panic(fmt.Sprintf("importer.NewFileSink: unknown format %q", format))
	}
	return &FileSink[Out]{path: path, format: format}
}

func (s *FileSink[Out]) String() string { return s.format + ":" + s.path }

// Write encodes records and replaces the file at the sink's path.
//
// Postcondition: JSON output is an indented array ("[]" when records is
// empty) with HTML left unescaped. YAML output keeps the JSON key order.
func (s *FileSink[Out]) Write(_ context.Context, records []Out) error {
	if records == nil {
		records = []Out{}
	}
	data, err := EncodeJSON(records)
	if err != nil {
		return err
	}
	if s.format == FormatYAML {
		if data, err = jsonToYAML(data); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// EncodeJSON renders v as two-space indented JSON without HTML escaping.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return buf.Bytes(), nil
}

// jsonToYAML re-renders a JSON document as block-style YAML.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding json as yaml: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles the JSON syntax left on n.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// StoreSink writes each record as a JSON document into a storage.Store.
type StoreSink[Out any] struct {
	store storage.Store
	kind  string
	runID uuid.UUID
	name  func(Out) string
}

// NewStoreSink creates a StoreSink stamping records with kind and runID.
//
// Precondition: store and name must be non-nil; kind must be a valid
// storage kind.
func NewStoreSink[Out any](store storage.Store, kind string, runID uuid.UUID, name func(Out) string) *StoreSink[Out] {
	if store == nil || name == nil || !storage.ValidKind(kind) {
		panic("importer.NewStoreSink: store, name and a valid kind are required")
	}
	return &StoreSink[Out]{store: store, kind: kind, runID: runID, name: name}
}

func (s *StoreSink[Out]) String() string { return "store:" + s.kind }

// Write upserts all records in one call to the store.
func (s *StoreSink[Out]) Write(ctx context.Context, records []Out) error {
	recs := make([]storage.Record, 0, len(records))
	for _, r := range records {
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding %s record: %w", s.kind, err)
		}
		recs = append(recs, storage.Record{Kind: s.kind, Name: s.name(r), RunID: s.runID, Document: doc})
	}
	return s.store.Put(ctx, recs)
}
