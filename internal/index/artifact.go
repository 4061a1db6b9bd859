package index

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
)

// Encode writes the artifact as JSON. Output is byte-identical for
// identical indexes.
func (ix *Index) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(ix.Artifact())
}

// SaveFile writes the artifact to path, replacing any previous file only
// once the new one is complete.
func SaveFile(path string, ix *Index) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".search-index-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := ix.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Load decodes an artifact and rebuilds a searchable index from it.
// When the artifact lists the same id twice, the first record wins.
func Load(r io.Reader) (*Index, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode index artifact: %w", err)
	}
	return FromArtifact(a)
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// FromArtifact validates a decoded artifact and rebuilds its index.
func FromArtifact(a Artifact) (*Index, error) {
	if a.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrIncompatible, a.SchemaVersion, SchemaVersion)
	}
	if a.Library != Library {
		return nil, fmt.Errorf("%w: library %q, want %q", ErrIncompatible, a.Library, Library)
	}
	if a.Ref != RefField {
		return nil, fmt.Errorf("%w: ref field %q, want %q", ErrIncompatible, a.Ref, RefField)
	}
	if a.Fingerprint != "" && a.Fingerprint != Fingerprint(a.Documents) {
		return nil, ErrFingerprint
	}

	ix, err := New(a.Fields)
	if err != nil {
		return nil, err
	}
	docs := lo.UniqBy(a.Documents, func(r Record) string { return r.ID })
	if err := ix.AddAll(docs); err != nil {
		ix.Close()
		return nil, err
	}
	return ix, nil
}
