package index

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

const (
	// SchemaVersion is bumped whenever the artifact layout changes.
	SchemaVersion = 1
	// Library names the engine that must read the artifact.
	Library = "bleve/v2"

	RefField   = "id"
	TitleField = "title"
	TextField  = "text"
)

var (
	ErrIncompatible = errors.New("incompatible index artifact")
	ErrFingerprint  = errors.New("index artifact fingerprint mismatch")
	ErrUnknownField = errors.New("unknown index field")
	ErrDuplicateID  = errors.New("duplicate record id")
	ErrEmptyID      = errors.New("record id is empty")
)

// Record is one indexed document.
type Record struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// Field is a searchable record field and its relevance weight.
type Field struct {
	Name  string  `json:"name"`
	Boost float64 `json:"boost"`
}

// DefaultFields weights title matches ten times higher than body matches.
func DefaultFields() []Field {
	return []Field{
		{Name: TitleField, Boost: 10},
		{Name: TextField, Boost: 1},
	}
}

// Artifact is the serialized index written by the builder.
type Artifact struct {
	SchemaVersion int      `json:"schema_version"`
	Library       string   `json:"library"`
	Ref           string   `json:"ref"`
	Fields        []Field  `json:"fields"`
	Fingerprint   string   `json:"fingerprint"`
	Documents     []Record `json:"documents"`
}

// Hit is a record matched by a query.
type Hit struct {
	Record
	Score float64 `json:"score"`
}

// Fingerprint hashes the records in order. Two builds over the same
// documents produce the same fingerprint.
func Fingerprint(recs []Record) string {
	h := sha256.New()
	for _, r := range recs {
		for _, s := range []string{r.ID, r.Title, r.URL, r.Text} {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (r Record) field(name string) string {
	switch name {
	case TitleField:
		return r.Title
	case TextField:
		return r.Text
	}
	return ""
}
