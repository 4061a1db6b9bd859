package index

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/samber/lo"
)

// querySyntax are the characters that switch a query over to bleve's query
// string parser.
const querySyntax = `+-:^*?~"()\/`

// Index is an in-memory bleve index plus the records it was built from.
// It is not safe to add records concurrently with searches; callers build it
// once and only search afterwards.
type Index struct {
	bleve   bleve.Index
	fields  []Field
	records []Record
	byID    map[string]int
}

// New creates an empty index with the given searchable fields.
func New(fields []Field) (*Index, error) {
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	for _, f := range fields {
		if f.Name != TitleField && f.Name != TextField {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f.Name)
		}
		if f.Boost <= 0 {
			return nil, fmt.Errorf("field %q: boost must be positive, got %v", f.Name, f.Boost)
		}
	}
	if len(lo.UniqBy(fields, func(f Field) string { return f.Name })) != len(fields) {
		return nil, fmt.Errorf("field registered twice in %v", fields)
	}

	bi, err := bleve.NewMemOnly(newMapping(fields))
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Index{
		bleve:  bi,
		fields: append([]Field(nil), fields...),
		byID:   make(map[string]int),
	}, nil
}

func newMapping(fields []Field) mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	for _, f := range fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = false
		doc.AddFieldMappingsAt(f.Name, fm)
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = en.AnalyzerName
	return im
}

// Add indexes a single record.
func (ix *Index) Add(rec Record) error {
	return ix.AddAll([]Record{rec})
}

// AddAll indexes records in order as one batch. Nothing is added if any
// record is invalid.
func (ix *Index) AddAll(recs []Record) error {
	seen := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if rec.ID == "" {
			return ErrEmptyID
		}
		if _, ok := ix.byID[rec.ID]; ok || seen[rec.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = true
	}
	if len(recs) == 0 {
		return nil
	}

	batch := ix.bleve.NewBatch()
	for _, rec := range recs {
		doc := make(map[string]interface{}, len(ix.fields))
		for _, f := range ix.fields {
			doc[f.Name] = rec.field(f.Name)
		}
		if err := batch.Index(rec.ID, doc); err != nil {
			return fmt.Errorf("index %s: %w", rec.ID, err)
		}
	}
	if err := ix.bleve.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}

	for _, rec := range recs {
		ix.byID[rec.ID] = len(ix.records)
		ix.records = append(ix.records, rec)
	}
	return nil
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Fields returns the searchable fields and their weights.
func (ix *Index) Fields() []Field {
	return append([]Field(nil), ix.fields...)
}

// Records returns the indexed records in insertion order.
func (ix *Index) Records() []Record {
	return append([]Record(nil), ix.records...)
}

// Lookup joins a hit reference back to its record.
func (ix *Index) Lookup(id string) (Record, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Record{}, false
	}
	return ix.records[i], true
}

// Search evaluates q and returns up to limit hits (all hits when limit <= 0).
// Query syntax errors are returned as errors.
func (ix *Index) Search(q string, limit int) ([]Hit, error) {
	size := ix.Len()
	if limit > 0 && limit < size {
		size = limit
	}
	if size == 0 {
		return []Hit{}, nil
	}

	bq, err := ix.buildQuery(q)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}
	req := bleve.NewSearchRequestOptions(bq, size, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := ix.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		rec, ok := ix.Lookup(h.ID)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Record: rec, Score: h.Score})
	}
	return hits, nil
}

// buildQuery weights every field by its boost. Plain queries become one match
// query per field. Queries using query string syntax must match as written
// across all fields, and rank by a copy of the query scoped to each field.
func (ix *Index) buildQuery(q string) (query.Query, error) {
	if !strings.ContainsAny(q, querySyntax) {
		perField := make([]query.Query, 0, len(ix.fields))
		for _, f := range ix.fields {
			mq := bleve.NewMatchQuery(q)
			mq.SetField(f.Name)
			mq.SetBoost(f.Boost)
			perField = append(perField, mq)
		}
		return bleve.NewDisjunctionQuery(perField...), nil
	}

	must := bleve.NewQueryStringQuery(q)
	if _, err := must.Parse(); err != nil {
		return nil, err
	}
	perField := make([]query.Query, 0, len(ix.fields))
	for _, f := range ix.fields {
		scoped, err := bleve.NewQueryStringQuery(q).Parse()
		if err != nil {
			return nil, err
		}
		scopeToField(scoped, f)
		perField = append(perField, scoped)
	}
	return query.NewBooleanQuery([]query.Query{must}, perField, nil), nil
}

// scopeToField restricts the unscoped leaves of q to field f and multiplies
// their boost by the field's.
func scopeToField(q query.Query, f Field) {
	switch q := q.(type) {
	case *query.BooleanQuery:
		for _, sub := range []query.Query{q.Must, q.Should, q.MustNot} {
			if sub != nil {
				scopeToField(sub, f)
			}
		}
	case *query.ConjunctionQuery:
		for _, sub := range q.Conjuncts {
			scopeToField(sub, f)
		}
	case *query.DisjunctionQuery:
		for _, sub := range q.Disjuncts {
			scopeToField(sub, f)
		}
	case query.FieldableQuery:
		if q.Field() != "" {
			return
		}
		q.SetField(f.Name)
		if b, ok := q.(query.BoostableQuery); ok {
			b.SetBoost(b.Boost() * f.Boost)
		}
	}
}

// Artifact returns the serializable form of the index.
func (ix *Index) Artifact() Artifact {
	docs := ix.Records()
	if docs == nil {
		docs = []Record{}
	}
	return Artifact{
		SchemaVersion: SchemaVersion,
		Library:       Library,
		Ref:           RefField,
		Fields:        ix.Fields(),
		Fingerprint:   Fingerprint(docs),
		Documents:     docs,
	}
}

// Close releases the bleve index.
func (ix *Index) Close() error {
	return ix.bleve.Close()
}
