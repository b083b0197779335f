package document

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// DefaultTopK is the number of documents Retrieve returns without WithTopK
const DefaultTopK = 3

// Store keeps documents in memory and ranks them by word overlap with the query
type Store struct {
	docs []*schema.Document
}

var (
	_ indexer.Indexer     = (*Store)(nil)
	_ retriever.Retriever = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{}
}

// Store implements indexer.Indexer. Documents without an ID get their position as ID.
func (s *Store) Store(_ context.Context, docs []*schema.Document, _ ...indexer.Option) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("doc-%d", len(s.docs))
		}
		s.docs = append(s.docs, doc)
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// Len returns the number of stored documents
func (s *Store) Len() int {
	return len(s.docs)
}

// Retrieve implements retriever.Retriever. Results are copies carrying their
// score (schema.Document.Score); documents scoring zero are never returned.
func (s *Store) Retrieve(_ context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := DefaultTopK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	if options.TopK != nil {
		topK = *options.TopK
	}

	type scored struct {
		doc   *schema.Document
		score float64
	}
	q := words(query)
	ranked := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		ranked = append(ranked, scored{doc: doc, score: jaccard(q, words(doc.Content))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if topK >= 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	var out []*schema.Document
	for _, r := range ranked {
		if r.score <= 0 {
			continue
		}
		if options.ScoreThreshold != nil && r.score < *options.ScoreThreshold {
			continue
		}
		meta := make(map[string]any, len(r.doc.MetaData)+1)
		for k, v := range r.doc.MetaData {
			meta[k] = v
		}
		cp := &schema.Document{ID: r.doc.ID, Content: r.doc.Content, MetaData: meta}
		out = append(out, cp.WithScore(r.score))
	}
	return out, nil
}

// Similarity is the Jaccard index of the lowercase whitespace-separated word sets of a and b
func Similarity(a, b string) float64 {
	return jaccard(words(a), words(b))
}

func words(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
