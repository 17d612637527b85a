package vector

import (
	"context"
	"math"
	"sort"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/tokenize"
)

// NameTFIDF identifies the TF-IDF backend.
const NameTFIDF = "tfidf"

// Ensure the builder and index implement the interfaces.
var (
	_ driven.SimilarityBuilder = (*TFIDFBuilder)(nil)
	_ driven.Similarity        = (*TFIDF)(nil)
)

// TFIDFBuilder prepares a vocabulary and IDF weights from the chunk set.
type TFIDFBuilder struct{}

// NewTFIDFBuilder creates a TF-IDF builder.
func NewTFIDFBuilder() *TFIDFBuilder {
	return &TFIDFBuilder{}
}

// Name returns the backend name.
func (b *TFIDFBuilder) Name() string {
	return NameTFIDF
}

// Build computes one L2-normalised sparse vector per chunk.
// An empty corpus yields an index that scores nothing.
func (b *TFIDFBuilder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Similarity, error) {
	freqs := make([]map[string]int, len(chunks))
	df := make(map[string]int)
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		freqs[i] = tokenize.Frequencies(chunks[i].IndexText())
		for term := range freqs[i] {
			df[term]++
		}
	}

	// Stable ordering for vocabulary.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	t := &TFIDF{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		vectors:    make([]sparse, len(chunks)),
	}
	n := float64(len(chunks))
	for i, term := range terms {
		t.vocabulary[term] = i
		// Smoothed IDF
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	for i, f := range freqs {
		t.vectors[i] = t.vectorise(f)
	}
	return t, nil
}

// sparse is a vector stored as parallel index and value slices.
type sparse struct {
	idx []int
	val []float64
}

// TFIDF is an immutable TF-IDF index.
type TFIDF struct {
	vocabulary map[string]int
	idf        []float64
	vectors    []sparse
}

// Name returns the backend name.
func (t *TFIDF) Name() string {
	return NameTFIDF
}

// Dimension returns the vocabulary size.
func (t *TFIDF) Dimension() int {
	return len(t.idf)
}

// Scores returns the cosine between the query vector and each chunk vector.
// Query terms outside the corpus vocabulary are ignored.
func (t *TFIDF) Scores(_ context.Context, query string) ([]float64, error) {
	scores := make([]float64, len(t.vectors))
	q := t.vectorise(tokenize.Frequencies(query))
	if len(q.idx) == 0 {
		return scores, nil
	}

	qmap := make(map[int]float64, len(q.idx))
	for k, i := range q.idx {
		qmap[i] = q.val[k]
	}
	for c, v := range t.vectors {
		s := 0.0
		for k, i := range v.idx {
			s += v.val[k] * qmap[i]
		}
		scores[c] = clamp(s)
	}
	return scores, nil
}

func (t *TFIDF) vectorise(freq map[string]int) sparse {
	total := 0
	for term, count := range freq {
		if _, ok := t.vocabulary[term]; ok {
			total += count
		}
	}
	if total == 0 {
		return sparse{}
	}

	var v sparse
	for term, count := range freq {
		i, ok := t.vocabulary[term]
		if !ok {
			continue
		}
		v.idx = append(v.idx, i)
		v.val = append(v.val, float64(count)/float64(total)*t.idf[i])
	}
	normalise(v.val)
	return v
}
