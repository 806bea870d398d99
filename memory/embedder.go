package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Embedder converts text into a fixed-size vector for similarity comparison.
// Implementations must be deterministic for a given input: the same text
// always maps to the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DefaultLocalDims is the default dimensionality of the local embedder.
const DefaultLocalDims = 256

// LocalEmbedder is a deterministic, dependency-free embedder hashing word
// unigrams and bigrams into a fixed-size bag-of-features vector, unit
// normalized. Retrieval quality is far below a learned embedding model but
// identical texts always score 1.0 and overlapping texts score higher than
// unrelated ones, which is what the store contract needs. Used in tests and
// offline operation.
type LocalEmbedder struct {
	dims int
}

// NewLocalEmbedder creates a local embedder; dims <= 0 applies DefaultLocalDims.
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = DefaultLocalDims
	}
	return &LocalEmbedder{dims: dims}
}

// Embed implements Embedder.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		vec[e.bucket(w)]++
		if i+1 < len(words) {
			vec[e.bucket(w+" "+words[i+1])]++
		}
	}
	normalize(vec)
	return vec, nil
}

func (e *LocalEmbedder) bucket(feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(e.dims))
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// cosine returns the cosine similarity of two vectors, 0 when shapes differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
