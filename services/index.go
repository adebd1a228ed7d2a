package services

import (
	"math"
	"sort"

	"summarysnap/internal/apperr"
	"summarysnap/models"
)

// Index is an exact cosine-similarity index over one document's chunks. It
// is immutable after construction and safe for concurrent reads.
type Index struct {
	documentID string
	chunks     []models.Chunk
	vecs       [][]float32
	mags       []float64
	dim        int
}

// NewIndex pairs chunks with their embeddings and precomputes magnitudes.
func NewIndex(documentID string, chunks []models.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, apperr.Errorf(apperr.ErrIndex, "index.build",
			"chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil, apperr.Errorf(apperr.ErrIndex, "index.build", "no chunks to index")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, apperr.Errorf(apperr.ErrIndex, "index.build", "zero-dimension embedding")
	}
	mags := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, apperr.Errorf(apperr.ErrIndex, "index.build",
				"inconsistent vector dims %d vs %d at chunk %d", len(v), dim, i)
		}
		mags[i] = magnitude(v)
	}

	return &Index{
		documentID: documentID,
		chunks:     append([]models.Chunk(nil), chunks...),
		vecs:       append([][]float32(nil), vectors...),
		mags:       mags,
		dim:        dim,
	}, nil
}

// Search returns the k chunks most similar to query, best first. Ties keep
// document order.
func (ix *Index) Search(query []float32, k int) ([]models.ScoredChunk, error) {
	if len(query) != ix.dim {
		return nil, apperr.Errorf(apperr.ErrIndex, "index.search",
			"query dim %d != index dim %d", len(query), ix.dim)
	}
	qm := magnitude(query)
	if qm == 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	scoreds := make([]scored, 0, len(ix.vecs))
	for j := range ix.vecs {
		if ix.mags[j] == 0 {
			continue
		}
		s := dot(query, ix.vecs[j]) / (qm * ix.mags[j])
		if math.IsNaN(s) {
			continue
		}
		scoreds = append(scoreds, scored{idx: j, score: s})
	}
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].score > scoreds[b].score })
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}

	out := make([]models.ScoredChunk, k)
	for n := 0; n < k; n++ {
		out[n] = models.ScoredChunk{Chunk: ix.chunks[scoreds[n].idx], Score: scoreds[n].score}
	}
	return out, nil
}

func (ix *Index) DocumentID() string { return ix.documentID }

func (ix *Index) Len() int { return len(ix.chunks) }

func (ix *Index) Dim() int { return ix.dim }

// Chunks returns the indexed chunks in document order.
func (ix *Index) Chunks() []models.Chunk {
	return append([]models.Chunk(nil), ix.chunks...)
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}
