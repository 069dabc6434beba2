// Package intent maintains a semantic-similarity index over a fixed corpus
// of example questions. The index is advisory only: its best match is
// surfaced as a hint next to the answer and never gates operation selection.
package intent

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

// Match is the closest corpus example for a query.
type Match struct {
	Example string
	Score   float64
}

// Index holds the corpus embedded once at construction. Read-only after
// startup and safe to share across sessions.
type Index struct {
	embedder contractx.Embedder
	examples []string
	vectors  [][]float64
}

// New embeds the corpus eagerly. An embedding failure here is returned to
// the caller, who is expected to degrade to "no hint available" rather than
// abort startup.
func New(ctx context.Context, embedder contractx.Embedder, examples []string) (*Index, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if len(examples) == 0 {
		return &Index{embedder: embedder}, nil
	}

	vectors, err := embedder.Embed(ctx, examples)
	if err != nil {
		return nil, fmt.Errorf("embed intent corpus: %w", err)
	}
	if len(vectors) != len(examples) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d examples", len(vectors), len(examples))
	}

	return &Index{
		embedder: embedder,
		examples: append([]string{}, examples...),
		vectors:  vectors,
	}, nil
}

// Nearest returns the single most similar corpus example. ok=false covers
// every non-answer: nil index, empty corpus, and embedding failure — none of
// which may block the main answer path.
func (ix *Index) Nearest(ctx context.Context, query string) (Match, bool) {
	if ix == nil || len(ix.examples) == 0 {
		return Match{}, false
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		log.Warn().Err(err).Msg("intent index lookup failed, continuing without hint")
		return Match{}, false
	}

	best := -1
	bestScore := math.Inf(-1)
	for i, v := range ix.vectors {
		score := cosine(vectors[0], v)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return Match{}, false
	}
	return Match{Example: ix.examples[best], Score: bestScore}, true
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(-1)
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return math.Inf(-1)
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
