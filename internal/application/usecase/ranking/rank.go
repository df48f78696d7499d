package ranking

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
)

// Candidate is one entry of the pool being ranked. A nil Vector means the
// candidate has no embedding and is never scored.
type Candidate struct {
	UserID uuid.UUID
	Vector embedding.Vector
}

type Scored struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
}

type slot struct {
	score float64
	ok    bool
}

// Rank scores every candidate against seeker and returns at most topK results
// with score >= minScore, ordered by score descending and then by user ID.
// Candidates whose vector length differs from the seeker's are dropped.
// If ctx is cancelled while scoring, partial results are discarded.
func Rank(ctx context.Context, seeker embedding.Vector, candidates []Candidate, topK int, minScore float64, workers int) ([]Scored, error) {
	if topK <= 0 {
		return []Scored{}, nil
	}
	if workers <= 0 {
		workers = 1
	}

	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Vector != nil {
			pool = append(pool, c)
		}
	}

	slots := make([]slot, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pool {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := embedding.Cosine(seeker, pool[i].Vector)
			if err != nil {
				return nil
			}
			slots[i] = slot{score: score, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Scored, 0, len(pool))
	for i, s := range slots {
		if s.ok && s.score >= minScore {
			out = append(out, Scored{UserID: pool[i].UserID, Score: s.score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return bytes.Compare(out[i].UserID[:], out[j].UserID[:]) < 0
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
