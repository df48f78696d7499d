package embedding

import (
	"math"

	"github.com/khoahotran/neplaunch/pkg/apperror"
)

// Cosine returns the cosine similarity of a and b clamped to [0,1].
// A zero-norm vector carries no signal and scores 0. Negative similarity is
// also reported as 0: the engine never treats vectors as anti-matches.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, apperror.NewDimensionMismatch(len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	s := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(s), s < 0:
		return 0, nil
	case s > 1:
		return 1, nil
	}
	return s, nil
}

func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
