package embedding

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/neplaunch/pkg/apperror"
)

func randomVector(r *rand.Rand, dim int) Vector {
	v := make(Vector, dim)
	for i := range v {
		v[i] = float32(r.NormFloat64())
	}
	return v
}

func TestCosine_Symmetric(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a, b := randomVector(r, 16), randomVector(r, 16)
		ab, err := Cosine(a, b)
		require.NoError(t, err)
		ba, err := Cosine(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestCosine_SelfSimilarityIsOne(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := randomVector(r, 32)
		s, err := Cosine(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, s, 1e-9)
	}
}

func TestCosine_ZeroVectorScoresZero(t *testing.T) {
	zero := Vector{0, 0, 0}
	s, err := Cosine(zero, Vector{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)
	assert.False(t, math.IsNaN(s))

	s, err = Cosine(zero, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)
}

func TestCosine_OrthogonalAndOpposite(t *testing.T) {
	s, err := Cosine(Vector{1, 0}, Vector{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)

	s, err = Cosine(Vector{1, 0}, Vector{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s, "opposite vectors are no signal, not negative")
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine(Vector{1, 0}, Vector{1, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrDimensionMismatch))
}

func TestLatest_PrefersProfileOverRolePosting(t *testing.T) {
	now := time.Now()
	id := uuid.New()
	all := []Embedding{
		{UserID: id, Source: SourceRolePosting, Vector: Vector{1}, GeneratedAt: now},
		{UserID: id, Source: SourceProfile, Vector: Vector{2}, GeneratedAt: now.Add(-time.Hour)},
	}
	got, ok := Latest(all)
	require.True(t, ok)
	assert.Equal(t, SourceProfile, got.Source)

	_, ok = Latest(nil)
	assert.False(t, ok)
}

func TestLatest_NewestWithinSamePriority(t *testing.T) {
	now := time.Now()
	id := uuid.New()
	all := []Embedding{
		{UserID: id, Source: SourceProfile, GeneratedAt: now.Add(-time.Minute)},
		{UserID: id, Source: SourceThesis, GeneratedAt: now},
	}
	got, ok := Latest(all)
	require.True(t, ok)
	assert.Equal(t, SourceThesis, got.Source)
}
