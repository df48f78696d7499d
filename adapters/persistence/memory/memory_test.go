package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
)

func TestEmbeddingRepo_LatestWins(t *testing.T) {
	ctx := context.Background()
	repo := NewEmbeddingRepo()
	id := uuid.New()
	now := time.Now()

	require.NoError(t, repo.Put(ctx, embedding.Embedding{UserID: id, Source: embedding.SourceProfile, Vector: embedding.Vector{1, 0}, GeneratedAt: now}))
	require.NoError(t, repo.Put(ctx, embedding.Embedding{UserID: id, Source: embedding.SourceProfile, Vector: embedding.Vector{0, 1}, GeneratedAt: now.Add(-time.Second)}))

	got, err := repo.Get(ctx, id, embedding.SourceProfile)
	require.NoError(t, err)
	assert.Equal(t, embedding.Vector{1, 0}, got.Vector, "older generation must not override")

	require.NoError(t, repo.Put(ctx, embedding.Embedding{UserID: id, Source: embedding.SourceProfile, Vector: embedding.Vector{0, 1}, GeneratedAt: now.Add(time.Second)}))
	got, err = repo.Get(ctx, id, embedding.SourceProfile)
	require.NoError(t, err)
	assert.Equal(t, embedding.Vector{0, 1}, got.Vector)
}

func TestEmbeddingRepo_GetLatestAndBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewEmbeddingRepo()
	founder, other, missing := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	require.NoError(t, repo.Put(ctx, embedding.Embedding{UserID: founder, Source: embedding.SourceRolePosting, Vector: embedding.Vector{0, 1}, GeneratedAt: now}))
	require.NoError(t, repo.Put(ctx, embedding.Embedding{UserID: founder, Source: embedding.SourceProfile, Vector: embedding.Vector{1, 0}, GeneratedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Put(ctx, embedding.Embedding{UserID: other, Source: embedding.SourceRolePosting, Vector: embedding.Vector{1, 1}, GeneratedAt: now}))

	latest, err := repo.GetLatest(ctx, founder)
	require.NoError(t, err)
	assert.Equal(t, embedding.SourceProfile, latest.Source)

	_, err = repo.GetLatest(ctx, missing)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	batch, err := repo.GetLatestForUsers(ctx, []uuid.UUID{founder, other, missing})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, embedding.SourceRolePosting, batch[other].Source)
}

func TestProfileRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepo()
	id := uuid.New()

	p, err := profile.New(user.RoleFounder, id, time.Now())
	require.NoError(t, err)
	p.(*profile.Founder).Name = "Himal Labs"
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.GetByUserID(ctx, id)
	require.NoError(t, err)
	got.(*profile.Founder).Name = "mutated"

	again, err := repo.GetByUserID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Himal Labs", again.(*profile.Founder).Name)

	_, err = repo.GetByUserID(ctx, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestProfileRepo_ListByRole(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepo()
	seeker := uuid.New()

	for i := 0; i < 3; i++ {
		p, _ := profile.New(user.RoleTalent, uuid.New(), time.Now())
		p.Meta().CompletenessScore = float64(i * 50)
		require.NoError(t, repo.Upsert(ctx, p))
	}
	inv, _ := profile.New(user.RoleInvestor, uuid.New(), time.Now())
	require.NoError(t, repo.Upsert(ctx, inv))
	self, _ := profile.New(user.RoleTalent, seeker, time.Now())
	self.Meta().CompletenessScore = 100
	require.NoError(t, repo.Upsert(ctx, self))

	pool, err := repo.ListByRole(ctx, user.RoleTalent, 50, seeker)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Less(t, pool[0].Meta().UserID.String(), pool[1].Meta().UserID.String())
}

func TestMatchRepo_DuplicatePendingAndRace(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepo()
	requester, target := uuid.New(), uuid.New()

	m, err := match.New(requester, target, nil, nil, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, m))

	dup, _ := match.New(requester, target, nil, nil, nil, time.Now())
	err = repo.Create(ctx, dup)
	assert.True(t, errors.Is(err, apperror.ErrDuplicatePending))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, accept := range []bool{true, false} {
		wg.Add(1)
		go func(i int, accept bool) {
			defer wg.Done()
			loaded, err := repo.FindByID(ctx, m.ID)
			if err != nil {
				results[i] = err
				return
			}
			expected := loaded.Version
			if err := loaded.Respond(target, accept, time.Now()); err != nil {
				results[i] = err
				return
			}
			results[i] = repo.UpdateStatus(ctx, loaded, expected)
		}(i, accept)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, apperror.ErrAlreadyFinalized))
	}
	assert.Equal(t, 1, succeeded)

	// A resolved request frees the key for a new proposal.
	again, _ := match.New(requester, target, nil, nil, nil, time.Now())
	assert.NoError(t, repo.Create(ctx, again))
}

func TestMatchRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepo()
	me, a, b := uuid.New(), uuid.New(), uuid.New()
	base := time.Now()

	out1, _ := match.New(me, a, nil, nil, nil, base)
	out2, _ := match.New(me, b, nil, nil, nil, base.Add(time.Minute))
	in1, _ := match.New(a, me, nil, nil, nil, base.Add(2*time.Minute))
	for _, m := range []*match.Match{out1, out2, in1} {
		require.NoError(t, repo.Create(ctx, m))
	}

	outgoing, err := repo.List(ctx, match.ListFilter{UserID: me, Direction: match.DirectionOutgoing})
	require.NoError(t, err)
	require.Len(t, outgoing, 2)
	assert.Equal(t, out2.ID, outgoing[0].ID, "newest first")

	incoming, err := repo.List(ctx, match.ListFilter{UserID: me, Direction: match.DirectionIncoming})
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	all, err := repo.List(ctx, match.ListFilter{UserID: me, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NotPanics(t, func() {
		clamped, err := repo.List(ctx, match.ListFilter{UserID: me, Offset: -1})
		require.NoError(t, err)
		assert.Len(t, clamped, 3, "negative offset reads from the start")
	})
}
