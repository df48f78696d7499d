package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type RedisEmbeddingRepoSuite struct {
	suite.Suite
	mr   *miniredis.Miniredis
	rdb  *redis.Client
	repo embedding.Repository
	ctx  context.Context
}

func (s *RedisEmbeddingRepoSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.repo = NewRedisEmbeddingRepo(s.rdb, logger.NewNop())
	s.ctx = context.Background()
}

func (s *RedisEmbeddingRepoSuite) TearDownTest() {
	s.rdb.Close()
}

func (s *RedisEmbeddingRepoSuite) TestPutAndGet() {
	id := uuid.New()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.Put(s.ctx, embedding.Embedding{UserID: id, Source: embedding.SourceProfile, Vector: embedding.Vector{0.25, -0.5, 1}, GeneratedAt: now}))

	got, err := s.repo.Get(s.ctx, id, embedding.SourceProfile)
	s.Require().NoError(err)
	s.Equal(embedding.Vector{0.25, -0.5, 1}, got.Vector)
	s.True(got.GeneratedAt.Equal(now))
	s.True(s.mr.Exists("embedding:" + id.String()))

	_, err = s.repo.Get(s.ctx, id, embedding.SourceThesis)
	s.True(errors.Is(err, apperror.ErrNotFound))
}

func (s *RedisEmbeddingRepoSuite) TestOlderWriteIsIgnored() {
	id := uuid.New()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.Put(s.ctx, embedding.Embedding{UserID: id, Source: embedding.SourceProfile, Vector: embedding.Vector{1, 0}, GeneratedAt: now}))
	s.Require().NoError(s.repo.Put(s.ctx, embedding.Embedding{UserID: id, Source: embedding.SourceProfile, Vector: embedding.Vector{0, 1}, GeneratedAt: now.Add(-time.Minute)}))

	got, err := s.repo.Get(s.ctx, id, embedding.SourceProfile)
	s.Require().NoError(err)
	s.Equal(embedding.Vector{1, 0}, got.Vector)
}

func (s *RedisEmbeddingRepoSuite) TestConcurrentPutsKeepNewest() {
	id := uuid.New()
	base := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := embedding.Embedding{
				UserID:      id,
				Source:      embedding.SourceProfile,
				Vector:      embedding.Vector{float32(i), 1},
				GeneratedAt: base.Add(time.Duration(i) * time.Second),
			}
			for attempt := 0; attempt < 50; attempt++ {
				if s.repo.Put(s.ctx, e) == nil {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	got, err := s.repo.Get(s.ctx, id, embedding.SourceProfile)
	s.Require().NoError(err)
	s.Equal(embedding.Vector{9, 1}, got.Vector)
}

func (s *RedisEmbeddingRepoSuite) TestLatestPriority() {
	founder, talent, missing := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.Put(s.ctx, embedding.Embedding{UserID: founder, Source: embedding.SourceProfile, Vector: embedding.Vector{1, 0}, GeneratedAt: now.Add(-time.Hour)}))
	s.Require().NoError(s.repo.Put(s.ctx, embedding.Embedding{UserID: founder, Source: embedding.SourceRolePosting, Vector: embedding.Vector{0, 1}, GeneratedAt: now}))
	s.Require().NoError(s.repo.Put(s.ctx, embedding.Embedding{UserID: talent, Source: embedding.SourceProfile, Vector: embedding.Vector{1, 1}, GeneratedAt: now}))

	latest, err := s.repo.GetLatest(s.ctx, founder)
	s.Require().NoError(err)
	s.Equal(embedding.SourceProfile, latest.Source)

	_, err = s.repo.GetLatest(s.ctx, missing)
	s.True(errors.Is(err, apperror.ErrNotFound))

	batch, err := s.repo.GetLatestForUsers(s.ctx, []uuid.UUID{founder, talent, missing})
	s.Require().NoError(err)
	s.Len(batch, 2)
	s.Equal(embedding.Vector{1, 1}, batch[talent].Vector)
}

func TestRedisEmbeddingRepo(t *testing.T) {
	suite.Run(t, new(RedisEmbeddingRepoSuite))
}
