package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool        *pgxpool.Pool
	pgContainer   *postgres.PostgresContainer
	testLogger    logger.Logger
	userRepo      user.Repository
	profileRepo   profile.Repository
	embeddingRepo embedding.Repository
	matchRepo     match.Repository
	jobRepo       job.Repository
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool
	s.testLogger = logger.NewNop()

	s.userRepo = NewPostgresUserRepo(s.dbPool, s.testLogger)
	s.profileRepo = NewPostgresProfileRepo(s.dbPool, s.testLogger)
	s.embeddingRepo = NewPostgresEmbeddingRepo(s.dbPool, s.testLogger)
	s.matchRepo = NewPostgresMatchRepo(s.dbPool, s.testLogger)
	s.jobRepo = NewPostgresJobRepo(s.dbPool, s.testLogger)
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

func (s *RepoIntegrationTestSuite) newUser(role user.Role) *user.User {
	u := &user.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.userRepo.Create(context.Background(), u))
	return u
}

func (s *RepoIntegrationTestSuite) Test_User_DuplicateEmail() {
	ctx := context.Background()
	u := s.newUser(user.RoleTalent)

	found, err := s.userRepo.FindByEmail(ctx, u.Email)
	s.Require().NoError(err)
	s.Equal(user.RoleTalent, found.Role)

	dup := *u
	dup.ID = uuid.New()
	err = s.userRepo.Create(ctx, &dup)
	s.True(errors.Is(err, apperror.ErrConflict))

	_, err = s.userRepo.FindByID(ctx, uuid.New())
	s.True(errors.Is(err, apperror.ErrNotFound))
}

func (s *RepoIntegrationTestSuite) Test_Profile_Upsert_And_Pool() {
	ctx := context.Background()
	u := s.newUser(user.RoleInvestor)

	_, err := s.profileRepo.GetByUserID(ctx, u.ID)
	s.True(errors.Is(err, apperror.ErrNotFound))

	p, err := profile.New(user.RoleInvestor, u.ID, time.Now().UTC())
	s.Require().NoError(err)
	inv := p.(*profile.Investor)
	inv.ThesisText = "Seed-stage climate"
	inv.PreferredSectors = []string{"climate"}
	zero := 0.0
	inv.CheckSizeMin = &zero
	profile.Refresh(p)
	s.Require().NoError(s.profileRepo.Upsert(ctx, p))

	got, err := s.profileRepo.GetByUserID(ctx, u.ID)
	s.Require().NoError(err)
	gotInv := got.(*profile.Investor)
	s.Equal("Seed-stage climate", gotInv.ThesisText)
	s.Require().NotNil(gotInv.CheckSizeMin)
	s.InDelta(50.0, got.Meta().CompletenessScore, 1e-9)

	pool, err := s.profileRepo.ListByRole(ctx, user.RoleInvestor, 50, uuid.Nil)
	s.Require().NoError(err)
	s.NotEmpty(pool)

	wrong, _ := profile.New(user.RoleFounder, u.ID, time.Now().UTC())
	err = s.profileRepo.Upsert(ctx, wrong)
	s.True(errors.Is(err, apperror.ErrInvalidInput))
}

func (s *RepoIntegrationTestSuite) Test_Embedding_LatestWins() {
	ctx := context.Background()
	u := s.newUser(user.RoleFounder)
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.embeddingRepo.Put(ctx, embedding.Embedding{UserID: u.ID, Source: embedding.SourceRolePosting, Vector: embedding.Vector{0, 1, 0}, GeneratedAt: now}))
	s.Require().NoError(s.embeddingRepo.Put(ctx, embedding.Embedding{UserID: u.ID, Source: embedding.SourceProfile, Vector: embedding.Vector{1, 0, 0}, GeneratedAt: now}))
	s.Require().NoError(s.embeddingRepo.Put(ctx, embedding.Embedding{UserID: u.ID, Source: embedding.SourceProfile, Vector: embedding.Vector{0, 0, 1}, GeneratedAt: now.Add(-time.Second)}))

	got, err := s.embeddingRepo.Get(ctx, u.ID, embedding.SourceProfile)
	s.Require().NoError(err)
	s.Equal(embedding.Vector{1, 0, 0}, got.Vector)

	latest, err := s.embeddingRepo.GetLatest(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(embedding.SourceProfile, latest.Source)

	batch, err := s.embeddingRepo.GetLatestForUsers(ctx, []uuid.UUID{u.ID, uuid.New()})
	s.Require().NoError(err)
	s.Len(batch, 1)
	s.Equal(embedding.SourceProfile, batch[u.ID].Source)
}

func (s *RepoIntegrationTestSuite) Test_Match_PendingUniqueness_And_CAS() {
	ctx := context.Background()
	founder := s.newUser(user.RoleFounder)
	talent := s.newUser(user.RoleTalent)

	posting := &job.Posting{ID: uuid.New(), FounderID: founder.ID, Title: "CTO", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	s.Require().NoError(s.jobRepo.Save(ctx, posting))

	m, err := match.New(founder.ID, talent.ID, nil, nil, nil, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.matchRepo.Create(ctx, m))

	dup, _ := match.New(founder.ID, talent.ID, nil, nil, nil, time.Now().UTC())
	s.True(errors.Is(s.matchRepo.Create(ctx, dup), apperror.ErrDuplicatePending))

	withJob, _ := match.New(founder.ID, talent.ID, &posting.ID, nil, nil, time.Now().UTC())
	s.NoError(s.matchRepo.Create(ctx, withJob))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, accept := range []bool{true, false} {
		wg.Add(1)
		go func(i int, accept bool) {
			defer wg.Done()
			loaded, err := s.matchRepo.FindByID(ctx, m.ID)
			if err != nil {
				errs[i] = err
				return
			}
			expected := loaded.Version
			if err := loaded.Respond(talent.ID, accept, time.Now().UTC()); err != nil {
				errs[i] = err
				return
			}
			errs[i] = s.matchRepo.UpdateStatus(ctx, loaded, expected)
		}(i, accept)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			s.True(errors.Is(err, apperror.ErrAlreadyFinalized))
		}
	}
	s.Equal(1, winners)

	again, _ := match.New(founder.ID, talent.ID, nil, nil, nil, time.Now().UTC())
	s.NoError(s.matchRepo.Create(ctx, again), "resolved requests free the pending slot")

	pending := match.StatusPending
	incoming, err := s.matchRepo.List(ctx, match.ListFilter{UserID: talent.ID, Direction: match.DirectionIncoming, Status: &pending})
	s.Require().NoError(err)
	s.Len(incoming, 2)
}

func (s *RepoIntegrationTestSuite) Test_Job_CRUD() {
	ctx := context.Background()
	founder := s.newUser(user.RoleFounder)
	other := s.newUser(user.RoleFounder)

	p := &job.Posting{ID: uuid.New(), FounderID: founder.ID, Title: "Engineer", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	s.Require().NoError(s.jobRepo.Save(ctx, p))

	p.RequiredSkills = []string{"go"}
	s.Require().NoError(s.jobRepo.Update(ctx, p))

	got, err := s.jobRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal([]string{"go"}, got.RequiredSkills)

	s.True(errors.Is(s.jobRepo.Delete(ctx, p.ID, other.ID), apperror.ErrNotFound))
	s.Require().NoError(s.jobRepo.Delete(ctx, p.ID, founder.ID))

	list, err := s.jobRepo.ListByFounder(ctx, founder.ID)
	s.Require().NoError(err)
	s.Empty(list)
}
