package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/neplaunch/adapters/event"
	"github.com/khoahotran/neplaunch/adapters/persistence/memory"
	authUC "github.com/khoahotran/neplaunch/internal/application/usecase/auth"
	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	jobUC "github.com/khoahotran/neplaunch/internal/application/usecase/job"
	matchUC "github.com/khoahotran/neplaunch/internal/application/usecase/match"
	profileUC "github.com/khoahotran/neplaunch/internal/application/usecase/profile"
	"github.com/khoahotran/neplaunch/internal/application/usecase/ranking"
	"github.com/khoahotran/neplaunch/pkg/auth"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type constantProvider struct{}

func (constantProvider) GenerateEmbeddings(context.Context, string) (pgvector.Vector, error) {
	return pgvector.NewVector([]float32{1, 0}), nil
}

type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	users := memory.NewUserRepo()
	profiles := memory.NewProfileRepo()
	jobs := memory.NewJobRepo()
	matches := memory.NewMatchRepo()
	store := embeddinguc.NewStore(memory.NewEmbeddingRepo(), 2)
	gen := embeddinguc.NewGenerator(constantProvider{}, embeddinguc.GeneratorConfig{Dimension: 2, Timeout: time.Second}, log)
	indexer := embeddinguc.NewReembedUseCase(gen, store, profiles, jobs, log)
	publisher := event.NewLogPublisher(log)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)

	handlers := Handlers{
		Auth: NewAuthHandler(authUC.NewRegisterUseCase(users, jwtSvc, log), authUC.NewLoginUseCase(users, jwtSvc, log), log),
		Profile: NewProfileHandler(
			profileUC.NewProfileUseCase(profiles, users, store, indexer, publisher, nil, log), log),
		Match: NewMatchHandler(
			ranking.NewRankCandidatesUseCase(users, profiles, store, indexer, ranking.Config{MaxTopK: 50, Workers: 2}, log),
			matchUC.NewProposeMatchUseCase(matches, users, jobs, store, publisher, log),
			matchUC.NewRespondMatchUseCase(matches, publisher, log),
			matchUC.NewListMatchesUseCase(matches, log),
			matchUC.NewGetMatchUseCase(matches),
			CandidateDefaults{TopK: 10},
			log,
		),
		Job: NewJobHandler(jobUC.NewJobUseCase(jobs, users, indexer, publisher, log), log),
	}
	s.router = NewRouter(handlers, jwtSvc, log)
}

func (s *RouterTestSuite) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	out := map[string]any{}
	if rr.Body.Len() > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &out)
	}
	return rr, out
}

type account struct {
	token string
	id    string
}

func (s *RouterTestSuite) register(email, role string) account {
	rr, out := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "supersecret", "role": role})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return account{token: out["access_token"].(string), id: out["user"].(map[string]any)["id"].(string)}
}

func (s *RouterTestSuite) TestAuth() {
	s.register("founder@example.com", "founder")

	rr, out := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "FOUNDER@example.com", "password": "supersecret", "role": "TALENT"})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal("CONFLICT", out["code"])

	rr, out = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "founder@example.com", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal("UNAUTHORIZED", out["code"])

	rr, out = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "founder@example.com", "password": "supersecret"})
	s.Equal(http.StatusOK, rr.Code)
	s.NotEmpty(out["access_token"])

	rr, _ = s.do(http.MethodGet, "/api/profile", "", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
	rr, _ = s.do(http.MethodGet, "/api/profile", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *RouterTestSuite) TestProfileCandidatesAndMatchFlow() {
	founder := s.register("founder@example.com", "FOUNDER")
	talent := s.register("talent@example.com", "TALENT")

	rr, out := s.do(http.MethodGet, "/api/profile", founder.token, nil)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal("NOT_FOUND", out["code"])

	rr, out = s.do(http.MethodPatch, "/api/profile", founder.token, gin.H{"name": "Himal Labs", "tagline": "Payments for Nepal"})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Equal("FOUNDER", out["role"])
	s.Greater(out["completeness_score"].(float64), 0.0)

	rr, _ = s.do(http.MethodPatch, "/api/profile", talent.token, gin.H{"headline": "Go engineer", "location": "Kathmandu"})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	rr, out = s.do(http.MethodGet, "/api/matches/candidates", founder.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	candidates := out["candidates"].([]any)
	s.Require().Len(candidates, 1)
	s.Equal(talent.id, candidates[0].(map[string]any)["user_id"])
	s.InDelta(1.0, candidates[0].(map[string]any)["score"].(float64), 1e-9)

	rr, out = s.do(http.MethodGet, "/api/matches/candidates?top_k=abc", founder.token, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("INVALID_INPUT", out["code"])

	rr, out = s.do(http.MethodPost, "/api/matches", founder.token, gin.H{"target_id": founder.id})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("SELF_MATCH", out["code"])

	rr, out = s.do(http.MethodPost, "/api/matches", founder.token, gin.H{"target_id": talent.id, "message": "Join us"})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	s.Equal("PENDING", out["status"])
	s.InDelta(1.0, out["match_score"].(float64), 1e-9)
	matchID := out["id"].(string)

	rr, out = s.do(http.MethodPost, "/api/matches", founder.token, gin.H{"target_id": talent.id})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal("DUPLICATE_PENDING", out["code"])

	rr, out = s.do(http.MethodPost, "/api/matches/"+matchID+"/respond", founder.token, gin.H{"accept": true})
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal("NOT_AUTHORIZED", out["code"])

	rr, out = s.do(http.MethodPost, "/api/matches/"+matchID+"/respond", talent.token, gin.H{"accept": true})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Equal("ACCEPTED", out["status"])

	rr, out = s.do(http.MethodPost, "/api/matches/"+matchID+"/respond", talent.token, gin.H{"accept": false})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal("ALREADY_FINALIZED", out["code"])

	rr, out = s.do(http.MethodGet, "/api/matches?direction=incoming&status=accepted", talent.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Len(out["matches"].([]any), 1)

	rr, _ = s.do(http.MethodGet, "/api/matches/"+matchID, founder.token, nil)
	s.Equal(http.StatusOK, rr.Code)

	for _, query := range []string{"offset=-1", "limit=abc", "offset=x"} {
		rr, out = s.do(http.MethodGet, "/api/matches?"+query, talent.token, nil)
		s.Equal(http.StatusBadRequest, rr.Code, query)
		s.Equal("INVALID_INPUT", out["code"], query)
	}
}

func (s *RouterTestSuite) TestListProfilesByRole() {
	founder := s.register("founder@example.com", "FOUNDER")
	talent := s.register("talent@example.com", "TALENT")
	other := s.register("other@example.com", "TALENT")

	for _, acc := range []account{talent, other} {
		rr, _ := s.do(http.MethodPatch, "/api/profile", acc.token, gin.H{"headline": "Go engineer"})
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	}

	rr, out := s.do(http.MethodGet, "/api/profiles?role=talent", founder.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Len(out["profiles"].([]any), 2)

	rr, out = s.do(http.MethodGet, "/api/profiles?role=TALENT", talent.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Require().Len(out["profiles"].([]any), 1)
	s.Equal("TALENT", out["profiles"].([]any)[0].(map[string]any)["role"])

	rr, out = s.do(http.MethodGet, "/api/profiles?role=INVESTOR", founder.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Empty(out["profiles"].([]any))

	for _, query := range []string{"", "?role=admin", "?role=TALENT&min_completeness=x", "?role=TALENT&min_completeness=150"} {
		rr, out = s.do(http.MethodGet, "/api/profiles"+query, founder.token, nil)
		s.Equal(http.StatusBadRequest, rr.Code, query)
		s.Equal("INVALID_INPUT", out["code"], query)
	}
}

func (s *RouterTestSuite) TestJobs() {
	founder := s.register("founder@example.com", "FOUNDER")
	talent := s.register("talent@example.com", "TALENT")

	rr, out := s.do(http.MethodPost, "/api/jobs", talent.token, gin.H{"title": "CTO"})
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal("PERMISSION_DENIED", out["code"])

	rr, out = s.do(http.MethodPost, "/api/jobs", founder.token, gin.H{"title": "CTO", "required_skills": []string{"go"}})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	jobID := out["id"].(string)

	rr, out = s.do(http.MethodPut, "/api/jobs/"+jobID, founder.token, gin.H{"title": "Founding engineer"})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("Founding engineer", out["title"])

	rr, out = s.do(http.MethodGet, "/api/jobs?founder_id="+founder.id, talent.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Len(out["jobs"].([]any), 1)

	rr, _ = s.do(http.MethodGet, "/api/jobs/feed?founder_id="+founder.id, talent.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Contains(rr.Header().Get("Content-Type"), "application/rss+xml")
	s.Contains(rr.Body.String(), "<title>Founding engineer</title>")
	s.Contains(rr.Body.String(), "/api/jobs/"+jobID)

	rr, _ = s.do(http.MethodGet, "/api/jobs/feed?format=atom", founder.token, nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Contains(rr.Header().Get("Content-Type"), "application/atom+xml")
	s.Contains(rr.Body.String(), "<feed")

	rr, out = s.do(http.MethodGet, "/api/jobs/feed?format=json", founder.token, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("INVALID_INPUT", out["code"])

	rr, out = s.do(http.MethodGet, "/api/jobs/feed", talent.token, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("INVALID_INPUT", out["code"])

	rr, _ = s.do(http.MethodDelete, "/api/jobs/"+jobID, founder.token, nil)
	s.Equal(http.StatusNoContent, rr.Code)

	rr, _ = s.do(http.MethodGet, "/api/jobs/"+jobID, founder.token, nil)
	s.Equal(http.StatusNotFound, rr.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
