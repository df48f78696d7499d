package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	matchUC "github.com/khoahotran/neplaunch/internal/application/usecase/match"
	"github.com/khoahotran/neplaunch/internal/application/usecase/ranking"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// CandidateDefaults apply when a ranking request omits top_k or min_score.
type CandidateDefaults struct {
	TopK     int
	MinScore float64
}

type MatchHandler struct {
	rankUseCase    *ranking.RankCandidatesUseCase
	proposeUseCase *matchUC.ProposeMatchUseCase
	respondUseCase *matchUC.RespondMatchUseCase
	listUseCase    *matchUC.ListMatchesUseCase
	getUseCase     *matchUC.GetMatchUseCase
	defaults       CandidateDefaults
	logger         logger.Logger
}

func NewMatchHandler(
	rankUC *ranking.RankCandidatesUseCase,
	proposeUC *matchUC.ProposeMatchUseCase,
	respondUC *matchUC.RespondMatchUseCase,
	listUC *matchUC.ListMatchesUseCase,
	getUC *matchUC.GetMatchUseCase,
	defaults CandidateDefaults,
	log logger.Logger,
) *MatchHandler {
	return &MatchHandler{
		rankUseCase:    rankUC,
		proposeUseCase: proposeUC,
		respondUseCase: respondUC,
		listUseCase:    listUC,
		getUseCase:     getUC,
		defaults:       defaults,
		logger:         log,
	}
}

func (h *MatchHandler) ListCandidates(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	input := ranking.RankCandidatesInput{SeekerID: userID, TopK: h.defaults.TopK, MinScore: h.defaults.MinScore}
	if raw := c.Query("role"); raw != "" {
		role, err := user.ParseRole(strings.ToUpper(raw))
		if err != nil {
			c.Error(apperror.NewInvalidInput("invalid role filter", err))
			return
		}
		input.Role = role
	}
	if raw := c.Query("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("top_k must be an integer", err))
			return
		}
		input.TopK = topK
	}
	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.Error(apperror.NewInvalidInput("min_score must be a number", err))
			return
		}
		input.MinScore = minScore
	}

	output, err := h.rankUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": ToCandidateDTOs(output.Candidates)})
}

func (h *MatchHandler) ProposeMatch(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	var req ProposeMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid match request", err))
		return
	}

	output, err := h.proposeUseCase.Execute(c.Request.Context(), matchUC.ProposeMatchInput{
		RequesterID: userID,
		TargetID:    req.TargetID,
		JobID:       req.JobID,
		Message:     req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToMatchDTO(output.Match))
}

func (h *MatchHandler) RespondMatch(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid match ID", err))
		return
	}
	var req RespondMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("accept is required", err))
		return
	}

	output, err := h.respondUseCase.Execute(c.Request.Context(), matchUC.RespondMatchInput{
		MatchID:     matchID,
		ResponderID: userID,
		Accept:      *req.Accept,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToMatchDTO(output.Match))
}

func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	input := matchUC.ListMatchesInput{
		UserID:    userID,
		Direction: match.Direction(c.Query("direction")),
	}
	if raw := c.Query("status"); raw != "" {
		status := match.Status(strings.ToUpper(raw))
		input.Status = &status
	}
	var err error
	if input.Limit, err = strconv.Atoi(c.DefaultQuery("limit", "50")); err != nil {
		c.Error(apperror.NewInvalidInput("limit must be an integer", err))
		return
	}
	if input.Offset, err = strconv.Atoi(c.DefaultQuery("offset", "0")); err != nil {
		c.Error(apperror.NewInvalidInput("offset must be an integer", err))
		return
	}

	output, err := h.listUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": ToMatchDTOs(output.Matches)})
}

func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid match ID", err))
		return
	}

	m, err := h.getUseCase.Execute(c.Request.Context(), matchID, userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToMatchDTO(m))
}
