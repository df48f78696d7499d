package match

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type ListMatchesUseCase struct {
	matchRepo match.Repository
	logger    logger.Logger
}

func NewListMatchesUseCase(mr match.Repository, log logger.Logger) *ListMatchesUseCase {
	return &ListMatchesUseCase{matchRepo: mr, logger: log}
}

type ListMatchesInput struct {
	UserID    uuid.UUID
	Direction match.Direction
	Status    *match.Status
	Limit     int
	Offset    int
}

type ListMatchesOutput struct {
	Matches []*match.Match
}

func (uc *ListMatchesUseCase) Execute(ctx context.Context, input ListMatchesInput) (*ListMatchesOutput, error) {
	switch input.Direction {
	case "", match.DirectionIncoming, match.DirectionOutgoing:
	default:
		return nil, apperror.NewInvalidInput("direction must be incoming or outgoing", nil)
	}
	if input.Limit < 0 || input.Offset < 0 {
		return nil, apperror.NewInvalidInput("limit and offset must not be negative", nil)
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperror.NewInvalidInput("status must be PENDING, ACCEPTED or REJECTED", nil)
	}

	matches, err := uc.matchRepo.List(ctx, match.ListFilter{
		UserID:    input.UserID,
		Direction: input.Direction,
		Status:    input.Status,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListMatchesOutput{Matches: matches}, nil
}

type GetMatchUseCase struct {
	matchRepo match.Repository
}

func NewGetMatchUseCase(mr match.Repository) *GetMatchUseCase {
	return &GetMatchUseCase{matchRepo: mr}
}

// Execute returns the match only to its requester or target.
func (uc *GetMatchUseCase) Execute(ctx context.Context, matchID, viewerID uuid.UUID) (*match.Match, error) {
	m, err := uc.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Involves(viewerID) {
		return nil, apperror.NewNotAuthorized("only participants can view a match")
	}
	return m, nil
}
