package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// JobUseCase manages a founder's postings. Every change re-derives the
// founder's role_posting embedding from all of their postings.
type JobUseCase struct {
	jobRepo   job.Repository
	userRepo  user.Repository
	indexer   *embeddinguc.ReembedUseCase
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewJobUseCase(jr job.Repository, ur user.Repository, indexer *embeddinguc.ReembedUseCase, pub service.EventPublisher, log logger.Logger) *JobUseCase {
	return &JobUseCase{jobRepo: jr, userRepo: ur, indexer: indexer, publisher: pub, logger: log}
}

type JobInput struct {
	Title          string
	Description    string
	Requirements   string
	RequiredSkills []string
	Location       string
	JobType        string
	Compensation   string
}

func (in JobInput) applyTo(p *job.Posting) {
	p.Title = in.Title
	p.Description = in.Description
	p.Requirements = in.Requirements
	p.RequiredSkills = in.RequiredSkills
	p.Location = in.Location
	p.JobType = in.JobType
	p.Compensation = in.Compensation
}

func (uc *JobUseCase) requireFounder(ctx context.Context, userID uuid.UUID) error {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != user.RoleFounder {
		return apperror.NewPermissionDenied("only founders can manage job postings")
	}
	return nil
}

func (uc *JobUseCase) ExecuteCreate(ctx context.Context, founderID uuid.UUID, input JobInput) (*job.Posting, error) {
	if err := uc.requireFounder(ctx, founderID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &job.Posting{ID: uuid.New(), FounderID: founderID, CreatedAt: now, UpdatedAt: now}
	input.applyTo(p)
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	if err := uc.jobRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	uc.reindex(ctx, founderID)
	return p, nil
}

func (uc *JobUseCase) ExecuteUpdate(ctx context.Context, founderID, jobID uuid.UUID, input JobInput) (*job.Posting, error) {
	p, err := uc.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if p.FounderID != founderID {
		return nil, apperror.NewPermissionDenied("job posting belongs to another founder")
	}
	input.applyTo(p)
	p.UpdatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	if err := uc.jobRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.reindex(ctx, founderID)
	return p, nil
}

func (uc *JobUseCase) ExecuteDelete(ctx context.Context, founderID, jobID uuid.UUID) error {
	p, err := uc.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if p.FounderID != founderID {
		return apperror.NewPermissionDenied("job posting belongs to another founder")
	}
	if err := uc.jobRepo.Delete(ctx, jobID, founderID); err != nil {
		return err
	}
	uc.reindex(ctx, founderID)
	return nil
}

func (uc *JobUseCase) ExecuteGet(ctx context.Context, jobID uuid.UUID) (*job.Posting, error) {
	return uc.jobRepo.FindByID(ctx, jobID)
}

func (uc *JobUseCase) ExecuteList(ctx context.Context, founderID uuid.UUID) ([]*job.Posting, error) {
	return uc.jobRepo.ListByFounder(ctx, founderID)
}

// reindex never fails the posting write; a failed generation is queued for
// the worker instead.
func (uc *JobUseCase) reindex(ctx context.Context, founderID uuid.UUID) {
	_, err := uc.indexer.Execute(ctx, embeddinguc.ReembedInput{UserID: founderID, Source: embedding.SourceRolePosting})
	if err == nil {
		return
	}
	uc.logger.Warn("Role posting embedding left stale", zap.String("founder_id", founderID.String()), zap.Error(err))

	req := service.ReembedRequest{
		UserID:      founderID,
		Source:      string(embedding.SourceRolePosting),
		RequestedAt: time.Now().UTC(),
		Reason:      err.Error(),
	}
	go func() {
		if err := uc.publisher.PublishReembedRequest(context.Background(), req); err != nil {
			uc.logger.Error("Failed to queue re-embed request", err, zap.String("user_id", req.UserID.String()))
		}
	}()
}
