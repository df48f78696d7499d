package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

type ProfileUseCase struct {
	profileRepo profile.Repository
	userRepo    user.Repository
	store       embedding.Repository
	indexer     *embeddinguc.ReembedUseCase
	publisher   service.EventPublisher
	uploader    service.Uploader
	logger      logger.Logger
}

func NewProfileUseCase(pr profile.Repository, ur user.Repository, store embedding.Repository, indexer *embeddinguc.ReembedUseCase, pub service.EventPublisher, uploader service.Uploader, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: pr,
		userRepo:    ur,
		store:       store,
		indexer:     indexer,
		publisher:   pub,
		uploader:    uploader,
		logger:      log,
	}
}

type GetProfileInput struct {
	OwnerID uuid.UUID
}

type GetProfileOutput struct {
	Profile profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	p, err := uc.profileRepo.GetByUserID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	return &GetProfileOutput{Profile: p}, nil
}

type ListProfilesInput struct {
	Role     user.Role
	ViewerID uuid.UUID
	// MinCompleteness drops profiles scored below it; zero keeps all.
	MinCompleteness float64
}

type ListProfilesOutput struct {
	Profiles []profile.Profile
}

// ExecuteListProfiles browses the network by role. The viewer's own profile
// is never listed.
func (uc *ProfileUseCase) ExecuteListProfiles(ctx context.Context, input ListProfilesInput) (*ListProfilesOutput, error) {
	if !input.Role.Valid() {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown role %q", input.Role), user.ErrInvalidRole)
	}
	if input.MinCompleteness < 0 || input.MinCompleteness > 100 {
		return nil, apperror.NewInvalidInput("min_completeness must be between 0 and 100", nil)
	}

	profiles, err := uc.profileRepo.ListByRole(ctx, input.Role, input.MinCompleteness, input.ViewerID)
	if err != nil {
		return nil, err
	}
	return &ListProfilesOutput{Profiles: profiles}, nil
}

type UpdateProfileInput struct {
	OwnerID uuid.UUID
	Patch   profile.Patch
}

type UpdateProfileOutput struct {
	Profile           profile.Profile
	CompletenessScore float64
	// EmbeddingStale is set when the profile was saved but its embedding could
	// not be regenerated; a re-embed request has been queued instead.
	EmbeddingStale bool
}

// ExecuteUpdateProfile applies a partial update, creating the profile on the
// first write, and keeps the profile's embedding current.
func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.OwnerID.String()))

	p, err := uc.loadOrCreate(ctx, input.OwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	prevText := p.EmbeddingText()
	prevScore := p.Meta().CompletenessScore

	if err := input.Patch.ApplyTo(p); err != nil {
		err = apperror.NewInvalidInput(err.Error(), err)
		span.RecordError(err)
		return nil, err
	}
	score := profile.Refresh(p)
	p.Meta().UpdatedAt = time.Now().UTC()

	if err := uc.profileRepo.Upsert(ctx, p); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update profile failed: %w", err)
	}

	out := &UpdateProfileOutput{Profile: p, CompletenessScore: score}
	if !uc.needsReembed(ctx, p, prevText, prevScore) {
		return out, nil
	}

	if _, err := uc.indexer.IndexProfile(ctx, p); err != nil {
		uc.logger.Warn("Profile saved with stale embedding",
			zap.String("user_id", input.OwnerID.String()), zap.Error(err))
		out.EmbeddingStale = true
		uc.queueReembed(p, err)
	}
	span.SetAttributes(attribute.Float64("completeness_score", score), attribute.Bool("embedding_stale", out.EmbeddingStale))
	return out, nil
}

func (uc *ProfileUseCase) loadOrCreate(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	p, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("load profile failed: %w", err)
	}

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.New(u.Role, userID, time.Now().UTC())
}

func (uc *ProfileUseCase) needsReembed(ctx context.Context, p profile.Profile, prevText string, prevScore float64) bool {
	if p.EmbeddingText() != prevText || p.Meta().CompletenessScore != prevScore {
		return true
	}
	_, err := uc.store.Get(ctx, p.Meta().UserID, p.Source())
	return err != nil
}

func (uc *ProfileUseCase) queueReembed(p profile.Profile, cause error) {
	req := service.ReembedRequest{
		UserID:      p.Meta().UserID,
		Source:      string(p.Source()),
		RequestedAt: time.Now().UTC(),
		Reason:      cause.Error(),
	}
	go func() {
		if err := uc.publisher.PublishReembedRequest(context.Background(), req); err != nil {
			uc.logger.Error("Failed to queue re-embed request", err, zap.String("user_id", req.UserID.String()))
		}
	}()
}

type UploadAvatarInput struct {
	OwnerID uuid.UUID
	File    io.Reader
}

type UploadAvatarOutput struct {
	AvatarURL string
}

func (uc *ProfileUseCase) ExecuteUploadAvatar(ctx context.Context, input UploadAvatarInput) (*UploadAvatarOutput, error) {
	if uc.uploader == nil {
		return nil, apperror.NewInternal("avatar storage is not configured", nil)
	}

	folder := fmt.Sprintf("users/%s/avatar", input.OwnerID.String())
	url, err := uc.uploader.Upload(ctx, input.File, folder, "avatar")
	if err != nil {
		return nil, apperror.NewInternal("failed to upload avatar", err)
	}

	if _, err := uc.ExecuteUpdateProfile(ctx, UpdateProfileInput{
		OwnerID: input.OwnerID,
		Patch:   profile.AvatarPatch{URL: url},
	}); err != nil {
		return nil, err
	}
	return &UploadAvatarOutput{AvatarURL: url}, nil
}
