package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/neplaunch/internal/application/usecase/profile"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

const maxAvatarBytes = 5 << 20

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		logger:         log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileResponse(output.Profile, false))
}

// ListProfiles lists other members holding ?role=, optionally above
// ?min_completeness=.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	role, err := user.ParseRole(strings.ToUpper(strings.TrimSpace(c.Query("role"))))
	if err != nil {
		c.Error(apperror.NewInvalidInput("role must be FOUNDER, TALENT or INVESTOR", err))
		return
	}
	input := profileUC.ListProfilesInput{Role: role, ViewerID: userID}
	if raw := c.Query("min_completeness"); raw != "" {
		if input.MinCompleteness, err = strconv.ParseFloat(raw, 64); err != nil {
			c.Error(apperror.NewInvalidInput("min_completeness must be a number", err))
			return
		}
	}

	output, err := h.profileUseCase.ExecuteListProfiles(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	resp := make([]ProfileResponse, len(output.Profiles))
	for i, p := range output.Profiles {
		resp[i] = ToProfileResponse(p, false)
	}
	c.JSON(http.StatusOK, gin.H{"profiles": resp})
}

// UpdateProfile decodes the body into the request shape of the caller's role.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	role, _ := GetRoleFromGinContext(c)

	patch, err := bindProfilePatch(c, role)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), profileUC.UpdateProfileInput{
		OwnerID: userID,
		Patch:   patch,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileResponse(output.Profile, output.EmbeddingStale))
}

func bindProfilePatch(c *gin.Context, role user.Role) (profile.Patch, error) {
	switch role {
	case user.RoleFounder:
		var req FounderProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperror.NewInvalidInput("invalid founder profile body", err)
		}
		return req.ToPatch(), nil
	case user.RoleTalent:
		var req TalentProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperror.NewInvalidInput("invalid talent profile body", err)
		}
		return req.ToPatch(), nil
	case user.RoleInvestor:
		var req InvestorProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperror.NewInvalidInput("invalid investor profile body", err)
		}
		return req.ToPatch(), nil
	}
	return nil, apperror.NewInvalidInput("token carries no valid role", user.ErrInvalidRole)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart field 'file' is required", err))
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		c.Error(apperror.NewInvalidInput("avatar must be at most 5MB", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("cannot open uploaded file", err))
		return
	}
	defer file.Close()

	output, err := h.profileUseCase.ExecuteUploadAvatar(c.Request.Context(), profileUC.UploadAvatarInput{
		OwnerID: userID,
		File:    file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": output.AvatarURL})
}
