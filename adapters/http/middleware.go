package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/auth"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"
	GinContextKeyRole   = "role"
)

func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperror.NewUnauthorized("Authorization header is required", nil))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortWith(c, apperror.NewUnauthorized("Invalid token format", nil))
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Rejected token", zap.Error(err))
			abortWith(c, apperror.NewUnauthorized("Invalid or expired token", err))
			return
		}

		c.Set(GinContextKeyUserID, claims.UserID)
		c.Set(GinContextKeyRole, user.Role(claims.Role))
		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	c.AbortWithStatusJSON(apperror.ToHTTPStatus(err), err.ToJSON())
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetRoleFromGinContext(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(GinContextKeyRole)
	if !ok {
		return "", false
	}
	r, ok := v.(user.Role)
	return r, ok
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unexpected error", err)
		}

		status := apperror.ToHTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.FullPath()), zap.String("code", apperror.Code(appErr)))
		} else {
			log.Debug("Request rejected", zap.String("path", c.FullPath()), zap.String("code", apperror.Code(appErr)))
		}
		c.JSON(status, appErr.ToJSON())
	}
}
