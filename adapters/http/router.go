package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/neplaunch/pkg/auth"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Match   *MatchHandler
	Job     *JobHandler
}

// NewRouter registers every API route on a fresh engine.
func NewRouter(h Handlers, jwtSvc *auth.JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), ErrorMiddleware(log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)

		private := api.Group("/")
		private.Use(AuthMiddleware(jwtSvc, log))
		{
			private.GET("/profile", h.Profile.GetProfile)
			private.PATCH("/profile", h.Profile.UpdateProfile)
			private.POST("/profile/avatar", h.Profile.UploadAvatar)
			private.GET("/profiles", h.Profile.ListProfiles)

			matches := private.Group("/matches")
			{
				matches.GET("/candidates", h.Match.ListCandidates)
				matches.POST("", h.Match.ProposeMatch)
				matches.GET("", h.Match.ListMatches)
				matches.GET("/:id", h.Match.GetMatch)
				matches.POST("/:id/respond", h.Match.RespondMatch)
			}

			jobs := private.Group("/jobs")
			{
				jobs.POST("", h.Job.CreateJob)
				jobs.GET("", h.Job.ListJobs)
				jobs.GET("/feed", h.Job.JobFeed)
				jobs.GET("/:id", h.Job.GetJob)
				jobs.PUT("/:id", h.Job.UpdateJob)
				jobs.DELETE("/:id", h.Job.DeleteJob)
			}
		}
	}
	return router
}
