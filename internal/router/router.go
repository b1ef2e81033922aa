package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/reelguess/internal/handler"
	"github.com/user/reelguess/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 海报静态资源
	r.Static("/posters", h.Config.DataDir+"/posters")

	// ==================== 认证 ====================
	admin := r.Group("/admin")
	{
		admin.POST("/login", h.Login)
		admin.POST("/logout", h.Logout)
	}

	// ==================== 游戏公开 API ====================
	api := r.Group("/api")
	{
		api.GET("/movie-schedule", h.MovieSchedule)
		api.GET("/movie-clues", h.MovieClues)
		api.GET("/movie-suggestions", h.MovieSuggestions)

		api.POST("/game/start", h.StartGame)
		api.GET("/game/:id", h.GetGame)
		api.POST("/game/:id/guess", h.SubmitGuess)
		api.GET("/game/:id/stats", h.GameStats)
	}

	// ==================== 审核台 API（需要管理员）====================
	authed := r.Group("/api")
	authed.Use(middleware.RequireAdmin(h.Config.AppSecret))
	{
		authed.GET("/stats", h.AdminStats)
		authed.GET("/managed-clues", h.ManagedClues)
		authed.POST("/batch-approve-clues", h.BatchApproveClues)
		authed.POST("/reject-clue", h.RejectClue)
		authed.POST("/toggle-clue-status", h.ToggleClueStatus)
		authed.POST("/update-clue", h.UpdateClue)
		authed.POST("/delete-clue", h.DeleteClue)

		authed.GET("/movie-reviews", h.MovieReviews)
		authed.GET("/clue-candidates", h.ClueCandidates)
		authed.POST("/fetch-reviews", h.FetchReviews)

		authed.POST("/initialize-movie-schedule", h.InitializeMovieSchedule)
		authed.POST("/advance-movie-schedule", h.AdvanceMovieSchedule)
	}
}
