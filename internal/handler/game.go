package handler

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/user/reelguess/internal/service"
	"github.com/user/reelguess/internal/utils"
)

// ==================== 游戏公开 API ====================

// MovieSchedule 今日谜底加未来几天的排片
func (h *Handler) MovieSchedule(c *gin.Context) {
	today, err := h.Scheduler.SelectTodayMovie()
	if err != nil && err != service.ErrNoEligibleMovie {
		log.Printf("[Handler] 获取今日排片失败: %v", err)
		utils.InternalServerError(c, "获取排片失败")
		return
	}

	excludeID := ""
	if today != nil {
		excludeID = today.Key()
	}
	upcoming, err := h.Scheduler.SelectUpcoming(excludeID, h.Config.UpcomingDays)
	if err != nil {
		log.Printf("[Handler] 获取未来排片失败: %v", err)
		utils.InternalServerError(c, "获取排片失败")
		return
	}

	utils.Success(c, gin.H{
		"today":    today,
		"upcoming": upcoming,
	})
}

// MovieClues 一部电影的已通过线索
func (h *Handler) MovieClues(c *gin.Context) {
	movieID := c.Query("movieId")
	if movieID == "" {
		utils.BadRequest(c, "缺少 movieId 参数")
		return
	}

	clues, err := h.Clues.ListApproved(movieID)
	if err != nil {
		log.Printf("[Handler] 读取线索失败: %v", err)
		utils.InternalServerError(c, "读取线索失败")
		return
	}
	utils.Success(c, clues)
}

// MovieSuggestions 猜测输入框的片名联想
// 带 no-store 头；seq 序号落后于已处理的查询时结果直接作废
func (h *Handler) MovieSuggestions(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")

	query := c.Query("query")
	seq, _ := strconv.ParseUint(c.Query("seq"), 10, 64)

	suggestions, err := h.Suggest.Suggest(query, seq)
	if err == service.ErrStaleQuery {
		utils.SuccessWithMessage(c, "查询已被更新的输入取代", []service.Suggestion{})
		return
	}
	if err != nil {
		log.Printf("[Handler] 片名联想失败: %v", err)
		utils.InternalServerError(c, "搜索失败")
		return
	}
	utils.Success(c, suggestions)
}

// StartGame 开一局新游戏
func (h *Handler) StartGame(c *gin.Context) {
	session := h.Games.StartGame()
	utils.Success(c, session.View())
}

// GetGame 查询会话当前状态
func (h *Handler) GetGame(c *gin.Context) {
	session, err := h.Games.GetSession(c.Param("id"))
	if err != nil {
		utils.NotFound(c, "会话不存在或已过期")
		return
	}
	utils.Success(c, session.View())
}

type guessRequest struct {
	Guess string `json:"guess"`
}

// SubmitGuess 提交一次猜测，空输入算跳过
func (h *Handler) SubmitGuess(c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求格式错误")
		return
	}

	session, err := h.Games.SubmitGuess(c.Param("id"), req.Guess)
	if err != nil {
		utils.NotFound(c, "会话不存在或已过期")
		return
	}
	utils.Success(c, session.View())
}

// GameStats 会话内累计的对局统计
func (h *Handler) GameStats(c *gin.Context) {
	session, err := h.Games.GetSession(c.Param("id"))
	if err != nil {
		utils.NotFound(c, "会话不存在或已过期")
		return
	}
	utils.Success(c, session.Stats())
}
