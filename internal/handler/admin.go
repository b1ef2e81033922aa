package handler

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/user/reelguess/internal/model"
	"github.com/user/reelguess/internal/service"
	"github.com/user/reelguess/internal/utils"
)

// ==================== 审核台 API ====================

// AdminStats 审核台首页的汇总数字
func (h *Handler) AdminStats(c *gin.Context) {
	clueCount, movieCount, err := h.Clues.Stats()
	if err != nil {
		log.Printf("[Handler] 统计失败: %v", err)
		utils.InternalServerError(c, "统计失败")
		return
	}

	movies, err := h.Stores.Movies.ListMovies()
	if err != nil {
		log.Printf("[Handler] 读取电影目录失败: %v", err)
		utils.InternalServerError(c, "读取电影目录失败")
		return
	}

	eligible, err := h.Clues.EligibleMovies()
	if err != nil {
		log.Printf("[Handler] 统计可排期电影失败: %v", err)
		utils.InternalServerError(c, "统计失败")
		return
	}

	utils.Success(c, gin.H{
		"totalMovies":       len(movies),
		"approvedClues":     clueCount,
		"moviesWithClues":   movieCount,
		"schedulableMovies": len(eligible),
	})
}

// ManagedClues 分页列出已通过线索，支持按片名/线索文本搜索
func (h *Handler) ManagedClues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	clues, total, err := h.Clues.ListManaged(search, page, limit)
	if err != nil {
		log.Printf("[Handler] 读取线索列表失败: %v", err)
		utils.InternalServerError(c, "读取线索列表失败")
		return
	}

	utils.Success(c, gin.H{
		"clues": clues,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

type batchApproveRequest struct {
	Clues []model.ClueCandidate `json:"clues" binding:"required,min=1,dive"`
}

// BatchApproveClues 批量通过候选线索，重复提交幂等
func (h *Handler) BatchApproveClues(c *gin.Context) {
	var req batchApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	added, err := h.Clues.ApproveBatch(req.Clues)
	if err != nil {
		log.Printf("[Handler] 批量通过线索失败: %v", err)
		utils.InternalServerError(c, "写入线索失败")
		return
	}

	utils.SuccessWithMessage(c, fmt.Sprintf("新增 %d 条线索", added), gin.H{"added": added})
}

type rejectClueRequest struct {
	Clue model.ClueCandidate `json:"clue" binding:"required"`
}

// RejectClue 把一条候选句记为已拒绝
func (h *Handler) RejectClue(c *gin.Context) {
	var req rejectClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	clue, err := h.Clues.Reject(req.Clue)
	if err != nil {
		log.Printf("[Handler] 拒绝线索失败: %v", err)
		utils.InternalServerError(c, "写入线索失败")
		return
	}
	utils.Success(c, clue)
}

type toggleClueRequest struct {
	ClueID        string `json:"clueId" binding:"required"`
	CurrentStatus string `json:"currentStatus" binding:"required,oneof=approved rejected"`
}

// ToggleClueStatus 在通过/拒绝之间切换线索状态
func (h *Handler) ToggleClueStatus(c *gin.Context) {
	var req toggleClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	clue, err := h.Clues.ToggleStatus(req.ClueID, model.ClueStatus(req.CurrentStatus))
	if err == service.ErrNotFound {
		utils.NotFound(c, "线索不存在")
		return
	}
	if err != nil {
		log.Printf("[Handler] 切换线索状态失败: %v", err)
		utils.InternalServerError(c, "更新线索失败")
		return
	}
	utils.Success(c, clue)
}

type updateClueRequest struct {
	ClueID   string `json:"clueId" binding:"required"`
	ClueText string `json:"clueText" binding:"required"`
}

// UpdateClue 修改线索文本
func (h *Handler) UpdateClue(c *gin.Context) {
	var req updateClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	err := h.Clues.UpdateText(req.ClueID, req.ClueText)
	if err == service.ErrNotFound {
		utils.NotFound(c, "线索不存在")
		return
	}
	if err != nil {
		log.Printf("[Handler] 更新线索失败: %v", err)
		utils.InternalServerError(c, "更新线索失败")
		return
	}
	utils.SuccessWithMessage(c, "更新成功", nil)
}

type deleteClueRequest struct {
	ClueID string `json:"clueId" binding:"required"`
}

// DeleteClue 删除线索
func (h *Handler) DeleteClue(c *gin.Context) {
	var req deleteClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	err := h.Clues.Delete(req.ClueID)
	if err == service.ErrNotFound {
		utils.NotFound(c, "线索不存在")
		return
	}
	if err != nil {
		log.Printf("[Handler] 删除线索失败: %v", err)
		utils.InternalServerError(c, "删除线索失败")
		return
	}
	utils.SuccessWithMessage(c, "删除成功", nil)
}

// MovieReviews 一部电影的全部影评
func (h *Handler) MovieReviews(c *gin.Context) {
	movieID := c.Query("movieId")
	if movieID == "" {
		utils.BadRequest(c, "缺少 movieId 参数")
		return
	}

	reviews, err := h.Stores.Reviews.ListReviews(movieID)
	if err != nil {
		log.Printf("[Handler] 读取影评失败: %v", err)
		utils.InternalServerError(c, "读取影评失败")
		return
	}
	utils.Success(c, reviews)
}

// ClueCandidates 为一部电影生成脱敏后的候选线索句
func (h *Handler) ClueCandidates(c *gin.Context) {
	movieID := c.Query("movieId")
	if movieID == "" {
		utils.BadRequest(c, "缺少 movieId 参数")
		return
	}

	candidates, err := h.Clues.Candidates(movieID)
	if err == service.ErrNotFound {
		utils.NotFound(c, "电影不存在")
		return
	}
	if err != nil {
		log.Printf("[Handler] 生成候选线索失败: %v", err)
		utils.InternalServerError(c, "生成候选线索失败")
		return
	}
	utils.Success(c, candidates)
}

type initScheduleRequest struct {
	Days      int  `json:"days"`
	KeepToday bool `json:"keepToday"`
}

// InitializeMovieSchedule 从今天起重排 N 天的排片
func (h *Handler) InitializeMovieSchedule(c *gin.Context) {
	var req initScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	count, err := h.Scheduler.InitializeSchedule(req.KeepToday, req.Days)
	if err == service.ErrNoEligibleMovie {
		utils.BadRequest(c, "没有可排期的电影")
		return
	}
	if err != nil {
		log.Printf("[Handler] 初始化排片失败: %v", err)
		utils.InternalServerError(c, "初始化排片失败")
		return
	}
	utils.SuccessWithMessage(c, fmt.Sprintf("已排好 %d 天", count), gin.H{"days": count})
}

// AdvanceMovieSchedule 把明天的排片提前到今天
func (h *Handler) AdvanceMovieSchedule(c *gin.Context) {
	if err := h.Scheduler.AdvanceSchedule(); err != nil {
		if err == service.ErrNoEligibleMovie {
			utils.BadRequest(c, "没有可排期的电影")
			return
		}
		log.Printf("[Handler] 推进排片失败: %v", err)
		utils.InternalServerError(c, "推进排片失败")
		return
	}
	utils.SuccessWithMessage(c, "已推进到下一部电影", nil)
}

type fetchReviewsRequest struct {
	MovieID  string `json:"movieId" binding:"required"`
	FilmSlug string `json:"filmSlug" binding:"required"`
	Pages    int    `json:"pages"`
}

// FetchReviews 抓取一部电影的 Letterboxd 影评入库
func (h *Handler) FetchReviews(c *gin.Context) {
	var req fetchReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	count, err := h.Crawler.FetchReviews(req.MovieID, req.FilmSlug, req.Pages)
	if err != nil {
		log.Printf("[Handler] 抓取影评失败: %v", err)
		utils.InternalServerError(c, "抓取影评失败")
		return
	}
	utils.SuccessWithMessage(c, fmt.Sprintf("抓取到 %d 条影评", count), gin.H{"count": count})
}

// bindErrorMessage 把校验错误转成可读提示
func bindErrorMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return fmt.Sprintf("参数 %s 不符合 %s 规则", errs[0].Field(), errs[0].Tag())
	}
	return "请求格式错误"
}
