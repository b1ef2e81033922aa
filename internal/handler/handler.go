package handler

import (
	"github.com/user/reelguess/internal/config"
	"github.com/user/reelguess/internal/service"
)

// Stores 处理器依赖的全部持久化端口
// 关系库部署由 repository.Repositories 提供，文件部署由 FileStore 一个对象全包
type Stores struct {
	Movies   service.MovieStore
	Reviews  service.ReviewStore
	Clues    service.ClueStore
	Schedule service.ScheduleStore
}

// Handler HTTP 处理器
type Handler struct {
	Config    *config.Config
	Stores    Stores
	Clues     *service.ClueService
	Scheduler *service.Scheduler
	Games     *service.GameService
	Suggest   *service.SuggestService
	Crawler   *service.LetterboxdCrawler
}

// NewHandler 创建处理器并装配服务
func NewHandler(cfg *config.Config, stores Stores) *Handler {
	clueSvc := service.NewClueService(stores.Clues, stores.Reviews, stores.Movies, cfg.MinClueCount)
	scheduler := service.NewScheduler(stores.Movies, stores.Schedule, clueSvc, cfg.UpcomingDays)
	games := service.NewGameService(scheduler, stores.Clues, cfg.MaxGuesses, nil)
	suggest := service.NewSuggestService(stores.Movies)
	crawler := service.NewLetterboxdCrawler(stores.Reviews)

	return &Handler{
		Config:    cfg,
		Stores:    stores,
		Clues:     clueSvc,
		Scheduler: scheduler,
		Games:     games,
		Suggest:   suggest,
		Crawler:   crawler,
	}
}
