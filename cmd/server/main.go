package main

import (
	"context"
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/reelguess/internal/config"
	"github.com/user/reelguess/internal/handler"
	"github.com/user/reelguess/internal/middleware"
	"github.com/user/reelguess/internal/model"
	"github.com/user/reelguess/internal/repository"
	"github.com/user/reelguess/internal/router"
	"github.com/user/reelguess/internal/utils"
)

func main() {
	// 注册 Session 模型
	gob.Register(model.SessionUser{})

	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	// 装配持久化层：file: 前缀走 JSON 文件回退，其余走关系库
	stores, closeDB, err := buildStores(cfg)
	if err != nil {
		log.Fatalf("持久化层初始化失败: %v", err)
	}
	defer closeDB()

	// 初始化缓存
	utils.InitCache()

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 设置 Session 中间件
	store := cookie.NewStore([]byte(cfg.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 天
		HttpOnly: true,
		Secure:   false, // 关键：非 HTTPS 环境必须为 false
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("reelguess_session", store))

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Security())
	r.Use(middleware.Cors(cfg.CorsOrigin))

	// 初始化 Handler
	h := handler.NewHandler(cfg, stores)

	// 注册路由
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Printf("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("服务器强制关闭:", err)
	}

	log.Println("服务器已退出")
}

// buildStores 按 DATABASE_URL 选择持久化实现
func buildStores(cfg *config.Config) (handler.Stores, func(), error) {
	if strings.HasPrefix(cfg.DatabaseURL, "file:") {
		dir := strings.TrimPrefix(cfg.DatabaseURL, "file:")
		if dir == "" {
			dir = cfg.DataDir
		}
		fs, err := repository.NewFileStore(dir)
		if err != nil {
			return handler.Stores{}, nil, err
		}
		log.Printf("[Main] 使用 JSON 文件存储: %s", dir)
		return handler.Stores{
			Movies:   fs,
			Reviews:  fs,
			Clues:    fs,
			Schedule: fs,
		}, func() {}, nil
	}

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		return handler.Stores{}, nil, err
	}
	repos := repository.NewRepositories(db)

	// 电影表为空时从数据目录的目录文件导入一次
	if err := seedCatalog(cfg, repos); err != nil {
		log.Printf("[Main] 导入电影目录失败: %v", err)
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return handler.Stores{
		Movies:   repos.Movie,
		Reviews:  repos.Review,
		Clues:    repos.Clue,
		Schedule: repos.Schedule,
	}, closeDB, nil
}

// seedCatalog 首次启动时把目录文件里的电影和影评灌进数据库
func seedCatalog(cfg *config.Config, repos *repository.Repositories) error {
	count, err := repos.Movie.CountMovies()
	if err != nil || count > 0 {
		return err
	}

	path := filepath.Join(cfg.DataDir, "letterboxd_movies.json")
	if _, err := os.Stat(path); err != nil {
		return nil // 没有目录文件就不导入
	}

	movies, reviews, err := repository.LoadMovieCatalog(path)
	if err != nil {
		return err
	}
	if err := repos.Movie.ImportCatalog(movies); err != nil {
		return err
	}
	if err := repos.Review.InsertReviews(reviews); err != nil {
		return err
	}
	log.Printf("[Main] 已导入 %d 部电影、%d 条影评", len(movies), len(reviews))
	return nil
}
