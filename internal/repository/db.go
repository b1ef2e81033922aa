package repository

import (
	"fmt"
	"strings"

	"github.com/user/reelguess/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
// postgres:// 开头走 Postgres，其余当作 sqlite 文件路径（可带 sqlite:// 前缀）
// 两种后端共用同一套模型和仓库，按部署二选一
func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	default:
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 自动建表
	if err := db.AutoMigrate(
		&model.Movie{},
		&model.Review{},
		&model.Clue{},
		&model.ScheduleEntry{},
	); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// Repositories 仓库集合
type Repositories struct {
	DB       *gorm.DB
	Movie    *MovieRepository
	Review   *ReviewRepository
	Clue     *ClueRepository
	Schedule *ScheduleRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Movie:    NewMovieRepository(db),
		Review:   NewReviewRepository(db),
		Clue:     NewClueRepository(db),
		Schedule: NewScheduleRepository(db),
	}
}
