package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/user/reelguess/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovieRepository 电影目录仓库
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository 创建电影仓库
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ListMovies 列出全部电影
func (r *MovieRepository) ListMovies() ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.Order("title").Find(&movies).Error
	return movies, err
}

// FindMovie 按 ID 查找电影，不存在时返回 (nil, nil)
func (r *MovieRepository) FindMovie(id string) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Where("id = ?", id).First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

// SearchMovies 按片名子串搜索（大小写不敏感，两种后端通用的写法）
func (r *MovieRepository) SearchMovies(query string, limit int) ([]*model.Movie, error) {
	var movies []*model.Movie
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.Where("LOWER(title) LIKE ?", pattern).
		Order("title").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// UpsertMovie 创建或更新电影
func (r *MovieRepository) UpsertMovie(movie *model.Movie) error {
	movie.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(movie).Error
}

// CountMovies 电影总数
func (r *MovieRepository) CountMovies() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}

// ImportCatalog 批量导入电影目录（用于从 JSON 目录文件初始化数据库）
func (r *MovieRepository) ImportCatalog(movies []*model.Movie) error {
	for _, movie := range movies {
		if err := r.UpsertMovie(movie); err != nil {
			return err
		}
	}
	return nil
}
