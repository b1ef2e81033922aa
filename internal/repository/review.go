package repository

import (
	"github.com/user/reelguess/internal/model"
	"gorm.io/gorm"
)

// ReviewRepository 影评仓库，影评入库后不再修改
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建影评仓库
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListReviews 列出一部电影的全部影评
func (r *ReviewRepository) ListReviews(movieID string) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.Where("movie_id = ?", movieID).Find(&reviews).Error
	return reviews, err
}

// InsertReviews 批量写入影评
func (r *ReviewRepository) InsertReviews(reviews []*model.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	return r.db.Create(&reviews).Error
}
