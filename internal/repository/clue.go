package repository

import (
	"errors"
	"strings"

	"github.com/user/reelguess/internal/model"
	"gorm.io/gorm"
)

// ClueRepository 线索仓库
// 通过与拒绝的线索在同一张表里，用 status 列区分
type ClueRepository struct {
	db *gorm.DB
}

// NewClueRepository 创建线索仓库
func NewClueRepository(db *gorm.DB) *ClueRepository {
	return &ClueRepository{db: db}
}

// ListApproved 列出已通过线索，movieID 为空时不过滤
func (r *ClueRepository) ListApproved(movieID string) ([]*model.Clue, error) {
	var clues []*model.Clue
	q := r.db.Where("status = ?", model.ClueApproved)
	if movieID != "" {
		q = q.Where("movie_id = ?", movieID)
	}
	err := q.Order("decided_at DESC").Find(&clues).Error
	return clues, err
}

// ListByStatus 按状态分页列出线索，支持按片名/线索文本搜索
func (r *ClueRepository) ListByStatus(status model.ClueStatus, search string, page, limit int) ([]*model.Clue, int64, error) {
	q := r.db.Model(&model.Clue{}).Where("status = ?", status)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(movie_title) LIKE ? OR LOWER(clue_text) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clues []*model.Clue
	err := q.Order("decided_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&clues).Error
	return clues, total, err
}

// GetClue 按 ID 和状态查线索，不在该状态集合里时返回 (nil, nil)
func (r *ClueRepository) GetClue(id string, status model.ClueStatus) (*model.Clue, error) {
	var clue model.Clue
	err := r.db.Where("id = ? AND status = ?", id, status).First(&clue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clue, nil
}

// FindClue 按 ID 查线索（不限状态），不存在时返回 (nil, nil)
func (r *ClueRepository) FindClue(id string) (*model.Clue, error) {
	var clue model.Clue
	err := r.db.Where("id = ?", id).First(&clue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clue, nil
}

// InsertClues 批量写入线索
func (r *ClueRepository) InsertClues(clues []*model.Clue) error {
	if len(clues) == 0 {
		return nil
	}
	return r.db.Create(&clues).Error
}

// SaveClue 整条保存（状态切换用）
func (r *ClueRepository) SaveClue(clue *model.Clue) error {
	return r.db.Save(clue).Error
}

// UpdateClueText 更新线索文本
func (r *ClueRepository) UpdateClueText(id, text string) error {
	return r.db.Model(&model.Clue{}).Where("id = ?", id).Update("clue_text", text).Error
}

// DeleteClue 删除线索
func (r *ClueRepository) DeleteClue(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Clue{}).Error
}

// ApprovedCounts 每部电影的已通过线索数
func (r *ClueRepository) ApprovedCounts() (map[string]int, error) {
	type row struct {
		MovieID string
		N       int
	}
	var rows []row
	err := r.db.Model(&model.Clue{}).
		Select("movie_id, COUNT(*) AS n").
		Where("status = ?", model.ClueApproved).
		Group("movie_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.MovieID] = r.N
	}
	return counts, nil
}

// CountApproved 已通过线索总数
func (r *ClueRepository) CountApproved() (int64, error) {
	var count int64
	err := r.db.Model(&model.Clue{}).Where("status = ?", model.ClueApproved).Count(&count).Error
	return count, err
}

// CountMoviesWithClues 有已通过线索的电影数
func (r *ClueRepository) CountMoviesWithClues() (int64, error) {
	var count int64
	err := r.db.Model(&model.Clue{}).
		Where("status = ?", model.ClueApproved).
		Distinct("movie_id").
		Count(&count).Error
	return count, err
}

// HasApproved 查 (movieId, clueText) 是否已在通过集合里
func (r *ClueRepository) HasApproved(movieID, clueText string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Clue{}).
		Where("status = ? AND movie_id = ? AND clue_text = ?", model.ClueApproved, movieID, clueText).
		Count(&count).Error
	return count > 0, err
}
