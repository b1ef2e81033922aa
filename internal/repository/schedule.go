package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/reelguess/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleRepository 每日排片仓库，date 是主键
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository 创建排片仓库
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetEntry 查某天的排片，缺失时返回 (nil, nil)
func (r *ScheduleRepository) GetEntry(date string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.db.Where("date = ?", date).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// CreateEntryIfAbsent 条件写入：date 冲突时什么都不做，然后读回落库的记录
// 并发选片的竞争在这里收敛，先写者胜，后来者拿到先写者的结果
func (r *ScheduleRepository) CreateEntryIfAbsent(date, movieID string) (*model.ScheduleEntry, error) {
	entry := &model.ScheduleEntry{
		Date:      date,
		MovieID:   movieID,
		CreatedAt: time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(entry).Error
	if err != nil {
		return nil, err
	}

	// 无论刚才是不是自己写进去的，都以库里的为准
	stored, err := r.GetEntry(date)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("排片写入后读取失败: %s", date)
	}
	return stored, nil
}

// SetEntry 覆盖写某天的排片
func (r *ScheduleRepository) SetEntry(date, movieID string) error {
	entry := &model.ScheduleEntry{
		Date:      date,
		MovieID:   movieID,
		CreatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"movie_id", "created_at"}),
	}).Create(entry).Error
}

// DeleteEntry 删除某天的排片
func (r *ScheduleRepository) DeleteEntry(date string) error {
	return r.db.Where("date = ?", date).Delete(&model.ScheduleEntry{}).Error
}

// ClearFrom 清掉某天（含）之后的全部排片
func (r *ScheduleRepository) ClearFrom(date string) error {
	return r.db.Where("date >= ?", date).Delete(&model.ScheduleEntry{}).Error
}
