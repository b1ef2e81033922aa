package service

import (
	"errors"

	"github.com/user/reelguess/internal/model"
)

// 服务层只依赖这些持久化端口，具体实现由 repository 提供
// （关系库适配器或 JSON 文件回退适配器，按部署二选一）

var (
	// ErrNotFound 实体不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrNoEligibleMovie 没有任何电影攒够可排期的线索数
	ErrNoEligibleMovie = errors.New("没有符合条件的电影（每部电影至少需要 6 条已通过线索）")
)

// MovieStore 电影目录端口
type MovieStore interface {
	ListMovies() ([]*model.Movie, error)
	FindMovie(id string) (*model.Movie, error)
	SearchMovies(query string, limit int) ([]*model.Movie, error)
}

// ReviewStore 影评端口
type ReviewStore interface {
	ListReviews(movieID string) ([]*model.Review, error)
	InsertReviews(reviews []*model.Review) error
}

// ClueStore 线索端口
type ClueStore interface {
	ListApproved(movieID string) ([]*model.Clue, error)
	ListByStatus(status model.ClueStatus, search string, page, limit int) ([]*model.Clue, int64, error)
	GetClue(id string, status model.ClueStatus) (*model.Clue, error)
	// FindClue 不区分状态按 ID 查线索，缺失时返回 (nil, nil)
	FindClue(id string) (*model.Clue, error)
	InsertClues(clues []*model.Clue) error
	SaveClue(clue *model.Clue) error
	UpdateClueText(id, text string) error
	DeleteClue(id string) error
	ApprovedCounts() (map[string]int, error)
	CountApproved() (int64, error)
	CountMoviesWithClues() (int64, error)
	HasApproved(movieID, clueText string) (bool, error)
}

// ScheduleStore 每日排片端口，date 列唯一
type ScheduleStore interface {
	// GetEntry 查某天的排片，缺失时返回 (nil, nil)
	GetEntry(date string) (*model.ScheduleEntry, error)
	// CreateEntryIfAbsent 带唯一约束的条件写入：已存在时返回既有记录（先写者胜）
	CreateEntryIfAbsent(date, movieID string) (*model.ScheduleEntry, error)
	SetEntry(date, movieID string) error
	DeleteEntry(date string) error
	ClearFrom(date string) error
}
