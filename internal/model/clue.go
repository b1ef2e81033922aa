package model

import "time"

// ClueStatus 线索审核状态
type ClueStatus string

const (
	ClueApproved ClueStatus = "approved"
	ClueRejected ClueStatus = "rejected"
)

// Clue 线索模型：从影评中抽取并脱敏的句子
// 生命周期：候选句 -> 审核通过/拒绝，通过与拒绝之间可以互相切换
type Clue struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	MovieID    string     `json:"movieId" gorm:"index:idx_clues_movie"`
	MovieTitle string     `json:"movieTitle"`
	MovieYear  int        `json:"movieYear"`
	ClueText   string     `json:"clueText"`
	Status     ClueStatus `json:"-" gorm:"index"`
	CreatedAt  time.Time  `json:"createdAt"`
	DecidedAt  time.Time  `json:"decidedAt"`
	Rating     *float64   `json:"rating,omitempty"`
	Liked      *bool      `json:"is_liked,omitempty"`
	Reviewer   string     `json:"reviewer,omitempty"`
	ReviewURL  string     `json:"reviewUrl,omitempty"`
}

// ClueCandidate 批量审核提交的候选线索
type ClueCandidate struct {
	MovieID    string   `json:"movieId" binding:"required"`
	MovieTitle string   `json:"movieTitle" binding:"required"`
	MovieYear  int      `json:"movieYear"`
	ClueText   string   `json:"clueText" binding:"required"`
	Rating     *float64 `json:"rating,omitempty"`
	Liked      *bool    `json:"is_liked,omitempty"`
	Reviewer   string   `json:"reviewer,omitempty"`
	ReviewURL  string   `json:"reviewUrl,omitempty"`
}
