package model

import (
	"fmt"
	"time"

	"github.com/user/reelguess/internal/utils"
)

// Movie 电影模型（Letterboxd 信息）
type Movie struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"index"`
	Year       int       `json:"year"`
	Director   string    `json:"director"`
	Actors     []string  `json:"actors" gorm:"serializer:json"`
	Genres     []string  `json:"genres" gorm:"serializer:json"`
	Rating     float64   `json:"rating"`
	PosterPath string    `json:"poster_path"`
	Liked      bool      `json:"is_liked"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Key 电影唯一标识：优先使用 ID，否则由标题和年份推导
func (m *Movie) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("%s-%d", utils.SlugTitle(m.Title), m.Year)
}

// Review 影评模型，归属于某部电影，入库后不可变
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MovieID   string    `json:"movie_id" gorm:"index"`
	Text      string    `json:"text"`
	Rating    *float64  `json:"rating,omitempty"`
	Liked     *bool     `json:"is_liked,omitempty"`
	Author    string    `json:"author,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScheduleEntry 每日排片表，date 唯一
type ScheduleEntry struct {
	Date      string    `json:"date" gorm:"primaryKey"`
	MovieID   string    `json:"movie_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MovieWithDate 带排期日期的电影（用于"即将上映"列表）
type MovieWithDate struct {
	Movie
	ScheduledDate string `json:"scheduledDate"`
}

// SessionUser 专门用于 Session 存储的管理员信息结构
type SessionUser struct {
	Name string
	Role string
}
