package model

import "time"

// GameState 对局状态机：playing 为唯一非终态
type GameState string

const (
	GamePlaying GameState = "playing"
	GameSuccess GameState = "success"
	GameFailed  GameState = "failed"
	GameError   GameState = "error"
)

// InfoType 可揭示的元信息类别
type InfoType string

const (
	InfoYear      InfoType = "year"
	InfoGenre     InfoType = "genre"
	InfoActor     InfoType = "actor"
	InfoDirector  InfoType = "director"
	InfoAllGenres InfoType = "allGenres"
	InfoRating    InfoType = "rating"
)

// InfoItem 一条可揭示的电影元信息，未到对应阶段前保持锁定
type InfoItem struct {
	Type     InfoType    `json:"type"`
	Position int         `json:"position,omitempty"` // 演员番位（仅 actor）
	Value    interface{} `json:"value"`
	Locked   bool        `json:"locked"`
}

// PhaseConfig 阶段配置：每个阶段解锁一组元信息
type PhaseConfig struct {
	Phase     int      `json:"phase"`
	Title     string   `json:"title"`
	InfoTypes []string `json:"infoTypes"`
}

// DefaultPhaseConfig 默认的六阶段揭示顺序
func DefaultPhaseConfig() []PhaseConfig {
	return []PhaseConfig{
		{Phase: 1, Title: "Starting Phase", InfoTypes: []string{"year"}},
		{Phase: 2, Title: "Second Phase", InfoTypes: []string{"firstGenre"}},
		{Phase: 3, Title: "Third Phase", InfoTypes: []string{"thirdActor"}},
		{Phase: 4, Title: "Fourth Phase", InfoTypes: []string{"director"}},
		{Phase: 5, Title: "Fifth Phase", InfoTypes: []string{"secondActor", "allGenres"}},
		{Phase: 6, Title: "Final Phase", InfoTypes: []string{"firstActor", "rating"}},
	}
}

// GameHistoryEntry 对局历史，追加写入，最新在前
type GameHistoryEntry struct {
	MovieTitle string    `json:"movie"`
	Year       int       `json:"year"`
	Guesses    int       `json:"guesses"`
	Won        bool      `json:"won"`
	Date       time.Time `json:"date"`
}

// GameStats 由历史记录推导的聚合统计
type GameStats struct {
	Played     int     `json:"played"`
	Won        int     `json:"won"`
	AvgGuesses float64 `json:"avgGuesses"`
	Streak     int     `json:"streak"`
	BestStreak int     `json:"bestStreak"`
}
