package service

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/user/reelguess/internal/model"
)

// 会话在服务端缓存里保留 24 小时，够完成任何一局
const (
	sessionTTL      = 24 * time.Hour
	placeholderClue = "这部电影还没有可用的影评线索，试着用电影信息来猜吧！"
)

// availableInfoTypes 全部可揭示的元信息，按展示顺序
var availableInfoTypes = []string{
	"year", "firstGenre", "thirdActor", "director", "secondActor", "allGenres", "firstActor", "rating",
}

// GameSession 一局游戏的完整状态
// 同一会话可能被并发请求命中，字段由内部锁保护
type GameSession struct {
	ID            string                   `json:"id"`
	State         model.GameState          `json:"state"`
	Movie         *model.Movie             `json:"-"` // 谜底不下发
	Clues         []*model.Clue            `json:"-"`
	RevealedIndex int                      `json:"revealedClueIndex"`
	GuessCount    int                      `json:"guessCount"`
	MaxGuesses    int                      `json:"maxGuesses"`
	Phases        []model.PhaseConfig      `json:"-"`
	AllInfo       []model.InfoItem         `json:"allPossibleInfo"`
	Revealed      []model.InfoItem         `json:"revealedInfo"`
	Feedback      string                   `json:"feedback"`
	History       []model.GameHistoryEntry `json:"history"`
	UsedMovieIDs  []string                 `json:"usedMovieIds"`

	mu sync.Mutex
}

// GameService 对局服务：开局、判定猜测、推进揭示进度
type GameService struct {
	scheduler *Scheduler
	clues     ClueStore
	sessions  *cache.Cache
	maxGuess  int
	phases    []model.PhaseConfig
}

// NewGameService 创建对局服务
func NewGameService(scheduler *Scheduler, clues ClueStore, maxGuesses int, phases []model.PhaseConfig) *GameService {
	if maxGuesses <= 0 {
		maxGuesses = 6
	}
	if len(phases) == 0 {
		phases = model.DefaultPhaseConfig()
	}
	return &GameService{
		scheduler: scheduler,
		clues:     clues,
		sessions:  cache.New(sessionTTL, 2*sessionTTL),
		maxGuess:  maxGuesses,
		phases:    phases,
	}
}

// StartGame 开一局新游戏：取今日谜底和它的线索，初始化揭示进度
// 选不出电影时返回一个已处于 error 终态、带提示语的会话，而不是抛错误
func (s *GameService) StartGame() *GameSession {
	session := &GameSession{
		ID:         uuid.NewString(),
		State:      model.GamePlaying,
		MaxGuesses: s.maxGuess,
		Phases:     s.phases,
	}

	movie, err := s.scheduler.SelectTodayMovie()
	if err != nil {
		session.State = model.GameError
		if err == ErrNoEligibleMovie {
			session.Feedback = "今天没有排片。每部电影至少需要 6 条已通过的影评线索。"
		} else {
			log.Printf("[GameService] 开局失败: %v", err)
			session.Feedback = fmt.Sprintf("开局失败: %v，请稍后重试。", err)
		}
		s.sessions.Set(session.ID, session, cache.DefaultExpiration)
		return session
	}

	session.Movie = movie
	session.addUsedMovie(movie.Key())

	clues, err := s.clues.ListApproved(movie.Key())
	if err != nil {
		log.Printf("[GameService] 读取线索失败: %v", err)
		clues = nil
	}
	if len(clues) == 0 {
		// 没有线索也要能玩：给一条占位线索
		clues = []*model.Clue{{
			ID:         "placeholder",
			MovieID:    movie.Key(),
			MovieTitle: movie.Title,
			MovieYear:  movie.Year,
			ClueText:   placeholderClue,
			Status:     model.ClueApproved,
			DecidedAt:  time.Now(),
		}}
	}

	// 线索按文本长度升序揭示，相同长度保持原始顺序
	sort.SliceStable(clues, func(i, j int) bool {
		return len(clues[i].ClueText) < len(clues[j].ClueText)
	})
	session.Clues = clues
	session.RevealedIndex = 1 // 第一条（最短的）线索立即可见

	// 先生成全部元信息并锁定，再解锁第一阶段
	for _, infoID := range availableInfoTypes {
		if item := generateInfoItem(movie, infoID); item != nil {
			item.Locked = true
			session.AllInfo = append(session.AllInfo, *item)
		}
	}
	session.unlockPhase(0)

	// 第一阶段什么都没解锁时退回只给年份，保证开局至少有一条信息
	if len(session.Revealed) == 0 {
		if item := generateInfoItem(movie, "year"); item != nil {
			session.Revealed = append(session.Revealed, *item)
		}
	}

	s.sessions.Set(session.ID, session, cache.DefaultExpiration)
	return session
}

// GetSession 按 ID 取会话
func (s *GameService) GetSession(id string) (*GameSession, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*GameSession), nil
}

// SubmitGuess 提交一次猜测
// 空白输入算一次跳过；猜对进 success，用完次数进 failed，
// 否则揭示下一条线索和下一阶段的元信息
func (s *GameService) SubmitGuess(sessionID, guess string) (*GameSession, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.State != model.GamePlaying {
		return session, nil
	}

	trimmed := strings.TrimSpace(guess)
	correct := trimmed != "" && strings.EqualFold(trimmed, strings.TrimSpace(session.Movie.Title))

	session.GuessCount++

	if correct {
		session.State = model.GameSuccess
		session.Feedback = "猜对了！"
		session.recordResult(true)
		return session, nil
	}

	if trimmed == "" {
		session.Feedback = "你跳过了这次猜测。"
	} else {
		session.Feedback = fmt.Sprintf("很遗憾，「%s」不对。", trimmed)
	}

	if session.GuessCount >= session.MaxGuesses {
		session.State = model.GameFailed
		session.recordResult(false)
		return session, nil
	}

	// 还有机会：揭示下一阶段的元信息和下一条线索
	session.unlockPhase(session.GuessCount)
	if session.RevealedIndex < len(session.Clues) {
		session.RevealedIndex++
	}
	return session, nil
}

// SessionView 下发给客户端的会话快照
// 谜底电影只在对局结束后出现
type SessionView struct {
	ID           string                   `json:"id"`
	State        model.GameState          `json:"state"`
	Clues        []*model.Clue            `json:"clues"`
	GuessCount   int                      `json:"guessCount"`
	MaxGuesses   int                      `json:"maxGuesses"`
	AllInfo      []model.InfoItem         `json:"allPossibleInfo"`
	Revealed     []model.InfoItem         `json:"revealedInfo"`
	Feedback     string                   `json:"feedback,omitempty"`
	Movie        *model.Movie             `json:"movie,omitempty"`
	History      []model.GameHistoryEntry `json:"history"`
	UsedMovieIDs []string                 `json:"usedMovieIds"`
	Stats        model.GameStats          `json:"stats"`
}

// View 生成会话快照
func (sess *GameSession) View() *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	n := sess.RevealedIndex
	if n > len(sess.Clues) {
		n = len(sess.Clues)
	}

	view := &SessionView{
		ID:           sess.ID,
		State:        sess.State,
		Clues:        sess.Clues[:n],
		GuessCount:   sess.GuessCount,
		MaxGuesses:   sess.MaxGuesses,
		AllInfo:      sess.AllInfo,
		Revealed:     sess.Revealed,
		Feedback:     sess.Feedback,
		History:      sess.History,
		UsedMovieIDs: sess.UsedMovieIDs,
		Stats:        StatsFromHistory(sess.History),
	}
	if sess.State == model.GameSuccess || sess.State == model.GameFailed {
		view.Movie = sess.Movie
	}
	return view
}

// VisibleClues 当前可见的线索（已按长度排好序）
func (sess *GameSession) VisibleClues() []*model.Clue {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	n := sess.RevealedIndex
	if n > len(sess.Clues) {
		n = len(sess.Clues)
	}
	return sess.Clues[:n]
}

// Stats 由对局历史推导聚合统计
func (sess *GameSession) Stats() model.GameStats {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return StatsFromHistory(sess.History)
}

// recordResult 追加一条对局历史，最新在前。调用方必须持锁
func (sess *GameSession) recordResult(won bool) {
	entry := model.GameHistoryEntry{
		MovieTitle: sess.Movie.Title,
		Year:       sess.Movie.Year,
		Guesses:    sess.GuessCount,
		Won:        won,
		Date:       time.Now(),
	}
	sess.History = append([]model.GameHistoryEntry{entry}, sess.History...)
}

// addUsedMovie 记录用过的电影，重复添加是幂等的
func (sess *GameSession) addUsedMovie(movieID string) {
	for _, id := range sess.UsedMovieIDs {
		if id == movieID {
			return
		}
	}
	sess.UsedMovieIDs = append(sess.UsedMovieIDs, movieID)
}

// unlockPhase 解锁第 idx 个阶段（0 起）的元信息
// 越界是静默无操作；该阶段没有可用信息时跳过
func (sess *GameSession) unlockPhase(idx int) {
	if idx < 0 || idx >= len(sess.Phases) {
		return
	}
	if sess.Movie == nil {
		return
	}

	for _, infoID := range sess.Phases[idx].InfoTypes {
		item := generateInfoItem(sess.Movie, infoID)
		if item == nil {
			continue
		}
		sess.Revealed = append(sess.Revealed, *item)

		for i := range sess.AllInfo {
			if sess.AllInfo[i].Type == item.Type && sess.AllInfo[i].Position == item.Position {
				sess.AllInfo[i].Locked = false
			}
		}
	}
}

// StatsFromHistory 对局历史（最新在前）推导统计
// streak 是从最近一局往回数的连胜；bestStreak 是任意位置的最长连胜
func StatsFromHistory(history []model.GameHistoryEntry) model.GameStats {
	if len(history) == 0 {
		return model.GameStats{}
	}

	stats := model.GameStats{Played: len(history)}
	totalGuesses := 0
	for _, entry := range history {
		totalGuesses += entry.Guesses
		if entry.Won {
			stats.Won++
		}
	}
	stats.AvgGuesses = float64(totalGuesses) / float64(len(history))

	for _, entry := range history {
		if !entry.Won {
			break
		}
		stats.Streak++
	}

	run := 0
	for _, entry := range history {
		if entry.Won {
			run++
			if run > stats.BestStreak {
				stats.BestStreak = run
			}
		} else {
			run = 0
		}
	}
	return stats
}

// generateInfoItem 按信息类别生成一条元信息，数据缺失时返回 nil
func generateInfoItem(movie *model.Movie, infoID string) *model.InfoItem {
	switch infoID {
	case "year":
		if movie.Year != 0 {
			return &model.InfoItem{Type: model.InfoYear, Value: movie.Year}
		}
	case "firstGenre":
		if len(movie.Genres) > 0 {
			return &model.InfoItem{Type: model.InfoGenre, Value: movie.Genres[0]}
		}
	case "thirdActor":
		if len(movie.Actors) >= 3 {
			return &model.InfoItem{Type: model.InfoActor, Position: 3, Value: movie.Actors[2]}
		}
	case "director":
		if movie.Director != "" {
			return &model.InfoItem{Type: model.InfoDirector, Value: movie.Director}
		}
	case "secondActor":
		if len(movie.Actors) >= 2 {
			return &model.InfoItem{Type: model.InfoActor, Position: 2, Value: movie.Actors[1]}
		}
	case "allGenres":
		if len(movie.Genres) > 0 {
			return &model.InfoItem{Type: model.InfoAllGenres, Value: movie.Genres}
		}
	case "firstActor":
		if len(movie.Actors) >= 1 {
			return &model.InfoItem{Type: model.InfoActor, Position: 1, Value: movie.Actors[0]}
		}
	case "rating":
		if movie.Rating != 0 {
			return &model.InfoItem{Type: model.InfoRating, Value: movie.Rating}
		}
	}
	return nil
}
