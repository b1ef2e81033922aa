package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelguess/internal/model"
)

// newTestGameService 一部满足排期条件的电影，六条指定长度的线索
func newTestGameService(t *testing.T, clueLengths []int) (*GameService, *memStores) {
	t.Helper()

	stores := newMemStores()
	stores.addMovie(&model.Movie{
		ID:       "inception",
		Title:    "Inception",
		Year:     2010,
		Director: "Christopher Nolan",
		Actors:   []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"},
		Genres:   []string{"Sci-Fi", "Thriller"},
		Rating:   8.8,
	})
	for i, n := range clueLengths {
		id := "inception-" + string(rune('a'+i))
		stores.clues[id] = &model.Clue{
			ID:       id,
			MovieID:  "inception",
			ClueText: strings.Repeat("x", n),
			Status:   model.ClueApproved,
		}
	}

	clueSvc := NewClueService(stores, stores, stores, 6)
	scheduler := NewScheduler(stores, stores, clueSvc, 5)
	scheduler.now = func() time.Time {
		return time.Date(2025, 3, 14, 10, 0, 0, 0, time.Local)
	}
	return NewGameService(scheduler, stores, 6, nil), stores
}

func TestStartGameCluesSortedAscending(t *testing.T) {
	svc, _ := newTestGameService(t, []int{10, 300, 50, 150, 20, 250})

	session := svc.StartGame()
	require.Equal(t, model.GamePlaying, session.State)

	for i := 1; i < len(session.Clues); i++ {
		assert.LessOrEqual(t, len(session.Clues[i-1].ClueText), len(session.Clues[i].ClueText))
	}
	// 开局只露最短的一条
	assert.Len(t, session.VisibleClues(), 1)
	assert.Len(t, session.VisibleClues()[0].ClueText, 10)
}

func TestStartGameInitialInfo(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30})

	session := svc.StartGame()

	// 全部元信息预生成且锁定，第一阶段（年份）已解锁
	require.NotEmpty(t, session.AllInfo)
	require.Len(t, session.Revealed, 1)
	assert.Equal(t, model.InfoYear, session.Revealed[0].Type)
	assert.Equal(t, 2010, session.Revealed[0].Value)

	for _, item := range session.AllInfo {
		if item.Type == model.InfoYear {
			assert.False(t, item.Locked)
		} else {
			assert.True(t, item.Locked)
		}
	}
}

func TestStartGamePlaceholderClue(t *testing.T) {
	// 排片已落库但电影一条线索都没有：开局给占位线索
	stores := newMemStores()
	stores.addMovie(&model.Movie{ID: "inception", Title: "Inception", Year: 2010})
	require.NoError(t, stores.SetEntry("2025-03-14", "inception"))

	clueSvc := NewClueService(stores, stores, stores, 6)
	scheduler := NewScheduler(stores, stores, clueSvc, 5)
	scheduler.now = func() time.Time {
		return time.Date(2025, 3, 14, 10, 0, 0, 0, time.Local)
	}
	svc := NewGameService(scheduler, stores, 6, nil)

	session := svc.StartGame()
	require.Equal(t, model.GamePlaying, session.State)
	require.Len(t, session.Clues, 1)
	assert.Equal(t, "placeholder", session.Clues[0].ID)
}

func TestStartGameNoEligibleMovie(t *testing.T) {
	stores := newMemStores()
	clueSvc := NewClueService(stores, stores, stores, 6)
	scheduler := NewScheduler(stores, stores, clueSvc, 5)
	svc := NewGameService(scheduler, stores, 6, nil)

	session := svc.StartGame()

	assert.Equal(t, model.GameError, session.State)
	assert.NotEmpty(t, session.Feedback)

	// 出错的会话也要能按 ID 查回来
	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GameError, got.State)
}

func TestSubmitGuessCorrect(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30, 40, 50, 60, 70, 80})
	session := svc.StartGame()

	// 大小写和首尾空白不影响判定
	got, err := svc.SubmitGuess(session.ID, "  inception  ")
	require.NoError(t, err)

	assert.Equal(t, model.GameSuccess, got.State)
	assert.Equal(t, 1, got.GuessCount)
	require.Len(t, got.History, 1)
	assert.True(t, got.History[0].Won)
	assert.Equal(t, 1, got.History[0].Guesses)
	assert.Equal(t, "Inception", got.History[0].MovieTitle)
}

func TestSubmitGuessWrongAdvancesReveal(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30, 40, 50, 60, 70, 80})
	session := svc.StartGame()

	got, err := svc.SubmitGuess(session.ID, "Interstellar")
	require.NoError(t, err)

	assert.Equal(t, model.GamePlaying, got.State)
	assert.Equal(t, 1, got.GuessCount)
	assert.Len(t, got.VisibleClues(), 2)
	assert.Contains(t, got.Feedback, "Interstellar")

	// 第二阶段的 firstGenre 解锁
	found := false
	for _, item := range got.Revealed {
		if item.Type == model.InfoGenre {
			found = true
			assert.Equal(t, "Sci-Fi", item.Value)
		}
	}
	assert.True(t, found, "第二次猜测前应解锁第一个类型")
}

func TestSubmitGuessSkip(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30, 40, 50, 60, 70, 80})
	session := svc.StartGame()

	got, err := svc.SubmitGuess(session.ID, "   ")
	require.NoError(t, err)

	// 空输入算一次跳过，照常消耗次数、推进揭示
	assert.Equal(t, model.GamePlaying, got.State)
	assert.Equal(t, 1, got.GuessCount)
	assert.Len(t, got.VisibleClues(), 2)
}

func TestSubmitGuessExhaustionFails(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30, 40, 50, 60, 70, 80})
	session := svc.StartGame()

	for i := 0; i < 6; i++ {
		_, err := svc.SubmitGuess(session.ID, "wrong")
		require.NoError(t, err)
	}

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GameFailed, got.State)
	assert.Equal(t, 6, got.GuessCount)
	require.Len(t, got.History, 1)
	assert.False(t, got.History[0].Won)

	// 终态后再猜是无操作
	after, err := svc.SubmitGuess(session.ID, "Inception")
	require.NoError(t, err)
	assert.Equal(t, model.GameFailed, after.State)
	assert.Equal(t, 6, after.GuessCount)
}

func TestSubmitGuessRevealBounded(t *testing.T) {
	// 线索比猜测次数少，揭示进度不能越界
	svc, _ := newTestGameService(t, []int{30, 40})
	session := svc.StartGame()

	for i := 0; i < 5; i++ {
		_, err := svc.SubmitGuess(session.ID, "wrong")
		require.NoError(t, err)
	}

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Len(t, got.VisibleClues(), 2)
}

func TestSubmitGuessUnknownSession(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30})

	_, err := svc.SubmitGuess("no-such-session", "guess")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsFromHistory(t *testing.T) {
	// 最新在前：赢、赢、输、赢
	history := []model.GameHistoryEntry{
		{Won: true, Guesses: 3},
		{Won: true, Guesses: 2},
		{Won: false, Guesses: 6},
		{Won: true, Guesses: 4},
	}

	stats := StatsFromHistory(history)

	assert.Equal(t, 4, stats.Played)
	assert.Equal(t, 3, stats.Won)
	assert.Equal(t, 2, stats.Streak)
	assert.Equal(t, 2, stats.BestStreak)
	assert.InDelta(t, 3.75, stats.AvgGuesses, 0.001)
}

func TestStatsFromHistoryEmpty(t *testing.T) {
	assert.Equal(t, model.GameStats{}, StatsFromHistory(nil))
}

func TestAddUsedMovieIdempotent(t *testing.T) {
	session := &GameSession{}
	session.addUsedMovie("m1")
	session.addUsedMovie("m1")
	session.addUsedMovie("m2")

	assert.Equal(t, []string{"m1", "m2"}, session.UsedMovieIDs)
}

func TestUnlockPhaseOutOfRange(t *testing.T) {
	session := &GameSession{
		Movie:  &model.Movie{Title: "X", Year: 2000},
		Phases: model.DefaultPhaseConfig(),
	}

	// 越界是静默无操作
	session.unlockPhase(-1)
	session.unlockPhase(99)
	assert.Empty(t, session.Revealed)
}

func TestSessionViewHidesAnswerUntilDone(t *testing.T) {
	svc, _ := newTestGameService(t, []int{30, 40, 50, 60, 70, 80})
	session := svc.StartGame()

	assert.Nil(t, session.View().Movie)

	got, err := svc.SubmitGuess(session.ID, "Inception")
	require.NoError(t, err)
	require.Equal(t, model.GameSuccess, got.State)
	require.NotNil(t, got.View().Movie)
	assert.Equal(t, "Inception", got.View().Movie.Title)
}
