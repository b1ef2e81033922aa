package service

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/user/reelguess/internal/model"
	"github.com/user/reelguess/internal/utils"
	"golang.org/x/sync/singleflight"
)

// Scheduler 每日排片服务
// 当天的电影由日期种子决定，同一天内反复调用结果稳定；
// 排片一旦落库，后续请求一律读库，不再重新选片
type Scheduler struct {
	movies   MovieStore
	schedule ScheduleStore
	clueSvc  *ClueService
	days     int
	sf       singleflight.Group
	now      func() time.Time // 可注入，测试用
}

// NewScheduler 创建排片服务
func NewScheduler(movies MovieStore, schedule ScheduleStore, clueSvc *ClueService, upcomingDays int) *Scheduler {
	if upcomingDays <= 0 {
		upcomingDays = 5
	}
	return &Scheduler{
		movies:   movies,
		schedule: schedule,
		clueSvc:  clueSvc,
		days:     upcomingDays,
		now:      time.Now,
	}
}

// DailySeed 当天的日期种子，本地时区，YYYY-MM-DD
func (s *Scheduler) DailySeed() string {
	return s.now().Format("2006-01-02")
}

// SeededRandom 由字符串种子推导 [0,1) 区间的确定性伪随机数
// 32 位有符号溢出的乘加散列，只保证确定性，不保证分布质量
func SeededRandom(seed string) float64 {
	var hash int32
	for _, c := range seed {
		hash = hash*31 + int32(c)
	}
	masked := hash & 0x7fffffff
	v := float64(masked) / float64(0x7fffffff)
	if v >= 1 {
		v = 0
	}
	return v
}

// SelectTodayMovie 返回今天的谜底电影
// 已有排片直接读取；没有则从可排期电影里按日期种子选一部并落库。
// 同一天的并发请求通过 singleflight 和 date 唯一约束收敛到同一条记录
func (s *Scheduler) SelectTodayMovie() (*model.Movie, error) {
	date := s.DailySeed()
	v, err, _ := s.sf.Do(date, func() (interface{}, error) {
		return s.selectForDate(date)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Movie), nil
}

func (s *Scheduler) selectForDate(date string) (*model.Movie, error) {
	entry, err := s.schedule.GetEntry(date)
	if err != nil {
		return nil, fmt.Errorf("读取排片失败: %w", err)
	}
	if entry != nil {
		movie, err := s.movies.FindMovie(entry.MovieID)
		if err != nil {
			return nil, err
		}
		if movie != nil {
			return s.withPoster(movie), nil
		}
		// 排片指向的电影已被删除，当天重新选片
		log.Printf("[Scheduler] %s 的排片指向未知电影 %s，重新选片", date, entry.MovieID)
	}

	eligible, err := s.clueSvc.EligibleMovies()
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleMovie
	}

	idx := int(SeededRandom(date) * float64(len(eligible)))
	if idx >= len(eligible) {
		idx = len(eligible) - 1
	}
	picked := eligible[idx]

	// 条件写入：输掉竞争时读回先写者的结果
	entry, err = s.schedule.CreateEntryIfAbsent(date, picked.Key())
	if err != nil {
		return nil, fmt.Errorf("写入排片失败: %w", err)
	}
	if entry.MovieID != picked.Key() {
		movie, err := s.movies.FindMovie(entry.MovieID)
		if err != nil {
			return nil, fmt.Errorf("读取排片电影失败: %w", err)
		}
		if movie == nil {
			return nil, fmt.Errorf("排片指向未知电影: %s", entry.MovieID)
		}
		return s.withPoster(movie), nil
	}
	return s.withPoster(picked), nil
}

// SelectUpcoming 未来 days 天的排片预览
// 已落库的日期直接复用；空缺的日期用种子洗牌后的候选池依次补位并落库。
// excludeMovieID（通常是今天的谜底）不进入候选池；池子不够时允许重复，从不报错
func (s *Scheduler) SelectUpcoming(excludeMovieID string, days int) ([]*model.MovieWithDate, error) {
	if days <= 0 {
		days = s.days
	}

	eligible, err := s.clueSvc.EligibleMovies()
	if err != nil {
		return nil, err
	}

	pool := make([]*model.Movie, 0, len(eligible))
	for _, m := range eligible {
		if m.Key() != excludeMovieID {
			pool = append(pool, m)
		}
	}
	shuffled := seededShuffle(pool, s.DailySeed()+"-upcoming")

	var result []*model.MovieWithDate
	used := make(map[string]bool)
	next := 0

	for i := 1; i <= days; i++ {
		date := s.now().AddDate(0, 0, i).Format("2006-01-02")

		entry, err := s.schedule.GetEntry(date)
		if err != nil {
			return nil, fmt.Errorf("读取排片失败: %w", err)
		}
		if entry != nil && entry.MovieID != excludeMovieID {
			movie, err := s.movies.FindMovie(entry.MovieID)
			if err != nil {
				return nil, err
			}
			if movie != nil {
				result = append(result, &model.MovieWithDate{Movie: *s.withPoster(movie), ScheduledDate: date})
				used[movie.Key()] = true
				continue
			}
		}

		if len(shuffled) == 0 {
			continue
		}

		// 先找没用过的候选，整池用尽后允许重复
		candidate := shuffled[next%len(shuffled)]
		for step := 0; step < len(shuffled); step++ {
			c := shuffled[(next+step)%len(shuffled)]
			if !used[c.Key()] {
				candidate = c
				next = (next + step + 1) % len(shuffled)
				break
			}
		}

		movieID := candidate.Key()
		if entry != nil {
			// 既有排片撞上了今天的谜底（或指向未知电影），当场改排
			if err := s.schedule.SetEntry(date, movieID); err != nil {
				return nil, fmt.Errorf("写入排片失败: %w", err)
			}
		} else {
			stored, err := s.schedule.CreateEntryIfAbsent(date, movieID)
			if err != nil {
				return nil, fmt.Errorf("写入排片失败: %w", err)
			}
			movieID = stored.MovieID
		}
		movie, err := s.movies.FindMovie(movieID)
		if err != nil || movie == nil {
			continue
		}
		used[movie.Key()] = true
		result = append(result, &model.MovieWithDate{Movie: *s.withPoster(movie), ScheduledDate: date})
	}

	return result, nil
}

// InitializeSchedule 批量初始化未来 dayCount 天的排片
// keepToday 为真且今天已有排片时保留今天，只重排之后的日期
func (s *Scheduler) InitializeSchedule(keepToday bool, dayCount int) (int, error) {
	if dayCount <= 0 {
		dayCount = 365
	}

	today := s.DailySeed()
	clearFrom := today
	startOffset := 0
	if keepToday {
		if entry, err := s.schedule.GetEntry(today); err == nil && entry != nil {
			clearFrom = s.now().AddDate(0, 0, 1).Format("2006-01-02")
			startOffset = 1
		}
	}
	if err := s.schedule.ClearFrom(clearFrom); err != nil {
		return 0, fmt.Errorf("清空既有排片失败: %w", err)
	}

	eligible, err := s.clueSvc.EligibleMovies()
	if err != nil {
		return 0, err
	}
	if len(eligible) == 0 {
		return 0, ErrNoEligibleMovie
	}

	// 种子洗牌，池子不够就再洗一轮补齐
	shuffled := seededShuffle(eligible, "schedule-"+today)
	for len(shuffled) < dayCount {
		shuffled = append(shuffled, seededShuffle(eligible, fmt.Sprintf("schedule-%s-%d", today, len(shuffled)))...)
	}

	written := 0
	for i := startOffset; i < dayCount; i++ {
		date := s.now().AddDate(0, 0, i).Format("2006-01-02")
		if err := s.schedule.SetEntry(date, shuffled[i].Key()); err != nil {
			return written, fmt.Errorf("写入 %s 的排片失败: %w", date, err)
		}
		written++
	}

	log.Printf("[Scheduler] 已初始化 %d 天排片，候选电影 %d 部", written, len(eligible))
	return written, nil
}

// AdvanceSchedule 把明天的排片提前到今天（管理员手动换片）
// 明天没有排片时从候选池里随机挑一部（排除今天的谜底）
func (s *Scheduler) AdvanceSchedule() error {
	today := s.DailySeed()
	tomorrow := s.now().AddDate(0, 0, 1).Format("2006-01-02")

	tomorrowEntry, err := s.schedule.GetEntry(tomorrow)
	if err != nil {
		return fmt.Errorf("读取排片失败: %w", err)
	}

	var nextMovieID string
	if tomorrowEntry != nil {
		nextMovieID = tomorrowEntry.MovieID
		if err := s.schedule.DeleteEntry(tomorrow); err != nil {
			return fmt.Errorf("删除明日排片失败: %w", err)
		}
	} else {
		eligible, err := s.clueSvc.EligibleMovies()
		if err != nil {
			return err
		}

		var currentID string
		if entry, err := s.schedule.GetEntry(today); err == nil && entry != nil {
			currentID = entry.MovieID
		}

		var available []*model.Movie
		for _, m := range eligible {
			if m.Key() != currentID {
				available = append(available, m)
			}
		}
		if len(available) == 0 {
			return ErrNoEligibleMovie
		}
		// 换片是一次性的管理动作，这里不需要日期种子的确定性
		nextMovieID = available[rand.Intn(len(available))].Key()
	}

	if err := s.schedule.SetEntry(today, nextMovieID); err != nil {
		return fmt.Errorf("更新今日排片失败: %w", err)
	}
	return nil
}

// withPoster 海报路径缺失时按标题和年份推导
func (s *Scheduler) withPoster(movie *model.Movie) *model.Movie {
	if movie.PosterPath == "" {
		movie.PosterPath = utils.PosterPath(movie.Title, movie.Year)
	}
	return movie
}

// seededShuffle 种子确定的 Fisher-Yates 洗牌，不修改入参
func seededShuffle(movies []*model.Movie, seed string) []*model.Movie {
	out := make([]*model.Movie, len(movies))
	copy(out, movies)

	var hash int32
	for _, c := range seed {
		hash = hash*31 + int32(c)
	}
	next := func() float64 {
		hash = (hash*9301 + 49297) % 233280
		if hash < 0 {
			hash = -hash
		}
		return float64(hash) / 233280
	}

	for i := len(out) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}
