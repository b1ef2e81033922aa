package service

import (
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/user/reelguess/internal/utils"
)

// ErrStaleQuery 联想请求已被更新的输入取代，结果应当丢弃
var ErrStaleQuery = errors.New("联想请求已过期")

// Suggestion 猜测输入框的联想项，不包含会泄底的信息
type Suggestion struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Director string `json:"director"`
}

// SuggestService 片名联想服务
// 结果进 LRU 缓存；客户端带上递增的序号，迟到的旧查询直接判作废，
// 避免慢响应覆盖新输入的结果
type SuggestService struct {
	movies  MovieStore
	cache   *utils.TTLCache[[]Suggestion]
	lastSeq atomic.Uint64
	limit   int
}

// NewSuggestService 创建联想服务
func NewSuggestService(movies MovieStore) *SuggestService {
	return &SuggestService{
		movies: movies,
		cache:  utils.NewTTLCache[[]Suggestion](1000, time.Hour),
		limit:  12,
	}
}

// Suggest 按片名子串联想
// seq 是调用方的查询序号（0 表示不参与竞争判定）；
// 序号落后于已见过的最大值时说明有更新的查询在途，返回 ErrStaleQuery
func (s *SuggestService) Suggest(query string, seq uint64) ([]Suggestion, error) {
	if seq != 0 {
		for {
			last := s.lastSeq.Load()
			if seq < last {
				return nil, ErrStaleQuery
			}
			if s.lastSeq.CompareAndSwap(last, seq) {
				break
			}
		}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}, nil
	}

	cacheKey := strings.ToLower(query)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	movies, err := s.movies.SearchMovies(query, s.limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(movies))
	for _, m := range movies {
		suggestions = append(suggestions, Suggestion{
			ID:       m.Key(),
			Title:    m.Title,
			Year:     m.Year,
			Director: m.Director,
		})
	}

	// 完全匹配 > 前缀匹配 > 字典序
	q := strings.ToLower(query)
	sort.SliceStable(suggestions, func(i, j int) bool {
		a := strings.ToLower(suggestions[i].Title)
		b := strings.ToLower(suggestions[j].Title)
		if (a == q) != (b == q) {
			return a == q
		}
		aPrefix := strings.HasPrefix(a, q)
		bPrefix := strings.HasPrefix(b, q)
		if aPrefix != bPrefix {
			return aPrefix
		}
		return a < b
	})

	s.cache.Set(cacheKey, suggestions)
	return suggestions, nil
}
