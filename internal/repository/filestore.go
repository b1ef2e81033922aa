package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/reelguess/internal/model"
	"github.com/user/reelguess/internal/utils"
)

// 文件回退模式的数据文件
const (
	moviesFile        = "letterboxd_movies.json"
	approvedCluesFile = "approved_clues.json"
	rejectedCluesFile = "rejected_clues.json"
	reviewsFile       = "reviews.json"
	scheduleFile      = "schedule.json"
)

// FileStore 无数据库部署的 JSON 文件适配器
// 实现与关系库仓库相同的端口；电影目录文件是只读的事实来源，
// 线索、影评、排片各自整文件读写，由互斥锁保证单进程内的原子性
type FileStore struct {
	dir string
	mu  sync.Mutex

	movies  []*model.Movie
	reviews map[string][]*model.Review // 目录文件里内嵌的影评，按电影分组
}

// NewFileStore 打开数据目录并加载电影目录
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	fs := &FileStore{dir: dir, reviews: make(map[string][]*model.Review)}

	path := filepath.Join(dir, moviesFile)
	if _, err := os.Stat(path); err == nil {
		movies, reviews, err := LoadMovieCatalog(path)
		if err != nil {
			return nil, err
		}
		fs.movies = movies
		for _, review := range reviews {
			fs.reviews[review.MovieID] = append(fs.reviews[review.MovieID], review)
		}
	}

	return fs, nil
}

// ==================== 电影目录 ====================

// ListMovies 列出全部电影
func (fs *FileStore) ListMovies() ([]*model.Movie, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]*model.Movie, len(fs.movies))
	copy(out, fs.movies)
	return out, nil
}

// FindMovie 按 ID 查电影，不存在时返回 (nil, nil)
func (fs *FileStore) FindMovie(id string) (*model.Movie, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, m := range fs.movies {
		if m.Key() == id {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

// SearchMovies 按片名子串搜索
func (fs *FileStore) SearchMovies(query string, limit int) ([]*model.Movie, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	q := strings.ToLower(query)
	var out []*model.Movie
	for _, m := range fs.movies {
		if strings.Contains(strings.ToLower(m.Title), q) {
			clone := *m
			out = append(out, &clone)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ==================== 影评 ====================

// ListReviews 目录内嵌的影评加上后续抓取入库的
func (fs *FileStore) ListReviews(movieID string) ([]*model.Review, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var stored []*model.Review
	if err := fs.readJSON(reviewsFile, &stored); err != nil {
		return nil, err
	}

	var out []*model.Review
	out = append(out, fs.reviews[movieID]...)
	for _, r := range stored {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return out, nil
}

// InsertReviews 追加影评
func (fs *FileStore) InsertReviews(reviews []*model.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var stored []*model.Review
	if err := fs.readJSON(reviewsFile, &stored); err != nil {
		return err
	}
	stored = append(stored, reviews...)
	return fs.writeJSON(reviewsFile, stored)
}

// ==================== 线索 ====================

// ListApproved 列出已通过线索，movieID 为空时不过滤
func (fs *FileStore) ListApproved(movieID string) ([]*model.Clue, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	clues, err := fs.readClues(approvedCluesFile, model.ClueApproved)
	if err != nil {
		return nil, err
	}
	if movieID == "" {
		return clues, nil
	}
	var out []*model.Clue
	for _, c := range clues {
		if c.MovieID == movieID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListByStatus 按状态分页列出线索
func (fs *FileStore) ListByStatus(status model.ClueStatus, search string, page, limit int) ([]*model.Clue, int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	clues, err := fs.readClues(fileForStatus(status), status)
	if err != nil {
		return nil, 0, err
	}

	if search != "" {
		q := strings.ToLower(search)
		var filtered []*model.Clue
		for _, c := range clues {
			if strings.Contains(strings.ToLower(c.MovieTitle), q) ||
				strings.Contains(strings.ToLower(c.ClueText), q) {
				filtered = append(filtered, c)
			}
		}
		clues = filtered
	}

	sort.SliceStable(clues, func(i, j int) bool {
		return clues[i].DecidedAt.After(clues[j].DecidedAt)
	})

	total := int64(len(clues))
	start := (page - 1) * limit
	if start >= len(clues) {
		return []*model.Clue{}, total, nil
	}
	end := start + limit
	if end > len(clues) {
		end = len(clues)
	}
	return clues[start:end], total, nil
}

// GetClue 按 ID 和状态查线索
func (fs *FileStore) GetClue(id string, status model.ClueStatus) (*model.Clue, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	clues, err := fs.readClues(fileForStatus(status), status)
	if err != nil {
		return nil, err
	}
	for _, c := range clues {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

// FindClue 按 ID 查线索（两个集合都找）
func (fs *FileStore) FindClue(id string) (*model.Clue, error) {
	for _, status := range []model.ClueStatus{model.ClueApproved, model.ClueRejected} {
		clue, err := fs.GetClue(id, status)
		if err != nil {
			return nil, err
		}
		if clue != nil {
			return clue, nil
		}
	}
	return nil, nil
}

// InsertClues 按状态分别追加到对应文件
func (fs *FileStore) InsertClues(clues []*model.Clue) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	byStatus := map[model.ClueStatus][]*model.Clue{}
	for _, c := range clues {
		byStatus[c.Status] = append(byStatus[c.Status], c)
	}

	for status, batch := range byStatus {
		file := fileForStatus(status)
		existing, err := fs.readClues(file, status)
		if err != nil {
			return err
		}
		existing = append(existing, batch...)
		if err := fs.writeClues(file, existing); err != nil {
			return err
		}
	}
	return nil
}

// SaveClue 保存整条线索；状态变了就把它从旧文件挪到新文件
func (fs *FileStore) SaveClue(clue *model.Clue) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	// 先从两个文件里删掉旧记录
	for _, status := range []model.ClueStatus{model.ClueApproved, model.ClueRejected} {
		file := fileForStatus(status)
		clues, err := fs.readClues(file, status)
		if err != nil {
			return err
		}
		var kept []*model.Clue
		for _, c := range clues {
			if c.ID != clue.ID {
				kept = append(kept, c)
			}
		}
		if len(kept) != len(clues) {
			if err := fs.writeClues(file, kept); err != nil {
				return err
			}
		}
	}

	// 再写进新状态对应的文件
	file := fileForStatus(clue.Status)
	clues, err := fs.readClues(file, clue.Status)
	if err != nil {
		return err
	}
	clues = append(clues, clue)
	return fs.writeClues(file, clues)
}

// UpdateClueText 更新线索文本
func (fs *FileStore) UpdateClueText(id, text string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, status := range []model.ClueStatus{model.ClueApproved, model.ClueRejected} {
		file := fileForStatus(status)
		clues, err := fs.readClues(file, status)
		if err != nil {
			return err
		}
		for _, c := range clues {
			if c.ID == id {
				c.ClueText = text
				return fs.writeClues(file, clues)
			}
		}
	}
	return nil
}

// DeleteClue 删除线索
func (fs *FileStore) DeleteClue(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, status := range []model.ClueStatus{model.ClueApproved, model.ClueRejected} {
		file := fileForStatus(status)
		clues, err := fs.readClues(file, status)
		if err != nil {
			return err
		}
		var kept []*model.Clue
		for _, c := range clues {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		if len(kept) != len(clues) {
			return fs.writeClues(file, kept)
		}
	}
	return nil
}

// ApprovedCounts 每部电影的已通过线索数
func (fs *FileStore) ApprovedCounts() (map[string]int, error) {
	clues, err := fs.ListApproved("")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, c := range clues {
		counts[c.MovieID]++
	}
	return counts, nil
}

// CountApproved 已通过线索总数
func (fs *FileStore) CountApproved() (int64, error) {
	clues, err := fs.ListApproved("")
	if err != nil {
		return 0, err
	}
	return int64(len(clues)), nil
}

// CountMoviesWithClues 有已通过线索的电影数
func (fs *FileStore) CountMoviesWithClues() (int64, error) {
	counts, err := fs.ApprovedCounts()
	if err != nil {
		return 0, err
	}
	return int64(len(counts)), nil
}

// HasApproved 查 (movieId, clueText) 是否已在通过集合里
func (fs *FileStore) HasApproved(movieID, clueText string) (bool, error) {
	clues, err := fs.ListApproved(movieID)
	if err != nil {
		return false, err
	}
	for _, c := range clues {
		if c.ClueText == clueText {
			return true, nil
		}
	}
	return false, nil
}

// ==================== 排片 ====================

// GetEntry 查某天的排片
func (fs *FileStore) GetEntry(date string) (*model.ScheduleEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.readSchedule()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Date == date {
			return e, nil
		}
	}
	return nil, nil
}

// CreateEntryIfAbsent 条件写入，先写者胜
func (fs *FileStore) CreateEntryIfAbsent(date, movieID string) (*model.ScheduleEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.readSchedule()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Date == date {
			return e, nil
		}
	}

	entry := &model.ScheduleEntry{Date: date, MovieID: movieID, CreatedAt: time.Now()}
	entries = append(entries, entry)
	if err := fs.writeJSON(scheduleFile, entries); err != nil {
		return nil, err
	}
	return entry, nil
}

// SetEntry 覆盖写某天的排片
func (fs *FileStore) SetEntry(date, movieID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.readSchedule()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Date == date {
			e.MovieID = movieID
			e.CreatedAt = time.Now()
			return fs.writeJSON(scheduleFile, entries)
		}
	}
	entries = append(entries, &model.ScheduleEntry{Date: date, MovieID: movieID, CreatedAt: time.Now()})
	return fs.writeJSON(scheduleFile, entries)
}

// DeleteEntry 删除某天的排片
func (fs *FileStore) DeleteEntry(date string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.readSchedule()
	if err != nil {
		return err
	}
	var kept []*model.ScheduleEntry
	for _, e := range entries {
		if e.Date != date {
			kept = append(kept, e)
		}
	}
	return fs.writeJSON(scheduleFile, kept)
}

// ClearFrom 清掉某天（含）之后的排片
func (fs *FileStore) ClearFrom(date string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.readSchedule()
	if err != nil {
		return err
	}
	var kept []*model.ScheduleEntry
	for _, e := range entries {
		if e.Date < date {
			kept = append(kept, e)
		}
	}
	return fs.writeJSON(scheduleFile, kept)
}

// ==================== 文件读写 ====================

func fileForStatus(status model.ClueStatus) string {
	if status == model.ClueRejected {
		return rejectedCluesFile
	}
	return approvedCluesFile
}

// readClues 读线索文件并补上状态（文件名即状态，JSON 里不存）
func (fs *FileStore) readClues(file string, status model.ClueStatus) ([]*model.Clue, error) {
	var clues []*model.Clue
	if err := fs.readJSON(file, &clues); err != nil {
		return nil, err
	}
	for _, c := range clues {
		c.Status = status
	}
	return clues, nil
}

func (fs *FileStore) writeClues(file string, clues []*model.Clue) error {
	if clues == nil {
		clues = []*model.Clue{}
	}
	return fs.writeJSON(file, clues)
}

func (fs *FileStore) readSchedule() ([]*model.ScheduleEntry, error) {
	var entries []*model.ScheduleEntry
	if err := fs.readJSON(scheduleFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// readJSON 读 JSON 文件，文件不存在视作空集合
func (fs *FileStore) readJSON(file string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(fs.dir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取 %s 失败: %w", file, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", file, err)
	}
	return nil
}

func (fs *FileStore) writeJSON(file string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(fs.dir, file), data, 0644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", file, err)
	}
	return nil
}

// ==================== 目录文件解析 ====================

// catalogMovie 目录文件里的电影，列表字段的历史编码不统一，先按原样接住
type catalogMovie struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Year       json.RawMessage `json:"year"`
	Director   string          `json:"director"`
	Actors     interface{}     `json:"actors"`
	Genres     interface{}     `json:"genres"`
	Rating     json.RawMessage `json:"rating"`
	PosterPath string          `json:"poster_path"`
	Liked      bool            `json:"is_liked"`
	Reviews    []catalogReview `json:"reviews"`
}

type catalogReview struct {
	Text   string   `json:"text"`
	Rating *float64 `json:"rating,omitempty"`
	Liked  *bool    `json:"is_liked,omitempty"`
	Author string   `json:"author,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// LoadMovieCatalog 读电影目录文件
// 列表字段在这里统一归一化成 []string，年份和评分兼容字符串/数字两种写法；
// 这是唯一做这种归一化的地方，业务逻辑只见规整后的模型
func LoadMovieCatalog(path string) ([]*model.Movie, []*model.Review, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("读取电影目录失败: %w", err)
	}

	var raw []catalogMovie
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("解析电影目录失败: %w", err)
	}

	var movies []*model.Movie
	var reviews []*model.Review
	for _, cm := range raw {
		movie := &model.Movie{
			ID:         cm.ID,
			Title:      cm.Title,
			Year:       rawToInt(cm.Year),
			Director:   cm.Director,
			Actors:     utils.NormalizeStringList(cm.Actors),
			Genres:     utils.NormalizeStringList(cm.Genres),
			Rating:     rawToFloat(cm.Rating),
			PosterPath: cm.PosterPath,
			Liked:      cm.Liked,
		}
		if movie.ID == "" {
			movie.ID = movie.Key()
		}
		movies = append(movies, movie)

		for _, cr := range cm.Reviews {
			if cr.Text == "" {
				continue
			}
			reviews = append(reviews, &model.Review{
				MovieID: movie.ID,
				Text:    cr.Text,
				Rating:  cr.Rating,
				Liked:   cr.Liked,
				Author:  cr.Author,
				URL:     cr.URL,
			})
		}
	}
	return movies, reviews, nil
}

func rawToInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	s := strings.Trim(string(raw), `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func rawToFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	s := strings.Trim(string(raw), `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
