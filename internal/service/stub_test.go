package service

import (
	"sort"
	"strings"

	"github.com/user/reelguess/internal/model"
)

// memStores 测试用的内存存储，四个端口一次实现
type memStores struct {
	movies   []*model.Movie
	reviews  map[string][]*model.Review
	clues    map[string]*model.Clue
	schedule map[string]*model.ScheduleEntry
}

func newMemStores() *memStores {
	return &memStores{
		reviews:  make(map[string][]*model.Review),
		clues:    make(map[string]*model.Clue),
		schedule: make(map[string]*model.ScheduleEntry),
	}
}

func (m *memStores) addMovie(movie *model.Movie) {
	m.movies = append(m.movies, movie)
}

func (m *memStores) addApprovedClues(movieID string, texts ...string) {
	for i, text := range texts {
		id := movieID + "-clue-" + string(rune('a'+i))
		m.clues[id] = &model.Clue{
			ID:       id,
			MovieID:  movieID,
			ClueText: text,
			Status:   model.ClueApproved,
		}
	}
}

// ==================== MovieStore ====================

func (m *memStores) ListMovies() ([]*model.Movie, error) {
	out := make([]*model.Movie, len(m.movies))
	copy(out, m.movies)
	return out, nil
}

func (m *memStores) FindMovie(id string) (*model.Movie, error) {
	for _, movie := range m.movies {
		if movie.Key() == id {
			return movie, nil
		}
	}
	return nil, nil
}

func (m *memStores) SearchMovies(query string, limit int) ([]*model.Movie, error) {
	q := strings.ToLower(query)
	var out []*model.Movie
	for _, movie := range m.movies {
		if strings.Contains(strings.ToLower(movie.Title), q) {
			out = append(out, movie)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ==================== ReviewStore ====================

func (m *memStores) ListReviews(movieID string) ([]*model.Review, error) {
	return m.reviews[movieID], nil
}

func (m *memStores) InsertReviews(reviews []*model.Review) error {
	for _, r := range reviews {
		m.reviews[r.MovieID] = append(m.reviews[r.MovieID], r)
	}
	return nil
}

// ==================== ClueStore ====================

func (m *memStores) ListApproved(movieID string) ([]*model.Clue, error) {
	var out []*model.Clue
	for _, c := range m.clues {
		if c.Status == model.ClueApproved && (movieID == "" || c.MovieID == movieID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStores) ListByStatus(status model.ClueStatus, search string, page, limit int) ([]*model.Clue, int64, error) {
	var all []*model.Clue
	q := strings.ToLower(search)
	for _, c := range m.clues {
		if c.Status != status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.MovieTitle), q) &&
			!strings.Contains(strings.ToLower(c.ClueText), q) {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memStores) GetClue(id string, status model.ClueStatus) (*model.Clue, error) {
	c, ok := m.clues[id]
	if !ok || c.Status != status {
		return nil, nil
	}
	return c, nil
}

func (m *memStores) FindClue(id string) (*model.Clue, error) {
	c, ok := m.clues[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (m *memStores) InsertClues(clues []*model.Clue) error {
	for _, c := range clues {
		m.clues[c.ID] = c
	}
	return nil
}

func (m *memStores) SaveClue(clue *model.Clue) error {
	m.clues[clue.ID] = clue
	return nil
}

func (m *memStores) UpdateClueText(id, text string) error {
	if c, ok := m.clues[id]; ok {
		c.ClueText = text
	}
	return nil
}

func (m *memStores) DeleteClue(id string) error {
	delete(m.clues, id)
	return nil
}

func (m *memStores) ApprovedCounts() (map[string]int, error) {
	counts := make(map[string]int)
	for _, c := range m.clues {
		if c.Status == model.ClueApproved {
			counts[c.MovieID]++
		}
	}
	return counts, nil
}

func (m *memStores) CountApproved() (int64, error) {
	var n int64
	for _, c := range m.clues {
		if c.Status == model.ClueApproved {
			n++
		}
	}
	return n, nil
}

func (m *memStores) CountMoviesWithClues() (int64, error) {
	counts, _ := m.ApprovedCounts()
	return int64(len(counts)), nil
}

func (m *memStores) HasApproved(movieID, clueText string) (bool, error) {
	for _, c := range m.clues {
		if c.Status == model.ClueApproved && c.MovieID == movieID && c.ClueText == clueText {
			return true, nil
		}
	}
	return false, nil
}

// ==================== ScheduleStore ====================

func (m *memStores) GetEntry(date string) (*model.ScheduleEntry, error) {
	return m.schedule[date], nil
}

func (m *memStores) CreateEntryIfAbsent(date, movieID string) (*model.ScheduleEntry, error) {
	if existing, ok := m.schedule[date]; ok {
		return existing, nil
	}
	entry := &model.ScheduleEntry{Date: date, MovieID: movieID}
	m.schedule[date] = entry
	return entry, nil
}

func (m *memStores) SetEntry(date, movieID string) error {
	m.schedule[date] = &model.ScheduleEntry{Date: date, MovieID: movieID}
	return nil
}

func (m *memStores) DeleteEntry(date string) error {
	delete(m.schedule, date)
	return nil
}

func (m *memStores) ClearFrom(date string) error {
	for d := range m.schedule {
		if d >= date {
			delete(m.schedule, d)
		}
	}
	return nil
}
