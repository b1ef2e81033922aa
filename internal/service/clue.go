package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/user/reelguess/internal/model"
)

// ClueService 线索审核服务：批量通过、状态切换、增删改查
type ClueService struct {
	clues   ClueStore
	reviews ReviewStore
	movies  MovieStore
	minClue int
}

// NewClueService 创建线索服务
func NewClueService(clues ClueStore, reviews ReviewStore, movies MovieStore, minClue int) *ClueService {
	if minClue <= 0 {
		minClue = 6
	}
	return &ClueService{
		clues:   clues,
		reviews: reviews,
		movies:  movies,
		minClue: minClue,
	}
}

// ListApproved 列出已通过线索，movieID 为空时不过滤
func (s *ClueService) ListApproved(movieID string) ([]*model.Clue, error) {
	return s.clues.ListApproved(movieID)
}

// ListManaged 管理后台的分页线索列表，支持按片名/线索文本搜索
func (s *ClueService) ListManaged(search string, page, limit int) ([]*model.Clue, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.clues.ListByStatus(model.ClueApproved, search, page, limit)
}

// ApproveBatch 批量通过候选线索
// (movieId, clueText) 已存在于通过集合时跳过，重复提交是幂等的
// 返回真正新增的条数
func (s *ClueService) ApproveBatch(candidates []model.ClueCandidate) (int, error) {
	now := time.Now()
	seen := make(map[string]bool)
	var toInsert []*model.Clue

	for _, cand := range candidates {
		text := strings.TrimSpace(cand.ClueText)
		if cand.MovieID == "" || text == "" {
			continue
		}

		key := cand.MovieID + ":" + text
		if seen[key] {
			continue
		}
		seen[key] = true

		exists, err := s.clues.HasApproved(cand.MovieID, text)
		if err != nil {
			return 0, fmt.Errorf("查重失败: %w", err)
		}
		if exists {
			continue
		}

		toInsert = append(toInsert, &model.Clue{
			ID:         newClueID(cand.MovieID),
			MovieID:    cand.MovieID,
			MovieTitle: cand.MovieTitle,
			MovieYear:  cand.MovieYear,
			ClueText:   text,
			Status:     model.ClueApproved,
			CreatedAt:  now,
			DecidedAt:  now,
			Rating:     cand.Rating,
			Liked:      cand.Liked,
			Reviewer:   cand.Reviewer,
			ReviewURL:  cand.ReviewURL,
		})
	}

	if len(toInsert) == 0 {
		return 0, nil
	}
	if err := s.clues.InsertClues(toInsert); err != nil {
		return 0, fmt.Errorf("写入线索失败: %w", err)
	}
	return len(toInsert), nil
}

// Reject 把一条候选句记为已拒绝（人工初审的否决动作）
func (s *ClueService) Reject(cand model.ClueCandidate) (*model.Clue, error) {
	now := time.Now()
	clue := &model.Clue{
		ID:         newClueID(cand.MovieID),
		MovieID:    cand.MovieID,
		MovieTitle: cand.MovieTitle,
		MovieYear:  cand.MovieYear,
		ClueText:   strings.TrimSpace(cand.ClueText),
		Status:     model.ClueRejected,
		CreatedAt:  now,
		DecidedAt:  now,
		Rating:     cand.Rating,
		Liked:      cand.Liked,
		Reviewer:   cand.Reviewer,
		ReviewURL:  cand.ReviewURL,
	}
	if err := s.clues.InsertClues([]*model.Clue{clue}); err != nil {
		return nil, fmt.Errorf("写入线索失败: %w", err)
	}
	return clue, nil
}

// ToggleStatus 在通过/拒绝两个集合之间移动线索并重新盖章
// 线索不在 currentStatus 暗示的集合里时返回 ErrNotFound
func (s *ClueService) ToggleStatus(clueID string, currentStatus model.ClueStatus) (*model.Clue, error) {
	if currentStatus != model.ClueApproved && currentStatus != model.ClueRejected {
		return nil, fmt.Errorf("无效的状态: %s", currentStatus)
	}

	clue, err := s.clues.GetClue(clueID, currentStatus)
	if err != nil {
		return nil, err
	}
	if clue == nil {
		return nil, ErrNotFound
	}

	if currentStatus == model.ClueApproved {
		clue.Status = model.ClueRejected
	} else {
		clue.Status = model.ClueApproved
	}
	clue.DecidedAt = time.Now()

	if err := s.clues.SaveClue(clue); err != nil {
		return nil, fmt.Errorf("更新线索状态失败: %w", err)
	}
	return clue, nil
}

// UpdateText 修改线索文本
func (s *ClueService) UpdateText(clueID, newText string) error {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return fmt.Errorf("线索文本不能为空")
	}
	clue, err := s.clues.FindClue(clueID)
	if err != nil {
		return err
	}
	if clue == nil {
		return ErrNotFound
	}
	return s.clues.UpdateClueText(clueID, newText)
}

// Delete 删除线索
func (s *ClueService) Delete(clueID string) error {
	clue, err := s.clues.FindClue(clueID)
	if err != nil {
		return err
	}
	if clue == nil {
		return ErrNotFound
	}
	return s.clues.DeleteClue(clueID)
}

// Candidates 为一部电影生成待审核的候选线索句
// 抽句、两两组对、脱敏，全部来自该电影的影评
func (s *ClueService) Candidates(movieID string) ([]model.ClueCandidate, error) {
	movie, err := s.movies.FindMovie(movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrNotFound
	}

	reviews, err := s.reviews.ListReviews(movieID)
	if err != nil {
		return nil, fmt.Errorf("读取影评失败: %w", err)
	}

	var candidates []model.ClueCandidate
	for _, review := range reviews {
		for _, pair := range GetSentencePairs(review.Text) {
			candidates = append(candidates, model.ClueCandidate{
				MovieID:    movie.ID,
				MovieTitle: movie.Title,
				MovieYear:  movie.Year,
				ClueText:   RedactSensitiveInfo(pair, movie),
				Rating:     review.Rating,
				Liked:      review.Liked,
				Reviewer:   reviewerOrURL(review),
				ReviewURL:  review.URL,
			})
		}
	}
	return candidates, nil
}

// Stats 审核台统计：已通过线索总数和有线索的电影数
func (s *ClueService) Stats() (int64, int64, error) {
	count, err := s.clues.CountApproved()
	if err != nil {
		return 0, 0, err
	}
	movieCount, err := s.clues.CountMoviesWithClues()
	if err != nil {
		return 0, 0, err
	}
	return count, movieCount, nil
}

// EligibleMovies 可排期电影：已通过线索数达到门槛
func (s *ClueService) EligibleMovies() ([]*model.Movie, error) {
	movies, err := s.movies.ListMovies()
	if err != nil {
		return nil, fmt.Errorf("读取电影目录失败: %w", err)
	}
	counts, err := s.clues.ApprovedCounts()
	if err != nil {
		return nil, fmt.Errorf("统计线索失败: %w", err)
	}

	var eligible []*model.Movie
	for _, movie := range movies {
		if counts[movie.Key()] >= s.minClue {
			eligible = append(eligible, movie)
		}
	}
	return eligible, nil
}

// newClueID 线索 ID：movieId-毫秒时间戳-随机后缀
func newClueID(movieID string) string {
	return fmt.Sprintf("%s-%d-%d", movieID, time.Now().UnixMilli(), rand.Intn(1000))
}

// reviewerOrURL 影评人缺失时从 Letterboxd 链接里提取用户名
func reviewerOrURL(review *model.Review) string {
	if review.Author != "" {
		return review.Author
	}
	return reviewerFromURL(review.URL)
}

func reviewerFromURL(url string) string {
	const marker = "letterboxd.com/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	rest := url[idx+len(marker):]
	if end := strings.IndexByte(rest, '/'); end >= 0 {
		return rest[:end]
	}
	return rest
}
