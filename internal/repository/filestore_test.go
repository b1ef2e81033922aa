package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelguess/internal/model"
)

const catalogJSON = `[
  {
    "id": "heat-1995",
    "title": "Heat",
    "year": 1995,
    "director": "Michael Mann",
    "actors": ["Al Pacino", "Robert De Niro"],
    "genres": "Crime, Thriller",
    "rating": "8.3",
    "reviews": [
      {"text": "The diner scene alone is worth the runtime.", "rating": 4.5, "url": "https://letterboxd.com/filmfan/film/heat/"}
    ]
  },
  {
    "title": "Ran",
    "year": "1985",
    "director": "Akira Kurosawa",
    "actors": {"0": "Tatsuya Nakadai", "1": "Akira Terao"},
    "genres": ["Drama"]
  }
]`

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, moviesFile), []byte(catalogJSON), 0644))

	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	return fs
}

func TestFileStoreCatalogNormalization(t *testing.T) {
	fs := newTestFileStore(t)

	movies, err := fs.ListMovies()
	require.NoError(t, err)
	require.Len(t, movies, 2)

	heat, err := fs.FindMovie("heat-1995")
	require.NoError(t, err)
	require.NotNil(t, heat)
	assert.Equal(t, 1995, heat.Year)
	assert.Equal(t, 8.3, heat.Rating)
	// 逗号字符串和数组两种历史写法都归一化成 []string
	assert.Equal(t, []string{"Crime", "Thriller"}, heat.Genres)
	assert.Equal(t, []string{"Al Pacino", "Robert De Niro"}, heat.Actors)

	// 没有显式 id 的条目用 title-year 兜底
	ran, err := fs.FindMovie("Ran-1985")
	require.NoError(t, err)
	require.NotNil(t, ran)
	assert.Equal(t, 1985, ran.Year)
	assert.Equal(t, []string{"Tatsuya Nakadai", "Akira Terao"}, ran.Actors)
}

func TestFileStoreFindMovieMissing(t *testing.T) {
	fs := newTestFileStore(t)

	movie, err := fs.FindMovie("nope")
	require.NoError(t, err)
	assert.Nil(t, movie)
}

func TestFileStoreSearchMovies(t *testing.T) {
	fs := newTestFileStore(t)

	movies, err := fs.SearchMovies("hea", 10)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Heat", movies[0].Title)
}

func TestFileStoreReviews(t *testing.T) {
	fs := newTestFileStore(t)

	// 目录内嵌的影评
	reviews, err := fs.ListReviews("heat-1995")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Contains(t, reviews[0].Text, "diner scene")

	// 追加的影评落在单独的文件里，读取时合并
	require.NoError(t, fs.InsertReviews([]*model.Review{
		{MovieID: "heat-1995", Text: "A slow burn that pays off."},
	}))
	reviews, err = fs.ListReviews("heat-1995")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestFileStoreClueRoundTrip(t *testing.T) {
	fs := newTestFileStore(t)

	clue := &model.Clue{
		ID:       "heat-1995-123-456",
		MovieID:  "heat-1995",
		ClueText: "The heist goes wrong.",
		Status:   model.ClueApproved,
	}
	require.NoError(t, fs.InsertClues([]*model.Clue{clue}))

	got, err := fs.GetClue(clue.ID, model.ClueApproved)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, clue.ClueText, got.ClueText)
	assert.Equal(t, model.ClueApproved, got.Status)

	exists, err := fs.HasApproved("heat-1995", "The heist goes wrong.")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := fs.CountApproved()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFileStoreSaveClueMovesBetweenFiles(t *testing.T) {
	fs := newTestFileStore(t)

	clue := &model.Clue{ID: "c1", MovieID: "m1", ClueText: "text", Status: model.ClueApproved}
	require.NoError(t, fs.InsertClues([]*model.Clue{clue}))

	clue.Status = model.ClueRejected
	require.NoError(t, fs.SaveClue(clue))

	// 旧集合里没有了，新集合里有
	approved, err := fs.GetClue("c1", model.ClueApproved)
	require.NoError(t, err)
	assert.Nil(t, approved)

	rejected, err := fs.GetClue("c1", model.ClueRejected)
	require.NoError(t, err)
	require.NotNil(t, rejected)

	found, err := fs.FindClue("c1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.ClueRejected, found.Status)
}

func TestFileStoreUpdateAndDeleteClue(t *testing.T) {
	fs := newTestFileStore(t)

	require.NoError(t, fs.InsertClues([]*model.Clue{
		{ID: "c1", MovieID: "m1", ClueText: "old", Status: model.ClueApproved},
	}))

	require.NoError(t, fs.UpdateClueText("c1", "new"))
	got, err := fs.FindClue("c1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ClueText)

	require.NoError(t, fs.DeleteClue("c1"))
	got, err = fs.FindClue("c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreScheduleRoundTrip(t *testing.T) {
	fs := newTestFileStore(t)

	// 条件写入：先写者胜
	entry, err := fs.CreateEntryIfAbsent("2025-03-14", "heat-1995")
	require.NoError(t, err)
	assert.Equal(t, "heat-1995", entry.MovieID)

	entry, err = fs.CreateEntryIfAbsent("2025-03-14", "Ran-1985")
	require.NoError(t, err)
	assert.Equal(t, "heat-1995", entry.MovieID)

	// 覆盖写
	require.NoError(t, fs.SetEntry("2025-03-14", "Ran-1985"))
	got, err := fs.GetEntry("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, "Ran-1985", got.MovieID)

	// 清掉某天之后的
	require.NoError(t, fs.SetEntry("2025-03-13", "heat-1995"))
	require.NoError(t, fs.ClearFrom("2025-03-14"))

	got, err = fs.GetEntry("2025-03-14")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = fs.GetEntry("2025-03-13")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.InsertClues([]*model.Clue{
		{ID: "c1", MovieID: "m1", ClueText: "survives restart", Status: model.ClueApproved},
	}))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.GetClue("c1", model.ClueApproved)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "survives restart", got.ClueText)
}

func TestLoadMovieCatalogMissingFile(t *testing.T) {
	_, _, err := LoadMovieCatalog(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
