package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugTitle(t *testing.T) {
	assert.Equal(t, "The_Matrix", SlugTitle("The Matrix"))
	assert.Equal(t, "Dune_Part_Two", SlugTitle("  Dune   Part Two "))
	assert.Equal(t, "Amelie", SlugTitle("Amelie!?"))
	assert.Equal(t, "Spider-Man", SlugTitle("Spider-Man"))
}

func TestPosterPath(t *testing.T) {
	assert.Equal(t, "/posters/The_Matrix_1999.jpg", PosterPath("The Matrix", 1999))
}

func TestNormalizeStringListNil(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeStringList(nil))
}

func TestNormalizeStringListNative(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NormalizeStringList([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, NormalizeStringList([]interface{}{"a", "b"}))
}

func TestNormalizeStringListCommaString(t *testing.T) {
	assert.Equal(t, []string{"Drama", "Crime"}, NormalizeStringList("Drama, Crime"))
	assert.Equal(t, []string{}, NormalizeStringList(""))
}

func TestNormalizeStringListJSONString(t *testing.T) {
	assert.Equal(t, []string{"Drama", "Crime"}, NormalizeStringList(`["Drama","Crime"]`))
}

func TestNormalizeStringListNumericKeyMap(t *testing.T) {
	// JSONB 数组有时被反序列化成 {"0": ..., "1": ...}，要按键序还原
	input := map[string]interface{}{
		"1": "second",
		"0": "first",
		"2": "third",
	}
	assert.Equal(t, []string{"first", "second", "third"}, NormalizeStringList(input))
}

func TestNormalizeStringListSkipsBlanks(t *testing.T) {
	assert.Equal(t, []string{"a"}, NormalizeStringList([]interface{}{"a", "", "   "}))
	assert.Equal(t, []string{"a", "b"}, NormalizeStringList("a,, b ,"))
}
