package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovieKeyPrefersID(t *testing.T) {
	m := &Movie{ID: "dune-part-two", Title: "Dune Part Two", Year: 2024}
	assert.Equal(t, "dune-part-two", m.Key())
}

func TestMovieKeyFallbackIsSlugged(t *testing.T) {
	m := &Movie{Title: "Dune: Part Two", Year: 2024}
	// 标题里的空格和标点不能进入标识
	assert.Equal(t, "Dune_Part_Two-2024", m.Key())
	assert.NotContains(t, m.Key(), " ")

	short := &Movie{Title: "Ran", Year: 1985}
	assert.Equal(t, "Ran-1985", short.Key())
}
