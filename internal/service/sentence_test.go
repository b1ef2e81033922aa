package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/reelguess/internal/model"
)

func TestExtractSentencesBasic(t *testing.T) {
	sentences := ExtractSentences("This movie is great. The acting was superb!")

	assert.Equal(t, []string{"This movie is great.", "The acting was superb!"}, sentences)
}

func TestExtractSentencesAbbreviationNotSplit(t *testing.T) {
	sentences := ExtractSentences("Dr. Smith won an award. He left the ceremony early.")

	assert.Len(t, sentences, 2)
	assert.Equal(t, "Dr. Smith won an award.", sentences[0])
	assert.Equal(t, "He left the ceremony early.", sentences[1])
}

func TestExtractSentencesKeepsEightCharSentence(t *testing.T) {
	// 8 个字符的完整短句要保留，更短的碎片丢弃
	sentences := ExtractSentences("Dr. Smith won. He left.")

	assert.Equal(t, []string{"Dr. Smith won.", "He left."}, sentences)
}

func TestExtractSentencesDropsShortFragments(t *testing.T) {
	assert.Empty(t, ExtractSentences("Ok."))
	assert.Empty(t, ExtractSentences(""))
	assert.Empty(t, ExtractSentences("   "))
}

func TestExtractSentencesEllipsisPreserved(t *testing.T) {
	sentences := ExtractSentences("It was slow... but it grew on me over time.")

	assert.Len(t, sentences, 1)
	assert.Contains(t, sentences[0], "...")
}

func TestExtractSentencesParagraphSplit(t *testing.T) {
	sentences := ExtractSentences("First paragraph here.\n\nSecond paragraph here.")

	assert.Equal(t, []string{"First paragraph here.", "Second paragraph here."}, sentences)
}

func TestExtractSentencesMergesLowercaseContinuation(t *testing.T) {
	// 短碎片后面跟小写开头的片段时并回同一句
	sentences := ExtractSentences("So good.\n\nit really holds up after all these years.")

	assert.Len(t, sentences, 1)
	assert.True(t, strings.HasPrefix(sentences[0], "So good. it really"))
}

func TestRedactSensitiveInfoTitle(t *testing.T) {
	movie := &model.Movie{Title: "The Matrix", Year: 1999}

	got := RedactSensitiveInfo("The Matrix blew my mind.", movie)

	assert.NotContains(t, got, "Matrix")
	assert.Contains(t, got, "[REDACTED]")
}

func TestRedactSensitiveInfoCollapsesRuns(t *testing.T) {
	movie := &model.Movie{Title: "The Matrix"}

	got := RedactSensitiveInfo("The Matrix Matrix is great", movie)

	// 相邻的重复占位符合并成一个
	assert.Equal(t, 1, strings.Count(got, "[REDACTED]"))
}

func TestRedactSensitiveInfoShortWordsKept(t *testing.T) {
	// 片名里 3 个字符以内的词（The、of 之类）不脱敏
	movie := &model.Movie{Title: "The Lord of the Rings"}

	got := RedactSensitiveInfo("The story is epic.", movie)

	assert.Contains(t, got, "The story")
}

func TestRedactSensitiveInfoYear(t *testing.T) {
	movie := &model.Movie{Title: "Heat", Year: 1995}

	got := RedactSensitiveInfo("Released in 1995 and still amazing.", movie)

	assert.Contains(t, got, "[YEAR]")
	assert.NotContains(t, got, "1995")
	// 非完整匹配的数字不动
	assert.Equal(t, "It scored 19951 points.", RedactSensitiveInfo("It scored 19951 points.", movie))
}

func TestRedactSensitiveInfoPeople(t *testing.T) {
	movie := &model.Movie{
		Title:    "Inception",
		Director: "Christopher Nolan",
		Actors:   []string{"Leonardo DiCaprio"},
	}

	got := RedactSensitiveInfo("Nolan directs DiCaprio perfectly.", movie)

	assert.NotContains(t, got, "Nolan")
	assert.NotContains(t, got, "DiCaprio")
}

func TestRedactSensitiveInfoNilSafe(t *testing.T) {
	assert.Equal(t, "hello", RedactSensitiveInfo("hello", nil))
	assert.Equal(t, "", RedactSensitiveInfo("", &model.Movie{Title: "X"}))
}

func TestGetSentencePairs(t *testing.T) {
	text := "This is a long enough first sentence. Short one here. And a third sentence that also qualifies."

	pairs := GetSentencePairs(text)

	// 单句超过 20 字符的入选
	assert.Contains(t, pairs, "This is a long enough first sentence.")
	// 相邻两句拼接不超过 200 字符的也入选
	assert.Contains(t, pairs, "This is a long enough first sentence. Short one here.")
	assert.NotContains(t, pairs, "Short one here.")
}

func TestGetSentencePairsLengthCap(t *testing.T) {
	long := strings.Repeat("x", 120)
	text := long + ". " + strings.Repeat("Y a", 40) + " end."

	for _, p := range GetSentencePairs(text) {
		assert.LessOrEqual(t, len(p), 200)
	}
}

func TestGetSentencePairsEmpty(t *testing.T) {
	assert.Empty(t, GetSentencePairs(""))
}
