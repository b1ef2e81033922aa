package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/user/reelguess/internal/model"
)

// 句子处理相关的纯函数：从影评文本抽取候选线索句并做脱敏
// 全部无副作用、不访问外部资源，出错时退化为原样返回或空结果

const (
	ellipsisMark = "\x00ELLIPSIS\x00"
	dotMark      = "\x00DOT\x00"
	redactedTag  = "[REDACTED]"
	yearTag      = "[YEAR]"
)

var (
	reEllipsis   = regexp.MustCompile(`\.{3,}`)
	reNumberedNo = regexp.MustCompile(`No\.\s*\d+`)
	reListNumber = regexp.MustCompile(`\b\d+\.`)
	reParagraph  = regexp.MustCompile(`\n\n+`)
	reLowerStart = regexp.MustCompile(`^[a-z]`)
	reRedactRun  = regexp.MustCompile(`(\[REDACTED\]\s*)+`)
	reSpaces     = regexp.MustCompile(`\s+`)

	// 常见缩写，句点不代表句子结束
	abbreviations = []string{"Mr.", "Mrs.", "Dr.", "Ms.", "etc.", "vs.", "i.e.", "e.g."}
)

// ExtractSentences 把影评文本切分成句子
// 先屏蔽省略号、缩写和编号里的句点，再按句子边界切分，
// 过滤掉 8 个字符以内的碎片，最后把疑似被误切的短句并回下一句
func ExtractSentences(text string) []string {
	if text == "" {
		return []string{}
	}

	processed := reEllipsis.ReplaceAllString(text, ellipsisMark)
	for _, abbr := range abbreviations {
		masked := strings.ReplaceAll(abbr, ".", dotMark)
		processed = strings.ReplaceAll(processed, abbr, masked)
	}
	// "No. 1" 这类编号
	processed = reNumberedNo.ReplaceAllStringFunc(processed, func(m string) string {
		return strings.Replace(m, ".", dotMark, 1)
	})
	// 有序列表的 "1." "2."
	processed = reListNumber.ReplaceAllStringFunc(processed, func(m string) string {
		return strings.Replace(m, ".", dotMark, 1)
	})

	var all []string
	for _, paragraph := range reParagraph.Split(processed, -1) {
		for _, sentence := range splitSentenceBoundaries(paragraph) {
			restored := strings.ReplaceAll(sentence, ellipsisMark, "...")
			restored = strings.ReplaceAll(restored, dotMark, ".")
			restored = strings.TrimSpace(restored)

			// 过滤空串和过短的噪声碎片（"He left." 这种 8 字符的完整短句要保留）
			if len(restored) >= 8 {
				all = append(all, restored)
			}
		}
	}

	// 合并被误切的句子：短碎片后面紧跟小写开头的片段时，两者属于同一句
	var merged []string
	current := ""
	for i, sentence := range all {
		if i < len(all)-1 && len(sentence) < 20 && reLowerStart.MatchString(all[i+1]) {
			current += sentence + " "
		} else if current != "" {
			merged = append(merged, current+sentence)
			current = ""
		} else {
			merged = append(merged, sentence)
		}
	}

	if merged == nil {
		return []string{}
	}
	return merged
}

// splitSentenceBoundaries 按句子边界切分一个段落
// 边界定义：[.!?] 后可跟一个右引号/右括号，再跟空白，
// 且下一个非空白字符是大写字母、数字、引号或左括号
func splitSentenceBoundaries(paragraph string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(paragraph) {
		c := paragraph[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		end := i + 1
		if end < len(paragraph) && isClosingMark(paragraph[end]) {
			end++
		}
		ws := end
		for ws < len(paragraph) && isSpace(paragraph[ws]) {
			ws++
		}
		if ws == end {
			// 标点后没有空白，不是边界
			i = end
			continue
		}
		if ws == len(paragraph) || isSentenceStart(paragraph[ws]) {
			sentences = append(sentences, paragraph[start:end])
			start = ws
			i = ws
			continue
		}
		i = end
	}
	if start < len(paragraph) {
		sentences = append(sentences, paragraph[start:])
	}
	return sentences
}

func isClosingMark(c byte) bool {
	return c == '"' || c == '\'' || c == ')' || c == ']'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isSentenceStart(c byte) bool {
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	return c == '"' || c == '\'' || c == '(' || c == '['
}

// RedactSensitiveInfo 把句子里会泄底的信息替换成占位符
// 片名、导演、演员按整词（大于 3 个字符）不区分大小写替换成 [REDACTED]，
// 年份替换成 [YEAR]，相邻的多个 [REDACTED] 合并成一个
func RedactSensitiveInfo(sentence string, movie *model.Movie) string {
	if sentence == "" || movie == nil {
		return sentence
	}

	redacted := sentence

	if movie.Title != "" {
		for _, word := range reSpaces.Split(movie.Title, -1) {
			if len(word) > 3 {
				redacted = replaceWholeWord(redacted, word, redactedTag)
			}
		}
		// 整个片名也按字面量替换一次
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(movie.Title))
		redacted = re.ReplaceAllString(redacted, redactedTag)
	}

	for _, part := range reSpaces.Split(movie.Director, -1) {
		if len(part) > 3 {
			redacted = replaceWholeWord(redacted, part, redactedTag)
		}
	}

	for _, actor := range movie.Actors {
		for _, part := range reSpaces.Split(actor, -1) {
			if len(part) > 3 {
				redacted = replaceWholeWord(redacted, part, redactedTag)
			}
		}
	}

	if movie.Year != 0 {
		re := regexp.MustCompile(`\b` + strconv.Itoa(movie.Year) + `\b`)
		redacted = re.ReplaceAllString(redacted, yearTag)
	}

	// 合并相邻的 [REDACTED]
	redacted = reRedactRun.ReplaceAllString(redacted, redactedTag+" ")

	return redacted
}

func replaceWholeWord(text, word, replacement string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllString(text, replacement)
}

// GetSentencePairs 生成候选线索：单句要足够长，相邻两句拼起来不能太长
// 产出只进入人工审核流程，本身不落库
func GetSentencePairs(text string) []string {
	sentences := ExtractSentences(text)
	var pairs []string

	for i := 0; i < len(sentences); i++ {
		if len(sentences[i]) > 20 {
			pairs = append(pairs, sentences[i])
		}

		if i < len(sentences)-1 {
			pair := sentences[i] + " " + sentences[i+1]
			if len(pair) <= 200 {
				pairs = append(pairs, pair)
			}
		}
	}

	if pairs == nil {
		return []string{}
	}
	return pairs
}
