package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_Empty(t *testing.T) {
	res := Clean("  \n\t ", DefaultOptions())
	assert.Equal(t, "", res.CleanedText)
	assert.Equal(t, "unknown", res.Language)
	assert.Equal(t, Statistics{}, res.Statistics)
}

func TestClean_Steps(t *testing.T) {
	in := strings.Join([]string{
		"본문의   첫 번째   문장입니다.",
		"12",
		"=== 회사 기밀 ===",
		"· 첫 항목입니다.",
		"▪ 둘째 항목입니다.",
		"",
		"",
		"",
		"마지막 문장입니다.",
	}, "\n")

	res := Clean(in, DefaultOptions())

	assert.Equal(t, "ko", res.Language)
	assert.NotContains(t, res.CleanedText, "   ")
	assert.NotContains(t, res.CleanedText, "\n12\n")
	assert.NotContains(t, res.CleanedText, "회사 기밀")
	assert.Contains(t, res.CleanedText, "• 첫 항목입니다.")
	assert.Contains(t, res.CleanedText, "• 둘째 항목입니다.")
	assert.NotContains(t, res.CleanedText, "\n\n\n")
	assert.True(t, strings.HasPrefix(res.CleanedText, "본문의 첫 번째 문장입니다."))
	assert.True(t, strings.HasSuffix(res.CleanedText, "마지막 문장입니다."))
}

func TestClean_PreserveStructure(t *testing.T) {
	in := "Introduction\nthis paragraph explains the topic."

	res := Clean(in, DefaultOptions())
	assert.Contains(t, res.CleanedText, "## Introduction")
	assert.Equal(t, "en", res.Language)

	opts := DefaultOptions()
	opts.PreserveStructure = false
	res = Clean(in, opts)
	assert.NotContains(t, res.CleanedText, "##")
}

func TestClean_RemoveSpecialChars(t *testing.T) {
	opts := DefaultOptions()
	opts.RemoveSpecialChars = true
	opts.PreserveStructure = false

	res := Clean("가격은 ★100원★ 입니다.", opts)
	assert.Equal(t, "가격은 100원 입니다.", res.CleanedText)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "ko", DetectLanguage("한국어 문서 분석"))
	assert.Equal(t, "en", DetectLanguage("plain english text"))
	// 3 Hangul of 13 visible characters is below the threshold
	assert.Equal(t, "en", DetectLanguage("abcdefghij 한국어"))
	assert.Equal(t, "en", DetectLanguage(""))
}

func TestStats(t *testing.T) {
	s := Stats("첫 문장. 둘째 문장!\n셋째 줄\n\n새 문단?")
	assert.Equal(t, 8, s.WordCount)
	assert.Equal(t, 3, s.SentenceCount)
	assert.Equal(t, 2, s.ParagraphCount)
	assert.Equal(t, 3, s.LineCount)
	assert.Equal(t, 24, s.CharacterCount)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"하나", "둘", "셋"}, SplitSentences("하나. 둘!! 셋?"))
	assert.Empty(t, SplitSentences("..."))
}

func TestExtractKeywords(t *testing.T) {
	text := "인공지능 문서 분석. 인공지능 요약 기능. 인공지능 문서 그리고 그리고 분석"

	kws := ExtractKeywords(text, 3)
	require.Len(t, kws, 3)

	assert.Equal(t, "인공지능", kws[0].Keyword)
	assert.Equal(t, 3, kws[0].Frequency)
	assert.Equal(t, "문서", kws[1].Keyword)
	assert.Equal(t, "분석", kws[2].Keyword)
	for _, kw := range kws {
		assert.LessOrEqual(t, kw.Importance, 1.0)
		assert.NotEqual(t, "그리고", kw.Keyword)
	}

	assert.Empty(t, ExtractKeywords("", 10))
	assert.Empty(t, ExtractKeywords("only english words", 10))
}

func TestImportantSentences(t *testing.T) {
	text := "인공지능 문서 분석 서비스는 업로드된 문서를 요약합니다. 짧다. " +
		"중간 문장입니다. 인공지능 분석 결과는 문서 요약과 키워드를 포함합니다."

	got := ImportantSentences(text, 2)
	require.Len(t, got, 2)
	assert.GreaterOrEqual(t, got[0].Importance, got[1].Importance)
	for _, s := range got {
		assert.Equal(t, 1, s.Page)
		assert.NotEqual(t, "짧다", s.Sentence)
	}

	assert.Empty(t, ImportantSentences("", 5))
}
