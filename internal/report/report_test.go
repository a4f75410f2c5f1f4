package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoc/internal/model"
)

func sampleAnalysis() *model.Analysis {
	kws := make([]model.Keyword, 0, 12)
	for i := 0; i < 12; i++ {
		kws = append(kws, model.Keyword{Keyword: fmt.Sprintf("kw%02d", i), Frequency: 1, Importance: float64(i) / 20})
	}
	return &model.Analysis{
		ID:          "a-1",
		DocumentID:  "d-1",
		RawText:     "raw",
		CleanedText: "clean",
		Summary:     "문서 요약입니다.",
		Keywords:    kws,
		QAPairs: []model.QAPair{
			{Question: "무엇인가요?", Answer: "분석 서비스입니다.", Confidence: 0.8},
			{Question: "언제인가요?", Answer: "지금입니다.", Confidence: 0.8},
		},
		ImportantSentences: []model.ImportantSentence{
			{Sentence: "덜 중요한 문장", Importance: 0.3, Page: 1},
			{Sentence: "가장 중요한 문장", Importance: 0.9, Page: 1},
		},
		AIModel:        "gpt-3.5-turbo",
		Language:       "ko",
		ProcessingTime: 12.5,
		TotalPages:     3,
		TotalWords:     420,
		CreatedAt:      time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleAnalysis())

	assert.True(t, strings.HasPrefix(md, "# 문서 분석 결과\n"))
	assert.Contains(t, md, "## 📋 요약\n문서 요약입니다.")
	assert.Contains(t, md, "- **kw11** (중요도: 0.55)")
	assert.NotContains(t, md, "kw01", "only the top 10 keywords are listed")
	assert.Contains(t, md, "### Q1: 무엇인가요?\n**A**: 분석 서비스입니다.")
	assert.Contains(t, md, "### Q2: 언제인가요?")
	assert.Contains(t, md, "- 처리 시간: 12.50초")
	assert.Contains(t, md, "- AI 모델: gpt-3.5-turbo")

	top := strings.Index(md, "가장 중요한 문장")
	less := strings.Index(md, "덜 중요한 문장")
	require.True(t, top > 0 && less > 0)
	assert.Less(t, top, less)

	sections := []string{"## 📋 요약", "## 🔑 주요 키워드", "## ❓ 질문과 답변", "## 💡 핵심 문장", "## 📊 분석 통계"}
	assertOrdered(t, md, sections)
}

func TestMarkdown_SkipsEmptySections(t *testing.T) {
	md := Markdown(&model.Analysis{AIModel: "gpt-4"})
	assert.NotContains(t, md, "## 📋 요약")
	assert.NotContains(t, md, "## 🔑")
	assert.NotContains(t, md, "## ❓")
	assert.Contains(t, md, "## 📊 분석 통계")
}

func TestCopyAll_SectionOrder(t *testing.T) {
	out := CopyAll("report.pdf", sampleAnalysis())

	assert.True(t, strings.HasPrefix(out, "# report.pdf 분석 결과"))
	assertOrdered(t, out, []string{"## 📄 요약", "## ❓ 질문과 답변", "## 🔑 키워드", "## ⭐ 중요 문장"})
	assert.Contains(t, out, "1. 무엇인가요?\n   분석 서비스입니다.\n\n2. 언제인가요?")
	assert.Contains(t, out, "• kw11 (55%)")
	assert.Contains(t, out, "1. 덜 중요한 문장 (중요도: 30%)\n\n2. 가장 중요한 문장 (중요도: 90%)")
	assert.Contains(t, out, "분석 완료: 2025-05-01 09:30")
	assert.True(t, strings.HasSuffix(out, "처리 시간: 12.5초"))
}

func TestHTML(t *testing.T) {
	out, err := HTML("<리포트>", "# 제목\n\n- **굵게**\n\n<script>alert(1)</script>\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<title>&lt;리포트&gt;</title>")
	assert.Contains(t, out, "<h1>제목</h1>")
	assert.Contains(t, out, "<strong>굵게</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRender(t *testing.T) {
	a := sampleAnalysis()

	md, err := Render("r.pdf", a, FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, Markdown(a), string(md))

	page, err := Render("r.pdf", a, FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h2>📋 요약</h2>")

	txt, err := Render("r.pdf", a, FormatText)
	require.NoError(t, err)
	assert.Equal(t, CopyAll("r.pdf", a), string(txt))

	raw, err := Render("r.pdf", a, FormatJSON)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "a-1", decoded["id"])
	assert.NotContains(t, decoded, "raw_text")
	assert.Equal(t, "raw", a.RawText, "the analysis itself is not modified")

	_, err = Render("r.pdf", a, Format("pdf"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"", FormatMarkdown, "md"},
		{"MD", FormatMarkdown, "md"},
		{"html", FormatHTML, "html"},
		{"text", FormatText, "txt"},
		{"json", FormatJSON, "json"},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.ext, got.Extension())
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "analysis_abc.html", Filename("abc", FormatHTML))
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 90, Percent(0.9))
	assert.Equal(t, 55, Percent(0.55))
	assert.Equal(t, 0, Percent(0))
}

func assertOrdered(t *testing.T, s string, parts []string) {
	t.Helper()
	last := -1
	for _, p := range parts {
		i := strings.Index(s, p)
		require.GreaterOrEqual(t, i, 0, "missing %q", p)
		assert.Greater(t, i, last, "%q out of order", p)
		last = i
	}
}
