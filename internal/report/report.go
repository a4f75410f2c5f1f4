// Package report renders analyses as Markdown, HTML, plain text and JSON.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"handoc/internal/model"
)

const (
	topKeywords  = 10
	topSentences = 5
)

var ErrUnknownFormat = errors.New("지원하지 않는 내보내기 형식입니다")

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names and "md" as an alias for markdown.
// Empty input means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", ErrUnknownFormat
}

func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatText:
		return "txt"
	case FormatJSON:
		return "json"
	}
	return "md"
}

func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "text/markdown; charset=utf-8"
}

// Filename is the download name for an exported analysis.
func Filename(analysisID string, f Format) string {
	return "analysis_" + analysisID + "." + f.Extension()
}

// Markdown is the analysis report: summary, top keywords, Q&A, key
// sentences and statistics. Empty sections are left out.
func Markdown(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString("# 문서 분석 결과\n\n")

	if a.Summary != "" {
		b.WriteString("## 📋 요약\n")
		b.WriteString(a.Summary)
		b.WriteString("\n\n")
	}

	if len(a.Keywords) > 0 {
		b.WriteString("## 🔑 주요 키워드\n")
		for _, kw := range TopKeywords(a.Keywords, topKeywords) {
			fmt.Fprintf(&b, "- **%s** (중요도: %.2f)\n", kw.Keyword, kw.Importance)
		}
		b.WriteString("\n")
	}

	if len(a.QAPairs) > 0 {
		b.WriteString("## ❓ 질문과 답변\n")
		for i, qa := range a.QAPairs {
			fmt.Fprintf(&b, "### Q%d: %s\n**A**: %s\n\n", i+1, qa.Question, qa.Answer)
		}
	}

	if len(a.ImportantSentences) > 0 {
		b.WriteString("## 💡 핵심 문장\n")
		for _, s := range TopSentences(a.ImportantSentences, topSentences) {
			fmt.Fprintf(&b, "- %s\n", s.Sentence)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 📊 분석 통계\n")
	fmt.Fprintf(&b, "- 총 페이지 수: %d\n", a.TotalPages)
	fmt.Fprintf(&b, "- 총 단어 수: %d\n", a.TotalWords)
	fmt.Fprintf(&b, "- 처리 시간: %.2f초\n", a.ProcessingTime)
	fmt.Fprintf(&b, "- AI 모델: %s\n", a.AIModel)
	return b.String()
}

// CopyAll is the "copy all results" text: summary, Q&A, keywords, then
// important sentences, followed by a short footer.
func CopyAll(fileName string, a *model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s 분석 결과\n\n", fileName)

	b.WriteString("## 📄 요약\n")
	b.WriteString(a.Summary)
	b.WriteString("\n\n")

	b.WriteString("## ❓ 질문과 답변\n")
	qa := make([]string, 0, len(a.QAPairs))
	for i, p := range a.QAPairs {
		qa = append(qa, fmt.Sprintf("%d. %s\n   %s", i+1, p.Question, p.Answer))
	}
	b.WriteString(strings.Join(qa, "\n\n"))
	b.WriteString("\n\n")

	b.WriteString("## 🔑 키워드\n")
	kws := make([]string, 0, len(a.Keywords))
	for _, kw := range a.Keywords {
		kws = append(kws, fmt.Sprintf("• %s (%d%%)", kw.Keyword, Percent(kw.Importance)))
	}
	b.WriteString(strings.Join(kws, "\n"))
	b.WriteString("\n\n")

	b.WriteString("## ⭐ 중요 문장\n")
	sentences := make([]string, 0, len(a.ImportantSentences))
	for i, s := range a.ImportantSentences {
		sentences = append(sentences, fmt.Sprintf("%d. %s (중요도: %d%%)", i+1, s.Sentence, Percent(s.Importance)))
	}
	b.WriteString(strings.Join(sentences, "\n\n"))
	b.WriteString("\n\n")

	b.WriteString("---\n")
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "분석 완료: %s\n", a.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "처리 시간: %.1f초", a.ProcessingTime)
	return b.String()
}

// HTML renders Markdown into a standalone page. Raw HTML in the source is
// not passed through.
func HTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.New().Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String()), nil
}

// Render produces the export body for f.
func Render(fileName string, a *model.Analysis, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(a)), nil
	case FormatHTML:
		out, err := HTML(fileName+" 분석 결과", Markdown(a))
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case FormatText:
		return []byte(CopyAll(fileName, a)), nil
	case FormatJSON:
		export := *a
		export.RawText = ""
		export.CleanedText = ""
		return json.MarshalIndent(export, "", "  ")
	}
	return nil, ErrUnknownFormat
}

// TopKeywords returns up to n keywords by descending importance.
func TopKeywords(kws []model.Keyword, n int) []model.Keyword {
	out := append([]model.Keyword(nil), kws...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopSentences returns up to n sentences by descending importance.
func TopSentences(s []model.ImportantSentence, n int) []model.ImportantSentence {
	out := append([]model.ImportantSentence(nil), s...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Percent converts a 0..1 score to a whole percentage.
func Percent(v float64) int {
	return int(math.Round(v * 100))
}
