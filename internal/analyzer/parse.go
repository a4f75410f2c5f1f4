package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"handoc/internal/model"
)

const qaConfidence = 0.8

var (
	questionLine = regexp.MustCompile(`^[Qq]\d*\s*[:：]\s*`)
	answerLine   = regexp.MustCompile(`^[Aa]\d*\s*[:：]\s*`)
	listNumber   = regexp.MustCompile(`^\d+\.?\s*`)
)

// ParseQA reads "Q1: ..." / "A1: ..." pairs. Lines after an answer that match
// neither prefix continue that answer.
func ParseQA(raw string) []model.QAPair {
	var pairs []model.QAPair
	var q, a string
	flush := func() {
		if q != "" && a != "" {
			pairs = append(pairs, model.QAPair{Question: q, Answer: a, Confidence: qaConfidence})
		}
		q, a = "", ""
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case questionLine.MatchString(line):
			flush()
			q = strings.TrimSpace(questionLine.ReplaceAllString(line, ""))
		case answerLine.MatchString(line):
			a = strings.TrimSpace(answerLine.ReplaceAllString(line, ""))
		case a != "" && line != "":
			a += " " + line
		}
	}
	flush()
	return pairs
}

// ParseKeywords reads numbered "1. keyword - [중요도: 높음]" lines.
func ParseKeywords(raw string) []model.Keyword {
	var out []model.Keyword
	for _, content := range numberedLines(raw) {
		word, importance := splitImportance(content)
		word = strings.Trim(word, "[]\"' ")
		if word == "" {
			continue
		}
		out = append(out, model.Keyword{Keyword: word, Frequency: 1, Importance: importance})
	}
	return out
}

// ParseSentences reads numbered "1. \"sentence\" - [중요도: 높음]" lines.
func ParseSentences(raw string) []model.ImportantSentence {
	var out []model.ImportantSentence
	for _, content := range numberedLines(raw) {
		sentence, importance := splitImportance(content)
		sentence = strings.Trim(sentence, "\"'“”‘’ ")
		if sentence == "" {
			continue
		}
		out = append(out, model.ImportantSentence{Sentence: sentence, Importance: importance, Page: 1})
	}
	return out
}

// numberedLines returns list items with their "N." prefix stripped. A line
// counts as an item when a digit appears in its first three characters.
func numberedLines(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !leadingDigit(line) {
			continue
		}
		items = append(items, strings.TrimSpace(listNumber.ReplaceAllString(line, "")))
	}
	return items
}

func leadingDigit(line string) bool {
	for i, r := range []rune(line) {
		if i >= 3 {
			break
		}
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// splitImportance separates "text - [중요도: 높음]" into the text and a score.
func splitImportance(content string) (string, float64) {
	text, rest := content, content
	if i := strings.LastIndex(content, " - "); i >= 0 {
		text, rest = content[:i], content[i+3:]
	}
	return strings.TrimSpace(text), importanceScore(rest)
}

func importanceScore(s string) float64 {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "높음"), strings.Contains(s, "high"):
		return 0.9
	case strings.Contains(s, "중간"), strings.Contains(s, "medium"):
		return 0.6
	case strings.Contains(s, "낮음"), strings.Contains(s, "low"):
		return 0.3
	}
	return 0.5
}
