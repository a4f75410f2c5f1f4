// Package textclean normalises extracted PDF text before it is analysed.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"handoc/internal/model"
)

// Options toggles each cleaning step. DefaultOptions matches what the
// processing pipeline uses.
type Options struct {
	RemoveExcessiveWhitespace bool `json:"remove_excessive_whitespace"`
	RemovePageNumbers         bool `json:"remove_page_numbers"`
	RemoveHeaderFooter        bool `json:"remove_header_footer"`
	NormalizeBulletPoints     bool `json:"normalize_bullet_points"`
	FixLineBreaks             bool `json:"fix_line_breaks"`
	RemoveSpecialChars        bool `json:"remove_special_chars"`
	PreserveStructure         bool `json:"preserve_structure"`
}

func DefaultOptions() Options {
	return Options{
		RemoveExcessiveWhitespace: true,
		RemovePageNumbers:         true,
		RemoveHeaderFooter:        true,
		NormalizeBulletPoints:     true,
		FixLineBreaks:             true,
		RemoveSpecialChars:        false,
		PreserveStructure:         true,
	}
}

type Statistics struct {
	CharacterCount int `json:"character_count"`
	WordCount      int `json:"word_count"`
	SentenceCount  int `json:"sentence_count"`
	ParagraphCount int `json:"paragraph_count"`
	LineCount      int `json:"line_count"`
}

type Result struct {
	CleanedText string     `json:"cleaned_text"`
	Language    string     `json:"language"`
	Statistics  Statistics `json:"statistics"`
}

var (
	reHorizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	reManyNewlines    = regexp.MustCompile(`\n{3,}`)
	rePageNumber      = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	reHeaderFooter    = regexp.MustCompile(`(?m)^[-=]{3,}.*?[-=]{3,}$`)
	reBullet          = regexp.MustCompile(`(?m)^[ \t]*[•·▪▫◦‣⁃][ \t]*`)
	reSpecialChars    = regexp.MustCompile(`[^\x{AC00}-\x{D7A3}\s.,!?;:\-()\[\]0-9a-zA-Z]`)
	reSpaces          = regexp.MustCompile(` +`)
	reSentenceEnd     = regexp.MustCompile(`[.!?]+`)
)

// Clean runs the enabled steps in a fixed order and reports the language and
// statistics of the result. Blank input yields an empty result with language "unknown".
func Clean(text string, opts Options) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Language: model.LanguageUnknown}
	}

	lang := DetectLanguage(text)
	out := strings.ReplaceAll(text, "\r\n", "\n")

	if opts.RemoveExcessiveWhitespace {
		out = removeExcessiveWhitespace(out)
	}
	if opts.RemovePageNumbers {
		out = rePageNumber.ReplaceAllString(out, "")
	}
	if opts.RemoveHeaderFooter {
		out = reHeaderFooter.ReplaceAllString(out, "")
	}
	if opts.NormalizeBulletPoints {
		out = reBullet.ReplaceAllString(out, "• ")
	}
	if opts.FixLineBreaks {
		out = fixLineBreaks(out)
	}
	if opts.RemoveSpecialChars {
		out = reSpecialChars.ReplaceAllString(out, "")
	}
	if opts.PreserveStructure {
		out = preserveStructure(out)
	}
	out = finalCleanup(out)

	return Result{CleanedText: out, Language: lang, Statistics: Stats(out)}
}

// DetectLanguage returns "ko" when Hangul syllables exceed 30% of the
// non-space characters, "en" otherwise.
func DetectLanguage(text string) string {
	var hangul, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isHangul(r) {
			hangul++
		}
	}
	if total > 0 && float64(hangul)/float64(total) > 0.3 {
		return model.LanguageKorean
	}
	return model.LanguageEnglish
}

// Stats counts characters (runes), words, sentences, paragraphs and non-blank lines.
func Stats(text string) Statistics {
	if text == "" {
		return Statistics{}
	}
	var paragraphs, lines int
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}
	return Statistics{
		CharacterCount: utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
		SentenceCount:  len(SplitSentences(text)),
		ParagraphCount: paragraphs,
		LineCount:      lines,
	}
}

// SplitSentences splits on runs of . ! and ?, dropping blank fragments.
func SplitSentences(text string) []string {
	parts := reSentenceEnd.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func removeExcessiveWhitespace(text string) string {
	text = reHorizontalSpace.ReplaceAllString(text, " ")
	text = reManyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// fixLineBreaks trims every line and leaves a trailing space on lines that
// continue a sentence onto a next line starting in lower case.
func fixLineBreaks(text string) string {
	lines := strings.Split(text, "\n")
	fixed := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !endsWithAny(line, ".!?:;") && i < len(lines)-1 {
			next := strings.TrimSpace(lines[i+1])
			if next != "" {
				r, _ := utf8.DecodeRuneInString(next)
				if !unicode.IsUpper(r) {
					line += " "
				}
			}
		}
		fixed[i] = line
	}
	return strings.Join(fixed, "\n")
}

// preserveStructure marks short capitalised lines without a final period as headings.
func preserveStructure(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if utf8.RuneCountInString(line) < 100 && !strings.HasSuffix(line, ".") &&
			!strings.HasPrefix(line, "•") && unicode.IsUpper(first) {
			out[i] = "\n## " + line + "\n"
			continue
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

func finalCleanup(text string) string {
	text = reSpaces.ReplaceAllString(text, " ")
	text = reManyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func endsWithAny(s, chars string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return strings.ContainsRune(chars, r)
}

func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}
