package textclean

import (
	"math"
	"regexp"
	"sort"
	"unicode/utf8"

	"handoc/internal/model"
)

var reHangulWord = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]+`)

var stopwords = map[string]struct{}{
	"이": {}, "그": {}, "저": {}, "것": {}, "수": {}, "등": {}, "들": {}, "및": {},
	"또는": {}, "그리고": {}, "하지만": {}, "그러나": {}, "따라서": {}, "그래서": {},
	"또한": {}, "즉": {}, "물론": {}, "당연히": {}, "있다": {}, "없다": {}, "이다": {},
	"아니다": {}, "되다": {}, "하다": {}, "가다": {}, "오다": {}, "보다": {}, "주다": {},
	"받다": {}, "만들다": {}, "생각하다": {}, "말하다": {}, "알다": {}, "모르다": {},
	"좋다": {}, "나쁘다": {},
}

// ExtractKeywords ranks Hangul words of two or more syllables by frequency.
// Importance is the word's share of all counted words scaled by 10 and capped at 1.
func ExtractKeywords(text string, max int) []model.Keyword {
	if text == "" || max <= 0 {
		return []model.Keyword{}
	}

	freq := map[string]int{}
	var order []string
	total := 0
	for _, w := range reHangulWord.FindAllString(text, -1) {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
		total++
	}

	// stable on first appearance so equal counts keep document order
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > max {
		order = order[:max]
	}

	out := make([]model.Keyword, 0, len(order))
	for _, w := range order {
		importance := 0.0
		if total > 0 {
			importance = math.Min(float64(freq[w])/float64(total)*10, 1)
		}
		out = append(out, model.Keyword{Keyword: w, Frequency: freq[w], Importance: importance})
	}
	return out
}

// ImportantSentences scores sentences by length, keyword overlap and position
// (the first and last fifth of the document weigh more) and returns the top max.
func ImportantSentences(text string, max int) []model.ImportantSentence {
	sentences := SplitSentences(text)
	if len(sentences) == 0 || max <= 0 {
		return []model.ImportantSentence{}
	}

	keywords := map[string]struct{}{}
	for _, kw := range ExtractKeywords(text, 50) {
		keywords[kw.Keyword] = struct{}{}
	}

	n := float64(len(sentences))
	scored := make([]model.ImportantSentence, 0, len(sentences))
	for i, s := range sentences {
		length := utf8.RuneCountInString(s)
		lengthScore := 0.3
		if length > 20 {
			lengthScore = math.Min(float64(length)/100, 1)
		}

		matches := 0
		seen := map[string]struct{}{}
		for _, w := range reHangulWord.FindAllString(s, -1) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := keywords[w]; ok {
				matches++
			}
		}
		keywordScore := math.Min(float64(matches)/5, 1)

		positionScore := 1.0
		switch {
		case float64(i) < n*0.2:
			positionScore = 1.2
		case float64(i) > n*0.8:
			positionScore = 1.1
		}

		scored = append(scored, model.ImportantSentence{
			Sentence:   s,
			Importance: lengthScore*0.3 + keywordScore*0.5 + positionScore*0.2,
			Page:       1,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Importance > scored[j].Importance })
	if len(scored) > max {
		scored = scored[:max]
	}
	return scored
}
