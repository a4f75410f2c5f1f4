package analyzer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many model tokens a text occupies.
type TokenCounter interface {
	Count(text string) int
}

// ApproxCounter assumes four bytes per token.
type ApproxCounter struct{}

func (ApproxCounter) Count(text string) int { return len(text) / 4 }

type tiktokenCounter struct {
	model string
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

// NewTokenCounter loads the BPE for model on first use. Models tiktoken does
// not know use cl100k_base; if no encoding can be loaded it degrades to ApproxCounter.
func NewTokenCounter(model string) TokenCounter {
	return &tiktokenCounter{model: model}
}

func (c *tiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return ApproxCounter{}.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// SplitByTokens packs ". " separated sentences into chunks of at most
// maxTokens. A single sentence longer than the limit becomes its own chunk.
func SplitByTokens(text string, maxTokens int, counter TokenCounter) []string {
	var chunks []string
	var current string
	for _, sentence := range strings.Split(text, ". ") {
		candidate := current + sentence + ". "
		if counter.Count(candidate) > maxTokens {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence + ". "
			continue
		}
		current = candidate
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}
