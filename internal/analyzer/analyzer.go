// Package analyzer turns extracted document text into a summary, question
// and answer pairs, keywords and important sentences using an LLM provider.
package analyzer

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"handoc/internal/logger"
	"handoc/internal/model"
	"handoc/internal/textclean"
)

const (
	qaCount       = 5
	keywordCount  = 15
	sentenceCount = 8

	summaryChunkMaxTokens = 500
	summaryMaxTokens      = 800
	qaMaxTokens           = 1000
	keywordsMaxTokens     = 500
	sentencesMaxTokens    = 800
	listTemperature       = 0.3

	summaryFallbackRunes = 1000
)

type Config struct {
	DefaultModel      string
	PremiumModel      string
	MaxTokens         int
	Temperature       float64
	ChunkTokens       int
	RequestsPerMinute int
}

// Options select the model and prompt language for one run.
type Options struct {
	Language string
	// Model overrides the tier's model when set.
	Model    string
	Premium  bool
}

// Result is the outcome of Analyze. Tasks that failed are left empty.
type Result struct {
	Summary            string
	QAPairs            []model.QAPair
	Keywords           []model.Keyword
	ImportantSentences []model.ImportantSentence
	Model              string
	Language           string
	ProcessingTime     float64
	ConfidenceScore    float64
}

type Analyzer struct {
	provider Provider
	cfg      Config
	limiter  *rate.Limiter
	tokens   TokenCounter
	prompts  *Prompts
	log      *logger.Logger
	now      func() time.Time
	fallback bool
}

type Option func(*Analyzer)

func WithTokenCounter(c TokenCounter) Option { return func(a *Analyzer) { a.tokens = c } }

func WithPrompts(p *Prompts) Option { return func(a *Analyzer) { a.prompts = p } }

func WithLogger(l *logger.Logger) Option { return func(a *Analyzer) { a.log = l } }

func WithLimiter(l *rate.Limiter) Option { return func(a *Analyzer) { a.limiter = l } }

// WithLocalFallback fills failed keyword and sentence tasks from the
// frequency heuristics in textclean instead of leaving them empty.
func WithLocalFallback() Option { return func(a *Analyzer) { a.fallback = true } }

func New(p Provider, cfg Config, opts ...Option) *Analyzer {
	if cfg.ChunkTokens <= 0 {
		cfg.ChunkTokens = 3000
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-3.5-turbo"
	}
	if cfg.PremiumModel == "" {
		cfg.PremiumModel = cfg.DefaultModel
	}

	a := &Analyzer{
		provider: p,
		cfg:      cfg,
		prompts:  DefaultPrompts(),
		log:      logger.Default("analyzer"),
		now:      time.Now,
	}
	if cfg.RequestsPerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 4)
	} else {
		a.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	for _, o := range opts {
		o(a)
	}
	if a.tokens == nil {
		a.tokens = NewTokenCounter(cfg.DefaultModel)
	}
	return a
}

// Model returns the model name used for the given tier.
func (a *Analyzer) Model(premium bool) string {
	if premium {
		return a.cfg.PremiumModel
	}
	return a.cfg.DefaultModel
}

// Analyze runs the four tasks concurrently. A failed task yields its zero
// value, or the local heuristic result for keywords and sentences when
// WithLocalFallback is set. Only an empty input or a cancelled context fails
// the whole run.
func (a *Analyzer) Analyze(ctx context.Context, text string, opts Options) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	lang := opts.Language
	if lang == "" {
		lang = model.LanguageKorean
	}
	aiModel := opts.Model
	if aiModel == "" {
		aiModel = a.Model(opts.Premium)
	}
	start := a.now()

	var (
		wg        sync.WaitGroup
		summary   string
		qa        []model.QAPair
		keywords  []model.Keyword
		sentences []model.ImportantSentence
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		s, err := a.Summarize(ctx, text, lang, aiModel)
		if err != nil {
			a.taskFailed("summary", aiModel, err)
			return
		}
		summary = s
	}()
	go func() {
		defer wg.Done()
		raw, err := a.complete(ctx, lang, TaskQA, text, qaCount, aiModel, qaMaxTokens, a.cfg.Temperature)
		if err != nil {
			a.taskFailed("qa", aiModel, err)
			return
		}
		qa = ParseQA(raw)
	}()
	go func() {
		defer wg.Done()
		raw, err := a.complete(ctx, lang, TaskKeywords, text, keywordCount, aiModel, keywordsMaxTokens, listTemperature)
		if err != nil {
			a.taskFailed("keywords", aiModel, err)
			if a.fallback {
				keywords = textclean.ExtractKeywords(text, keywordCount)
			}
			return
		}
		keywords = ParseKeywords(raw)
	}()
	go func() {
		defer wg.Done()
		raw, err := a.complete(ctx, lang, TaskSentences, text, sentenceCount, aiModel, sentencesMaxTokens, listTemperature)
		if err != nil {
			a.taskFailed("sentences", aiModel, err)
			if a.fallback {
				sentences = textclean.ImportantSentences(text, sentenceCount)
			}
			return
		}
		sentences = ParseSentences(raw)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Summary:            summary,
		QAPairs:            nonNil(qa),
		Keywords:           nonNil(keywords),
		ImportantSentences: nonNil(sentences),
		Model:              aiModel,
		Language:           lang,
		ProcessingTime:     a.now().Sub(start).Seconds(),
	}
	res.ConfidenceScore = Confidence(res.Summary, res.QAPairs, res.Keywords)
	return res, nil
}

// Summarize summarizes text directly when it fits in one chunk. Longer texts
// are summarized chunk by chunk and the partial summaries merged; if the
// merge fails, the first characters of the partial summaries are returned.
func (a *Analyzer) Summarize(ctx context.Context, text, lang, aiModel string) (string, error) {
	if a.tokens.Count(text) <= a.cfg.ChunkTokens {
		return a.complete(ctx, lang, TaskSummary, text, 0, aiModel, summaryMaxTokens, a.cfg.Temperature)
	}

	chunks := SplitByTokens(text, a.cfg.ChunkTokens, a.tokens)
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		s, err := a.complete(ctx, lang, TaskSummary, chunk, 0, aiModel, summaryChunkMaxTokens, a.cfg.Temperature)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			a.log.Warn("chunk_summary_failed", map[string]any{"chunk": i, "error_message": err.Error()})
			continue
		}
		parts = append(parts, s)
	}
	combined := strings.Join(parts, "\n")

	final, err := a.complete(ctx, lang, TaskFinalSummary, combined, 0, aiModel, summaryMaxTokens, a.cfg.Temperature)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.log.Warn("final_summary_failed", map[string]any{"chunks": len(chunks), "error_message": err.Error()})
		return truncateRunes(combined, summaryFallbackRunes) + "...", nil
	}
	return final, nil
}

func (a *Analyzer) complete(ctx context.Context, lang, task, text string, n int, aiModel string, maxTokens int, temperature float64) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if a.cfg.MaxTokens > 0 && maxTokens > a.cfg.MaxTokens {
		maxTokens = a.cfg.MaxTokens
	}
	return a.provider.Complete(ctx, Request{
		Model:       aiModel,
		System:      a.prompts.System(lang),
		User:        a.prompts.Render(lang, task, text, n),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
}

func (a *Analyzer) taskFailed(task, aiModel string, err error) {
	a.log.Error("analysis_task_failed", err, map[string]any{
		"task":     task,
		"model":    aiModel,
		"provider": a.provider.Name(),
	})
}

// Confidence scores how complete a result is: 0.3 for a summary longer than
// 100 characters, 0.4 for at least 3 QA pairs, 0.3 for at least 5 keywords.
func Confidence(summary string, qa []model.QAPair, keywords []model.Keyword) float64 {
	score := 0.0
	if len([]rune(summary)) > 100 {
		score += 0.3
	}
	if len(qa) >= 3 {
		score += 0.4
	}
	if len(keywords) >= 5 {
		score += 0.3
	}
	return math.Min(math.Round(score*100)/100, 1.0)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
