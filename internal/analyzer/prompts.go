package analyzer

import (
	"strconv"
	"strings"
)

// Task names used as prompt keys, "<lang>.<task>".
const (
	TaskSummary      = "summary"
	TaskFinalSummary = "final_summary"
	TaskQA           = "qa"
	TaskKeywords     = "keywords"
	TaskSentences    = "sentences"
)

// Prompts holds the system and instruction templates per language. The
// placeholders {text} and {n} are substituted at render time.
type Prompts struct {
	templates map[string]string
}

var defaultTemplates = map[string]string{
	"ko.system": "당신은 문서를 정확하게 분석하는 한국어 전문가입니다. 주어진 형식을 반드시 지켜서 답하세요.",
	"en.system": "You are an expert document analyst. Always answer in exactly the requested format.",

	"ko.summary": `다음 문서의 핵심 내용을 한국어로 요약해 주세요.
- 3개의 문단으로 작성합니다.
- 주요 주장과 근거, 결론을 빠짐없이 담아 주세요.

문서:
{text}`,
	"en.summary": `Summarize the following document in English.
- Write exactly 3 paragraphs.
- Cover the main claims, the supporting evidence and the conclusion.

Document:
{text}`,

	"ko.final_summary": `다음은 긴 문서의 각 부분을 요약한 내용입니다. 이를 하나의 자연스러운 요약으로 정리해 주세요.
- 3개의 문단으로 작성합니다.
- 중복되는 내용은 합쳐 주세요.

부분 요약:
{text}`,
	"en.final_summary": `Below are summaries of consecutive parts of a long document. Merge them into one coherent summary.
- Write exactly 3 paragraphs.
- Remove repetition.

Part summaries:
{text}`,

	"ko.qa": `다음 문서를 읽고 독자가 궁금해할 만한 질문 {n}개와 답변을 만들어 주세요.
반드시 아래 형식을 따르세요.

Q1: 질문
A1: 답변
Q2: 질문
A2: 답변

문서:
{text}`,
	"en.qa": `Read the document and write {n} questions a reader would ask, each with its answer.
Use exactly this format:

Q1: question
A1: answer
Q2: question
A2: answer

Document:
{text}`,

	"ko.keywords": `다음 문서에서 가장 중요한 키워드 {n}개를 뽑아 주세요.
한 줄에 하나씩 아래 형식으로 작성하세요.

1. [키워드] - [중요도: 높음/중간/낮음]

문서:
{text}`,
	"en.keywords": `List the {n} most important keywords of the document.
One per line, in this format:

1. [keyword] - [importance: high/medium/low]

Document:
{text}`,

	"ko.sentences": `다음 문서에서 가장 중요한 문장 {n}개를 원문 그대로 골라 주세요.
한 줄에 하나씩 아래 형식으로 작성하세요.

1. "문장" - [중요도: 높음/중간/낮음]

문서:
{text}`,
	"en.sentences": `Pick the {n} most important sentences of the document, quoted verbatim.
One per line, in this format:

1. "sentence" - [importance: high/medium/low]

Document:
{text}`,
}

func DefaultPrompts() *Prompts {
	t := make(map[string]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		t[k] = v
	}
	return &Prompts{templates: t}
}

// With returns a copy with the given templates replaced. Empty values are ignored.
func (p *Prompts) With(overrides map[string]string) *Prompts {
	t := make(map[string]string, len(p.templates))
	for k, v := range p.templates {
		t[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) != "" {
			t[k] = v
		}
	}
	return &Prompts{templates: t}
}

// System returns the system prompt for lang.
func (p *Prompts) System(lang string) string {
	return p.templates[promptLang(lang)+".system"]
}

// Render fills the task template for lang. Languages other than Korean use English.
func (p *Prompts) Render(lang, task, text string, n int) string {
	tmpl := p.templates[promptLang(lang)+"."+task]
	return strings.NewReplacer("{text}", text, "{n}", strconv.Itoa(n)).Replace(tmpl)
}

func promptLang(lang string) string {
	if lang == "ko" {
		return "ko"
	}
	return "en"
}
