package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"handoc/internal/model"
	"handoc/internal/report"
)

var tabs = []string{"summary", "qa", "keywords", "sentences", "all", "markdown"}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func getProgressBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func statusLabel(s model.DocumentStatus) string {
	switch s {
	case model.StatusCompleted:
		return color.GreenString("완료")
	case model.StatusProcessing:
		return color.YellowString("처리중")
	case model.StatusFailed:
		return color.RedString("실패")
	case model.StatusUploaded:
		return color.BlueString("업로드됨")
	}
	return string(s)
}

// humanSize formats a byte count the way the dashboard shows file sizes.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

func orDash[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printDocuments(w io.Writer, res *model.ListResult[model.Document]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\t파일명\t상태\t크기\t페이지\t업로드일")
	for _, d := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.OriginalFilename, statusLabel(d.Status), humanSize(d.FileSize), orDash(d.PageCount), formatTime(d.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d/%d 페이지, 전체 %d개\n", res.Page, max(res.Pages, 1), res.Total)
}

func printDocument(w io.Writer, d *model.Document) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", d.ID)
	fmt.Fprintf(tw, "파일명\t%s\n", d.OriginalFilename)
	fmt.Fprintf(tw, "상태\t%s\n", statusLabel(d.Status))
	fmt.Fprintf(tw, "크기\t%s\n", humanSize(d.FileSize))
	fmt.Fprintf(tw, "페이지\t%s\n", orDash(d.PageCount))
	fmt.Fprintf(tw, "단어 수\t%s\n", orDash(d.WordCount))
	fmt.Fprintf(tw, "언어\t%s\n", orDash(d.Language))
	if d.ProcessingTime != nil {
		fmt.Fprintf(tw, "처리 시간\t%.1f초\n", *d.ProcessingTime)
	}
	if d.ErrorMessage != nil {
		fmt.Fprintf(tw, "오류\t%s\n", color.RedString(*d.ErrorMessage))
	}
	fmt.Fprintf(tw, "업로드일\t%s\n", formatTime(d.CreatedAt))
	tw.Flush()
}

func printAnalyses(w io.Writer, res *model.ListResult[model.Analysis]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\t문서\t모델\t언어\t신뢰도\t처리 시간\t생성일")
	for _, a := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%.1f초\t%s\n",
			a.ID, a.DocumentID, a.AIModel, a.Language, report.Percent(a.ConfidenceScore), a.ProcessingTime, formatTime(a.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d/%d 페이지, 전체 %d개\n", res.Page, max(res.Pages, 1), res.Total)
}

// renderTab writes one tab of the results viewer.
func renderTab(w io.Writer, a *model.Analysis, tab string) error {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()

	switch tab {
	case "summary":
		fmt.Fprintln(w, heading("📄 요약"))
		fmt.Fprintln(w, a.Summary)
		fmt.Fprintf(w, "\n신뢰도 %d%% · 처리 시간 %.1f초 · 모델 %s\n", report.Percent(a.ConfidenceScore), a.ProcessingTime, a.AIModel)
	case "qa":
		fmt.Fprintln(w, heading("❓ 질문과 답변"))
		for i, p := range a.QAPairs {
			fmt.Fprintf(w, "\nQ%d. %s\n", i+1, p.Question)
			fmt.Fprintf(w, "A%d. %s\n", i+1, p.Answer)
		}
	case "keywords":
		fmt.Fprintln(w, heading("🔑 키워드"))
		tw := newTable(w)
		for _, kw := range report.TopKeywords(a.Keywords, len(a.Keywords)) {
			fmt.Fprintf(tw, "%s\t%d%%\t%d회\n", kw.Keyword, report.Percent(kw.Importance), kw.Frequency)
		}
		tw.Flush()
	case "sentences":
		fmt.Fprintln(w, heading("⭐ 중요 문장"))
		for i, s := range report.TopSentences(a.ImportantSentences, len(a.ImportantSentences)) {
			fmt.Fprintf(w, "\n%d. %s (중요도: %d%%)\n", i+1, s.Sentence, report.Percent(s.Importance))
		}
	case "all":
		for i, t := range tabs[:4] {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := renderTab(w, a, t); err != nil {
				return err
			}
		}
	case "markdown":
		fmt.Fprint(w, report.Markdown(a))
	default:
		return fmt.Errorf("unknown tab %q (%s)", tab, strings.Join(tabs, "|"))
	}
	return nil
}
