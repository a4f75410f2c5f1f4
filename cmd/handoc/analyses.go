package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"handoc/internal/client"
	"handoc/internal/report"
)

func analysesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyses",
		Aliases: []string{"analysis"},
		Short:   "Browse analysis results",
	}

	var opts client.ListAnalysesOptions
	var minConfidence float64
	list := &cobra.Command{
		Use:   "list",
		Short: "List analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-confidence") {
				opts.MinConfidence = &minConfidence
			}
			res, err := a.api.ListAnalyses(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printAnalyses(cmd.OutOrStdout(), res)
			return nil
		},
	}
	list.Flags().IntVar(&opts.Page, "page", 1, "page number")
	list.Flags().IntVar(&opts.Limit, "limit", 20, "items per page (max 100)")
	list.Flags().StringVar(&opts.Language, "language", "", "analysis language")
	list.Flags().StringVar(&opts.AIModel, "model", "", "AI model")
	list.Flags().Float64Var(&minConfidence, "min-confidence", 0, "minimum confidence (0..1)")
	list.Flags().StringVar(&opts.SortBy, "sort-by", "", "created_at|confidence_score|processing_time")
	list.Flags().StringVar(&opts.SortOrder, "sort-order", "", "asc|desc")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Print an analysis as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := a.api.GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(an)
		},
	}

	var tab string
	var byDocument bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Results viewer",
		Long:  "Show one tab of an analysis: " + strings.Join(tabs, "|") + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetch := a.api.GetAnalysis
			if byDocument {
				fetch = a.api.AnalysisByDocument
			}
			an, err := fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderTab(cmd.OutOrStdout(), an, tab)
		},
	}
	show.Flags().StringVarP(&tab, "tab", "t", "summary", strings.Join(tabs, "|"))
	show.Flags().BoolVarP(&byDocument, "document", "d", false, "treat the id as a document id and show its latest analysis")

	summary := &cobra.Command{
		Use:   "summary <id>",
		Short: "Short overview of an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.api.AnalysisSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Summary)
			fmt.Fprintf(out, "\n키워드 %d개 · 질문 %d개 · 중요 문장 %d개 · 신뢰도 %d%%\n",
				s.KeywordCount, s.QACount, s.ImportantSentenceCount, report.Percent(s.ConfidenceScore))
			return nil
		},
	}

	var format, output string
	export := &cobra.Command{
		Use:   "export <id>",
		Short: "Export an analysis (markdown, html or json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if output != "" && format == "markdown" {
				md, err := a.api.AnalysisMarkdown(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, []byte(md.Content), 0o644); err != nil {
					return err
				}
				success(out, "%s 저장 완료", output)
				return nil
			}
			res, err := a.api.ExportAnalysis(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			success(out, "%s 내보내기 완료", res.Filename)
			fmt.Fprintf(out, "다운로드: %s\n", res.URL)
			if !res.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "만료: %s\n", formatTime(res.ExpiresAt))
			}
			return nil
		},
	}
	export.Flags().StringVarP(&format, "format", "f", "markdown", "markdown|html|json")
	export.Flags().StringVarP(&output, "output", "o", "", "write the markdown to this file instead of a download link")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteAnalysis(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "분석 결과가 삭제되었습니다")
			return nil
		},
	}

	var premium bool
	reanalyze := &cobra.Command{
		Use:   "reanalyze <document-id>",
		Short: "Run the analysis again for a completed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.Reanalyze(cmd.Context(), args[0], premium)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s", res.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "분석 ID: %s\n", res.AnalysisID)
			return nil
		},
	}
	reanalyze.Flags().BoolVar(&premium, "premium", false, "use the premium model")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Analysis statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.api.AnalysisStats(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "전체 분석\t%d\n", st.TotalAnalyses)
			fmt.Fprintf(tw, "평균 처리 시간\t%.1f초\n", st.AverageProcessingTime)
			fmt.Fprintf(tw, "평균 신뢰도\t%d%%\n", report.Percent(st.AverageConfidenceScore))
			for lang, n := range st.LanguageDistribution {
				fmt.Fprintf(tw, "언어 %s\t%d\n", lang, n)
			}
			for m, n := range st.ModelUsage {
				fmt.Fprintf(tw, "모델 %s\t%d\n", m, n)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(list, get, show, summary, export, del, reanalyze, stats)
	return cmd
}

func analyzeTextCmd(a *app) *cobra.Command {
	var file, language string

	cmd := &cobra.Command{
		Use:   "analyze-text [text]",
		Short: "Analyze raw text without uploading a file",
		Long:  "Analyze the text given as an argument, read from --file, or piped on stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}
			spinner := getSpinner(cmd.ErrOrStderr(), "🤖 분석 중...")
			res, err := a.api.AnalyzeText(cmd.Context(), text, language)
			_ = spinner.Finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, res.Summary)
			for i, p := range res.QAPairs {
				fmt.Fprintf(out, "\nQ%d. %s\nA%d. %s\n", i+1, p.Question, i+1, p.Answer)
			}
			if len(res.Keywords) > 0 {
				kws := make([]string, 0, len(res.Keywords))
				for _, kw := range res.Keywords {
					kws = append(kws, kw.Keyword)
				}
				fmt.Fprintf(out, "\n키워드: %s\n", strings.Join(kws, ", "))
			}
			fmt.Fprintf(out, "\n신뢰도 %d%% · 처리 시간 %.1f초\n", report.Percent(res.ConfidenceScore), res.ProcessingTime)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	cmd.Flags().StringVarP(&language, "language", "l", "ko", "ko|en")
	return cmd
}

// readText takes the argument, the file, or stdin, in that order.
func readText(stdin io.Reader, args []string, file string) (string, error) {
	var text string
	switch {
	case len(args) > 0:
		text = args[0]
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		text = string(b)
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("분석할 텍스트가 없습니다")
	}
	return text, nil
}

func copyCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "copy <analysis-id>",
		Short: "Print all results as one Markdown block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := a.api.GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			name := an.DocumentID
			if doc, err := a.api.GetDocument(cmd.Context(), an.DocumentID); err == nil {
				name = doc.OriginalFilename
			}
			text := report.CopyAll(name, an)
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s 저장 완료", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func feedbackCmd(a *app) *cobra.Command {
	var req client.FeedbackRequest
	var rating int
	var analysisID string

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Send a rating or comment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rating") {
				req.Rating = &rating
			}
			if analysisID != "" {
				req.AnalysisID = &analysisID
			}
			if _, err := a.api.SubmitFeedback(cmd.Context(), req); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "소중한 의견 감사합니다!")
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Type, "type", "t", "general", "quality|speed|accuracy|ui|feature|bug|general")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating 1-5")
	cmd.Flags().StringVarP(&req.Comment, "comment", "c", "", "comment")
	cmd.Flags().StringVarP(&analysisID, "analysis", "a", "", "analysis the feedback is about")
	return cmd
}
