package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"handoc/internal/client"
	"handoc/internal/model"
)

const statusPollInterval = 2 * time.Second

func uploadCmd(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			bar := getProgressBar(out, "📤 업로드 중...")
			res, err := a.api.UploadFile(cmd.Context(), args[0], func(p int) {
				_ = bar.Set(p)
			})
			if err != nil {
				_ = bar.Clear()
				return err
			}
			_ = bar.Finish()
			fmt.Fprintln(out)
			success(out, "%s", res.Message)
			fmt.Fprintf(out, "문서 ID: %s (예상 소요 %d초)\n", res.TaskID, res.EstimatedTime)

			if !wait {
				return nil
			}
			p, err := waitForDocument(cmd.Context(), a.api, res.TaskID, statusPollInterval)
			if err != nil {
				return err
			}
			if p.Status == model.StatusFailed {
				return fmt.Errorf("분석 실패: %s", orDash(p.ErrorMessage))
			}
			an, err := a.api.AnalysisByDocument(cmd.Context(), res.TaskID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			return renderTab(out, an, "summary")
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the analysis and print the summary")
	return cmd
}

// waitForDocument polls the status endpoint until the document leaves the
// uploaded/processing states.
func waitForDocument(ctx context.Context, api *client.Client, id string, every time.Duration) (*model.DocumentProgress, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		p, err := api.DocumentStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		if p.Status == model.StatusCompleted || p.Status == model.StatusFailed {
			return p, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func docsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage uploaded documents",
	}

	var opts client.ListDocumentsOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List documents (dashboard)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.ListDocuments(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printDocuments(cmd.OutOrStdout(), res)
			return nil
		},
	}
	list.Flags().IntVar(&opts.Page, "page", 1, "page number")
	list.Flags().IntVar(&opts.Limit, "limit", 20, "items per page (max 100)")
	list.Flags().StringVar(&opts.Status, "status", "", "uploaded|processing|completed|failed")
	list.Flags().StringVar(&opts.Language, "language", "", "document language")
	list.Flags().StringVar(&opts.SortBy, "sort-by", "", "created_at|updated_at|filename|file_size")
	list.Flags().StringVar(&opts.SortOrder, "sort-order", "", "asc|desc")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.api.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), d)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document and its analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "문서가 삭제되었습니다")
			return nil
		},
	}

	var follow bool
	status := &cobra.Command{
		Use:   "status <id>",
		Short: "Show processing progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p *model.DocumentProgress
			var err error
			if follow {
				p, err = waitForDocument(cmd.Context(), a.api, args[0], statusPollInterval)
			} else {
				p, err = a.api.DocumentStatus(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d%% %s\n", statusLabel(p.Status), p.Progress, p.CurrentStep)
			if p.ErrorMessage != nil {
				printError(cmd.OutOrStdout(), fmt.Errorf("%s", *p.ErrorMessage))
			}
			return nil
		},
	}
	status.Flags().BoolVarP(&follow, "follow", "f", false, "poll until processing finishes")

	reprocess := &cobra.Command{
		Use:   "reprocess <id>",
		Short: "Queue a document for processing again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.ReprocessDocument(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "재처리가 시작되었습니다")
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Document statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.api.DocumentStats(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "전체 문서\t%d\n", st.TotalDocuments)
			fmt.Fprintf(tw, "완료\t%d\n", st.CompletedDocuments)
			fmt.Fprintf(tw, "처리중\t%d\n", st.ProcessingDocuments)
			fmt.Fprintf(tw, "실패\t%d\n", st.FailedDocuments)
			fmt.Fprintf(tw, "전체 용량\t%s\n", humanSize(st.TotalFileSize))
			fmt.Fprintf(tw, "평균 처리 시간\t%.1f초\n", st.AverageProcessingTime)
			return tw.Flush()
		},
	}

	cmd.AddCommand(list, get, del, status, reprocess, stats)
	return cmd
}
