package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"handoc/internal/analyzer"
	"handoc/internal/client"
	"handoc/internal/pdf"
)

func quickCmd(a *app) *cobra.Command {
	var apiKey, model, baseURL string

	cmd := &cobra.Command{
		Use:   "quick <file.pdf>",
		Short: "Analyze a PDF locally with one direct OpenAI call",
		Long: "Extract the text on this machine and send the first characters to OpenAI with a fixed prompt.\n" +
			"Nothing is uploaded to the HanDoc server. The API key comes from --api-key, OPENAI_API_KEY,\n" +
			"or `handoc config set-key`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := client.ValidateUpload(path, "", info.Size(), client.DefaultMaxFileSize); err != nil {
				return err
			}

			key, err := a.resolveAPIKey(apiKey)
			if err != nil {
				return err
			}
			provider, err := analyzer.NewOpenAI(key, model, baseURL, nil)
			if err != nil {
				return err
			}

			res, err := pdf.ExtractFile(path)
			if err != nil {
				return err
			}

			spinner := getSpinner(cmd.ErrOrStderr(), "🤖 AI가 문서를 분석하고 있습니다...")
			answer, err := analyzer.QuickAnalyze(cmd.Context(), provider, model, res.Text)
			_ = spinner.Finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, answer)
			fmt.Fprintf(out, "\n%d페이지 · %d단어\n", res.PageCount, res.WordCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key")
	cmd.Flags().StringVar(&model, "model", "gpt-3.5-turbo", "OpenAI model")
	cmd.Flags().StringVar(&baseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI-compatible endpoint")
	return cmd
}

// resolveAPIKey picks the flag, then OPENAI_API_KEY, then the saved key.
func (a *app) resolveAPIKey(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("OPENAI_API_KEY"); env != "" {
		return env, nil
	}
	sess, err := a.session()
	if err != nil {
		return "", err
	}
	if sess.OpenAIAPIKey != "" {
		return sess.OpenAIAPIKey, nil
	}
	return "", fmt.Errorf("%w. `handoc config set-key`로 설정하세요", analyzer.ErrMissingAPIKey)
}
