package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"handoc/internal/client"
)

var (
	languages = []string{"ko", "en"}
	themes    = []string{"light", "dark"}
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Local preferences",
	}

	setKey := &cobra.Command{
		Use:   "set-key <openai-api-key>",
		Short: "Save the OpenAI key used by `handoc quick`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if err := a.store.Update(func(s *client.Session) { s.OpenAIAPIKey = key }); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "API 키가 저장되었습니다")
			return nil
		},
	}

	setLang := &cobra.Command{
		Use:       "set-lang <ko|en>",
		Short:     "Set the preferred language",
		Args:      cobra.ExactArgs(1),
		ValidArgs: languages,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setChoice(cmd, "language", args[0], languages, func(s *client.Session, v string) { s.Language = v })
		},
	}

	setTheme := &cobra.Command{
		Use:       "set-theme <light|dark>",
		Short:     "Set the preferred theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: themes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setChoice(cmd, "theme", args[0], themes, func(s *client.Session, v string) { s.Theme = v })
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "session\t%s\n", a.store.Path())
			fmt.Fprintf(tw, "server\t%s\n", orEmpty(sess.BaseURL))
			fmt.Fprintf(tw, "logged in\t%t\n", sess.AccessToken != "")
			fmt.Fprintf(tw, "openai key\t%s\n", maskKey(sess.OpenAIAPIKey))
			fmt.Fprintf(tw, "language\t%s\n", orEmpty(sess.Language))
			fmt.Fprintf(tw, "theme\t%s\n", orEmpty(sess.Theme))
			return tw.Flush()
		},
	}

	cmd.AddCommand(setKey, setLang, setTheme, show)
	return cmd
}

func (a *app) setChoice(cmd *cobra.Command, name, value string, allowed []string, set func(*client.Session, string)) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q (%s)", name, value, strings.Join(allowed, "|"))
	}
	if err := a.store.Update(func(s *client.Session) { set(s, value) }); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "%s = %s", name, value)
	return nil
}

func orEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// maskKey keeps the first and last four characters.
func maskKey(k string) string {
	if k == "" {
		return "-"
	}
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}
	return k[:4] + strings.Repeat("*", len(k)-8) + k[len(k)-4:]
}
