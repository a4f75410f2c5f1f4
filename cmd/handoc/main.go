// Command handoc is the terminal front end for the HanDoc API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "handoc",
		Short:         "HanDoc AI: Korean PDF summaries, Q&A and keywords",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.server, "server", os.Getenv("HANDOC_API_URL"), "API base URL (default: saved session or http://localhost:8080)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", os.Getenv("HANDOC_SESSION_FILE"), "session file (default: <config dir>/handoc/session.json)")

	root.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		passwordResetCmd(a),
		uploadCmd(a),
		docsCmd(a),
		analysesCmd(a),
		analyzeTextCmd(a),
		quickCmd(a),
		copyCmd(a),
		feedbackCmd(a),
		configCmd(a),
	)
	return root
}
