package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"handoc/internal/client"
)

const defaultServer = "http://localhost:8080"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	server      string
	sessionPath string

	store *client.SessionStore
	api   *client.Client
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.store = client.NewSessionStore(path)

	sess, err := a.store.Load()
	if err != nil {
		return err
	}
	server := a.server
	if server == "" {
		server = sess.BaseURL
	}
	if server == "" {
		server = defaultServer
	}

	stderr := cmd.ErrOrStderr()
	a.api, err = client.New(server,
		client.WithSession(a.store),
		client.WithUnauthorizedHandler(func() {
			color.New(color.FgYellow).Fprintln(stderr, "세션이 만료되었습니다. `handoc login`으로 다시 로그인하세요.")
		}),
	)
	return err
}

// session returns the persisted session, never nil.
func (a *app) session() (*client.Session, error) {
	return a.store.Load()
}

func printError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "오류: %v\n", err)
}

func success(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, "✓ "+format+"\n", args...)
}
