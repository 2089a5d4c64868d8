// Command tutorctl drives the IngeTUTO API from a terminal with a saved session.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/ingetuto/ingetuto-api/internal/client"
)

const usage = `usage: tutorctl [flags] <command> [args]

commands:
  login-callback <token>            save the token from the login redirect
  me                                show the signed-in user
  switch-role <role>                act as another role you hold
  phone <number>                    set your 10 digit phone number
  subjects                          list subjects
  availability <subjectID> <from> <to>
                                    open blocks for a subject (dates YYYY-MM-DD)
  sessions [status...]              your sessions for the active role
  requests                          tutor applications for the active role
  logout                            close the session

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			slog.Error("tutorctl failed", "err", err)
		}
		os.Exit(1)
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tutorctl.db"
	}

	return filepath.Join(dir, "ingetuto", "session.db")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("tutorctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.StringP("base-url", "u", envOr("INGETUTO_API_URL", client.DefaultBaseURL), "API base URL")
	storePath := fs.StringP("store", "s", defaultStorePath(), "session database file")
	verbose := fs.BoolP("verbose", "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	if fs.NArg() == 0 {
		fs.Usage()
		return pflag.ErrHelp
	}

	if err := os.MkdirAll(filepath.Dir(*storePath), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll -> %w", err)
	}
	store, err := client.OpenSQLiteStore(*storePath)
	if err != nil {
		return fmt.Errorf("client.OpenSQLiteStore -> %w", err)
	}
	defer store.Close()

	c := client.New(*baseURL)
	session := client.NewSession(c, store)
	defer session.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	slog.Debug("running command", "command", cmd, "base_url", c.BaseURL())

	if cmd != "login-callback" {
		if err = session.Restore(ctx); err != nil {
			slog.Debug("restoring session", "err", err)
		}
	}

	return dispatch(ctx, &commandEnv{c: c, session: session, out: stdout}, cmd, rest)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
