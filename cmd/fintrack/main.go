package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"fintrack/internal/api"
	"fintrack/internal/budget"
	"fintrack/internal/cli"
	"fintrack/internal/session"
	"fintrack/internal/shell"
)

var errQuit = errors.New("quit")

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.LogLevel != "info" {
		logger = cli.SetupLogger(cfg.LogLevel)
	}

	store := cli.InitStore(logger, cfg.DBPath)
	defer store.Close()

	sessions := session.NewManager(store)
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, sessions.Token)
	budgets := budget.NewStore(store)
	sh := shell.New(client, sessions, shell.SystemClock{}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &app{
		cfg:     cfg,
		logger:  logger,
		shell:   sh,
		budgets: budgets,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return app.run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		sh.StopRollover()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
	fmt.Fprintln(app.out, "bye")
}

// run drives the two screens: the auth prompt and the dashboard loop.
func (a *app) run(ctx context.Context) error {
	a.shell.Bootstrap(ctx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch a.shell.CurrentState() {
		case shell.StateAuthenticated:
			a.shell.StartRollover(ctx)
			if err := a.dashboard(ctx); err != nil {
				return err
			}
		default:
			if err := a.authScreen(ctx); err != nil {
				return err
			}
		}
	}
}

// readLine reads one trimmed line, io.EOF at end of input.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.in.Text()), nil
}

// readPassword reads without echo when stdin is a terminal, falling back
// to a plain line read for pipes and tests.
func (a *app) readPassword(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return a.readLine("")
}
