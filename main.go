// Helpview is a terminal viewer for hypertext help documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"helpview/config"
	"helpview/document"
	"helpview/fetcher"
	"helpview/help"
	"helpview/render"
	"helpview/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:            "helpview",
		Usage:           "browse hypertext help documents as paginated text",
		ArgsUsage:       "[SUBJECT]",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (TOML)"},
			&cli.StringFlag{Name: "root", Usage: "resolve relative subjects against `DIR`"},
			&cli.IntFlag{Name: "rows", Usage: "show `N` lines per page"},
			&cli.IntFlag{Name: "width", Usage: "wrap text at column `N`"},
			&cli.BoolFlag{Name: "print", Aliases: []string{"p"}, Usage: "print every page of the subject and exit"},
			&cli.BoolFlag{Name: "restore", Usage: "restore the tabs of the previous session"},
			&cli.StringFlag{Name: "log-level", Usage: "log `LEVEL` on stderr: none, normal or debug"},
			&cli.BoolFlag{Name: "init-config", Usage: "output default config (redirect to ~/.config/helpview/config.toml)"},
		},
		Action: run,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Generate default config and exit
	if cmd.Bool("init-config") {
		fmt.Print(config.DefaultTOML())
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := cfg.Logging.Prepare()
	if err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	defer log.Sync()

	width := cfg.Display.Width
	if !cmd.Bool("print") {
		width = render.WrapWidth(os.Stdout, width)
	}

	f := fetcher.New(fetcher.Options{
		UserAgent:      cfg.Fetcher.UserAgent,
		TimeoutSeconds: cfg.Fetcher.TimeoutSeconds,
	})
	cache := document.NewCache(f,
		document.WithRoot(cfg.Content.Root),
		document.WithWidth(width),
		document.WithLogger(log.Named("cache")))
	mgr := help.NewManager(cache,
		help.WithPageRows(cfg.Display.PageRows),
		help.WithLogger(log.Named("help")))

	log.Debug("Program started", zap.Strings("args", os.Args), zap.Int("width", width))

	subject := cmd.Args().First()
	var cur *help.Session
	if subject == "" && cfg.Session.RestoreSession {
		cur = restore(ctx, mgr, log)
	}
	if cur == nil {
		if subject == "" {
			subject = cfg.Content.Start
		}
		if cur, err = mgr.Open(ctx, subject); err != nil {
			return err
		}
	}

	if cmd.Bool("print") {
		printAll(os.Stdout, cur)
		return nil
	}

	cur = repl(ctx, cur, os.Stdin, os.Stdout, render.IsTerminal(os.Stdin), log)

	if cfg.Session.RestoreSession {
		if err := session.Save(mgr.Snapshot(cur)); err != nil {
			log.Warn("Unable to save session", zap.Error(err))
		}
	}
	return nil
}

// loadConfig layers command line flags on top of the configuration file.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.IsSet("root") {
		cfg.Content.Root = cmd.String("root")
	}
	if cmd.IsSet("rows") {
		cfg.Display.PageRows = cmd.Int("rows")
	}
	if cmd.IsSet("width") {
		cfg.Display.Width = cmd.Int("width")
	}
	if cmd.IsSet("restore") {
		cfg.Session.RestoreSession = cmd.Bool("restore")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func restore(ctx context.Context, mgr *help.Manager, log *zap.Logger) *help.Session {
	st, err := session.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Unable to load session", zap.Error(err))
		}
		return nil
	}
	cur, err := mgr.Restore(ctx, st)
	if err != nil {
		log.Warn("Session restored partially", zap.Error(err))
	}
	return cur
}
