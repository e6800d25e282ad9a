package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/warpboard/internal"
	pkgconfig "github.com/starford/warpboard/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if base := cmd.String("base-url"); base != "" {
		cfg.Client.BaseURL = base
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func drive(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scripts := cmd.Args().Slice()
	if len(scripts) == 0 {
		return fmt.Errorf("drive: at least one script file is required")
	}
	return internal.Drive(ctx, scripts, internal.WithConfig(cfg))
}

func inspect(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("inspect: expected one page path or file")
	}
	// Plans go to stdout; keep logs off it.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	return internal.Inspect(ctx, cmd.Args().First(), internal.WithConfig(cfg), internal.WithLogger(logger))
}

func main() {
	cmd := &cli.Command{
		Name:  "warpboard",
		Usage: "Alert console interaction engine with a fixture console server and script driver",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Console base URL, overrides client.base_url",
				Sources: cli.EnvVars("WARPBOARD_BASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve console pages and answer logout and delete requests",
				Action: serve,
			},
			{
				Name:      "drive",
				Usage:     "Replay interaction scripts against a running console",
				ArgsUsage: "SCRIPT...",
				Action:    drive,
			},
			{
				Name:      "inspect",
				Usage:     "Print the behaviour plan of a console page",
				ArgsUsage: "PATH|FILE",
				Action:    inspect,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
