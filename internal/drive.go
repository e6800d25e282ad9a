package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/browser"
	"github.com/starford/warpboard/internal/dom"
	"github.com/starford/warpboard/internal/script"
	"github.com/starford/warpboard/internal/transport"
)

// ErrScriptsFailed is returned by Drive when at least one script failed.
var ErrScriptsFailed = errors.New("scripts failed")

func (a *application) client() (*transport.Client, error) {
	return transport.New(a.config.Client.BaseURL,
		transport.WithTimeout(a.config.Client.RequestTimeout),
		transport.WithLogger(a.logger))
}

// Drive replays every script file against the console at the configured
// base URL and writes one YAML report per script.
func Drive(ctx context.Context, paths []string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	client, err := app.client()
	if err != nil {
		return err
	}
	table, err := binding.Compile(app.config.Engine.Markup)
	if err != nil {
		return fmt.Errorf("compile markup: %w", err)
	}

	failed := 0
	for _, path := range paths {
		s, err := script.Load(path)
		if err != nil {
			return err
		}

		session := browser.New(client, table, app.logger, app.config.Engine.EngineOptions(app.logger)...)
		runner := script.NewRunner(session, app.logger)
		rep, runErr := runner.Run(ctx, s)
		session.Close()

		if err := writeYAML(app, rep); err != nil {
			return err
		}
		if runErr != nil {
			failed++
			app.logger.Error("script failed",
				slog.String("script", s.Name),
				slog.String("path", path),
				slog.String("error", runErr.Error()))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(paths), ErrScriptsFailed)
	}
	return nil
}

// Inspect prints the binding plan of a page. target is a console path
// such as /alerts, fetched from the configured base URL, or a local file.
func Inspect(ctx context.Context, target string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	table, err := binding.Compile(app.config.Engine.Markup)
	if err != nil {
		return fmt.Errorf("compile markup: %w", err)
	}

	var body []byte
	if strings.HasPrefix(target, "/") && !fileExists(target) {
		client, err := app.client()
		if err != nil {
			return err
		}
		page, err := client.Get(ctx, target)
		if err != nil {
			return err
		}
		body = page.Body
	} else {
		body, err = os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
	}

	doc, err := dom.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	return writeYAML(app, table.Scan(doc).Summary())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeYAML(app *application, v any) error {
	enc := yaml.NewEncoder(app.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}
