package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/warpboard/internal/binding"
	pkgconfig "github.com/starford/warpboard/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.App.HTTP.Port = 0 }, "app:"},
		{"pages path", func(c *Config) { c.Console.PagesPath = "" }, "console:"},
		{"relative base url", func(c *Config) { c.Client.BaseURL = "localhost:8080" }, "client:"},
		{"negative timeout", func(c *Config) { c.Client.RequestTimeout = -time.Second }, "client:"},
		{"zero debounce", func(c *Config) { c.Engine.Debounce = 0 }, "engine:"},
		{"bad token style", func(c *Config) { c.Engine.Markup.TokenStyle = "dollar" }, "markup:"},
		{"bad selector", func(c *Config) { c.Engine.Markup.ModalSelector = "[[" }, "markup:"},
		{"delete without id", func(c *Config) { c.Engine.Endpoints.Delete = "/alert" }, "must contain {id}"},
		{"relative home", func(c *Config) { c.Engine.Endpoints.Home = "home" }, "must start with /"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	t.Setenv("CONSOLE_URL", "http://console.test:9000")
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
app:
  log_level: debug
  http:
    port: 9000
client:
  base_url: ${CONSOLE_URL}
  request_timeout: 5s
engine:
  debounce: 250ms
  markup:
    token_style: colon
    logout_selector: "#sign-out"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9000 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Client.BaseURL != "http://console.test:9000" || cfg.Client.RequestTimeout != 5*time.Second {
		t.Errorf("client = %+v", cfg.Client)
	}
	if cfg.Engine.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Engine.Debounce)
	}
	m := cfg.Engine.Markup
	if m.TokenStyle != binding.TokenColon || m.LogoutSelector != "#sign-out" {
		t.Errorf("markup = %+v", m)
	}
	if m.TemplateAttr != binding.DefaultMarkup().TemplateAttr {
		t.Errorf("unset markup fields should keep defaults, got %q", m.TemplateAttr)
	}
	if cfg.Console.PagesPath != "./pages" {
		t.Errorf("pages path = %q", cfg.Console.PagesPath)
	}
}
