package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/engine"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Console ConsoleConfig     `yaml:"console"`
	Client  ClientConfig      `yaml:"client"`
	Engine  EngineConfig      `yaml:"engine"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Console.Validate(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ConsoleConfig configures the fixture console server.
type ConsoleConfig struct {
	PagesPath      string        `yaml:"pages_path"`
	ReloadThrottle time.Duration `yaml:"reload_throttle"`
}

// Validate validates the console configuration.
func (c *ConsoleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PagesPath, validation.Required),
		validation.Field(&c.ReloadThrottle, validation.Min(time.Duration(0))),
	)
}

// ClientConfig configures how the engine reaches the console.
type ClientConfig struct {
	BaseURL string `yaml:"base_url"`
	// RequestTimeout bounds each request. Zero waits indefinitely.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
	)
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("must be an http or https URL")
	}
	return nil
}

// EngineConfig configures the interaction engine.
type EngineConfig struct {
	Debounce  time.Duration    `yaml:"debounce"`
	Markup    binding.Markup   `yaml:"markup"`
	Endpoints engine.Endpoints `yaml:"endpoints"`
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(time.Millisecond)),
	); err != nil {
		return err
	}
	if err := c.Markup.Validate(); err != nil {
		return fmt.Errorf("markup: %w", err)
	}
	ep := &c.Endpoints
	return validation.ValidateStruct(ep,
		validation.Field(&ep.Logout, validation.Required, validation.By(absolutePath)),
		validation.Field(&ep.Delete, validation.Required, validation.By(absolutePath),
			validation.By(hasIDPlaceholder)),
		validation.Field(&ep.Home, validation.Required, validation.By(absolutePath)),
	)
}

func absolutePath(v any) error {
	if s, _ := v.(string); !strings.HasPrefix(s, "/") {
		return fmt.Errorf("must start with /")
	}
	return nil
}

func hasIDPlaceholder(v any) error {
	if s, _ := v.(string); !strings.Contains(s, "{id}") {
		return fmt.Errorf("must contain {id}")
	}
	return nil
}

// EngineOptions returns the engine options the configuration selects.
func (c *EngineConfig) EngineOptions(logger *slog.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithDebounce(c.Debounce),
		engine.WithEndpoints(c.Endpoints),
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Console: ConsoleConfig{
			PagesPath:      "./pages",
			ReloadThrottle: 2 * time.Second,
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8080",
		},
		Engine: EngineConfig{
			Debounce:  engine.DefaultDebounce,
			Markup:    binding.DefaultMarkup(),
			Endpoints: engine.DefaultEndpoints(),
		},
	}
}
