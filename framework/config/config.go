package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

var validate = validator.New()

// Config is the central typed configuration struct.
type Config struct {
	App  AppConfig
	Log  LogConfig
	Page PageConfig
}

type AppConfig struct {
	Name  string `validate:"required"`
	Env   string `validate:"oneof=local production testing"`
	Debug bool
	Port  string `validate:"required,numeric"`
}

type LogConfig struct {
	Level  string `validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	Format string `validate:"oneof=text json"`
}

// PageConfig controls how page designs are loaded and woken.
type PageConfig struct {
	DesignDir  string `validate:"required"` // directory of *.yaml page designs
	LocDir     string `validate:"required"` // directory of <locale>.yaml string bundles
	Locale     string `validate:"required,bcp47_language_tag"`
	DesignMode bool // skip finalize hooks on created views
	Resettable bool // force every page to be resettable
	Awake      bool // wake every page right after it is loaded
	Watch      bool // reload string bundles when they change
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoPage"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
			Port:  env("APP_PORT", "8000"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "text"),
		},
		Page: PageConfig{
			DesignDir:  env("PAGE_DESIGN_DIR", "./pages"),
			LocDir:     env("PAGE_LOC_DIR", "./strings"),
			Locale:     env("PAGE_LOCALE", "en"),
			DesignMode: envBool("PAGE_DESIGN_MODE", false),
			Resettable: envBool("PAGE_RESETTABLE", false),
			Awake:      envBool("PAGE_AWAKE", false),
			Watch:      envBool("PAGE_WATCH", false),
		},
	}
}

// Validate checks the loaded values, reporting every bad field at once.
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("%s=%q fails %s", f.Namespace(), f.Value(), f.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// SlogLevel maps Log.Level to a slog level, defaulting to Info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
