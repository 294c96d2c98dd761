// Package diag configures logging and collects failures that must not
// propagate, such as errors raised while closing a reclaimed generator.
package diag

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const (
	EnvLogLevel     = "OBJCORE_LOG_LEVEL"
	EnvLogTimestamp = "OBJCORE_LOG_TIMESTAMP"
	EnvLogNoColor   = "OBJCORE_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Settings is the logging section of the runtime configuration.
type Settings struct {
	Level     string `yaml:"level" toml:"level"`
	Timestamp bool   `yaml:"timestamp" toml:"timestamp"`
	NoColor   bool   `yaml:"no_color" toml:"no_color"`
}

func DefaultSettings(profile Profile) Settings {
	switch profile {
	case ProfileTest:
		return Settings{Level: "debug", Timestamp: false}
	default:
		return Settings{Level: "info", Timestamp: true}
	}
}

// ApplyEnv overrides s from OBJCORE_LOG_* variables. Unparseable values are
// ignored.
func ApplyEnv(s *Settings) {
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		if _, ok := ParseLevel(raw); ok {
			s.Level = strings.ToLower(strings.TrimSpace(raw))
		}
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		s.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		s.NoColor = v
	}
}

// Configure installs a console logger as the global logger.
func Configure(s Settings, out io.Writer) zerolog.Logger {
	level, ok := ParseLevel(s.Level)
	if !ok {
		level = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    s.NoColor || !isTerminal(out),
	}
	if !s.Timestamp {
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(writer).Level(level).With()
	if s.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return logger
}

var configureOnce sync.Once

// ConfigureTests sets up test logging once per process.
func ConfigureTests() {
	configureOnce.Do(func() {
		s := DefaultSettings(ProfileTest)
		ApplyEnv(&s)
		Configure(s, os.Stderr)
	})
}

func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
