// Package settings holds the talui tool settings and builds its logger.
package settings

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings configures the talui command.
type Settings struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// StorePath is the bbolt file used for persistent attributes.
	StorePath string `yaml:"store_path"`

	// SigningKey signs and encrypts client-carried tokens.
	SigningKey string `yaml:"signing_key"`

	// SearchPaths are the files and directories searched for definitions
	// when none are given on the command line.
	SearchPaths []string `yaml:"search_paths"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		LogLevel:    "info",
		LogFormat:   "text",
		StorePath:   "talui.db",
		SearchPaths: []string{"."},
	}
}

// Load reads the settings file at path. A missing file yields Default.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("settings: %s: %w", path, err)
	}

	for i, p := range s.SearchPaths {
		s.SearchPaths[i] = expandPath(p)
	}
	s.StorePath = expandPath(s.StorePath)
	if len(s.SearchPaths) == 0 {
		s.SearchPaths = []string{"."}
	}
	return s, nil
}

// Logger builds the logger described by s.
func (s *Settings) Logger(w io.Writer) *slog.Logger {
	return NewLogger(s.LogLevel, s.LogFormat, w)
}

// NewLogger creates a logger writing to w. Unknown levels mean info and any
// format other than json means text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
