package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/editform"
)

// Theme captures optional prefixes the session prepends to printed lines.
// Keep minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	PromptPrefix  string
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used when WithTheme is not given.
var DefaultTheme = Theme{
	InfoPrefix:    "→ ",
	SuccessPrefix: "✔ ",
	ErrorPrefix:   "✖ ",
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithMessages sets the catalog for prompt labels.
func WithMessages(m editform.Messages) Option {
	return func(s *Session) {
		if m != nil {
			s.messages = m
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
