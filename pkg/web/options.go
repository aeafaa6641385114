package web

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/editform"
	"github.com/goliatone/go-posyandu/pkg/web/view"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMessages sets the catalog used for page labels and notifications.
func WithMessages(m Messages) Option {
	return func(s *Server) {
		if m != nil {
			s.messages = m
		}
	}
}

// WithReferenceMode is forwarded to every edit form.
func WithReferenceMode(mode editform.ReferenceMode) Option {
	return func(s *Server) {
		s.referenceMode = mode
	}
}

// WithThemes replaces the theme selector.
func WithThemes(t *Themes) Option {
	return func(s *Server) {
		if t != nil {
			s.themes = t
		}
	}
}

// WithViews replaces the template engine, e.g. one reading from disk.
func WithViews(e *view.Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.views = e
		}
	}
}

// WithNavbar overrides the static navbar content.
func WithNavbar(n Navbar) Option {
	return func(s *Server) {
		s.navbar = n
	}
}
