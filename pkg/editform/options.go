package editform

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultListRoute is where the form navigates after success, cancel or a
// load failure.
const DefaultListRoute = "/dashboard/manajemen-posyandu/data-posyandu"

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the toast sink for user feedback.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator sets the router used to leave the form.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithMessages sets the localized text source.
func WithMessages(m Messages) Option {
	return func(c *Controller) {
		if m != nil {
			c.messages = m
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListRoute overrides the entity list route.
func WithListRoute(route string) Option {
	return func(c *Controller) {
		if r := strings.TrimSpace(route); r != "" {
			c.listRoute = r
		}
	}
}

// WithReferenceMode selects how kelurahan list failures are handled.
func WithReferenceMode(mode ReferenceMode) Option {
	return func(c *Controller) {
		c.referenceMode = mode
	}
}
