package apiclient

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/contract"
)

const (
	// DefaultTimeout bounds every request when WithTimeout is not supplied.
	DefaultTimeout = 15 * time.Second
	// DefaultEntityCollection is the API collection holding Posyandu records.
	DefaultEntityCollection = "posyandu"
	// DefaultReferenceCollection is the API collection listing kelurahan options.
	DefaultReferenceCollection = "wilayah-kerja"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host the /api paths are resolved against.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger attaches a structured logger; the client logs at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContract enables schema checks on decoded records, option lists and
// outgoing update payloads.
func WithContract(ct *contract.Contract) Option {
	return func(c *Client) {
		c.contract = ct
	}
}

// WithCollections overrides the entity and reference collection names used
// to build /api/<collection> paths. Empty values keep the defaults.
func WithCollections(entity, reference string) Option {
	return func(c *Client) {
		if v := strings.Trim(strings.TrimSpace(entity), "/"); v != "" {
			c.entityCollection = v
		}
		if v := strings.Trim(strings.TrimSpace(reference), "/"); v != "" {
			c.referenceCollection = v
		}
	}
}
