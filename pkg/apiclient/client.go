// Package apiclient talks JSON over HTTP to the external Posyandu API: it
// reads one record, lists the kelurahan reference options and replaces a
// record's editable fields. Every request is bounded by a timeout so a hung
// call surfaces as ErrTimedOut instead of blocking the form forever.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/contract"
	"github.com/goliatone/go-posyandu/pkg/model"
)

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 4 << 20

// Client is safe for concurrent use.
type Client struct {
	baseURL             string
	http                *http.Client
	timeout             time.Duration
	logger              *zap.Logger
	contract            *contract.Contract
	entityCollection    string
	referenceCollection string
}

// New constructs a Client. A base URL is required.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:                http.DefaultClient,
		timeout:             DefaultTimeout,
		logger:              zap.NewNop(),
		entityCollection:    DefaultEntityCollection,
		referenceCollection: DefaultReferenceCollection,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.baseURL == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	return c, nil
}

// GetPosyandu reads GET /api/<entity>/{id}.
func (c *Client) GetPosyandu(ctx context.Context, id string) (model.Posyandu, error) {
	var rec model.Posyandu
	raw, err := c.do(ctx, http.MethodGet, c.entityPath(id), nil)
	if err != nil {
		return rec, err
	}
	if err := c.check(raw, c.contract.ValidateRecord); err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("apiclient: decode posyandu %s: %w", id, err)
	}
	return rec, nil
}

// ListKelurahan reads GET /api/<reference>.
func (c *Client) ListKelurahan(ctx context.Context) ([]model.KelurahanOption, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/"+c.referenceCollection, nil)
	if err != nil {
		return nil, err
	}
	if err := c.check(raw, c.contract.ValidateOptions); err != nil {
		return nil, err
	}
	var opts []model.KelurahanOption
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("apiclient: decode kelurahan options: %w", err)
	}
	if opts == nil {
		opts = []model.KelurahanOption{}
	}
	return opts, nil
}

// UpdatePosyandu sends PUT /api/<entity>/{id} with the typed payload. The
// response body is not inspected; only the status decides success.
func (c *Client) UpdatePosyandu(ctx context.Context, id string, payload model.UpdatePayload) error {
	if c.contract != nil {
		if err := c.contract.ValidateUpdate(payload); err != nil {
			return fmt.Errorf("apiclient: update posyandu %s: %w", id, err)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("apiclient: encode payload: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, c.entityPath(id), body)
	return err
}

func (c *Client) entityPath(id string) string {
	return "/api/" + c.entityCollection + "/" + url.PathEscape(strings.TrimSpace(id))
}

func (c *Client) check(raw []byte, validate func(any) error) error {
	if c.contract == nil {
		return nil
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return validate(generic)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrTimedOut, method, path, err)
		}
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Method: method, URL: target, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrTimedOut, method, path, err)
		}
		return nil, fmt.Errorf("apiclient: read body: %w", err)
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
