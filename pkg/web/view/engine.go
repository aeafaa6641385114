// Package view renders the dashboard pages with a pongo2 template set.
package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// FilterFunc is a template filter working on plain Go values.
type FilterFunc func(input any, param any) (any, error)

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	name      string
	baseDir   string
	templates fs.FS
	extension string
	globals   map[string]any
	filters   map[string]FilterFunc
}

// WithName names the underlying template set; useful in pongo2 errors.
func WithName(name string) Option {
	return func(cfg *config) {
		if n := strings.TrimSpace(name); n != "" {
			cfg.name = n
		}
	}
}

// WithBaseDir loads templates from a directory on disk. It takes precedence
// over WithFS so templates can be edited without a rebuild.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS, typically an embed.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobals seeds values available to every template.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithFilter registers a filter when the engine is built.
func WithFilter(name string, fn FilterFunc) Option {
	return func(cfg *config) {
		if strings.TrimSpace(name) == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]FilterFunc)
		}
		cfg.filters[strings.TrimSpace(name)] = fn
	}
}

// Engine caches parsed templates and renders them with view data.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	ext       string
}

// New constructs an Engine. Either WithBaseDir or WithFS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		name:      "posyandu",
		extension: ".tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("view: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		return nil, errors.New("view: need either a base dir or an fs.FS")
	}

	e := &Engine{
		set:       pongo2.NewSet(cfg.name, loaders...),
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
	}
	if err := e.Globals(cfg.globals); err != nil {
		return nil, err
	}
	for name, fn := range cfg.filters {
		if err := e.RegisterFilter(name, fn); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Render executes the named template (extension optional) into w.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	if e == nil || e.set == nil {
		return errors.New("view: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	tmpl, err := e.template(path)
	if err != nil {
		return err
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("view: convert data for %q: %w", path, err)
	}

	// Buffer so a failing template never leaves a half-written response.
	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("view: execute %q: %w", path, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderString executes the named template and returns the output.
func (e *Engine) RenderString(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RegisterFilter registers fn under name. pongo2 filters are process global,
// so an existing filter with the same name is left in place.
func (e *Engine) RegisterFilter(name string, fn FilterFunc) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("view: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return nil
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var p any
		if param != nil {
			p = param.Interface()
		}
		out, err := fn(in.Interface(), p)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(out), nil
	})
}

// Globals merges data into the values every template can see.
func (e *Engine) Globals(data map[string]any) error {
	if e == nil || e.set == nil {
		return errors.New("view: engine is nil")
	}
	if len(data) == 0 {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("view: convert globals: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(ctx)
	return nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("view: load %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

// toContext turns view data into a pongo2 context. Structs go through their
// JSON form so templates address fields by their json tags.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		out := make(pongo2.Context, len(v))
		for key, value := range v {
			if key = strings.TrimSpace(key); key == "" {
				continue
			}
			converted, err := plain(value)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	default:
		converted, err := plain(v)
		if err != nil {
			return nil, err
		}
		m, ok := converted.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("view: data of type %T is not an object", data)
		}
		return pongo2.Context(m), nil
	}
}

func plain(value any) (any, error) {
	switch value.(type) {
	case nil, string, bool, int, int64, float64:
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
