package web

import (
	"fmt"
	"maps"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeName is the dashboard theme registered by DefaultThemes.
const ThemeName = "posyandu"

// Theme variants shipped with the dashboard.
const (
	VariantDefault = "default"
	VariantDark    = "dark"
)

const stylesheetAsset = "dashboard.stylesheet"

func dashboardManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    ThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"navbar-from":    "#34d399",
			"navbar-to":      "#10b981",
			"navbar-text":    "#ffffff",
			"tab-active-bg":  "#7c3aed",
			"tab-active-fg":  "#ffffff",
			"tab-idle-bg":    "#ffffff",
			"tab-idle-fg":    "#7c3aed",
			"surface":        "#ffffff",
			"page-bg":        "#f3f4f6",
			"text":           "#374151",
			"button-primary": "#2563eb",
			"button-cancel":  "#d1d5db",
			"toast-success":  "#16a34a",
			"toast-error":    "#dc2626",
			"badge":          "#ef4444",
		},
		Templates: map[string]string{
			"page.layout": "layout.tpl",
			"page.edit":   "edit.tpl",
			"page.tab":    "tab.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/" + ThemeName,
			Files: map[string]string{
				stylesheetAsset: "dashboard.css",
			},
		},
		Variants: map[string]theme.Variant{
			VariantDark: {
				Tokens: map[string]string{
					"surface":     "#1f2937",
					"page-bg":     "#111827",
					"text":        "#e5e7eb",
					"tab-idle-bg": "#1f2937",
					"tab-idle-fg": "#c4b5fd",
				},
			},
		},
	}
}

// Themes resolves go-theme selections for the dashboard. It implements
// theme.ThemeSelector over the manifests it was given.
type Themes struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// DefaultThemes returns the dashboard theme with variant as the default.
func DefaultThemes(variant string) (*Themes, error) {
	return NewThemes(ThemeName, variant, dashboardManifest())
}

// NewThemes validates manifests through a go-theme registry and keeps them for
// selection.
func NewThemes(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Themes, error) {
	registry := theme.NewRegistry()
	t := &Themes{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("web: register theme %q: %w", m.Name, err)
		}
		t.manifests[m.Name] = m
	}
	if _, ok := t.manifests[defaultTheme]; !ok {
		return nil, fmt.Errorf("web: default theme %q not registered", defaultTheme)
	}
	if !t.hasVariant(t.manifests[defaultTheme], defaultVariant) {
		return nil, fmt.Errorf("web: theme %q has no variant %q", defaultTheme, defaultVariant)
	}
	return t, nil
}

// Select implements theme.ThemeSelector. Empty names fall back to defaults.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if strings.TrimSpace(name) == "" {
		name = t.defaultTheme
	}
	if strings.TrimSpace(variant) == "" {
		variant = t.defaultVariant
	}
	m, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("web: unknown theme %q", name)
	}
	if !t.hasVariant(m, variant) {
		return nil, fmt.Errorf("web: theme %q has no variant %q", name, variant)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

func (t *Themes) hasVariant(m *theme.Manifest, variant string) bool {
	if variant == "" || variant == VariantDefault {
		return true
	}
	_, ok := m.Variants[variant]
	return ok
}

// RendererConfig flattens a selection: variant tokens, templates and assets
// override the base manifest, and every token becomes a "--name" CSS variable.
func RendererConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	tokens := maps.Clone(m.Tokens)
	partials := maps.Clone(m.Templates)
	files := maps.Clone(m.Assets.Files)
	prefix := m.Assets.Prefix
	if tokens == nil {
		tokens = map[string]string{}
	}
	if partials == nil {
		partials = map[string]string{}
	}
	if files == nil {
		files = map[string]string{}
	}
	if v, ok := m.Variants[sel.Variant]; ok {
		maps.Copy(tokens, v.Tokens)
		maps.Copy(partials, v.Templates)
		maps.Copy(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	vars := make(map[string]string, len(tokens))
	for k, v := range tokens {
		vars["--"+k] = v
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			return path.Join(prefix, file)
		},
	}
}

// themeView is the template-facing slice of a renderer config.
type themeView struct {
	Name       string `json:"name"`
	Variant    string `json:"variant"`
	Style      string `json:"style"`
	Stylesheet string `json:"stylesheet"`
}

func newThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	v := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Style:   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		v.Stylesheet = cfg.AssetURL(stylesheetAsset)
	}
	return v
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s; ", k, vars[k])
	}
	return strings.TrimSpace(b.String())
}
