// Package messages holds the localized notification texts shown by the edit
// form. Catalogs are embedded YAML files; Indonesian is the default.
package messages

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Message keys used by the edit form.
const (
	LoadFailed                 = "load.failed"
	ReferenceFailed            = "reference.failed"
	ValidationRequired         = "validation.required"
	ValidationNotANumber       = "validation.not_a_number"
	ValidationInvalidReference = "validation.invalid_reference"
	SubmitSuccess              = "submit.success"
	SubmitFailed               = "submit.failed"
	SubmitTimedOut             = "submit.timed_out"

	FormTitle            = "form.title"
	FormSelectKelurahan  = "form.select_kelurahan"
	FormSelectAkreditasi = "form.select_akreditasi"
	FormCancel           = "form.cancel"
	FormUpdate           = "form.update"
	FormUpdating         = "form.updating"
	FormConfirmSubmit    = "form.confirm_submit"
	FormEditAgain        = "form.edit_again"
)

// DefaultLocale is used when no supported locale matches.
const DefaultLocale = "id"

var supported = []language.Tag{
	language.Indonesian,
	language.English,
}

var matcher = language.NewMatcher(supported)

// Catalog resolves message keys for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Catalog{}
)

// Load returns the catalog best matching locale (for example "id-ID", "en",
// "en-US"). Unknown locales fall back to Indonesian.
func Load(locale string) (*Catalog, error) {
	base := matchLocale(locale)

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if c, ok := cache[base]; ok {
		return c, nil
	}

	raw, err := localeFS.ReadFile(path.Join("locales", base+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("messages: read catalog %q: %w", base, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	cache[base] = c
	return c, nil
}

// MustLoad is Load for package-level defaults; it panics on a broken
// embedded catalog.
func MustLoad(locale string) *Catalog {
	c, err := Load(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("messages: decode catalog: %w", err)
	}
	if strings.TrimSpace(file.Locale) == "" {
		return nil, fmt.Errorf("messages: catalog is missing a locale")
	}
	msgs := make(map[string]string, len(file.Messages))
	for k, v := range file.Messages {
		msgs[strings.TrimSpace(k)] = v
	}
	return &Catalog{locale: file.Locale, messages: msgs}, nil
}

// Locale reports the catalog language code.
func (c *Catalog) Locale() string {
	if c == nil {
		return DefaultLocale
	}
	return c.locale
}

// Text returns the message for key, or key itself when it is missing.
func (c *Catalog) Text(key string) string {
	if c == nil {
		return key
	}
	if msg, ok := c.messages[key]; ok && msg != "" {
		return msg
	}
	return key
}

func matchLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(language.Make(locale))
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}
