// Package i18n loads the embedded message catalogs and resolves user facing
// text (SMS bodies, page strings) against an Accept-Language value.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// ErrNoCatalog is returned when no locale file could be loaded.
var ErrNoCatalog = errors.New("i18n: no message catalog loaded")

// Translator resolves message ids to localized text.
type Translator struct {
	bundle *goi18n.Bundle
}

// New builds a Translator from the embedded catalogs with English as the
// fallback language.
func New() (*Translator, error) {
	return NewFromFS(localeFS, "locales")
}

// NewFromFS loads every *.json file in dir of fsys. Files are named after
// their language tag (en.json, de.json).
func NewFromFS(fsys fs.FS, dir string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(fsys, path.Join(dir, entry.Name())); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", entry.Name(), err)
		}
		loaded++
	}

	if loaded == 0 {
		return nil, ErrNoCatalog
	}

	return &Translator{bundle: bundle}, nil
}

// Languages lists the loaded language tags.
func (t *Translator) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// T returns the message id localized for acceptLanguage, falling back to
// English. Unknown ids come back unchanged.
func (t *Translator) T(acceptLanguage, id string, data map[string]any) string {
	localizer := goi18n.NewLocalizer(t.bundle, acceptLanguage)

	msg, err := localizer.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		slog.Warn("i18n: message not localized", "id", id, "lang", acceptLanguage, "error", err)
		return id
	}
	return msg
}

// Localizer returns a bound helper for one request.
func (t *Translator) Localizer(acceptLanguage string) Localizer {
	return Localizer{t: t, lang: acceptLanguage}
}

// Localizer binds a Translator to one Accept-Language value.
type Localizer struct {
	t    *Translator
	lang string
}

func (l Localizer) T(id string) string {
	return l.t.T(l.lang, id, nil)
}

func (l Localizer) TData(id string, data map[string]any) string {
	return l.t.T(l.lang, id, data)
}
