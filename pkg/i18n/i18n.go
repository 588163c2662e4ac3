// Package i18n looks up UI strings for the supported languages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// Language codes.
const (
	English            = "en"
	SimplifiedChinese  = "zh"
	TraditionalChinese = "zh-TW"
)

// Option is a selectable UI language.
type Option struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	English string `json:"english"`
}

// Supported lists the UI languages in menu order.
var Supported = []Option{
	{Code: English, Name: "English", English: "English"},
	{Code: SimplifiedChinese, Name: "简体中文", English: "Simplified Chinese"},
	{Code: TraditionalChinese, Name: "繁體中文", English: "Traditional Chinese"},
}

// IsSupported reports whether code is one of the Supported languages.
func IsSupported(code string) bool {
	for _, o := range Supported {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Detect picks the UI language: a saved supported choice wins, otherwise the
// first Accept-Language entry decides between the Chinese variants and English.
func Detect(saved, acceptLanguage string) string {
	if IsSupported(saved) {
		return saved
	}

	browser := English
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
		browser = tags[0].String()
	}

	switch {
	case strings.HasPrefix(browser, "zh-CN"), browser == "zh", strings.HasPrefix(browser, "zh-Hans"):
		return SimplifiedChinese
	case strings.HasPrefix(browser, "zh-TW"), strings.HasPrefix(browser, "zh-HK"), strings.HasPrefix(browser, "zh-Hant"):
		return TraditionalChinese
	default:
		return English
	}
}

// Translator resolves message ids for a language, falling back to English and
// then to a caller-supplied default.
type Translator struct {
	bundle     *i18n.Bundle
	logger     *slog.Logger
	localizers map[string]*i18n.Localizer
	mu         sync.RWMutex
}

// New loads the embedded locale files.
func New(logger *slog.Logger) (*Translator, error) {
	return NewFromFS(locales, "locales", logger)
}

// NewFromFS loads every *.json file in dir. File names are language tags.
func NewFromFS(fsys fs.FS, dir string, logger *slog.Logger) (*Translator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing locales: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no locale files in %s", dir)
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(fsys, f); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
		logger.Debug("loaded locale", "file", f)
	}

	return &Translator{
		bundle:     bundle,
		logger:     logger,
		localizers: make(map[string]*i18n.Localizer),
	}, nil
}

func (t *Translator) localizer(lang string) *i18n.Localizer {
	t.mu.RLock()
	l, ok := t.localizers[lang]
	t.mu.RUnlock()
	if ok {
		return l
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[lang]; ok {
		return l
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	l = i18n.NewLocalizer(t.bundle, tag.String())
	t.localizers[lang] = l
	return l
}

// T returns the message for id in lang. When neither lang nor English has the
// message, fallback is returned, or id itself if fallback is empty.
func (t *Translator) T(lang, id, fallback string) string {
	msg, err := t.localizer(lang).Localize(&i18n.LocalizeConfig{MessageID: id})
	if msg != "" {
		return msg
	}
	if err != nil {
		t.logger.Debug("missing translation", "lang", lang, "id", id)
	}
	if fallback != "" {
		return fallback
	}
	return id
}

// Func binds T to one language, for templates and view models.
func (t *Translator) Func(lang string) func(id, fallback string) string {
	return func(id, fallback string) string {
		return t.T(lang, id, fallback)
	}
}
