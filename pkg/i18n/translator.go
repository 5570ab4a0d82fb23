package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/biportal/pkg/logger"
)

// DefaultLanguage is used when no language can be negotiated.
const DefaultLanguage = "pt-BR"

// Loader provides translations keyed by language code.
type Loader interface {
	Load(ctx context.Context) (map[string]map[string]any, error)
}

// Translator resolves dotted keys against nested translation maps.
// It is immutable after construction and safe for concurrent use.
type Translator struct {
	translations  map[string]map[string]any
	defaultLang   string
	fallbackToKey bool
	logMissing    bool
	logger        *slog.Logger
	langs         []string
	matcher       language.Matcher
}

type Option func(*Translator)

// WithDefaultLanguage sets the language used for unknown or empty codes.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithFallbackToKey returns the key itself for missing translations. Default true.
func WithFallbackToKey(fallback bool) Option {
	return func(t *Translator) {
		t.fallbackToKey = fallback
	}
}

// WithMissingTranslationsLogging logs a warning for every missing key.
func WithMissingTranslationsLogging(enabled bool) Option {
	return func(t *Translator) {
		t.logMissing = enabled
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTranslator loads translations and prepares language negotiation.
// The default language must be among the loaded ones.
func NewTranslator(ctx context.Context, loader Loader, opts ...Option) (*Translator, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}

	t := &Translator{
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	translations, err := loader.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTranslations, err)
	}
	if _, ok := translations[t.defaultLang]; !ok {
		return nil, &ErrLanguageNotSupported{Lang: t.defaultLang}
	}
	t.translations = translations

	// The matcher falls back to its first tag, so the default goes first.
	t.langs = []string{t.defaultLang}
	for lang := range translations {
		if lang != t.defaultLang {
			t.langs = append(t.langs, lang)
		}
	}
	slices.Sort(t.langs[1:])

	tags := make([]language.Tag, 0, len(t.langs))
	for _, lang := range t.langs {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("invalid language code %q", lang), err)
		}
		tags = append(tags, tag)
	}
	t.matcher = language.NewMatcher(tags)

	t.logger.DebugContext(ctx, "translations loaded", slog.Any("languages", t.langs))
	return t, nil
}

// Languages returns the loaded language codes, default first.
func (t *Translator) Languages() []string {
	return slices.Clone(t.langs)
}

// DefaultLanguage returns the fallback language code.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// Has reports whether lang has a translation for key.
func (t *Translator) Has(lang, key string) bool {
	_, ok := lookup(t.translations[lang], key)
	return ok
}

// T translates key. Named parameters are passed as pairs:
//
//	t.T("pt-BR", "banner.contact_admin", "role", "admin")
//
// replaces "%{role}" in the template.
func (t *Translator) T(lang, key string, args ...string) string {
	lang = t.normalize(lang)
	if tmpl, ok := t.str(lang, key); ok {
		return sprintf(tmpl, args)
	}
	return t.missing(lang, key, args)
}

// N translates a plural key. It looks up key+".zero" (n == 0), key+".one"
// (n == 1) and key+".other", in that order of preference, and always
// provides the "count" parameter.
func (t *Translator) N(lang, key string, n int, args ...string) string {
	lang = t.normalize(lang)
	args = append([]string{"count", strconv.Itoa(n)}, args...)

	var forms []string
	switch n {
	case 0:
		forms = []string{key + ".zero", key + ".other"}
	case 1:
		forms = []string{key + ".one", key + ".other"}
	default:
		forms = []string{key + ".other"}
	}
	for _, k := range append(forms, key) {
		if tmpl, ok := t.str(lang, k); ok {
			return sprintf(tmpl, args)
		}
	}
	return t.missing(lang, key, args)
}

// Tc is T with the language taken from ctx.
func (t *Translator) Tc(ctx context.Context, key string, args ...string) string {
	return t.T(GetLocale(ctx), key, args...)
}

// Nc is N with the language taken from ctx.
func (t *Translator) Nc(ctx context.Context, key string, n int, args ...string) string {
	return t.N(GetLocale(ctx), key, n, args...)
}

func (t *Translator) normalize(lang string) string {
	if _, ok := t.translations[lang]; ok {
		return lang
	}
	if lang == "" {
		return t.defaultLang
	}
	return t.Match(lang)
}

func (t *Translator) str(lang, key string) (string, bool) {
	v, ok := lookup(t.translations[lang], key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (t *Translator) missing(lang, key string, args []string) string {
	if t.logMissing {
		t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("key", key))
	}
	if t.fallbackToKey {
		return sprintf(key, args)
	}
	return ""
}

// lookup walks m along the dot separated key.
func lookup(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	parts := strings.Split(key, ".")
	var cur any = m
	for _, part := range parts {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = node[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

func sprintf(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if _, seen := params[args[i]]; !seen {
			params[args[i]] = args[i+1]
		}
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if v, ok := params[match[2:len(match)-1]]; ok {
			return v
		}
		return match
	})
}
