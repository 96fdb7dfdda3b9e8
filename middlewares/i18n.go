package middlewares

import (
	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/pkg/i18n"
)

// i18nConfig collects I18n middleware options.
type i18nConfig struct {
	formats       map[string]*i18n.LocaleFormat
	defaultFormat *i18n.LocaleFormat
	namespace     string
	extractor     internal.Extractor
	extractorSet  bool
}

// I18nOption configures the I18n middleware.
type I18nOption func(*i18nConfig)

// WithI18nNamespace sets the default namespace for the context translator.
func WithI18nNamespace(ns string) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.namespace = ns
	}
}

// WithI18nExtractor sets a custom language extractor chain.
func WithI18nExtractor(ext internal.Extractor) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.extractor = ext
		cfg.extractorSet = true
	}
}

// WithI18nFormatMap maps languages to their number and date formats.
func WithI18nFormatMap(m map[string]*i18n.LocaleFormat) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.formats = m
	}
}

// WithI18nDefaultFormat sets the format used for languages the format
// map does not cover. Defaults to en-US.
func WithI18nDefaultFormat(f *i18n.LocaleFormat) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.defaultFormat = f
	}
}

// FromAcceptLanguage returns an ExtractorSource matching the
// Accept-Language header against the available languages.
func FromAcceptLanguage(available []string) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		header := c.Header("Accept-Language")
		if header == "" {
			return "", false
		}
		return i18n.ParseAcceptLanguage(header, available), true
	}
}

// I18n returns middleware that resolves the request language and
// installs a Translator on the context. Downstream, Context.T and the
// bind stage's validation messages go through that translator.
//
// Language resolution tries the extractor chain first (by default a
// "lang" cookie, then Accept-Language) and falls back to the service's
// default language.
func I18n(svc *i18n.I18n, opts ...I18nOption) internal.Middleware {
	cfg := &i18nConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.extractorSet {
		cfg.extractor = internal.NewExtractor(
			internal.FromCookie("lang"),
			FromAcceptLanguage(svc.Languages()),
		)
	}
	if cfg.defaultFormat == nil {
		cfg.defaultFormat = i18n.FormatEnUS()
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lang, ok := cfg.extractor.Extract(c)
			if !ok || lang == "" {
				lang = svc.DefaultLanguage()
			}
			c.Set(internal.TranslatorKey{}, i18n.NewTranslator(svc, lang, cfg.namespace, cfg.formatFor(lang)))
			return next(c)
		}
	}
}

func (cfg *i18nConfig) formatFor(lang string) *i18n.LocaleFormat {
	if f, ok := cfg.formats[lang]; ok {
		return f
	}
	return cfg.defaultFormat
}

// GetTranslator extracts the Translator from the context, or nil when
// the I18n middleware is not installed.
func GetTranslator(c internal.Context) *i18n.Translator {
	if v, ok := c.Get(internal.TranslatorKey{}).(*i18n.Translator); ok {
		return v
	}
	return nil
}

// GetLanguage returns the resolved request language, or "" when the
// I18n middleware is not installed.
func GetLanguage(c internal.Context) string {
	if tr := GetTranslator(c); tr != nil {
		return tr.Language()
	}
	return ""
}
