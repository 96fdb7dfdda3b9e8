package i18n

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// DefaultLang is used when no default language is configured.
const DefaultLang = "en"

// M carries placeholder values for message interpolation.
type M map[string]any

var (
	// ErrEmptyLanguage is returned when a language code is empty.
	ErrEmptyLanguage = errors.New("i18n: language cannot be empty")
	// ErrEmptyNamespace is returned when a namespace is empty.
	ErrEmptyNamespace = errors.New("i18n: namespace cannot be empty")
	// ErrUnknownLanguage is returned when translations are registered
	// for a language that is not in the configured language set.
	ErrUnknownLanguage = errors.New("i18n: language not in configured set")
	// ErrInvalidFile is returned when a translation file cannot be parsed.
	ErrInvalidFile = errors.New("i18n: invalid translation file")
)

// I18n holds translation catalogs for a fixed set of languages.
// Catalogs are flattened at registration time: nested maps become
// dot-separated keys, so {"items": {"one": "..."}} under namespace
// "common" is stored as "common.items.one". The catalog is read-only
// after New returns.
type I18n struct {
	catalogs    map[string]map[string]string
	langs       []string
	defaultLang string
	err         error
}

// Option configures the I18n service during New.
type Option func(*I18n)

// WithDefaultLanguage sets the language used when resolution fails.
func WithDefaultLanguage(lang string) Option {
	return func(s *I18n) {
		s.defaultLang = lang
	}
}

// WithLanguages declares the set of supported languages. The default
// language is always part of the set.
func WithLanguages(langs ...string) Option {
	return func(s *I18n) {
		for _, lang := range langs {
			if lang == "" {
				s.fail(ErrEmptyLanguage)
				return
			}
			if !slices.Contains(s.langs, lang) {
				s.langs = append(s.langs, lang)
			}
		}
	}
}

// WithTranslations registers a translation tree for a language under a
// namespace. Nested maps flatten to dot-separated keys; scalar leaves
// are rendered with fmt.Sprint. Registering the same key twice keeps
// the later value.
func WithTranslations(lang, namespace string, data map[string]any) Option {
	return func(s *I18n) {
		if lang == "" {
			s.fail(ErrEmptyLanguage)
			return
		}
		if namespace == "" {
			s.fail(ErrEmptyNamespace)
			return
		}
		s.merge(lang, namespace, data)
	}
}

// New builds an I18n service from the given options.
func New(opts ...Option) (*I18n, error) {
	s := &I18n{catalogs: make(map[string]map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.defaultLang == "" {
		s.defaultLang = DefaultLang
	}
	if !slices.Contains(s.langs, s.defaultLang) {
		s.langs = append([]string{s.defaultLang}, s.langs...)
	}
	for lang := range s.catalogs {
		if !slices.Contains(s.langs, lang) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
		}
	}
	return s, nil
}

func (s *I18n) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *I18n) merge(lang, namespace string, data map[string]any) {
	cat, ok := s.catalogs[lang]
	if !ok {
		cat = make(map[string]string)
		s.catalogs[lang] = cat
	}
	flatten(namespace, data, cat)
}

// flatten walks a nested translation tree and writes dot-separated
// keys into dst.
func flatten(prefix string, data map[string]any, dst map[string]string) {
	for k, v := range data {
		key := prefix + "." + k
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, dst)
			continue
		}
		dst[key] = fmt.Sprint(v)
	}
}

// DefaultLanguage returns the configured default language.
func (s *I18n) DefaultLanguage() string {
	return s.defaultLang
}

// Languages returns the supported languages sorted alphabetically.
func (s *I18n) Languages() []string {
	langs := slices.Clone(s.langs)
	sort.Strings(langs)
	return langs
}

// HasLanguage reports whether lang is in the supported set.
func (s *I18n) HasLanguage(lang string) bool {
	return slices.Contains(s.langs, lang)
}

// lookup resolves a flattened key for a language, falling back to the
// default language when the key is missing.
func (s *I18n) lookup(lang, key string) (string, bool) {
	if cat, ok := s.catalogs[lang]; ok {
		if msg, ok := cat[key]; ok {
			return msg, true
		}
	}
	if lang != s.defaultLang {
		if cat, ok := s.catalogs[s.defaultLang]; ok {
			if msg, ok := cat[key]; ok {
				return msg, true
			}
		}
	}
	return "", false
}
