package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/pkg/i18n"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		svc, err := i18n.New()
		require.NoError(t, err)
		assert.Equal(t, "en", svc.DefaultLanguage())
		assert.Equal(t, []string{"en"}, svc.Languages())
	})

	t.Run("default language joins the set", func(t *testing.T) {
		t.Parallel()
		svc, err := i18n.New(
			i18n.WithDefaultLanguage("de"),
			i18n.WithLanguages("en", "pl"),
		)
		require.NoError(t, err)
		assert.Equal(t, "de", svc.DefaultLanguage())
		assert.Equal(t, []string{"de", "en", "pl"}, svc.Languages())
		assert.True(t, svc.HasLanguage("pl"))
		assert.False(t, svc.HasLanguage("fr"))
	})

	t.Run("empty language fails", func(t *testing.T) {
		t.Parallel()
		_, err := i18n.New(i18n.WithLanguages("en", ""))
		require.ErrorIs(t, err, i18n.ErrEmptyLanguage)
	})

	t.Run("empty namespace fails", func(t *testing.T) {
		t.Parallel()
		_, err := i18n.New(
			i18n.WithTranslations("en", "", map[string]any{"a": "b"}),
		)
		require.ErrorIs(t, err, i18n.ErrEmptyNamespace)
	})

	t.Run("translations for unknown language fail", func(t *testing.T) {
		t.Parallel()
		_, err := i18n.New(
			i18n.WithLanguages("en"),
			i18n.WithTranslations("de", "common", map[string]any{"a": "b"}),
		)
		require.ErrorIs(t, err, i18n.ErrUnknownLanguage)
	})
}

func TestTranslator(t *testing.T) {
	t.Parallel()

	svc, err := i18n.New(
		i18n.WithDefaultLanguage("en"),
		i18n.WithLanguages("en", "de", "pl"),
		i18n.WithTranslations("en", "common", map[string]any{
			"hello":   "Hello",
			"welcome": "Welcome, {{name}}!",
			"items": map[string]any{
				"one":   "{{count}} item",
				"other": "{{count}} items",
			},
			"only_en": "English only",
		}),
		i18n.WithTranslations("de", "common", map[string]any{
			"hello": "Hallo",
			"items": map[string]any{
				"one":   "{{count}} Artikel",
				"other": "{{count}} Artikel",
			},
		}),
		i18n.WithTranslations("pl", "common", map[string]any{
			"files": map[string]any{
				"one":   "{{count}} plik",
				"few":   "{{count}} pliki",
				"many":  "{{count}} plików",
				"other": "{{count}} pliku",
			},
		}),
	)
	require.NoError(t, err)

	t.Run("translates in the bound language", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "de", "common", nil)
		assert.Equal(t, "Hallo", tr.T("hello"))
		assert.Equal(t, "de", tr.Language())
	})

	t.Run("interpolates placeholders", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "en", "common", nil)
		assert.Equal(t, "Welcome, Alice!", tr.T("welcome", i18n.M{"name": "Alice"}))
	})

	t.Run("unknown key returned as-is", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "en", "common", nil)
		assert.Equal(t, "missing.key", tr.T("missing.key"))
	})

	t.Run("falls back to the default language", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "de", "common", nil)
		assert.Equal(t, "English only", tr.T("only_en"))
	})

	t.Run("plural forms", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "en", "common", nil)
		assert.Equal(t, "1 item", tr.Tn("items", 1, i18n.M{"count": 1}))
		assert.Equal(t, "5 items", tr.Tn("items", 5, i18n.M{"count": 5}))
	})

	t.Run("slavic plural forms", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "pl", "common", nil)
		assert.Equal(t, "1 plik", tr.Tn("files", 1, i18n.M{"count": 1}))
		assert.Equal(t, "3 pliki", tr.Tn("files", 3, i18n.M{"count": 3}))
		assert.Equal(t, "5 plików", tr.Tn("files", 5, i18n.M{"count": 5}))
		assert.Equal(t, "22 pliki", tr.Tn("files", 22, i18n.M{"count": 22}))
	})

	t.Run("plural without matching form falls back to other", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "de", "common", nil)
		assert.Equal(t, "7 Artikel", tr.Tn("items", 7, i18n.M{"count": 7}))
	})

	t.Run("translate message adapter", func(t *testing.T) {
		t.Parallel()
		tr := i18n.NewTranslator(svc, "en", "common", nil)
		got := tr.TranslateMessage("welcome", map[string]any{"name": "Bob"})
		assert.Equal(t, "Welcome, Bob!", got)
	})
}
