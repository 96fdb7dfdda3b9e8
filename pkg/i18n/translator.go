package i18n

import (
	"fmt"
	"strings"
)

// Translator is a per-request view of the catalog: a resolved
// language, a default namespace, and a locale format for numbers and
// dates. Translators are cheap to create and safe for concurrent use.
type Translator struct {
	svc       *I18n
	format    *LocaleFormat
	lang      string
	namespace string
}

// NewTranslator creates a translator bound to a language and
// namespace. A nil format falls back to en-US conventions.
func NewTranslator(svc *I18n, lang, namespace string, format *LocaleFormat) *Translator {
	if format == nil {
		format = FormatEnUS()
	}
	return &Translator{svc: svc, lang: lang, namespace: namespace, format: format}
}

// Language returns the resolved language.
func (t *Translator) Language() string {
	return t.lang
}

// T translates a key within the translator's namespace, interpolating
// {{placeholder}} tokens from the given maps. An unknown key is
// returned as-is so missing translations stay visible instead of
// rendering blank.
func (t *Translator) T(key string, placeholders ...M) string {
	msg, ok := t.resolve(key)
	if !ok {
		return key
	}
	return interpolate(msg, placeholders...)
}

// Tn translates a key with pluralization: the plural form for n in the
// translator's language is appended to the key (e.g. "items.one",
// "items.other"). When the exact form is missing the "other" form is
// consulted before giving up.
func (t *Translator) Tn(key string, n int, placeholders ...M) string {
	form := pluralForm(t.lang, n)
	if msg, ok := t.resolve(key + "." + form); ok {
		return interpolate(msg, placeholders...)
	}
	if form != pluralOther {
		if msg, ok := t.resolve(key + "." + pluralOther); ok {
			return interpolate(msg, placeholders...)
		}
	}
	if msg, ok := t.resolve(key); ok {
		return interpolate(msg, placeholders...)
	}
	return key
}

// TranslateMessage adapts the translator to the validator's
// TranslateFunc signature, so validation messages localize with:
//
//	errs.Translate(tr.TranslateMessage)
func (t *Translator) TranslateMessage(key string, values map[string]any) string {
	if len(values) == 0 {
		return t.T(key)
	}
	return t.T(key, M(values))
}

func (t *Translator) resolve(key string) (string, bool) {
	full := key
	if t.namespace != "" {
		full = t.namespace + "." + key
	}
	return t.svc.lookup(t.lang, full)
}

// interpolate replaces {{name}} tokens with values from the maps.
// Later maps win on duplicate names. Unknown tokens stay in place.
func interpolate(msg string, placeholders ...M) string {
	if len(placeholders) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	for _, ph := range placeholders {
		for name, value := range ph {
			msg = strings.ReplaceAll(msg, "{{"+name+"}}", fmt.Sprint(value))
		}
	}
	return msg
}

const pluralOther = "other"

// pluralForm returns the CLDR cardinal category for n in the given
// language. The table covers the language families the framework ships
// catalogs for; unlisted languages use the Germanic one/other split.
func pluralForm(lang string, n int) string {
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		lang = lang[:idx]
	}
	switch lang {
	case "ja", "ko", "zh", "th", "vi", "id":
		// No grammatical number.
		return pluralOther
	case "fr", "pt", "tr":
		if n == 0 || n == 1 {
			return "one"
		}
		return pluralOther
	case "pl":
		return slavicForm(n, true)
	case "ru", "uk":
		return slavicForm(n, false)
	default:
		if n == 1 {
			return "one"
		}
		return pluralOther
	}
}

// slavicForm implements the one/few/many split shared by Polish,
// Russian, and Ukrainian. Polish treats 1 as "one" unconditionally;
// East Slavic languages also use "one" for 21, 31, and so on.
func slavicForm(n int, polish bool) string {
	if n < 0 {
		n = -n
	}
	mod10 := n % 10
	mod100 := n % 100
	switch {
	case polish && n == 1:
		return "one"
	case !polish && mod10 == 1 && mod100 != 11:
		return "one"
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return "few"
	default:
		return "many"
	}
}
