// Package i18n provides translation catalogs and locale-aware
// formatting for request handlers and validation messages.
//
// An I18n service holds flattened catalogs for a fixed language set,
// registered inline or loaded from embedded YAML files. A Translator
// is a per-request view bound to a resolved language and namespace;
// the i18n middleware creates one from the lang cookie or the
// Accept-Language header and stores it in the request context.
//
//	svc, err := i18n.New(
//	    i18n.WithDefaultLanguage("en"),
//	    i18n.WithLanguages("en", "de"),
//	    i18n.WithTranslationsFS(locales, "locales"),
//	)
//
// Validation messages carry translation keys; a translator localizes
// them in place:
//
//	errs.Translate(tr.TranslateMessage)
package i18n
