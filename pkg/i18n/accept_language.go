package i18n

import (
	"golang.org/x/text/language"
)

// ParseAcceptLanguage matches an Accept-Language header against the
// available languages and returns the best match, or an empty string
// when nothing matches with any confidence. Matching understands
// regional variants, so "de-DE,de;q=0.9" resolves to an available
// "de".
func ParseAcceptLanguage(header string, available []string) string {
	if header == "" || len(available) == 0 {
		return ""
	}

	supported := make([]language.Tag, 0, len(available))
	valid := make([]string, 0, len(available))
	for _, lang := range available {
		tag, err := language.Parse(lang)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		valid = append(valid, lang)
	}
	if len(supported) == 0 {
		return ""
	}

	wanted, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(wanted) == 0 {
		return ""
	}

	_, idx, conf := language.NewMatcher(supported).Match(wanted...)
	if conf == language.No {
		return ""
	}
	return valid[idx]
}
