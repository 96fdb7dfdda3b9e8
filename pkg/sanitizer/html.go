package sanitizer

import "github.com/microcosm-cc/bluemonday"

// formattingPolicy keeps the handful of tags user-generated content
// legitimately needs and drops everything else, including scripts,
// event handlers, and javascript: URLs.
var formattingPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br",
		"strong", "b", "em", "i",
		"ul", "ol", "li",
		"code", "pre", "blockquote",
	)
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}()

// SanitizeHTML keeps basic formatting (paragraphs, emphasis, lists,
// code, nofollow links) and strips everything dangerous. Use it for
// user-generated content rendered as HTML.
func SanitizeHTML(s string) string {
	return formattingPolicy.Sanitize(s)
}

// SanitizeHTMLCustom applies a caller-supplied bluemonday policy. A nil
// policy returns the input unchanged.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
