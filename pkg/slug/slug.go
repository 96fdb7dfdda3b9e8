package slug

import (
	cryptorand "crypto/rand"
	mathrand "math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultSuffixLength = 6

type options struct {
	replacements map[string]string
	reserved     map[string]struct{}
	separator    string
	stripChars   string
	maxLength    int
	minLength    int
	suffixLength int
	lowercase    bool
}

// Option configures slug generation.
type Option func(*options)

// Separator sets the string placed between words. Defaults to "-".
func Separator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// Lowercase controls case folding of the result. Defaults to true.
func Lowercase(enabled bool) Option {
	return func(o *options) {
		o.lowercase = enabled
	}
}

// MaxLength truncates the slug to at most n runes. Zero means unlimited.
// When a suffix is requested, the base is truncated so the suffix survives.
func MaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = n
	}
}

// MinLength pads slugs shorter than n runes with a random suffix.
// Padding is applied once; MaxLength still wins when both are set.
func MinLength(n int) Option {
	return func(o *options) {
		o.minLength = n
	}
}

// WithSuffix appends a random alphanumeric suffix of the given length.
func WithSuffix(length int) Option {
	return func(o *options) {
		o.suffixLength = length
	}
}

// StripChars removes the given characters before slugification.
func StripChars(chars string) Option {
	return func(o *options) {
		o.stripChars = chars
	}
}

// CustomReplace applies string replacements before slugification.
func CustomReplace(replacements map[string]string) Option {
	return func(o *options) {
		o.replacements = replacements
	}
}

// ReservedSlugs marks slugs that must not be produced verbatim.
// Matching is case-insensitive; a random suffix is appended on collision.
func ReservedSlugs(slugs ...string) Option {
	return func(o *options) {
		if len(slugs) == 0 {
			return
		}
		o.reserved = make(map[string]struct{}, len(slugs))
		for _, s := range slugs {
			o.reserved[strings.ToLower(s)] = struct{}{}
		}
	}
}

// Make converts input into a URL-safe slug.
func Make(input string, opts ...Option) string {
	o := &options{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(o)
	}

	s := input
	for from, to := range o.replacements {
		s = strings.ReplaceAll(s, from, to)
	}
	if o.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(o.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}

	s = foldDiacritics(s)
	if o.lowercase {
		s = strings.ToLower(s)
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return !isAlnum(r) })
	result := strings.Join(words, o.separator)

	suffixed := false
	if o.suffixLength > 0 {
		result = appendSuffix(result, generateSuffix(o.suffixLength, o.lowercase), o.separator, o.maxLength)
		suffixed = true
	}

	if len(o.reserved) > 0 {
		if _, hit := o.reserved[strings.ToLower(result)]; hit {
			length := o.suffixLength
			if length <= 0 {
				length = defaultSuffixLength
			}
			suffix := generateSuffix(length, o.lowercase)
			if result == "" {
				result = suffix
			} else {
				result += o.separator + suffix
			}
			// Reserved collisions keep the base readable and let the
			// suffix absorb the truncation.
			if o.maxLength > 0 && runeLen(result) > o.maxLength {
				result = trimSeparatorSuffix(truncateRunes(result, o.maxLength), o.separator)
			}
			suffixed = true
		}
	}

	if !suffixed && o.maxLength > 0 && runeLen(result) > o.maxLength {
		result = trimSeparatorSuffix(truncateRunes(result, o.maxLength), o.separator)
	}

	if o.minLength > 0 && runeLen(result) < o.minLength {
		pad := generateSuffix(defaultSuffixLength, o.lowercase)
		if result == "" {
			result = pad
		} else {
			result += o.separator + pad
		}
		if o.maxLength > 0 && runeLen(result) > o.maxLength {
			result = trimSeparatorSuffix(truncateRunes(result, o.maxLength), o.separator)
		}
	}

	return result
}

// appendSuffix joins base and a fixed-length suffix, truncating the base
// when maxLength leaves no room for both.
func appendSuffix(base, suffix, sep string, maxLength int) string {
	if base == "" {
		if maxLength > 0 {
			return truncateRunes(suffix, maxLength)
		}
		return suffix
	}
	if maxLength <= 0 {
		return base + sep + suffix
	}
	budget := maxLength - runeLen(suffix) - runeLen(sep)
	if budget <= 0 {
		return truncateRunes(suffix, maxLength)
	}
	base = trimSeparatorSuffix(truncateRunes(base, budget), sep)
	return base + sep + suffix
}

// foldDiacritics strips combining marks and maps the Latin letters that
// do not decompose (ß, æ, œ, ø, ł and friends) to ASCII lookalikes.
func foldDiacritics(s string) string {
	// The chain carries internal buffers, so it cannot be shared
	// between goroutines; building it per call is cheap.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return specialLatin.Replace(s)
}

var specialLatin = strings.NewReplacer(
	"ß", "s", "ẞ", "S",
	"æ", "a", "Æ", "A",
	"œ", "o", "Œ", "O",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"þ", "t", "Þ", "T",
	"ı", "i",
)

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

const (
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	mixedAlnum = lowerAlnum + "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// generateSuffix returns n random alphanumeric characters. It prefers
// crypto/rand and falls back to math/rand when the system source fails.
func generateSuffix(n int, lowercase bool) string {
	if n <= 0 {
		return ""
	}
	charset := lowerAlnum
	if !lowercase {
		charset = mixedAlnum
	}
	buf := make([]byte, n)
	if _, err := cryptorand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = charset[mathrand.IntN(len(charset))]
		}
		return string(buf)
	}
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return string(buf)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func trimSeparatorSuffix(s, sep string) string {
	if sep == "" {
		return s
	}
	for strings.HasSuffix(s, sep) {
		s = strings.TrimSuffix(s, sep)
	}
	return s
}
