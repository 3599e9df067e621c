package normalizers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Comment spans are replaced with a space so they never glue two
	// tokens together.
	percentCommentRe = regexp.MustCompile(`(?s)%%.*?%%`)
	htmlCommentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)

	// A run of two or more bare symbol characters carries no term
	// value and would otherwise survive the charset filter as an
	// artifact token like "---".
	symbolRunRe = regexp.MustCompile(`[#_\-]{2,}`)

	// A hash prefixing a word marks a tag; stripping it lets the tag
	// term match its plain-word form too.
	hashtagPrefixRe = regexp.MustCompile(`(^|\s)#+`)
)

// StripComments removes embedded comment markup spans, replacing each
// with a single space.
func StripComments(text string) string {
	text = percentCommentRe.ReplaceAllString(text, " ")
	return htmlCommentRe.ReplaceAllString(text, " ")
}

// SplitCamelCase inserts a space at compound-case word boundaries:
// a lower-to-upper transition, or an uppercase run followed by a
// titlecased word. Uses Unicode letter categories, so "CaféMenu"
// splits just like "MeetingNotes". Must run before lowercasing.
func SplitCamelCase(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)

	for i, r := range rs {
		if i > 0 {
			prev := rs[i-1]
			switch {
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				b.WriteRune(' ')
			case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
				i+1 < len(rs) && unicode.IsLower(rs[i+1]):
				// End of an acronym run: "HTTPServer" -> "HTTP Server".
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FilterCharset replaces every character outside the kept set
// (letters, digits, apostrophes, '#', '_', '-', whitespace) with a
// space, then collapses runs of two or more symbol characters into a
// single space.
func FilterCharset(text string) string {
	filtered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			return r
		case r == '\'' || r == '’' || r == '#' || r == '_' || r == '-':
			return r
		default:
			return ' '
		}
	}, text)
	return symbolRunRe.ReplaceAllString(filtered, " ")
}

// StripDiacritics removes combining marks for accent-insensitive
// matching: decompose to NFD, drop marks, recompose to NFC.
func StripDiacritics(text string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, text)
	if err != nil {
		// Transforms never fail on valid Unicode; on malformed input
		// the original text is still tokenizable.
		return text
	}
	return out
}

// StripHashtagPrefix removes the leading '#' of hashtag words so the
// tag term matches its plain-word form. Runs after the charset filter,
// which preserved the '#' characters.
func StripHashtagPrefix(text string) string {
	return hashtagPrefixRe.ReplaceAllString(text, "$1")
}

// NewMarkupStripper compiles editor-specific markup patterns into a
// transform that replaces each match with a space. The patterns are
// treated as opaque regular expressions supplied by configuration; a
// malformed pattern is a construction-time error.
func NewMarkupStripper(patterns []string) (Transform, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}

	return func(text string) string {
		for _, re := range compiled {
			text = re.ReplaceAllString(text, " ")
		}
		return text
	}, nil
}
