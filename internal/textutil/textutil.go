// Package textutil holds the small Unicode-aware text helpers shared by the
// matchers: utterance normalisation, title casing and whole-word patterns.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// WordChars is the character class of word characters in any script.
// RE2's \b only understands ASCII, so matchers build boundaries from this.
const WordChars = `\p{L}\p{M}\p{N}_`

var (
	spaceRE = regexp.MustCompile(`\s+`)
	quotes  = strings.NewReplacer("’", "'", "‘", "'", "`", "'")
)

// Normalize lower-cases an utterance, composes it to NFC, straightens
// apostrophes and collapses runs of whitespace.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = quotes.Replace(s)
	s = strings.ToLower(s)
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

// Title upper-cases the first letter of every word.
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// WholeWord returns a pattern fragment matching alt as a whole word or
// phrase. alt is inserted verbatim, so callers escape literals first.
func WholeWord(alt string) string {
	return `(?:^|[^` + WordChars + `])(?:` + alt + `)(?:$|[^` + WordChars + `])`
}

// Alternation joins escaped literals into a regexp alternation, preserving
// order. Callers wanting longest-match-first pass a sorted list.
func Alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// Fields splits on whitespace.
func Fields(s string) []string {
	return strings.Fields(s)
}

// FirstN joins at most n of words with single spaces.
func FirstN(words []string, n int) string {
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
