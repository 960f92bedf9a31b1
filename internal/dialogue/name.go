package dialogue

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nadzzz/joey/internal/textutil"
)

// MaxNameWords caps how many words of a captured name are kept.
const MaxNameWords = 4

var (
	introRE = regexp.MustCompile(`(?:^|[^` + textutil.WordChars + `'])` +
		`(?:you can call me|call me|my name is|i am|i'm)\s+(.+)$`)

	// Capture ends at sentence punctuation.
	punctRE = regexp.MustCompile(`[.!?,;:()"]`)

	askBackRE = regexp.MustCompile(`what'?s yours|and your name|aur tumhara naam`)
)

// connectives end a name capture.
var connectives = setOf(
	"and", "so", "but", "because", "which", "what", "what's", "whats", "how",
	"when", "where", "why", "is", "am", "are", "was", "were", "have", "has",
	"had", "do", "did", "don't", "can", "can't", "will", "won't", "would",
	"should", "could", "if", "then", "than", "or", "nor", "for", "at", "in",
	"on", "of", "to", "from", "by", "with", "about", "as", "into", "like",
	"off", "out", "over", "past", "since", "through", "under", "up", "your",
	"my", "his", "her", "their", "our", "i", "i'm", "please", "not",
)

// firstPerson words after "and"/"or" open a coordinated subject
// ("Lee and I like tea"): the word before the connective belongs to it.
var firstPerson = setOf("i", "i'm", "we", "me", "my")

// rejected are captures that are never names.
var rejected = setOf(
	"is", "am", "me", "joey", "in", "to", "a", "the", "i", "you", "what",
	"how", "when", "where", "why", "and", "so", "but", "for", "my", "name",
	"good", "fine", "okay", "ok", "great", "here", "back", "ready", "sorry",
	"tired", "hungry", "busy", "just", "very", "also", "going", "doing",
	"good spanish", "good hindi",
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// ExtractName finds a self-introduction ("my name is", "i am", "call me")
// and returns the title-cased name that follows it. The capture stops at
// punctuation or a connective and keeps at most MaxNameWords words. It
// returns false when no plausible name was found; callers must not store a
// guess.
func ExtractName(utterance string) (string, bool) {
	m := introRE.FindStringSubmatch(textutil.Normalize(utterance))
	if m == nil {
		return "", false
	}
	rest := m[1]
	if loc := punctRE.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}

	fields := textutil.Fields(rest)
	var words []string
	for i, w := range fields {
		if connectives[w] {
			if (w == "and" || w == "or") && i+1 < len(fields) && firstPerson[fields[i+1]] && len(words) > 1 {
				words = words[:len(words)-1]
			}
			break
		}
		if !isNameWord(w) {
			break
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return "", false
	}

	candidate := textutil.FirstN(words, MaxNameWords)
	if len([]rune(candidate)) <= 1 || rejected[candidate] {
		return "", false
	}
	return textutil.Title(candidate), true
}

// isNameWord accepts letters with inner apostrophes or hyphens.
func isNameWord(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}

// AsksNameBack reports whether an introduction also asks for Joey's name
// ("my name is ravi, what's yours").
func AsksNameBack(utterance string) bool {
	return askBackRE.MatchString(textutil.Normalize(utterance))
}
