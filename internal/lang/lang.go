// Package lang maps language names and codes, in several scripts and
// spellings, onto one canonical code per supported language.
//
// Codes follow ISO-639-1 where possible; Chinese uses the "zh-CN" variant
// expected by the translation backends.
package lang

import (
	"sort"
	"strings"
)

// Code is a canonical language identifier (e.g. "en", "hi", "zh-CN").
type Code string

// Base is the default response language. Every response template set must
// carry a Base entry.
const Base Code = "en"

// Language describes one supported language.
type Language struct {
	Code Code
	Name string
	// Aliases are alternative names in Latin and native scripts. The code and
	// the lower-cased name are always accepted and need not be repeated.
	Aliases []string
}

// languages is the supported set. Order is stable and used by Names.
var languages = []Language{
	{Code: "en", Name: "English", Aliases: []string{"default", "normal", "inglés", "अंग्रेज़ी", "انگریزی", "ইংরেজি"}},
	{Code: "hi", Name: "Hindi", Aliases: []string{"हिंदी", "हिन्दी", "hindī"}},
	{Code: "es", Name: "Spanish", Aliases: []string{"español", "espanol", "castellano", "स्पेनिश"}},
	{Code: "ur", Name: "Urdu", Aliases: []string{"اردو", "उर्दू"}},
	{Code: "bn", Name: "Bengali", Aliases: []string{"bangla", "বাংলা"}},
	{Code: "ja", Name: "Japanese", Aliases: []string{"जापानी", "জাপানি", "جاپانی", "日本語"}},
	{Code: "de", Name: "German", Aliases: []string{"deutsch", "जर्मन", "জার্মান", "جرمن"}},
	{Code: "fr", Name: "French", Aliases: []string{"français", "francais", "फरांसीसी", "फ्रेंच", "ফরাসি", "فرانسیسی"}},
	{Code: "zh-CN", Name: "Chinese", Aliases: []string{"zh", "mandarin", "चीनी", "চীনা", "چینی", "中文"}},
	{Code: "ru", Name: "Russian", Aliases: []string{"русский", "रूसी", "রুশ", "روسی"}},
	{Code: "ar", Name: "Arabic", Aliases: []string{"العربية", "अरबी", "आरबी", "عربی"}},
	{Code: "pt", Name: "Portuguese", Aliases: []string{"português", "portugues"}},
	{Code: "it", Name: "Italian", Aliases: []string{"italiano"}},
	{Code: "ko", Name: "Korean", Aliases: []string{"한국어"}},
	{Code: "nl", Name: "Dutch", Aliases: []string{"nederlands"}},
}

var (
	byCode  = make(map[string]Language, len(languages))
	byAlias = make(map[string]Code)
	// names holds every language name and alias that is not a bare code.
	names []string
)

func init() {
	for _, l := range languages {
		byCode[strings.ToLower(string(l.Code))] = l
		byAlias[strings.ToLower(l.Name)] = l.Code
		names = append(names, strings.ToLower(l.Name))
		for _, a := range l.Aliases {
			a = strings.ToLower(a)
			byAlias[a] = l.Code
			if a != "zh" {
				names = append(names, a)
			}
		}
	}
	// Longest first so alternations built from this list prefer "hindi mode"
	// style matches over shorter prefixes.
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
}

// Resolve maps a language name, alias or code to its canonical code.
// Matching is case-insensitive. Unknown input returns ("", false); callers
// must then fall back to Base rather than fail the turn.
func Resolve(nameOrCode string) (Code, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrCode))
	if key == "" {
		return "", false
	}
	if l, ok := byCode[key]; ok {
		return l.Code, true
	}
	if c, ok := byAlias[key]; ok {
		return c, true
	}
	return "", false
}

// Lookup returns the Language for a canonical code.
func Lookup(c Code) (Language, bool) {
	l, ok := byCode[strings.ToLower(string(c))]
	return l, ok
}

// Name returns the English display name for a code, or the code itself when
// it is not supported.
func Name(c Code) string {
	if l, ok := Lookup(c); ok {
		return l.Name
	}
	return string(c)
}

// Names returns the display names of all supported languages in table order.
func Names() []string {
	out := make([]string, 0, len(languages))
	for _, l := range languages {
		out = append(out, l.Name)
	}
	return out
}

// Aliases returns every lower-cased name and alias that is not itself a
// canonical code, longest first. Matchers use it to spot spoken language
// names without tripping over short codes like "it" or "hi".
func Aliases() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// All returns the supported languages.
func All() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Or returns c, or fallback when c is empty.
func (c Code) Or(fallback Code) Code {
	if c == "" {
		return fallback
	}
	return c
}
