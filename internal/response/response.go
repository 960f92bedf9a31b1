// Package response resolves reply templates by message key and language.
//
// Lookups that miss the requested language fall back to the base language,
// which every key is guaranteed to carry.
package response

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nadzzz/joey/internal/lang"
)

// Message keys.
const (
	Ready                = "ready"
	ReadyNamed           = "ready_named"
	Greeting             = "greeting"
	GreetPerson          = "greet_person"
	GreetSomeone         = "greet_someone"
	GreetNameUnclear     = "greet_name_unclear"
	GreetTranslateFailed = "greet_translate_failed"
	GreetLanguageUnknown = "greet_language_unknown"
	Help                 = "help"
	DistressAck          = "distress_ack"
	EmergencyCalling     = "emergency_calling"
	EmergencyPrompt      = "emergency_prompt"
	Joke                 = "joke"
	JokeFeedback         = "joke_feedback"
	ThankYou             = "thank_you"
	Farewell             = "farewell"
	NameSaved            = "name_saved"
	NameUnclear          = "name_unclear"
	JoeyName             = "joey_name"
	YourName             = "your_name"
	NameUnknown          = "name_unknown"
	AboutGeneral         = "about_general"
	AboutHair            = "about_hair"
	AboutAge             = "about_age"
	AboutLanguages       = "about_languages"
	AboutNature          = "about_nature"
	Location             = "location"
	Time                 = "time"
	Weather              = "weather"
	Heartbeat            = "heartbeat"
	Speed                = "speed"
	Speeding             = "speeding"
	TrafficLight         = "traffic_light"
	RedLight             = "red_light"
	InfoUnavailable      = "info_unavailable"
	TranslatePrompt      = "translate_prompt"
	TranslateFailed      = "translate_failed"
	LanguageUnknown      = "language_unknown"
	ModeSwitched         = "mode_switched"
	ModeAlready          = "mode_already"
	ModeBaseAlready      = "mode_base_already"
	ModeOff              = "mode_off"
	ModeOffNoop          = "mode_off_noop"
	ModeUnrecognized     = "mode_unrecognized"
	ModeHelp             = "mode_help"
	TranslateApology     = "translate_apology"
	Unsupported          = "unsupported"
	Unknown              = "unknown"
)

//go:embed responses.yaml
var responsesYAML []byte

// Template is a resolved reply: the text and the language it is written in.
// Lang differs from the requested language when the lookup fell back.
type Template struct {
	Text string
	Lang lang.Code
}

// Vars are placeholder values, keyed without braces ("name", "time").
type Vars map[string]string

// Table maps message key → language → template variants.
type Table struct {
	entries map[string]map[lang.Code][]string

	mu  sync.Mutex
	rng *rand.Rand // nil uses the global source
}

// Option configures a Table.
type Option func(*Table)

// WithRand makes variant selection deterministic.
func WithRand(r *rand.Rand) Option {
	return func(t *Table) { t.rng = r }
}

// Parse decodes a YAML table. Every key must have at least one base-language
// template and every language must resolve to a canonical code.
func Parse(data []byte, opts ...Option) (*Table, error) {
	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing response table: %w", err)
	}

	entries := make(map[string]map[lang.Code][]string, len(raw))
	for key, byLang := range raw {
		m := make(map[lang.Code][]string, len(byLang))
		for name, variants := range byLang {
			code, ok := lang.Resolve(name)
			if !ok {
				return nil, fmt.Errorf("response %q: unknown language %q", key, name)
			}
			if len(variants) == 0 {
				return nil, fmt.Errorf("response %q: no templates for %q", key, name)
			}
			m[code] = variants
		}
		if len(m[lang.Base]) == 0 {
			return nil, fmt.Errorf("response %q: missing %q templates", key, lang.Base)
		}
		entries[key] = m
	}

	t := &Table{entries: entries}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Load returns the embedded table.
func Load(opts ...Option) (*Table, error) {
	return Parse(responsesYAML, opts...)
}

// Keys returns the message keys in sorted order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key has templates written in code, without fallback.
func (t *Table) Has(key string, code lang.Code) bool {
	return len(t.entries[key][code]) > 0
}

// Resolve picks a template for key in code, falling back to the base
// language when code has none. Variants are chosen uniformly at random.
// An unknown key yields an empty template.
func (t *Table) Resolve(key string, code lang.Code) Template {
	byLang, ok := t.entries[key]
	if !ok {
		return Template{Lang: lang.Base}
	}
	variants, ok := byLang[code]
	if !ok || len(variants) == 0 {
		code = lang.Base
		variants = byLang[lang.Base]
	}
	return Template{Text: variants[t.pick(len(variants))], Lang: code}
}

// Render resolves key and substitutes vars into the template.
func (t *Table) Render(key string, code lang.Code, vars Vars) Template {
	tpl := t.Resolve(key, code)
	tpl.Text = Fill(tpl.Text, vars)
	return tpl
}

func (t *Table) pick(n int) int {
	if n == 1 {
		return 0
	}
	if t.rng == nil {
		return rand.IntN(n)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.IntN(n)
}

// Fill replaces {key} placeholders with vars. Unknown placeholders are left
// as they are.
func Fill(text string, vars Vars) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
