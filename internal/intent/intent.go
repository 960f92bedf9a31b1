// Package intent defines the intent tags Joey understands and the labelled
// example phrases the statistical classifier is fitted on.
//
// The corpus ships embedded in the binary, so it is fixed at build time.
package intent

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tag identifies an intent.
type Tag string

// Intent tags. Unknown is never part of the corpus; it is what the
// classifier reports when no candidate is accepted.
const (
	Unknown              Tag = "unknown"
	Greet                Tag = "greet"
	GreetSomeone         Tag = "greet_someone"
	AskForHelp           Tag = "ask_for_help"
	EmergencyCall        Tag = "emergency_call"
	TellAJoke            Tag = "tell_a_joke"
	JokeFeedbackNegative Tag = "joke_feedback_negative"
	ThankYou             Tag = "thank_you"
	StopOrExit           Tag = "stop_or_exit"
	IntroduceMyself      Tag = "introduce_myself"
	AskLocation          Tag = "ask_location"
	TellTime             Tag = "tell_time"
	AskWeather           Tag = "ask_weather"
	Translate            Tag = "translate"
	AskName              Tag = "ask_name"
	SetLanguageMode      Tag = "set_language_mode"
	AboutJoey            Tag = "about_joey"
	PlayMusic            Tag = "play_music"
	SetReminder          Tag = "set_reminder"
	SearchWeb            Tag = "search_web"
	CheckHeartbeat       Tag = "check_heartbeat"
	CheckSpeed           Tag = "check_speed"
	CheckTrafficLight    Tag = "check_traffic_light"
)

// Entry is one intent with its ordered example phrases.
type Entry struct {
	Tag     Tag      `yaml:"tag"`
	Phrases []string `yaml:"phrases"`
}

// Corpus is the ordered list of labelled examples.
type Corpus []Entry

// Len returns the total number of example phrases.
func (c Corpus) Len() int {
	n := 0
	for _, e := range c {
		n += len(e.Phrases)
	}
	return n
}

// Tags returns the intent tags in corpus order.
func (c Corpus) Tags() []Tag {
	out := make([]Tag, 0, len(c))
	for _, e := range c {
		out = append(out, e.Tag)
	}
	return out
}

// Flatten returns the example phrases and the parallel list of tags.
func (c Corpus) Flatten() ([]string, []Tag) {
	phrases := make([]string, 0, c.Len())
	tags := make([]Tag, 0, c.Len())
	for _, e := range c {
		for _, p := range e.Phrases {
			phrases = append(phrases, p)
			tags = append(tags, e.Tag)
		}
	}
	return phrases, tags
}

//go:embed corpus.yaml
var corpusYAML []byte

// ErrEmptyCorpus is returned when a corpus has no phrases.
var ErrEmptyCorpus = errors.New("intent corpus is empty")

// Parse decodes a YAML corpus document.
func Parse(data []byte) (Corpus, error) {
	var doc struct {
		Intents Corpus `yaml:"intents"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing intent corpus: %w", err)
	}
	if doc.Intents.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	seen := make(map[Tag]bool, len(doc.Intents))
	for _, e := range doc.Intents {
		if e.Tag == "" {
			return nil, fmt.Errorf("parsing intent corpus: entry without tag")
		}
		if seen[e.Tag] {
			return nil, fmt.Errorf("parsing intent corpus: duplicate tag %q", e.Tag)
		}
		seen[e.Tag] = true
	}
	return doc.Intents, nil
}

// Default returns the embedded corpus.
func Default() (Corpus, error) {
	return Parse(corpusYAML)
}

// Embedded is a classifier source backed by the embedded corpus.
type Embedded struct{}

// Load implements the classifier corpus source contract.
func (Embedded) Load() (Corpus, error) { return Default() }
