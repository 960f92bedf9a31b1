// Package classifier implements the statistical intent classifier: a TF-IDF
// vector space fitted over the intent corpus, queried by cosine similarity.
//
// The weighting mirrors the defaults of the common TfidfVectorizer: lower
// case, tokens of two or more word characters, raw term counts, smoothed
// inverse document frequency and L2-normalised rows.
package classifier

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/message"
)

// Default acceptance thresholds.
const (
	DefaultThreshold          = 0.4
	DefaultEmergencyThreshold = 0.55
)

var (
	// ErrNotReady is returned when no model is fitted and a rebuild failed.
	ErrNotReady = errors.New("classifier not ready")

	// ErrEmptyVocabulary is returned when the corpus yields no tokens.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)

// Source supplies the labelled corpus to fit on.
type Source interface {
	Load() (intent.Corpus, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (intent.Corpus, error)

// Load calls f.
func (f SourceFunc) Load() (intent.Corpus, error) { return f() }

// Prediction is the raw best candidate for a query, before the acceptance
// policy is applied.
type Prediction struct {
	Tag        intent.Tag
	Confidence float64
	// Example is the corpus phrase that scored highest.
	Example string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold sets the generic acceptance threshold.
func WithThreshold(t float64) Option {
	return func(c *Classifier) { c.threshold = t }
}

// WithEmergencyThreshold sets the acceptance threshold for emergency_call.
func WithEmergencyThreshold(t float64) Option {
	return func(c *Classifier) { c.emergencyThreshold = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// Classifier is safe for concurrent use. Builds take the write lock, so a
// rebuild is a barrier for queries.
type Classifier struct {
	src                Source
	threshold          float64
	emergencyThreshold float64
	logger             *slog.Logger

	mu    sync.RWMutex
	model *model

	watchMu  sync.Mutex
	watchers []func(ready bool)
}

// New creates an unfitted classifier. Call Build before serving queries;
// Predict attempts one rebuild on its own when no model is present.
func New(src Source, opts ...Option) *Classifier {
	c := &Classifier{
		src:                src,
		threshold:          DefaultThreshold,
		emergencyThreshold: DefaultEmergencyThreshold,
		logger:             slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Build fits the vector space over the corpus. On failure any previous
// model is kept.
func (c *Classifier) Build() error {
	c.mu.Lock()
	err := c.buildLocked()
	c.mu.Unlock()
	if err == nil {
		c.notify(true)
	}
	return err
}

// OnReady calls fn with the current readiness and again after every
// successful build, including the rebuild Predict attempts on its own.
func (c *Classifier) OnReady(fn func(ready bool)) {
	c.watchMu.Lock()
	c.watchers = append(c.watchers, fn)
	c.watchMu.Unlock()
	fn(c.Ready())
}

func (c *Classifier) notify(ready bool) {
	c.watchMu.Lock()
	watchers := append([]func(bool){}, c.watchers...)
	c.watchMu.Unlock()
	for _, fn := range watchers {
		fn(ready)
	}
}

func (c *Classifier) buildLocked() error {
	corpus, err := c.src.Load()
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	m, err := fit(corpus)
	if err != nil {
		return fmt.Errorf("fitting tf-idf: %w", err)
	}
	c.model = m
	c.logger.Info("classifier fitted", "examples", len(m.tags), "vocabulary", len(m.vocab))
	return nil
}

// Ready reports whether a fitted model is present.
func (c *Classifier) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil
}

// Predict returns the corpus example most similar to text. When no model
// is fitted, one synchronous rebuild is attempted first.
func (c *Classifier) Predict(text string) (Prediction, error) {
	c.mu.RLock()
	m := c.model
	c.mu.RUnlock()

	if m == nil {
		c.mu.Lock()
		rebuilt := false
		if c.model == nil {
			if err := c.buildLocked(); err != nil {
				c.mu.Unlock()
				c.logger.Error("classifier rebuild failed", "error", err)
				return Prediction{}, fmt.Errorf("%w: %w", ErrNotReady, err)
			}
			rebuilt = true
		}
		m = c.model
		c.mu.Unlock()
		if rebuilt {
			c.notify(true)
		}
	}

	return m.best(text), nil
}

// Classify applies the acceptance policy to the best prediction for text.
func (c *Classifier) Classify(text string) message.Match {
	return c.Accept(c.Predict(text))
}

// Accept applies the acceptance policy to a prediction. Below the generic
// threshold, or below the emergency threshold for emergency_call, the
// result is unknown with the candidate's score. When the prediction failed
// the result is unknown with confidence 0.
func (c *Classifier) Accept(p Prediction, err error) message.Match {
	if err != nil {
		return message.Match{Intent: intent.Unknown}
	}

	logger := c.logger.With("candidate", p.Tag, "confidence", p.Confidence)
	if p.Tag == intent.EmergencyCall && p.Confidence < c.emergencyThreshold {
		logger.Debug("emergency candidate below threshold")
		return message.Match{Intent: intent.Unknown, Confidence: p.Confidence}
	}
	if p.Confidence < c.threshold {
		logger.Debug("low confidence match")
		return message.Match{Intent: intent.Unknown, Confidence: p.Confidence}
	}
	logger.Debug("intent matched")
	return message.Match{Intent: p.Tag, Confidence: p.Confidence}
}

// --- TF-IDF model ---

var tokenRE = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

func tokenize(s string) []string {
	return tokenRE.FindAllString(strings.ToLower(s), -1)
}

// term is one non-zero component of a sparse row.
type term struct {
	idx int
	w   float64
}

// vector is a sparse L2-normalised row sorted by vocabulary index.
type vector []term

func dot(a, b vector) float64 {
	var sum float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].idx < b[j].idx:
			i++
		case a[i].idx > b[j].idx:
			j++
		default:
			sum += a[i].w * b[j].w
			i++
			j++
		}
	}
	return sum
}

type model struct {
	vocab    map[string]int
	idf      []float64
	rows     []vector
	tags     []intent.Tag
	examples []string
}

func fit(corpus intent.Corpus) (*model, error) {
	examples, tags := corpus.Flatten()
	if len(examples) == 0 {
		return nil, intent.ErrEmptyCorpus
	}

	vocab := make(map[string]int)
	docs := make([][]string, len(examples))
	for i, ex := range examples {
		docs[i] = tokenize(ex)
		for _, tok := range docs[i] {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}
	if len(vocab) == 0 {
		return nil, ErrEmptyVocabulary
	}

	df := make([]int, len(vocab))
	for _, doc := range docs {
		seen := make(map[int]bool, len(doc))
		for _, tok := range doc {
			idx := vocab[tok]
			if !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	m := &model{vocab: vocab, idf: idf, tags: tags, examples: examples}
	m.rows = make([]vector, len(docs))
	for i, doc := range docs {
		m.rows[i] = m.weigh(doc)
	}
	return m, nil
}

// weigh builds the normalised tf-idf vector for tokens; unknown tokens are
// ignored.
func (m *model) weigh(tokens []string) vector {
	counts := make(map[int]float64, len(tokens))
	for _, tok := range tokens {
		if idx, ok := m.vocab[tok]; ok {
			counts[idx]++
		}
	}
	v := make(vector, 0, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := tf * m.idf[idx]
		v = append(v, term{idx: idx, w: w})
	}
	slices.SortFunc(v, func(a, b term) int { return a.idx - b.idx })
	for _, t := range v {
		norm += t.w * t.w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i].w /= norm
	}
	return v
}

// best returns the highest-scoring example. Rows are unit length, so the dot
// product is the cosine similarity. Ties go to the earliest example in
// corpus order.
func (m *model) best(text string) Prediction {
	q := m.weigh(tokenize(text))
	bestIdx, bestScore := 0, 0.0
	for i, row := range m.rows {
		if s := dot(q, row); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	// Guard against rounding just above one.
	if bestScore > 1 {
		bestScore = 1
	}
	return Prediction{Tag: m.tags[bestIdx], Confidence: bestScore, Example: m.examples[bestIdx]}
}
