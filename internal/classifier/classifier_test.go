package classifier

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/joey/internal/intent"
)

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	c := New(intent.Embedded{})
	require.NoError(t, c.Build())
	return c
}

func TestClassify_DefaultCorpus(t *testing.T) {
	c := newDefault(t)

	tests := []struct {
		in   string
		want intent.Tag
	}{
		{"hello", intent.Greet},
		{"tell me a joke", intent.TellAJoke},
		{"what time is it", intent.TellTime},
		{"thank you so much", intent.ThankYou},
		{"goodbye", intent.StopOrExit},
		{"what's the weather like", intent.AskWeather},
		{"check my pulse please", intent.CheckHeartbeat},
		{"play some music", intent.PlayMusic},
		{"xyzzy plugh", intent.Unknown},
		{"", intent.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := c.Classify(tt.in)
			assert.Equal(t, tt.want, got.Intent)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestPredict_ExactPhraseScoresOne(t *testing.T) {
	c := newDefault(t)
	p, err := c.Predict("tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, intent.TellAJoke, p.Tag)
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
	assert.Equal(t, "tell me a joke", p.Example)
}

func TestPredict_TiesGoToEarliestExample(t *testing.T) {
	c := newDefault(t)
	// "help me" is listed under ask_for_help before emergency_call.
	p, err := c.Predict("help me")
	require.NoError(t, err)
	assert.Equal(t, intent.AskForHelp, p.Tag)
}

func TestPredict_UnknownTokensScoreZero(t *testing.T) {
	c := newDefault(t)
	p, err := c.Predict("zzz qqq")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Confidence)
}

func thresholdCorpus() (intent.Corpus, error) {
	return intent.Corpus{
		{Tag: intent.EmergencyCall, Phrases: []string{"danger zone ahead now"}},
		{Tag: intent.Greet, Phrases: []string{"quiet harbour view here"}},
	}, nil
}

func TestClassify_EmergencyNeedsElevatedConfidence(t *testing.T) {
	c := New(SourceFunc(thresholdCorpus))
	require.NoError(t, c.Build())

	// One of four equally weighted terms: cosine 0.5.
	p, err := c.Predict("danger")
	require.NoError(t, err)
	assert.Equal(t, intent.EmergencyCall, p.Tag)
	assert.InDelta(t, 0.5, p.Confidence, 1e-9)

	got := c.Classify("danger")
	assert.Equal(t, intent.Unknown, got.Intent)
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)

	// The same score is enough for an ordinary intent.
	got = c.Classify("quiet")
	assert.Equal(t, intent.Greet, got.Intent)
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)

	// Two of four terms: cosine 1/sqrt(2).
	got = c.Classify("danger zone")
	assert.Equal(t, intent.EmergencyCall, got.Intent)
	assert.InDelta(t, 1/math.Sqrt2, got.Confidence, 1e-9)
}

func TestClassify_Thresholds(t *testing.T) {
	c := New(SourceFunc(thresholdCorpus), WithThreshold(0.6), WithEmergencyThreshold(0.8))
	require.NoError(t, c.Build())

	assert.Equal(t, intent.Unknown, c.Classify("quiet").Intent)
	assert.Equal(t, intent.Unknown, c.Classify("danger zone").Intent)
	assert.Equal(t, intent.EmergencyCall, c.Classify("danger zone ahead").Intent)
}

func TestBuild_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		src  Source
		want error
	}{
		{"source error", SourceFunc(func() (intent.Corpus, error) { return nil, boom }), boom},
		{"empty corpus", SourceFunc(func() (intent.Corpus, error) { return intent.Corpus{}, nil }), intent.ErrEmptyCorpus},
		{"single char tokens", SourceFunc(func() (intent.Corpus, error) {
			return intent.Corpus{{Tag: intent.Greet, Phrases: []string{"a b", "c"}}}, nil
		}), ErrEmptyVocabulary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.src)
			err := c.Build()
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, c.Ready())
		})
	}
}

func TestPredict_RebuildsOnceWhenNotReady(t *testing.T) {
	calls := 0
	failing := true
	src := SourceFunc(func() (intent.Corpus, error) {
		calls++
		if failing {
			return nil, errors.New("corpus unavailable")
		}
		return intent.Default()
	})
	c := New(src)

	require.Error(t, c.Build())
	assert.Equal(t, 1, calls)

	_, err := c.Predict("hello")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 2, calls, "one rebuild per query")

	got := c.Classify("hello")
	assert.Equal(t, intent.Unknown, got.Intent)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, 3, calls)

	failing = false
	got = c.Classify("hello")
	assert.Equal(t, intent.Greet, got.Intent)
	assert.True(t, c.Ready())
	assert.Equal(t, 4, calls)

	// Fitted: no further loads.
	c.Classify("hello")
	assert.Equal(t, 4, calls)
}

func TestOnReady_FollowsRebuild(t *testing.T) {
	failing := true
	c := New(SourceFunc(func() (intent.Corpus, error) {
		if failing {
			return nil, errors.New("corpus unavailable")
		}
		return intent.Default()
	}))
	require.Error(t, c.Build())

	var seen []bool
	c.OnReady(func(ready bool) { seen = append(seen, ready) })
	assert.Equal(t, []bool{false}, seen)

	c.Classify("hello")
	assert.Equal(t, []bool{false}, seen)

	failing = false
	assert.Equal(t, intent.Greet, c.Classify("hello").Intent)
	assert.Equal(t, []bool{false, true}, seen)

	// Already fitted: queries do not notify.
	c.Classify("hello")
	assert.Equal(t, []bool{false, true}, seen)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"what", "the", "time"}, tokenize("What's the time?"))
	assert.Equal(t, []string{"हिंदी", "मोड"}, tokenize("हिंदी मोड"))
	assert.Empty(t, tokenize("a b c"))
}
