package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tags := c.Tags()
	assert.Contains(t, tags, Greet)
	assert.Contains(t, tags, EmergencyCall)
	assert.NotContains(t, tags, Unknown)

	for _, e := range c {
		if e.Tag == SetLanguageMode {
			assert.Equal(t, []string{"change language", "switch language", "set language"}, e.Phrases)
		}
	}

	phrases, ptags := c.Flatten()
	assert.Len(t, phrases, c.Len())
	assert.Len(t, ptags, c.Len())
	assert.Equal(t, "hello", phrases[0])
	assert.Equal(t, Greet, ptags[0])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("intents: []"))
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Parse([]byte("intents: [{tag: a, phrases: [x]}, {tag: a, phrases: [y]}]"))
	assert.ErrorContains(t, err, "duplicate tag")

	_, err = Parse([]byte("intents: [{phrases: [x]}]"))
	assert.ErrorContains(t, err, "without tag")

	_, err = Parse([]byte(":::"))
	assert.Error(t, err)
}
