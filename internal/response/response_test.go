package response

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/joey/internal/lang"
)

func TestLoad_EveryKeyHasBase(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	for _, k := range tbl.Keys() {
		assert.True(t, tbl.Has(k, lang.Base), "key %s", k)
	}
	for _, k := range []string{Greeting, DistressAck, ModeSwitched, Unknown, TranslatePrompt} {
		assert.Contains(t, tbl.Keys(), k)
	}
}

func TestResolve_FallsBackToBase(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	// Korean has no greeting entry.
	got := tbl.Resolve(Greeting, "ko")
	assert.Equal(t, lang.Base, got.Lang)
	assert.NotEmpty(t, got.Text)
	assert.Contains(t, []string{"Hello!", "Hi there!", "Hey!", "Greetings!", "Good to hear from you!"}, got.Text)

	got = tbl.Resolve(Greeting, "hi")
	assert.Equal(t, lang.Code("hi"), got.Lang)

	got = tbl.Resolve(Greeting, "")
	assert.Equal(t, lang.Base, got.Lang)
	assert.NotEmpty(t, got.Text)
}

func TestResolve_UnknownKey(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)
	got := tbl.Resolve("no_such_key", "es")
	assert.Empty(t, got.Text)
}

func TestRender(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	got := tbl.Render(Time, "es", Vars{"time": "03:04 PM"})
	assert.Equal(t, "La hora actual es 03:04 PM.", got.Text)
	assert.Equal(t, lang.Code("es"), got.Lang)

	got = tbl.Render(TranslateFailed, "ko", Vars{"payload": "good night", "language": "klingon"})
	assert.Equal(t, "Sorry, I couldn't translate 'good night' to klingon.", got.Text)
	assert.Equal(t, lang.Base, got.Lang)
}

func TestResolve_VariantsWithSeededRand(t *testing.T) {
	tbl, err := Load(WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)

	seen := map[string]bool{}
	for range 200 {
		seen[tbl.Resolve(ThankYou, lang.Base).Text] = true
	}
	assert.Len(t, seen, 4, "all variants are reachable")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  string
	}{
		{"missing base", "greeting:\n  es: [\"¡Hola!\"]\n", "missing \"en\""},
		{"unknown language", "greeting:\n  en: [hi]\n  xx: [yo]\n", "unknown language"},
		{"empty variants", "greeting:\n  en: []\n", "no templates"},
		{"bad yaml", "greeting: [", "parsing response table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestFill(t *testing.T) {
	assert.Equal(t, "Hello Ada, {unknown}", Fill("Hello {name}, {unknown}", Vars{"name": "Ada"}))
	assert.Equal(t, "plain", Fill("plain", nil))
}
