package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_EveryAliasMapsToItsCode(t *testing.T) {
	for _, l := range All() {
		got, ok := Resolve(string(l.Code))
		require.True(t, ok, "code %s", l.Code)
		assert.Equal(t, l.Code, got)

		got, ok = Resolve(l.Name)
		require.True(t, ok, "name %s", l.Name)
		assert.Equal(t, l.Code, got)

		for _, a := range l.Aliases {
			got, ok := Resolve(a)
			require.True(t, ok, "alias %q", a)
			assert.Equal(t, l.Code, got, "alias %q", a)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want Code
		ok   bool
	}{
		{"hindi", "hi", true},
		{"HINDI", "hi", true},
		{"  Spanish ", "es", true},
		{"español", "es", true},
		{"বাংলা", "bn", true},
		{"اردو", "ur", true},
		{"zh-cn", "zh-CN", true},
		{"zh", "zh-CN", true},
		{"default", "en", true},
		{"klingon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Resolve(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAliases_ExcludeBareCodes(t *testing.T) {
	aliases := Aliases()
	assert.Contains(t, aliases, "hindi")
	assert.Contains(t, aliases, "bangla")
	assert.NotContains(t, aliases, "hi")
	assert.NotContains(t, aliases, "it")
	assert.NotContains(t, aliases, "zh")

	for i := 1; i < len(aliases); i++ {
		assert.GreaterOrEqual(t, len(aliases[i-1]), len(aliases[i]))
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "Hindi", Name("hi"))
	assert.Equal(t, "Chinese", Name("zh-CN"))
	assert.Equal(t, "xx", Name("xx"))
	assert.Equal(t, Code("en"), Code("").Or(Base))
	assert.Equal(t, Code("hi"), Code("hi").Or(Base))
}
