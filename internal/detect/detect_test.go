package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/joey/internal/lang"
)

func TestLingua_Detect(t *testing.T) {
	d := NewLingua()

	tests := []struct {
		text string
		want lang.Code
	}{
		{"what is the weather like in the city today", "en"},
		{"¿qué tiempo hace hoy en la ciudad? me gustaría saberlo", "es"},
		{"quel temps fait-il aujourd'hui dans la ville", "fr"},
		{"wie ist das wetter heute in der stadt", "de"},
		{"आज शहर में मौसम कैसा है", "hi"},
		{"сегодня в городе хорошая погода", "ru"},
		{"ok", lang.Base},
		{"", lang.Base},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestCodesAreSupported(t *testing.T) {
	for l, code := range codes {
		_, ok := lang.Lookup(code)
		assert.True(t, ok, "%s maps to unsupported %q", l, code)
	}
	assert.Len(t, codes, len(lang.All()))
}

func TestNop(t *testing.T) {
	assert.Equal(t, lang.Base, Nop{}.Detect("hola amigo"))
}
