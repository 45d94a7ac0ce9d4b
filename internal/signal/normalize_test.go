package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Run("lowercases and reverses leetspeak", func(t *testing.T) {
		assert.Equal(t, "loser", NormalizeText("L0s3r"))
		assert.Equal(t, "stupid", NormalizeText("5tup!d"))
	})

	t.Run("collapses separator obfuscation", func(t *testing.T) {
		assert.Equal(t, "loser", NormalizeText("l-o-s-e-r"))
		assert.Equal(t, "bad", NormalizeText("b.a.d"))
		assert.Equal(t, "hate", NormalizeText("h*a*t*e"))
	})

	t.Run("preserves domain-shaped tokens", func(t *testing.T) {
		assert.Equal(t, "example.com", NormalizeText("Example.Com"))
		assert.Contains(t, NormalizeText("click https://evil.example.com/login now"), "evil.example.com/login")
	})

	t.Run("strips arabic diacritics and tatweel", func(t *testing.T) {
		assert.Equal(t, "غبي", NormalizeText("غَبِيّ"))
		assert.Equal(t, "فاشل", NormalizeText("فاشـــل"))
	})

	t.Run("drops punctuation into word boundaries", func(t *testing.T) {
		assert.Equal(t, "hey you come here", NormalizeText("hey, you; come here?"))
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeText(""))
	})
}

func TestTokenize(t *testing.T) {
	t.Run("splits on non alphanumerics and drops single runes", func(t *testing.T) {
		assert.Equal(t, []string{"send", "photo", "now"}, Tokenize("send photo now"))
		assert.Equal(t, []string{"evil", "example", "com"}, Tokenize("evil.example.com"))
	})

	t.Run("keeps two rune arabic tokens", func(t *testing.T) {
		tokens := Tokenize("غبي جدا")
		assert.Equal(t, []string{"غبي", "جدا"}, tokens)
	})

	t.Run("empty input yields no tokens", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
	})
}
