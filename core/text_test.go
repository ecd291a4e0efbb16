package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Run("lowercases and trims punctuation", func(t *testing.T) {
		tokens := Tokenize("Quiet, romantic hotel!")
		assert.Equal(t, []string{"quiet", "romantic", "hotel"}, tokens)
	})

	t.Run("removes stop words", func(t *testing.T) {
		tokens := Tokenize("a hotel in the center of Paris")
		assert.Equal(t, []string{"hotel", "center", "paris"}, tokens)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
	})
}

func TestOverlapRatio(t *testing.T) {
	t.Run("full overlap", func(t *testing.T) {
		assert.Equal(t, 1.0, OverlapRatio("quiet hotel", "quiet little hotel near center"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		assert.Equal(t, 0.5, OverlapRatio("quiet pool", "quiet hotel"))
	})

	t.Run("empty query scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, OverlapRatio("", "quiet hotel"))
	})

	t.Run("empty document scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, OverlapRatio("quiet hotel", ""))
	})
}
