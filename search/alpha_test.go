package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptiveAlpha(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  float64
	}{
		{"atmosphere query is semantic-heavy", "a romantic quiet getaway", AlphaSemanticHeavy},
		{"facility query is keyword-heavy", "free parking near the center", AlphaKeywordHeavy},
		{"neutral query stays balanced", "hotel in paris", AlphaBalanced},
		{"mixed cues cancel out", "quiet hotel with parking", AlphaBalanced},
		{"korean atmosphere cue", "조용한 호텔 추천해줘", AlphaSemanticHeavy},
		{"korean facility cue", "무료 주차 되는 호텔", AlphaKeywordHeavy},
		{"empty query", "", AlphaBalanced},
		{"case insensitive", "ROMANTIC LUXURY suite", AlphaSemanticHeavy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AdaptiveAlpha(tt.query), 1e-9)
		})
	}
}

func TestAdaptiveAlphaIsPure(t *testing.T) {
	query := "cozy room near the station"
	first := AdaptiveAlpha(query)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AdaptiveAlpha(query))
	}
}
