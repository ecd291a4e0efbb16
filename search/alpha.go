package search

import "strings"

// Fusion weights selected by AdaptiveAlpha. Alpha is the share of the fused
// score contributed by the semantic (vector) leg.
const (
	AlphaSemanticHeavy = 0.7
	AlphaBalanced      = 0.5
	AlphaKeywordHeavy  = 0.3
)

// semanticCues mark queries about atmosphere and feel, which embeddings
// capture far better than term matching.
var semanticCues = []string{
	"romantic", "quiet", "cozy", "intimate", "relax", "luxury", "scenic",
	"atmosphere", "peaceful", "charming",
	// Korean
	"조용한", "로맨틱", "아늑한", "분위기", "고급스러운", "편안한",
}

// keywordCues mark queries about concrete facilities and locations, where
// exact term matching outperforms embeddings.
var keywordCues = []string{
	"near", "nearby", "center", "close", "breakfast", "parking", "pool",
	"wifi", "gym", "station", "airport", "free",
	// Korean
	"주차", "근처", "중심", "역", "조식", "수영장", "무료", "공항",
}

// AdaptiveAlpha picks the vector-vs-lexical fusion weight for a query by
// counting which cue vocabulary it leans on. Queries dominated by atmosphere
// terms get a semantic-heavy weight, queries dominated by facility and
// location terms get a keyword-heavy weight, and everything else stays
// balanced. The function is pure: same text, same weight.
func AdaptiveAlpha(text string) float64 {
	lower := strings.ToLower(text)

	semantic := 0
	for _, cue := range semanticCues {
		if strings.Contains(lower, cue) {
			semantic++
		}
	}
	keyword := 0
	for _, cue := range keywordCues {
		if strings.Contains(lower, cue) {
			keyword++
		}
	}

	switch {
	case semantic > keyword:
		return AlphaSemanticHeavy
	case keyword > semantic:
		return AlphaKeywordHeavy
	default:
		return AlphaBalanced
	}
}
