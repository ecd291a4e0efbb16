package ai

import "github.com/poiesic/itinera/core"

// StateView is the read-only projection of a conversation turn handed to a
// ResponseGenerator. It carries everything the generator may mention but
// nothing it may mutate.
type StateView struct {
	// Query is the raw user utterance for this turn.
	Query string

	// Parsed is the structured intent extracted from the query, if any.
	Parsed *core.TravelQuery

	// Candidates are the ranked hotel candidates for this turn, best first.
	Candidates []*core.Candidate

	// SearchRelaxed indicates retrieval had to drop constraints to find
	// enough candidates. RelaxationNote describes what was dropped so the
	// generated reply can disclose it to the user.
	SearchRelaxed  bool
	RelaxationNote string

	// Enrichment holds weather, price, currency and safety data gathered for
	// the candidates. Nil fields mean the data was unavailable this turn.
	Enrichment *core.Enrichment

	// ChatHistory is the recent conversation, oldest first.
	ChatHistory []core.ChatMessage

	// LearnedPreferences are the session's accumulated preference weights.
	LearnedPreferences map[string]float64
}

// RequestSatisfied reports whether the turn fully answered the request:
// candidates were found without relaxing the search, and the parsed intent
// carries a destination and stay dates. Generators use it to decide between
// closing the request and asking the user to refine it.
func (v *StateView) RequestSatisfied() bool {
	if len(v.Candidates) == 0 || v.SearchRelaxed {
		return false
	}
	p := v.Parsed
	return p != nil && p.Destination != "" && !p.CheckIn.IsZero()
}

// GeneratedResponse is the result of composing a reply.
type GeneratedResponse struct {
	// Text is the assistant's reply, ready to show to the user.
	Text string

	// NeedsFeedback is true when the reply presents options and expects the
	// user to pick or refine, rather than closing out the request.
	NeedsFeedback bool
}
