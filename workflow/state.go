package workflow

// State is one node of the turn state machine. The set is closed: every
// routing decision picks from this enum and nowhere else, so the transition
// table stays exhaustively testable.
type State int

const (
	StateParseQuery State = iota + 1
	StateRoute
	StateRetrieveCandidates
	StateEnrichParallel
	StateGenerateResponse
	StateAwaitFeedback
	StateDone
)

// String returns the state name used in execution path traces.
func (s State) String() string {
	switch s {
	case StateParseQuery:
		return "parse_query"
	case StateRoute:
		return "route"
	case StateRetrieveCandidates:
		return "retrieve_candidates"
	case StateEnrichParallel:
		return "enrich_parallel"
	case StateGenerateResponse:
		return "generate_response"
	case StateAwaitFeedback:
		return "await_feedback"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
