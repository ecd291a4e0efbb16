package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/enrich"
	"github.com/poiesic/itinera/search"
)

// Learned-preference keys with numeric filter meaning rather than a soft term.
const (
	prefMaxPrice  = "max_price"
	prefMinRating = "min_rating"
)

const (
	clarificationText = "I didn't quite catch that. Where would you like to travel, and roughly when?"
	farewellText      = "Safe travels! I've kept your preferences in mind for next time."
	searchDownNote    = "Hotel search is temporarily unavailable, so I could not look anything up this time."
)

// Orchestrator advances conversation turns through the state machine.
type Orchestrator struct {
	engine    *search.Engine
	parser    ai.QueryParser
	generator ai.ResponseGenerator
	fanout    *enrich.Fanout
	router    *FeedbackRouter
	logger    *slog.Logger
	now       func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithFanout sets the enrichment dispatcher. Without one, enrichment is
// skipped entirely and turns proceed straight to generation.
func WithFanout(fanout *enrich.Fanout) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.fanout = fanout
		return nil
	}
}

// WithFeedbackRouter sets a custom feedback router.
func WithFeedbackRouter(router *FeedbackRouter) OrchestratorOption {
	return func(o *Orchestrator) error {
		if router != nil {
			o.router = router
		}
		return nil
	}
}

// WithClock sets the time source used for relative date resolution.
// Intended for tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) error {
		if now != nil {
			o.now = now
		}
		return nil
	}
}

// NewOrchestrator creates a turn orchestrator.
func NewOrchestrator(engine *search.Engine, provider ai.Provider, opts ...OrchestratorOption) (*Orchestrator, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	o := &Orchestrator{
		engine:    engine,
		parser:    provider.QueryParser(),
		generator: provider.ResponseGenerator(),
		router:    NewFeedbackRouter(),
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Advance processes exactly one user message through the state machine and
// returns control at a stopping state: the returned state's Outcome is
// either awaiting-feedback or done. Only ErrParseFailure and
// ErrGenerationFailure escape as errors; every other step failure degrades
// into state fields the generated response can mention.
func (o *Orchestrator) Advance(ctx context.Context, state *core.ConversationState, message string) (*core.ConversationState, error) {
	if state == nil {
		state = &core.ConversationState{}
	}
	if state.Memory == nil {
		state.Memory = core.NewSessionMemory()
	}

	current := StateParseQuery
	if state.Outcome == core.OutcomeAwaitingFeedback {
		current = StateAwaitFeedback
	}

	// Reset per-turn fields
	state.RawQuery = message
	state.Response = ""
	state.ExecutionPath = nil
	state.SearchRelaxed = false
	state.RelaxationNote = ""
	state.Enrichment = core.Enrichment{}
	state.Outcome = core.OutcomeContinue

	for {
		state.ExecutionPath = append(state.ExecutionPath, current.String())

		switch current {
		case StateAwaitFeedback:
			current = o.stepFeedback(state, message)

		case StateParseQuery:
			if err := o.stepParse(ctx, state, message); err != nil {
				return state, err
			}
			current = StateRoute

		case StateRoute:
			if state.Parsed.HasDestination() {
				current = StateRetrieveCandidates
			} else {
				// Small talk or missing destination: answer directly.
				current = StateGenerateResponse
			}

		case StateRetrieveCandidates:
			o.stepRetrieve(ctx, state)
			current = StateEnrichParallel

		case StateEnrichParallel:
			o.stepEnrich(ctx, state)
			current = StateGenerateResponse

		case StateGenerateResponse:
			if err := o.stepGenerate(ctx, state); err != nil {
				return state, err
			}
			if state.Outcome == core.OutcomeAwaitingFeedback {
				current = StateAwaitFeedback
			} else {
				current = StateDone
			}
			state.ExecutionPath = append(state.ExecutionPath, current.String())
			return state, nil

		case StateDone:
			state.Outcome = core.OutcomeDone
			return state, nil
		}
	}
}

// stepFeedback classifies the incoming message and picks the next state.
func (o *Orchestrator) stepFeedback(state *core.ConversationState, message string) State {
	action, delta := o.router.Classify(message)
	o.logger.Debug("feedback classified", "action", action.String(), "session", state.SessionId)

	switch action {
	case ActionTerminate:
		state.Memory.AddMessage(core.RoleUser, message)
		state.Response = farewellText
		state.Memory.AddMessage(core.RoleAssistant, farewellText)
		return StateDone

	case ActionReparse:
		// stepParse appends the user message once parsing succeeds.
		return StateParseQuery

	case ActionRetrySearch:
		state.Memory.AddMessage(core.RoleUser, message)
		o.mergeDelta(state, delta)
		return StateRetrieveCandidates

	default: // ActionContinueChat
		state.Memory.AddMessage(core.RoleUser, message)
		return StateGenerateResponse
	}
}

// mergeDelta folds feedback deltas into learned preferences and rejections
// before retrieval runs again.
func (o *Orchestrator) mergeDelta(state *core.ConversationState, delta *QueryDelta) {
	if delta == nil {
		return
	}
	if delta.MaxPrice > 0 {
		state.Memory.LearnedPreferences[prefMaxPrice] = delta.MaxPrice
	}
	for _, term := range delta.Preferences {
		state.Memory.LearnPreference(term, 1.0)
	}
	if delta.RejectShown {
		for _, c := range state.Candidates {
			state.Memory.RejectedIds[c.Id] = true
		}
	}
}

func (o *Orchestrator) stepParse(ctx context.Context, state *core.ConversationState, message string) error {
	parsed, err := o.parser.ParseQuery(ctx, message, o.now())
	if err != nil {
		o.logger.Error("query parse failed", "session", state.SessionId, "err", err)
		state.Response = clarificationText
		state.Outcome = core.OutcomeDone
		state.ExecutionPath = append(state.ExecutionPath, StateDone.String())
		// Memory stays untouched on parse failure.
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	state.Parsed = mergeParsed(state.Parsed, parsed)
	state.Memory.AddMessage(core.RoleUser, message)
	return nil
}

// mergeParsed applies a fresh parse on top of the prior intent: fields the
// new parse specifies replace the old ones, unspecified fields carry over.
func mergeParsed(prior, next *core.TravelQuery) *core.TravelQuery {
	if prior == nil {
		return next
	}
	if next == nil {
		return prior
	}

	merged := prior.Clone()
	if next.Destination != "" {
		merged.Destination = next.Destination
	}
	if !next.CheckIn.IsZero() {
		merged.CheckIn = next.CheckIn
	}
	if !next.CheckOut.IsZero() {
		merged.CheckOut = next.CheckOut
	}
	if next.PartySize > 0 {
		merged.PartySize = next.PartySize
	}
	if next.BudgetMax > 0 {
		merged.BudgetMax = next.BudgetMax
	}
	if len(next.Atmosphere) > 0 {
		merged.Atmosphere = append([]string(nil), next.Atmosphere...)
	}
	if len(next.Amenities) > 0 {
		merged.Amenities = append([]string(nil), next.Amenities...)
	}
	return merged
}

// stepRetrieve runs relaxing retrieval. An unreachable index degrades to an
// empty candidate list plus a note, never a turn failure.
func (o *Orchestrator) stepRetrieve(ctx context.Context, state *core.ConversationState) {
	query := state.Parsed
	filters := o.buildFilters(query, state.Memory)

	alphaText := query.PreferenceText()
	if alphaText == "" {
		alphaText = state.RawQuery
	}
	alpha := search.AdaptiveAlpha(alphaText)

	result, err := o.engine.SearchWithFallback(ctx, retrievalText(query, state.RawQuery), filters, alpha)
	if err != nil {
		o.logger.Error("retrieval unavailable", "session", state.SessionId, "err", err)
		state.Candidates = nil
		state.RelaxationNote = searchDownNote
		return
	}

	state.Candidates = dropRejected(result.Candidates, state.Memory.RejectedIds)
	state.SearchRelaxed = result.Relaxed
	state.RelaxationNote = result.Note
	state.Memory.AppendSearch(*query)
}

// buildFilters derives the hard filter set from the parsed intent plus the
// session's learned preferences. A learned price cap tightens, never loosens,
// the parsed budget.
func (o *Orchestrator) buildFilters(query *core.TravelQuery, memory *core.SessionMemory) core.SearchFilters {
	filters := core.SearchFilters{
		Location:    query.Destination,
		MaxPrice:    query.BudgetMax,
		RequireTags: query.Preferences(),
	}

	if priceCap, ok := memory.LearnedPreferences[prefMaxPrice]; ok && priceCap > 0 {
		if filters.MaxPrice == 0 || priceCap < filters.MaxPrice {
			filters.MaxPrice = priceCap
		}
	}
	if floor, ok := memory.LearnedPreferences[prefMinRating]; ok && floor > filters.MinRating {
		filters.MinRating = floor
	}
	for term, weight := range memory.LearnedPreferences {
		if term == prefMaxPrice || term == prefMinRating || weight <= 0 {
			continue
		}
		filters.RequireTags = appendUnique(filters.RequireTags, term)
	}
	return filters
}

// retrievalText picks the text the retrieval legs score against: preference
// terms when the intent has them, otherwise the raw message.
func retrievalText(query *core.TravelQuery, rawQuery string) string {
	if text := query.PreferenceText(); text != "" {
		return text + " hotel"
	}
	return rawQuery
}

func dropRejected(candidates []*core.Candidate, rejected map[core.ID]bool) []*core.Candidate {
	if len(rejected) == 0 {
		return candidates
	}
	kept := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !rejected[c.Id] {
			kept = append(kept, c)
		}
	}
	return kept
}

// stepEnrich fans out to the providers. Everything here is best-effort:
// whatever did not arrive stays absent.
func (o *Orchestrator) stepEnrich(ctx context.Context, state *core.ConversationState) {
	if o.fanout == nil || state.Parsed == nil {
		return
	}

	state.Enrichment = o.fanout.Enrich(ctx, enrich.Request{
		Destination: state.Parsed.Destination,
		CheckIn:     state.Parsed.CheckIn,
		CheckOut:    state.Parsed.CheckOut,
		PartySize:   state.Parsed.PartySize,
		Candidates:  state.Candidates,
	})

	for _, c := range state.Candidates {
		if quote, ok := state.Enrichment.LivePrice[c.Id]; ok {
			c.Decorate("nightly_price", fmt.Sprintf("%.0f %s", quote.Nightly, quote.Currency))
		}
	}
}

// stepGenerate composes the reply. Memory is snapshotted first: a generation
// failure restores it so no partial write survives the turn.
func (o *Orchestrator) stepGenerate(ctx context.Context, state *core.ConversationState) error {
	snapshot := state.Memory.Clone()

	view := &ai.StateView{
		Query:              state.RawQuery,
		Parsed:             state.Parsed,
		Candidates:         state.Candidates,
		SearchRelaxed:      state.SearchRelaxed,
		RelaxationNote:     state.RelaxationNote,
		Enrichment:         &state.Enrichment,
		ChatHistory:        state.Memory.ChatHistory,
		LearnedPreferences: state.Memory.LearnedPreferences,
	}

	resp, err := o.generator.GenerateResponse(ctx, view)
	if err != nil {
		o.logger.Error("response generation failed", "session", state.SessionId, "err", err)
		state.Memory = snapshot
		state.Outcome = core.OutcomeDone
		return fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}

	state.Response = resp.Text
	state.Memory.AddMessage(core.RoleAssistant, resp.Text)

	if resp.NeedsFeedback {
		state.Outcome = core.OutcomeAwaitingFeedback
	} else {
		state.Outcome = core.OutcomeDone
	}
	return nil
}
