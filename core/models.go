package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Indexed documents use content-based hashing so that identical
// reviews produce identical IDs across reindex runs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TurnOutcome is the terminal signal of one workflow traversal.
type TurnOutcome int

const (
	// OutcomeContinue means the turn has not reached a stopping state yet.
	OutcomeContinue TurnOutcome = iota + 1
	// OutcomeAwaitingFeedback means the turn stopped to collect a follow-up message.
	OutcomeAwaitingFeedback
	// OutcomeDone means the session's current exchange is complete.
	OutcomeDone
)

// String returns the outcome name for logging.
func (o TurnOutcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeAwaitingFeedback:
		return "awaiting_feedback"
	case OutcomeDone:
		return "done"
	default:
		return "unknown"
	}
}

// TravelQuery is the structured form of a user's travel request.
// It is written once by query parsing and may be partially revised
// by a re-parse feedback loop.
type TravelQuery struct {
	Destination string
	CheckIn     time.Time
	CheckOut    time.Time
	PartySize   int
	BudgetMax   float64
	Atmosphere  []string // soft preference terms (mood/style)
	Amenities   []string // soft preference terms (literal facilities)
}

// Preferences returns the combined soft preference terms.
func (q *TravelQuery) Preferences() []string {
	prefs := make([]string, 0, len(q.Atmosphere)+len(q.Amenities))
	prefs = append(prefs, q.Atmosphere...)
	prefs = append(prefs, q.Amenities...)
	return prefs
}

// PreferenceText returns the soft preference terms joined into one string.
// Used by adaptive fusion weighting, which classifies preference text only.
func (q *TravelQuery) PreferenceText() string {
	return strings.Join(q.Preferences(), " ")
}

// HasDestination reports whether the query names a place to search.
func (q *TravelQuery) HasDestination() bool {
	return q != nil && q.Destination != ""
}

// Clone returns a deep copy of the query.
func (q *TravelQuery) Clone() *TravelQuery {
	if q == nil {
		return nil
	}
	c := *q
	c.Atmosphere = append([]string(nil), q.Atmosphere...)
	c.Amenities = append([]string(nil), q.Amenities...)
	return &c
}

// ReviewDocument is one indexed hotel review.
// Documents are stored with their embedding vector so the index can
// serve both lexical and vector retrieval legs.
type ReviewDocument struct {
	Id          ID
	HotelName   string
	Location    string
	Rating      float64
	ReviewCount int
	ReviewTitle string
	ReviewText  string
	Tags        []string
	PriceNight  float64 // heuristic nightly price estimate, 0 = unknown
	Vector      []float32
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Candidate is one retrievable item produced by hybrid retrieval.
// FusedScore is derived only from the lexical and vector sub-scores
// under the active fusion weight; re-ranking may reorder candidates
// but never rewrites FusedScore.
type Candidate struct {
	Id           ID
	HotelName    string
	Location     string
	Rating       float64
	ReviewCount  int
	Snippet      string
	Tags         []string
	LexicalScore float64
	VectorScore  float64
	FusedScore   float64
	Rank         int
	Decorations  map[string]string // populated by enrichment, never reordered by it
}

// Decorate attaches an enrichment key/value to the candidate.
func (c *Candidate) Decorate(key, value string) {
	if c.Decorations == nil {
		c.Decorations = make(map[string]string)
	}
	c.Decorations[key] = value
}

// SearchFilters is the structured filter set applied during retrieval.
// Location, MinRating, and MaxPrice are hard filters; RequireTags carries
// the soft preference terms that the relaxation fallback drops first.
type SearchFilters struct {
	Location    string
	MinRating   float64
	MaxPrice    float64
	RequireTags []string
}

// Clone returns a deep copy of the filters.
func (f SearchFilters) Clone() SearchFilters {
	c := f
	c.RequireTags = append([]string(nil), f.RequireTags...)
	return c
}

// DayForecast is one day of weather enrichment.
type DayForecast struct {
	Date          time.Time
	TempMin       float64
	TempMax       float64
	Precipitation float64
	WeatherCode   int
	Description   string
}

// PriceQuote is a nightly price attached to a candidate by enrichment.
type PriceQuote struct {
	Nightly   float64
	Currency  string
	Source    string
	Estimated bool
}

// SafetyInfo carries destination-country facts for the generation step.
type SafetyInfo struct {
	Country   string
	Region    string
	Capital   string
	Currency  string
	Languages []string
	Tips      []string
}

// Activity slots. SlotSpecial marks a destination-signature experience not
// tied to any particular day; SlotAnytime marks a generic suggestion for
// destinations without a curated catalog.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
	SlotSpecial   = "special"
	SlotAnytime   = "anytime"
)

// ActivitySuggestion is one recommended activity for a stay.
// Day is the 1-based stay day; SlotSpecial and SlotAnytime entries carry
// Day 0 because they are not pinned to a day.
type ActivitySuggestion struct {
	Day      int
	Slot     string
	Name     string
	Duration string
	Cost     string
}

// Enrichment aggregates auxiliary data attached to a turn.
// Every field is optional: absence means "not available", never an error.
type Enrichment struct {
	Weather    []DayForecast
	LivePrice  map[ID]PriceQuote
	Safety     *SafetyInfo
	FxRates    map[string]float64
	Activities []ActivitySuggestion
}

// ChatMessage is one entry in a session's bounded chat history.
type ChatMessage struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxChatHistory bounds the per-session chat history ring.
const MaxChatHistory = 20

// SessionMemory is the durable per-session memory.
// History fields are append-only during a turn; the orchestrator
// snapshots and restores the whole structure around generation.
type SessionMemory struct {
	SearchHistory      []TravelQuery
	RejectedIds        map[ID]bool
	LearnedPreferences map[string]float64
	ChatHistory        []ChatMessage
}

// NewSessionMemory returns an empty, initialized memory.
func NewSessionMemory() *SessionMemory {
	return &SessionMemory{
		RejectedIds:        make(map[ID]bool),
		LearnedPreferences: make(map[string]float64),
	}
}

// AppendSearch records a parsed-intent snapshot. Append-only.
func (m *SessionMemory) AppendSearch(q TravelQuery) {
	snapshot := *q.Clone()
	m.SearchHistory = append(m.SearchHistory, snapshot)
}

// AddMessage appends a chat message, trimming the history to MaxChatHistory.
func (m *SessionMemory) AddMessage(role, content string) {
	m.ChatHistory = append(m.ChatHistory, ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if len(m.ChatHistory) > MaxChatHistory {
		m.ChatHistory = m.ChatHistory[len(m.ChatHistory)-MaxChatHistory:]
	}
}

// LearnPreference raises the weight of a learned preference term.
func (m *SessionMemory) LearnPreference(term string, weight float64) {
	if m.LearnedPreferences == nil {
		m.LearnedPreferences = make(map[string]float64)
	}
	m.LearnedPreferences[term] += weight
}

// Clone returns a deep copy used for pre-generation snapshots.
func (m *SessionMemory) Clone() *SessionMemory {
	if m == nil {
		return nil
	}
	c := &SessionMemory{
		SearchHistory:      make([]TravelQuery, 0, len(m.SearchHistory)),
		RejectedIds:        make(map[ID]bool, len(m.RejectedIds)),
		LearnedPreferences: make(map[string]float64, len(m.LearnedPreferences)),
		ChatHistory:        append([]ChatMessage(nil), m.ChatHistory...),
	}
	for _, q := range m.SearchHistory {
		c.SearchHistory = append(c.SearchHistory, *q.Clone())
	}
	for id, v := range m.RejectedIds {
		c.RejectedIds[id] = v
	}
	for k, v := range m.LearnedPreferences {
		c.LearnedPreferences[k] = v
	}
	return c
}

// ConversationState is the single mutable record threaded through every
// workflow step. It is owned exclusively by the orchestrator for the
// duration of one turn; each step reads any field and writes only the
// fields it owns.
type ConversationState struct {
	SessionId string

	// RawQuery is immutable once set for a turn.
	RawQuery string

	// Parsed is written by query parsing, revised only by re-parse feedback.
	Parsed *TravelQuery

	// Candidates are written by retrieval, reordered by re-ranking,
	// decorated (not reordered) by enrichment.
	Candidates []*Candidate

	// SearchRelaxed and RelaxationNote are set when fallback search ran.
	SearchRelaxed  bool
	RelaxationNote string

	// Enrichment fields are each owned by their respective collaborator.
	Enrichment Enrichment

	// Memory persists across turns within a session.
	Memory *SessionMemory

	// Response is the generated text for the turn.
	Response string

	// Outcome is the terminal signal checked after each turn.
	Outcome TurnOutcome

	// ExecutionPath traces the states visited this turn.
	ExecutionPath []string
}
