package workflow

import (
	"regexp"
	"strconv"
	"strings"
)

// Action is the closed classification set for feedback messages. The router
// never returns anything outside these four values, which keeps the
// orchestrator's transition handling exhaustive.
type Action int

const (
	// ActionRetrySearch re-runs retrieval with revised filters.
	ActionRetrySearch Action = iota + 1
	// ActionReparse re-parses the message because destination or dates changed.
	ActionReparse
	// ActionTerminate ends the session.
	ActionTerminate
	// ActionContinueChat answers conversationally without a new search.
	ActionContinueChat
)

// String returns the action name for logging.
func (a Action) String() string {
	switch a {
	case ActionRetrySearch:
		return "retry_search"
	case ActionReparse:
		return "reparse"
	case ActionTerminate:
		return "terminate"
	case ActionContinueChat:
		return "continue_chat"
	default:
		return "unknown"
	}
}

// QueryDelta carries the partial intent revisions extracted from a feedback
// message. Zero values mean "not mentioned".
type QueryDelta struct {
	// MaxPrice is a nightly price cap; 0 means no cap was given.
	MaxPrice float64

	// Preferences are soft terms to fold into the session's learned preferences.
	Preferences []string

	// RejectShown is true when the user turned down the presented candidates.
	RejectShown bool
}

var (
	priceCapPattern    = regexp.MustCompile(`(?i)(?:under|below|less than|max(?:imum)?|budget(?: of)?|\$)\s*\$?\s*([0-9]+)`)
	koreanPricePattern = regexp.MustCompile(`([0-9]+)\s*달러`)
)

var terminateCues = []string{
	"bye", "goodbye", "thank", "that's all", "that is all", "quit", "exit",
	"고마워", "감사합니다", "종료", "그만할게",
}

var reparseCues = []string{
	"start over", "start again", "from scratch", "restart", "instead",
	"different city", "change the dates", "처음부터", "다시 시작",
}

var rejectCues = []string{
	"other hotel", "other hotels", "different hotel", "something else",
	"show me other", "다른 호텔", "다른 곳",
}

// preferenceCues maps feedback phrasings to the canonical learned-preference
// term they imply.
var preferenceCues = []struct {
	cue  string
	term string
}{
	{"cheaper", "cheaper"},
	{"cheap", "cheaper"},
	{"저렴", "cheaper"},
	{"더 싼", "cheaper"},
	{"closer to center", "center"},
	{"closer", "center"},
	{"near the center", "center"},
	{"중심", "center"},
	{"quieter", "quiet"},
	{"더 조용한", "quiet"},
}

// FeedbackRouter classifies follow-up messages from a waiting session.
type FeedbackRouter struct{}

// NewFeedbackRouter creates a feedback router.
func NewFeedbackRouter() *FeedbackRouter {
	return &FeedbackRouter{}
}

// Classify maps a feedback message onto the closed action set, extracting
// whatever intent deltas the message carries. Classification is a pure
// function of the message text.
func (r *FeedbackRouter) Classify(message string) (Action, *QueryDelta) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return ActionContinueChat, nil
	}

	if containsAny(lower, terminateCues) {
		return ActionTerminate, nil
	}
	if containsAny(lower, reparseCues) {
		return ActionReparse, nil
	}

	delta := &QueryDelta{}

	if m := priceCapPattern.FindStringSubmatch(lower); m != nil {
		delta.MaxPrice, _ = strconv.ParseFloat(m[1], 64)
	} else if m := koreanPricePattern.FindStringSubmatch(lower); m != nil {
		delta.MaxPrice, _ = strconv.ParseFloat(m[1], 64)
	}

	delta.RejectShown = containsAny(lower, rejectCues)

	for _, pc := range preferenceCues {
		if strings.Contains(lower, pc.cue) {
			delta.Preferences = appendUnique(delta.Preferences, pc.term)
		}
	}

	if delta.MaxPrice > 0 || delta.RejectShown || len(delta.Preferences) > 0 {
		return ActionRetrySearch, delta
	}
	return ActionContinueChat, nil
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}
