package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/itinera/core"
)

// catalogEntry is one activity in the local catalog.
type catalogEntry struct {
	Name          string
	Duration      string
	Cost          string
	GroupFriendly bool
}

// Activity catalog, split by the slot it suits. Wet days swap the outdoor
// slots for the indoor list.
var (
	indoorActivities = []catalogEntry{
		{Name: "museum visit", Duration: "2-3 hours", Cost: "low", GroupFriendly: true},
		{Name: "art gallery tour", Duration: "2-3 hours", Cost: "low", GroupFriendly: true},
		{Name: "cooking class", Duration: "3 hours", Cost: "medium", GroupFriendly: true},
		{Name: "cafe tour", Duration: "1 hour", Cost: "low", GroupFriendly: true},
		{Name: "shopping", Duration: "2-4 hours", Cost: "variable", GroupFriendly: true},
	}
	outdoorActivities = []catalogEntry{
		{Name: "park walk", Duration: "1-2 hours", Cost: "free", GroupFriendly: true},
		{Name: "trekking", Duration: "3-5 hours", Cost: "free", GroupFriendly: true},
		{Name: "photo walk", Duration: "2-3 hours", Cost: "low", GroupFriendly: false},
		{Name: "bike tour", Duration: "2-3 hours", Cost: "low", GroupFriendly: true},
		{Name: "boat tour", Duration: "1-2 hours", Cost: "medium", GroupFriendly: true},
	}
	eveningActivities = []catalogEntry{
		{Name: "dinner out", Duration: "2 hours", Cost: "medium", GroupFriendly: true},
		{Name: "musical performance", Duration: "3 hours", Cost: "high", GroupFriendly: true},
		{Name: "live music bar", Duration: "2-3 hours", Cost: "medium", GroupFriendly: true},
		{Name: "night view tour", Duration: "1-2 hours", Cost: "medium", GroupFriendly: true},
		{Name: "stand-up comedy", Duration: "1-2 hours", Cost: "medium", GroupFriendly: true},
	}
)

// cityLandmarks gates which destinations get a full day-by-day plan and
// feeds the landmark circuit suggestion.
var cityLandmarks = map[string][]string{
	"Paris":    {"Eiffel Tower", "Louvre", "Notre-Dame"},
	"Tokyo":    {"Senso-ji", "Shibuya", "Meiji Shrine"},
	"Seoul":    {"Gyeongbokgung", "Myeongdong", "Hangang Park"},
	"London":   {"Big Ben", "Tower Bridge", "British Museum"},
	"New York": {"Statue of Liberty", "Central Park", "Times Square"},
}

// specialExperiences are curated destination-signature activities.
var specialExperiences = map[string][]catalogEntry{
	"Paris": {
		{Name: "Eiffel Tower night view", Duration: "1 hour", Cost: "medium", GroupFriendly: true},
		{Name: "Seine river cruise", Duration: "1 hour", Cost: "medium", GroupFriendly: true},
		{Name: "Montmartre walking tour", Duration: "2 hours", Cost: "low", GroupFriendly: true},
	},
	"Tokyo": {
		{Name: "tea ceremony", Duration: "1 hour", Cost: "medium", GroupFriendly: true},
		{Name: "go-kart city tour", Duration: "3 hours", Cost: "high", GroupFriendly: true},
		{Name: "sushi masterclass", Duration: "2 hours", Cost: "high", GroupFriendly: true},
	},
	"Seoul": {
		{Name: "traditional martial arts class", Duration: "1 hour", Cost: "medium", GroupFriendly: true},
		{Name: "drama filming location tour", Duration: "2 hours", Cost: "medium", GroupFriendly: true},
		{Name: "K-pop concert", Duration: "3 hours", Cost: "high", GroupFriendly: true},
	},
}

// genericActivities cover destinations outside the catalog.
var genericActivities = []catalogEntry{
	{Name: "museum visit", Duration: "2-3 hours", Cost: "low", GroupFriendly: true},
	{Name: "park walk", Duration: "1-2 hours", Cost: "free", GroupFriendly: true},
	{Name: "local food tasting", Duration: "2 hours", Cost: "medium", GroupFriendly: true},
}

const (
	suggestionsPerSlot = 3
	defaultStayDays    = 3
	maxStayDays        = 7
)

// LocalActivities is an ActivityProvider backed by a built-in catalog
// instead of a live events API. Suggestions follow the stay day by day:
// morning and afternoon lean outdoor unless the forecast is wet, evenings
// draw from the evening list, and catalog destinations get their signature
// experiences on top.
type LocalActivities struct {
	logger *slog.Logger
}

var _ ActivityProvider = (*LocalActivities)(nil)

// ActivityOption configures a LocalActivities.
type ActivityOption func(*LocalActivities)

// WithActivityLogger sets a custom logger.
// Default is slog.Default().
func WithActivityLogger(logger *slog.Logger) ActivityOption {
	return func(a *LocalActivities) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewLocalActivities creates a catalog-backed activity provider.
func NewLocalActivities(opts ...ActivityOption) *LocalActivities {
	a := &LocalActivities{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Suggest implements ActivityProvider. Destinations outside the catalog get
// a short generic list rather than nothing.
func (a *LocalActivities) Suggest(ctx context.Context, destination string, checkIn, checkOut time.Time, partySize int, forecast []core.DayForecast) ([]core.ActivitySuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	landmarks, supported := cityLandmarks[destination]
	if !supported {
		a.logger.Debug("destination outside the activity catalog", "destination", destination)
		return genericSuggestions(), nil
	}

	days := stayDays(checkIn, checkOut)
	out := make([]core.ActivitySuggestion, 0, days*3*suggestionsPerSlot)
	for day := 1; day <= days; day++ {
		wet := wetDay(forecast, day-1)
		for _, slot := range []string{core.SlotMorning, core.SlotAfternoon, core.SlotEvening} {
			for _, entry := range slotEntries(slot, wet, partySize) {
				out = append(out, core.ActivitySuggestion{
					Day:      day,
					Slot:     slot,
					Name:     entry.Name,
					Duration: entry.Duration,
					Cost:     entry.Cost,
				})
			}
		}
	}

	out = append(out, core.ActivitySuggestion{
		Slot:     core.SlotSpecial,
		Name:     "landmark circuit: " + strings.Join(landmarks, ", "),
		Duration: "half day",
		Cost:     "low",
	})
	for _, entry := range specialExperiences[destination] {
		out = append(out, core.ActivitySuggestion{
			Slot:     core.SlotSpecial,
			Name:     entry.Name,
			Duration: entry.Duration,
			Cost:     entry.Cost,
		})
	}
	return out, nil
}

// slotEntries picks the catalog for a slot and returns the top suggestions.
// Evenings keep the evening list even on wet days since most of it is
// already indoors; groups skip entries that do not suit more than one
// person.
func slotEntries(slot string, wet bool, partySize int) []catalogEntry {
	var pool []catalogEntry
	switch {
	case slot == core.SlotEvening:
		pool = eveningActivities
	case wet:
		pool = indoorActivities
	default:
		pool = outdoorActivities
	}

	picked := make([]catalogEntry, 0, suggestionsPerSlot)
	for _, entry := range pool {
		if partySize > 1 && !entry.GroupFriendly {
			continue
		}
		picked = append(picked, entry)
		if len(picked) == suggestionsPerSlot {
			break
		}
	}
	return picked
}

// stayDays counts nights-inclusive stay days the same way the forecast
// window does. Missing dates fall back to a short default plan.
func stayDays(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() || checkOut.Before(checkIn) {
		return defaultStayDays
	}
	days := int(checkOut.Sub(checkIn).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if days > maxStayDays {
		days = maxStayDays
	}
	return days
}

// wetDay reports whether the forecast for the given 0-based stay day calls
// for precipitation. Days past the forecast horizon count as dry.
func wetDay(forecast []core.DayForecast, idx int) bool {
	if idx < 0 || idx >= len(forecast) {
		return false
	}
	d := forecast[idx]
	if d.Precipitation > 0 {
		return true
	}
	desc := strings.ToLower(d.Description)
	return strings.Contains(desc, "rain") ||
		strings.Contains(desc, "drizzle") ||
		strings.Contains(desc, "snow") ||
		strings.Contains(desc, "thunderstorm")
}

func genericSuggestions() []core.ActivitySuggestion {
	out := make([]core.ActivitySuggestion, 0, len(genericActivities))
	for _, entry := range genericActivities {
		out = append(out, core.ActivitySuggestion{
			Slot:     core.SlotAnytime,
			Name:     entry.Name,
			Duration: entry.Duration,
			Cost:     entry.Cost,
		})
	}
	return out
}
