package rules

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
)

// ErrEmptyUtterance is returned when there is no text to parse.
var ErrEmptyUtterance = errors.New("rules: utterance is empty")

// checkout defaults to three nights when only a check-in date is found.
const defaultStayNights = 3

var (
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:in|to|at|visit|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(?:hotel|trip|travel|stay)`),
	}

	isoDatePattern   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	slashDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	// "Dec 15-18", "December 15 - 18"
	monthRangePattern = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2})\s*(?:-|–|~|to)\s*(\d{1,2})`)

	partySizePattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:people|persons?|travelers?|guests?|adults?)`)
	koreanPartyPattern = regexp.MustCompile(`(\d+)\s*명`)

	budgetPattern       = regexp.MustCompile(`(?i)(?:under|below|less than|max(?:imum)?|budget(?: of)?|\$)\s*\$?\s*([0-9][0-9,]*)`)
	koreanBudgetPattern = regexp.MustCompile(`([0-9][0-9,]*)\s*달러`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// atmosphereVocabulary maps a canonical atmosphere term to its trigger words.
// atmosphereOrder fixes the output order; map iteration would jitter it.
var atmosphereOrder = []string{"quiet", "romantic", "luxury", "budget", "family", "cozy"}

var atmosphereVocabulary = map[string][]string{
	"quiet":    {"quiet", "peaceful", "calm", "tranquil", "조용한", "한적한"},
	"romantic": {"romantic", "intimate", "couples", "honeymoon", "로맨틱", "낭만"},
	"luxury":   {"luxury", "luxurious", "premium", "upscale", "고급", "럭셔리"},
	"budget":   {"budget", "cheap", "affordable", "economical", "저렴한"},
	"family":   {"family", "kids", "children", "family-friendly", "가족"},
	"cozy":     {"cozy", "cosy", "charming", "아늑한"},
}

// amenityVocabulary maps a canonical amenity term to its trigger words.
var amenityOrder = []string{"wifi", "breakfast", "parking", "pool", "gym", "spa"}

var amenityVocabulary = map[string][]string{
	"wifi":      {"wifi", "wi-fi", "internet", "와이파이"},
	"breakfast": {"breakfast", "morning meal", "조식"},
	"parking":   {"parking", "car park", "주차"},
	"pool":      {"pool", "swimming", "수영장"},
	"gym":       {"gym", "fitness", "헬스장"},
	"spa":       {"spa", "massage", "스파"},
}

// Parser extracts travel intent with regular expressions and keyword tables.
type Parser struct {
	logger *slog.Logger
}

// newParser is an internal constructor that returns the concrete type.
func newParser() *Parser {
	return &Parser{
		logger: slog.Default().With("component", "rules-parser"),
	}
}

// NewParser creates a deterministic rule-based parser.
//
// Returns ai.QueryParser interface to enforce abstraction.
func NewParser() ai.QueryParser {
	return newParser()
}

// ParseQuery extracts what the rules can recognize from the utterance. An
// utterance where nothing is recognizable still yields an empty query; only
// a blank utterance is an error.
func (p *Parser) ParseQuery(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}

	lower := strings.ToLower(utterance)
	query := &core.TravelQuery{
		Destination: extractDestination(utterance),
		PartySize:   extractPartySize(utterance, lower),
		BudgetMax:   extractBudget(utterance),
		Atmosphere:  matchVocabulary(lower, atmosphereOrder, atmosphereVocabulary),
		Amenities:   matchVocabulary(lower, amenityOrder, amenityVocabulary),
	}
	query.CheckIn, query.CheckOut = extractDates(utterance, lower, now)

	p.logger.Debug("parsed utterance",
		"destination", query.Destination,
		"atmosphere", len(query.Atmosphere),
		"amenities", len(query.Amenities))
	return query, nil
}

func extractDestination(utterance string) string {
	for _, pattern := range destinationPatterns {
		if match := pattern.FindStringSubmatch(utterance); match != nil {
			return match[1]
		}
	}
	return ""
}

// extractDates recognizes absolute dates, a month-day range, and a few
// relative English phrases. A lone check-in date gets a default-length stay.
func extractDates(utterance, lower string, now time.Time) (time.Time, time.Time) {
	var found []time.Time

	for _, match := range isoDatePattern.FindAllStringSubmatch(utterance, 2) {
		year, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		day, _ := strconv.Atoi(match[3])
		found = append(found, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}
	for _, match := range slashDatePattern.FindAllStringSubmatch(utterance, 2) {
		month, _ := strconv.Atoi(match[1])
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		found = append(found, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}

	if len(found) == 0 {
		if match := monthRangePattern.FindStringSubmatch(utterance); match != nil {
			month := monthsByPrefix[strings.ToLower(match[1])[:3]]
			fromDay, _ := strconv.Atoi(match[2])
			toDay, _ := strconv.Atoi(match[3])

			checkIn := time.Date(now.Year(), month, fromDay, 0, 0, 0, 0, time.UTC)
			if checkIn.Before(now) {
				checkIn = checkIn.AddDate(1, 0, 0)
			}
			checkOut := time.Date(checkIn.Year(), month, toDay, 0, 0, 0, 0, time.UTC)
			if !checkOut.After(checkIn) {
				checkOut = checkIn.AddDate(0, 0, defaultStayNights)
			}
			return checkIn, checkOut
		}
	}

	if len(found) == 0 {
		if checkIn, ok := relativeDate(lower, now); ok {
			found = append(found, checkIn)
		}
	}

	switch len(found) {
	case 0:
		return time.Time{}, time.Time{}
	case 1:
		return found[0], found[0].AddDate(0, 0, defaultStayNights)
	default:
		if found[1].Before(found[0]) {
			found[0], found[1] = found[1], found[0]
		}
		return found[0], found[1]
	}
}

func relativeDate(lower string, now time.Time) (time.Time, bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case strings.Contains(lower, "next week"):
		return day.AddDate(0, 0, 7), true
	case strings.Contains(lower, "this weekend"):
		daysAhead := int(time.Saturday - day.Weekday())
		if daysAhead <= 0 {
			daysAhead += 7
		}
		return day.AddDate(0, 0, daysAhead), true
	case strings.Contains(lower, "next month"):
		return day.AddDate(0, 1, 0), true
	case strings.Contains(lower, "tomorrow"):
		return day.AddDate(0, 0, 1), true
	}
	return time.Time{}, false
}

func extractPartySize(utterance, lower string) int {
	if match := partySizePattern.FindStringSubmatch(utterance); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	if match := koreanPartyPattern.FindStringSubmatch(utterance); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	if strings.Contains(lower, "for two") || strings.Contains(lower, "couple") {
		return 2
	}
	return 0
}

func extractBudget(utterance string) float64 {
	match := budgetPattern.FindStringSubmatch(utterance)
	if match == nil {
		match = koreanBudgetPattern.FindStringSubmatch(utterance)
	}
	if match == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	return amount
}

// matchVocabulary returns the canonical terms whose trigger words appear in
// the text, in stable order.
func matchVocabulary(lower string, order []string, vocabulary map[string][]string) []string {
	var terms []string
	for _, canonical := range order {
		for _, trigger := range vocabulary[canonical] {
			if strings.Contains(lower, trigger) {
				terms = append(terms, canonical)
				break
			}
		}
	}
	return terms
}
