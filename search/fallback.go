package search

import (
	"context"
	"fmt"

	"github.com/poiesic/itinera/core"
)

// FallbackThreshold is the minimum candidate count below which the next
// relaxation stage is attempted.
const FallbackThreshold = 3

// Relaxation stages, attempted strictly in order. Stage 2 is never skipped:
// a query that fails the full filters always tries rating-only constraints
// before falling all the way back to destination-only.
const (
	stageFullFilters     = 1
	stageRatingOnly      = 2
	stageDestinationOnly = 3
)

// RelaxedResult is the outcome of a retrieval with constraint relaxation.
type RelaxedResult struct {
	// Candidates are the ranked results from the last attempted stage.
	Candidates []*core.Candidate

	// Relaxed is true when the returned candidates did not satisfy the
	// original filters in full. Note then explains what was given up, in a
	// form suitable for showing to the user.
	Relaxed bool
	Note    string

	// Stage is the relaxation stage the results came from (1 = no relaxation).
	Stage int
}

// SearchWithFallback retrieves candidates for the query, progressively
// relaxing filters when too few results survive. Stage 1 applies the filters
// as given; stage 2 keeps only destination and minimum rating; stage 3 keeps
// destination alone. The first stage yielding at least FallbackThreshold
// candidates wins; if none does, the stage 3 results are returned as-is.
func (e *Engine) SearchWithFallback(ctx context.Context, queryText string, filters core.SearchFilters, alpha float64) (*RelaxedResult, error) {
	return e.SearchWithFallbackMonitor(ctx, queryText, filters, alpha, nil)
}

// SearchWithFallbackMonitor is SearchWithFallback with observability callbacks.
func (e *Engine) SearchWithFallbackMonitor(ctx context.Context, queryText string, filters core.SearchFilters, alpha float64, monitor Monitor) (*RelaxedResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	stages := []struct {
		stage   int
		filters core.SearchFilters
		note    string
	}{
		{stageFullFilters, filters, ""},
		{stageRatingOnly, core.SearchFilters{Location: filters.Location, MinRating: filters.MinRating},
			"I widened the search by setting aside your amenity and price limits."},
		{stageDestinationOnly, core.SearchFilters{Location: filters.Location},
			destinationOnlyNote(filters.Location)},
	}

	var last *RelaxedResult
	for _, s := range stages {
		candidates, err := e.RetrieveWithMonitor(ctx, queryText, s.filters, alpha, monitor)
		if err != nil {
			return nil, err
		}
		monitor.StageAttempt(s.stage, s.filters, len(candidates))

		last = &RelaxedResult{
			Candidates: candidates,
			Relaxed:    s.stage > stageFullFilters,
			Note:       s.note,
			Stage:      s.stage,
		}
		if len(candidates) >= FallbackThreshold {
			break
		}
		e.logger.Debug("relaxing search constraints",
			"stage", s.stage, "found", len(candidates), "threshold", FallbackThreshold)
	}

	return last, nil
}

func destinationOnlyNote(destination string) string {
	if destination == "" {
		return "I widened the search to all hotels, keeping none of the original limits."
	}
	return fmt.Sprintf("I widened the search to all hotels in %s, keeping none of the other limits.", destination)
}
