package purge

import (
	"strings"
	"time"
)

// Criteria narrows a candidate list down to the events that should be
// deleted. Zero values mean "no constraint".
type Criteria struct {
	// TitleKeyword retains events whose title contains the keyword,
	// case-insensitively.
	TitleKeyword string

	// From retains events starting at or after this time.
	From time.Time

	// To retains events starting at or before this time.
	To time.Time
}

// Select returns the candidates matching the criteria. Ineligible events
// are always excluded. Events with an unknown start time are never excluded
// by the date bounds. The filter is stable (output preserves input order)
// and never mutates its input.
func Select(candidates []CandidateEvent, criteria Criteria) []CandidateEvent {
	keyword := strings.ToLower(criteria.TitleKeyword)

	selected := make([]CandidateEvent, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.Eligible {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(candidate.Title), keyword) {
			continue
		}
		if !candidate.Start.IsZero() {
			if !criteria.From.IsZero() && candidate.Start.Before(criteria.From) {
				continue
			}
			if !criteria.To.IsZero() && candidate.Start.After(criteria.To) {
				continue
			}
		}
		selected = append(selected, candidate)
	}

	return selected
}
