// Package aggregate computes grouped summaries over an immutable snapshot of
// normalized UMM messages. All functions are pure: they never mutate their
// input and results are deterministic for a given message order, because
// grouped output preserves first-encounter insertion order.
package aggregate

import (
	"strings"
	"time"

	"github.com/floratiew/ummdashboard/internal/domain"
)

// Filter is a set of AND-combined predicates over normalized messages. Zero
// values mean "no constraint".
type Filter struct {
	// From and To bound the publication time: From inclusive, To exclusive.
	From time.Time
	To   time.Time

	// OutageTypes restricts to the given message_type codes.
	OutageTypes []int

	// Areas keeps messages listing at least one of the given area codes.
	Areas []string

	// Publisher is a case-insensitive substring match on the participant.
	Publisher string

	// Search is a case-insensitive substring match across remarks,
	// participant, resource name, and message ID.
	Search string
}

// Matches reports whether the message passes every configured predicate.
func (f Filter) Matches(m domain.Message) bool {
	if !f.From.IsZero() && m.PublicationTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !m.PublicationTime.Before(f.To) {
		return false
	}
	if len(f.OutageTypes) > 0 && !containsInt(f.OutageTypes, m.OutageTypeCode) {
		return false
	}
	if len(f.Areas) > 0 && !listsAnyArea(m, f.Areas) {
		return false
	}
	if f.Publisher != "" && !containsFold(m.Participant, f.Publisher) {
		return false
	}
	if f.Search != "" && !matchesSearch(m, f.Search) {
		return false
	}
	return true
}

// Apply returns the messages passing the filter, in input order.
func (f Filter) Apply(msgs []domain.Message) []domain.Message {
	kept := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if f.Matches(m) {
			kept = append(kept, m)
		}
	}
	return kept
}

func matchesSearch(m domain.Message, term string) bool {
	return containsFold(m.Remarks, term) ||
		containsFold(m.Participant, term) ||
		containsFold(m.ResourceName, term) ||
		containsFold(m.ID, term)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func listsAnyArea(m domain.Message, areas []string) bool {
	for _, a := range areas {
		if m.HasArea(a) {
			return true
		}
	}
	return false
}
