// Package filter implements the pure, local predicate pass over fetched
// record lists. Remote relevance search (appearance text, photo) never goes
// through here; those results replace the working list wholesale.
package filter

import (
	"strings"

	"github.com/poshuk/captives-gateway/internal/models"
)

// Apply returns the records satisfying every active criterion plus the name
// query, preserving input order. It never mutates its input; with no active
// criteria the input is returned filtered only by the query (which may also
// be empty, yielding the full list).
func Apply(records []models.Captive, criteria models.FilterCriteria, query string) []models.Captive {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" && criteria.Empty() {
		return records
	}

	result := make([]models.Captive, 0, len(records))
	for _, record := range records {
		if matches(&record, criteria, query) {
			result = append(result, record)
		}
	}
	return result
}

func matches(record *models.Captive, c models.FilterCriteria, query string) bool {
	if query != "" && !containsFold(record.Name, query) {
		return false
	}
	if c.PersonType != "" && record.PersonType != c.PersonType {
		return false
	}
	for _, pair := range [...][2]string{
		{record.Region, c.Region},
		{record.Brigade, c.Brigade},
		{record.Circumstances, c.Circumstances},
		{record.Appearance, c.Appearance},
	} {
		criterion := strings.ToLower(strings.TrimSpace(pair[1]))
		if criterion != "" && !containsFold(pair[0], criterion) {
			return false
		}
	}
	return matchesDateRange(record, c)
}

// matchesDateRange applies the inclusive [start, end] bounds to the date of
// birth. A record without a date of birth fails any active bound.
func matchesDateRange(record *models.Captive, c models.FilterCriteria) bool {
	if c.StartDate == nil && c.EndDate == nil {
		return true
	}
	born, ok := record.BirthDate()
	if !ok {
		return false
	}
	if c.StartDate != nil && born.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && born.After(*c.EndDate) {
		return false
	}
	return true
}

// containsFold reports whether needle (already lowercased) occurs in
// haystack, case-insensitively. An empty haystack never contains a
// non-empty needle.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
