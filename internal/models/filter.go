package models

import "time"

// FilterCriteria is the ephemeral set of optional predicates applied to an
// in-memory record list. A zero-value criterion matches everything.
type FilterCriteria struct {
	PersonType    PersonType
	Region        string
	Brigade       string
	Circumstances string
	Appearance    string
	StartDate     *time.Time
	EndDate       *time.Time
}

// Empty reports whether no criterion is active.
func (f FilterCriteria) Empty() bool {
	return f.PersonType == "" &&
		f.Region == "" &&
		f.Brigade == "" &&
		f.Circumstances == "" &&
		f.Appearance == "" &&
		f.StartDate == nil &&
		f.EndDate == nil
}
