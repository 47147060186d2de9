package models

import "time"

// DateRange is an inclusive [Start, End] interval over sold dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, bounds included.
func (dr DateRange) Contains(t time.Time) bool {
	return !t.Before(dr.Start) && !t.After(dr.End)
}

// SizeRange is an inclusive [Min, Max] interval over plot sizes in sft.
type SizeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether size falls inside the range, bounds included.
func (sr SizeRange) Contains(size float64) bool {
	return size >= sr.Min && size <= sr.Max
}

// FilterCriteria is the immutable input to the filter engine. The
// rendering layer owns widget state and constructs one of these per
// interaction; the core never reads ambient state.
//
// Owners is ordered: the summary table reproduces this order. An empty
// Owners list yields an empty filter result, never an implicit
// "all owners" fallback.
type FilterCriteria struct {
	DateRange     DateRange
	Owners        []string
	SizeRange     *SizeRange // nil disables the size clause
	IncludeUnsold bool
}

// OwnerSet materializes Owners as a membership set.
func (fc FilterCriteria) OwnerSet() map[string]struct{} {
	set := make(map[string]struct{}, len(fc.Owners))
	for _, owner := range fc.Owners {
		set[owner] = struct{}{}
	}
	return set
}
