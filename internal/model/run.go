package model

import (
	"sort"
	"time"
)

// Run is the persisted summary of one catalog processing run.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Reasons    map[string]int // reject reason -> row count
	Columns    []string       // record column order
	ID         string
	Source     string
	Output     string
	Tables     int
	Processed  int
	Failed     int
	Total      int
	Valid      int
	Rejected   int
}

// ReasonCount is one entry of a reject histogram.
type ReasonCount struct {
	Reason string
	Count  int
}

// SortedReasons returns the histogram ordered by count (desc) then reason.
func (r Run) SortedReasons() []ReasonCount {
	return SortReasons(r.Reasons)
}

// SortReasons orders a reject histogram by count (desc) then reason.
func SortReasons(reasons map[string]int) []ReasonCount {
	out := make([]ReasonCount, 0, len(reasons))
	for reason, n := range reasons {
		out = append(out, ReasonCount{Reason: reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
