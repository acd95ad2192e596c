package resolve

import "github.com/handiism/feedmusic/internal/model"

// Summary aggregates a result list.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// ByKind counts failures per ErrorKind name ("error" for failures
	// that are not a *ResolutionError).
	ByKind map[string]int `json:"byKind"`

	// Failures lists the failed references with their reason, in input
	// order.
	Failures []Failure `json:"failures,omitempty"`
}

// Failure is one failed reference.
type Failure struct {
	Ref    model.RemoteItemReference `json:"ref"`
	Kind   string                    `json:"kind"`
	Reason string                    `json:"reason"`
}

// Summarize derives aggregate statistics from results without any further
// lookups.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), ByKind: make(map[string]int)}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
			continue
		}
		s.Failed++
		kind, reason := "empty_result", "resolver returned no item"
		if r.Err != nil {
			kind, reason = outcome(r.Err), r.Err.Error()
		}
		s.ByKind[kind]++
		s.Failures = append(s.Failures, Failure{Ref: r.Ref, Kind: kind, Reason: reason})
	}
	return s
}
