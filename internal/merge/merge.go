// Package merge propagates updated depths from a reflection pass back into
// the round's source dataset.
package merge

import (
	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
)

// #region result

// Result is the merged next-round dataset. Dropped counts source records
// whose identity was not found among the updated records; callers surface it
// in logs, never as an error.
type Result struct {
	Merged  []dataset.Record
	Dropped int
}

// #endregion result

// #region propagate

// Propagate joins updated depths into the original dataset. Records are
// matched by record ID when both sides carry one, falling back to question
// text for datasets that predate ingestion. Matched records keep every
// original field except the depth, and their evaluation fields are cleared —
// the output is a fresh dataset for the next generation pass. Originals with
// no match are dropped: the loop continues only over records still flagged
// for reflection. Input order is preserved.
func Propagate(original, updated []dataset.Record) Result {
	byID := make(map[string]dataset.Depth, len(updated))
	byQuestion := make(map[string]dataset.Depth, len(updated))
	for _, u := range updated {
		if u.RecordID != "" {
			byID[u.RecordID] = u.K
		}
		byQuestion[u.Question] = u.K
	}

	var result Result
	for _, r := range original {
		k, ok := lookup(r, byID, byQuestion)
		if !ok {
			result.Dropped++
			continue
		}
		merged := r
		merged.K = k
		merged.ClearEvaluation()
		result.Merged = append(result.Merged, merged)
	}
	return result
}

func lookup(r dataset.Record, byID, byQuestion map[string]dataset.Depth) (dataset.Depth, bool) {
	if r.RecordID != "" {
		if k, ok := byID[r.RecordID]; ok {
			return k, true
		}
	}
	k, ok := byQuestion[r.Question]
	return k, ok
}

// #endregion propagate
