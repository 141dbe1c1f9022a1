// Package classify partitions judged records into those whose answer is
// settled and those that need another reflection pass.
package classify

import (
	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
	"github.com/danielpatrickdp/adaptive-depth/internal/verdict"
)

// #region threshold

// A record is resolved when the judge scored it exactly 9 or 10. The numeric
// verdict is privileged: a 9 with a "more context" vote is still resolved.
const (
	resolvedLow  = 9
	resolvedHigh = 10
)

// #endregion threshold

// #region partition

// Partition splits records into resolved and needs-reflection sets, parsing
// each record's judge reply and attaching the parsed score and adjustment on
// the way through. A record with an unparseable score defaults to 0 and is
// therefore always needs-reflection. Input order is preserved within each set.
func Partition(records []dataset.Record) (resolved, reflect []dataset.Record) {
	for _, r := range records {
		v := verdict.Parse(r.JudgeResponse)
		r.Score = v.Score
		if v.Adjustment != nil {
			adj := int(*v.Adjustment)
			r.Adjustment = &adj
		} else {
			r.Adjustment = nil
		}

		if v.ScoreFound && v.Score >= resolvedLow && v.Score <= resolvedHigh {
			resolved = append(resolved, r)
		} else {
			reflect = append(reflect, r)
		}
	}
	return resolved, reflect
}

// #endregion partition
