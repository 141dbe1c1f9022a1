// Package verdict extracts the numeric quality score and the ternary
// context-adjustment signal from a judge's free-text reply.
package verdict

import (
	"regexp"
	"strconv"
)

// #region signal

// Signal is the judge's context-adjustment vote.
type Signal int

const (
	AdjustLess Signal = -1 // shrink the context window
	AdjustKeep Signal = 0  // keep the current depth
	AdjustMore Signal = 1  // widen the context window
)

// #endregion signal

// #region verdict

// Verdict is the parsed judge output for one record. Adjustment is nil when
// the judge gave no usable signal; ScoreFound distinguishes a genuine score
// of 0 from a reply the parser could not use.
type Verdict struct {
	Score      int
	ScoreFound bool
	Adjustment *Signal
}

// #endregion verdict

// #region patterns

// Both patterns capture the full integer run after the label so that
// "Evaluation Score: 19" can never be read as a score of 9, and
// "Context Adjustment: 10" can never be read as a vote of 1.
var (
	scorePattern      = regexp.MustCompile(`Evaluation Score:\s*(\d+)`)
	adjustmentPattern = regexp.MustCompile(`Context Adjustment:\s*(-?\d+)`)
)

// #endregion patterns

// #region parse

// Parse scans a judge reply for the score and adjustment lines. It is
// defensive against explanatory prose around the required lines: the first
// score match wins, an absent or out-of-range score yields 0 with
// ScoreFound=false, and an absent or out-of-range adjustment yields no
// signal. Pure function over text.
func Parse(response string) Verdict {
	var v Verdict

	if m := scorePattern.FindStringSubmatch(response); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 0 && n <= 10 {
			v.Score = n
			v.ScoreFound = true
		}
	}

	if m := adjustmentPattern.FindStringSubmatch(response); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= -1 && n <= 1 {
			sig := Signal(n)
			v.Adjustment = &sig
		}
	}

	return v
}

// #endregion parse
