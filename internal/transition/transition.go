// Package transition implements the depth transition table: given a record's
// current depth and the judge's verdict, decide the depth for the next round.
package transition

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
	"github.com/danielpatrickdp/adaptive-depth/internal/verdict"
)

// #region decision

// Action labels what the engine did to the depth.
type Action string

const (
	ActionHold  Action = "hold"  // depth unchanged
	ActionRaise Action = "raise" // depth + 1
	ActionLower Action = "lower" // depth - 1
	ActionReset Action = "reset" // ceiling → 0, context judged harmful
)

// Decision records one depth transition with its reason, for provenance.
type Decision struct {
	Action Action
	From   dataset.Depth
	To     dataset.Depth
	Reason string
}

// #endregion decision

// #region reset-threshold

// resetScore is the ceiling-class cutoff: a score below it means the judge
// found the fully-expanded context actively harmful, so the record drops to
// knowledge-only answering.
const resetScore = 3

// #endregion reset-threshold

// #region next

// Next applies the transition table. The engine never errors: any state not
// covered by a rule passes through unchanged. Invariants: depth 0 never goes
// below 0, and the ceiling class ("5" and "null") never increases — "5"
// stays "5" and "null" stays "null".
func Next(k dataset.Depth, v verdict.Verdict) Decision {
	if !k.IsSet() {
		return hold(k, "depth unset")
	}

	// Ceiling class: the score rule fires before any adjustment rule.
	if k.IsCeiling() {
		if v.Score < resetScore {
			return Decision{
				Action: ActionReset,
				From:   k,
				To:     dataset.DepthOf(0),
				Reason: fmt.Sprintf("score %d < %d at ceiling", v.Score, resetScore),
			}
		}
		if v.Adjustment == nil {
			return hold(k, "no adjustment signal")
		}
		if *v.Adjustment == verdict.AdjustLess {
			return Decision{
				Action: ActionLower,
				From:   k,
				To:     dataset.DepthOf(dataset.MaxDepth - 1),
				Reason: "judge voted less context",
			}
		}
		return hold(k, "ceiling clamp")
	}

	if v.Adjustment == nil {
		return hold(k, "no adjustment signal")
	}

	n, _ := k.Int()
	switch *v.Adjustment {
	case verdict.AdjustMore:
		return Decision{
			Action: ActionRaise,
			From:   k,
			To:     dataset.DepthOf(n + 1),
			Reason: "judge voted more context",
		}
	case verdict.AdjustLess:
		if n == 0 {
			return hold(k, "floor clamp")
		}
		return Decision{
			Action: ActionLower,
			From:   k,
			To:     dataset.DepthOf(n - 1),
			Reason: "judge voted less context",
		}
	default:
		return hold(k, "judge voted keep")
	}
}

func hold(k dataset.Depth, reason string) Decision {
	return Decision{Action: ActionHold, From: k, To: k, Reason: reason}
}

// #endregion next
