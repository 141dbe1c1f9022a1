// Package round runs one pass of the adaptive-depth control loop: evaluate
// every record with the judge, classify by score, transition depths for the
// needs-reflection set, and merge the new depths back into the dataset. The
// caller decides whether to run another round; Loop adds a max-rounds
// safeguard on top.
package round

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/adaptive-depth/internal/classify"
	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
	"github.com/danielpatrickdp/adaptive-depth/internal/merge"
	"github.com/danielpatrickdp/adaptive-depth/internal/transition"
	"github.com/danielpatrickdp/adaptive-depth/internal/verdict"
)

// #region interfaces

// Evaluator is the external judge boundary.
type Evaluator interface {
	Evaluate(ctx context.Context, question, contextText, answer string) (string, error)
}

// Generator is the external answer-generation boundary, used by Loop to
// resupply answers between rounds.
type Generator interface {
	Answer(ctx context.Context, question string, docs []dataset.Document) (string, error)
}

// #endregion interfaces

// #region config

// Config holds the round runner's knobs.
type Config struct {
	Workers   int // concurrent judge calls per round
	MaxRounds int // Loop safeguard; a round pass itself ignores it
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		MaxRounds: 5,
	}
}

// #endregion config

// #region result-types

// Stats summarizes one round for operator-facing logs.
type Stats struct {
	Round     int
	Evaluated int // records with a judge reply
	Failed    int // records whose evaluation failed (degraded to no signal)
	Resolved  int
	Reflected int // needs-reflection records carried into the merge
	Dropped   int // join misses during propagation
}

// Transition records one depth decision for provenance.
type Transition struct {
	RecordID   string
	Question   string
	Decision   transition.Decision
	Score      int
	Adjustment *int
	EvalFailed bool
}

// Result is the output of one round.
type Result struct {
	Next        []dataset.Record // next round's dataset (reflection set, new depths)
	Resolved    []dataset.Record // settled this round, excluded from Next
	Transitions []Transition
	Stats       Stats
}

// #endregion result-types

// #region evaluate

// Evaluate calls the judge for every record with bounded concurrency and
// attaches the raw replies. A failed call never aborts the batch: the record
// keeps an empty reply and its index is reported in failed. Only context
// cancellation returns an error.
func Evaluate(ctx context.Context, records []dataset.Record, judge Evaluator, workers int) (judged []dataset.Record, failed []bool, err error) {
	judged = make([]dataset.Record, len(records))
	copy(judged, records)
	failed = make([]bool, len(records))

	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range judged {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			r := judged[i]
			reply, evalErr := judge.Evaluate(gctx, r.Question, dataset.ContextText(r), r.Answer)
			if evalErr != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("[ROUND] evaluate %q: %v", r.Question, evalErr)
				failed[i] = true
				return nil
			}
			judged[i].JudgeResponse = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return judged, failed, nil
}

// #endregion evaluate

// #region run

// Run executes one full round over the dataset. Records whose evaluation
// failed are classified needs-reflection with no signal and keep their depth
// unchanged — per-record judge failures degrade, they do not abort.
func Run(ctx context.Context, records []dataset.Record, judge Evaluator, cfg Config) (Result, error) {
	judged, failed, err := Evaluate(ctx, records, judge, cfg.Workers)
	if err != nil {
		return Result{}, err
	}

	ok := make([]dataset.Record, 0, len(judged))
	var broken []dataset.Record
	for i, r := range judged {
		if failed[i] {
			broken = append(broken, r)
		} else {
			ok = append(ok, r)
		}
	}

	resolved, reflect := classify.Partition(ok)

	var result Result
	result.Resolved = resolved

	updated := make([]dataset.Record, 0, len(reflect)+len(broken))
	for _, r := range reflect {
		d := transition.Next(r.K, parsedVerdict(r))
		r.K = d.To
		updated = append(updated, r)
		result.Transitions = append(result.Transitions, Transition{
			RecordID:   r.RecordID,
			Question:   r.Question,
			Decision:   d,
			Score:      r.Score,
			Adjustment: r.Adjustment,
		})
	}
	for _, r := range broken {
		d := transition.Decision{
			Action: transition.ActionHold,
			From:   r.K,
			To:     r.K,
			Reason: "evaluation failed, no signal",
		}
		updated = append(updated, r)
		result.Transitions = append(result.Transitions, Transition{
			RecordID:   r.RecordID,
			Question:   r.Question,
			Decision:   d,
			EvalFailed: true,
		})
	}

	merged := merge.Propagate(records, updated)
	result.Next = merged.Merged

	dropped := merged.Dropped - len(resolved)
	if dropped < 0 {
		dropped = 0
	}
	result.Stats = Stats{
		Evaluated: len(ok),
		Failed:    len(broken),
		Resolved:  len(resolved),
		Reflected: len(updated),
		Dropped:   dropped,
	}

	log.Printf("[ROUND] evaluated=%d failed=%d resolved=%d reflected=%d dropped=%d",
		result.Stats.Evaluated, result.Stats.Failed, result.Stats.Resolved,
		result.Stats.Reflected, result.Stats.Dropped)

	return result, nil
}

// parsedVerdict rebuilds the verdict from the fields classify attached, so
// the transition engine sees exactly what the classifier saw.
func parsedVerdict(r dataset.Record) verdict.Verdict {
	v := verdict.Verdict{Score: r.Score, ScoreFound: true}
	if r.Adjustment != nil {
		sig := verdict.Signal(*r.Adjustment)
		v.Adjustment = &sig
	}
	return v
}

// #endregion run

// #region loop

// LoopResult aggregates a multi-round run.
type LoopResult struct {
	Rounds    []Stats
	Resolved  []dataset.Record // settled across all rounds
	Remaining []dataset.Record // still unresolved when the loop stopped
}

// Loop runs rounds until every record resolves or MaxRounds is reached.
// Between rounds each surviving record is re-answered through gen at its new
// depth; pass a nil gen to re-judge the existing answers (useful for dry
// runs, not for convergence).
func Loop(ctx context.Context, records []dataset.Record, judge Evaluator, gen Generator, cfg Config) (LoopResult, error) {
	maxRounds := cfg.MaxRounds
	if maxRounds < 1 {
		maxRounds = DefaultConfig().MaxRounds
	}

	var out LoopResult
	cur := records
	for roundNum := 1; roundNum <= maxRounds && len(cur) > 0; roundNum++ {
		if gen != nil {
			if err := regenerate(ctx, cur, gen, cfg.Workers); err != nil {
				return out, err
			}
		}

		result, err := Run(ctx, cur, judge, cfg)
		if err != nil {
			return out, err
		}
		result.Stats.Round = roundNum
		out.Rounds = append(out.Rounds, result.Stats)
		out.Resolved = append(out.Resolved, result.Resolved...)
		cur = result.Next

		log.Printf("[ROUND] round %d complete: %d remaining", roundNum, len(cur))
	}
	out.Remaining = cur
	return out, nil
}

// regenerate re-answers every record at its current depth.
func regenerate(ctx context.Context, records []dataset.Record, gen Generator, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			r := records[i]
			docs := r.Documents
			if n, ok := r.K.Int(); ok && n < len(docs) {
				docs = docs[:n]
			}
			answer, err := gen.Answer(gctx, r.Question, docs)
			if err != nil {
				return err
			}
			records[i].Answer = answer
			return nil
		})
	}
	return g.Wait()
}

// #endregion loop
