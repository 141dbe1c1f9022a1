package round

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-depth/internal/classify"
	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
	"github.com/danielpatrickdp/adaptive-depth/internal/merge"
	"github.com/danielpatrickdp/adaptive-depth/internal/transition"
)

// #region fixture-types

// Fixture is a recorded round: records with canned judge replies, plus the
// depth each one is expected to end up at. Replaying a fixture exercises
// classification, transition, and propagation offline — no judge calls.
type Fixture struct {
	Description string            `json:"description"`
	Records     []dataset.Record  `json:"records"`
	Expected    []ExpectedOutcome `json:"expected"`
}

// ExpectedOutcome is the reference result for one record.
type ExpectedOutcome struct {
	Question string `json:"question"`
	K        string `json:"k,omitempty"`        // expected next-round depth
	Resolved bool   `json:"resolved,omitempty"` // true when the record should settle
}

// ReplayOutcome pairs an expectation with what the controller actually did.
type ReplayOutcome struct {
	Question     string
	WantK        string
	GotK         string
	WantResolved bool
	GotResolved  bool
	Match        bool
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region replay

// Replay pushes the fixture's records through classify → transition → merge
// using the canned judge replies, and compares against the expectations.
func (f *Fixture) Replay() []ReplayOutcome {
	resolved, reflect := classify.Partition(f.Records)

	updated := make([]dataset.Record, 0, len(reflect))
	for _, r := range reflect {
		d := transition.Next(r.K, parsedVerdict(r))
		r.K = d.To
		updated = append(updated, r)
	}
	merged := merge.Propagate(f.Records, updated)

	resolvedSet := make(map[string]bool, len(resolved))
	for _, r := range resolved {
		resolvedSet[r.Question] = true
	}
	nextK := make(map[string]dataset.Depth, len(merged.Merged))
	for _, r := range merged.Merged {
		nextK[r.Question] = r.K
	}

	outcomes := make([]ReplayOutcome, 0, len(f.Expected))
	for _, exp := range f.Expected {
		out := ReplayOutcome{
			Question:     exp.Question,
			WantK:        exp.K,
			WantResolved: exp.Resolved,
			GotResolved:  resolvedSet[exp.Question],
		}
		if k, ok := nextK[exp.Question]; ok {
			out.GotK = string(k)
		}
		out.Match = out.GotResolved == out.WantResolved && out.GotK == out.WantK
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// #endregion replay
