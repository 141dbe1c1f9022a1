// Command replay pushes a recorded fixture (records with canned judge
// replies plus expected depths) through the controller offline and prints an
// OK/DIFF comparison table. Exit code 1 on any divergence.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-depth/internal/round"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	f, err := round.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}

	outcomes := f.Replay()
	os.Exit(printComparison(outcomes))
}

// #endregion main

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(outcomes []round.ReplayOutcome) int {
	fmt.Printf("%-40s| %-12s| %-12s| %s\n", "Question", "Expected", "Replayed", "Match")
	fmt.Printf("%-40s+%-13s+%-13s+%s\n",
		"----------------------------------------", "-------------", "-------------", "------")

	matches := 0
	for _, out := range outcomes {
		match := "DIFF"
		if out.Match {
			match = "OK"
			matches++
		}
		fmt.Printf("%-40s| %-12s| %-12s| %s\n",
			truncate(out.Question, 40), describe(out.WantK, out.WantResolved),
			describe(out.GotK, out.GotResolved), match)
	}

	diverge := len(outcomes) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(outcomes), matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func describe(k string, resolved bool) string {
	if resolved {
		return "resolved"
	}
	if k == "" {
		return "dropped"
	}
	return "k=" + k
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// #endregion output
