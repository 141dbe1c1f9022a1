// Command inspect dumps round summaries and depth transitions from the
// provenance database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-depth/internal/provenance"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to adaptive_depth.db")
	runID := flag.String("run", "", "filter to one run")
	transitions := flag.Bool("transitions", false, "list per-record transitions instead of round summaries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/adaptive_depth.db [--run id] [--transitions] [--json]")
		os.Exit(2)
	}

	store, err := provenance.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *transitions {
		err = listTransitions(store, *runID, *jsonOut)
	} else {
		err = listRounds(store, *runID, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region rounds

func listRounds(store *provenance.Store, runID string, jsonOut bool) error {
	entries, err := store.ListRounds(runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no rounds found")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-12s  %5s  %9s  %6s  %8s  %9s  %7s  %s\n",
		"Run", "Round", "Evaluated", "Failed", "Resolved", "Reflected", "Dropped", "Time")
	for _, e := range entries {
		fmt.Printf("%-12s  %5d  %9d  %6d  %8d  %9d  %7d  %s\n",
			shortID(e.RunID), e.Round, e.Evaluated, e.Failed, e.Resolved,
			e.Reflected, e.Dropped, e.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion rounds

// #region transitions

func listTransitions(store *provenance.Store, runID string, jsonOut bool) error {
	entries, err := store.ListTransitions(runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no transitions found")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-12s  %-36s  %5s  %5s  %5s  %4s  %-6s  %s\n",
		"Run", "Question", "OldK", "NewK", "Score", "Adj", "Action", "Reason")
	for _, e := range entries {
		adj := "-"
		if e.Adjustment != nil {
			adj = fmt.Sprintf("%+d", *e.Adjustment)
		}
		fmt.Printf("%-12s  %-36s  %5s  %5s  %5d  %4s  %-6s  %s\n",
			shortID(e.RunID), truncate(e.Question, 36), e.OldK, e.NewK,
			e.Score, adj, e.Action, e.Reason)
	}
	return nil
}

// #endregion transitions

// #region helpers

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// #endregion helpers
