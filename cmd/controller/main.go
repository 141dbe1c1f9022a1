// Command controller drives the adaptive context-depth loop over flat JSON
// datasets. The file-oriented subcommands (evaluate, classify, reflect,
// update, all) mirror the operator-driven pipeline stages; round runs a full
// in-process pass including judge calls.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-depth/internal/classify"
	"github.com/danielpatrickdp/adaptive-depth/internal/config"
	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
	"github.com/danielpatrickdp/adaptive-depth/internal/judge"
	"github.com/danielpatrickdp/adaptive-depth/internal/merge"
	"github.com/danielpatrickdp/adaptive-depth/internal/provenance"
	"github.com/danielpatrickdp/adaptive-depth/internal/round"
	"github.com/danielpatrickdp/adaptive-depth/internal/transition"
	"github.com/danielpatrickdp/adaptive-depth/internal/verdict"
)

// #region main

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "evaluate":
		code = runEvaluate(os.Args[2:])
	case "classify":
		code = runClassify(os.Args[2:])
	case "reflect":
		code = runReflect(os.Args[2:])
	case "update":
		code = runUpdate(os.Args[2:])
	case "all":
		code = runAll(os.Args[2:])
	case "round":
		code = runRound(os.Args[2:])
	default:
		usage()
		code = 2
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: controller <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  evaluate  judge each record's answer (-meta, -answers, -output)")
	fmt.Fprintln(os.Stderr, "  classify  split judged records by score (-input, -output-high, -output-low)")
	fmt.Fprintln(os.Stderr, "  reflect   apply the depth transition table (-input, -output)")
	fmt.Fprintln(os.Stderr, "  update    propagate new depths into the source dataset (-original, -k-values, -output)")
	fmt.Fprintln(os.Stderr, "  all       classify + reflect + update in one pass (-evaluation, -original, -output-dir)")
	fmt.Fprintln(os.Stderr, "  round     full in-process round including judge calls (-input, -output, -resolved)")
}

// #endregion main

// #region evaluate

func runEvaluate(args []string) int {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	metaPath := fs.String("meta", "", "dataset with questions, depths, and documents")
	answersPath := fs.String("answers", "", "answer file keyed by question (optional if answers are inline)")
	outputPath := fs.String("output", "", "path for the judged dataset")
	fs.Parse(args)

	if *metaPath == "" || *outputPath == "" {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	records, err := dataset.Load(*metaPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	report := dataset.Ingest(records)
	if report.DuplicateQuestions > 0 {
		log.Printf("[EVAL] warning: %d duplicate questions in %s", report.DuplicateQuestions, *metaPath)
	}

	if *answersPath != "" {
		answerRecords, err := dataset.Load(*answersPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		matched, missing := dataset.AttachAnswers(records, dataset.AnswerMap(answerRecords))
		log.Printf("[EVAL] answers attached: %d matched, %d missing", matched, missing)
	}

	client := judge.NewClient(cfg.JudgeConfig())
	judged, failed, err := round.Evaluate(context.Background(), records, client, cfg.Workers)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}

	failedCount := 0
	for _, f := range failed {
		if f {
			failedCount++
		}
	}

	if err := dataset.Save(*outputPath, judged); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Evaluated %d records: %d succeeded, %d failed\n",
		len(judged), len(judged)-failedCount, failedCount)
	return 0
}

// #endregion evaluate

// #region classify

func runClassify(args []string) int {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	inputPath := fs.String("input", "", "judged dataset")
	highPath := fs.String("output-high", "", "path for resolved records (score 9-10)")
	lowPath := fs.String("output-low", "", "path for needs-reflection records")
	fs.Parse(args)

	if *inputPath == "" || *highPath == "" || *lowPath == "" {
		fs.Usage()
		return 2
	}

	records, err := dataset.Load(*inputPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	resolved, reflect := classify.Partition(records)

	if err := dataset.Save(*highPath, resolved); err != nil {
		log.Fatalf("%v", err)
	}
	if err := dataset.Save(*lowPath, reflect); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Classified %d records: %d resolved, %d need reflection\n",
		len(records), len(resolved), len(reflect))
	return 0
}

// #endregion classify

// #region reflect

func runReflect(args []string) int {
	fs := flag.NewFlagSet("reflect", flag.ExitOnError)
	inputPath := fs.String("input", "", "needs-reflection dataset")
	outputPath := fs.String("output", "", "path for records with updated depths")
	fs.Parse(args)

	if *inputPath == "" || *outputPath == "" {
		fs.Usage()
		return 2
	}

	records, err := dataset.Load(*inputPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	actions := make(map[transition.Action]int)
	for i := range records {
		v := verdict.Parse(records[i].JudgeResponse)
		records[i].Score = v.Score
		if v.Adjustment != nil {
			adj := int(*v.Adjustment)
			records[i].Adjustment = &adj
		}

		d := transition.Next(records[i].K, v)
		records[i].K = d.To
		actions[d.Action]++
	}

	if err := dataset.Save(*outputPath, records); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Updated depths for %d records (raise=%d lower=%d hold=%d reset=%d)\n",
		len(records), actions[transition.ActionRaise], actions[transition.ActionLower],
		actions[transition.ActionHold], actions[transition.ActionReset])
	return 0
}

// #endregion reflect

// #region update

func runUpdate(args []string) int {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	originalPath := fs.String("original", "", "round's source dataset")
	kValuesPath := fs.String("k-values", "", "dataset carrying the updated depths")
	outputPath := fs.String("output", "", "path for the next round's dataset")
	fs.Parse(args)

	if *originalPath == "" || *kValuesPath == "" || *outputPath == "" {
		fs.Usage()
		return 2
	}

	original, err := dataset.Load(*originalPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	updated, err := dataset.Load(*kValuesPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	result := merge.Propagate(original, updated)
	if result.Dropped > 0 {
		log.Printf("[UPDATE] %d records dropped (no match in k-values)", result.Dropped)
	}

	if err := dataset.Save(*outputPath, result.Merged); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Merged %d records into next-round dataset (%d dropped)\n",
		len(result.Merged), result.Dropped)
	return 0
}

// #endregion update

// #region all

func runAll(args []string) int {
	fs := flag.NewFlagSet("all", flag.ExitOnError)
	evalPath := fs.String("evaluation", "", "judged dataset")
	originalPath := fs.String("original", "", "round's source dataset")
	outputDir := fs.String("output-dir", "", "directory for staged outputs")
	fs.Parse(args)

	if *evalPath == "" || *originalPath == "" || *outputDir == "" {
		fs.Usage()
		return 2
	}

	records, err := dataset.Load(*evalPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	original, err := dataset.Load(*originalPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Step 1: classify by score. Each stage flushes to disk before the next
	// starts, so a later failure leaves the completed stages on disk.
	resolved, reflect := classify.Partition(records)
	if err := dataset.Save(filepath.Join(*outputDir, "score_9_or_10.json"), resolved); err != nil {
		log.Fatalf("%v", err)
	}
	if err := dataset.Save(filepath.Join(*outputDir, "score_not_9_or_10.json"), reflect); err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("Step 1: %d resolved, %d need reflection\n", len(resolved), len(reflect))

	// Step 2: apply the transition table to the reflection set.
	for i := range reflect {
		v := verdict.Parse(reflect[i].JudgeResponse)
		d := transition.Next(reflect[i].K, v)
		reflect[i].K = d.To
	}
	if err := dataset.Save(filepath.Join(*outputDir, "output_adjusted.json"), reflect); err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("Step 2: updated depths for %d records\n", len(reflect))

	// Step 3: propagate into the source dataset.
	result := merge.Propagate(original, reflect)
	if result.Dropped > 0 {
		log.Printf("[ALL] %d records dropped (resolved or unmatched)", result.Dropped)
	}
	if err := dataset.Save(filepath.Join(*outputDir, "updated_with_k.json"), result.Merged); err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("Step 3: merged %d records (%d dropped)\n", len(result.Merged), result.Dropped)
	return 0
}

// #endregion all

// #region round

func runRound(args []string) int {
	fs := flag.NewFlagSet("round", flag.ExitOnError)
	inputPath := fs.String("input", "", "answered dataset for this round")
	outputPath := fs.String("output", "", "path for the next round's dataset")
	resolvedPath := fs.String("resolved", "", "path for resolved records (optional)")
	fs.Parse(args)

	if *inputPath == "" || *outputPath == "" {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	records, err := dataset.Load(*inputPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	report := dataset.Ingest(records)
	if report.DuplicateQuestions > 0 {
		log.Printf("[ROUND] warning: %d duplicate questions in %s", report.DuplicateQuestions, *inputPath)
	}

	client := judge.NewClient(cfg.JudgeConfig())
	result, err := round.Run(context.Background(), records, client, cfg.RoundConfig())
	if err != nil {
		log.Fatalf("round: %v", err)
	}

	if err := dataset.Save(*outputPath, result.Next); err != nil {
		log.Fatalf("%v", err)
	}
	if *resolvedPath != "" {
		if err := dataset.Save(*resolvedPath, result.Resolved); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if cfg.ProvenanceDB != "" {
		logProvenance(cfg.ProvenanceDB, result)
	}

	fmt.Printf("Round complete: %d evaluated, %d failed, %d resolved, %d carried to next round (%d dropped)\n",
		result.Stats.Evaluated, result.Stats.Failed, result.Stats.Resolved,
		len(result.Next), result.Stats.Dropped)
	return 0
}

// logProvenance writes the round's decisions to the provenance DB.
// Best-effort: a provenance failure never fails the round.
func logProvenance(dbPath string, result round.Result) {
	store, err := provenance.NewStore(dbPath)
	if err != nil {
		log.Printf("[ROUND] provenance disabled: %v", err)
		return
	}
	defer store.Close()

	runID := uuid.New().String()
	for _, t := range result.Transitions {
		entry := provenance.TransitionEntry{
			RunID:      runID,
			Round:      1,
			RecordID:   t.RecordID,
			Question:   t.Question,
			OldK:       string(t.Decision.From),
			NewK:       string(t.Decision.To),
			Score:      t.Score,
			Adjustment: t.Adjustment,
			Action:     string(t.Decision.Action),
			Reason:     t.Decision.Reason,
			EvalFailed: t.EvalFailed,
		}
		if err := store.LogTransition(entry); err != nil {
			log.Printf("[ROUND] log transition: %v", err)
		}
	}
	err = store.LogRound(provenance.RoundEntry{
		RunID:     runID,
		Round:     1,
		Evaluated: result.Stats.Evaluated,
		Failed:    result.Stats.Failed,
		Resolved:  result.Stats.Resolved,
		Reflected: result.Stats.Reflected,
		Dropped:   result.Stats.Dropped,
	})
	if err != nil {
		log.Printf("[ROUND] log round: %v", err)
	}
	log.Printf("[ROUND] provenance written: run %s", runID)
}

// #endregion round
