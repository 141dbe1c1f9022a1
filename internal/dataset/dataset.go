package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// #region load-save

// Load reads a flat JSON array of records. I/O and parse errors are fatal to
// the caller and name the failing path.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return records, nil
}

// Save writes records as an indented JSON array, creating parent directories
// as needed.
func Save(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", path, err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dataset %s: %w", path, err)
	}
	return nil
}

// #endregion load-save

// #region ingest

// IngestReport summarizes what Ingest changed and what it flagged.
type IngestReport struct {
	Assigned           int // records that received a new record ID
	DuplicateQuestions int // questions appearing more than once in the batch
}

// Ingest assigns a stable record ID to every record that lacks one and counts
// duplicate questions. Duplicates are a known hazard for question-keyed
// joins; ID assignment is what makes them safe.
func Ingest(records []Record) IngestReport {
	var report IngestReport
	seen := make(map[string]int, len(records))
	for i := range records {
		if records[i].RecordID == "" {
			records[i].RecordID = uuid.New().String()
			report.Assigned++
		}
		seen[records[i].Question]++
	}
	for _, n := range seen {
		if n > 1 {
			report.DuplicateQuestions++
		}
	}
	return report
}

// #endregion ingest

// #region context

// ContextText formats the record's supporting documents for the judge prompt,
// one "Document N: ..." line per document. Only the top-k prefix of the
// ranked sequence is included; an unset or unbounded depth includes all
// documents. The sequence is never re-ordered.
func ContextText(r Record) string {
	docs := r.Documents
	if n, ok := r.K.Int(); ok && n < len(docs) {
		docs = docs[:n]
	}
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "Document %d: %s\n", i+1, doc.Body())
	}
	return b.String()
}

// #endregion context

// #region answers

// AnswerMap builds a question → answer lookup from an answer file's records.
func AnswerMap(records []Record) map[string]string {
	m := make(map[string]string, len(records))
	for _, r := range records {
		m[r.Question] = r.Answer
	}
	return m
}

// AttachAnswers copies answers onto records by question identity and reports
// how many records had no matching answer.
func AttachAnswers(records []Record, answers map[string]string) (matched, missing int) {
	for i := range records {
		if a, ok := answers[records[i].Question]; ok {
			records[i].Answer = a
			matched++
		} else {
			missing++
		}
	}
	return matched, missing
}

// #endregion answers
