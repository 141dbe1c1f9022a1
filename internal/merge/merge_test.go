package merge

import (
	"testing"

	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
)

// #region propagate-tests

func TestPropagate(t *testing.T) {
	adj := 1
	original := []dataset.Record{
		{RecordID: "id-a", Question: "A", K: "2", Answer: "ans-a", GroundTruth: []string{"gt"}},
		{RecordID: "id-b", Question: "B", K: "3", Answer: "ans-b"},
		{RecordID: "id-c", Question: "C", K: "1", Answer: "ans-c"},
	}
	updated := []dataset.Record{
		{RecordID: "id-a", Question: "A", K: "3", JudgeResponse: "Evaluation Score: 5", Score: 5, Adjustment: &adj},
		{RecordID: "id-b", Question: "B", K: "2"},
	}

	result := Propagate(original, updated)

	if len(result.Merged) != 2 {
		t.Fatalf("Merged = %d records, want 2", len(result.Merged))
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}

	a := result.Merged[0]
	if a.Question != "A" || a.K != "3" {
		t.Errorf("record A = question %q k %q, want A/3", a.Question, a.K)
	}
	if a.Answer != "ans-a" || len(a.GroundTruth) != 1 {
		t.Errorf("record A lost original fields: %+v", a)
	}
	if a.JudgeResponse != "" || a.Score != 0 || a.Adjustment != nil {
		t.Errorf("record A kept evaluation fields: %+v", a)
	}

	b := result.Merged[1]
	if b.Question != "B" || b.K != "2" {
		t.Errorf("record B = question %q k %q, want B/2", b.Question, b.K)
	}
}

func TestPropagateQuestionFallback(t *testing.T) {
	original := []dataset.Record{
		{Question: "A", K: "2"},
		{Question: "B", K: "3"},
	}
	updated := []dataset.Record{
		{Question: "A", K: "1"},
	}

	result := Propagate(original, updated)
	if len(result.Merged) != 1 || result.Merged[0].K != "1" {
		t.Errorf("Merged = %+v, want single A at k=1", result.Merged)
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}
}

// Two records with the same question text but distinct IDs stay distinct when
// both sides carry IDs. The question-keyed fallback cannot tell them apart.
func TestPropagateDuplicateQuestions(t *testing.T) {
	original := []dataset.Record{
		{RecordID: "id-1", Question: "same", K: "1"},
		{RecordID: "id-2", Question: "same", K: "4"},
	}
	updated := []dataset.Record{
		{RecordID: "id-1", Question: "same", K: "2"},
		{RecordID: "id-2", Question: "same", K: "3"},
	}

	result := Propagate(original, updated)
	if len(result.Merged) != 2 {
		t.Fatalf("Merged = %d records, want 2", len(result.Merged))
	}
	if result.Merged[0].K != "2" {
		t.Errorf("id-1 K = %q, want 2", result.Merged[0].K)
	}
	if result.Merged[1].K != "3" {
		t.Errorf("id-2 K = %q, want 3", result.Merged[1].K)
	}
}

func TestPropagateEmptyUpdated(t *testing.T) {
	original := []dataset.Record{{Question: "A", K: "2"}, {Question: "B", K: "3"}}
	result := Propagate(original, nil)
	if len(result.Merged) != 0 {
		t.Errorf("Merged = %d records, want 0", len(result.Merged))
	}
	if result.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", result.Dropped)
	}
}

func TestPropagatePreservesOrder(t *testing.T) {
	original := []dataset.Record{
		{Question: "q1", K: "1"},
		{Question: "q2", K: "1"},
		{Question: "q3", K: "1"},
	}
	// Updated set arrives out of order; output must follow the original.
	updated := []dataset.Record{
		{Question: "q3", K: "2"},
		{Question: "q1", K: "0"},
	}

	result := Propagate(original, updated)
	if len(result.Merged) != 2 {
		t.Fatalf("Merged = %d records, want 2", len(result.Merged))
	}
	if result.Merged[0].Question != "q1" || result.Merged[1].Question != "q3" {
		t.Errorf("order = %q, %q, want q1, q3", result.Merged[0].Question, result.Merged[1].Question)
	}
}

// #endregion propagate-tests
