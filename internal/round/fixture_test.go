package round

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/adaptive-depth/internal/dataset"
)

// #region fixture-tests

const sampleFixture = `{
  "description": "one resolves, one raises, one resets",
  "records": [
    {
      "record_id": "id-1",
      "question": "resolves",
      "k": "2",
      "response": "Evaluation Score: 9\nContext Adjustment: 0"
    },
    {
      "record_id": "id-2",
      "question": "raises",
      "k": "2",
      "response": "Evaluation Score: 6\nContext Adjustment: 1"
    },
    {
      "record_id": "id-3",
      "question": "resets",
      "k": "5",
      "response": "Evaluation Score: 2\nContext Adjustment: 0"
    }
  ],
  "expected": [
    {"question": "resolves", "resolved": true},
    {"question": "raises", "k": "3"},
    {"question": "resets", "k": "0"}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Records) != 3 || len(f.Expected) != 3 {
		t.Errorf("records=%d expected=%d, want 3/3", len(f.Records), len(f.Expected))
	}
	if f.Description == "" {
		t.Error("description not parsed")
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("want error for missing file")
	}
	if _, err := LoadFixture(writeFixture(t, "{not json")); err == nil {
		t.Error("want error for malformed JSON")
	}
}

func TestReplay(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	outcomes := f.Replay()
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	for _, out := range outcomes {
		if !out.Match {
			t.Errorf("%s: want k=%q resolved=%v, got k=%q resolved=%v",
				out.Question, out.WantK, out.WantResolved, out.GotK, out.GotResolved)
		}
	}
}

func TestReplayDivergence(t *testing.T) {
	f := &Fixture{
		Records: []dataset.Record{
			{RecordID: "id-1", Question: "q", K: "2", JudgeResponse: "Evaluation Score: 6\nContext Adjustment: 1"},
		},
		Expected: []ExpectedOutcome{
			{Question: "q", K: "2"}, // wrong: the controller raises to 3
		},
	}

	outcomes := f.Replay()
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}
	out := outcomes[0]
	if out.Match {
		t.Error("divergent expectation reported as a match")
	}
	if out.GotK != "3" {
		t.Errorf("GotK = %q, want 3", out.GotK)
	}
}

// #endregion fixture-tests
