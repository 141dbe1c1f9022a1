package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// #region depth

// Depth is a context depth level: how many ranked documents the generator
// was (or will be) given. Valid levels are "0".."5" and "null", where "null"
// means unbounded and behaves as the ceiling. The zero value is "unset".
type Depth string

// DepthNull is the unbounded depth. It shares ceiling behavior with "5".
const DepthNull Depth = "null"

// MaxDepth is the highest bounded depth level.
const MaxDepth = 5

// DepthOf returns the bounded depth for n. n must be in [0, MaxDepth].
func DepthOf(n int) Depth {
	return Depth(strconv.Itoa(n))
}

// ParseDepth validates s as a depth level.
func ParseDepth(s string) (Depth, error) {
	if s == string(DepthNull) {
		return DepthNull, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > MaxDepth {
		return "", fmt.Errorf("invalid depth %q", s)
	}
	return DepthOf(n), nil
}

// IsSet reports whether the depth carries a value.
func (d Depth) IsSet() bool {
	return d != ""
}

// IsNull reports whether the depth is unbounded.
func (d Depth) IsNull() bool {
	return d == DepthNull
}

// IsCeiling reports whether the depth is in the ceiling class ("5" or "null").
func (d Depth) IsCeiling() bool {
	return d == DepthNull || d == DepthOf(MaxDepth)
}

// Int returns the bounded value. ok is false for "null" and unset.
func (d Depth) Int() (n int, ok bool) {
	if !d.IsSet() || d.IsNull() {
		return 0, false
	}
	n, err := strconv.Atoi(string(d))
	if err != nil {
		return 0, false
	}
	return n, true
}

// UnmarshalJSON accepts the depth as a JSON string ("0".."5", "null"),
// a JSON number, or a JSON null (treated as unbounded).
func (d *Depth) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = DepthNull
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			*d = ""
			return nil
		}
		parsed, err := ParseDepth(raw)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid depth %s", s)
	}
	if n < 0 || n > MaxDepth {
		return fmt.Errorf("invalid depth %d", n)
	}
	*d = DepthOf(n)
	return nil
}

// MarshalJSON emits the depth as a JSON string, matching the flat-file format.
func (d Depth) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// #endregion depth

// #region document

// Document is one retrieved supporting document, pre-ranked by relevance.
// Source files carry the text under either "content" or "text".
type Document struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Text    string `json:"text,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Body returns the document text, preferring "content" over "text".
func (doc Document) Body() string {
	if doc.Content != "" {
		return doc.Content
	}
	return doc.Text
}

// #endregion document

// #region record

// Record is one question under evaluation. Field names follow the flat-file
// format: the ranked document list is stored under "meta" and the raw judge
// reply under "response". RecordID is assigned at ingestion and is the
// preferred join key across rounds; the question text is kept for display
// and as a fallback key for files that predate ingestion.
type Record struct {
	RecordID    string     `json:"record_id,omitempty"`
	Question    string     `json:"question"`
	K           Depth      `json:"k,omitempty"`
	Documents   []Document `json:"meta,omitempty"`
	Answer      string     `json:"answer,omitempty"`
	GroundTruth []string   `json:"ground_truth,omitempty"`

	// Evaluation fields, attached after a judge pass.
	JudgeResponse string `json:"response,omitempty"`
	Score         int    `json:"evaluation_score,omitempty"`
	Adjustment    *int   `json:"context_adjustment,omitempty"`
}

// ClearEvaluation removes all judge-attached fields, leaving a fresh record
// for the next round.
func (r *Record) ClearEvaluation() {
	r.JudgeResponse = ""
	r.Score = 0
	r.Adjustment = nil
}

// Key returns the record's join identity: the record ID when present,
// otherwise the question text.
func (r Record) Key() string {
	if r.RecordID != "" {
		return r.RecordID
	}
	return r.Question
}

// #endregion record
