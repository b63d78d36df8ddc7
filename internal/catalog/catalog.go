// internal/catalog/catalog.go
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// DefaultPoints is awarded for a correct answer when a question carries no usable point value.
const DefaultPoints = 100

var validate = validator.New()

// Question is one read-only catalog entry. The prompt and choices are opaque to the
// room logic and are sent to clients exactly as they were stored.
type Question struct {
	Index   int
	Correct float64

	points    float64
	hasPoints bool
	body      json.RawMessage
}

// PointValue is the score awarded for answering this question correctly.
func (q Question) PointValue() int {
	if !q.hasPoints || q.points <= 0 {
		return DefaultPoints
	}
	return int(math.Round(q.points))
}

// MarshalJSON emits the stored record unchanged.
func (q Question) MarshalJSON() ([]byte, error) {
	if len(q.body) == 0 {
		return []byte("null"), nil
	}
	return q.body, nil
}

// Catalog is the ordered question bank, loaded once and never mutated afterwards.
// A nil *Catalog behaves like an empty one.
type Catalog struct {
	questions []Question
}

// Empty returns a catalog with no questions.
func Empty() *Catalog {
	return &Catalog{}
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.questions)
}

// At returns the question at index i.
func (c *Catalog) At(i int) (Question, bool) {
	if c == nil || i < 0 || i >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[i], true
}

// All returns a copy of every question in order.
func (c *Catalog) All() []Question {
	if c == nil {
		return []Question{}
	}
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// recordRules are the constraints a stored record must satisfy to enter the catalog.
// Points are not checked here: an unusable value scores DefaultPoints instead.
type recordRules struct {
	Correct *float64 `validate:"required,gte=0"`
}

// recordFields are the only fields the room logic reads from a record.
type recordFields struct {
	Correct interface{} `json:"correct"`
	Points  interface{} `json:"points"`
}

// ParseRecord validates a single stored question record.
func ParseRecord(raw json.RawMessage) (Question, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Question{}, fmt.Errorf("question record must be a JSON object")
	}

	var fields recordFields
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Question{}, fmt.Errorf("decode question record: %w", err)
	}

	rules := recordRules{}
	if correct, ok := ToNumber(fields.Correct); ok {
		rules.Correct = &correct
	}
	points, hasPoints := ToNumber(fields.Points)
	if err := validate.Struct(rules); err != nil {
		return Question{}, fmt.Errorf("invalid question record: %w", err)
	}

	body := make(json.RawMessage, len(trimmed))
	copy(body, trimmed)
	return Question{
		Correct:   *rules.Correct,
		points:    points,
		hasPoints: hasPoints,
		body:      body,
	}, nil
}

// FromRecords builds a catalog from raw records, dropping (and logging) any that fail validation.
func FromRecords(records []json.RawMessage, logger *logrus.Logger) *Catalog {
	c := &Catalog{questions: make([]Question, 0, len(records))}
	for i, raw := range records {
		q, err := ParseRecord(raw)
		if err != nil {
			if logger != nil {
				logger.WithFields(logrus.Fields{"record": i, "error": err}).Warn("skipping question record")
			}
			continue
		}
		q.Index = len(c.questions)
		c.questions = append(c.questions, q)
	}
	return c
}

// Parse reads a question bank document. Both {"questions": [...]} and a bare array are accepted.
func Parse(data []byte, logger *logrus.Logger) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	var records []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode question list: %w", err)
		}
	} else {
		var doc struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode question bank: %w", err)
		}
		records = doc.Questions
	}
	return FromRecords(records, logger), nil
}
