package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestParseQuestionsDocument(t *testing.T) {
	doc := `{"questions": [
		{"question": "2+2?", "choices": ["3", "4"], "correct": 1, "points": 200},
		{"question": "Sky?", "choices": ["blue", "green"], "correct": "0"}
	]}`

	c, err := Parse([]byte(doc), testLogger())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	q0, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, 0, q0.Index)
	assert.Equal(t, float64(1), q0.Correct)
	assert.Equal(t, 200, q0.PointValue())

	q1, ok := c.At(1)
	require.True(t, ok)
	assert.Equal(t, 1, q1.Index)
	assert.Equal(t, float64(0), q1.Correct)
	assert.Equal(t, DefaultPoints, q1.PointValue(), "missing points should default")

	_, ok = c.At(2)
	assert.False(t, ok)
	_, ok = c.At(-1)
	assert.False(t, ok)
}

func TestParseBareArray(t *testing.T) {
	c, err := Parse([]byte(`[{"correct": 2, "points": "50"}]`), testLogger())
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	q, _ := c.At(0)
	assert.Equal(t, 50, q.PointValue())
}

func TestQuestionMarshalsOriginalRecord(t *testing.T) {
	record := `{"question":"Capital of France?","choices":["Paris","Rome"],"correct":0}`
	c, err := Parse([]byte(`[`+record+`]`), testLogger())
	require.NoError(t, err)

	q, _ := c.At(0)
	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, record, string(out))
}

func TestInvalidRecordsAreDropped(t *testing.T) {
	doc := `[
		{"correct": 1},
		{"question": "no answer key"},
		{"correct": -1},
		{"correct": "abc"},
		"not an object"
	]`
	c, err := Parse([]byte(doc), testLogger())
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	q, _ := c.At(0)
	assert.Equal(t, 0, q.Index)
}

func TestPointValueFallsBackForZero(t *testing.T) {
	c, err := Parse([]byte(`[{"correct": 0, "points": 0}]`), testLogger())
	require.NoError(t, err)
	q, _ := c.At(0)
	assert.Equal(t, DefaultPoints, q.PointValue())
}

func TestNegativePointsKeepQuestion(t *testing.T) {
	c, err := Parse([]byte(`[
		{"question": "A", "correct": 0, "points": -20},
		{"question": "B", "correct": 1, "points": 50}
	]`), testLogger())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len(), "a bad point value must not shift later questions")

	first, _ := c.At(0)
	assert.Equal(t, DefaultPoints, first.PointValue())
	second, _ := c.At(1)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, 50, second.PointValue())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte(""), testLogger())
	assert.Error(t, err)
	_, err = Parse([]byte("{nope"), testLogger())
	assert.Error(t, err)
}

func TestNilCatalogIsEmpty(t *testing.T) {
	var c *Catalog
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
	_, ok := c.At(0)
	assert.False(t, ok)
}

func TestLoadOrEmptyMissingFile(t *testing.T) {
	c := LoadOrEmpty(t.Context(), nil, filepath.Join(t.TempDir(), "missing.json"), testLogger())
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"questions":[{"correct":1},{"correct":0}]}`), 0o600))

	c := LoadOrEmpty(t.Context(), nil, path, testLogger())
	assert.Equal(t, 2, c.Len())
}

func TestToNumber(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float64(1), 1, true},
		{"1", 1, true},
		{" 2 ", 2, true},
		{json.Number("3"), 3, true},
		{7, 7, true},
		{"", 0, false},
		{"x", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := ToNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "input %#v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %#v", tc.in)
		}
	}
}
