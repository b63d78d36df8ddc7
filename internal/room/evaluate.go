package room

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/catalog"
)

// Result is one player's outcome for a closed question.
type Result struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Avatar  interface{} `json:"avatar"`
	Correct bool        `json:"correct"`
}

// Evaluation is the outcome of closing a question: a result for every player who
// answered, and the score each correct player earns.
type Evaluation struct {
	Results map[uuid.UUID]Result
	Deltas  map[uuid.UUID]int
}

// Evaluate compares every recorded answer against the question's correct choice.
// Answers and the answer key are compared as numbers, so "1" matches 1.
// Answers from connections that are no longer players are skipped, and players who
// never answered get neither a result nor a delta. Evaluate does not modify its inputs.
func Evaluate(q catalog.Question, answers map[uuid.UUID]interface{}, players map[uuid.UUID]*Player) Evaluation {
	ev := Evaluation{
		Results: make(map[uuid.UUID]Result, len(answers)),
		Deltas:  make(map[uuid.UUID]int),
	}
	points := q.PointValue()
	for id, raw := range answers {
		p, ok := players[id]
		if !ok {
			continue
		}
		ans, isNum := catalog.ToNumber(raw)
		correct := isNum && ans == q.Correct
		ev.Results[id] = Result{ID: id, Name: p.Name, Avatar: p.Avatar, Correct: correct}
		if correct {
			ev.Deltas[id] = points
		}
	}
	return ev
}

// closeQuestionLocked evaluates the current question, applies score deltas and clears
// pending answers. With no question at the current index nothing is scored.
func (r *Room) closeQuestionLocked(cat *catalog.Catalog) map[uuid.UUID]Result {
	q, ok := cat.At(r.currentQuestionIndex)
	if !ok {
		r.answers = make(map[uuid.UUID]interface{})
		return map[uuid.UUID]Result{}
	}
	ev := Evaluate(q, r.answers, r.players)
	for id, delta := range ev.Deltas {
		r.players[id].Score += delta
	}
	r.answers = make(map[uuid.UUID]interface{})
	return ev.Results
}
