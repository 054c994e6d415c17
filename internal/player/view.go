package player

import "trivia-quiz/internal/domain"

// EventKind classifies controller events.
type EventKind int

const (
	EventState EventKind = iota
	EventTick
	EventResult
	EventJoker
	EventAlert
)

// Event is emitted by the controller whenever something a front-end shows changes.
type Event struct {
	Kind      EventKind
	State     State
	Index     int
	Remaining int
	Result    *domain.SubmitResult
	Joker     domain.JokerKind
	Message   string
	Err       error
}

// View is a point-in-time copy of everything a front-end renders.
type View struct {
	State        State
	Category     domain.Category
	Index        int
	Total        int
	Question     domain.Question
	Remaining    int
	Selected     string
	Disabled     []string
	Elimination  JokerPhase
	SecondChance JokerPhase
	// Revealed is nil until the final verdict of the current question arrives.
	Revealed *domain.SubmitResult
	Records  []AnsweredRecord
	Summary  Summary
	Err      error
}

func (c *Controller) view() View {
	v := View{
		State:        c.state,
		Category:     c.category,
		Index:        c.index,
		Total:        len(c.questions),
		Remaining:    c.timer.remaining,
		Selected:     c.selected,
		Elimination:  c.elimination.phase,
		SecondChance: c.secondChance.phase,
		Records:      append([]AnsweredRecord(nil), c.records...),
		Summary:      c.summary,
		Err:          c.err,
	}
	if len(c.questions) > 0 {
		v.Question = c.current()
		for _, a := range v.Question.Answers {
			if c.disabled(a.ID) {
				v.Disabled = append(v.Disabled, a.ID)
			}
		}
	}
	if c.revealed != nil {
		res := *c.revealed
		v.Revealed = &res
	}
	return v
}
