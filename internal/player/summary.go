package player

import "math"

// Attempt is one scored submission. It is never mutated after being recorded.
type Attempt struct {
	AnswerID        string `json:"answerId"`
	Correct         bool   `json:"correct"`
	Points          int    `json:"points"`
	ElapsedSeconds  int    `json:"elapsedSeconds"`
	TimedOut        bool   `json:"timedOut,omitempty"`
	CorrectAnswerID string `json:"correctAnswerId,omitempty"`
}

// AnsweredRecord is the outcome of one question. FirstAttempt is only set when
// the second-chance joker absorbed a wrong answer; Final is nil when the
// question could not be scored.
type AnsweredRecord struct {
	QuestionID   string   `json:"questionId"`
	FirstAttempt *Attempt `json:"firstAttempt,omitempty"`
	Final        *Attempt `json:"final,omitempty"`
}

func (r AnsweredRecord) Scored() bool { return r.Final != nil }

func (r AnsweredRecord) Correct() bool { return r.Final != nil && r.Final.Correct }

func (r AnsweredRecord) Points() int {
	if r.Final == nil {
		return 0
	}
	return r.Final.Points
}

// Summary is the completion screen of a session.
type Summary struct {
	Total      int `json:"total"`
	Correct    int `json:"correct"`
	Points     int `json:"points"`
	Percentage int `json:"percentage"`
}

// Summarize folds the recorded outcomes into a Summary.
func Summarize(records []AnsweredRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Correct() {
			s.Correct++
		}
		s.Points += r.Points()
	}
	if s.Total > 0 {
		s.Percentage = int(math.Round(100 * float64(s.Correct) / float64(s.Total)))
	}
	return s
}
