package domain

import (
	"fmt"
	"time"
)

// Difficulty grades a question; it also drives the default point value.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultPoints returns the points a correct answer is worth when the question sets none.
func (d Difficulty) DefaultPoints() int {
	switch d {
	case DifficultyMedium:
		return 10
	case DifficultyHard:
		return 20
	default:
		return 5
	}
}

// Category is the display metadata of a question category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Answer is an answer choice as shown to players. It never carries correctness.
type Answer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a multiple-choice question as shown to players.
type Question struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Answers    []Answer   `json:"answers"`
}

// Option is the authority-side view of an answer choice.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// BankQuestion models an MCQ question with exactly one correct option.
type BankQuestion struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Options    []Option   `json:"options"`
	Points     int        `json:"points"` // falls back to Difficulty.DefaultPoints if zero
}

// Public strips correctness from the question.
func (q BankQuestion) Public() Question {
	answers := make([]Answer, 0, len(q.Options))
	for _, opt := range q.Options {
		answers = append(answers, Answer{ID: opt.ID, Text: opt.Text})
	}
	return Question{ID: q.ID, Text: q.Text, Difficulty: q.Difficulty, Answers: answers}
}

// Worth returns the points awarded for a correct answer.
func (q BankQuestion) Worth() int {
	if q.Points > 0 {
		return q.Points
	}
	return q.Difficulty.DefaultPoints()
}

// CorrectOptionID returns the id of the correct option, or "" if none is flagged.
func (q BankQuestion) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}

// CategoryBank is a category together with its question pool.
type CategoryBank struct {
	Category
	Questions []BankQuestion `json:"questions"`
}

// Validate checks that every question has unique option ids and exactly one
// correct option. An empty pool is valid.
func (b CategoryBank) Validate() error {
	seen := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		if q.ID == "" || seen[q.ID] {
			return fmt.Errorf("%w: duplicate or missing question id %q", ErrInvalidCategory, q.ID)
		}
		seen[q.ID] = true

		correct := 0
		options := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.ID == "" || options[opt.ID] {
				return fmt.Errorf("%w: question %s repeats option %q", ErrInvalidCategory, q.ID, opt.ID)
			}
			options[opt.ID] = true
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %s has %d correct options", ErrInvalidCategory, q.ID, correct)
		}
	}
	return nil
}

// Attempt is what a player receives when starting a quiz.
type Attempt struct {
	ID         string     `json:"attemptId"`
	CategoryID string     `json:"categoryId"`
	Questions  []Question `json:"questions"`
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	QuestionID     string `json:"questionId"`
	AnswerID       string `json:"answerId"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

// SubmitResult is the authority's verdict on one submission.
type SubmitResult struct {
	IsCorrect           bool   `json:"isCorrect"`
	PointsAwarded       int    `json:"pointsAwarded"`
	CorrectAnswerID     string `json:"correctAnswerId,omitempty"`
	SecondChanceGranted bool   `json:"secondChanceGranted"`
	IsSecondAttempt     bool   `json:"isSecondAttempt"`
}

// JokerKind names a power-up.
type JokerKind string

const (
	JokerElimination  JokerKind = "elimination"
	JokerSecondChance JokerKind = "second-chance"
)

// JokerStatus reports which jokers a player has spent in a category.
type JokerStatus struct {
	EliminationUsed  bool `json:"eliminationUsed"`
	SecondChanceUsed bool `json:"secondChanceUsed"`
}

// Participant represents a player on a category leaderboard.
type Participant struct {
	UserID      string
	DisplayName string
	Score       int
	Answered    int
	Correct     int
	CompletedAt time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Correct     int    `json:"correct"`
	Answered    int    `json:"answered"`
	Completed   bool   `json:"completed"`
}

// Leaderboard captures the ordered scoreboard for a category.
type Leaderboard struct {
	CategoryID string             `json:"categoryId"`
	Entries    []LeaderboardEntry `json:"entries"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}
