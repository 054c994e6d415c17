package app

import (
	"sync"

	"trivia-quiz/internal/domain"
)

// Attempt is the authority-side state of one player's run through a category.
type Attempt struct {
	ID          string
	UserID      string
	DisplayName string
	CategoryID  string

	mu           sync.Mutex
	questions    []domain.BankQuestion
	finalized    map[string]bool
	firstAttempt map[string]bool
	secondChance string
	score        int
}

func newAttempt(id, userID, categoryID string, questions []domain.BankQuestion) *Attempt {
	return &Attempt{
		ID:           id,
		UserID:       userID,
		CategoryID:   categoryID,
		questions:    questions,
		finalized:    make(map[string]bool),
		firstAttempt: make(map[string]bool),
	}
}

// Score is the total awarded so far in this attempt.
func (a *Attempt) Score() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.score
}

// Completed reports whether every question of the attempt has a final verdict.
func (a *Attempt) Completed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.finalized) == len(a.questions)
}

// Public returns the questions as served to the player.
func (a *Attempt) Public() domain.Attempt {
	a.mu.Lock()
	defer a.mu.Unlock()
	questions := make([]domain.Question, 0, len(a.questions))
	for _, q := range a.questions {
		questions = append(questions, q.Public())
	}
	return domain.Attempt{ID: a.ID, CategoryID: a.CategoryID, Questions: questions}
}

// open returns the question if it is part of the attempt and still unscored.
func (a *Attempt) open(questionID string) (domain.BankQuestion, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openLocked(questionID)
}

func (a *Attempt) openLocked(questionID string) (domain.BankQuestion, error) {
	for _, q := range a.questions {
		if q.ID != questionID {
			continue
		}
		if a.finalized[q.ID] {
			return domain.BankQuestion{}, domain.ErrAlreadyAnswered
		}
		return q, nil
	}
	return domain.BankQuestion{}, domain.ErrQuestionNotFound
}

func (a *Attempt) armSecondChance(questionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.secondChance = questionID
}

// submit scores one submission. final is false when a wrong answer was
// absorbed by the second-chance joker.
func (a *Attempt) submit(sub domain.AnswerSubmission) (res domain.SubmitResult, final bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.openLocked(sub.QuestionID)
	if err != nil {
		return domain.SubmitResult{}, false, err
	}
	correct, points, err := scoreSubmission(q, sub.AnswerID)
	if err != nil {
		return domain.SubmitResult{}, false, err
	}

	if a.secondChance == q.ID && !correct && !a.firstAttempt[q.ID] {
		a.firstAttempt[q.ID] = true
		return domain.SubmitResult{SecondChanceGranted: true}, false, nil
	}

	a.finalized[q.ID] = true
	if a.secondChance == q.ID {
		a.secondChance = ""
	}
	a.score += points
	return domain.SubmitResult{
		IsCorrect:       correct,
		PointsAwarded:   points,
		CorrectAnswerID: q.CorrectOptionID(),
		IsSecondAttempt: a.firstAttempt[q.ID],
	}, true, nil
}

// scoreSubmission validates the answer against the question and returns (correct, points).
func scoreSubmission(question domain.BankQuestion, answerID string) (bool, int, error) {
	var selected *domain.Option
	for i := range question.Options {
		if question.Options[i].ID == answerID {
			selected = &question.Options[i]
			break
		}
	}
	if selected == nil {
		return false, 0, domain.ErrOptionNotFound
	}
	if selected.Correct {
		return true, question.Worth(), nil
	}
	return false, 0, nil
}
