package player

import "errors"

var (
	// ErrNoQuestions is returned by Run when the authority served an empty quiz.
	ErrNoQuestions = errors.New("no questions available for this category")
	// ErrInvalidQuestion is returned by Run when a served question has no answer choices.
	ErrInvalidQuestion = errors.New("question has no answer choices")
	// ErrInputLocked is returned when an answer is given outside the answer phase.
	ErrInputLocked = errors.New("not accepting answers right now")
	// ErrUnknownAnswer is returned for an answer id the current question does not offer.
	ErrUnknownAnswer = errors.New("answer is not part of the current question")
	// ErrAnswerDisabled is returned for an eliminated or already rejected answer.
	ErrAnswerDisabled = errors.New("answer is disabled")
	// ErrJokerUnavailable is returned when a joker cannot be invoked now.
	ErrJokerUnavailable = errors.New("joker unavailable")
	// ErrSessionClosed is returned when the controller is no longer running.
	ErrSessionClosed = errors.New("quiz session closed")
)
