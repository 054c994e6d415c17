package domain

import "errors"

var (
	// ErrCategoryNotFound indicates the category content could not be loaded.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrBoardNotFound is returned when a category leaderboard has not been initialized.
	ErrBoardNotFound = errors.New("leaderboard not found")
	// ErrAttemptNotFound is returned when a user acts before starting a quiz.
	ErrAttemptNotFound = errors.New("no active quiz attempt")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the attempt.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted answer ID is invalid.
	ErrOptionNotFound = errors.New("answer not found")
	// ErrAlreadyAnswered is returned when a question has already been scored.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrJokerUsed is returned when a joker has already been spent.
	ErrJokerUsed = errors.New("joker already used")
	// ErrEmptyCategory is returned when a category has no questions to serve.
	ErrEmptyCategory = errors.New("category has no questions")
	// ErrInvalidCategory is returned when stored category content cannot be served.
	ErrInvalidCategory = errors.New("invalid category content")
)
