package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia-quiz/internal/domain"
)

// BoardRepository abstracts how category leaderboards are stored (in-memory, Redis, etc).
type BoardRepository interface {
	GetOrCreate(categoryID string) *Board
	Get(categoryID string) (*Board, bool)
}

// CategoryRepository loads category content (from cache/backing store).
type CategoryRepository interface {
	GetCategory(ctx context.Context, categoryID string) (domain.CategoryBank, error)
}

// AttemptStore keeps the active attempt of each player.
type AttemptStore interface {
	Put(userID string, attempt *Attempt)
	Get(userID string) (*Attempt, bool)
}

// JokerLedger records spent jokers per player and category.
type JokerLedger interface {
	// Consume marks the joker spent, or returns domain.ErrJokerUsed.
	Consume(ctx context.Context, userID, categoryID string, kind domain.JokerKind) error
	Status(ctx context.Context, userID, categoryID string) (domain.JokerStatus, error)
}

// Options tune how attempts are assembled.
type Options struct {
	QuestionsPerAttempt int
	Shuffle             bool
}

// QuizService is the remote authority: it serves questions, scores answers
// and grants jokers.
type QuizService struct {
	boards     BoardRepository
	categories CategoryRepository
	attempts   AttemptStore
	jokers     JokerLedger
	opts       Options

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizService(boards BoardRepository, categories CategoryRepository, attempts AttemptStore, jokers JokerLedger, opts Options) *QuizService {
	return &QuizService{
		boards:     boards,
		categories: categories,
		attempts:   attempts,
		jokers:     jokers,
		opts:       opts,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetCategory returns display metadata of a category.
func (s *QuizService) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	bank, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	return bank.Category, nil
}

// StartQuiz opens a fresh attempt for the player, replacing any previous one.
func (s *QuizService) StartQuiz(ctx context.Context, userID, displayName, categoryID string) (domain.Attempt, error) {
	bank, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if len(bank.Questions) == 0 {
		return domain.Attempt{}, domain.ErrEmptyCategory
	}

	attempt := newAttempt(uuid.NewString(), userID, categoryID, s.pick(bank.Questions))
	attempt.DisplayName = displayName
	s.attempts.Put(userID, attempt)
	s.boards.GetOrCreate(categoryID).join(userID, displayName)
	return attempt.Public(), nil
}

// SubmitAnswer scores a submission of the player's active attempt.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID string, submission domain.AnswerSubmission) (domain.SubmitResult, error) {
	attempt, ok := s.attempts.Get(userID)
	if !ok {
		return domain.SubmitResult{}, domain.ErrAttemptNotFound
	}

	res, final, err := attempt.submit(submission)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if final {
		board := s.boards.GetOrCreate(attempt.CategoryID)
		board.record(userID, attempt.DisplayName, res, attempt.Completed())
	}
	return res, nil
}

// JokerStatus reports which jokers the player already spent in the category.
func (s *QuizService) JokerStatus(ctx context.Context, userID, categoryID string) (domain.JokerStatus, error) {
	return s.jokers.Status(ctx, userID, categoryID)
}

// UseElimination spends the elimination joker and returns up to two wrong answer ids.
func (s *QuizService) UseElimination(ctx context.Context, userID, categoryID, questionID string) ([]string, error) {
	attempt, err := s.attemptFor(userID, categoryID)
	if err != nil {
		return nil, err
	}
	question, err := attempt.open(questionID)
	if err != nil {
		return nil, err
	}
	if err := s.jokers.Consume(ctx, userID, categoryID, domain.JokerElimination); err != nil {
		return nil, err
	}
	return s.eliminate(question, 2), nil
}

// UseSecondChance spends the second-chance joker on the given question.
func (s *QuizService) UseSecondChance(ctx context.Context, userID, categoryID, questionID string) error {
	attempt, err := s.attemptFor(userID, categoryID)
	if err != nil {
		return err
	}
	if _, err := attempt.open(questionID); err != nil {
		return err
	}
	if err := s.jokers.Consume(ctx, userID, categoryID, domain.JokerSecondChance); err != nil {
		return err
	}
	attempt.armSecondChance(questionID)
	return nil
}

// Leaderboard returns the current standings of a category.
func (s *QuizService) Leaderboard(_ context.Context, categoryID string) (domain.Leaderboard, error) {
	board, ok := s.boards.Get(categoryID)
	if !ok {
		return domain.Leaderboard{}, domain.ErrBoardNotFound
	}
	return board.Snapshot(), nil
}

// Subscribe returns a channel that receives leaderboard updates for a category.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, categoryID string) (<-chan domain.Leaderboard, func(), error) {
	board := s.boards.GetOrCreate(categoryID)
	ch, cancel := board.subscribe()
	return ch, cancel, nil
}

func (s *QuizService) attemptFor(userID, categoryID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(userID)
	if !ok || attempt.CategoryID != categoryID {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *QuizService) pick(pool []domain.BankQuestion) []domain.BankQuestion {
	picked := append([]domain.BankQuestion(nil), pool...)
	if s.opts.Shuffle {
		s.rndMu.Lock()
		s.rnd.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
		s.rndMu.Unlock()
	}
	if n := s.opts.QuestionsPerAttempt; n > 0 && len(picked) > n {
		picked = picked[:n]
	}
	return picked
}

// eliminate picks up to n wrong options at random. The correct option is never returned.
func (s *QuizService) eliminate(q domain.BankQuestion, n int) []string {
	wrong := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if !opt.Correct {
			wrong = append(wrong, opt.ID)
		}
	}
	s.rndMu.Lock()
	s.rnd.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	s.rndMu.Unlock()
	if len(wrong) > n {
		wrong = wrong[:n]
	}
	return wrong
}
