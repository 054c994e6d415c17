package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

// fakeClock fires tickers and delays only when the test advances it.
type fakeClock struct {
	mu        sync.Mutex
	now       time.Time
	tickers   []*fakeTicker
	afters    []fakeAfter
	active    int
	maxActive int
}

type fakeAfter struct {
	at time.Time
	ch chan time.Time
}

type fakeTicker struct {
	clock   *fakeClock
	d       time.Duration
	next    time.Time
	ch      chan time.Time
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{clock: c, d: d, next: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	return t
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.afters = append(c.afters, fakeAfter{at: c.now.Add(d), ch: ch})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		for !t.stopped && !t.next.After(c.now) {
			select {
			case t.ch <- c.now:
			default:
			}
			t.next = t.next.Add(t.d)
		}
	}
	pending := c.afters[:0]
	for _, a := range c.afters {
		if a.at.After(c.now) {
			pending = append(pending, a)
			continue
		}
		a.ch <- c.now
	}
	c.afters = pending
}

// PendingDelays reports how many After channels have not fired yet.
func (c *fakeClock) PendingDelays() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.afters)
}

func (c *fakeClock) MaxActive() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxActive
}

func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if !t.stopped {
		t.stopped = true
		t.clock.active--
	}
}

// stubAuthority scores like the real service: a fixed correct answer per
// question and second-chance handling for armed questions.
type stubAuthority struct {
	mu sync.Mutex

	category  domain.Category
	questions []domain.Question
	correct   map[string]string
	points    map[string]int
	status    domain.JokerStatus

	categoryErr     error
	startErr        error
	submitErr       error
	eliminationErr  error
	secondChanceErr error
	submitGate      chan struct{}
	jokerGate       chan struct{}

	submissions       []domain.AnswerSubmission
	eliminationCalls  int
	secondChanceCalls int
	armed             map[string]bool
	firstUsed         map[string]bool
	finalized         map[string]bool
}

func newStubAuthority(questions []domain.Question, correct map[string]string, points map[string]int) *stubAuthority {
	return &stubAuthority{
		category:  domain.Category{ID: "cat-1", Name: "General"},
		questions: questions,
		correct:   correct,
		points:    points,
		armed:     make(map[string]bool),
		firstUsed: make(map[string]bool),
		finalized: make(map[string]bool),
	}
}

func (s *stubAuthority) Category(_ context.Context, categoryID string) (domain.Category, error) {
	if s.categoryErr != nil {
		return domain.Category{}, s.categoryErr
	}
	return s.category, nil
}

func (s *stubAuthority) StartQuiz(_ context.Context, categoryID string) (domain.Attempt, error) {
	if s.startErr != nil {
		return domain.Attempt{}, s.startErr
	}
	return domain.Attempt{ID: "attempt-1", CategoryID: categoryID, Questions: s.questions}, nil
}

func (s *stubAuthority) JokerStatus(_ context.Context, _ string) (domain.JokerStatus, error) {
	return s.status, nil
}

func (s *stubAuthority) SubmitAnswer(ctx context.Context, sub domain.AnswerSubmission) (domain.SubmitResult, error) {
	if s.submitGate != nil {
		select {
		case <-s.submitGate:
		case <-ctx.Done():
			return domain.SubmitResult{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
	if s.submitErr != nil {
		return domain.SubmitResult{}, s.submitErr
	}
	if s.finalized[sub.QuestionID] {
		return domain.SubmitResult{}, domain.ErrAlreadyAnswered
	}

	correct := s.correct[sub.QuestionID] == sub.AnswerID
	if s.armed[sub.QuestionID] && !correct && !s.firstUsed[sub.QuestionID] {
		s.firstUsed[sub.QuestionID] = true
		return domain.SubmitResult{SecondChanceGranted: true}, nil
	}
	s.finalized[sub.QuestionID] = true
	res := domain.SubmitResult{
		IsCorrect:       correct,
		CorrectAnswerID: s.correct[sub.QuestionID],
		IsSecondAttempt: s.firstUsed[sub.QuestionID],
	}
	if correct {
		res.PointsAwarded = s.points[sub.QuestionID]
	}
	return res, nil
}

func (s *stubAuthority) UseElimination(ctx context.Context, _ string, questionID string) ([]string, error) {
	if s.jokerGate != nil {
		select {
		case <-s.jokerGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eliminationCalls++
	if s.eliminationErr != nil {
		return nil, s.eliminationErr
	}
	var out []string
	for _, q := range s.questions {
		if q.ID != questionID {
			continue
		}
		for _, a := range q.Answers {
			if a.ID != s.correct[questionID] && len(out) < 2 {
				out = append(out, a.ID)
			}
		}
	}
	return out, nil
}

func (s *stubAuthority) UseSecondChance(_ context.Context, _ string, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secondChanceCalls++
	if s.secondChanceErr != nil {
		return s.secondChanceErr
	}
	s.armed[questionID] = true
	return nil
}

func (s *stubAuthority) submissionsFor(questionID string) []domain.AnswerSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AnswerSubmission
	for _, sub := range s.submissions {
		if sub.QuestionID == questionID {
			out = append(out, sub)
		}
	}
	return out
}

func (s *stubAuthority) calls() (submissions, eliminations, secondChances int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions), s.eliminationCalls, s.secondChanceCalls
}

func fourChoice(id string) domain.Question {
	return domain.Question{
		ID:         id,
		Text:       "Question " + id,
		Difficulty: domain.DifficultyEasy,
		Answers: []domain.Answer{
			{ID: id + "-a", Text: "A"},
			{ID: id + "-b", Text: "B"},
			{ID: id + "-c", Text: "C"},
			{ID: id + "-d", Text: "D"},
		},
	}
}

type harness struct {
	ctrl   *Controller
	clock  *fakeClock
	events chan Event
	done   chan runResult
	cancel context.CancelFunc
}

type runResult struct {
	summary Summary
	err     error
}

func startHarness(t *testing.T, auth Authority, budget int) *harness {
	t.Helper()
	clock := newFakeClock()
	events := make(chan Event, 1024)
	ctrl := New(auth, "cat-1", Options{
		TimeBudget:   budget,
		TickInterval: time.Second,
		Clock:        clock,
		Events:       events,
	})
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{ctrl: ctrl, clock: clock, events: events, done: make(chan runResult, 1), cancel: cancel}
	go func() {
		summary, err := ctrl.Run(ctx)
		h.done <- runResult{summary: summary, err: err}
	}()
	t.Cleanup(cancel)
	return h
}

func (h *harness) waitFor(t *testing.T, what string, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-h.events:
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func (h *harness) waitAwaiting(t *testing.T, index int) {
	t.Helper()
	h.waitFor(t, "answer phase", func(ev Event) bool {
		return ev.Kind == EventState && ev.State == StateAwaitingAnswer && ev.Index == index
	})
}

func (h *harness) result(t *testing.T) runResult {
	t.Helper()
	select {
	case res := <-h.done:
		return res
	case <-time.After(2 * time.Second):
		t.Fatalf("controller did not finish")
	}
	return runResult{}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var errBackend = errors.New("backend unavailable")
