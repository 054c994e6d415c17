package player

import (
	"context"
	"fmt"
	"log"
	"time"

	"trivia-quiz/internal/domain"
)

// Authority is the remote source of truth for questions, scoring and jokers.
// The controller never decides correctness or points itself.
type Authority interface {
	Category(ctx context.Context, categoryID string) (domain.Category, error)
	StartQuiz(ctx context.Context, categoryID string) (domain.Attempt, error)
	SubmitAnswer(ctx context.Context, submission domain.AnswerSubmission) (domain.SubmitResult, error)
	JokerStatus(ctx context.Context, categoryID string) (domain.JokerStatus, error)
	UseElimination(ctx context.Context, categoryID, questionID string) ([]string, error)
	UseSecondChance(ctx context.Context, categoryID, questionID string) error
}

// State is a phase of the quiz session.
type State int

const (
	StateLoading State = iota
	StateCountdown
	StateAwaitingAnswer
	StateSubmitting
	StateRevealing
	StateCompleted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateCountdown:
		return "countdown"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateSubmitting:
		return "submitting"
	case StateRevealing:
		return "revealing"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Options tune the session pacing. Zero delays skip the corresponding pause.
type Options struct {
	TimeBudget   int
	TickInterval time.Duration
	LeadIn       time.Duration
	RevealDelay  time.Duration
	ErrorDelay   time.Duration
	Clock        Clock
	// Events receives every transition; sends never block, a full channel drops events.
	Events chan<- Event
}

// DefaultOptions mirrors the pacing of the web client.
func DefaultOptions() Options {
	return Options{
		TimeBudget:   20,
		TickInterval: time.Second,
		LeadIn:       3 * time.Second,
		RevealDelay:  2 * time.Second,
		ErrorDelay:   2 * time.Second,
	}
}

// Controller runs one quiz attempt for one category.
// All session state is owned by the goroutine executing Run; the exported
// methods hand work to it and wait for the outcome.
type Controller struct {
	authority  Authority
	categoryID string
	opts       Options
	clock      Clock

	commands chan command
	results  chan func()
	stopped  chan struct{}

	ctx          context.Context
	state        State
	category     domain.Category
	questions    []domain.Question
	index        int
	generation   int
	timer        countdown
	startedAt    time.Time
	selected     string
	timeoutDue   bool
	rejected     map[string]bool
	first        *Attempt
	revealed     *domain.SubmitResult
	elimination  joker
	secondChance joker
	records      []AnsweredRecord
	summary      Summary
	err          error
	delay        <-chan time.Time
	afterDelay   func()
}

type command struct {
	apply func() error
	reply chan error
}

// New prepares a controller; nothing happens until Run is called.
func New(authority Authority, categoryID string, opts Options) *Controller {
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = 20
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	return &Controller{
		authority:  authority,
		categoryID: categoryID,
		opts:       opts,
		clock:      opts.Clock,
		commands:   make(chan command),
		results:    make(chan func()),
		stopped:    make(chan struct{}),
		timer:      newCountdown(opts.Clock, opts.TickInterval),
		rejected:   make(map[string]bool),
	}
}

// Run loads the quiz and drives it until completion, failure or ctx cancellation.
// It must be called exactly once.
func (c *Controller) Run(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(c.stopped)
	defer c.timer.stop()
	c.ctx = ctx

	if err := c.load(ctx); err != nil {
		c.fail(err)
		return Summary{}, err
	}
	c.setState(StateCountdown)
	c.schedule(c.opts.LeadIn, c.beginQuestion)

	for c.state != StateCompleted {
		select {
		case <-ctx.Done():
			return Summary{}, ctx.Err()
		case cmd := <-c.commands:
			cmd.reply <- cmd.apply()
		case apply := <-c.results:
			apply()
		case <-c.timer.C():
			c.onTick()
		case <-c.delay:
			next := c.afterDelay
			c.delay, c.afterDelay = nil, nil
			next()
		}
	}
	return c.summary, nil
}

// Select submits the chosen answer for the current question.
func (c *Controller) Select(answerID string) error {
	return c.do(func() error { return c.selectAnswer(answerID) })
}

// UseElimination asks the authority to hide two wrong answers of the current question.
func (c *Controller) UseElimination() error {
	return c.do(c.useElimination)
}

// UseSecondChance asks the authority for a second attempt on the current question.
func (c *Controller) UseSecondChance() error {
	return c.do(c.useSecondChance)
}

// Snapshot returns a copy of the presentational state.
func (c *Controller) Snapshot() View {
	var v View
	if err := c.do(func() error { v = c.view(); return nil }); err != nil {
		// Run has returned; nothing mutates the session any more.
		return c.view()
	}
	return v
}

func (c *Controller) do(fn func() error) error {
	cmd := command{apply: fn, reply: make(chan error, 1)}
	select {
	case c.commands <- cmd:
	case <-c.stopped:
		return ErrSessionClosed
	}
	return <-cmd.reply
}

// dispatch runs a network call off the loop and applies its outcome on the loop.
// Outcomes arriving after Run returned are dropped.
func (c *Controller) dispatch(call func(ctx context.Context) func()) {
	ctx := c.ctx
	go func() {
		apply := call(ctx)
		select {
		case c.results <- apply:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) load(ctx context.Context) error {
	c.setState(StateLoading)

	category, err := c.authority.Category(ctx, c.categoryID)
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}

	status, err := c.authority.JokerStatus(ctx, c.categoryID)
	if err != nil {
		log.Printf("joker status for category %s unavailable: %v", c.categoryID, err)
	} else {
		if status.EliminationUsed {
			c.elimination.phase = JokerConsumed
		}
		if status.SecondChanceUsed {
			c.secondChance.phase = JokerConsumed
		}
	}

	attempt, err := c.authority.StartQuiz(ctx, c.categoryID)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}
	if len(attempt.Questions) == 0 {
		return ErrNoQuestions
	}
	for _, q := range attempt.Questions {
		if len(q.Answers) == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidQuestion, q.ID)
		}
	}

	c.category = category
	c.questions = attempt.Questions
	return nil
}

func (c *Controller) fail(err error) {
	c.err = err
	c.setState(StateErrored)
}

func (c *Controller) current() domain.Question {
	return c.questions[c.index]
}

// beginQuestion resets per-question state and opens the answer phase.
func (c *Controller) beginQuestion() {
	c.selected = ""
	c.rejected = make(map[string]bool)
	c.first = nil
	c.revealed = nil
	c.openAnswerPhase()
}

func (c *Controller) openAnswerPhase() {
	c.startedAt = c.clock.Now()
	c.timeoutDue = false
	c.timer.start(c.opts.TimeBudget)
	c.setState(StateAwaitingAnswer)
}

func (c *Controller) schedule(d time.Duration, next func()) {
	if d <= 0 {
		next()
		return
	}
	c.delay = c.clock.After(d)
	c.afterDelay = next
}

func (c *Controller) onTick() {
	expired := c.timer.tick()
	c.emit(Event{Kind: EventTick, Remaining: c.timer.remaining})
	if !expired || c.state != StateAwaitingAnswer {
		return
	}
	if c.jokerPending() {
		// The forced answer waits for the joker outcome.
		c.timeoutDue = true
		return
	}
	c.forceAnswer()
}

// forceAnswer scores the first answer still selectable as if the player chose it.
func (c *Controller) forceAnswer() {
	c.timeoutDue = false
	c.submit(c.fallbackAnswer(), c.opts.TimeBudget+1, true)
}

func (c *Controller) fallbackAnswer() string {
	q := c.current()
	for _, a := range q.Answers {
		if !c.disabled(a.ID) {
			return a.ID
		}
	}
	return q.Answers[0].ID
}

// settleTimeout sends a forced answer held back by a joker call.
func (c *Controller) settleTimeout() {
	if c.timeoutDue && c.state == StateAwaitingAnswer && !c.jokerPending() {
		c.forceAnswer()
	}
}

func (c *Controller) selectAnswer(answerID string) error {
	// Joker authorizations and submissions are serialized.
	if c.state != StateAwaitingAnswer || c.jokerPending() {
		return ErrInputLocked
	}
	if !offers(c.current(), answerID) {
		return ErrUnknownAnswer
	}
	if c.disabled(answerID) {
		return ErrAnswerDisabled
	}
	c.timer.stop()
	elapsed := int(c.clock.Now().Sub(c.startedAt) / c.opts.TickInterval)
	c.submit(answerID, elapsed, false)
	return nil
}

func (c *Controller) submit(answerID string, elapsed int, timedOut bool) {
	c.timer.stop()
	c.selected = answerID
	c.setState(StateSubmitting)

	submission := domain.AnswerSubmission{
		QuestionID:     c.current().ID,
		AnswerID:       answerID,
		ElapsedSeconds: elapsed,
	}
	c.dispatch(func(ctx context.Context) func() {
		res, err := c.authority.SubmitAnswer(ctx, submission)
		return func() { c.onVerdict(submission, timedOut, res, err) }
	})
}

func (c *Controller) onVerdict(sub domain.AnswerSubmission, timedOut bool, res domain.SubmitResult, err error) {
	if err != nil {
		if timedOut {
			log.Printf("timeout submission for question %s failed: %v", sub.QuestionID, err)
		} else {
			log.Printf("submit answer for question %s failed: %v", sub.QuestionID, err)
			c.alert(fmt.Sprintf("could not submit answer: %v", err))
		}
		c.records = append(c.records, AnsweredRecord{QuestionID: sub.QuestionID, FirstAttempt: c.first})
		c.setState(StateRevealing)
		c.schedule(c.opts.ErrorDelay, c.advance)
		return
	}

	attempt := Attempt{
		AnswerID:       sub.AnswerID,
		Correct:        res.IsCorrect,
		Points:         res.PointsAwarded,
		ElapsedSeconds: sub.ElapsedSeconds,
		TimedOut:       timedOut,
	}

	if res.SecondChanceGranted && !res.IsCorrect && c.first == nil {
		// The correct answer stays hidden until the second attempt is scored.
		c.first = &attempt
		c.rejected[sub.AnswerID] = true
		c.selected = ""
		withheld := res
		withheld.CorrectAnswerID = ""
		c.emit(Event{Kind: EventResult, Result: &withheld})
		c.openAnswerPhase()
		return
	}

	attempt.CorrectAnswerID = res.CorrectAnswerID
	c.revealed = &res
	c.records = append(c.records, AnsweredRecord{
		QuestionID:   sub.QuestionID,
		FirstAttempt: c.first,
		Final:        &attempt,
	})
	c.emit(Event{Kind: EventResult, Result: &res})
	c.setState(StateRevealing)
	c.schedule(c.opts.RevealDelay, c.advance)
}

func (c *Controller) advance() {
	c.timer.stop()
	c.elimination.settle()
	c.secondChance.settle()

	if c.index >= len(c.questions)-1 {
		c.summary = Summarize(c.records)
		c.setState(StateCompleted)
		return
	}
	c.index++
	c.generation++
	c.beginQuestion()
}

func (c *Controller) jokerLegal(j *joker) bool {
	return c.state == StateAwaitingAnswer && c.selected == "" && !c.jokerPending() && j.available()
}

func (c *Controller) jokerPending() bool {
	return c.elimination.phase == JokerPending || c.secondChance.phase == JokerPending
}

func (c *Controller) useElimination() error {
	if !c.jokerLegal(&c.elimination) {
		return ErrJokerUnavailable
	}
	c.elimination.phase = JokerPending
	c.emit(Event{Kind: EventJoker, Joker: domain.JokerElimination})

	generation, questionID := c.generation, c.current().ID
	c.dispatch(func(ctx context.Context) func() {
		ids, err := c.authority.UseElimination(ctx, c.categoryID, questionID)
		return func() { c.onElimination(generation, ids, err) }
	})
	return nil
}

func (c *Controller) onElimination(generation int, ids []string, err error) {
	defer c.settleTimeout()
	if err != nil {
		c.elimination = joker{}
		log.Printf("elimination joker denied: %v", err)
		c.alert(fmt.Sprintf("elimination joker unavailable: %v", err))
		return
	}
	if generation != c.generation {
		c.elimination = joker{phase: JokerConsumed}
		return
	}
	c.elimination = joker{phase: JokerArmed, question: generation, eliminated: ids}
	c.emit(Event{Kind: EventJoker, Joker: domain.JokerElimination})
}

func (c *Controller) useSecondChance() error {
	if !c.jokerLegal(&c.secondChance) {
		return ErrJokerUnavailable
	}
	c.secondChance.phase = JokerPending
	c.emit(Event{Kind: EventJoker, Joker: domain.JokerSecondChance})

	generation, questionID := c.generation, c.current().ID
	c.dispatch(func(ctx context.Context) func() {
		err := c.authority.UseSecondChance(ctx, c.categoryID, questionID)
		return func() { c.onSecondChance(generation, err) }
	})
	return nil
}

func (c *Controller) onSecondChance(generation int, err error) {
	defer c.settleTimeout()
	if err != nil {
		c.secondChance = joker{}
		log.Printf("second chance joker denied: %v", err)
		c.alert(fmt.Sprintf("second chance joker unavailable: %v", err))
		return
	}
	if generation != c.generation {
		c.secondChance = joker{phase: JokerConsumed}
		return
	}
	c.secondChance = joker{phase: JokerArmed, question: generation}
	c.emit(Event{Kind: EventJoker, Joker: domain.JokerSecondChance})
}

func (c *Controller) disabled(answerID string) bool {
	if c.rejected[answerID] {
		return true
	}
	return c.elimination.armedFor(c.generation) && c.elimination.hides(answerID)
}

func (c *Controller) setState(s State) {
	c.state = s
	c.emit(Event{Kind: EventState})
}

func (c *Controller) alert(msg string) {
	c.emit(Event{Kind: EventAlert, Message: msg})
}

func (c *Controller) emit(ev Event) {
	if c.opts.Events == nil {
		return
	}
	ev.State = c.state
	ev.Index = c.index
	if ev.Kind == EventState && c.state == StateErrored {
		ev.Err = c.err
	}
	select {
	case c.opts.Events <- ev:
	default:
	}
}

func offers(q domain.Question, answerID string) bool {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}
