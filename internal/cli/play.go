package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/restclient"
	"trivia-quiz/internal/player"
)

// NewPlayCmd runs one quiz attempt in the terminal against a quiz server.
func NewPlayCmd(configPath *string) *cobra.Command {
	var baseURL, token string
	cmd := &cobra.Command{
		Use:   "play <categoryId>",
		Short: "Play a timed quiz in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = cfg.Player.BaseURL
			}
			if baseURL == "" {
				baseURL = "http://localhost:8080"
			}
			if token == "" {
				token = cfg.Player.Token
			}
			if token == "" {
				return errors.New("no player token: pass --token or set player.token (see `quiz token`)")
			}
			client := restclient.New(baseURL, token)
			return playQuiz(cmd.Context(), client, args[0], playerOptions(cfg), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "quiz server base URL (overrides player.baseURL)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (overrides player.token)")
	return cmd
}

func playerOptions(cfg config.Config) player.Options {
	opts := player.DefaultOptions()
	if cfg.Player.TimeBudget > 0 {
		opts.TimeBudget = cfg.Player.TimeBudget
	}
	opts.TickInterval = config.TTLDuration(cfg.Player.Tick, opts.TickInterval)
	opts.LeadIn = config.TTLDuration(cfg.Player.LeadIn, opts.LeadIn)
	opts.RevealDelay = config.TTLDuration(cfg.Player.RevealDelay, opts.RevealDelay)
	opts.ErrorDelay = config.TTLDuration(cfg.Player.ErrorDelay, opts.ErrorDelay)
	return opts
}

type inputKind int

const (
	inputAnswer inputKind = iota
	inputElimination
	inputSecondChance
	inputQuit
)

type input struct {
	kind     inputKind
	answerID string
}

var errUnknownInput = errors.New("type an answer number, e (elimination), s (second chance) or q (quit)")

// interpret maps a line typed by the player onto a controller action.
func interpret(line string, q domain.Question) (input, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	switch line {
	case "e":
		return input{kind: inputElimination}, nil
	case "s":
		return input{kind: inputSecondChance}, nil
	case "q", "quit":
		return input{kind: inputQuit}, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return input{}, errUnknownInput
	}
	if n < 1 || n > len(q.Answers) {
		return input{}, fmt.Errorf("pick an answer between 1 and %d", len(q.Answers))
	}
	return input{kind: inputAnswer, answerID: q.Answers[n-1].ID}, nil
}

func playQuiz(ctx context.Context, authority player.Authority, categoryID string, opts player.Options, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan player.Event, 64)
	opts.Events = events
	ctrl := player.New(authority, categoryID, opts)

	type outcome struct {
		summary player.Summary
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		summary, err := ctrl.Run(ctx)
		done <- outcome{summary, err}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := false
	for {
		select {
		case ev := <-events:
			render(out, ev, ctrl.Snapshot())
		case line := <-lines:
			cmd, err := interpret(line, ctrl.Snapshot().Question)
			if err == nil {
				err = apply(ctrl, cmd)
			}
			if errors.Is(err, context.Canceled) {
				quit = true
				cancel()
				continue
			}
			if err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		case res := <-done:
			drain(out, events, ctrl)
			if res.err != nil {
				if quit && errors.Is(res.err, context.Canceled) {
					fmt.Fprintln(out, "quiz abandoned")
					return nil
				}
				return res.err
			}
			renderSummary(out, res.summary)
			return nil
		}
	}
}

func apply(ctrl *player.Controller, cmd input) error {
	switch cmd.kind {
	case inputElimination:
		return ctrl.UseElimination()
	case inputSecondChance:
		return ctrl.UseSecondChance()
	case inputQuit:
		return context.Canceled
	default:
		return ctrl.Select(cmd.answerID)
	}
}

func drain(out io.Writer, events <-chan player.Event, ctrl *player.Controller) {
	for {
		select {
		case ev := <-events:
			render(out, ev, ctrl.Snapshot())
		default:
			return
		}
	}
}

func render(out io.Writer, ev player.Event, view player.View) {
	switch ev.Kind {
	case player.EventState:
		switch ev.State {
		case player.StateCountdown:
			fmt.Fprintf(out, "%s: get ready...\n", view.Category.Name)
		case player.StateAwaitingAnswer:
			if ev.Index == view.Index && view.State == player.StateAwaitingAnswer {
				renderQuestion(out, view)
			}
		case player.StateErrored:
			fmt.Fprintf(out, "quiz failed: %v\n", ev.Err)
		}
	case player.EventTick:
		if ev.Remaining > 0 && ev.Remaining <= 5 {
			fmt.Fprintf(out, "  %d...\n", ev.Remaining)
		}
	case player.EventResult:
		renderResult(out, ev.Result, view.Question)
	case player.EventJoker:
		switch {
		case ev.Joker == domain.JokerElimination && view.Elimination == player.JokerArmed:
			renderQuestion(out, view)
		case ev.Joker == domain.JokerSecondChance && view.SecondChance == player.JokerArmed:
			fmt.Fprintln(out, "second chance ready")
		}
	case player.EventAlert:
		fmt.Fprintf(out, "! %s\n", ev.Message)
	}
}

func renderQuestion(out io.Writer, view player.View) {
	q := view.Question
	fmt.Fprintf(out, "\nQuestion %d/%d [%s] %s\n", view.Index+1, view.Total, q.Difficulty, q.Text)
	disabled := make(map[string]bool, len(view.Disabled))
	for _, id := range view.Disabled {
		disabled[id] = true
	}
	for i, a := range q.Answers {
		if disabled[a.ID] {
			fmt.Fprintf(out, "  %d) --\n", i+1)
			continue
		}
		fmt.Fprintf(out, "  %d) %s\n", i+1, a.Text)
	}
	var jokers []string
	if view.Elimination == player.JokerUnused {
		jokers = append(jokers, "e=elimination")
	}
	if view.SecondChance == player.JokerUnused {
		jokers = append(jokers, "s=second chance")
	}
	if len(jokers) > 0 {
		fmt.Fprintf(out, "  jokers: %s\n", strings.Join(jokers, ", "))
	}
	fmt.Fprintf(out, "  time left: %d\n", view.Remaining)
}

func renderResult(out io.Writer, res *domain.SubmitResult, q domain.Question) {
	if res == nil {
		return
	}
	switch {
	case res.SecondChanceGranted && !res.IsCorrect:
		fmt.Fprintln(out, "wrong, but your second chance kicks in: try again")
	case res.IsCorrect:
		fmt.Fprintf(out, "correct! +%d\n", res.PointsAwarded)
	default:
		fmt.Fprintf(out, "wrong, the answer was %s\n", answerText(q, res.CorrectAnswerID))
	}
}

func answerText(q domain.Question, id string) string {
	for _, a := range q.Answers {
		if a.ID == id {
			return a.Text
		}
	}
	return id
}

func renderSummary(out io.Writer, s player.Summary) {
	fmt.Fprintf(out, "\n%d/%d correct, %d points (%d%%)\n", s.Correct, s.Total, s.Points, s.Percentage)
}
