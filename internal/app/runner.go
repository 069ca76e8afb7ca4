package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pm-quiz-runner/internal/domain"
)

// CatalogSource fetches the ordered question list for a session.
type CatalogSource interface {
	FetchQuestions(ctx context.Context) ([]domain.Question, error)
}

// SessionUI is the presentation layer driven by the Runner.
type SessionUI interface {
	Presenter
	Timer(snapshot TimerSnapshot)
	Prompt(message string)
	Help()
}

// RunResult reports how a session loop ended.
type RunResult struct {
	Redirect string
	Quit     bool
}

const (
	loadErrorMessage  = "Error loading questions."
	emptyErrorMessage = "No questions found in database!"
	timeUpMessage     = "Time's up! Submitting..."
	declinedMessage   = "Submission cancelled."
	busyMessage       = "Submission in progress..."
	loadingMessage    = "Questions are still loading..."
	invalidMessage    = "Not one of the options; enter its number or exact text."
)

// Runner is the single-threaded event loop that owns a Cursor and a
// DeadlineTimer. Catalog fetch and submission run on their own goroutines and
// post their completions back to the loop; every state change happens on the
// loop goroutine.
type Runner struct {
	catalog   CatalogSource
	store     AnswerStore
	submitter Submitter
	ui        SessionUI
	deadline  int
	tick      time.Duration
	log       *log.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTickInterval overrides the one-second countdown tick (tests).
func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.tick = d }
}

func WithRunnerLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

func NewRunner(catalog CatalogSource, store AnswerStore, submitter Submitter, ui SessionUI, deadlineSeconds int, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog:   catalog,
		store:     store,
		submitter: submitter,
		ui:        ui,
		deadline:  deadlineSeconds,
		tick:      time.Second,
		log:       log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type fetchResult struct {
	questions []domain.Question
	err       error
}

type submitResult struct {
	result domain.SubmitResult
	err    error
}

// loop is the per-run state. It is only touched by the Run goroutine.
type loop struct {
	*Runner
	cursor     *Cursor
	input      *PendingInput
	timer      *DeadlineTimer
	submitted  chan submitResult
	confirming bool
	expired    bool
	// forcedSent is set once a forced submission has been started; expiry
	// that lands while a manual one is in flight leaves it unset.
	forcedSent bool
}

// Run drives one quiz session until it is submitted, the participant quits,
// the command stream ends or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, commands <-chan string) (RunResult, error) {
	l := &loop{
		Runner:    r,
		input:     &PendingInput{},
		timer:     NewDeadlineTimer(r.deadline),
		submitted: make(chan submitResult, 1),
	}
	l.cursor = NewCursor(r.store, l.input, r.submitter,
		WithPresenter(resettingPresenter{SessionUI: r.ui, input: l.input}),
		WithLogger(r.log),
	)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	r.ui.Timer(l.timer.Snapshot())

	fetched := make(chan fetchResult, 1)
	go func() {
		questions, err := r.catalog.FetchQuestions(ctx)
		fetched <- fetchResult{questions: questions, err: err}
	}()

	for {
		select {
		case <-ctx.Done():
			l.persist(context.WithoutCancel(ctx))
			return RunResult{}, ctx.Err()

		case <-ticker.C:
			snapshot, expired := l.timer.Tick()
			if !l.timer.Active() && !expired {
				continue
			}
			r.ui.Timer(snapshot)
			if expired {
				l.onExpired(ctx)
			}

		case f := <-fetched:
			if err := l.onFetched(ctx, f); err != nil {
				return RunResult{}, err
			}

		case line, ok := <-commands:
			if !ok {
				l.persist(ctx)
				return RunResult{Quit: true}, nil
			}
			if quit := l.onCommand(ctx, line); quit {
				l.persist(ctx)
				return RunResult{Quit: true}, nil
			}

		case res := <-l.submitted:
			outcome := l.cursor.CompleteSubmit(ctx, res.result, res.err)
			r.log.Printf("submission outcome: %s", outcome)
			if outcome == OutcomeSubmitted {
				l.timer.Stop()
				return RunResult{Redirect: l.cursor.Redirect()}, nil
			}
			if l.expired && !l.forcedSent {
				l.startSubmit(ctx, true)
			}
		}
	}
}

func (l *loop) onFetched(ctx context.Context, f fetchResult) error {
	if f.err != nil {
		l.log.Printf("fetch questions: %v", f.err)
		l.ui.Notice(NoticeError, loadErrorMessage)
		if errors.Is(f.err, domain.ErrCatalogUnavailable) {
			return f.err
		}
		return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, f.err)
	}
	if len(f.questions) == 0 {
		l.log.Printf("questions array is empty")
		l.ui.Notice(NoticeError, emptyErrorMessage)
		return domain.ErrEmptyCatalog
	}

	persisted := l.store.Load(ctx)
	if _, err := l.cursor.Initialize(ctx, f.questions, persisted); err != nil {
		l.ui.Notice(NoticeError, loadErrorMessage)
		return err
	}
	l.log.Printf("session started: %d questions, %d restored answers, resuming at %d",
		len(f.questions), len(persisted), l.cursor.Index()+1)

	if l.expired {
		l.startSubmit(ctx, true)
	}
	return nil
}

// onExpired forces submission now when Active. While Loading it is deferred to
// onFetched; while Submitting it is deferred to the in-flight completion.
func (l *loop) onExpired(ctx context.Context) {
	l.expired = true
	l.confirming = false
	l.ui.Notice(NoticeInfo, timeUpMessage)
	if l.cursor.State() == StateActive {
		l.startSubmit(ctx, true)
	}
}

// onCommand handles one input line and reports whether the participant quit.
func (l *loop) onCommand(ctx context.Context, line string) bool {
	cmd := ParseCommand(line)

	if l.confirming {
		l.confirming = false
		if IsAffirmative(cmd.Raw) {
			l.startSubmit(ctx, l.expired)
		} else {
			l.ui.Notice(NoticeInfo, declinedMessage)
		}
		return false
	}

	if cmd.Kind == CmdQuit {
		return true
	}
	if cmd.Kind == CmdHelp {
		l.ui.Help()
		return false
	}

	switch l.cursor.State() {
	case StateLoading:
		l.ui.Notice(NoticeInfo, loadingMessage)
		return false
	case StateSubmitting:
		l.ui.Notice(NoticeInfo, busyMessage)
		return false
	case StateSubmitted:
		return false
	}

	switch cmd.Kind {
	case CmdNext:
		view, _ := l.cursor.Current()
		if view.IsLast {
			l.requestSubmit(ctx)
			return false
		}
		if _, err := l.cursor.Next(ctx); err != nil {
			l.log.Printf("next: %v", err)
		}
	case CmdPrevious:
		l.cursor.Previous(ctx)
	case CmdGoto:
		l.cursor.Render(ctx, cmd.Index)
	case CmdSubmit:
		l.requestSubmit(ctx)
	case CmdAnswer:
		l.onAnswer(ctx, cmd.Text)
	}
	return false
}

func (l *loop) onAnswer(ctx context.Context, text string) {
	view, ok := l.cursor.Current()
	if !ok {
		return
	}
	value, ok := ResolveAnswer(view, text)
	if !ok {
		if view.Mode == domain.InputMultipleChoice {
			l.ui.Notice(NoticeInfo, invalidMessage)
		}
		return
	}
	l.input.Set(value)
	if err := l.cursor.SaveCurrentAnswer(ctx); err != nil {
		l.log.Printf("save answer: %v", err)
	}
	if view, ok := l.cursor.Current(); ok {
		l.ui.Render(view)
	}
}

// requestSubmit starts a manual submission: it saves the current answer and
// asks for confirmation unless the deadline already expired.
func (l *loop) requestSubmit(ctx context.Context) {
	if l.expired {
		l.startSubmit(ctx, true)
		return
	}
	if err := l.cursor.SaveCurrentAnswer(ctx); err != nil {
		l.log.Printf("save answer: %v", err)
	}
	l.confirming = true
	l.ui.Prompt(ConfirmPrompt + " [y/N]")
}

func (l *loop) startSubmit(ctx context.Context, forced bool) {
	answers, err := l.cursor.BeginSubmit(ctx, forced)
	if err != nil {
		l.log.Printf("begin submit: %v", err)
		return
	}
	if forced {
		l.forcedSent = true
	}
	go func() {
		result, err := l.submitter.Submit(ctx, answers)
		l.submitted <- submitResult{result: result, err: err}
	}()
}

func (l *loop) persist(ctx context.Context) {
	if l.cursor.State() != StateActive {
		return
	}
	if err := l.cursor.SaveCurrentAnswer(ctx); err != nil {
		l.log.Printf("save answer: %v", err)
	}
}

// resettingPresenter clears the pending input whenever a new question is
// rendered so a value typed for one question never leaks into the next.
type resettingPresenter struct {
	SessionUI
	input *PendingInput
}

func (p resettingPresenter) Render(view domain.View) {
	p.input.Reset()
	p.SessionUI.Render(view)
}
