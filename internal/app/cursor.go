package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"pm-quiz-runner/internal/domain"
)

// State is the lifecycle position of a quiz session.
type State int

const (
	StateLoading State = iota
	StateActive
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Outcome describes what a navigation or submission call ended up doing.
type Outcome int

const (
	OutcomeNavigated Outcome = iota
	OutcomeDeclined
	OutcomeSubmitted
	OutcomeFailed
	OutcomePending
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNavigated:
		return "navigated"
	case OutcomeDeclined:
		return "declined"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeFailed:
		return "failed"
	case OutcomePending:
		return "pending"
	default:
		return "unknown"
	}
}

// ConfirmPrompt is shown before a manual submission.
const ConfirmPrompt = "Are you sure you want to finish the quiz?"

const (
	retryMessage   = "Submission failed! Try again."
	pendingMessage = "Submission not accepted yet; your answers are kept, try again."
)

var errAlreadyInitialized = errors.New("quiz session already initialized")

// Cursor is the quiz session state machine. It owns the catalog, the current
// index and the AnswerMap. A Cursor is not safe for concurrent use; it is
// driven from a single event loop.
type Cursor struct {
	store     AnswerStore
	input     Input
	submitter Submitter
	presenter Presenter
	confirmer Confirmer
	log       *log.Logger

	state    State
	catalog  []domain.Question
	index    int
	answers  domain.AnswerMap
	redirect string
}

// CursorOption configures optional collaborators.
type CursorOption func(*Cursor)

func WithPresenter(p Presenter) CursorOption {
	return func(c *Cursor) { c.presenter = p }
}

// WithConfirmer sets the manual-submission confirmation step. Without one,
// unforced submissions are declined; callers that confirm elsewhere use
// BeginSubmit and CompleteSubmit directly.
func WithConfirmer(cf Confirmer) CursorOption {
	return func(c *Cursor) { c.confirmer = cf }
}

func WithLogger(l *log.Logger) CursorOption {
	return func(c *Cursor) { c.log = l }
}

func NewCursor(store AnswerStore, input Input, submitter Submitter, opts ...CursorOption) *Cursor {
	c := &Cursor{
		store:     store,
		input:     input,
		submitter: submitter,
		presenter: nopPresenter{},
		log:       log.Default(),
		answers:   domain.AnswerMap{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResumeIndex returns the first index whose question has no stored answer, or
// 0 when every question is answered.
func ResumeIndex(catalog []domain.Question, answers domain.AnswerMap) int {
	for i, q := range catalog {
		if _, ok := answers[q.ID]; !ok {
			return i
		}
	}
	return 0
}

// Initialize reconciles persisted answers with a freshly fetched catalog and
// renders the resume question.
func (c *Cursor) Initialize(_ context.Context, catalog []domain.Question, persisted domain.AnswerMap) (domain.View, error) {
	if c.state != StateLoading {
		return domain.View{}, errAlreadyInitialized
	}
	if len(catalog) == 0 {
		return domain.View{}, domain.ErrEmptyCatalog
	}

	c.catalog = append([]domain.Question(nil), catalog...)
	c.answers = persisted.Clone()
	c.index = ResumeIndex(c.catalog, c.answers)
	c.state = StateActive

	view := c.viewAt(c.index)
	c.presenter.Render(view)
	return view, nil
}

// SaveCurrentAnswer copies the rendered input into the AnswerMap, if there is
// one, and persists the complete map. An absent input never erases a stored
// answer.
func (c *Cursor) SaveCurrentAnswer(ctx context.Context) error {
	switch c.state {
	case StateLoading:
		return domain.ErrSessionNotStarted
	case StateSubmitted:
		return domain.ErrSessionClosed
	}

	q := c.catalog[c.index]
	if value, ok := c.readInput(q); ok {
		c.answers[q.ID] = value
	}
	if err := c.store.Save(ctx, c.answers.Clone()); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	return nil
}

func (c *Cursor) readInput(q domain.Question) (string, bool) {
	if c.input == nil {
		return "", false
	}
	raw, ok := c.input.Value()
	if !ok {
		return "", false
	}
	if !q.IsMultipleChoice() {
		if strings.TrimSpace(raw) == "" {
			return "", false
		}
		return raw, true
	}
	selected := strings.TrimSpace(raw)
	for _, opt := range q.Choices() {
		if opt == selected {
			return opt, true
		}
	}
	c.log.Printf("ignoring selection %q: not an option of question %s", raw, q.ID)
	return "", false
}

// Render saves the answer of the current question and moves to index. Out of
// range indexes, and calls outside the Active state, are ignored.
func (c *Cursor) Render(ctx context.Context, index int) (domain.View, bool) {
	if c.state != StateActive || index < 0 || index >= len(c.catalog) {
		return domain.View{}, false
	}
	if err := c.SaveCurrentAnswer(ctx); err != nil {
		c.log.Printf("render %d: %v", index, err)
	}
	c.index = index
	view := c.viewAt(index)
	c.presenter.Render(view)
	return view, true
}

// Next moves forward, or submits (unforced) from the last question.
func (c *Cursor) Next(ctx context.Context) (Outcome, error) {
	if err := c.activeErr(); err != nil {
		return OutcomeNavigated, err
	}
	if c.index < len(c.catalog)-1 {
		c.Render(ctx, c.index+1)
		return OutcomeNavigated, nil
	}
	return c.Submit(ctx, false)
}

// Previous moves back one question; it is a no-op on the first.
func (c *Cursor) Previous(ctx context.Context) (domain.View, bool) {
	if c.index <= 0 {
		return domain.View{}, false
	}
	return c.Render(ctx, c.index-1)
}

// Submit sends the AnswerMap and waits for the response. Unforced submissions
// must be confirmed first; forced ones (deadline expiry) skip confirmation.
func (c *Cursor) Submit(ctx context.Context, forced bool) (Outcome, error) {
	if err := c.activeErr(); err != nil {
		return OutcomeFailed, err
	}
	if !forced {
		if err := c.SaveCurrentAnswer(ctx); err != nil {
			c.log.Printf("submit: %v", err)
		}
		if c.confirmer == nil {
			c.log.Printf("manual submission declined: no confirmer configured")
			return OutcomeDeclined, nil
		}
		ok, err := c.confirmer.Confirm(ctx, ConfirmPrompt)
		if err != nil {
			return OutcomeDeclined, fmt.Errorf("confirm submission: %w", err)
		}
		if !ok {
			return OutcomeDeclined, nil
		}
	}

	answers, err := c.BeginSubmit(ctx, forced)
	if err != nil {
		return OutcomeFailed, err
	}
	result, err := c.submitter.Submit(ctx, answers)
	return c.CompleteSubmit(ctx, result, err), nil
}

// BeginSubmit saves the current answer, enters Submitting and returns the
// AnswerMap to send. Callers that perform the request asynchronously must
// report back through CompleteSubmit.
func (c *Cursor) BeginSubmit(ctx context.Context, forced bool) (domain.AnswerMap, error) {
	if err := c.activeErr(); err != nil {
		return nil, err
	}
	if err := c.SaveCurrentAnswer(ctx); err != nil {
		c.log.Printf("submit: %v", err)
	}
	c.state = StateSubmitting
	c.log.Printf("submitting %d answers (forced=%t)", len(c.answers), forced)
	return c.answers.Clone(), nil
}

// CompleteSubmit applies the submission response. A redirect clears the store
// and closes the session; an error or a response without redirect returns to
// Active at the same index with every answer kept.
func (c *Cursor) CompleteSubmit(ctx context.Context, result domain.SubmitResult, err error) Outcome {
	if c.state != StateSubmitting {
		c.log.Printf("submission response ignored in state %s", c.state)
		return OutcomeFailed
	}
	if err != nil {
		c.state = StateActive
		c.log.Printf("submission failed: %v", err)
		c.presenter.Notice(NoticeRetry, retryMessage)
		return OutcomeFailed
	}
	if !result.Accepted() {
		c.state = StateActive
		msg := pendingMessage
		if result.Message != "" {
			msg = result.Message + ": " + pendingMessage
		}
		c.presenter.Notice(NoticePending, msg)
		return OutcomePending
	}

	if err := c.store.Clear(ctx); err != nil {
		c.log.Printf("clear answers after submit: %v", err)
	}
	c.state = StateSubmitted
	c.redirect = result.Redirect
	c.presenter.Notice(NoticeRedirect, result.Redirect)
	return OutcomeSubmitted
}

func (c *Cursor) activeErr() error {
	switch c.state {
	case StateLoading:
		return domain.ErrSessionNotStarted
	case StateSubmitting:
		return domain.ErrSubmitInFlight
	case StateSubmitted:
		return domain.ErrSessionClosed
	}
	return nil
}

func (c *Cursor) viewAt(i int) domain.View {
	q := c.catalog[i]
	prior, has := c.answers[q.ID]
	view := domain.View{
		Index:      i,
		Position:   i + 1,
		Total:      len(c.catalog),
		Text:       q.ContentText,
		Image:      q.ContentImage,
		Points:     q.Points,
		Difficulty: q.Difficulty,
		Mode:       domain.InputFreeText,
		Prior:      prior,
		HasPrior:   has,
		IsFirst:    i == 0,
		IsLast:     i == len(c.catalog)-1,
	}
	if q.IsMultipleChoice() {
		view.Mode = domain.InputMultipleChoice
		view.Options = q.Choices()
	}
	return view
}

// Current returns the view of the current question.
func (c *Cursor) Current() (domain.View, bool) {
	if len(c.catalog) == 0 {
		return domain.View{}, false
	}
	return c.viewAt(c.index), true
}

func (c *Cursor) State() State { return c.state }

func (c *Cursor) Index() int { return c.index }

// Answers returns a copy of the AnswerMap.
func (c *Cursor) Answers() domain.AnswerMap { return c.answers.Clone() }

// Redirect is the navigation target of a confirmed submission.
func (c *Cursor) Redirect() string { return c.redirect }

type nopPresenter struct{}

func (nopPresenter) Render(domain.View) {}
func (nopPresenter) Notice(NoticeKind, string) {}
