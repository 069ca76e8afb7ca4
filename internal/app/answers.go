package app

import (
	"context"

	"pm-quiz-runner/internal/domain"
)

// AnswerStore persists the in-progress AnswerMap under a single durable key.
// Load never fails: a missing or malformed value yields an empty map and the
// malformed value is logged and discarded by the implementation. Save always
// writes the complete map; readers never observe a partial one.
type AnswerStore interface {
	Load(ctx context.Context) domain.AnswerMap
	Save(ctx context.Context, answers domain.AnswerMap) error
	Clear(ctx context.Context) error
}

// Input exposes the value currently entered in the rendered question: the
// selected option for multiple choice or the typed text for free text.
type Input interface {
	Value() (string, bool)
}

// Presenter consumes render descriptions and user-facing notices. It never
// mutates session state.
type Presenter interface {
	Render(view domain.View)
	Notice(kind NoticeKind, message string)
}

// Submitter sends the final AnswerMap to the backend.
type Submitter interface {
	Submit(ctx context.Context, answers domain.AnswerMap) (domain.SubmitResult, error)
}

// Confirmer asks the participant to confirm a manual submission.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// NoticeKind classifies presenter notices.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	// NoticeError is an inline error (catalog fetch, leaderboard fetch).
	NoticeError
	// NoticeRetry is a retryable submission failure.
	NoticeRetry
	// NoticePending reports a submission the backend did not accept yet.
	NoticePending
	// NoticeRedirect carries the post-submission navigation target.
	NoticeRedirect
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeError:
		return "error"
	case NoticeRetry:
		return "retry"
	case NoticePending:
		return "pending"
	case NoticeRedirect:
		return "redirect"
	default:
		return "info"
	}
}
