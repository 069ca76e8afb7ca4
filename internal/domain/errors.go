package domain

import "errors"

var (
	// ErrEmptyCatalog is returned when the question fetch yields no questions.
	ErrEmptyCatalog = errors.New("no questions found")
	// ErrCatalogUnavailable wraps transport or decoding failures of the question fetch.
	ErrCatalogUnavailable = errors.New("error loading questions")
	// ErrSessionClosed is returned for any operation after a confirmed submission.
	ErrSessionClosed = errors.New("quiz session already submitted")
	// ErrSessionNotStarted is returned before Initialize has run.
	ErrSessionNotStarted = errors.New("quiz session not initialized")
	// ErrSubmitInFlight is returned when a submission is already awaiting a response.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrSubmissionRejected marks a non-success response from the submit endpoint.
	ErrSubmissionRejected = errors.New("submission rejected")
	// ErrEmptyFeedback is returned when feedback text is blank.
	ErrEmptyFeedback = errors.New("feedback is empty")
	// ErrTeamRequired is returned by the backend when no team identity is supplied.
	ErrTeamRequired = errors.New("team name required")
	// ErrAlreadySubmitted is returned by result stores when a team submits twice.
	ErrAlreadySubmitted = errors.New("already submitted")
	// ErrQuizNotFound indicates the catalog could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
)
