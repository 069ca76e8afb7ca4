package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pm-quiz-runner/internal/domain"
)

// ResultRedirect is where a participant is sent after a recorded submission.
const ResultRedirect = "/result"

// CatalogRepository loads quiz content (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, quizID string) (domain.Catalog, error)
}

// ResultStore records team progress, submissions and feedback.
type ResultStore interface {
	// MarkStarted stores at as the team's start time unless one exists, and
	// returns the effective start time.
	MarkStarted(ctx context.Context, team string, at time.Time) (time.Time, error)
	// RecordSubmission fails with domain.ErrAlreadySubmitted on a second call
	// for the same team.
	RecordSubmission(ctx context.Context, sub domain.Submission) error
	Submissions(ctx context.Context) ([]domain.Submission, error)
	SaveFeedback(ctx context.Context, fb domain.Feedback) error
}

// QuizService contains the backend use cases the quiz runner talks to.
type QuizService struct {
	catalogs CatalogRepository
	results  ResultStore
	quizID   string
	duration time.Duration
	now      func() time.Time
	board    *board
}

func NewQuizService(catalogs CatalogRepository, results ResultStore, quizID string, duration time.Duration) *QuizService {
	return NewQuizServiceWithClock(catalogs, results, quizID, duration, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(catalogs CatalogRepository, results ResultStore, quizID string, duration time.Duration, now func() time.Time) *QuizService {
	return &QuizService{
		catalogs: catalogs,
		results:  results,
		quizID:   quizID,
		duration: duration,
		now:      now,
		board:    newBoard(),
	}
}

// Questions returns the catalog. The first fetch by a team starts its clock.
func (s *QuizService) Questions(ctx context.Context, team string) ([]domain.Question, error) {
	catalog, err := s.catalogs.GetCatalog(ctx, s.quizID)
	if err != nil {
		return nil, err
	}
	if team != "" {
		if _, err := s.results.MarkStarted(ctx, team, s.now()); err != nil {
			return nil, err
		}
	}
	return catalog.Questions, nil
}

// Status reports the seconds a team has left, floored at zero.
func (s *QuizService) Status(ctx context.Context, team string) (domain.StatusResult, error) {
	if team == "" {
		return domain.StatusResult{}, domain.ErrTeamRequired
	}
	now := s.now()
	started, err := s.results.MarkStarted(ctx, team, now)
	if err != nil {
		return domain.StatusResult{}, err
	}
	remaining := s.duration - now.Sub(started)
	if remaining < 0 {
		remaining = 0
	}
	return domain.StatusResult{RemainingSeconds: int(remaining / time.Second)}, nil
}

// Submit records a team's final answers once. A repeated submission is
// answered without a redirect.
func (s *QuizService) Submit(ctx context.Context, team string, answers domain.AnswerMap) (domain.SubmitResult, error) {
	if team == "" {
		return domain.SubmitResult{}, domain.ErrTeamRequired
	}
	now := s.now()
	started, err := s.results.MarkStarted(ctx, team, now)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	err = s.results.RecordSubmission(ctx, domain.Submission{
		Team:        team,
		Answers:     answers.Clone(),
		StartedAt:   started,
		SubmittedAt: now,
	})
	if errors.Is(err, domain.ErrAlreadySubmitted) {
		return domain.SubmitResult{Message: "Already submitted"}, nil
	}
	if err != nil {
		return domain.SubmitResult{}, err
	}

	if lb, err := s.Leaderboard(ctx); err == nil {
		s.board.publish(lb)
	}
	return domain.SubmitResult{Redirect: ResultRedirect}, nil
}

// Leaderboard orders submitted teams by score desc, then time taken asc.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	subs, err := s.results.Submissions(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Score != subs[j].Score {
			return subs[i].Score > subs[j].Score
		}
		if ti, tj := subs[i].TimeTaken(), subs[j].TimeTaken(); ti != tj {
			return ti < tj
		}
		return subs[i].Team < subs[j].Team
	})

	entries := make([]domain.LeaderboardEntry, 0, len(subs))
	for _, sub := range subs {
		entries = append(entries, domain.LeaderboardEntry{
			Name:      sub.Team,
			Score:     sub.Score,
			TimeTaken: domain.FormatTimeTaken(sub.TimeTaken()),
		})
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

// Subscribe returns a channel that receives leaderboard updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.board.subscribe(initial)
	return ch, cancel, nil
}

// Feedback stores a participant message.
func (s *QuizService) Feedback(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.ErrEmptyFeedback
	}
	return s.results.SaveFeedback(ctx, domain.Feedback{Content: content, CreatedAt: s.now()})
}

// board fans leaderboard snapshots out to live subscribers.
type board struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func newBoard() *board {
	return &board{subscribers: make(map[chan domain.Leaderboard]struct{})}
}

func (b *board) subscribe(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *board) publish(lb domain.Leaderboard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so publish never blocks.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
