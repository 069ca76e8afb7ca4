package app

import (
	"context"
	"log"
	"time"

	"pm-quiz-runner/internal/domain"
)

// DefaultPollInterval matches the leaderboard page refresh period.
const DefaultPollInterval = 5 * time.Second

// LeaderboardSource fetches the ordered leaderboard.
type LeaderboardSource interface {
	FetchLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// LeaderboardPoller fetches the leaderboard immediately and then on a fixed
// interval, handing each result to sink. A failed fetch is passed to sink as
// an error and polling carries on.
type LeaderboardPoller struct {
	source   LeaderboardSource
	interval time.Duration
	sink     func([]domain.LeaderboardEntry, error)
	log      *log.Logger
}

func NewLeaderboardPoller(source LeaderboardSource, interval time.Duration, sink func([]domain.LeaderboardEntry, error)) *LeaderboardPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &LeaderboardPoller{
		source:   source,
		interval: interval,
		sink:     sink,
		log:      log.Default(),
	}
}

// Run polls until ctx is cancelled.
func (p *LeaderboardPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *LeaderboardPoller) poll(ctx context.Context) {
	entries, err := p.source.FetchLeaderboard(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Printf("fetch leaderboard: %v", err)
	}
	p.sink(entries, err)
}
