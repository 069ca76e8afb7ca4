package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"pm-quiz-runner/internal/domain"
)

// LeaderboardStream receives pushed leaderboard snapshots from /ws/leaderboard.
type LeaderboardStream struct {
	url    string
	dialer *websocket.Dialer
}

// NewLeaderboardStream derives the websocket URL from the API base URL.
func NewLeaderboardStream(baseURL string) (*LeaderboardStream, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws/leaderboard"
	return &LeaderboardStream{url: u.String(), dialer: websocket.DefaultDialer}, nil
}

// Run delivers each snapshot to sink until ctx is cancelled or the server
// closes the connection.
func (s *LeaderboardStream) Run(ctx context.Context, sink func(domain.Leaderboard)) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		switch msg.Type {
		case "leaderboard":
			var lb domain.Leaderboard
			if err := json.Unmarshal(msg.Payload, &lb); err != nil {
				return fmt.Errorf("decode leaderboard: %w", err)
			}
			sink(lb)
		case "error":
			var p errorPayload
			_ = json.Unmarshal(msg.Payload, &p)
			return fmt.Errorf("leaderboard stream: %s", p.Message)
		}
	}
}
