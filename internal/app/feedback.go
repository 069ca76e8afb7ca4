package app

import (
	"context"
	"strings"

	"pm-quiz-runner/internal/domain"
)

// FeedbackSender delivers free-text feedback and reports whether it was stored.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, content string) (bool, error)
}

// SendFeedback skips blank messages; nothing is sent for them.
func SendFeedback(ctx context.Context, sender FeedbackSender, content string) (bool, error) {
	if strings.TrimSpace(content) == "" {
		return false, domain.ErrEmptyFeedback
	}
	return sender.SendFeedback(ctx, content)
}
