package cli

import (
	"net/http"
	"time"

	"pm-quiz-runner/internal/config"
)

func apiHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: config.TTLDuration(cfg.API.Timeout, 15*time.Second)}
}
