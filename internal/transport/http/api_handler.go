package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/domain"
)

// APIHandler serves the JSON endpoints the quiz runner calls.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

// NewRouter mounts the API and the leaderboard websocket.
func NewRouter(service *app.QuizService) http.Handler {
	api := NewAPIHandler(service)
	ws := NewWSHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/questions", api.Questions)
		r.Get("/status", api.Status)
		r.Post("/submit", api.Submit)
		r.Get("/leaderboard", api.Leaderboard)
		r.Post("/feedback", api.Feedback)
	})
	r.Get("/ws/leaderboard", ws.ServeWS)
	return r
}

func teamFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(TeamHeader))
}

func (h *APIHandler) Questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context(), teamFrom(r))
	if err != nil {
		writeServiceErr(w, "questions", err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *APIHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), teamFrom(r))
	if err != nil {
		writeServiceErr(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *APIHandler) Submit(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "unreadable body")
		return
	}
	answers, err := domain.UnmarshalAnswers(data)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "answers must be a JSON object of strings")
		return
	}
	team := teamFrom(r)
	result, err := h.service.Submit(r.Context(), team, answers)
	if err != nil {
		writeServiceErr(w, "submit", err)
		return
	}
	log.Printf("submit team=%q id=%s answers=%d redirect=%q",
		team, r.Header.Get(SubmissionHeader), len(answers), result.Redirect)
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeServiceErr(w, "leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, lb.Entries)
}

type feedbackRequest struct {
	Content string `json:"content"`
}

type feedbackResponse struct {
	Success bool `json:"success"`
}

func (h *APIHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid feedback payload")
		return
	}
	if err := h.service.Feedback(r.Context(), req.Content); err != nil {
		writeServiceErr(w, "feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Success: true})
}

func writeServiceErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrTeamRequired), errors.Is(err, domain.ErrEmptyFeedback):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("%s: %v", op, err)
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}
