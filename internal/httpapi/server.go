package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dearxhq/dearx/internal/chat"
	"github.com/dearxhq/dearx/internal/config"
	"github.com/dearxhq/dearx/internal/history"
	"github.com/dearxhq/dearx/internal/observability"
	"github.com/dearxhq/dearx/internal/persona"
	"github.com/dearxhq/dearx/internal/privacy"
	"github.com/dearxhq/dearx/internal/ratelimit"
)

// Responder answers one conversation turn.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (chat.Result, error)
}

type Server struct {
	cfg     config.Config
	chat    Responder
	store   history.Store
	limiter ratelimit.Limiter
	metrics *observability.Metrics
	window  *observability.StageWindow
}

func New(cfg config.Config, responder Responder, store history.Store, limiter ratelimit.Limiter, metrics *observability.Metrics, window *observability.StageWindow) *Server {
	return &Server{
		cfg:     cfg,
		chat:    responder,
		store:   store,
		limiter: limiter,
		metrics: metrics,
		window:  window,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/chat", s.handleChat)

	return r
}

// corsMiddleware mirrors the browser-client contract: any origin, the
// auth headers the web app sends, and a plain "ok" preflight answer.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.window == nil {
		respondJSON(w, http.StatusOK, observability.StageSnapshot{Stages: []observability.StageStats{}})
		return
	}
	respondJSON(w, http.StatusOK, s.window.Snapshot())
}

type chatRequest struct {
	PersonID string          `json:"person_id"`
	Person   persona.Persona `json:"person"`
	Messages []persona.Turn  `json:"messages"`
	UserName string          `json:"userName"`
	Language string          `json:"language"`
}

type chatResponse struct {
	Message           string        `json:"message"`
	ImageURL          *string       `json:"imageUrl"`
	RemainingMessages *int          `json:"remainingMessages,omitempty"`
	Usage             *usagePayload `json:"usage,omitempty"`
}

type usagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Person.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_persona", err.Error())
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "messages must not be empty")
		return
	}
	if strings.TrimSpace(req.UserName) == "" {
		req.UserName = "User"
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = "ko"
	}
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		userID = "anonymous"
	}
	personID := strings.TrimSpace(req.PersonID)
	if personID == "" {
		personID = uuid.NewString()
	}

	decision, err := s.limiter.Allow(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "rate limit check failed")
		return
	}
	if !decision.Allowed {
		if s.metrics != nil {
			s.metrics.RateLimited.Inc()
		}
		respondError(w, http.StatusTooManyRequests, "daily_limit_reached", "daily free message limit reached")
		return
	}

	s.saveTurn(r.Context(), userID, personID, persona.RoleUser, persona.LastUserUtterance(req.Messages), "")

	result, err := s.chat.Respond(r.Context(), chat.Request{
		Persona:  req.Person,
		Turns:    req.Messages,
		UserName: req.UserName,
		Language: req.Language,
	})
	if err != nil {
		log.Printf("httpapi: chat turn failed for user %s (last utterance %q): %v",
			userID, privacy.SanitizeForLog(persona.LastUserUtterance(req.Messages)), err)
		respondError(w, http.StatusBadGateway, "model_failure", "completion model call failed")
		return
	}

	s.saveTurn(r.Context(), userID, personID, persona.RoleAssistant, result.Reply.Message, result.Reply.ImageURL)

	out := chatResponse{Message: result.Reply.Message}
	if result.Reply.ImageURL != "" {
		out.ImageURL = &result.Reply.ImageURL
	}
	if decision.Remaining >= 0 {
		out.RemainingMessages = &decision.Remaining
	}
	if result.Usage != nil {
		out.Usage = &usagePayload{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// saveTurn persists one message best-effort. History failures never fail
// the chat turn.
func (s *Server) saveTurn(ctx context.Context, userID, personID, role, content, imageURL string) {
	if s.store == nil || content == "" {
		return
	}
	err := s.store.SaveMessage(ctx, history.MessageRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		PersonID:  personID,
		Role:      role,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("httpapi: save %s message failed: %v", role, err)
		if s.metrics != nil {
			s.metrics.HistoryErrors.WithLabelValues("save_message").Inc()
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
