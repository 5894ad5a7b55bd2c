// Package api provides the HTTP ingress for Arie.
//
// It exposes a JSON event endpoint, a Twilio inbound-SMS webhook, a health
// check, and admin endpoints for inspecting a participant's profile and
// resetting a conversation. Each event request runs one conversational turn
// through the messaging handler.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arielabs/arie/internal/flow"
	"github.com/arielabs/arie/internal/messaging"
	"github.com/arielabs/arie/internal/models"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server handles inbound HTTP events and feeds them to the messaging handler.
type Server struct {
	handler *messaging.Handler
	states  *flow.StateManager
	addr    string
	srv     *http.Server
}

// NewServer creates an API server around the given messaging handler and
// state manager.
func NewServer(handler *messaging.Handler, states *flow.StateManager, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{handler: handler, states: states, addr: cfg.Addr}
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.eventsHandler)
	mux.HandleFunc("/webhook/twilio", s.twilioWebhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/participants/", s.participantsHandler)

	s.srv = &http.Server{Addr: s.addr, Handler: mux}
	slog.Info("API server listening", "addr", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("API response encoding failed", "error", err)
	}
}

// eventsHandler accepts a JSON-encoded inbound event and runs one turn.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var ev models.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		slog.Error("eventsHandler malformed body", "error", err)
		writeJSON(w, http.StatusBadRequest, models.APIResponse{Status: string(models.APIStatusError), Message: "malformed event"})
		return
	}
	if ev.Time == 0 {
		ev.Time = time.Now().Unix()
	}
	if err := s.handler.ProcessEvent(r.Context(), ev); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.APIResponse{Status: string(models.APIStatusError), Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.APIResponse{Status: string(models.APIStatusOK)})
}

// twilioWebhookHandler adapts a Twilio inbound-SMS form post to a message
// event. Twilio expects a 2xx with no required body.
func (s *Server) twilioWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.Error("twilioWebhookHandler malformed form", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	ev := models.Event{
		Type: models.EventTypeMessage,
		From: r.PostFormValue("From"),
		Text: r.PostFormValue("Body"),
		Time: time.Now().Unix(),
	}
	if err := s.handler.ProcessEvent(r.Context(), ev); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// participantsHandler serves the admin routes:
//
//	GET  /participants/{id}/profile  return the stored profile record
//	POST /participants/{id}/reset    clear the conversation-level state
func (s *Server) participantsHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/participants/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch action {
	case "profile":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		record, err := s.states.Profile(id)
		if err != nil {
			slog.Error("participantsHandler profile load failed", "error", err, "participantID", id)
			writeJSON(w, http.StatusInternalServerError, models.APIResponse{Status: string(models.APIStatusError), Message: "failed to load profile"})
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{Status: string(models.APIStatusOK), Result: record})
	case "reset":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := s.states.ResetConversation(id); err != nil {
			slog.Error("participantsHandler reset failed", "error", err, "participantID", id)
			writeJSON(w, http.StatusInternalServerError, models.APIResponse{Status: string(models.APIStatusError), Message: "failed to reset conversation"})
			return
		}
		slog.Info("participantsHandler reset conversation", "participantID", id)
		writeJSON(w, http.StatusOK, models.APIResponse{Status: string(models.APIStatusOK)})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, models.APIResponse{Status: string(models.APIStatusOK)})
}
