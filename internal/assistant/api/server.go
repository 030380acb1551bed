// Package api exposes the assistant over HTTP.
//
// Two request shapes reach the core: the chat endpoint, which runs the full
// classification pipeline, and the direct-action endpoint, which invokes a
// single operation by name and returns its raw result. Health and status
// endpoints are served alongside for operators.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Rugwed9599/onecard-genai-assistant/common/trace"
	"github.com/Rugwed9599/onecard-genai-assistant/common/version"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/actions"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/audit"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/dispatch"
)

// recorder is the minimal interface the server needs from the audit store.
type recorder interface {
	Record(ctx context.Context, e audit.Entry) error
	Count(ctx context.Context) (int, error)
}

// Server handles the assistant HTTP routes.
type Server struct {
	addr       string
	dispatcher *dispatch.Dispatcher
	service    *actions.Service
	auditor    recorder
	startedAt  time.Time
	mux        *http.ServeMux
	server     *http.Server
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Message string `json:"message"`
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse is returned by GET /health.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// statusResponse is returned by GET /status.
type statusResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Commit        string    `json:"commit"`
	BuildTime     string    `json:"build_time"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSecs    float64   `json:"uptime_seconds"`
	DispatchCount int       `json:"dispatch_count"`
}

// New creates and configures the HTTP server (does not start it). The auditor
// may be nil, in which case dispatches are not recorded and /status reports a
// zero count.
func New(addr string, dispatcher *dispatch.Dispatcher, service *actions.Service, auditor recorder) *Server {
	mux := http.NewServeMux()
	s := &Server{
		addr:       addr,
		dispatcher: dispatcher,
		service:    service,
		auditor:    auditor,
		startedAt:  time.Now(),
		mux:        mux,
	}
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/mock/", s.handleMockAction)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return s
}

// ServeHTTP implements http.Handler so the server can be tested without a
// live network listener. Every request gets a request ID and an access log
// line.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := trace.NewRequestID()
	ctx := trace.WithRequestID(r.Context(), requestID)

	start := time.Now()
	s.mux.ServeHTTP(w, r.WithContext(ctx))
	slog.Info("http request",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID,
		"duration", time.Since(start),
	)
}

// handleChat handles POST /api/chat. Any other method is rejected with 405.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	envelope, intent := s.dispatcher.Handle(r.Context(), req.Message)
	s.record(r.Context(), req.Message, intent, envelope.Reply)

	writeJSON(w, http.StatusOK, envelope)
}

// handleMockAction handles /mock/<action>: it invokes the named operation
// directly and returns its raw result. An unrecognized name is a client
// error, not a crash.
func (s *Server) handleMockAction(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/mock/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "Invalid mock action")
		return
	}

	result, err := s.service.Invoke(r.Context(), name, r.URL.Query())
	if err != nil {
		if errors.Is(err, actions.ErrUnknownAction) {
			writeError(w, http.StatusBadRequest, "Invalid mock action")
			return
		}
		slog.Error("invoke mock action", "action", name, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count := 0
	if s.auditor != nil {
		n, err := s.auditor.Count(r.Context())
		if err != nil {
			slog.Warn("count dispatches for status", "err", err)
		} else {
			count = n
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:        "ok",
		Version:       version.Version,
		Commit:        version.GitCommit,
		BuildTime:     version.BuildTime,
		StartedAt:     s.startedAt,
		UptimeSecs:    time.Since(s.startedAt).Seconds(),
		DispatchCount: count,
	})
}

// record writes an audit entry for a dispatched chat message. Audit failures
// are logged and never fail the request.
func (s *Server) record(ctx context.Context, message, intent, reply string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Record(ctx, audit.Entry{
		RequestID: trace.FromContext(ctx),
		Message:   message,
		Intent:    intent,
		Reply:     reply,
	})
	if err != nil {
		slog.Warn("record dispatch", "err", err)
	}
}

// Start begins listening in the background. Blocks until the listener is
// established so the caller knows the port is open before returning.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api server: listen %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("api server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("api server shutdown error", "err", err)
		}
	}()

	return nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Warn("api server shutdown error", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
