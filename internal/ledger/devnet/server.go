package devnet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
)

// Error codes returned in the "code" field of an error body.
const (
	CodeReverted        = "REVERTED"
	CodeUnknownFunction = "UNKNOWN_FUNCTION"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL_ERROR"
)

// CallRequest is the body of every /v1 call endpoint.
type CallRequest struct {
	Function string `json:"function"`
	Args     []any  `json:"args"`
}

type ReadResponse struct {
	Result any `json:"result"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

type server struct {
	contract *Contract
	log      logging.Logger
}

// NewHandler exposes the contract over HTTP.
func NewHandler(c *Contract, log logging.Logger) http.Handler {
	s := &server{contract: c, log: log.With("component", "devnet-http")}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/read", s.read)
		r.Post("/simulate", s.simulate)
		r.Post("/write", s.write)
		r.Get("/transactions", s.transactions)
	})
	return r
}

// Serve runs the devnet HTTP server until ctx is cancelled.
func Serve(ctx context.Context, addr string, c *Contract, log logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(c, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "devnet listening", "addr", addr, "functions", len(c.Functions()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug(r.Context(), "request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	head, err := s.contract.Head(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "head": head})
}

func (s *server) read(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCall(w, r)
	if !ok {
		return
	}
	result, err := s.contract.Read(r.Context(), ledger.NewCall(req.Function, req.Args...))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReadResponse{Result: result})
}

func (s *server) simulate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCall(w, r)
	if !ok {
		return
	}
	if err := s.contract.Simulate(r.Context(), ledger.NewCall(req.Function, req.Args...)); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *server) write(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCall(w, r)
	if !ok {
		return
	}
	tx, err := s.contract.Write(r.Context(), ledger.NewCall(req.Function, req.Args...))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *server) transactions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, 100)
		}
	}
	txs, err := s.contract.Transactions(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var revert *ledger.RevertError
	switch {
	case errors.As(err, &revert):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: CodeReverted, Reason: revert.Reason})
	case errors.Is(err, ledger.ErrUnknownFunction):
		writeError(w, http.StatusNotFound, CodeUnknownFunction, err.Error())
	case errors.Is(err, ledger.ErrBadArguments):
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
	default:
		s.log.Error(r.Context(), "devnet call failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func decodeCall(w http.ResponseWriter, r *http.Request) (CallRequest, bool) {
	defer r.Body.Close()
	var req CallRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error())
		return req, false
	}
	if req.Function == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "function is required")
		return req, false
	}
	return req, true
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
