// Package api exposes a compute.Backend over JSON/HTTP and provides the
// matching client.
//
// Routes:
//
//	POST /api/nonlinear/mcs/calculate
//	POST /api/sne/ntm/calculate
//	POST /api/ni/{method}/calculate      (lrm, mrm, rrm, sm1, sm2, tm)
//	POST /api/ni/intermediate/calculate
//	POST /api/slat/{method}/calculate    (gm, sim, zm)
//	GET  /health
//
// Domain failures answer 422 with {"error", "kind", "code", "field"}; an
// unknown method answers 404.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/numeric"
)

const maxBodyBytes = 1 << 20

type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

type Server struct {
	backend compute.Backend
	logger  *zap.Logger
	mux     *http.ServeMux
}

func NewServer(backend compute.Backend, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		backend: backend,
		logger:  logger.Named("api"),
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/nonlinear/mcs/calculate", handle(s, nil, s.backend.Secant))
	s.mux.HandleFunc("POST /api/sne/ntm/calculate", handle(s, nil, s.backend.Newton))
	s.mux.HandleFunc("POST /api/ni/intermediate/calculate", handle(s, nil, s.backend.Properties))
	s.mux.HandleFunc("POST /api/ni/{method}/calculate", handle(s,
		func(r *http.Request, req *compute.IntegralRequest) { req.Method = r.PathValue("method") },
		s.backend.Integrate))
	s.mux.HandleFunc("POST /api/slat/{method}/calculate", handle(s,
		func(r *http.Request, req *compute.LinearRequest) { req.Method = r.PathValue("method") },
		s.backend.Linear))
	s.mux.HandleFunc("GET /health", s.health)

	return s
}

// Handler returns the routed handler wrapped with panic recovery and
// request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("panic in handler",
					zap.Any("panic", p),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				writeJSON(rec, http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
			}
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)))
		}()

		s.mux.ServeHTTP(rec, r)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("backend", s.backend.Name()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func handle[Req, Resp any](s *Server, prepare func(*http.Request, *Req), call func(context.Context, *Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		req := new(Req)
		if err := dec.Decode(req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error()})
			return
		}
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid JSON: trailing data"})
			return
		}
		if prepare != nil {
			prepare(r, req)
		}

		resp, err := call(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, code := numeric.Code(err)
	body := ErrorBody{Error: err.Error(), Kind: kind, Code: code}

	var ve *numeric.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}

	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, numeric.ErrUnknownMethod):
		status = http.StatusNotFound
	case kind == "":
		status = http.StatusInternalServerError
		s.logger.Error("computation failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
