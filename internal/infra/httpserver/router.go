package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appanalysis "github.com/bryanwahyu/code-verdict/internal/application/analysis"
	domain "github.com/bryanwahyu/code-verdict/internal/domain/analysis"
	"github.com/bryanwahyu/code-verdict/internal/middleware"
)

// Caller-facing messages.
const (
	msgInternal     = "서버 내부에서 분석을 처리하는 중 오류가 발생했습니다."
	msgBadFormat    = "모델이 요청된 JSON 형식을 따르지 않았습니다."
	msgInvalidBody  = "요청 본문이 올바른 JSON 형식이 아닙니다."
	msgBodyTooLarge = "요청 본문이 허용된 크기를 초과했습니다."
)

type Options struct {
	MaxBodyBytes int64
	Checks       map[string]middleware.HealthChecker
}

type Router struct {
	svc     *appanalysis.Service
	metrics *middleware.Metrics
	log     *logrus.Logger
	opts    Options
}

func NewRouter(svc *appanalysis.Service, metrics *middleware.Metrics, log *logrus.Logger, opts Options) http.Handler {
	r := &Router{svc: svc, metrics: metrics, log: log, opts: opts}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(log))
	mux.Use(metrics.Middleware)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/ready", middleware.ReadinessHandler(opts.Checks))
	mux.Get("/metrics", metrics.Handler)

	mux.Post("/analyze", r.wrap(r.handleAnalyze))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorBody struct {
	Error string `json:"error"`
}

type statusBody struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Detail   string          `json:"detail,omitempty"`
	Analysis json.RawMessage `json:"analysis,omitempty"`
}

// wrap is the single place where errors become HTTP responses.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var (
			formatErr *domain.FormatError
			tooLarge  *http.MaxBytesError
			badBody   *invalidBodyError
		)
		switch {
		case errors.Is(err, domain.ErrNoCodeFiles), errors.Is(err, domain.ErrInvalidMode):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		case errors.As(err, &badBody):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: msgInvalidBody})
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: msgBodyTooLarge})
		case errors.As(err, &formatErr):
			r.metrics.FormatFailures.Add(1)
			writeJSON(w, http.StatusInternalServerError, statusBody{
				Status:  "error",
				Message: msgBadFormat,
				Detail:  formatErr.Detail(),
			})
		case errors.Is(err, domain.ErrModelUnavailable):
			r.metrics.ModelFailures.Add(1)
			writeJSON(w, http.StatusInternalServerError, statusBody{
				Status:  "error",
				Message: msgInternal,
				Detail:  domain.ErrModelUnavailable.Error(),
			})
		default:
			r.log.WithError(err).WithField("request_id", middleware.GetRequestID(req.Context())).
				Error("unhandled analysis error")
			writeJSON(w, http.StatusInternalServerError, statusBody{
				Status:  "error",
				Message: msgInternal,
				Detail:  msgInternal,
			})
		}
	}
}

// POST /analyze
// Body: {"programMeta": {"title": "..."}, "codeFiles": [{"fileName": "...", "content": "..."}], "mode": "whole|per_file"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.opts.MaxBodyBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxBodyBytes)
	}
	in, err := decodeAnalyzeRequest(req.Body)
	if err != nil {
		return err
	}

	r.metrics.AnalysesTotal.Add(1)

	// once accepted, a client disconnect does not abort the model call
	ctx := context.WithoutCancel(req.Context())
	v, err := r.svc.Analyze(ctx, in)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, statusBody{Status: "success", Analysis: v.Raw})
	return nil
}

type invalidBodyError struct{ err error }

func (e *invalidBodyError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *invalidBodyError) Unwrap() error { return e.err }

// decodeAnalyzeRequest tells apart a missing, non-array and empty codeFiles,
// which all map to ErrNoCodeFiles.
func decodeAnalyzeRequest(body io.Reader) (domain.Request, error) {
	var raw struct {
		ProgramMeta *domain.ProgramMeta `json:"programMeta"`
		CodeFiles   json.RawMessage     `json:"codeFiles"`
		Mode        string              `json:"mode"`
	}
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Request{}, err
		}
		return domain.Request{}, &invalidBodyError{err: err}
	}

	files := bytes.TrimSpace(raw.CodeFiles)
	if len(files) == 0 || files[0] != '[' {
		return domain.Request{}, domain.ErrNoCodeFiles
	}
	var req domain.Request
	if err := json.Unmarshal(files, &req.CodeFiles); err != nil {
		return domain.Request{}, &invalidBodyError{err: err}
	}
	if len(req.CodeFiles) == 0 {
		return domain.Request{}, domain.ErrNoCodeFiles
	}
	if raw.ProgramMeta != nil {
		req.ProgramMeta = *raw.ProgramMeta
	}
	req.Mode = raw.Mode
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
