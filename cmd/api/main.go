package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/code-verdict/internal/application"
	appanalysis "github.com/bryanwahyu/code-verdict/internal/application/analysis"
	"github.com/bryanwahyu/code-verdict/internal/config"
	"github.com/bryanwahyu/code-verdict/internal/infra/ai/openai"
	"github.com/bryanwahyu/code-verdict/internal/infra/httpserver"
	"github.com/bryanwahyu/code-verdict/internal/logger"
	"github.com/bryanwahyu/code-verdict/internal/middleware"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf(".env load error: %v", err)
	}

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config; a missing AI_API_KEY stops us here, before listening
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logrus.Fatalf("오류: %s 환경 변수가 설정되지 않았습니다.", config.APIKeyEnv)
		}
		logrus.Fatalf("config load error: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("logger init error: %v", err)
	}

	// init model client + service
	model := openai.NewClient(cfg.Model, cfg.APIKey, log)
	svc := appanalysis.NewService(model, application.SystemClock{}, cfg.Analysis.Mode, cfg.Analysis.StrictSchema, log)

	metrics := middleware.NewMetrics()
	checks := map[string]middleware.HealthChecker{
		"config": middleware.CheckFunc(func(context.Context) error { return cfg.Validate() }),
	}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, metrics, log, httpserver.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Checks:       checks,
	}))

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		log.WithFields(logrus.Fields{
			"addr":  addr,
			"model": model.Model(),
			"mode":  cfg.Analysis.Mode,
		}).Info("server listening, send POST /analyze")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
