package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/label-scanner/internal/common"
	"github.com/joseph-ayodele/label-scanner/internal/ingress"
	"github.com/joseph-ayodele/label-scanner/internal/llm/gemini"
	"github.com/joseph-ayodele/label-scanner/internal/ocr"
	"github.com/joseph-ayodele/label-scanner/internal/pipeline"
	"github.com/joseph-ayodele/label-scanner/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("loading .env", "error", err)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
		logger.Error("GEMINI_API_KEY (or llm.api_key) is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := ingress.NewStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Error("create upload store", "error", err)
		os.Exit(1)
	}

	engine, err := ocr.NewGosseractEngine(cfg.OCR.Languages, cfg.OCR.TessdataDir)
	if err != nil {
		logger.Error("init ocr engine", "langs", cfg.OCR.Languages, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			logger.Error("close ocr engine", "error", cerr)
		}
	}()

	extractor := ocr.NewExtractor(ocr.Config{
		Languages:           cfg.OCR.Languages,
		ConfidenceThreshold: cfg.OCR.ConfidenceThreshold,
		TessdataDir:         cfg.OCR.TessdataDir,
	}, engine, logger)

	generator := gemini.NewClient(gemini.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
	}, logger)

	proc := pipeline.NewProcessor(store, extractor, generator, logger)
	svc := server.NewService(proc, logger)
	srv := server.NewHTTPServer(cfg.Server, svc)

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr, "model", cfg.LLM.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := common.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
