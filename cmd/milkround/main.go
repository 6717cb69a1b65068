package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"milkround/internal/amqp"
	"milkround/internal/assistant"
	"milkround/internal/assistant/gemini"
	"milkround/internal/backend"
	"milkround/internal/cache"
	"milkround/internal/cli"
	"milkround/internal/config"
	apphttp "milkround/internal/http"
	applog "milkround/internal/log"
	"milkround/internal/services"
)

func main() {
	cfg, logger := cli.Init(applog.ComponentApp)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	opened, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open book", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	book := opened.Store
	opened.Start(ctx)

	if cfg.SeedDemo {
		if err := book.SeedDemo(); err != nil {
			logger.Error("Failed to seed demo customers", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Demo customers seeded")
	}

	guard := newGuard(ctx, cfg, logger)

	noticeOpts := []services.NoticeOption{
		services.WithPhoneRegion(cfg.PhoneRegion),
		services.WithConcurrency(cfg.AssistantConcurrency),
		services.WithNoticeLogger(logger),
	}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, bill notices will not be published", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			noticeOpts = append(noticeOpts, services.WithPublisher(amqpClient))
			logger.Info("Publishing bill notices", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	insightCache := cache.NewLRUCache[string](64, cfg.InsightCacheTTL)
	janitor := cache.NewJanitor(logger, insightCache)
	janitor.Start(10 * time.Minute)
	defer janitor.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Book:     book,
		Notices:  services.NewNoticeService(book, guard, noticeOpts...),
		Routes:   services.NewRouteService(book, guard, logger),
		Insights: services.NewInsightService(book, guard, insightCache, logger),
		Logger:   logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting milkround server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	cancel()

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cleanupCancel()
	if err := opened.Cleanup(cleanupCtx); err != nil {
		logger.Error("Backend cleanup failed", applog.FieldError, err, applog.FieldOperation, applog.OpShutdown)
	}
	logger.Info("Server stopped gracefully")
}

// newGuard wires the Gemini collaborator when a key is configured. Without
// one every message, route and insight request uses its fallback.
func newGuard(ctx context.Context, cfg *config.Config, logger *applog.Logger) *assistant.Guard {
	opts := []assistant.GuardOption{
		assistant.WithTimeout(cfg.AssistantTimeout),
		assistant.WithLogger(logger),
	}
	if cfg.GeminiAPIKey == "" {
		logger.Info("No GEMINI_API_KEY provided, messages and routes use fallbacks")
		return assistant.NewGuard(nil, nil, nil, opts...)
	}

	client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("Gemini client unavailable, using fallbacks", applog.FieldError, err)
		return assistant.NewGuard(nil, nil, nil, opts...)
	}
	logger.Info("Gemini collaborator enabled", "model", cfg.GeminiModel)
	return assistant.NewGuard(client, client, client, opts...)
}
