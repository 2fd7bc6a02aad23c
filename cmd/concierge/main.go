package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillhq/concierge/internal/profile"
	"github.com/quillhq/concierge/plugin/ai"
	"github.com/quillhq/concierge/plugin/ai/aitime"
	"github.com/quillhq/concierge/plugin/ai/cache"
	"github.com/quillhq/concierge/plugin/ai/chatbot"
	"github.com/quillhq/concierge/plugin/ai/form"
	"github.com/quillhq/concierge/plugin/ai/intent"
	"github.com/quillhq/concierge/plugin/ai/qa"
	"github.com/quillhq/concierge/plugin/ai/session"
	"github.com/quillhq/concierge/server"
	"github.com/quillhq/concierge/store"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Conversational front-end for document QA and appointment booking",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	p, err := profile.Load()
	if err != nil {
		return err
	}
	if p.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	appointments, err := store.NewSQLiteStore(p.DSN)
	if err != nil {
		return err
	}
	defer appointments.Close()

	var llm ai.LLMService
	if p.IsLLMEnabled() {
		cfg := ai.NewLLMConfigFromProfile(p)
		if err := cfg.Validate(); err != nil {
			return err
		}
		if llm, err = ai.NewLLMService(cfg); err != nil {
			return err
		}
	} else {
		slog.Warn("no LLM configured; intent classification runs rules-only and QA is disabled")
	}

	var retriever qa.Retriever = qa.NoopRetriever{}
	if p.RetrievalBaseURL != "" {
		retriever = qa.NewHTTPRetriever(p.RetrievalBaseURL)
	} else {
		slog.Warn("no retrieval service configured; QA will answer 'not found'")
	}

	answerCache := cache.NewService(cache.ServiceConfig{})
	defer answerCache.Close()

	sessions := session.NewStore()
	engine := chatbot.NewEngine(
		sessions,
		intent.NewService(llm),
		form.NewEngine(appointments, aitime.NewService(p.Timezone)),
		qa.NewOrchestrator(retriever, llm, answerCache, qa.Config{
			TopK:     p.QATopK,
			MinScore: float64(p.QAMinScore),
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := session.NewCleanupJob(sessions, session.CleanupConfig{
		IdleTimeout:     p.SessionIdleTimeout,
		CleanupInterval: p.SessionCleanupInterval,
	})
	if err := cleanup.Start(ctx); err != nil {
		return err
	}
	defer cleanup.Stop()

	srv := server.NewServer(p, engine)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("concierge started", "mode", p.Mode, "port", p.Port)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
