package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"

	"github.com/k-hirata/quill/pkg/cli/config"
	controller "github.com/k-hirata/quill/pkg/controller/http"
	githubinfra "github.com/k-hirata/quill/pkg/infra/github"
	"github.com/k-hirata/quill/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		geminiCfg config.Gemini
		sentryCfg config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting quill server",
				slog.String("addr", serverCfg.Addr),
				slog.String("gemini_model", geminiCfg.Model),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)

			if githubCfg.WebhookSecret == "" {
				logger.Warn("Webhook secret not configured, signature verification is disabled")
			}

			// Create collaborators
			geminiClient, err := gemini.New(ctx, geminiCfg.Location, geminiCfg.ProjectID,
				gemini.WithModel(geminiCfg.Model),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create Gemini client")
			}

			githubClient := githubinfra.NewClient(githubCfg.Token)

			// Create use cases
			webhookUC, err := usecase.NewWebhook(geminiClient, githubClient,
				usecase.WithCallTimeout(serverCfg.CallTimeout),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create webhook use case")
			}

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
