package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/askbot/internal/service"
	handler "github.com/xiaot623/gogo/askbot/internal/transport/http"
	"github.com/xiaot623/gogo/askbot/internal/transport/socket"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the bot's functions over HTTP, and over socket mode when an app token is set",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.OpenAIAPIKey == "" {
		a.logger.Warn(service.APIKeyErrorText)
	}

	a.logger.Info("Starting askbot...")
	a.logger.Infof("External HTTP Port: %d", a.cfg.HTTPPort)
	a.logger.Infof("Internal HTTP Port: %d", a.cfg.InternalPort)
	a.logger.Infof("Database: %s", a.cfg.DatabaseURL)
	a.logger.Infof("Model: %s", a.cfg.OpenAIModel)

	externalServer := handler.NewExternalServer(a.svc)
	internalServer := handler.NewInternalServer(a.svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", a.cfg.HTTPPort)
		if err := externalServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("external server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", a.cfg.InternalPort)
		if err := internalServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("internal server: %w", err)
		}
		return nil
	})
	if a.platform.HasAppToken() {
		listener := socket.NewListener(a.platform, a.svc, a.logger)
		g.Go(func() error {
			return listener.Run(gctx)
		})
		a.logger.Info("Socket mode enabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down askbot...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := externalServer.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Failed to shutdown external server gracefully")
		}
		if err := internalServer.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Failed to shutdown internal server gracefully")
		}
		return nil
	})

	err = g.Wait()
	a.logger.Info("askbot stopped")
	return err
}
