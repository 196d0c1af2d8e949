package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/askbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
	"github.com/xiaot623/gogo/askbot/internal/config"
	"github.com/xiaot623/gogo/askbot/internal/logging"
	store "github.com/xiaot623/gogo/askbot/internal/repository"
	"github.com/xiaot623/gogo/askbot/internal/service"
	"github.com/xiaot623/gogo/askbot/internal/tokens"
	"github.com/xiaot623/gogo/askbot/policy"
)

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	store    *store.SQLiteStore
	platform *platform.Client
	svc      *service.Service
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	encoder, err := tokens.NewTiktokenEncoder(cfg.OpenAIModel)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}

	policyEngine, err := policy.LoadEngine(ctx, cfg.PolicyFile)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	platformClient := platform.NewClient(cfg.PlatformAPIURL, cfg.PlatformBotToken, cfg.PlatformAppToken, logger)
	llmClient := llm.NewLLMClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, logger)

	svc := service.New(db, platformClient, llmClient, tokens.NewCounter(encoder), cfg, policyEngine, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    db,
		platform: platformClient,
		svc:      svc,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func loadApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.DebugMode)
	return newApp(ctx, cfg, logger)
}
