// Package service implements the askbot functions: configure, quick reply
// and discuss.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/askbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
	"github.com/xiaot623/gogo/askbot/internal/config"
	"github.com/xiaot623/gogo/askbot/internal/conversation"
	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/internal/membership"
	store "github.com/xiaot623/gogo/askbot/internal/repository"
	"github.com/xiaot623/gogo/askbot/internal/trigger"
	"github.com/xiaot623/gogo/askbot/policy"
)

// Platform is the messaging platform as used by the service.
type Platform interface {
	trigger.Platform
	membership.Joiner
	ThreadReplies(ctx context.Context, channelID, ts string, includeMetadata bool, limit int) ([]domain.ThreadMessage, error)
	PostMessage(ctx context.Context, params platform.PostMessageParams) (string, error)
	AuthTest(ctx context.Context) (platform.Identity, error)
}

// Ensure platform.Client implements Platform interface.
var _ Platform = (*platform.Client)(nil)

type Service struct {
	store        store.Store
	platform     Platform
	llmClient    llm.LLMClient
	counter      conversation.Counter
	reconciler   *trigger.Reconciler
	ensurer      *membership.Ensurer
	config       *config.Config
	policyEngine *policy.Engine
	logger       logrus.FieldLogger
}

func New(store store.Store, platformClient Platform, llmClient llm.LLMClient, counter conversation.Counter, cfg *config.Config, policyEngine *policy.Engine, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:        store,
		platform:     platformClient,
		llmClient:    llmClient,
		counter:      counter,
		reconciler:   trigger.NewReconciler(platformClient, logger),
		ensurer:      membership.NewEnsurer(platformClient, logger),
		config:       cfg,
		policyEngine: policyEngine,
		logger:       logger,
	}
}
