package store

import (
	"context"
	"time"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// Store is the append-only audit log. Nothing read from it feeds a
// trigger, membership or completion decision.
type Store interface {
	// Invocation operations
	CreateInvocation(ctx context.Context, invocation *domain.Invocation) error
	GetInvocation(ctx context.Context, requestID string) (*domain.Invocation, error)
	ListInvocations(ctx context.Context, kind domain.InvocationKind, limit int) ([]domain.Invocation, error)
	FinishInvocation(ctx context.Context, requestID string, status domain.InvocationStatus, outcome, errText string, endedAt time.Time) error

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error)

	Close() error
}

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	RequestID string
	ChannelID string
	Types     []domain.EventType
	AfterTs   int64
	Limit     int
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
