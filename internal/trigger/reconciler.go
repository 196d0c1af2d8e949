package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// Platform is the subset of the messaging platform the reconciler needs.
type Platform interface {
	ListTriggers(ctx context.Context, ownedOnly bool) ([]domain.SubscriptionRecord, error)
	CreateTrigger(ctx context.Context, spec domain.SubscriptionSpec) (string, error)
	UpdateTrigger(ctx context.Context, id string, spec domain.SubscriptionSpec) error
}

// Result describes what Reconcile did.
type Result struct {
	Action    Action
	TriggerID string
}

type pairKey struct {
	eventType  domain.TriggerEventType
	workflowID string
	channelID  string
}

// Reconciler creates or updates the single trigger for each
// (event type, workflow) pair. Reconciliations of the same pair are
// serialized within the process; concurrent processes can still race.
type Reconciler struct {
	platform Platform
	logger   logrus.FieldLogger

	mu    sync.Mutex
	locks map[pairKey]*sync.Mutex
}

// NewReconciler creates a new Reconciler.
func NewReconciler(platform Platform, logger logrus.FieldLogger) *Reconciler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reconciler{
		platform: platform,
		logger:   logger,
		locks:    make(map[pairKey]*sync.Mutex),
	}
}

func (r *Reconciler) lockFor(key pairKey) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

// Reconcile lists the app's triggers and creates or updates the one
// matching desired. The listing is fetched fresh on every call.
func (r *Reconciler) Reconcile(ctx context.Context, desired domain.SubscriptionSpec) (Result, error) {
	lock := r.lockFor(pairKey{eventType: desired.EventType, workflowID: desired.WorkflowID})
	lock.Lock()
	defer lock.Unlock()

	listing, err := r.platform.ListTriggers(ctx, true)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list triggers: %w", err)
	}

	step, err := Plan(desired, listing)
	if err != nil {
		return Result{}, err
	}

	log := r.logger.WithFields(logrus.Fields{
		"event_type":  desired.EventType,
		"workflow_id": desired.WorkflowID,
		"channels":    len(desired.ChannelIDs),
	})

	switch step.Action {
	case ActionCreate:
		id, err := r.platform.CreateTrigger(ctx, step.Spec)
		if err != nil {
			return Result{}, fmt.Errorf("failed to create a trigger: %w", err)
		}
		log.WithField("trigger_id", id).Info("trigger created")
		return Result{Action: ActionCreate, TriggerID: id}, nil
	default:
		if err := r.platform.UpdateTrigger(ctx, step.TriggerID, step.Spec); err != nil {
			return Result{}, fmt.Errorf("failed to update trigger %s: %w", step.TriggerID, err)
		}
		log.WithField("trigger_id", step.TriggerID).Info("trigger updated")
		return Result{Action: ActionUpdate, TriggerID: step.TriggerID}, nil
	}
}

// EnsureChannel creates the channel-scoped trigger desired unless one already
// covers its single channel. Calls for the same (event type, workflow,
// channel) are serialized within the process.
func (r *Reconciler) EnsureChannel(ctx context.Context, desired domain.SubscriptionSpec) (Result, error) {
	if len(desired.ChannelIDs) != 1 {
		return Result{}, fmt.Errorf("channel-scoped trigger needs exactly one channel, got %d", len(desired.ChannelIDs))
	}
	channelID := desired.ChannelIDs[0]

	lock := r.lockFor(pairKey{eventType: desired.EventType, workflowID: desired.WorkflowID, channelID: channelID})
	lock.Lock()
	defer lock.Unlock()

	listing, err := r.platform.ListTriggers(ctx, true)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list triggers: %w", err)
	}

	step, err := PlanChannel(desired, channelID, listing)
	if err != nil {
		return Result{}, err
	}
	if step.Action == ActionNone {
		return Result{Action: ActionNone, TriggerID: step.TriggerID}, nil
	}

	id, err := r.platform.CreateTrigger(ctx, step.Spec)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create a trigger: %w", err)
	}
	r.logger.WithFields(logrus.Fields{
		"event_type":  desired.EventType,
		"workflow_id": desired.WorkflowID,
		"channel_id":  channelID,
		"trigger_id":  id,
	}).Info("trigger created")
	return Result{Action: ActionCreate, TriggerID: id}, nil
}

// Find returns the existing trigger for the pair, or nil when there is none.
func (r *Reconciler) Find(ctx context.Context, eventType domain.TriggerEventType, workflowID string) (*domain.SubscriptionRecord, error) {
	listing, err := r.platform.ListTriggers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}

	matches := matching(eventType, workflowID, listing)
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, duplicates(eventType, workflowID, matches)
	}
}
