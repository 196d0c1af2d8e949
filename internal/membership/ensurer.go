// Package membership makes the bot a member of the channels it serves.
package membership

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
)

// Joiner joins a single channel. A join of a channel the bot is already in
// must succeed.
type Joiner interface {
	JoinChannel(ctx context.Context, channelID string) error
}

// JoinError is the failure of one channel join.
type JoinError struct {
	ChannelID string
	Code      string
	Err       error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("Failed to join <#%s> due to %s", e.ChannelID, e.Code)
}

func (e *JoinError) Unwrap() error { return e.Err }

// Ensurer joins channels concurrently.
type Ensurer struct {
	joiner Joiner
	logger logrus.FieldLogger
}

// NewEnsurer creates a new Ensurer.
func NewEnsurer(joiner Joiner, logger logrus.FieldLogger) *Ensurer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Ensurer{joiner: joiner, logger: logger}
}

// EnsureMember joins every channel in channelIDs, one request per channel,
// all in flight at once. It waits for every join and returns the failure
// that completed first as a *JoinError; later failures are only logged.
func (e *Ensurer) EnsureMember(ctx context.Context, channelIDs []string) error {
	// errgroup.WithContext would cancel the remaining joins on the first
	// failure; every channel must still be attempted.
	var g errgroup.Group
	for _, channelID := range channelIDs {
		g.Go(func() error {
			err := e.joiner.JoinChannel(ctx, channelID)
			if err == nil || platform.IsAPIError(err, platform.ErrCodeAlreadyInChannel) {
				e.logger.WithField("channel_id", channelID).Debug("channel joined")
				return nil
			}
			joinErr := &JoinError{ChannelID: channelID, Code: platform.ErrorCode(err), Err: err}
			e.logger.WithError(err).WithField("channel_id", channelID).Warn(joinErr.Error())
			return joinErr
		})
	}
	return g.Wait()
}
