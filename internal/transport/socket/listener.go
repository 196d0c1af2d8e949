package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// DefaultReconnectDelay is the pause between socket sessions.
const DefaultReconnectDelay = 5 * time.Second

// Connector is the part of the platform the listener talks to.
type Connector interface {
	OpenConnection(ctx context.Context) (string, error)
	CompleteFunction(ctx context.Context, executionID string, outputs domain.FunctionOutputs) error
	FailFunction(ctx context.Context, executionID, message string) error
}

// Functions runs the bot's functions.
type Functions interface {
	Configure(ctx context.Context, req *domain.ConfigureRequest) (*domain.ConfigureResponse, error)
	QuickReply(ctx context.Context, req *domain.QuickReplyRequest) (*domain.FunctionResponse, error)
	Discuss(ctx context.Context, req *domain.DiscussRequest) (*domain.FunctionResponse, error)
	Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error)
	Answer(ctx context.Context, req *domain.AnswerRequest) (*domain.FunctionResponse, error)
}

// Listener keeps a socket-mode session open and dispatches function
// executions to Functions.
type Listener struct {
	connector      Connector
	functions      Functions
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	logger         logrus.FieldLogger

	wg sync.WaitGroup
}

// NewListener creates a listener.
func NewListener(connector Connector, functions Functions, logger logrus.FieldLogger) *Listener {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Listener{
		connector:      connector,
		functions:      functions,
		dialer:         websocket.DefaultDialer,
		reconnectDelay: DefaultReconnectDelay,
		logger:         logger.WithField("component", "socket"),
	}
}

// SetReconnectDelay overrides DefaultReconnectDelay.
func (l *Listener) SetReconnectDelay(d time.Duration) {
	l.reconnectDelay = d
}

// Run opens sessions until ctx is cancelled, then waits for in-flight
// executions to finish.
func (l *Listener) Run(ctx context.Context) error {
	defer l.wg.Wait()

	for {
		if err := l.session(ctx); err != nil && ctx.Err() == nil {
			l.logger.WithError(err).Warn("socket session ended")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.reconnectDelay):
		}
	}
}

// session runs one connection. It returns nil when the platform asked to
// disconnect.
func (l *Listener) session(ctx context.Context) error {
	url, err := l.connector.OpenConnection(ctx)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	conn, _, err := l.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var envelope Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			l.logger.WithError(err).Warn("dropping malformed envelope")
			continue
		}

		if envelope.EnvelopeID != "" {
			if err := conn.WriteJSON(Ack{EnvelopeID: envelope.EnvelopeID}); err != nil {
				return fmt.Errorf("write ack: %w", err)
			}
		}

		switch envelope.Type {
		case TypeHello:
			l.logger.Info("socket connected")
		case TypeDisconnect:
			l.logger.WithField("reason", envelope.Reason).Info("socket disconnect requested")
			return nil
		case TypeEventsAPI:
			var payload EventsAPIPayload
			if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
				l.logger.WithError(err).Warn("dropping malformed events_api payload")
				continue
			}
			if payload.Event.Type != EventFunctionExecuted {
				continue
			}
			l.wg.Add(1)
			go func(event FunctionExecuted) {
				defer l.wg.Done()
				l.execute(ctx, event)
			}(payload.Event)
		default:
			l.logger.WithField("type", envelope.Type).Debug("ignoring envelope")
		}
	}
}

// execute runs one function and reports the result to the platform.
func (l *Listener) execute(ctx context.Context, event FunctionExecuted) {
	logger := l.logger.WithFields(logrus.Fields{
		"callback_id":  event.Function.CallbackID,
		"execution_id": event.FunctionExecutionID,
	})

	outputs, err := l.dispatch(ctx, event)
	if err != nil {
		logger.WithError(err).Warn("function failed")
		if err := l.connector.FailFunction(ctx, event.FunctionExecutionID, err.Error()); err != nil {
			logger.WithError(err).Error("failed to report function error")
		}
		return
	}
	if err := l.connector.CompleteFunction(ctx, event.FunctionExecutionID, outputs); err != nil {
		logger.WithError(err).Error("failed to report function completion")
	}
}

var errUnknownFunction = errors.New("unknown function")

func (l *Listener) dispatch(ctx context.Context, event FunctionExecuted) (domain.FunctionOutputs, error) {
	switch event.Function.CallbackID {
	case CallbackConfigure:
		var req domain.ConfigureRequest
		if err := decodeInputs(event.Inputs, &req); err != nil {
			return domain.FunctionOutputs{}, err
		}
		resp, err := l.functions.Configure(ctx, &req)
		if err != nil {
			return domain.FunctionOutputs{}, err
		}
		return domain.FunctionOutputs{Answer: resp.Message}, nil

	case CallbackQuickReply:
		var req domain.QuickReplyRequest
		if err := decodeInputs(event.Inputs, &req); err != nil {
			return domain.FunctionOutputs{}, err
		}
		resp, err := l.functions.QuickReply(ctx, &req)
		if err != nil {
			return domain.FunctionOutputs{}, err
		}
		return resp.Outputs, nil

	case CallbackDiscuss:
		var req domain.DiscussRequest
		if err := decodeInputs(event.Inputs, &req); err != nil {
			return domain.FunctionOutputs{}, err
		}
		resp, err := l.functions.Discuss(ctx, &req)
		if err != nil {
			return domain.FunctionOutputs{}, err
		}
		return resp.Outputs, nil

	case CallbackAsk:
		var req domain.AskRequest
		if err := decodeInputs(event.Inputs, &req); err != nil {
			return domain.FunctionOutputs{}, err
		}
		resp, err := l.functions.Ask(ctx, &req)
		if err != nil {
			return domain.FunctionOutputs{}, err
		}
		return domain.FunctionOutputs{Answer: resp.Message}, nil

	case CallbackAnswer:
		var req domain.AnswerRequest
		if err := decodeInputs(event.Inputs, &req); err != nil {
			return domain.FunctionOutputs{}, err
		}
		resp, err := l.functions.Answer(ctx, &req)
		if err != nil {
			return domain.FunctionOutputs{}, err
		}
		return resp.Outputs, nil

	default:
		return domain.FunctionOutputs{}, fmt.Errorf("%w: %q", errUnknownFunction, event.Function.CallbackID)
	}
}

func decodeInputs(inputs json.RawMessage, out interface{}) error {
	if len(inputs) == 0 {
		return nil
	}
	if err := json.Unmarshal(inputs, out); err != nil {
		return fmt.Errorf("invalid function inputs: %w", err)
	}
	return nil
}
