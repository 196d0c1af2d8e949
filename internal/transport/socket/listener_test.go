package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
	"github.com/xiaot623/gogo/askbot/internal/adapter/platform/platformtest"
	"github.com/xiaot623/gogo/askbot/internal/domain"
)

type fakeFunctions struct {
	mu        sync.Mutex
	questions []string
	err       error
}

func (f *fakeFunctions) Configure(ctx context.Context, req *domain.ConfigureRequest) (*domain.ConfigureResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ConfigureResponse{Message: "configured " + strings.Join(req.ChannelIDs, ",")}, nil
}

func (f *fakeFunctions) QuickReply(ctx context.Context, req *domain.QuickReplyRequest) (*domain.FunctionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.questions = append(f.questions, req.Question)
	f.mu.Unlock()
	return &domain.FunctionResponse{Outputs: domain.FunctionOutputs{Answer: "4"}}, nil
}

func (f *fakeFunctions) Discuss(ctx context.Context, req *domain.DiscussRequest) (*domain.FunctionResponse, error) {
	return &domain.FunctionResponse{Skipped: true}, nil
}

func (f *fakeFunctions) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AskResponse{Message: "asked in " + req.ChannelID, ChannelID: req.ChannelID}, nil
}

func (f *fakeFunctions) Answer(ctx context.Context, req *domain.AnswerRequest) (*domain.FunctionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.questions = append(f.questions, req.Question)
	f.mu.Unlock()
	return &domain.FunctionResponse{Outputs: domain.FunctionOutputs{Answer: "answered in " + req.ThreadTS}}, nil
}

// socketServer accepts socket-mode connections and sends envelopes to each
// one. Acks read from clients are forwarded to acks.
type socketServer struct {
	*httptest.Server
	connections atomic.Int32
	acks        chan Ack
}

func newSocketServer(t *testing.T, envelopes ...Envelope) *socketServer {
	t.Helper()
	s := &socketServer{acks: make(chan Ack, 16)}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		s.connections.Add(1)

		for _, envelope := range envelopes {
			if err := conn.WriteJSON(envelope); err != nil {
				return
			}
		}
		for {
			var ack Ack
			if err := conn.ReadJSON(&ack); err != nil {
				return
			}
			select {
			case s.acks <- ack:
			default:
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *socketServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func functionEnvelope(t *testing.T, id, callbackID string, inputs interface{}) Envelope {
	t.Helper()
	rawInputs, err := json.Marshal(inputs)
	require.NoError(t, err)
	payload, err := json.Marshal(EventsAPIPayload{Event: FunctionExecuted{
		Type:                EventFunctionExecuted,
		Function:            FunctionRef{CallbackID: callbackID},
		Inputs:              rawInputs,
		FunctionExecutionID: "Fx" + id,
	}})
	require.NoError(t, err)
	return Envelope{EnvelopeID: id, Type: TypeEventsAPI, Payload: payload}
}

func startListener(t *testing.T, sockets *socketServer, functions Functions) (*platformtest.Server, func()) {
	t.Helper()
	api := platformtest.NewServer(t)
	api.SocketURL = sockets.wsURL()

	logger, _ := test.NewNullLogger()
	client := platform.NewClient(api.URL, "xoxb-test", "xapp-test", logger)
	listener := NewListener(client, functions, logger)
	listener.SetReconnectDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("listener did not stop")
		}
	}
	return api, stop
}

func TestListenerAcksAndCompletesQuickReply(t *testing.T) {
	functions := &fakeFunctions{}
	sockets := newSocketServer(t,
		Envelope{Type: TypeHello},
		functionEnvelope(t, "e1", CallbackQuickReply, domain.QuickReplyRequest{ChannelID: "C1", UserID: "U1", Question: "2+2?"}),
	)
	api, stop := startListener(t, sockets, functions)
	defer stop()

	select {
	case ack := <-sockets.acks:
		assert.Equal(t, "e1", ack.EnvelopeID)
	case <-time.After(5 * time.Second):
		t.Fatal("no ack received")
	}

	require.Eventually(t, func() bool { return len(api.Completions()) == 1 }, 5*time.Second, 10*time.Millisecond)
	completion := api.Completions()[0]
	assert.True(t, completion.Success)
	assert.Equal(t, "Fxe1", completion.ExecutionID)
	assert.Equal(t, "4", completion.Outputs.Answer)

	functions.mu.Lock()
	defer functions.mu.Unlock()
	assert.Equal(t, []string{"2+2?"}, functions.questions)
}

func TestListenerConfigureOutputsMessage(t *testing.T) {
	sockets := newSocketServer(t,
		functionEnvelope(t, "e1", CallbackConfigure, domain.ConfigureRequest{
			QuickReplyWorkflowID: "quick_reply", DiscussWorkflowID: "discuss", ChannelIDs: []string{"C1", "C2"},
		}),
	)
	api, stop := startListener(t, sockets, &fakeFunctions{})
	defer stop()

	require.Eventually(t, func() bool { return len(api.Completions()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "configured C1,C2", api.Completions()[0].Outputs.Answer)
}

func TestListenerDispatchesAskAndAnswer(t *testing.T) {
	functions := &fakeFunctions{}
	sockets := newSocketServer(t,
		functionEnvelope(t, "e1", CallbackAsk, domain.AskRequest{ChannelID: "C1", UserID: "U1", Question: "why?"}),
		functionEnvelope(t, "e2", CallbackAnswer, domain.AnswerRequest{ChannelID: "C1", ThreadTS: "1.0", UserID: "U1", Question: "why?"}),
	)
	api, stop := startListener(t, sockets, functions)
	defer stop()

	require.Eventually(t, func() bool { return len(api.Completions()) == 2 }, 5*time.Second, 10*time.Millisecond)
	answers := map[string]string{}
	for _, completion := range api.Completions() {
		assert.True(t, completion.Success)
		answers[completion.ExecutionID] = completion.Outputs.Answer
	}
	assert.Equal(t, "asked in C1", answers["Fxe1"])
	assert.Equal(t, "answered in 1.0", answers["Fxe2"])

	functions.mu.Lock()
	defer functions.mu.Unlock()
	assert.Equal(t, []string{"why?"}, functions.questions)
}

func TestListenerReportsFunctionErrors(t *testing.T) {
	sockets := newSocketServer(t,
		functionEnvelope(t, "e1", CallbackQuickReply, domain.QuickReplyRequest{ChannelID: "C1", UserID: "U1"}),
		functionEnvelope(t, "e2", "unknown_function", map[string]string{}),
	)
	api, stop := startListener(t, sockets, &fakeFunctions{err: errors.New("Failed to post ChatGPT's reply due to channel_not_found")})
	defer stop()

	require.Eventually(t, func() bool { return len(api.Completions()) == 2 }, 5*time.Second, 10*time.Millisecond)
	messages := map[string]string{}
	for _, completion := range api.Completions() {
		assert.False(t, completion.Success)
		messages[completion.ExecutionID] = completion.Error
	}
	assert.Equal(t, "Failed to post ChatGPT's reply due to channel_not_found", messages["Fxe1"])
	assert.Contains(t, messages["Fxe2"], "unknown function")
}

func TestListenerReconnectsAfterDisconnect(t *testing.T) {
	sockets := newSocketServer(t, Envelope{Type: TypeDisconnect, Reason: "refresh_requested"})
	api, stop := startListener(t, sockets, &fakeFunctions{})
	defer stop()

	require.Eventually(t, func() bool { return sockets.connections.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	opens := 0
	for _, call := range api.Calls() {
		if call == "apps.connections.open" {
			opens++
		}
	}
	assert.GreaterOrEqual(t, opens, 2)
}

func TestListenerSkipsOtherEvents(t *testing.T) {
	payload, err := json.Marshal(map[string]interface{}{"event": map[string]string{"type": "app_home_opened"}})
	require.NoError(t, err)
	sockets := newSocketServer(t, Envelope{EnvelopeID: "e1", Type: TypeEventsAPI, Payload: payload})
	api, stop := startListener(t, sockets, &fakeFunctions{})
	defer stop()

	select {
	case ack := <-sockets.acks:
		assert.Equal(t, "e1", ack.EnvelopeID)
	case <-time.After(5 * time.Second):
		t.Fatal("no ack received")
	}
	assert.Empty(t, api.Completions())
}
