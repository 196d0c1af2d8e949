package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/xiaot623/gogo/askbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/askbot/internal/adapter/platform"
	"github.com/xiaot623/gogo/askbot/internal/adapter/platform/platformtest"
	"github.com/xiaot623/gogo/askbot/internal/config"
	"github.com/xiaot623/gogo/askbot/internal/domain"
	"github.com/xiaot623/gogo/askbot/internal/repository/storetest"
	"github.com/xiaot623/gogo/askbot/internal/service"
	"github.com/xiaot623/gogo/askbot/internal/tokens"
	"github.com/xiaot623/gogo/askbot/policy"
)

type wordEncoder struct{}

func (wordEncoder) Tokenize(text string) []int {
	return make([]int, len(strings.Fields(text)))
}

func newTestHandler(t *testing.T) (*Handler, *platformtest.Server) {
	t.Helper()

	api := platformtest.NewServer(t)
	logger, _ := test.NewNullLogger()
	client := platform.NewClient(api.URL, "xoxb-test", "", logger)

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	cfg := &config.Config{
		OpenAIAPIKey:    "sk-test",
		OpenAIModel:     "gpt-3.5-turbo",
		OpenAITimeout:   5 * time.Second,
		BlockedChannels: []string{"CBLOCKED"},
	}
	svc := service.New(storetest.NewSQLiteStore(t), client, llm.NewMockClient(), tokens.NewCounter(wordEncoder{}), cfg, policyEngine, logger)
	return NewHandler(svc), api
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newJSONContext(http.MethodGet, "/health", "")

	if err := h.Health(c); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestConfigure(t *testing.T) {
	h, api := newTestHandler(t)
	body := `{"quick_reply_workflow_id":"quick_reply","discuss_workflow_id":"discuss","channel_ids":["C1","C2"]}`
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/configure", body)

	if err := h.Configure(c); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.ConfigureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != service.ConfiguredMessage {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	triggers := api.Triggers()
	if len(triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(triggers))
	}
	for _, trigger := range triggers {
		if len(trigger.ChannelIDs) != 2 {
			t.Fatalf("trigger %s has channels %v", trigger.ID, trigger.ChannelIDs)
		}
	}
}

func TestConfigureMissingWorkflows(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/configure", `{"channel_ids":["C1"]}`)

	if err := h.Configure(c); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestConfigureBlockedChannel(t *testing.T) {
	h, api := newTestHandler(t)
	body := `{"quick_reply_workflow_id":"quick_reply","discuss_workflow_id":"discuss","channel_ids":["C1","CBLOCKED"]}`
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/configure", body)

	if err := h.Configure(c); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if len(api.Triggers()) != 0 {
		t.Fatal("blocked configuration must not touch triggers")
	}
}

func TestConfigureDuplicateTriggers(t *testing.T) {
	h, api := newTestHandler(t)
	api.SetTriggers([]domain.SubscriptionRecord{
		{ID: "Ft1", WorkflowID: "quick_reply", EventType: domain.TriggerEventAppMentioned},
		{ID: "Ft2", WorkflowID: "quick_reply", EventType: domain.TriggerEventAppMentioned},
	})
	body := `{"quick_reply_workflow_id":"quick_reply","discuss_workflow_id":"discuss","channel_ids":["C1"]}`
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/configure", body)

	if err := h.Configure(c); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestCurrentChannels(t *testing.T) {
	h, api := newTestHandler(t)
	api.SetTriggers([]domain.SubscriptionRecord{
		{ID: "Ft1", WorkflowID: "quick_reply", EventType: domain.TriggerEventAppMentioned, ChannelIDs: []string{"C9"}},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/functions/configure?quick_reply_workflow_id=quick_reply", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CurrentChannels(c); err != nil {
		t.Fatalf("CurrentChannels failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp domain.ChannelsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.ChannelIDs) != 1 || resp.ChannelIDs[0] != "C9" {
		t.Fatalf("unexpected channels %v", resp.ChannelIDs)
	}
}

func TestQuickReply(t *testing.T) {
	h, api := newTestHandler(t)
	body := `{"channel_id":"C1","user_id":"U1","question":"<@UBOT> what is 2+2?"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/quick_reply", body)

	if err := h.QuickReply(c); err != nil {
		t.Fatalf("QuickReply failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	posted := api.Posted()
	if len(posted) != 1 {
		t.Fatalf("expected 1 posted message, got %d", len(posted))
	}
	if !strings.HasPrefix(posted[0].Text, "<@U1> ") {
		t.Fatalf("reply does not mention the asker: %q", posted[0].Text)
	}
	if posted[0].Metadata == nil || posted[0].Metadata.EventType != domain.ConvoEventType {
		t.Fatalf("reply is missing discussion metadata: %+v", posted[0].Metadata)
	}
}

func TestQuickReplyMissingChannel(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/quick_reply", `{"user_id":"U1","question":"hi"}`)

	if err := h.QuickReply(c); err != nil {
		t.Fatalf("QuickReply failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestDiscussOutsideThreadIsSkipped(t *testing.T) {
	h, api := newTestHandler(t)
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/discuss", `{"channel_id":"C1","message_ts":"1.0","user_id":"U1"}`)

	if err := h.Discuss(c); err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp domain.FunctionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Skipped {
		t.Fatal("expected the discussion to be skipped")
	}
	if len(api.Calls()) != 0 {
		t.Fatalf("expected no platform calls, got %v", api.Calls())
	}
}

func TestDiscussReplyInThread(t *testing.T) {
	h, api := newTestHandler(t)
	api.Replies["1.0"] = []domain.ThreadMessage{
		{User: "UBOT", Text: "<@U1> 4", Timestamp: "1.0", Metadata: domain.QuestionMetadata("<@UBOT> what is 2+2?")},
		{User: "U1", Text: "and 3+3?", Timestamp: "2.0"},
	}
	body := `{"channel_id":"C1","message_ts":"2.0","thread_ts":"1.0","user_id":"U1"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/discuss", body)

	if err := h.Discuss(c); err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	posted := api.Posted()
	if len(posted) != 1 {
		t.Fatalf("expected 1 posted message, got %d", len(posted))
	}
	if posted[0].ThreadTS != "1.0" {
		t.Fatalf("expected reply in thread 1.0, got %q", posted[0].ThreadTS)
	}
	if !strings.Contains(posted[0].Text, "and 3+3?") {
		t.Fatalf("expected the mock answer to echo the last message, got %q", posted[0].Text)
	}
}

func TestAsk(t *testing.T) {
	h, api := newTestHandler(t)
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/ask", `{"channel_id":"C1","user_id":"U1","question":"what is 2+2?"}`)

	if err := h.Ask(c); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ChannelID != "C1" || resp.MessageTS == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	triggers := api.Triggers()
	if len(triggers) != 1 || triggers[0].EventType != domain.TriggerEventMessageMetadataPosted {
		t.Fatalf("expected one message_metadata_posted trigger, got %+v", triggers)
	}
	posted := api.Posted()
	if len(posted) != 1 {
		t.Fatalf("expected 1 posted message, got %d", len(posted))
	}
	if posted[0].Metadata == nil || posted[0].Metadata.EventType != domain.QuestionEventType {
		t.Fatalf("question is missing its metadata: %+v", posted[0].Metadata)
	}
}

func TestAskBlockedChannel(t *testing.T) {
	h, api := newTestHandler(t)
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/ask", `{"channel_id":"CBLOCKED","user_id":"U1","question":"hi"}`)

	if err := h.Ask(c); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if len(api.Calls()) != 0 {
		t.Fatalf("expected no platform calls, got %v", api.Calls())
	}
}

func TestAnswer(t *testing.T) {
	h, api := newTestHandler(t)
	body := `{"channel_id":"C1","thread_ts":"1.0","user_id":"U1","question":"what is 2+2?"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/answer", body)

	if err := h.Answer(c); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.FunctionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Outputs.Answer, "what is 2+2?") {
		t.Fatalf("expected the mock answer to echo the question, got %q", resp.Outputs.Answer)
	}

	posted := api.Posted()
	if len(posted) != 1 || posted[0].ThreadTS != "1.0" {
		t.Fatalf("expected one reply in thread 1.0, got %+v", posted)
	}
}

func TestAnswerMissingQuestion(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newJSONContext(http.MethodPost, "/v1/functions/answer", `{"channel_id":"C1","thread_ts":"1.0"}`)

	if err := h.Answer(c); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"blocked", service.ErrBlockedByPolicy, http.StatusForbidden},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
