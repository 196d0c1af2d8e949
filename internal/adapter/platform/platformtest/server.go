// Package platformtest provides an in-memory messaging platform Web API
// for tests.
package platformtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/xiaot623/gogo/askbot/internal/domain"
)

// Posted is a message received by chat.postMessage.
type Posted struct {
	Channel  string                  `json:"channel"`
	Text     string                  `json:"text"`
	ThreadTS string                  `json:"thread_ts,omitempty"`
	Metadata *domain.MessageMetadata `json:"metadata,omitempty"`
}

// Completion is a functions.completeSuccess or functions.completeError call.
type Completion struct {
	ExecutionID string                 `json:"function_execution_id"`
	Outputs     domain.FunctionOutputs `json:"outputs"`
	Error       string                 `json:"error,omitempty"`
	Success     bool                   `json:"-"`
}

// Server is a fake Web API. Exported fields may be set before the first
// request; use the accessor methods afterwards.
type Server struct {
	*httptest.Server

	BotUserID  string
	SocketURL  string
	JoinErrors map[string]string
	Replies    map[string][]domain.ThreadMessage

	mu          sync.Mutex
	calls       []string
	triggers    []domain.SubscriptionRecord
	posted      []Posted
	completions []Completion
}

// NewServer starts a fake Web API closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		BotUserID:  "UBOT",
		JoinErrors: map[string]string{},
		Replies:    map[string][]domain.ThreadMessage{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetTriggers replaces the trigger listing.
func (s *Server) SetTriggers(records []domain.SubscriptionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append([]domain.SubscriptionRecord(nil), records...)
}

// Triggers returns the current triggers.
func (s *Server) Triggers() []domain.SubscriptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SubscriptionRecord(nil), s.triggers...)
}

// Calls returns the API methods called so far, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Posted returns the messages posted so far.
func (s *Server) Posted() []Posted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Posted(nil), s.posted...)
}

// Completions returns the function completions reported so far.
func (s *Server) Completions() []Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Completion(nil), s.completions...)
}

type triggerBody struct {
	TriggerID string `json:"trigger_id"`
	Name      string `json:"name"`
	Workflow  string `json:"workflow"`
	Event     struct {
		EventType  string   `json:"event_type"`
		ChannelIDs []string `json:"channel_ids"`
	} `json:"event"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)

	switch method {
	case "auth.test":
		writeJSON(w, map[string]interface{}{"ok": true, "user_id": s.BotUserID, "bot_id": "B1"})

	case "apps.connections.open":
		writeJSON(w, map[string]interface{}{"ok": true, "url": s.SocketURL})

	case "workflows.triggers.list":
		triggers := make([]map[string]interface{}, 0, len(s.triggers))
		for _, record := range s.triggers {
			triggers = append(triggers, map[string]interface{}{
				"id":          record.ID,
				"type":        "event",
				"name":        record.Name,
				"workflow":    map[string]string{"callback_id": record.WorkflowID},
				"event_type":  string(record.EventType),
				"channel_ids": record.ChannelIDs,
			})
		}
		writeJSON(w, map[string]interface{}{"ok": true, "triggers": triggers})

	case "workflows.triggers.create", "workflows.triggers.update":
		var body triggerBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, map[string]interface{}{"ok": false, "error": "invalid_json"})
			return
		}
		record := domain.SubscriptionRecord{
			ID:         body.TriggerID,
			Name:       body.Name,
			WorkflowID: strings.TrimPrefix(body.Workflow, "#/workflows/"),
			EventType:  domain.TriggerEventType(body.Event.EventType),
			ChannelIDs: body.Event.ChannelIDs,
		}
		if method == "workflows.triggers.create" {
			record.ID = fmt.Sprintf("Ft%d", len(s.triggers)+1)
			s.triggers = append(s.triggers, record)
		} else {
			found := false
			for i := range s.triggers {
				if s.triggers[i].ID == record.ID {
					s.triggers[i] = record
					found = true
				}
			}
			if !found {
				writeJSON(w, map[string]interface{}{"ok": false, "error": "trigger_not_found"})
				return
			}
		}
		writeJSON(w, map[string]interface{}{"ok": true, "trigger": map[string]string{"id": record.ID}})

	case "conversations.join":
		var body struct {
			Channel string `json:"channel"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if code := s.JoinErrors[body.Channel]; code != "" {
			writeJSON(w, map[string]interface{}{"ok": false, "error": code})
			return
		}
		writeJSON(w, map[string]interface{}{"ok": true})

	case "conversations.replies":
		messages := s.Replies[r.URL.Query().Get("ts")]
		if messages == nil {
			messages = []domain.ThreadMessage{}
		}
		writeJSON(w, map[string]interface{}{"ok": true, "messages": messages})

	case "chat.postMessage":
		var body Posted
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, map[string]interface{}{"ok": false, "error": "invalid_json"})
			return
		}
		s.posted = append(s.posted, body)
		writeJSON(w, map[string]interface{}{"ok": true, "channel": body.Channel, "ts": fmt.Sprintf("%d.000000", len(s.posted))})

	case "functions.completeSuccess", "functions.completeError":
		var body Completion
		_ = json.NewDecoder(r.Body).Decode(&body)
		body.Success = method == "functions.completeSuccess"
		s.completions = append(s.completions, body)
		writeJSON(w, map[string]interface{}{"ok": true})

	default:
		writeJSON(w, map[string]interface{}{"ok": false, "error": "unknown_method"})
	}
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
