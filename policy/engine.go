package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions a policy can return.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Actions the service asks the policy about.
const (
	ActionConfigure  = "configure"
	ActionQuickReply = "quick_reply"
	ActionDiscuss    = "discuss"
	ActionAsk        = "ask"
	ActionAnswer     = "answer"
)

// Input is the document a policy is evaluated against.
type Input struct {
	Action          string   `json:"action"`
	ChannelID       string   `json:"channel_id,omitempty"`
	ChannelIDs      []string `json:"channel_ids,omitempty"`
	UserID          string   `json:"user_id,omitempty"`
	BlockedChannels []string `json:"blocked_channels"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
// The module must be `package askbot` and define `decision`.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.askbot.decision"),
		rego.Module("askbot.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// LoadEngine builds an engine from the policy file at path, or from
// DefaultPolicy when path is empty.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Evaluate checks the policy.
// Returns: decision (allow, block), reason (optional), error.
// A policy may return either a string or an object {decision, reason}.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "default", nil
	}

	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return val, "", nil
	case map[string]interface{}:
		decision, _ := val["decision"].(string)
		reason, _ := val["reason"].(string)
		if decision == "" {
			return DecisionAllow, "missing decision", nil
		}
		return decision, reason, nil
	default:
		return DecisionAllow, "unexpected return type", nil
	}
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package askbot

import rego.v1

default decision := "allow"

# The bot never answers in a blocked channel.
decision := "block" if {
	input.channel_id in input.blocked_channels
}

# Configuration may not enable a blocked channel.
decision := "block" if {
	input.action == "configure"
	some channel in input.channel_ids
	channel in input.blocked_channels
}
`
