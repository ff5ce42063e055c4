package agent

import (
	"fmt"

	calloutErrors "github.com/fionafan/callout/internal/errors"
	"github.com/fionafan/callout/internal/model/contract"
)

// Conversation is the append-only transcript for one run. Messages are
// never deleted or reordered; the iteration ceiling bounds its growth.
type Conversation struct {
	messages []contract.Message
	pending  map[string]struct{}
	seeded   bool
}

func NewConversation() *Conversation {
	return &Conversation{
		pending: make(map[string]struct{}),
	}
}

// Seed installs the opening system and user messages. A conversation
// accepts exactly one seed; reusing one across runs is a controller
// defect and is rejected loudly.
func (c *Conversation) Seed(systemPrompt, userPrompt string) error {
	if c.seeded {
		return calloutErrors.ErrConversationSealed
	}
	c.seeded = true
	c.messages = append(c.messages,
		contract.Message{Role: contract.RoleSystem, Content: systemPrompt},
		contract.Message{Role: contract.RoleUser, Content: userPrompt},
	)
	return nil
}

// AppendUser adds a follow-up instruction, such as the wrap-up request
// issued when the budget runs out.
func (c *Conversation) AppendUser(content string) error {
	if err := c.appendable(); err != nil {
		return err
	}
	c.messages = append(c.messages, contract.Message{
		Role:    contract.RoleUser,
		Content: content,
	})
	return nil
}

// AppendAssistant records the model's turn. Any tool calls it carries
// become the outstanding set that must all be answered before the
// conversation can move on.
func (c *Conversation) AppendAssistant(content string, toolCalls []*contract.ToolCall) error {
	if err := c.appendable(); err != nil {
		return err
	}
	for _, call := range toolCalls {
		c.pending[call.ID] = struct{}{}
	}
	c.messages = append(c.messages, contract.Message{
		Role:      contract.RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
	return nil
}

// AppendToolResult answers one outstanding tool call.
func (c *Conversation) AppendToolResult(callID, content string) error {
	if !c.seeded {
		return fmt.Errorf("conversation not seeded: %w", calloutErrors.ErrInternal)
	}
	if _, ok := c.pending[callID]; !ok {
		return fmt.Errorf("call %q: %w", callID, calloutErrors.ErrUnknownToolCall)
	}
	delete(c.pending, callID)
	c.messages = append(c.messages, contract.Message{
		Role:       contract.RoleTool,
		Content:    content,
		ToolCallID: callID,
	})
	return nil
}

// PendingToolCalls reports how many tool calls still await results.
func (c *Conversation) PendingToolCalls() int {
	return len(c.pending)
}

// Snapshot returns a copy of the transcript for a completion request.
func (c *Conversation) Snapshot() []contract.Message {
	out := make([]contract.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

func (c *Conversation) appendable() error {
	if !c.seeded {
		return fmt.Errorf("conversation not seeded: %w", calloutErrors.ErrInternal)
	}
	if len(c.pending) > 0 {
		return fmt.Errorf("%d tool calls still unanswered: %w", len(c.pending), calloutErrors.ErrConflict)
	}
	return nil
}
