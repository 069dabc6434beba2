package dispatch

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

type decisionKind int

const (
	decisionInvoke decisionKind = iota
	decisionFinal
)

// decision is the strict tagged union parsed from a model message: either
// invoke one or more catalog entries, or finish with an answer. Anything
// else is a schema violation fed back into the loop.
type decision struct {
	kind   decisionKind
	calls  []schema.ToolCall
	answer string
}

func parseDecision(msg *schema.Message) (decision, error) {
	if msg == nil {
		return decision{}, fmt.Errorf("%w: nil message", contractx.ErrSchemaViolation)
	}

	if len(msg.ToolCalls) > 0 {
		for _, call := range msg.ToolCalls {
			if strings.TrimSpace(call.Function.Name) == "" {
				return decision{}, fmt.Errorf("%w: tool call with empty name", contractx.ErrSchemaViolation)
			}
		}
		return decision{kind: decisionInvoke, calls: msg.ToolCalls}, nil
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return decision{}, fmt.Errorf("%w: empty message with no tool calls", contractx.ErrSchemaViolation)
	}
	return decision{kind: decisionFinal, answer: answer}, nil
}
