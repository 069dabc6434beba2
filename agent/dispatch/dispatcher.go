// Package dispatch runs the bounded observe/act loop that turns free text
// into registry invocations and a final natural-language answer.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

const (
	// ApologyMessage is returned whenever the reasoning capability fails or
	// produces nothing usable. It never exposes the underlying error.
	ApologyMessage = "Sorry, I couldn't understand your query or it may be invalid. Try rephrasing or asking something else."

	defaultMaxSteps = 6

	forceAnswerNudge = "Do not request any more operations. Answer the question now using only the information gathered so far."
)

type Config struct {
	// SystemPrompt frames the model's role and the catalogue conventions.
	SystemPrompt string
	// MaxSteps bounds the select/invoke/observe loop for one turn.
	MaxSteps int
}

// Dispatcher presents the full operation catalogue to a tool-calling chat
// model and iterates until the model emits a final answer or the step
// budget runs out.
type Dispatcher struct {
	model    einomodel.ToolCallingChatModel
	catalog  contractx.Catalog
	system   string
	maxSteps int
}

var _ contractx.Dispatcher = (*Dispatcher)(nil)

func New(chatModel einomodel.ToolCallingChatModel, catalog contractx.Catalog, cfg Config) (*Dispatcher, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}

	// Every registry entry is bound, fallback included. The intent index
	// never pre-filters this set.
	bound, err := chatModel.WithTools(catalog.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind catalog tools: %v", contractx.ErrModelInvoke, err)
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	return &Dispatcher{
		model:    bound,
		catalog:  catalog,
		system:   strings.TrimSpace(cfg.SystemPrompt),
		maxSteps: maxSteps,
	}, nil
}

// Answer runs one dispatch turn. The full prior turn sequence is always
// included so follow-up questions can resolve against earlier context.
// Model failures are absorbed into ApologyMessage; the returned error is
// reserved for invalid input.
func (d *Dispatcher) Answer(ctx context.Context, history []contractx.Turn, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text is empty", contractx.ErrValidation)
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	if d.system != "" {
		msgs = append(msgs, schema.SystemMessage(d.system))
	}
	for _, turn := range history {
		switch turn.Role {
		case contractx.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		}
	}
	msgs = append(msgs, schema.UserMessage(text))

	for step := 0; step < d.maxSteps; step++ {
		out, err := d.model.Generate(ctx, msgs)
		if err != nil {
			log.Error().Err(err).Int("step", step).Msg("model generate failed")
			return ApologyMessage, nil
		}

		dec, err := parseDecision(out)
		if err != nil {
			// Schema violations are observations the model can recover
			// from, not crashes.
			log.Warn().Err(err).Int("step", step).Msg("unparseable model decision")
			msgs = append(msgs, schema.UserMessage(
				"Your last response was neither an operation call nor a final answer. "+
					"Call one of the available operations or answer the question directly."))
			continue
		}

		if dec.kind == decisionFinal {
			return dec.answer, nil
		}

		msgs = append(msgs, out)
		for _, call := range dec.calls {
			result, fatal := d.invoke(ctx, call)
			if fatal != nil {
				log.Error().Err(fatal).Str("operation", call.Function.Name).Msg("operation failed")
				return ApologyMessage, nil
			}
			msgs = append(msgs, schema.ToolMessage(renderResult(result), call.ID))
		}
	}

	// Budget exhausted: one forced, tool-free answer, then give up.
	msgs = append(msgs, schema.UserMessage(forceAnswerNudge))
	out, err := d.model.Generate(ctx, msgs)
	if err != nil {
		log.Error().Err(err).Msg("forced final answer failed")
		return ApologyMessage, nil
	}
	if reply := strings.TrimSpace(out.Content); reply != "" {
		return reply, nil
	}
	return ApologyMessage, nil
}

// invoke executes one selected catalog entry. Argument problems come back
// as an ActionResult observation; anything else (store unreachable, driver
// failure) is fatal for the turn.
func (d *Dispatcher) invoke(ctx context.Context, call schema.ToolCall) (contractx.ActionResult, error) {
	name := call.Function.Name
	res := contractx.ActionResult{Operation: name}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			res.Error = fmt.Sprintf("arguments are not valid JSON: %v", err)
			return res, nil
		}
	}

	log.Debug().Str("operation", name).Interface("args", args).Msg("invoking operation")

	result, err := d.catalog.Invoke(ctx, name, args)
	if err != nil {
		if errors.Is(err, contractx.ErrInvalidArgument) {
			res.Error = err.Error()
			return res, nil
		}
		return res, err
	}
	res.Result = result
	return res, nil
}

func renderResult(res contractx.ActionResult) string {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"operation":%q,"error":"result not serializable"}`, res.Operation)
	}
	return string(payload)
}
