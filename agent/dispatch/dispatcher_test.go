package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

// scriptedModel replays a fixed sequence of responses and records every
// message list it was asked to complete.
type scriptedModel struct {
	responses []*schema.Message
	errs      []error
	seen      [][]*schema.Message
	tools     []*schema.ToolInfo
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.seen = append(m.seen, input)
	step := len(m.seen) - 1
	if step < len(m.errs) && m.errs[step] != nil {
		return nil, m.errs[step]
	}
	if step >= len(m.responses) {
		return nil, errors.New("script exhausted")
	}
	return m.responses[step], nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not scripted")
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	m.tools = tools
	return m, nil
}

// scriptedCatalog maps operation names to canned outcomes.
type scriptedCatalog struct {
	results map[string]any
	errs    map[string]error
	invoked []string
	args    []map[string]any
}

func (c *scriptedCatalog) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(c.results))
	for name := range c.results {
		infos = append(infos, &schema.ToolInfo{Name: name, Desc: name})
	}
	return infos
}

func (c *scriptedCatalog) Has(name string) bool {
	_, ok := c.results[name]
	return ok
}

func (c *scriptedCatalog) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	c.invoked = append(c.invoked, name)
	c.args = append(c.args, args)
	if err, ok := c.errs[name]; ok {
		return nil, err
	}
	res, ok := c.results[name]
	if !ok {
		return nil, contractx.ErrInvalidArgument
	}
	return res, nil
}

func toolCallMsg(name, arguments string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-1",
		Function: schema.FunctionCall{Name: name, Arguments: arguments},
	}})
}

func newTestDispatcher(t *testing.T, m *scriptedModel, c contractx.Catalog, maxSteps int) *Dispatcher {
	t.Helper()
	d, err := New(m, c, Config{SystemPrompt: "You answer questions about financial data.", MaxSteps: maxSteps})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func TestDirectFinalAnswer(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("The dataset has three collections.", nil),
	}}
	c := &scriptedCatalog{results: map[string]any{}}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "What does the dataset contain?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "The dataset has three collections." {
		t.Fatalf("reply = %q", reply)
	}
	if len(c.invoked) != 0 {
		t.Fatalf("no operation should run, invoked %v", c.invoked)
	}
}

func TestToolCallThenAnswer(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("get_account_limit", `{"account_id": 1001}`),
		schema.AssistantMessage("The limit of account 1001 is 9000.", nil),
	}}
	c := &scriptedCatalog{results: map[string]any{
		"get_account_limit": map[string]any{"account_id": 1001, "limit": 9000},
	}}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "What is the limit of account 1001?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "The limit of account 1001 is 9000." {
		t.Fatalf("reply = %q", reply)
	}

	if len(c.invoked) != 1 || c.invoked[0] != "get_account_limit" {
		t.Fatalf("invoked = %v, want one get_account_limit call", c.invoked)
	}
	if got := c.args[0]["account_id"]; got != float64(1001) {
		t.Fatalf("account_id arg = %v (%T), want JSON number 1001", got, got)
	}

	// The second completion must see the tool result as an observation.
	second := m.seen[1]
	last := second[len(second)-1]
	if last.Role != schema.Tool {
		t.Fatalf("last message role = %v, want tool", last.Role)
	}
	if !strings.Contains(last.Content, `"get_account_limit"`) || !strings.Contains(last.Content, "9000") {
		t.Fatalf("tool observation = %q", last.Content)
	}
}

func TestInvalidArgumentBecomesObservation(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("get_account_limit", `{"account_id": "abc"}`),
		toolCallMsg("get_account_limit", `{"account_id": 1001}`),
		schema.AssistantMessage("The limit is 9000.", nil),
	}}
	// First invocation fails validation, second succeeds.
	first := true
	c := &funcCatalog{
		infos: []*schema.ToolInfo{{Name: "get_account_limit", Desc: "limit"}},
		invoke: func(ctx context.Context, name string, args map[string]any) (any, error) {
			if first {
				first = false
				return nil, contractx.ErrInvalidArgument
			}
			return "ok", nil
		},
	}
	d := newTestDispatcher(t, m, c, 4)

	reply, err := d.Answer(context.Background(), nil, "limit of account abc?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "The limit is 9000." {
		t.Fatalf("reply = %q", reply)
	}

	// The failed attempt must have been fed back, not aborted the turn.
	second := m.seen[1]
	last := second[len(second)-1]
	if last.Role != schema.Tool || !strings.Contains(last.Content, "error") {
		t.Fatalf("expected an error observation, got role=%v content=%q", last.Role, last.Content)
	}
}

type funcCatalog struct {
	infos  []*schema.ToolInfo
	invoke func(ctx context.Context, name string, args map[string]any) (any, error)
}

func (f *funcCatalog) Infos() []*schema.ToolInfo { return f.infos }
func (f *funcCatalog) Has(name string) bool      { return true }
func (f *funcCatalog) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	return f.invoke(ctx, name, args)
}

func TestMalformedArgumentJSONBecomesObservation(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("get_account_limit", `{"account_id": `),
		schema.AssistantMessage("I could not read the account id.", nil),
	}}
	c := &scriptedCatalog{results: map[string]any{"get_account_limit": "ok"}}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "limit?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "I could not read the account id." {
		t.Fatalf("reply = %q", reply)
	}
	if len(c.invoked) != 0 {
		t.Fatalf("catalog must not run on malformed arguments, invoked %v", c.invoked)
	}
}

func TestStoreFailureIsFatalApology(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("get_account_limit", `{"account_id": 1}`),
	}}
	c := &scriptedCatalog{
		results: map[string]any{"get_account_limit": "ok"},
		errs:    map[string]error{"get_account_limit": errors.New("connection reset")},
	}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "limit of account 1?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != ApologyMessage {
		t.Fatalf("reply = %q, want apology", reply)
	}
}

func TestModelFailureIsApologyNotError(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{errs: []error{errors.New("rate limited")}}
	c := &scriptedCatalog{results: map[string]any{}}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "anything")
	if err != nil {
		t.Fatalf("Answer() error = %v, model failures must not surface", err)
	}
	if reply != ApologyMessage {
		t.Fatalf("reply = %q, want apology", reply)
	}
}

func TestEmptyTextRejected(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{}
	c := &scriptedCatalog{results: map[string]any{}}
	d := newTestDispatcher(t, m, c, 0)

	_, err := d.Answer(context.Background(), nil, "   ")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(m.seen) != 0 {
		t.Fatal("model must not be invoked for empty input")
	}
}

func TestEmptyDecisionGetsCorrectiveNudge(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("", nil),
		schema.AssistantMessage("Here is the answer.", nil),
	}}
	c := &scriptedCatalog{results: map[string]any{}}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "question")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "Here is the answer." {
		t.Fatalf("reply = %q", reply)
	}

	second := m.seen[1]
	last := second[len(second)-1]
	if last.Role != schema.User || !strings.Contains(last.Content, "operation") {
		t.Fatalf("expected corrective user message, got role=%v content=%q", last.Role, last.Content)
	}
}

func TestBudgetExhaustionForcesFinalAnswer(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("list_all_account_ids", `{}`),
		toolCallMsg("list_all_account_ids", `{}`),
		schema.AssistantMessage("There are two accounts.", nil),
	}}
	c := &scriptedCatalog{results: map[string]any{"list_all_account_ids": []int64{1, 2}}}
	d := newTestDispatcher(t, m, c, 2)

	reply, err := d.Answer(context.Background(), nil, "how many accounts?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != "There are two accounts." {
		t.Fatalf("reply = %q", reply)
	}

	// The third completion is the forced one and must carry the nudge.
	final := m.seen[2]
	last := final[len(final)-1]
	if last.Role != schema.User || !strings.Contains(last.Content, "Do not request any more operations") {
		t.Fatalf("expected forcing nudge, got role=%v content=%q", last.Role, last.Content)
	}
}

func TestHistoryCarriedIntoPrompt(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("Account 5 holds brokerage and derivatives.", nil),
	}}
	c := &scriptedCatalog{results: map[string]any{}}
	d := newTestDispatcher(t, m, c, 0)

	history := []contractx.Turn{
		{Role: contractx.RoleUser, Content: "What is the limit of account 5?"},
		{Role: contractx.RoleAssistant, Content: "The limit of account 5 is 9000."},
	}
	if _, err := d.Answer(context.Background(), history, "What products does it have?"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	prompt := m.seen[0]
	if prompt[0].Role != schema.System {
		t.Fatalf("first message role = %v, want system", prompt[0].Role)
	}
	if prompt[1].Content != "What is the limit of account 5?" || prompt[1].Role != schema.User {
		t.Fatalf("history user turn missing: %+v", prompt[1])
	}
	if prompt[2].Content != "The limit of account 5 is 9000." || prompt[2].Role != schema.Assistant {
		t.Fatalf("history assistant turn missing: %+v", prompt[2])
	}
	if prompt[3].Content != "What products does it have?" {
		t.Fatalf("current question missing: %+v", prompt[3])
	}
}

func TestFallbackMessageRelayedVerbatim(t *testing.T) {
	t.Parallel()

	fallback := "I'm sorry, I couldn't find an answer to your query. Try asking another question related to accounts, transactions, or customers."
	m := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("fallback_no_match", `{}`),
		schema.AssistantMessage(fallback, nil),
	}}
	c := &scriptedCatalog{results: map[string]any{"fallback_no_match": fallback}}
	d := newTestDispatcher(t, m, c, 0)

	reply, err := d.Answer(context.Background(), nil, "What's the best pizza topping?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if reply != fallback {
		t.Fatalf("reply = %q, want the fallback text verbatim", reply)
	}
}

func TestAllCatalogEntriesBound(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{}
	c := &scriptedCatalog{results: map[string]any{"a": 1, "b": 2, "c": 3}}
	newTestDispatcher(t, m, c, 0)

	if len(m.tools) != 3 {
		t.Fatalf("bound %d tools, want the full catalogue of 3", len(m.tools))
	}
}

func TestParseDecision(t *testing.T) {
	t.Parallel()

	if _, err := parseDecision(nil); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("nil message: error = %v, want ErrSchemaViolation", err)
	}

	if _, err := parseDecision(schema.AssistantMessage("  ", nil)); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("blank message: error = %v, want ErrSchemaViolation", err)
	}

	bad := schema.AssistantMessage("", []schema.ToolCall{{Function: schema.FunctionCall{Name: " "}}})
	if _, err := parseDecision(bad); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("nameless call: error = %v, want ErrSchemaViolation", err)
	}

	dec, err := parseDecision(schema.AssistantMessage("done", nil))
	if err != nil || dec.kind != decisionFinal || dec.answer != "done" {
		t.Fatalf("final decision = %+v, err = %v", dec, err)
	}

	dec, err = parseDecision(toolCallMsg("op", "{}"))
	if err != nil || dec.kind != decisionInvoke || len(dec.calls) != 1 {
		t.Fatalf("invoke decision = %+v, err = %v", dec, err)
	}
}
