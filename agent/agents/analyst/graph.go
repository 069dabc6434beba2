package analyst

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/datachat-dev/datachat/agent/nodes/analyst"
)

func (a *Analyst) compileSubmitGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, a.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("intent_hint",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.IntentHint(ctx, in, a.index)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node intent_hint: %w", err)
	}

	if err := graph.AddLambdaNode("run_dispatcher",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunDispatcher(ctx, in, a.dispatcher)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_dispatcher: %w", err)
	}

	if err := graph.AddLambdaNode("record_turns",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordTurns(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_turns: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "intent_hint"},
		{"intent_hint", "run_dispatcher"},
		{"run_dispatcher", "record_turns"},
		{"record_turns", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("analyst.submit"))
	if err != nil {
		return nil, fmt.Errorf("compile analyst graph: %w", err)
	}
	return runner, nil
}
