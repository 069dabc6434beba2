package analystnode

import (
	"context"
	"fmt"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

// RunDispatcher produces the turn's reply from the snapshotted history and
// the current question.
func RunDispatcher(ctx context.Context, in *GraphState, dispatcher contractx.Dispatcher) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, err := dispatcher.Answer(ctx, in.History, in.Text)
	if err != nil {
		return nil, err
	}

	in.Reply = reply
	return in, nil
}
