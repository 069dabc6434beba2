// Package analyst wires the intent index, dispatcher, and session history
// into the user-facing submit/hint surface.
package analyst

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/datachat-dev/datachat/agent/contract"
	intentx "github.com/datachat-dev/datachat/agent/intent"
	nodex "github.com/datachat-dev/datachat/agent/nodes/analyst"
	sessionx "github.com/datachat-dev/datachat/agent/session"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Analyst struct {
	dispatcher contractx.Dispatcher
	// index may be nil when intent embedding was unavailable at startup;
	// every lookup then degrades to "no hint".
	index *intentx.Index

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(dispatcher contractx.Dispatcher, index *intentx.Index) (*Analyst, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	a := &Analyst{
		dispatcher: dispatcher,
		index:      index,
		now:        time.Now,
	}

	graphRunner, err := a.compileSubmitGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// Submit answers one user message within the session, appending the user
// and assistant turns on success.
func (a *Analyst) Submit(ctx context.Context, sess *sessionx.Session, text string) (contractx.Answer, error) {
	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		Session: sess,
		Text:    text,
	})
	if err != nil {
		return contractx.Answer{}, err
	}
	return out.Answer, nil
}

// Hint returns the closest matched intent example for text, best-effort.
func (a *Analyst) Hint(ctx context.Context, text string) (string, bool) {
	match, ok := a.index.Nearest(ctx, text)
	if !ok {
		return "", false
	}
	return match.Example, true
}
