package analystnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/datachat-dev/datachat/agent/contract"
	intentx "github.com/datachat-dev/datachat/agent/intent"
)

// IntentHint attaches the closest matched corpus example, when the index
// has one. Advisory only: a nil index or a failed lookup leaves the hint
// empty and never fails the turn.
func IntentHint(ctx context.Context, in *GraphState, index *intentx.Index) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	match, ok := index.Nearest(ctx, in.Text)
	if !ok {
		log.Debug().Msg("no intent hint available")
		return in, nil
	}

	log.Info().Str("intent", match.Example).Float64("score", match.Score).Msg("closest matched intent")
	in.Hint = match.Example
	return in, nil
}
