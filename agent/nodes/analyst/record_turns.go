package analystnode

import (
	"fmt"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

// RecordTurns appends exactly one user turn and one assistant turn for the
// completed cycle.
func RecordTurns(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Append(contractx.RoleUser, in.Text)
	in.Session.Append(contractx.RoleAssistant, in.Reply)
	return in, nil
}
