package analystnode

import (
	"fmt"
	"strings"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: dispatcher returned empty reply", contractx.ErrValidation)
	}

	return GraphOutput{Answer: contractx.Answer{Reply: reply, Hint: in.Hint}}, nil
}
