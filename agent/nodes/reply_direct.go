package assistantnode

import (
	"fmt"
	"strings"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

// ReplyDirect closes a turn in which the model answered without calling any
// capability.
func ReplyDirect(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.AssistantText)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: assistant reply is empty", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply}, nil
}
