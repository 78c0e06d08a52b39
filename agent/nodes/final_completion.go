package assistantnode

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	conversationx "github.com/Ade-Adeleke/SmartShopperAI/agent/conversation"
)

// FinalCompletion asks the model to phrase the outcome of the executed
// capabilities. The model gets one capability round per turn; further tool
// calls at this stage are dropped.
func FinalCompletion(
	ctx context.Context,
	in *GraphState,
	convo *conversationx.Log,
	model einomodel.BaseChatModel,
) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	msgs, err := convo.CompletionMessages()
	if err != nil {
		return GraphOutput{}, err
	}

	resp, err := model.Generate(ctx, msgs)
	if err != nil {
		return GraphOutput{}, fmt.Errorf("%w: final completion request: %v", contractx.ErrCapability, err)
	}
	if resp == nil {
		return GraphOutput{}, fmt.Errorf("%w: final completion returned no message", contractx.ErrCapability)
	}
	if len(resp.ToolCalls) > 0 {
		log.Warn().Int("tool_calls", len(resp.ToolCalls)).Msg("ignoring capability requests in final reply")
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: final completion reply is empty", contractx.ErrCapability)
	}
	if err := convo.AppendAssistant(reply, nil); err != nil {
		return GraphOutput{}, err
	}
	return GraphOutput{Reply: reply}, nil
}
