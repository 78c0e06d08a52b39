package assistantnode

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	conversationx "github.com/Ade-Adeleke/SmartShopperAI/agent/conversation"
)

// RequestCompletion asks the capability-bound model for the next step. The
// model either answers directly or names the capabilities it wants executed;
// either way the response is recorded in the conversation log before the
// graph moves on.
func RequestCompletion(
	ctx context.Context,
	in *GraphState,
	convo *conversationx.Log,
	model einomodel.BaseChatModel,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	msgs, err := convo.CompletionMessages()
	if err != nil {
		return nil, err
	}

	resp, err := model.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: completion request: %v", contractx.ErrCapability, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: completion returned no message", contractx.ErrCapability)
	}

	invocations, err := toInvocations(resp.ToolCalls)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Content)
	if err := convo.AppendAssistant(text, invocations); err != nil {
		return nil, err
	}

	in.AssistantText = text
	in.Invocations = invocations
	return in, nil
}

func toInvocations(calls []schema.ToolCall) ([]contractx.ToolInvocation, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	invocations := make([]contractx.ToolInvocation, 0, len(calls))
	for _, call := range calls {
		capability := strings.TrimSpace(call.Function.Name)
		if capability == "" {
			return nil, fmt.Errorf("%w: model emitted a tool call without a name", contractx.ErrCapability)
		}
		if strings.TrimSpace(call.ID) == "" {
			return nil, fmt.Errorf("%w: model emitted a tool call without an id", contractx.ErrCapability)
		}
		invocations = append(invocations, contractx.ToolInvocation{
			ID:         call.ID,
			Capability: capability,
			RawArgs:    call.Function.Arguments,
		})
	}
	return invocations, nil
}
