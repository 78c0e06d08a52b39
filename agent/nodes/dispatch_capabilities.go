package assistantnode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	conversationx "github.com/Ade-Adeleke/SmartShopperAI/agent/conversation"
)

// DispatchCapabilities executes every invocation the model asked for and
// records the payloads in the conversation log. The gateway folds capability
// failures into the payloads themselves, so this node only fails on log
// bookkeeping problems.
func DispatchCapabilities(
	ctx context.Context,
	in *GraphState,
	convo *conversationx.Log,
	gateway contractx.CapabilityGateway,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if len(in.Invocations) == 0 {
		return nil, fmt.Errorf("%w: no capability invocations to dispatch", contractx.ErrValidation)
	}

	for _, inv := range in.Invocations {
		log.Info().
			Str("capability", inv.Capability).
			Str("invocation_id", inv.ID).
			Msg("executing capability")

		result := gateway.Execute(ctx, inv)
		payload, err := json.Marshal(result.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode payload of capability %s: %v", contractx.ErrCapability, inv.Capability, err)
		}
		if err := convo.AppendToolResult(result.InvocationID, string(payload)); err != nil {
			return nil, err
		}
	}
	return in, nil
}
