package assistantnode

import (
	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

type GraphInput struct {
	Text string
}

type GraphOutput struct {
	Reply string
}

// GraphState flows through one conversation turn.
type GraphState struct {
	Text           string
	PurchaseIntent bool

	AssistantText string
	Invocations   []contractx.ToolInvocation
}
