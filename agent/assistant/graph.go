package assistant

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	nodex "github.com/Ade-Adeleke/SmartShopperAI/agent/nodes"
)

// compileProcessMessageGraph wires one conversation turn. The capability
// round is a branch: when the first completion names invocations the graph
// executes them and asks for a closing reply, otherwise the completion text
// is the reply.
func (a *Assistant) compileProcessMessageGraph(
	ctx context.Context,
	toolModel einomodel.BaseChatModel,
	replyModel einomodel.BaseChatModel,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("screen_intent",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ScreenIntent(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node screen_intent: %w", err)
	}

	if err := graph.AddLambdaNode("request_completion",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RequestCompletion(ctx, in, a.convo, toolModel)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node request_completion: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_capabilities",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchCapabilities(ctx, in, a.convo, a.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_capabilities: %w", err)
	}

	if err := graph.AddLambdaNode("final_completion",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalCompletion(ctx, in, a.convo, replyModel)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node final_completion: %w", err)
	}

	if err := graph.AddLambdaNode("reply_direct",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.ReplyDirect(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node reply_direct: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if len(in.Invocations) > 0 {
				return "dispatch_capabilities", nil
			}
			return "reply_direct", nil
		},
		map[string]bool{
			"dispatch_capabilities": true,
			"reply_direct":          true,
		},
	)
	if err := graph.AddBranch("request_completion", branch); err != nil {
		return nil, fmt.Errorf("add capability branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "screen_intent"},
		{"screen_intent", "request_completion"},
		{"dispatch_capabilities", "final_completion"},
		{"final_completion", compose.END},
		{"reply_direct", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.process_message"))
	if err != nil {
		return nil, fmt.Errorf("compile assistant graph: %w", err)
	}
	return runner, nil
}
