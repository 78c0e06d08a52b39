package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	capabilityx "github.com/Ade-Adeleke/SmartShopperAI/agent/capability"
	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	conversationx "github.com/Ade-Adeleke/SmartShopperAI/agent/conversation"
	nodex "github.com/Ade-Adeleke/SmartShopperAI/agent/nodes"
	promptx "github.com/Ade-Adeleke/SmartShopperAI/agent/prompt"
)

const defaultTurnTimeout = 60 * time.Second

type Config struct {
	// TurnTimeout bounds one ProcessMessage call end to end, capability
	// executions included. Zero means the 60s default.
	TurnTimeout time.Duration
}

// Assistant runs the two-role conversation: product questions answered from
// retrieved catalog data, order placement once the customer commits. One
// instance owns one conversation log and is not safe for concurrent use.
type Assistant struct {
	convo   *conversationx.Log
	gateway contractx.CapabilityGateway

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	turnTimeout time.Duration
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	gateway contractx.CapabilityGateway,
	cfg Config,
) (*Assistant, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if gateway == nil {
		return nil, errors.New("capability gateway is required")
	}

	toolModel, err := chatModel.WithTools(capabilityx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind capabilities: %v", contractx.ErrCapability, err)
	}

	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}

	a := &Assistant{
		convo:       conversationx.NewLog(promptx.LoadPromptSet().Assistant),
		gateway:     gateway,
		turnTimeout: timeout,
	}

	graphRunner, err := a.compileProcessMessageGraph(ctx, toolModel, chatModel)
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// ProcessMessage runs one conversation turn and returns the reply shown to
// the customer. The user message always stays in the log; assistant and
// capability entries of a failed turn are rolled back so the next attempt
// starts from a clean prefix.
func (a *Assistant) ProcessMessage(ctx context.Context, text string) (string, error) {
	if err := a.convo.AppendUser(text); err != nil {
		return "", err
	}
	mark := a.convo.Mark()

	ctx, cancel := context.WithTimeout(ctx, a.turnTimeout)
	defer cancel()

	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{Text: text})
	if err != nil {
		a.convo.Rollback(mark)
		return "", err
	}
	return out.Reply, nil
}

// History lists what the customer saw: their messages and the assistant's
// spoken replies, without the capability plumbing in between.
func (a *Assistant) History() []conversationx.Entry {
	return a.convo.PublicHistory()
}

// Reset drops the conversation and reseeds the system prompt.
func (a *Assistant) Reset() {
	a.convo.Reset()
}
