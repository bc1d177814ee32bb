// Package agent invokes an Amazon Bedrock agent and collects its
// streamed completion into a single response.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	batypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// defaultAliasID is the Bedrock test alias used when the caller does
// not pin one.
const defaultAliasID = "TSTALIASID"

type runtimeAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

type Client struct {
	api runtimeAPI
	now func() time.Time
}

func NewClient(cfg aws.Config) *Client {
	return &Client{
		api: bedrockagentruntime.NewFromConfig(cfg),
		now: time.Now,
	}
}

// Request mirrors the body of a gateway invocation.
type Request struct {
	AgentID      string `json:"agentId"`
	AgentAliasID string `json:"agentAliasId"`
	SessionID    string `json:"sessionId"`
	InputText    string `json:"inputText"`
}

// Result is the collected agent response.
type Result struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
	AgentID   string `json:"agentId"`
	Timestamp string `json:"timestamp"`
}

// Invoke calls the agent and concatenates the streamed completion
// chunks. The alias defaults to the test alias and the session ID to a
// fresh session-<unix> value.
func (c *Client) Invoke(ctx context.Context, req Request) (*Result, error) {
	if req.AgentID == "" || req.InputText == "" {
		return nil, fmt.Errorf("agentId and inputText are required")
	}

	aliasID := req.AgentAliasID
	if aliasID == "" {
		aliasID = defaultAliasID
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", c.now().Unix())
	}

	out, err := c.api.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(req.AgentID),
		AgentAliasId: aws.String(aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(req.InputText),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke agent %s: %w", req.AgentID, err)
	}

	text, err := collectCompletion(out)
	if err != nil {
		return nil, fmt.Errorf("read completion stream for agent %s: %w", req.AgentID, err)
	}

	return &Result{
		SessionID: sessionID,
		Response:  text,
		AgentID:   req.AgentID,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	}, nil
}

func collectCompletion(out *bedrockagentruntime.InvokeAgentOutput) (string, error) {
	stream := out.GetStream()
	if stream == nil {
		return "", nil
	}
	defer stream.Close()

	var sb strings.Builder
	for event := range stream.Events() {
		chunk, ok := event.(*batypes.ResponseStreamMemberChunk)
		if !ok {
			continue
		}
		sb.Write(chunk.Value.Bytes)
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
