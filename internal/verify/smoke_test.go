package verify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nubelab/bedrockgw/internal/domain"
	"github.com/nubelab/bedrockgw/internal/gateway"
)

func smokeParams() SmokeParams {
	return SmokeParams{APIKey: "key-a", AgentID: "AGENT123", InputText: "ping"}
}

func TestSmokeSuccess(t *testing.T) {
	m := healthyTopology()
	m.invokeResponse = []byte(`{"statusCode":200,"headers":{},"body":"{\"response\":\"pong\"}"}`)
	v := New(&mockAccountContext{client: m})

	finding, err := v.Smoke(context.Background(), testTarget(), smokeParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finding.Status != domain.CheckPass {
		t.Fatalf("expected pass, got %+v", finding)
	}

	if len(m.invokedPayloads) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(m.invokedPayloads))
	}
	var req gateway.Request
	if err := json.Unmarshal(m.invokedPayloads[0], &req); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if req.Headers["x-api-key"] != "key-a" || req.Body.AgentID != "AGENT123" {
		t.Errorf("unexpected payload: %+v", req)
	}
}

func TestSmokeRateLimited(t *testing.T) {
	m := healthyTopology()
	m.invokeResponse = []byte(`{"statusCode":429,"headers":{},"body":"{\"error\":\"Rate limit exceeded\"}"}`)
	v := New(&mockAccountContext{client: m})

	finding, err := v.Smoke(context.Background(), testTarget(), smokeParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finding.Status != domain.CheckFail {
		t.Fatalf("expected fail, got %+v", finding)
	}
	if !strings.Contains(finding.Reason, "429") {
		t.Errorf("reason should carry the status code: %s", finding.Reason)
	}
}

func TestSmokeInvokeError(t *testing.T) {
	m := healthyTopology()
	m.invokeErr = errors.New("AccessDeniedException")
	v := New(&mockAccountContext{client: m})

	finding, err := v.Smoke(context.Background(), testTarget(), smokeParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finding.Status != domain.CheckFail {
		t.Fatalf("expected fail, got %+v", finding)
	}
}

func TestSmokeUnparseableResponse(t *testing.T) {
	m := healthyTopology()
	m.invokeResponse = []byte("not json")
	v := New(&mockAccountContext{client: m})

	finding, err := v.Smoke(context.Background(), testTarget(), smokeParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finding.Status != domain.CheckFail {
		t.Fatalf("expected fail, got %+v", finding)
	}
}
