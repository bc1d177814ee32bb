// Package gateway implements the rate-limited proxy handler fronting
// a Bedrock agent. It authenticates the caller by API key, runs the
// request and token admission checks against the shared store, records
// usage, and forwards the request to the agent.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nubelab/bedrockgw/internal/agent"
	"github.com/nubelab/bedrockgw/internal/limiter"
	"github.com/nubelab/bedrockgw/internal/usage"
)

const (
	headerAPIKey        = "x-api-key"
	headerAuthorization = "authorization"
	headerRemaining     = "X-Rate-Limit-Remaining"
	headerReset         = "X-Rate-Limit-Reset"
)

// Invoker forwards a validated request to the agent.
type Invoker interface {
	Invoke(ctx context.Context, req agent.Request) (*agent.Result, error)
}

// Request is the invocation event shape: headers for authentication,
// body for the agent call.
type Request struct {
	Headers map[string]string `json:"headers"`
	Body    agent.Request     `json:"body"`
}

// Response follows the proxy-integration shape so the same payload
// works behind an HTTP front or a direct Invoke.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type Handler struct {
	limiter  *limiter.Limiter
	recorder *usage.Recorder
	invoker  Invoker
	log      logrus.FieldLogger
}

func NewHandler(l *limiter.Limiter, r *usage.Recorder, invoker Invoker, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		limiter:  l,
		recorder: r,
		invoker:  invoker,
		log:      log,
	}
}

// Handle processes one invocation. It never returns an error to the
// runtime; failures are encoded as HTTP-style responses.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	started := time.Now()

	apiKey := extractAPIKey(req.Headers)
	if apiKey == "" {
		return errorResponse(401, "API Key required", nil), nil
	}

	log := h.log.WithField("api_key", redactKey(apiKey))

	rpm, err := h.limiter.AllowRequest(ctx, apiKey)
	if err != nil {
		log.WithError(err).Warn("request limit check failed, allowing")
	}
	if !rpm.Allowed {
		log.WithField("reset", rpm.ResetTime).Info("request limit exceeded")
		return errorResponse(429, "Rate limit exceeded", limitHeaders(rpm)), nil
	}

	inputTokens := limiter.EstimateTokens(req.Body.InputText)
	tpm, err := h.limiter.AllowTokens(ctx, apiKey, inputTokens)
	if err != nil {
		log.WithError(err).Warn("token limit check failed, allowing")
	}
	if !tpm.Allowed {
		log.WithField("reset", tpm.ResetTime).Info("token limit exceeded")
		return errorResponse(429, "Token limit exceeded", limitHeaders(tpm)), nil
	}

	if err := h.recorder.Record(ctx, apiKey); err != nil {
		log.WithError(err).Error("usage record failed")
		return errorResponse(503, "Service temporarily unavailable", nil), nil
	}

	result, err := h.invoker.Invoke(ctx, req.Body)
	if err != nil {
		log.WithError(err).WithField("agent_id", req.Body.AgentID).Error("agent invocation failed")
		return errorResponse(500, "Internal server error", nil), nil
	}

	outputTokens := limiter.EstimateTokens(result.Response)
	if err := h.limiter.ChargeTokens(ctx, apiKey, outputTokens); err != nil {
		log.WithError(err).Warn("token charge failed")
	}
	if err := h.recorder.RecordTokens(ctx, apiKey, inputTokens+outputTokens); err != nil {
		log.WithError(err).Warn("token usage record failed")
	}

	body, err := json.Marshal(result)
	if err != nil {
		log.WithError(err).Error("response encoding failed")
		return errorResponse(500, "Internal server error", nil), nil
	}

	log.WithFields(logrus.Fields{
		"agent_id":   req.Body.AgentID,
		"session_id": result.SessionID,
		"elapsed":    time.Since(started).String(),
	}).Info("request proxied")

	headers := limitHeaders(rpm)
	headers["Content-Type"] = "application/json"

	return Response{
		StatusCode: 200,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// extractAPIKey pulls the caller identity from x-api-key, falling back
// to a bearer token. Header names match case-insensitively since HTTP
// fronts normalize them inconsistently.
func extractAPIKey(headers map[string]string) string {
	var auth string
	for name, value := range headers {
		switch strings.ToLower(name) {
		case headerAPIKey:
			if value != "" {
				return value
			}
		case headerAuthorization:
			auth = value
		}
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func redactKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "****"
	}
	return apiKey[:4] + "****"
}

func limitHeaders(res limiter.Result) map[string]string {
	return map[string]string{
		headerRemaining: strconv.FormatInt(res.Remaining, 10),
		headerReset:     strconv.FormatInt(res.ResetTime, 10),
	}
}

func errorResponse(status int, message string, extra map[string]string) Response {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range extra {
		headers[k] = v
	}
	body, _ := json.Marshal(map[string]string{"error": message})
	return Response{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

// SamplePayload is the smoke-test event: a minimal valid request for
// the given key, agent, and prompt.
func SamplePayload(apiKey, agentID, inputText string) ([]byte, error) {
	payload, err := json.Marshal(Request{
		Headers: map[string]string{headerAPIKey: apiKey},
		Body: agent.Request{
			AgentID:   agentID,
			InputText: inputText,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode sample payload: %w", err)
	}
	return payload, nil
}
