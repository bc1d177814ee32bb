package verify

import (
	"context"
	"encoding/json"

	"github.com/nubelab/bedrockgw/internal/domain"
	"github.com/nubelab/bedrockgw/internal/gateway"
)

// SmokeParams describes the sample request sent to the deployed
// function.
type SmokeParams struct {
	APIKey    string
	AgentID   string
	InputText string
}

// Smoke invokes the deployed function with a minimal valid payload and
// checks for a success status. This is the one verification step that
// exercises the gateway end to end, and the only one that invokes
// anything.
func (v *Verifier) Smoke(ctx context.Context, target Target, params SmokeParams) (domain.Finding, error) {
	const check = "smoke"

	client, err := v.accounts.GetClient(target.AccountID)
	if err != nil {
		return domain.Finding{}, err
	}

	payload, err := gateway.SamplePayload(params.APIKey, params.AgentID, params.InputText)
	if err != nil {
		return domain.Finding{}, err
	}

	raw, err := client.InvokeFunction(ctx, target.FunctionName, payload)
	if err != nil {
		return domain.Fail(check, "invoke %s: %v", target.FunctionName, err), nil
	}

	var resp struct {
		StatusCode int    `json:"statusCode"`
		Body       string `json:"body"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.Fail(check, "function %s returned an unparseable payload: %v", target.FunctionName, err), nil
	}
	if resp.StatusCode != 200 {
		return domain.Fail(check, "function %s returned %d: %s", target.FunctionName, resp.StatusCode, resp.Body), nil
	}

	return domain.Pass(check), nil
}
