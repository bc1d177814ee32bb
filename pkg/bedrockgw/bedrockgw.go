// Package bedrockgw exposes deployment verification for the rate-limited
// Bedrock gateway: wiring checks against the live topology and the
// smoke test against the deployed function.
package bedrockgw

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	internalaws "github.com/nubelab/bedrockgw/internal/aws"
	"github.com/nubelab/bedrockgw/internal/domain"
	"github.com/nubelab/bedrockgw/internal/verify"
)

type AccountContext = internalaws.AccountContext

type Target = verify.Target

type SmokeParams = verify.SmokeParams

type Report = domain.Report

type Finding = domain.Finding

type CheckStatus = domain.CheckStatus

const (
	CheckPass = domain.CheckPass
	CheckWarn = domain.CheckWarn
	CheckFail = domain.CheckFail
)

// NewAccountContext creates an account context for cross-account
// verification. The roleARNPattern should contain %s as a placeholder
// for the account ID; pass "" for a sensible default.
func NewAccountContext(cfg aws.Config, roleARNPattern string) *AccountContext {
	return internalaws.NewAccountContext(cfg, roleARNPattern)
}

// VerifyDeployment checks a deployed gateway topology against its
// wiring contract and returns one finding per check. It reads cloud
// state, it never mutates it.
func VerifyDeployment(ctx context.Context, target Target, accountCtx *AccountContext) (*Report, error) {
	return verify.New(accountCtx).Run(ctx, target)
}

// SmokeTest invokes the deployed function with a sample payload and
// reports whether it answered with a success status.
func SmokeTest(ctx context.Context, target Target, params SmokeParams, accountCtx *AccountContext) (Finding, error) {
	return verify.New(accountCtx).Smoke(ctx, target, params)
}
