// Package verify checks a deployed gateway topology against its wiring
// contract: the function's environment must point at the live
// replication group, the network must admit the function's traffic to
// the store and the Bedrock interface endpoint, and the function role
// must be able to invoke the agent. Checks read cloud state, they never
// change it.
package verify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nubelab/bedrockgw/internal/domain"
)

const (
	envRedisHost = "REDIS_HOST"
	envRedisPort = "REDIS_PORT"
	envRPMLimit  = "RPM_LIMIT"
	envTPMLimit  = "TPM_LIMIT"

	defaultStorePort       = 6379
	defaultExpectedTimeout = 30
)

// Target names the deployed resources under verification. An empty
// AccountID verifies in the caller's own account.
type Target struct {
	AccountID          string
	FunctionName       string
	ReplicationGroupID string
	ServiceName        string
	ExpectedTimeout    int
}

type Verifier struct {
	accounts domain.AccountContext
}

func New(accounts domain.AccountContext) *Verifier {
	return &Verifier{accounts: accounts}
}

// Run executes all topology checks and returns their findings. It
// fails outright only when the function or replication group cannot be
// described at all; everything downstream is reported as a finding.
func (v *Verifier) Run(ctx context.Context, target Target) (*domain.Report, error) {
	client, err := v.accounts.GetClient(target.AccountID)
	if err != nil {
		return nil, err
	}

	fn, err := client.GetFunctionConfig(ctx, target.FunctionName)
	if err != nil {
		return nil, fmt.Errorf("describe function: %w", err)
	}
	rg, err := client.GetReplicationGroup(ctx, target.ReplicationGroupID)
	if err != nil {
		return nil, fmt.Errorf("describe replication group: %w", err)
	}

	expectedTimeout := target.ExpectedTimeout
	if expectedTimeout == 0 {
		expectedTimeout = defaultExpectedTimeout
	}

	report := &domain.Report{}
	var mu sync.Mutex
	add := func(findings []domain.Finding) {
		mu.Lock()
		report.Findings = append(report.Findings, findings...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		add(checkEnvironment(fn, rg, expectedTimeout))
		return nil
	})
	g.Go(func() error {
		add(checkReplicationGroup(rg))
		return nil
	})
	g.Go(func() error {
		add(checkStoreNetwork(gctx, client, fn, rg))
		return nil
	})
	g.Go(func() error {
		add(checkEndpoint(gctx, client, fn, target.ServiceName))
		return nil
	})
	g.Go(func() error {
		add(checkRole(gctx, client, fn))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

// checkEnvironment validates the env contract between the topology and
// the function runtime.
func checkEnvironment(fn *domain.FunctionConfigData, rg *domain.ReplicationGroupData, expectedTimeout int) []domain.Finding {
	const check = "environment-contract"
	var findings []domain.Finding

	if fn.VPCID == "" {
		findings = append(findings, domain.Fail(check, "function %s is not VPC-attached", fn.Name))
		return findings
	}

	host := fn.Environment[envRedisHost]
	switch {
	case host == "":
		findings = append(findings, domain.Fail(check, "%s is not set", envRedisHost))
	case host != rg.PrimaryEndpoint:
		findings = append(findings, domain.Fail(check, "%s is %q, replication group primary is %q", envRedisHost, host, rg.PrimaryEndpoint))
	default:
		findings = append(findings, domain.Pass(check+":redis-host"))
	}

	port := defaultStorePort
	if v, ok := fn.Environment[envRedisPort]; ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			findings = append(findings, domain.Fail(check, "%s is not numeric: %q", envRedisPort, v))
			parsed = -1
		}
		port = parsed
	}
	if port > 0 {
		if rg.PrimaryPort != 0 && port != rg.PrimaryPort {
			findings = append(findings, domain.Fail(check, "%s is %d, replication group listens on %d", envRedisPort, port, rg.PrimaryPort))
		} else {
			findings = append(findings, domain.Pass(check+":redis-port"))
		}
	}

	for _, name := range []string{envRPMLimit, envTPMLimit} {
		v, ok := fn.Environment[name]
		if !ok {
			findings = append(findings, domain.Warn(check, "%s is not set, the function default applies", name))
			continue
		}
		if limit, err := strconv.ParseInt(v, 10, 64); err != nil || limit <= 0 {
			findings = append(findings, domain.Fail(check, "%s must be a positive integer, got %q", name, v))
		} else {
			findings = append(findings, domain.Pass(check+":"+strings.ToLower(name)))
		}
	}

	if fn.TimeoutSeconds != expectedTimeout {
		findings = append(findings, domain.Fail(check, "function timeout is %ds, expected %ds", fn.TimeoutSeconds, expectedTimeout))
	} else {
		findings = append(findings, domain.Pass(check+":timeout"))
	}

	return findings
}

func checkReplicationGroup(rg *domain.ReplicationGroupData) []domain.Finding {
	const check = "replication-group"
	var findings []domain.Finding

	if rg.Status != "available" {
		findings = append(findings, domain.Fail(check, "replication group %s is %q, not available", rg.ID, rg.Status))
	} else {
		findings = append(findings, domain.Pass(check+":status"))
	}

	if rg.Engine != "redis" {
		findings = append(findings, domain.Fail(check, "replication group %s runs engine %q, the gateway expects redis", rg.ID, rg.Engine))
	} else {
		findings = append(findings, domain.Pass(check+":engine"))
	}

	return findings
}

// checkStoreNetwork verifies both directions of the function-to-store
// path: function security groups must allow egress to the store port,
// and the store's security groups must admit the function.
func checkStoreNetwork(ctx context.Context, client domain.AWSClient, fn *domain.FunctionConfigData, rg *domain.ReplicationGroupData) []domain.Finding {
	const check = "network-store"
	var findings []domain.Finding

	port := rg.PrimaryPort
	if port == 0 {
		port = defaultStorePort
	}

	storeCIDRs, f := subnetCIDRs(ctx, client, rg.SubnetIDs, check)
	findings = append(findings, f...)

	egressOK := false
	for _, sgID := range fn.SecurityGroups {
		sg, err := client.GetSecurityGroup(ctx, sgID)
		if err != nil {
			findings = append(findings, domain.Warn(check, "cannot describe function security group %s: %v", sgID, err))
			continue
		}
		if sgAllowsOutbound(sg, port, storeCIDRs, rg.SecurityGroups) {
			egressOK = true
			break
		}
	}
	if egressOK {
		findings = append(findings, domain.Pass(check+":egress"))
	} else {
		findings = append(findings, domain.Fail(check, "no function security group allows egress to the store on tcp/%d", port))
	}

	ingressOK := false
	for _, sgID := range rg.SecurityGroups {
		sg, err := client.GetSecurityGroup(ctx, sgID)
		if err != nil {
			findings = append(findings, domain.Warn(check, "cannot describe store security group %s: %v", sgID, err))
			continue
		}
		if sgAllowsInbound(sg, port, fn.SubnetCIDRs, fn.SecurityGroups) {
			ingressOK = true
			break
		}
	}
	if ingressOK {
		findings = append(findings, domain.Pass(check+":ingress"))
	} else {
		findings = append(findings, domain.Fail(check, "no store security group admits the function on tcp/%d", port))
	}

	return findings
}

// checkEndpoint verifies an available interface endpoint for the
// Bedrock runtime service in the function's VPC that admits HTTPS from
// the function.
func checkEndpoint(ctx context.Context, client domain.AWSClient, fn *domain.FunctionConfigData, serviceName string) []domain.Finding {
	const check = "network-endpoint"
	var findings []domain.Finding

	endpoints, err := client.GetVPCEndpointsByService(ctx, fn.VPCID, serviceName)
	if err != nil {
		return append(findings, domain.Fail(check, "describe endpoints for %s: %v", serviceName, err))
	}
	if len(endpoints) == 0 {
		return append(findings, domain.Fail(check, "no interface endpoint for %s in %s", serviceName, fn.VPCID))
	}

	var available *domain.VPCEndpointData
	for _, ep := range endpoints {
		if ep.State == "available" {
			available = ep
			break
		}
	}
	if available == nil {
		return append(findings, domain.Fail(check, "endpoint for %s exists but none is available (state %q)", serviceName, endpoints[0].State))
	}
	findings = append(findings, domain.Pass(check+":state"))

	if len(available.SecurityGroups) == 0 {
		return append(findings, domain.Warn(check, "endpoint %s carries no security groups", available.ID))
	}

	httpsOK := false
	for _, sgID := range available.SecurityGroups {
		sg, err := client.GetSecurityGroup(ctx, sgID)
		if err != nil {
			findings = append(findings, domain.Warn(check, "cannot describe endpoint security group %s: %v", sgID, err))
			continue
		}
		if sgAllowsInbound(sg, 443, fn.SubnetCIDRs, fn.SecurityGroups) {
			httpsOK = true
			break
		}
	}
	if httpsOK {
		findings = append(findings, domain.Pass(check+":https"))
	} else {
		findings = append(findings, domain.Fail(check, "endpoint %s does not admit https from the function", available.ID))
	}

	return findings
}

// checkRole looks for Bedrock invoke permissions on the function role.
// An unreadable role is a warning (the verifier may lack iam:List*),
// a readable role without Bedrock access is a failure.
func checkRole(ctx context.Context, client domain.AWSClient, fn *domain.FunctionConfigData) []domain.Finding {
	const check = "iam-role"

	role, err := client.GetRole(ctx, fn.RoleARN)
	if err != nil {
		return []domain.Finding{domain.Warn(check, "cannot read role %s: %v", fn.RoleARN, err)}
	}

	for _, p := range role.AttachedPolicies {
		if strings.Contains(strings.ToLower(p.Name), "bedrock") || strings.Contains(strings.ToLower(p.ARN), "bedrock") {
			return []domain.Finding{domain.Pass(check)}
		}
	}
	for _, name := range role.InlinePolicies {
		if strings.Contains(strings.ToLower(name), "bedrock") {
			return []domain.Finding{domain.Pass(check)}
		}
	}

	return []domain.Finding{domain.Fail(check, "role %s carries no policy granting Bedrock access", role.Name)}
}

func subnetCIDRs(ctx context.Context, client domain.AWSClient, subnetIDs []string, check string) ([]string, []domain.Finding) {
	var cidrs []string
	var findings []domain.Finding
	for _, id := range subnetIDs {
		subnet, err := client.GetSubnet(ctx, id)
		if err != nil {
			findings = append(findings, domain.Warn(check, "cannot describe subnet %s: %v", id, err))
			continue
		}
		cidrs = append(cidrs, subnet.CIDRBlock)
	}
	return cidrs, findings
}
