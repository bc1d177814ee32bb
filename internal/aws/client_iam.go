package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/nubelab/bedrockgw/internal/domain"
)

// GetRole resolves a role ARN to its attached and inline policy names.
func (c *Client) GetRole(ctx context.Context, roleARN string) (*domain.RoleData, error) {
	roleName := roleNameFromARN(roleARN)
	if roleName == "" {
		return nil, fmt.Errorf("malformed role arn %q", roleARN)
	}

	key := c.cacheKey("role", roleName)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.RoleData), nil
	}

	attachedPaginator := iam.NewListAttachedRolePoliciesPaginator(c.iamClient, &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	attached, err := CollectPages(
		ctx,
		attachedPaginator.HasMorePages,
		func(ctx context.Context) (*iam.ListAttachedRolePoliciesOutput, error) {
			return attachedPaginator.NextPage(ctx)
		},
		func(out *iam.ListAttachedRolePoliciesOutput) []iamtypes.AttachedPolicy {
			return out.AttachedPolicies
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list attached policies for role %s: %w", roleName, err)
	}

	inlinePaginator := iam.NewListRolePoliciesPaginator(c.iamClient, &iam.ListRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	inline, err := CollectPages(
		ctx,
		inlinePaginator.HasMorePages,
		func(ctx context.Context) (*iam.ListRolePoliciesOutput, error) {
			return inlinePaginator.NextPage(ctx)
		},
		func(out *iam.ListRolePoliciesOutput) []string {
			return out.PolicyNames
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list inline policies for role %s: %w", roleName, err)
	}

	data := &domain.RoleData{
		Name:           roleName,
		ARN:            roleARN,
		InlinePolicies: inline,
	}
	for _, p := range attached {
		data.AttachedPolicies = append(data.AttachedPolicies, domain.AttachedPolicy{
			Name: derefString(p.PolicyName),
			ARN:  derefString(p.PolicyArn),
		})
	}

	c.cache.set(key, data)
	return data, nil
}

func roleNameFromARN(arn string) string {
	idx := strings.LastIndex(arn, "/")
	if idx < 0 || idx == len(arn)-1 {
		return ""
	}
	return arn[idx+1:]
}
