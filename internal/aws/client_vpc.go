package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/nubelab/bedrockgw/internal/domain"
)

func (c *Client) GetVPC(ctx context.Context, vpcID string) (*domain.VPCData, error) {
	key := c.cacheKey("vpc", vpcID)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.VPCData), nil
	}
	out, err := c.ec2Client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		VpcIds: []string{vpcID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe vpc %s: %w", vpcID, err)
	}
	if len(out.Vpcs) == 0 {
		return nil, fmt.Errorf("vpc %s not found", vpcID)
	}
	data := toVPCData(&out.Vpcs[0])
	c.cache.set(key, data)
	return data, nil
}

func (c *Client) GetSubnet(ctx context.Context, subnetID string) (*domain.SubnetData, error) {
	key := c.cacheKey("subnet", subnetID)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.SubnetData), nil
	}
	out, err := c.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		SubnetIds: []string{subnetID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe subnet %s: %w", subnetID, err)
	}
	if len(out.Subnets) == 0 {
		return nil, fmt.Errorf("subnet %s not found", subnetID)
	}
	data := toSubnetData(&out.Subnets[0])
	c.cache.set(key, data)
	return data, nil
}

func (c *Client) GetSecurityGroup(ctx context.Context, sgID string) (*domain.SecurityGroupData, error) {
	key := c.cacheKey("sg", sgID)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.SecurityGroupData), nil
	}
	out, err := c.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{sgID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe security group %s: %w", sgID, err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, fmt.Errorf("security group %s not found", sgID)
	}
	data := toSecurityGroupData(&out.SecurityGroups[0])
	c.cache.set(key, data)
	return data, nil
}

// GetVPCEndpointsByService lists interface endpoints in a VPC whose
// service name matches serviceName (e.g. the bedrock-agent-runtime
// interface endpoint).
func (c *Client) GetVPCEndpointsByService(ctx context.Context, vpcID, serviceName string) ([]*domain.VPCEndpointData, error) {
	paginator := ec2.NewDescribeVpcEndpointsPaginator(c.ec2Client, &ec2.DescribeVpcEndpointsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			{Name: aws.String("service-name"), Values: []string{serviceName}},
		},
	})

	endpoints, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeVpcEndpointsOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeVpcEndpointsOutput) []ec2types.VpcEndpoint {
			return out.VpcEndpoints
		},
	)
	if err != nil {
		return nil, fmt.Errorf("describe vpc endpoints for %s in %s: %w", serviceName, vpcID, err)
	}

	var data []*domain.VPCEndpointData
	for i := range endpoints {
		data = append(data, toVPCEndpointData(&endpoints[i]))
	}
	return data, nil
}
