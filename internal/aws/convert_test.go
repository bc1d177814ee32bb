package aws

import (
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

func TestToSecurityGroupData(t *testing.T) {
	sg := &ec2types.SecurityGroup{
		GroupId: awssdk.String("sg-0abc"),
		VpcId:   awssdk.String("vpc-1"),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: awssdk.String("tcp"),
				FromPort:   awssdk.Int32(6379),
				ToPort:     awssdk.Int32(6379),
				UserIdGroupPairs: []ec2types.UserIdGroupPair{
					{GroupId: awssdk.String("sg-0fn")},
				},
			},
		},
		IpPermissionsEgress: []ec2types.IpPermission{
			{
				IpProtocol: awssdk.String("-1"),
				IpRanges: []ec2types.IpRange{
					{CidrIp: awssdk.String("0.0.0.0/0")},
				},
			},
		},
	}

	data := toSecurityGroupData(sg)

	if data.ID != "sg-0abc" {
		t.Errorf("expected ID sg-0abc, got %s", data.ID)
	}
	if len(data.InboundRules) != 1 {
		t.Fatalf("expected 1 inbound rule, got %d", len(data.InboundRules))
	}
	rule := data.InboundRules[0]
	if rule.Protocol != "tcp" || rule.FromPort != 6379 || rule.ToPort != 6379 {
		t.Errorf("unexpected inbound rule: %+v", rule)
	}
	if len(rule.ReferencedSecurityGroups) != 1 || rule.ReferencedSecurityGroups[0] != "sg-0fn" {
		t.Errorf("expected referenced sg-0fn, got %v", rule.ReferencedSecurityGroups)
	}
	if len(data.OutboundRules) != 1 || data.OutboundRules[0].CIDRBlocks[0] != "0.0.0.0/0" {
		t.Errorf("unexpected outbound rules: %+v", data.OutboundRules)
	}
}

func TestToVPCEndpointData(t *testing.T) {
	ep := &ec2types.VpcEndpoint{
		VpcEndpointId:   awssdk.String("vpce-1"),
		VpcId:           awssdk.String("vpc-1"),
		ServiceName:     awssdk.String("com.amazonaws.us-east-1.bedrock-agent-runtime"),
		VpcEndpointType: ec2types.VpcEndpointTypeInterface,
		State:           ec2types.StateAvailable,
		SubnetIds:       []string{"subnet-a", "subnet-b"},
		Groups: []ec2types.SecurityGroupIdentifier{
			{GroupId: awssdk.String("sg-0vpce")},
		},
	}

	data := toVPCEndpointData(ep)

	if data.ID != "vpce-1" {
		t.Errorf("expected ID vpce-1, got %s", data.ID)
	}
	if data.Type != "Interface" {
		t.Errorf("expected type Interface, got %s", data.Type)
	}
	if data.State != "available" {
		t.Errorf("expected state available, got %s", data.State)
	}
	if len(data.SubnetIDs) != 2 {
		t.Errorf("expected 2 subnets, got %v", data.SubnetIDs)
	}
	if len(data.SecurityGroups) != 1 || data.SecurityGroups[0] != "sg-0vpce" {
		t.Errorf("unexpected security groups: %v", data.SecurityGroups)
	}
}

func TestToReplicationGroupData(t *testing.T) {
	group := &elasticachetypes.ReplicationGroup{
		ReplicationGroupId: awssdk.String("gateway-store"),
		Status:             awssdk.String("available"),
		NodeGroups: []elasticachetypes.NodeGroup{
			{
				PrimaryEndpoint: &elasticachetypes.Endpoint{
					Address: awssdk.String("master.gateway-store.abc.use1.cache.amazonaws.com"),
					Port:    awssdk.Int32(6379),
				},
				NodeGroupMembers: []elasticachetypes.NodeGroupMember{
					{
						CacheClusterId: awssdk.String("gateway-store-001"),
						ReadEndpoint: &elasticachetypes.Endpoint{
							Address: awssdk.String("gateway-store-001.abc.use1.cache.amazonaws.com"),
							Port:    awssdk.Int32(6379),
						},
					},
				},
			},
		},
	}

	data := toReplicationGroupData(group)

	if data.ID != "gateway-store" {
		t.Errorf("expected ID gateway-store, got %s", data.ID)
	}
	if data.Status != "available" {
		t.Errorf("expected status available, got %s", data.Status)
	}
	if data.PrimaryEndpoint != "master.gateway-store.abc.use1.cache.amazonaws.com" {
		t.Errorf("unexpected primary endpoint: %s", data.PrimaryEndpoint)
	}
	if data.PrimaryPort != 6379 {
		t.Errorf("expected primary port 6379, got %d", data.PrimaryPort)
	}
	if len(data.Nodes) != 1 || data.Nodes[0].ID != "gateway-store-001" {
		t.Errorf("unexpected nodes: %+v", data.Nodes)
	}
}

func TestToFunctionConfigData(t *testing.T) {
	out := &lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{
			FunctionName: awssdk.String("bedrock-gateway"),
			FunctionArn:  awssdk.String("arn:aws:lambda:us-east-1:123456789012:function:bedrock-gateway"),
			Role:         awssdk.String("arn:aws:iam::123456789012:role/bedrock-gateway-role"),
			Runtime:      lambdatypes.RuntimeProvidedal2023,
			Timeout:      awssdk.Int32(30),
			Environment: &lambdatypes.EnvironmentResponse{
				Variables: map[string]string{
					"REDIS_HOST": "master.gateway-store.abc.use1.cache.amazonaws.com",
					"REDIS_PORT": "6379",
				},
			},
			VpcConfig: &lambdatypes.VpcConfigResponse{
				VpcId:            awssdk.String("vpc-1"),
				SubnetIds:        []string{"subnet-a"},
				SecurityGroupIds: []string{"sg-0fn"},
			},
		},
	}

	data := toFunctionConfigData(out)

	if data.Name != "bedrock-gateway" {
		t.Errorf("expected name bedrock-gateway, got %s", data.Name)
	}
	if data.TimeoutSeconds != 30 {
		t.Errorf("expected timeout 30, got %d", data.TimeoutSeconds)
	}
	if data.Environment["REDIS_HOST"] == "" {
		t.Error("expected REDIS_HOST in environment")
	}
	if data.VPCID != "vpc-1" || len(data.SubnetIDs) != 1 || len(data.SecurityGroups) != 1 {
		t.Errorf("unexpected vpc config: %+v", data)
	}
}

func TestToFunctionConfigDataNilConfiguration(t *testing.T) {
	data := toFunctionConfigData(&lambda.GetFunctionOutput{})
	if data.Name != "" || data.VPCID != "" {
		t.Errorf("expected zero value, got %+v", data)
	}
}

func TestRoleNameFromARN(t *testing.T) {
	tests := []struct {
		arn      string
		expected string
	}{
		{"arn:aws:iam::123456789012:role/bedrock-gateway-role", "bedrock-gateway-role"},
		{"arn:aws:iam::123456789012:role/service-role/my-role", "my-role"},
		{"arn:aws:iam::123456789012:role/", ""},
		{"not-an-arn", ""},
	}

	for _, tt := range tests {
		if got := roleNameFromARN(tt.arn); got != tt.expected {
			t.Errorf("roleNameFromARN(%q) = %q, expected %q", tt.arn, got, tt.expected)
		}
	}
}
