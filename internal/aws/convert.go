package aws

import (
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/nubelab/bedrockgw/internal/domain"
)

func toVPCData(vpc *ec2types.Vpc) *domain.VPCData {
	return &domain.VPCData{
		ID:        derefString(vpc.VpcId),
		CIDRBlock: derefString(vpc.CidrBlock),
	}
}

func toSubnetData(subnet *ec2types.Subnet) *domain.SubnetData {
	return &domain.SubnetData{
		ID:               derefString(subnet.SubnetId),
		VPCID:            derefString(subnet.VpcId),
		CIDRBlock:        derefString(subnet.CidrBlock),
		AvailabilityZone: derefString(subnet.AvailabilityZone),
	}
}

func toSecurityGroupData(sg *ec2types.SecurityGroup) *domain.SecurityGroupData {
	return &domain.SecurityGroupData{
		ID:            derefString(sg.GroupId),
		VPCID:         derefString(sg.VpcId),
		InboundRules:  toSecurityGroupRules(sg.IpPermissions),
		OutboundRules: toSecurityGroupRules(sg.IpPermissionsEgress),
	}
}

func toSecurityGroupRules(perms []ec2types.IpPermission) []domain.SecurityGroupRule {
	var rules []domain.SecurityGroupRule
	for _, perm := range perms {
		var cidrs []string
		for _, r := range perm.IpRanges {
			if r.CidrIp != nil {
				cidrs = append(cidrs, *r.CidrIp)
			}
		}

		var referencedSGs []string
		for _, pair := range perm.UserIdGroupPairs {
			if pair.GroupId != nil {
				referencedSGs = append(referencedSGs, *pair.GroupId)
			}
		}

		rules = append(rules, domain.SecurityGroupRule{
			Protocol:                 derefString(perm.IpProtocol),
			FromPort:                 int(derefInt32(perm.FromPort)),
			ToPort:                   int(derefInt32(perm.ToPort)),
			CIDRBlocks:               cidrs,
			ReferencedSecurityGroups: referencedSGs,
		})
	}
	return rules
}

func toVPCEndpointData(ep *ec2types.VpcEndpoint) *domain.VPCEndpointData {
	var subnetIDs []string
	subnetIDs = append(subnetIDs, ep.SubnetIds...)

	var sgIDs []string
	for _, sg := range ep.Groups {
		sgIDs = append(sgIDs, derefString(sg.GroupId))
	}

	return &domain.VPCEndpointData{
		ID:             derefString(ep.VpcEndpointId),
		VPCID:          derefString(ep.VpcId),
		ServiceName:    derefString(ep.ServiceName),
		Type:           string(ep.VpcEndpointType),
		State:          string(ep.State),
		SubnetIDs:      subnetIDs,
		SecurityGroups: sgIDs,
	}
}

func toReplicationGroupData(group *elasticachetypes.ReplicationGroup) *domain.ReplicationGroupData {
	data := &domain.ReplicationGroupData{
		ID:     derefString(group.ReplicationGroupId),
		Status: derefString(group.Status),
	}

	for _, nodeGroup := range group.NodeGroups {
		if nodeGroup.PrimaryEndpoint != nil && data.PrimaryEndpoint == "" {
			data.PrimaryEndpoint = derefString(nodeGroup.PrimaryEndpoint.Address)
			data.PrimaryPort = int(derefInt32(nodeGroup.PrimaryEndpoint.Port))
		}
		for _, member := range nodeGroup.NodeGroupMembers {
			node := domain.ReplicationGroupNodeData{
				ID: derefString(member.CacheClusterId),
			}
			if member.ReadEndpoint != nil {
				node.Endpoint = derefString(member.ReadEndpoint.Address)
				node.Port = int(derefInt32(member.ReadEndpoint.Port))
			}
			data.Nodes = append(data.Nodes, node)
		}
	}

	return data
}

func toFunctionConfigData(out *lambda.GetFunctionOutput) *domain.FunctionConfigData {
	cfg := out.Configuration
	if cfg == nil {
		return &domain.FunctionConfigData{}
	}

	data := &domain.FunctionConfigData{
		Name:           derefString(cfg.FunctionName),
		ARN:            derefString(cfg.FunctionArn),
		RoleARN:        derefString(cfg.Role),
		Runtime:        string(cfg.Runtime),
		TimeoutSeconds: int(derefInt32(cfg.Timeout)),
		Environment:    map[string]string{},
	}

	if cfg.Environment != nil {
		for k, v := range cfg.Environment.Variables {
			data.Environment[k] = v
		}
	}

	if cfg.VpcConfig != nil {
		data.VPCID = derefString(cfg.VpcConfig.VpcId)
		data.SubnetIDs = append(data.SubnetIDs, cfg.VpcConfig.SubnetIds...)
		data.SecurityGroups = append(data.SecurityGroups, cfg.VpcConfig.SecurityGroupIds...)
	}

	return data
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt32(i *int32) int32 {
	if i == nil {
		return 0
	}
	return *i
}
