package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"

	"github.com/nubelab/bedrockgw/internal/domain"
)

// GetReplicationGroup describes an ElastiCache replication group,
// following the member cluster for engine, security group, and subnet
// group details that the replication group record does not carry.
func (c *Client) GetReplicationGroup(ctx context.Context, groupID string) (*domain.ReplicationGroupData, error) {
	key := c.cacheKey("replgroup", groupID)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.ReplicationGroupData), nil
	}

	out, err := c.elasticacheClient.DescribeReplicationGroups(ctx, &elasticache.DescribeReplicationGroupsInput{
		ReplicationGroupId: aws.String(groupID),
	})
	if err != nil {
		return nil, fmt.Errorf("describe replication group %s: %w", groupID, err)
	}
	if len(out.ReplicationGroups) == 0 {
		return nil, fmt.Errorf("replication group %s not found", groupID)
	}

	group := &out.ReplicationGroups[0]
	data := toReplicationGroupData(group)

	if len(group.MemberClusters) > 0 {
		clusterOut, err := c.elasticacheClient.DescribeCacheClusters(ctx, &elasticache.DescribeCacheClustersInput{
			CacheClusterId:    aws.String(group.MemberClusters[0]),
			ShowCacheNodeInfo: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("describe member cluster %s: %w", group.MemberClusters[0], err)
		}
		if len(clusterOut.CacheClusters) > 0 {
			cluster := &clusterOut.CacheClusters[0]
			data.Engine = derefString(cluster.Engine)
			for _, sg := range cluster.SecurityGroups {
				if sg.SecurityGroupId != nil {
					data.SecurityGroups = append(data.SecurityGroups, *sg.SecurityGroupId)
				}
			}

			if cluster.CacheSubnetGroupName != nil {
				subnetOut, err := c.elasticacheClient.DescribeCacheSubnetGroups(ctx, &elasticache.DescribeCacheSubnetGroupsInput{
					CacheSubnetGroupName: cluster.CacheSubnetGroupName,
				})
				if err == nil && len(subnetOut.CacheSubnetGroups) > 0 {
					for _, subnet := range subnetOut.CacheSubnetGroups[0].Subnets {
						if subnet.SubnetIdentifier != nil {
							data.SubnetIDs = append(data.SubnetIDs, *subnet.SubnetIdentifier)
						}
					}
					if subnetOut.CacheSubnetGroups[0].VpcId != nil {
						data.VPCID = *subnetOut.CacheSubnetGroups[0].VpcId
					}
				}
			}
		}
	}

	c.cache.set(key, data)
	return data, nil
}
