package domain

import "context"

type AccountContext interface {
	AssumeRole(accountID string) (AWSCredentials, error)
	GetClient(accountID string) (AWSClient, error)
}

type AWSClient interface {
	GetVPC(ctx context.Context, vpcID string) (*VPCData, error)
	GetSubnet(ctx context.Context, subnetID string) (*SubnetData, error)
	GetSecurityGroup(ctx context.Context, sgID string) (*SecurityGroupData, error)
	GetVPCEndpointsByService(ctx context.Context, vpcID, serviceName string) ([]*VPCEndpointData, error)

	GetReplicationGroup(ctx context.Context, groupID string) (*ReplicationGroupData, error)

	GetFunctionConfig(ctx context.Context, functionName string) (*FunctionConfigData, error)
	InvokeFunction(ctx context.Context, functionName string, payload []byte) ([]byte, error)

	GetRole(ctx context.Context, roleARN string) (*RoleData, error)
}
