package verify

import (
	"context"
	"fmt"

	"github.com/nubelab/bedrockgw/internal/domain"
)

type mockAWSClient struct {
	vpcs              map[string]*domain.VPCData
	subnets           map[string]*domain.SubnetData
	securityGroups    map[string]*domain.SecurityGroupData
	endpoints         map[string][]*domain.VPCEndpointData
	replicationGroups map[string]*domain.ReplicationGroupData
	functions         map[string]*domain.FunctionConfigData
	roles             map[string]*domain.RoleData

	invokeResponse  []byte
	invokeErr       error
	invokedPayloads [][]byte
}

func newMockAWSClient() *mockAWSClient {
	return &mockAWSClient{
		vpcs:              make(map[string]*domain.VPCData),
		subnets:           make(map[string]*domain.SubnetData),
		securityGroups:    make(map[string]*domain.SecurityGroupData),
		endpoints:         make(map[string][]*domain.VPCEndpointData),
		replicationGroups: make(map[string]*domain.ReplicationGroupData),
		functions:         make(map[string]*domain.FunctionConfigData),
		roles:             make(map[string]*domain.RoleData),
	}
}

func (m *mockAWSClient) GetVPC(ctx context.Context, vpcID string) (*domain.VPCData, error) {
	if v, ok := m.vpcs[vpcID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("vpc %s not found", vpcID)
}

func (m *mockAWSClient) GetSubnet(ctx context.Context, subnetID string) (*domain.SubnetData, error) {
	if v, ok := m.subnets[subnetID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("subnet %s not found", subnetID)
}

func (m *mockAWSClient) GetSecurityGroup(ctx context.Context, sgID string) (*domain.SecurityGroupData, error) {
	if v, ok := m.securityGroups[sgID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("security group %s not found", sgID)
}

func (m *mockAWSClient) GetVPCEndpointsByService(ctx context.Context, vpcID, serviceName string) ([]*domain.VPCEndpointData, error) {
	return m.endpoints[vpcID+":"+serviceName], nil
}

func (m *mockAWSClient) GetReplicationGroup(ctx context.Context, groupID string) (*domain.ReplicationGroupData, error) {
	if v, ok := m.replicationGroups[groupID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("replication group %s not found", groupID)
}

func (m *mockAWSClient) GetFunctionConfig(ctx context.Context, functionName string) (*domain.FunctionConfigData, error) {
	if v, ok := m.functions[functionName]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("function %s not found", functionName)
}

func (m *mockAWSClient) InvokeFunction(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	m.invokedPayloads = append(m.invokedPayloads, payload)
	if m.invokeErr != nil {
		return nil, m.invokeErr
	}
	return m.invokeResponse, nil
}

func (m *mockAWSClient) GetRole(ctx context.Context, roleARN string) (*domain.RoleData, error) {
	if v, ok := m.roles[roleARN]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("role %s not found", roleARN)
}

type mockAccountContext struct {
	client *mockAWSClient
}

func (m *mockAccountContext) AssumeRole(accountID string) (domain.AWSCredentials, error) {
	return domain.AWSCredentials{}, nil
}

func (m *mockAccountContext) GetClient(accountID string) (domain.AWSClient, error) {
	return m.client, nil
}
