package domain

import "time"

type VPCData struct {
	ID        string
	CIDRBlock string
}

type SubnetData struct {
	ID               string
	VPCID            string
	CIDRBlock        string
	AvailabilityZone string
}

type SecurityGroupData struct {
	ID            string
	VPCID         string
	InboundRules  []SecurityGroupRule
	OutboundRules []SecurityGroupRule
}

type SecurityGroupRule struct {
	Protocol                 string
	FromPort                 int
	ToPort                   int
	CIDRBlocks               []string
	ReferencedSecurityGroups []string
}

type VPCEndpointData struct {
	ID             string
	VPCID          string
	ServiceName    string
	Type           string
	State          string
	SubnetIDs      []string
	SecurityGroups []string
}

type ReplicationGroupData struct {
	ID              string
	Status          string
	Engine          string
	PrimaryEndpoint string
	PrimaryPort     int
	Nodes           []ReplicationGroupNodeData
	SecurityGroups  []string
	SubnetIDs       []string
	VPCID           string
}

type ReplicationGroupNodeData struct {
	ID       string
	Endpoint string
	Port     int
}

type FunctionConfigData struct {
	Name           string
	ARN            string
	RoleARN        string
	Runtime        string
	TimeoutSeconds int
	Environment    map[string]string
	VPCID          string
	SubnetIDs      []string
	SubnetCIDRs    []string
	SecurityGroups []string
}

type RoleData struct {
	Name             string
	ARN              string
	AttachedPolicies []AttachedPolicy
	InlinePolicies   []string
}

type AttachedPolicy struct {
	Name string
	ARN  string
}

type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}
