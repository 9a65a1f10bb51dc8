package showcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// NetworkStack deploys the ShowCore VPC: public and private subnets across
// two availability zones, DNS support, and VPC endpoints. There is no NAT
// gateway unless explicitly enabled; the private subnets are isolated and
// reach AWS services through gateway and interface endpoints.
type NetworkStack struct {
	*Stack

	// VPC is the ShowCore VPC.
	VPC awsec2.Vpc

	// EndpointSecurityGroup guards the interface endpoints. It allows HTTPS
	// from within the VPC only.
	EndpointSecurityGroup awsec2.SecurityGroup

	// S3GatewayEndpoint routes S3 traffic from the private subnets.
	S3GatewayEndpoint awsec2.GatewayVpcEndpoint

	// DynamoDBGatewayEndpoint routes DynamoDB traffic from the private subnets.
	DynamoDBGatewayEndpoint awsec2.GatewayVpcEndpoint
}

// NewNetworkStack creates the ShowCore network stack.
func NewNetworkStack(scope constructs.Construct, id string, config StackConfig) *NetworkStack {
	s := &NetworkStack{
		Stack: newStack(scope, id, ComponentNetwork,
			"ShowCore Phase 1 - Network Infrastructure (VPC, Subnets, VPC Endpoints, No NAT Gateway)",
			config),
	}

	s.createVPC()
	s.createEndpointSecurityGroup()
	s.createInterfaceEndpoints()
	s.createGatewayEndpoints()
	s.addOutputs()

	return s
}

// createVPC creates the VPC with two public and two private /24 subnets.
func (s *NetworkStack) createVPC() {
	natGateways := 0
	if s.Config.EnableNatGateway {
		natGateways = 1
	}

	s.VPC = awsec2.NewVpc(s.Stack, jsii.String("VPC"), &awsec2.VpcProps{
		IpAddresses:        awsec2.IpAddresses_Cidr(jsii.String(s.Config.VpcCidr)),
		MaxAzs:             jsii.Number(2),
		NatGateways:        jsii.Number(float64(natGateways)),
		EnableDnsHostnames: jsii.Bool(true),
		EnableDnsSupport:   jsii.Bool(true),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				Name:       jsii.String("Public"),
				SubnetType: awsec2.SubnetType_PUBLIC,
				CidrMask:   jsii.Number(24),
			},
			{
				Name:       jsii.String("Private"),
				SubnetType: privateSubnetType(s.Config),
				CidrMask:   jsii.Number(24),
			},
		},
	})
}

// createEndpointSecurityGroup creates the security group shared by the
// interface endpoints.
func (s *NetworkStack) createEndpointSecurityGroup() {
	s.EndpointSecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("VpcEndpointSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.VPC,
		Description:      jsii.String("Security group for VPC Interface Endpoints"),
		AllowAllOutbound: jsii.Bool(true),
	})

	s.EndpointSecurityGroup.AddIngressRule(
		awsec2.Peer_Ipv4(jsii.String(s.Config.VpcCidr)),
		awsec2.Port_Tcp(jsii.Number(443)),
		jsii.String("Allow HTTPS from within the VPC"),
		jsii.Bool(false),
	)
}

// createInterfaceEndpoints creates interface endpoints for the essential
// services only. Each one costs money, so the list stays minimal: CloudWatch
// Logs and Monitoring for telemetry from the private subnets, and Systems
// Manager for Session Manager access.
func (s *NetworkStack) createInterfaceEndpoints() {
	subnets := &awsec2.SubnetSelection{SubnetType: privateSubnetType(s.Config)}
	securityGroups := &[]awsec2.ISecurityGroup{s.EndpointSecurityGroup}

	s.VPC.AddInterfaceEndpoint(jsii.String("CloudWatchLogsEndpoint"), &awsec2.InterfaceVpcEndpointOptions{
		Service:           awsec2.InterfaceVpcEndpointAwsService_CLOUDWATCH_LOGS(),
		PrivateDnsEnabled: jsii.Bool(true),
		SecurityGroups:    securityGroups,
		Subnets:           subnets,
	})

	s.VPC.AddInterfaceEndpoint(jsii.String("CloudWatchMonitoringEndpoint"), &awsec2.InterfaceVpcEndpointOptions{
		Service:           awsec2.InterfaceVpcEndpointAwsService_CLOUDWATCH_MONITORING(),
		PrivateDnsEnabled: jsii.Bool(true),
		SecurityGroups:    securityGroups,
		Subnets:           subnets,
	})

	s.VPC.AddInterfaceEndpoint(jsii.String("SsmEndpoint"), &awsec2.InterfaceVpcEndpointOptions{
		Service:           awsec2.InterfaceVpcEndpointAwsService_SSM(),
		PrivateDnsEnabled: jsii.Bool(true),
		SecurityGroups:    securityGroups,
		Subnets:           subnets,
	})
}

// createGatewayEndpoints creates the free gateway endpoints for S3 and
// DynamoDB.
func (s *NetworkStack) createGatewayEndpoints() {
	subnets := &[]*awsec2.SubnetSelection{{SubnetType: privateSubnetType(s.Config)}}

	s.S3GatewayEndpoint = s.VPC.AddGatewayEndpoint(jsii.String("S3GatewayEndpoint"), &awsec2.GatewayVpcEndpointOptions{
		Service: awsec2.GatewayVpcEndpointAwsService_S3(),
		Subnets: subnets,
	})

	s.DynamoDBGatewayEndpoint = s.VPC.AddGatewayEndpoint(jsii.String("DynamoDBGatewayEndpoint"), &awsec2.GatewayVpcEndpointOptions{
		Service: awsec2.GatewayVpcEndpointAwsService_DYNAMODB(),
		Subnets: subnets,
	})
}

// addOutputs exports the VPC and subnet IDs for the dependent stacks.
func (s *NetworkStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("VpcId"), &awscdk.CfnOutputProps{
		Value:       s.VPC.VpcId(),
		Description: jsii.String("ShowCore VPC ID"),
		ExportName:  jsii.String("ShowCoreVpcId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("PublicSubnetIds"), &awscdk.CfnOutputProps{
		Value:       awscdk.Fn_Join(jsii.String(","), subnetIDs(s.VPC.PublicSubnets())),
		Description: jsii.String("ShowCore public subnet IDs"),
		ExportName:  jsii.String("ShowCorePublicSubnetIds"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("PrivateSubnetIds"), &awscdk.CfnOutputProps{
		Value:       awscdk.Fn_Join(jsii.String(","), subnetIDs(s.PrivateSubnets())),
		Description: jsii.String("ShowCore private subnet IDs"),
		ExportName:  jsii.String("ShowCorePrivateSubnetIds"),
	})
}

// PrivateSubnets returns the private tier subnets. They are isolated subnets
// unless a NAT gateway was enabled.
func (s *NetworkStack) PrivateSubnets() *[]awsec2.ISubnet {
	if s.Config.EnableNatGateway {
		return s.VPC.PrivateSubnets()
	}
	return s.VPC.IsolatedSubnets()
}

// privateSubnetType returns the subnet type used for the private tier.
func privateSubnetType(config StackConfig) awsec2.SubnetType {
	if config.EnableNatGateway {
		return awsec2.SubnetType_PRIVATE_WITH_EGRESS
	}
	return awsec2.SubnetType_PRIVATE_ISOLATED
}

// subnetIDs collects the subnet IDs from a subnet list.
func subnetIDs(subnets *[]awsec2.ISubnet) *[]*string {
	ids := make([]*string, 0, len(*subnets))
	for _, subnet := range *subnets {
		ids = append(ids, subnet.SubnetId())
	}
	return &ids
}
