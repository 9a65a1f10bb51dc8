package showcore

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// SSMAccessStack deploys a t3.nano instance in a private subnet as a
// Session Manager port forwarding target for RDS and Redis. No SSH keys, no
// public IP, no open inbound ports; sessions ride outbound HTTPS through the
// SSM VPC endpoints and are logged to CloudWatch.
type SSMAccessStack struct {
	*Stack

	// VPC is the ShowCore VPC.
	VPC awsec2.IVpc

	// RdsSecurityGroup and RedisSecurityGroup are the target groups. Ingress
	// from the instance is granted after deployment rather than here, which
	// would make this stack and the security stack depend on each other.
	RdsSecurityGroup   awsec2.ISecurityGroup
	RedisSecurityGroup awsec2.ISecurityGroup

	// InstanceRole grants Session Manager and CloudWatch agent access.
	InstanceRole awsiam.Role

	// SecurityGroup has no inbound rules.
	SecurityGroup awsec2.SecurityGroup

	// Instance is the port forwarding target.
	Instance awsec2.Instance
}

// NewSSMAccessStack creates the optional Session Manager access stack.
func NewSSMAccessStack(scope constructs.Construct, id string, vpc awsec2.IVpc, rdsSecurityGroup, redisSecurityGroup awsec2.ISecurityGroup, config StackConfig) *SSMAccessStack {
	s := &SSMAccessStack{
		Stack: newStack(scope, id, ComponentSSMAccess,
			"ShowCore Phase 1 - SSM Session Manager Access Instance",
			config),
		VPC:                vpc,
		RdsSecurityGroup:   rdsSecurityGroup,
		RedisSecurityGroup: redisSecurityGroup,
	}

	s.createInstanceRole()
	s.createSecurityGroup()
	s.createInstance()
	s.addOutputs()

	return s
}

// createInstanceRole grants the minimum for Session Manager plus CloudWatch
// session logging.
func (s *SSMAccessStack) createInstanceRole() {
	s.InstanceRole = awsiam.NewRole(s.Stack, jsii.String("InstanceRole"), &awsiam.RoleProps{
		AssumedBy:   awsiam.NewServicePrincipal(jsii.String("ec2.amazonaws.com"), nil),
		Description: jsii.String("IAM role for ShowCore SSM access instance"),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("AmazonSSMManagedInstanceCore")),
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("CloudWatchAgentServerPolicy")),
		},
	})
}

// createSecurityGroup creates the instance security group. Session Manager
// needs outbound HTTPS to the SSM endpoints and nothing inbound.
func (s *SSMAccessStack) createSecurityGroup() {
	s.SecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("SecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.VPC,
		Description:      jsii.String("Security group for ShowCore SSM access instance"),
		AllowAllOutbound: jsii.Bool(true),
	})
}

// createInstance launches the t3.nano in a private isolated subnet.
func (s *SSMAccessStack) createInstance() {
	image := awsec2.MachineImage_LatestAmazonLinux2023(&awsec2.AmazonLinux2023ImageSsmParameterProps{
		Edition: awsec2.AmazonLinuxEdition_STANDARD,
		CpuType: awsec2.AmazonLinuxCpuType_X86_64,
	})

	s.Instance = awsec2.NewInstance(s.Stack, jsii.String("Instance"), &awsec2.InstanceProps{
		InstanceType: awsec2.InstanceType_Of(awsec2.InstanceClass_T3, awsec2.InstanceSize_NANO),
		MachineImage: image,
		Vpc:          s.VPC,
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED,
		},
		SecurityGroup: s.SecurityGroup,
		Role:          s.InstanceRole,
	})
	s.Instance.Node().AddMetadata(jsii.String("Name"), s.MustResourceName("ssm-access"), nil)
}

// addOutputs exports the instance and security group IDs and prints a ready
// to paste port forwarding command.
func (s *SSMAccessStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("InstanceId"), &awscdk.CfnOutputProps{
		Value:       s.Instance.InstanceId(),
		Description: jsii.String("SSM access instance ID for port forwarding"),
		ExportName:  jsii.String("ShowCoreSSMAccessInstanceId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("SecurityGroupId"), &awscdk.CfnOutputProps{
		Value:       s.SecurityGroup.SecurityGroupId(),
		Description: jsii.String("Security group ID for SSM access instance"),
		ExportName:  jsii.String("ShowCoreSSMAccessSecurityGroupId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("PortForwardingExample"), &awscdk.CfnOutputProps{
		Value: jsii.String(fmt.Sprintf(
			"aws ssm start-session --target %s --document-name AWS-StartPortForwardingSessionToRemoteHost",
			*s.Instance.InstanceId())),
		Description: jsii.String("Example Session Manager port forwarding command"),
	})
}
