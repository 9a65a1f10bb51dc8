package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
)

func newSSMAccessTestStack(config StackConfig) *SSMAccessStack {
	app := awscdk.NewApp(nil)
	network := NewNetworkStack(app, "TestNetworkStack", config)
	security := NewSecurityStack(app, "TestSecurityStack", network.VPC, config)
	return NewSSMAccessStack(app, "TestSSMAccessStack",
		network.VPC, security.RdsSecurityGroup, security.ElastiCacheSecurityGroup, config)
}

func TestSSMAccessStackInstance(t *testing.T) {
	stack := newSSMAccessTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::EC2::Instance"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::EC2::Instance"), map[string]interface{}{
		"InstanceType": "t3.nano",
	})
}

func TestSSMAccessStackInstanceRole(t *testing.T) {
	stack := newSSMAccessTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::IAM::Role"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::IAM::Role"), map[string]interface{}{
		"AssumeRolePolicyDocument": assertions.Match_ObjectLike(&map[string]interface{}{
			"Statement": []interface{}{
				map[string]interface{}{
					"Action":    "sts:AssumeRole",
					"Effect":    "Allow",
					"Principal": map[string]interface{}{"Service": "ec2.amazonaws.com"},
				},
			},
		}),
		// Session Manager core plus CloudWatch session logging
		"ManagedPolicyArns": assertions.Match_AnyValue(),
	})
	template.ResourceCountIs(jsii.String("AWS::IAM::InstanceProfile"), jsii.Number(1))
}

func TestSSMAccessStackSecurityGroupHasNoIngress(t *testing.T) {
	stack := newSSMAccessTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::EC2::SecurityGroup"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::EC2::SecurityGroup"), map[string]interface{}{
		"GroupDescription": "Security group for ShowCore SSM access instance",
		"SecurityGroupIngress": assertions.Match_Absent(),
		"SecurityGroupEgress": []interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"CidrIp":     "0.0.0.0/0",
				"IpProtocol": "-1",
			}),
		},
	})
}

func TestSSMAccessStackOutputs(t *testing.T) {
	stack := newSSMAccessTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	for logicalID, exportName := range map[string]string{
		"InstanceId":      "ShowCoreSSMAccessInstanceId",
		"SecurityGroupId": "ShowCoreSSMAccessSecurityGroupId",
	} {
		template.HasOutput(jsii.String(logicalID), map[string]interface{}{
			"Export": map[string]interface{}{"Name": exportName},
		})
	}

	template.HasOutput(jsii.String("PortForwardingExample"), map[string]interface{}{
		"Description": "Example Session Manager port forwarding command",
	})
}
