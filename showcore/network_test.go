package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
)

func TestNetworkStack(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewNetworkStack(app, "TestNetworkStack", testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::EC2::VPC"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"CidrBlock":          "10.0.0.0/16",
		"EnableDnsHostnames": true,
		"EnableDnsSupport":   true,
	})

	// Two public and two isolated subnets across two AZs, each with its own
	// route table.
	template.ResourceCountIs(jsii.String("AWS::EC2::Subnet"), jsii.Number(4))
	template.ResourceCountIs(jsii.String("AWS::EC2::RouteTable"), jsii.Number(4))
	template.ResourceCountIs(jsii.String("AWS::EC2::InternetGateway"), jsii.Number(1))

	// No NAT gateway unless explicitly enabled
	template.ResourceCountIs(jsii.String("AWS::EC2::NatGateway"), jsii.Number(0))
}

func TestNetworkStackWithNatGateway(t *testing.T) {
	app := awscdk.NewApp(nil)

	config := testConfig()
	config.EnableNatGateway = true
	stack := NewNetworkStack(app, "TestNetworkStack", config)
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::EC2::NatGateway"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::EC2::Subnet"), jsii.Number(4))
}

func TestNetworkStackCustomCidr(t *testing.T) {
	app := awscdk.NewApp(nil)

	config := testConfig()
	config.VpcCidr = "10.1.0.0/16"
	stack := NewNetworkStack(app, "TestNetworkStack", config)
	template := assertions.Template_FromStack(stack, nil)

	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"CidrBlock": "10.1.0.0/16",
	})
	template.HasResourceProperties(jsii.String("AWS::EC2::SecurityGroup"), map[string]interface{}{
		"SecurityGroupIngress": []interface{}{
			map[string]interface{}{
				"CidrIp":      "10.1.0.0/16",
				"Description": "Allow HTTPS from within the VPC",
				"FromPort":    443,
				"IpProtocol":  "tcp",
				"ToPort":      443,
			},
		},
	})
}

func TestNetworkStackVpcEndpoints(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewNetworkStack(app, "TestNetworkStack", testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::EC2::VPCEndpoint"), jsii.Number(5))

	interfaceEndpoints := template.FindResources(jsii.String("AWS::EC2::VPCEndpoint"), map[string]interface{}{
		"Properties": map[string]interface{}{
			"VpcEndpointType": "Interface",
		},
	})
	assert.Len(t, *interfaceEndpoints, 3)

	gatewayEndpoints := template.FindResources(jsii.String("AWS::EC2::VPCEndpoint"), map[string]interface{}{
		"Properties": map[string]interface{}{
			"VpcEndpointType": "Gateway",
		},
	})
	assert.Len(t, *gatewayEndpoints, 2)

	// Interface endpoints resolve privately and sit behind the shared
	// endpoint security group.
	template.HasResourceProperties(jsii.String("AWS::EC2::VPCEndpoint"), map[string]interface{}{
		"VpcEndpointType":   "Interface",
		"PrivateDnsEnabled": true,
	})
}

func TestNetworkStackOutputs(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewNetworkStack(app, "TestNetworkStack", testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.HasOutput(jsii.String("VpcId"), map[string]interface{}{
		"Export": map[string]interface{}{"Name": "ShowCoreVpcId"},
	})
	template.HasOutput(jsii.String("PublicSubnetIds"), map[string]interface{}{
		"Export": map[string]interface{}{"Name": "ShowCorePublicSubnetIds"},
	})
	template.HasOutput(jsii.String("PrivateSubnetIds"), map[string]interface{}{
		"Export": map[string]interface{}{"Name": "ShowCorePrivateSubnetIds"},
	})
}

func TestNetworkStackAppliesStandardTags(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewNetworkStack(app, "TestNetworkStack", testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"Tags": assertions.Match_ArrayWith(&[]interface{}{
			map[string]interface{}{"Key": "Component", "Value": "Network"},
			map[string]interface{}{"Key": "Environment", "Value": "production"},
			map[string]interface{}{"Key": "Project", "Value": "ShowCore"},
		}),
	})
}
