package showcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/cloudformationinclude"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// CfnIncludeStack wraps an existing CloudFormation template with CDK.
// This allows keeping a legacy ShowCore template while benefiting from
// CDK's deployment tooling and the ability to add CDK constructs on top.
type CfnIncludeStack struct {
	awscdk.Stack

	// Template is the included CloudFormation template.
	Template cloudformationinclude.CfnInclude
}

// CfnIncludeConfig configures the CfnInclude stack.
type CfnIncludeConfig struct {
	// StackName is the CloudFormation stack name.
	StackName string

	// Description is the CloudFormation stack description.
	Description string

	// TemplateFile is the path to the CloudFormation template file.
	// Supports JSON or YAML format.
	TemplateFile string

	// Parameters are CloudFormation parameter overrides.
	// Keys are parameter names, values are the override values.
	Parameters map[string]string

	// PreserveLogicalIds keeps the original logical IDs from the template.
	// The builder defaults this to true, which is recommended when
	// importing an existing stack.
	PreserveLogicalIds bool

	// Tags are AWS resource tags applied to all resources.
	Tags map[string]string
}

// NewCfnIncludeStack creates a CDK stack that wraps an existing CloudFormation template.
//
// This approach is useful when:
//   - You have existing CloudFormation templates you want to keep using
//   - You want to gradually migrate from CloudFormation to CDK
//   - You need to import an existing CloudFormation stack
//
// Example:
//
//	app := showcore.NewApp()
//	stack := showcore.NewCfnIncludeStack(app, showcore.CfnIncludeConfig{
//	    StackName:    "showcore-legacy",
//	    TemplateFile: "legacy-stack.yaml",
//	    Parameters: map[string]string{
//	        "Environment": "production",
//	    },
//	})
//	showcore.Synth(app)
func NewCfnIncludeStack(scope constructs.Construct, config CfnIncludeConfig) *CfnIncludeStack {
	stack := awscdk.NewStack(scope, jsii.String(config.StackName), &awscdk.StackProps{
		StackName:   jsii.String(config.StackName),
		Description: jsii.String(config.Description),
		Tags:        convertTags(config.Tags),
	})

	var parameters *map[string]interface{}
	if len(config.Parameters) > 0 {
		params := make(map[string]interface{}, len(config.Parameters))
		for name, value := range config.Parameters {
			params[name] = value
		}
		parameters = &params
	}

	template := cloudformationinclude.NewCfnInclude(stack, jsii.String("Template"), &cloudformationinclude.CfnIncludeProps{
		TemplateFile:       jsii.String(config.TemplateFile),
		Parameters:         parameters,
		PreserveLogicalIds: jsii.Bool(config.PreserveLogicalIds),
	})

	return &CfnIncludeStack{
		Stack:    stack,
		Template: template,
	}
}

// GetResource retrieves a resource from the included template by logical ID.
// Returns the resource as a CfnResource that can be modified.
func (s *CfnIncludeStack) GetResource(logicalId string) awscdk.CfnResource {
	return s.Template.GetResource(jsii.String(logicalId))
}

// GetOutput retrieves an output from the included template by logical ID.
func (s *CfnIncludeStack) GetOutput(logicalId string) awscdk.CfnOutput {
	return s.Template.GetOutput(jsii.String(logicalId))
}

// GetNestedStack retrieves a nested stack from the included template.
func (s *CfnIncludeStack) GetNestedStack(logicalId string) *cloudformationinclude.IncludedNestedStack {
	return s.Template.GetNestedStack(jsii.String(logicalId))
}

// CfnIncludeBuilder provides a fluent interface for building CfnInclude stacks.
type CfnIncludeBuilder struct {
	config CfnIncludeConfig
}

// NewCfnIncludeBuilder creates a new CfnInclude builder.
func NewCfnIncludeBuilder(stackName, templateFile string) *CfnIncludeBuilder {
	return &CfnIncludeBuilder{
		config: CfnIncludeConfig{
			StackName:          stackName,
			TemplateFile:       templateFile,
			Parameters:         make(map[string]string),
			PreserveLogicalIds: true,
			Tags:               make(map[string]string),
		},
	}
}

// WithDescription sets the stack description.
func (b *CfnIncludeBuilder) WithDescription(description string) *CfnIncludeBuilder {
	b.config.Description = description
	return b
}

// WithParameter adds a parameter override.
func (b *CfnIncludeBuilder) WithParameter(name, value string) *CfnIncludeBuilder {
	b.config.Parameters[name] = value
	return b
}

// WithParameters adds multiple parameter overrides.
func (b *CfnIncludeBuilder) WithParameters(params map[string]string) *CfnIncludeBuilder {
	for k, v := range params {
		b.config.Parameters[k] = v
	}
	return b
}

// WithTag adds a tag.
func (b *CfnIncludeBuilder) WithTag(key, value string) *CfnIncludeBuilder {
	b.config.Tags[key] = value
	return b
}

// WithTags adds multiple tags.
func (b *CfnIncludeBuilder) WithTags(tags map[string]string) *CfnIncludeBuilder {
	for k, v := range tags {
		b.config.Tags[k] = v
	}
	return b
}

// WithPreserveLogicalIds sets whether to preserve logical IDs.
func (b *CfnIncludeBuilder) WithPreserveLogicalIds(preserve bool) *CfnIncludeBuilder {
	b.config.PreserveLogicalIds = preserve
	return b
}

// Build creates the CfnInclude stack.
func (b *CfnIncludeBuilder) Build(scope constructs.Construct) *CfnIncludeStack {
	return NewCfnIncludeStack(scope, b.config)
}
