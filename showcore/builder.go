package showcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
)

// ConfigBuilder provides a fluent interface for building ShowCore
// configurations.
type ConfigBuilder struct {
	config StackConfig
}

// NewConfigBuilder creates a new configuration builder for an environment.
func NewConfigBuilder(environment string) *ConfigBuilder {
	return &ConfigBuilder{
		config: StackConfig{
			Environment: environment,
			Tags:        make(map[string]string),
		},
	}
}

// WithAccount pins the deployment to an account and region.
func (b *ConfigBuilder) WithAccount(account, region string) *ConfigBuilder {
	b.config.Account = account
	b.config.Region = region
	return b
}

// WithRegion sets the deployment region.
func (b *ConfigBuilder) WithRegion(region string) *ConfigBuilder {
	b.config.Region = region
	return b
}

// WithVpcCidr sets the VPC CIDR block.
func (b *ConfigBuilder) WithVpcCidr(cidr string) *ConfigBuilder {
	b.config.VpcCidr = cidr
	return b
}

// WithNatGateway provisions a NAT gateway for the private subnets.
func (b *ConfigBuilder) WithNatGateway() *ConfigBuilder {
	b.config.EnableNatGateway = true
	return b
}

// WithBillingThresholds replaces the billing alarm thresholds.
func (b *ConfigBuilder) WithBillingThresholds(thresholds ...float64) *ConfigBuilder {
	b.config.BillingAlertThresholds = thresholds
	return b
}

// WithAlarmEmails subscribes email addresses to every alert topic.
func (b *ConfigBuilder) WithAlarmEmails(emails ...string) *ConfigBuilder {
	b.config.AlarmEmailAddresses = append(b.config.AlarmEmailAddresses, emails...)
	return b
}

// WithRdsInstanceID sets the database instance identifier watched by the
// monitoring stack.
func (b *ConfigBuilder) WithRdsInstanceID(id string) *ConfigBuilder {
	b.config.RdsInstanceID = id
	return b
}

// WithElastiCacheClusterID sets the cache cluster identifier watched by the
// monitoring stack.
func (b *ConfigBuilder) WithElastiCacheClusterID(id string) *ConfigBuilder {
	b.config.ElastiCacheClusterID = id
	return b
}

// WithStaticAssetsBucket sets the bucket name watched by the S3 alarms.
func (b *ConfigBuilder) WithStaticAssetsBucket(name string) *ConfigBuilder {
	b.config.StaticAssetsBucket = name
	return b
}

// WithCloudFrontDistributionID sets the distribution charted on the
// dashboard.
func (b *ConfigBuilder) WithCloudFrontDistributionID(id string) *ConfigBuilder {
	b.config.CloudFrontDistributionID = id
	return b
}

// WithVpcEndpointID sets the interface endpoint charted on the dashboard.
func (b *ConfigBuilder) WithVpcEndpointID(id string) *ConfigBuilder {
	b.config.VpcEndpointID = id
	return b
}

// WithSSMAccess deploys the Session Manager access stack.
func (b *ConfigBuilder) WithSSMAccess() *ConfigBuilder {
	b.config.EnableSSMAccess = true
	return b
}

// WithConfigRules deploys the AWS Config recorder and managed rules.
func (b *ConfigBuilder) WithConfigRules() *ConfigBuilder {
	b.config.EnableConfigRules = true
	return b
}

// WithTags adds stack level tags.
func (b *ConfigBuilder) WithTags(tags map[string]string) *ConfigBuilder {
	for k, v := range tags {
		b.config.Tags[k] = v
	}
	return b
}

// WithTag adds a single stack level tag.
func (b *ConfigBuilder) WithTag(key, value string) *ConfigBuilder {
	b.config.Tags[key] = value
	return b
}

// Config returns the current configuration.
func (b *ConfigBuilder) Config() StackConfig {
	return b.config
}

// Validate validates the current configuration.
func (b *ConfigBuilder) Validate() error {
	b.config.ApplyDefaults()
	return b.config.Validate()
}

// Build creates the ShowCore stacks.
func (b *ConfigBuilder) Build(scope constructs.Construct) *Stacks {
	return BuildStacks(scope, b.config)
}

// NewApp creates a new CDK app with common settings.
func NewApp() awscdk.App {
	return awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"@aws-cdk/core:newStyleStackSynthesis": true,
		},
	})
}

// Synth synthesizes the CDK app to CloudFormation templates.
func Synth(app awscdk.App) {
	app.Synth(nil)
}
