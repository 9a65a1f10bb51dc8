package showcore

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Context keys read by ConfigFromContext. Set them in cdk.json or with
// "cdk deploy -c key=value".
const (
	ContextEnvironment        = "environment"
	ContextAccount            = "account"
	ContextRegion             = "region"
	ContextVpcCidr            = "vpc_cidr"
	ContextEnableNatGateway   = "enable_nat_gateway"
	ContextBillingThresholds  = "billing_alert_thresholds"
	ContextAlarmEmails        = "alarm_email_addresses"
	ContextRdsInstanceID      = "rds_instance_id"
	ContextCacheClusterID     = "elasticache_cluster_id"
	ContextStaticAssetsBucket = "s3_static_assets_bucket"
	ContextDistributionID     = "cloudfront_distribution_id"
	ContextVpcEndpointID      = "vpc_endpoint_id"
	ContextEnableSSMAccess    = "enable_ssm_access"
	ContextEnableConfigRules  = "enable_config_rules"
)

// Defaults applied by StackConfig.ApplyDefaults.
const (
	DefaultEnvironment        = EnvironmentProduction
	DefaultRegion             = "us-east-1"
	DefaultVpcCidr            = "10.0.0.0/16"
	DefaultRdsInstanceID      = "showcore-db"
	DefaultCacheClusterID     = "showcore-redis"
	DefaultStaticAssetsBucket = "showcore-static-assets"
	DefaultDistributionID     = "DISTRIBUTION_ID"
	DefaultVpcEndpointID      = "vpce-placeholder"
)

// DefaultBillingThresholds are the billing alarm thresholds in USD.
var DefaultBillingThresholds = []float64{50, 100}

// StackConfig is the deployment configuration shared by all ShowCore stacks.
type StackConfig struct {
	// Environment is the deployment environment: production, staging, or
	// development. Matching is case-insensitive.
	Environment string `json:"environment" yaml:"environment"`

	// Account is the AWS account ID. Leave empty for environment-agnostic
	// synthesis; account-derived names then stay unresolved tokens.
	Account string `json:"account" yaml:"account"`

	// Region is the AWS region.
	Region string `json:"region" yaml:"region"`

	// VpcCidr is the CIDR block for the VPC.
	VpcCidr string `json:"vpc_cidr" yaml:"vpc_cidr"`

	// EnableNatGateway provisions a NAT gateway for the private subnets.
	// Off by default: the private subnets are isolated and reach AWS
	// services through VPC endpoints instead.
	EnableNatGateway bool `json:"enable_nat_gateway" yaml:"enable_nat_gateway"`

	// BillingAlertThresholds are the billing alarm thresholds in USD.
	BillingAlertThresholds []float64 `json:"billing_alert_thresholds" yaml:"billing_alert_thresholds"`

	// AlarmEmailAddresses are subscribed to every alert topic.
	AlarmEmailAddresses []string `json:"alarm_email_addresses" yaml:"alarm_email_addresses"`

	// RdsInstanceID is the database instance identifier monitored by the
	// standalone monitoring stack.
	RdsInstanceID string `json:"rds_instance_id" yaml:"rds_instance_id"`

	// ElastiCacheClusterID is the cache cluster identifier monitored by the
	// standalone monitoring stack.
	ElastiCacheClusterID string `json:"elasticache_cluster_id" yaml:"elasticache_cluster_id"`

	// StaticAssetsBucket is the bucket name monitored by the S3 alarms.
	StaticAssetsBucket string `json:"s3_static_assets_bucket" yaml:"s3_static_assets_bucket"`

	// CloudFrontDistributionID is the distribution charted on the dashboard.
	// The default is a placeholder; set it after the CDN stack is deployed.
	CloudFrontDistributionID string `json:"cloudfront_distribution_id" yaml:"cloudfront_distribution_id"`

	// VpcEndpointID is the interface endpoint charted on the dashboard.
	// The default is a placeholder; set it after the network stack is deployed.
	VpcEndpointID string `json:"vpc_endpoint_id" yaml:"vpc_endpoint_id"`

	// EnableSSMAccess deploys the Session Manager access instance stack.
	EnableSSMAccess bool `json:"enable_ssm_access" yaml:"enable_ssm_access"`

	// EnableConfigRules deploys the AWS Config recorder and the managed
	// rules checking tagging and S3 encryption.
	EnableConfigRules bool `json:"enable_config_rules" yaml:"enable_config_rules"`

	// Tags are additional stack-level tags.
	Tags map[string]string `json:"tags" yaml:"tags"`
}

// ApplyDefaults fills in defaults for unset fields.
func (c *StackConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.VpcCidr == "" {
		c.VpcCidr = DefaultVpcCidr
	}
	if len(c.BillingAlertThresholds) == 0 {
		c.BillingAlertThresholds = append([]float64(nil), DefaultBillingThresholds...)
	}
	if c.RdsInstanceID == "" {
		c.RdsInstanceID = DefaultRdsInstanceID
	}
	if c.ElastiCacheClusterID == "" {
		c.ElastiCacheClusterID = DefaultCacheClusterID
	}
	if c.StaticAssetsBucket == "" {
		c.StaticAssetsBucket = DefaultStaticAssetsBucket
	}
	if c.CloudFrontDistributionID == "" {
		c.CloudFrontDistributionID = DefaultDistributionID
	}
	if c.VpcEndpointID == "" {
		c.VpcEndpointID = DefaultVpcEndpointID
	}
}

// Validate checks the configuration for values that would synthesize a
// broken or surprising deployment.
func (c *StackConfig) Validate() error {
	if err := ValidateEnvironment(c.Environment); err != nil {
		return err
	}

	if _, _, err := net.ParseCIDR(c.VpcCidr); err != nil {
		return fmt.Errorf("invalid vpc_cidr %q: %w", c.VpcCidr, err)
	}

	for _, threshold := range c.BillingAlertThresholds {
		if threshold <= 0 {
			return fmt.Errorf("billing alert threshold must be positive, got %v", threshold)
		}
	}

	for _, email := range c.AlarmEmailAddresses {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("invalid alarm email address %q", email)
		}
	}

	return nil
}

// Env returns the CDK environment, or nil when no account is pinned.
func (c *StackConfig) Env() *awscdk.Environment {
	if c.Account == "" {
		return nil
	}
	return &awscdk.Environment{
		Account: jsii.String(c.Account),
		Region:  jsii.String(c.Region),
	}
}

// ConfigFromContext builds a StackConfig from CDK context values and applies
// defaults. Unknown or malformed context values are ignored.
func ConfigFromContext(app awscdk.App) StackConfig {
	node := app.Node()

	config := StackConfig{
		Environment:              contextString(node, ContextEnvironment),
		Account:                  contextString(node, ContextAccount),
		Region:                   contextString(node, ContextRegion),
		VpcCidr:                  contextString(node, ContextVpcCidr),
		EnableNatGateway:         contextBool(node, ContextEnableNatGateway),
		BillingAlertThresholds:   contextFloats(node, ContextBillingThresholds),
		AlarmEmailAddresses:      contextStrings(node, ContextAlarmEmails),
		RdsInstanceID:            contextString(node, ContextRdsInstanceID),
		ElastiCacheClusterID:     contextString(node, ContextCacheClusterID),
		StaticAssetsBucket:       contextString(node, ContextStaticAssetsBucket),
		CloudFrontDistributionID: contextString(node, ContextDistributionID),
		VpcEndpointID:            contextString(node, ContextVpcEndpointID),
		EnableSSMAccess:          contextBool(node, ContextEnableSSMAccess),
		EnableConfigRules:        contextBool(node, ContextEnableConfigRules),
	}

	config.ApplyDefaults()
	return config
}

func contextString(node constructs.Node, key string) string {
	s, _ := node.TryGetContext(jsii.String(key)).(string)
	return s
}

func contextBool(node constructs.Node, key string) bool {
	switch v := node.TryGetContext(jsii.String(key)).(type) {
	case bool:
		return v
	case string:
		// Values passed with -c arrive as strings
		return v == "true" || v == "1"
	default:
		return false
	}
}

func contextFloats(node constructs.Node, key string) []float64 {
	raw, ok := node.TryGetContext(jsii.String(key)).([]interface{})
	if !ok {
		return nil
	}

	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			out = append(out, v)
		case int:
			out = append(out, float64(v))
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				out = append(out, f)
			}
		}
	}
	return out
}

func contextStrings(node constructs.Node, key string) []string {
	raw, ok := node.TryGetContext(jsii.String(key)).([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
