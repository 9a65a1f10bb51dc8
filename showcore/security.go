package showcore

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudtrail"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsconfig"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// SecurityStack deploys the ShowCore security groups and the audit trail.
// The security groups follow a tiered model: only the application tier may
// reach the database and cache ports. CloudTrail writes to a dedicated
// bucket with Glacier transition and expiration lifecycle rules.
//
// When EnableConfigRules is set it also deploys an AWS Config recorder with
// managed rules checking required tags and S3 encryption.
type SecurityStack struct {
	*Stack

	// VPC is the ShowCore VPC the security groups belong to.
	VPC awsec2.IVpc

	// AppSecurityGroup is attached to the application tier. The database and
	// cache security groups admit traffic from it only.
	AppSecurityGroup awsec2.SecurityGroup

	// RdsSecurityGroup guards the RDS instance. PostgreSQL from the
	// application tier only.
	RdsSecurityGroup awsec2.SecurityGroup

	// ElastiCacheSecurityGroup guards the Redis cluster. Redis from the
	// application tier only.
	ElastiCacheSecurityGroup awsec2.SecurityGroup

	// CloudTrailBucket stores the audit logs.
	CloudTrailBucket awss3.Bucket

	// Trail is the multi-region audit trail.
	Trail awscloudtrail.Trail
}

// NewSecurityStack creates the ShowCore security stack.
func NewSecurityStack(scope constructs.Construct, id string, vpc awsec2.IVpc, config StackConfig) *SecurityStack {
	s := &SecurityStack{
		Stack: newStack(scope, id, ComponentSecurity,
			"ShowCore Phase 1 - Security Groups, CloudTrail, and Audit Logging",
			config),
		VPC: vpc,
	}

	s.createSecurityGroups()
	s.createCloudTrailBucket()
	s.createTrail()
	if config.EnableConfigRules {
		s.createConfigRules()
	}
	s.addOutputs()

	return s
}

// createSecurityGroups creates the tiered security groups. Database and
// cache ports are never open to the internet; they admit the application
// security group only.
func (s *SecurityStack) createSecurityGroups() {
	s.AppSecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("AppSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.VPC,
		Description:      jsii.String("Security group for ShowCore application tier"),
		AllowAllOutbound: jsii.Bool(true),
	})

	s.RdsSecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("RdsSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.VPC,
		Description:      jsii.String("Security group for ShowCore RDS PostgreSQL"),
		AllowAllOutbound: jsii.Bool(false),
	})
	s.RdsSecurityGroup.AddIngressRule(
		s.AppSecurityGroup,
		awsec2.Port_Tcp(jsii.Number(5432)),
		jsii.String("Allow PostgreSQL from application tier"),
		jsii.Bool(false),
	)

	s.ElastiCacheSecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("ElastiCacheSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.VPC,
		Description:      jsii.String("Security group for ShowCore ElastiCache Redis"),
		AllowAllOutbound: jsii.Bool(false),
	})
	s.ElastiCacheSecurityGroup.AddIngressRule(
		s.AppSecurityGroup,
		awsec2.Port_Tcp(jsii.Number(6379)),
		jsii.String("Allow Redis from application tier"),
		jsii.Bool(false),
	)
}

// createCloudTrailBucket creates the audit log bucket. Logs move to Glacier
// after 90 days and are deleted after a year.
func (s *SecurityStack) createCloudTrailBucket() {
	s.CloudTrailBucket = awss3.NewBucket(s.Stack, jsii.String("CloudTrailBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(fmt.Sprintf("showcore-cloudtrail-logs-%s", *s.Account())),
		Versioned:         jsii.Bool(true),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Id:      jsii.String("TransitionOldLogsToGlacier"),
				Enabled: jsii.Bool(true),
				Transitions: &[]*awss3.Transition{
					{
						StorageClass:    awss3.StorageClass_GLACIER(),
						TransitionAfter: awscdk.Duration_Days(jsii.Number(90)),
					},
				},
			},
			{
				Id:         jsii.String("DeleteOldLogs"),
				Enabled:    jsii.Bool(true),
				Expiration: awscdk.Duration_Days(jsii.Number(365)),
			},
		},
	})

	// CloudTrail requires these exact permissions on its log bucket
	s.CloudTrailBucket.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Sid:        jsii.String("AWSCloudTrailAclCheck"),
		Effect:     awsiam.Effect_ALLOW,
		Principals: &[]awsiam.IPrincipal{awsiam.NewServicePrincipal(jsii.String("cloudtrail.amazonaws.com"), nil)},
		Actions:    jsii.Strings("s3:GetBucketAcl"),
		Resources:  &[]*string{s.CloudTrailBucket.BucketArn()},
	}))

	s.CloudTrailBucket.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Sid:        jsii.String("AWSCloudTrailWrite"),
		Effect:     awsiam.Effect_ALLOW,
		Principals: &[]awsiam.IPrincipal{awsiam.NewServicePrincipal(jsii.String("cloudtrail.amazonaws.com"), nil)},
		Actions:    jsii.Strings("s3:PutObject"),
		Resources:  &[]*string{s.CloudTrailBucket.ArnForObjects(jsii.String("*"))},
		Conditions: &map[string]interface{}{
			"StringEquals": map[string]interface{}{
				"s3:x-amz-acl": "bucket-owner-full-control",
			},
		},
	}))
}

// createTrail creates the multi-region audit trail recording all management
// events with log file validation.
func (s *SecurityStack) createTrail() {
	s.Trail = awscloudtrail.NewTrail(s.Stack, jsii.String("CloudTrail"), &awscloudtrail.TrailProps{
		TrailName:                  jsii.String("showcore-audit-trail"),
		Bucket:                     s.CloudTrailBucket,
		IsMultiRegionTrail:         jsii.Bool(true),
		IncludeGlobalServiceEvents: jsii.Bool(true),
		EnableFileValidation:       jsii.Bool(true),
		ManagementEvents:           awscloudtrail.ReadWriteType_ALL,
	})
}

// createConfigRules deploys the AWS Config recorder, its delivery channel,
// and the managed rules for tag and encryption compliance.
func (s *SecurityStack) createConfigRules() {
	role := awsiam.NewRole(s.Stack, jsii.String("ConfigRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("config.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("service-role/AWS_ConfigRole")),
		},
	})

	recorder := awsconfig.NewCfnConfigurationRecorder(s.Stack, jsii.String("ConfigRecorder"), &awsconfig.CfnConfigurationRecorderProps{
		RoleArn: role.RoleArn(),
		RecordingGroup: &awsconfig.CfnConfigurationRecorder_RecordingGroupProperty{
			AllSupported:               jsii.Bool(true),
			IncludeGlobalResourceTypes: jsii.Bool(true),
		},
	})

	channel := awsconfig.NewCfnDeliveryChannel(s.Stack, jsii.String("ConfigDeliveryChannel"), &awsconfig.CfnDeliveryChannelProps{
		S3BucketName: s.CloudTrailBucket.BucketName(),
	})
	channel.AddDependency(recorder)

	requiredTags := awsconfig.NewManagedRule(s.Stack, jsii.String("RequiredTagsRule"), &awsconfig.ManagedRuleProps{
		Identifier:     awsconfig.ManagedRuleIdentifiers_REQUIRED_TAGS(),
		ConfigRuleName: jsii.String("showcore-required-tags"),
		InputParameters: &map[string]interface{}{
			"tag1Key": "Project",
		},
	})
	requiredTags.Node().AddDependency(recorder)

	s3Encryption := awsconfig.NewManagedRule(s.Stack, jsii.String("S3EncryptionRule"), &awsconfig.ManagedRuleProps{
		Identifier:     awsconfig.ManagedRuleIdentifiers_S3_BUCKET_SERVER_SIDE_ENCRYPTION_ENABLED(),
		ConfigRuleName: jsii.String("showcore-s3-encryption-enabled"),
	})
	s3Encryption.Node().AddDependency(recorder)
}

// addOutputs exports the security group IDs and the audit trail details.
func (s *SecurityStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("AppSecurityGroupId"), &awscdk.CfnOutputProps{
		Value:       s.AppSecurityGroup.SecurityGroupId(),
		Description: jsii.String("ShowCore application security group ID"),
		ExportName:  jsii.String("ShowCoreAppSecurityGroupId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsSecurityGroupId"), &awscdk.CfnOutputProps{
		Value:       s.RdsSecurityGroup.SecurityGroupId(),
		Description: jsii.String("ShowCore RDS security group ID"),
		ExportName:  jsii.String("ShowCoreRdsSecurityGroupId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RedisSecurityGroupId"), &awscdk.CfnOutputProps{
		Value:       s.ElastiCacheSecurityGroup.SecurityGroupId(),
		Description: jsii.String("ShowCore Redis security group ID"),
		ExportName:  jsii.String("ShowCoreRedisSecurityGroupId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("CloudTrailBucketName"), &awscdk.CfnOutputProps{
		Value:       s.CloudTrailBucket.BucketName(),
		Description: jsii.String("ShowCore CloudTrail log bucket name"),
		ExportName:  jsii.String("ShowCoreCloudTrailBucketName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("CloudTrailArn"), &awscdk.CfnOutputProps{
		Value:       s.Trail.TrailArn(),
		Description: jsii.String("ShowCore CloudTrail ARN"),
		ExportName:  jsii.String("ShowCoreCloudTrailArn"),
	})
}
