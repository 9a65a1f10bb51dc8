// Package verify validates deployed ShowCore infrastructure against the AWS
// APIs. It backs the verify CLI and the post-deployment compliance checks.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	backuptypes "github.com/aws/aws-sdk-go-v2/service/backup/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	trailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	ectypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// RequiredTagKeys are the tag keys every ShowCore resource must carry.
var RequiredTagKeys = []string{"Project", "Phase", "Environment", "Component", "ManagedBy", "CostCenter"}

// DefaultStackTimeout bounds WaitForStackComplete when the caller passes no
// timeout.
const DefaultStackTimeout = 10 * time.Minute

const stackPollInterval = 30 * time.Second

// EC2Client defines the EC2 operations used by the validator.
type EC2Client interface {
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeVpcEndpoints(ctx context.Context, params *ec2.DescribeVpcEndpointsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error)
}

// RDSClient defines the RDS operations used by the validator.
type RDSClient interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// ElastiCacheClient defines the ElastiCache operations used by the validator.
type ElastiCacheClient interface {
	DescribeCacheClusters(ctx context.Context, params *elasticache.DescribeCacheClustersInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeCacheClustersOutput, error)
}

// S3Client defines the S3 operations used by the validator.
type S3Client interface {
	GetBucketEncryption(ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error)
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
}

// CloudWatchClient defines the CloudWatch operations used by the validator.
type CloudWatchClient interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
}

// CloudTrailClient defines the CloudTrail operations used by the validator.
type CloudTrailClient interface {
	DescribeTrails(ctx context.Context, params *cloudtrail.DescribeTrailsInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.DescribeTrailsOutput, error)
	GetTrailStatus(ctx context.Context, params *cloudtrail.GetTrailStatusInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.GetTrailStatusOutput, error)
}

// TaggingClient defines the Resource Groups Tagging API operations used by
// the validator.
type TaggingClient interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// SNSClient defines the SNS operations used by the validator.
type SNSClient interface {
	GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, optFns ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error)
}

// BackupClient defines the AWS Backup operations used by the validator.
type BackupClient interface {
	DescribeBackupVault(ctx context.Context, params *backup.DescribeBackupVaultInput, optFns ...func(*backup.Options)) (*backup.DescribeBackupVaultOutput, error)
	ListBackupPlans(ctx context.Context, params *backup.ListBackupPlansInput, optFns ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error)
}

// STSClient defines the STS operations used by the validator.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CloudFormationClient defines the CloudFormation operations used by the
// validator.
type CloudFormationClient interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// SDK clients satisfy the validator interfaces.
var (
	_ EC2Client            = (*ec2.Client)(nil)
	_ RDSClient            = (*rds.Client)(nil)
	_ ElastiCacheClient    = (*elasticache.Client)(nil)
	_ S3Client             = (*s3.Client)(nil)
	_ CloudWatchClient     = (*cloudwatch.Client)(nil)
	_ CloudTrailClient     = (*cloudtrail.Client)(nil)
	_ TaggingClient        = (*resourcegroupstaggingapi.Client)(nil)
	_ SNSClient            = (*sns.Client)(nil)
	_ BackupClient         = (*backup.Client)(nil)
	_ STSClient            = (*sts.Client)(nil)
	_ CloudFormationClient = (*cloudformation.Client)(nil)
)

// EncryptionStatus reports ElastiCache encryption settings.
type EncryptionStatus struct {
	AtRest    bool
	InTransit bool
}

// Validator queries deployed AWS resources and checks them against the
// ShowCore configuration. The zero value is not usable; construct one with
// New, or populate the client fields directly in tests.
type Validator struct {
	EC2            EC2Client
	RDS            RDSClient
	ElastiCache    ElastiCacheClient
	S3             S3Client
	CloudWatch     CloudWatchClient
	CloudTrail     CloudTrailClient
	Tagging        TaggingClient
	SNS            SNSClient
	Backup         BackupClient
	STS            STSClient
	CloudFormation CloudFormationClient
}

// New creates a Validator backed by real AWS service clients.
func New(cfg aws.Config) *Validator {
	return &Validator{
		EC2:            ec2.NewFromConfig(cfg),
		RDS:            rds.NewFromConfig(cfg),
		ElastiCache:    elasticache.NewFromConfig(cfg),
		S3:             s3.NewFromConfig(cfg),
		CloudWatch:     cloudwatch.NewFromConfig(cfg),
		CloudTrail:     cloudtrail.NewFromConfig(cfg),
		Tagging:        resourcegroupstaggingapi.NewFromConfig(cfg),
		SNS:            sns.NewFromConfig(cfg),
		Backup:         backup.NewFromConfig(cfg),
		STS:            sts.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
	}
}

// GetAccountID returns the AWS account ID of the current credentials.
func (v *Validator) GetAccountID(ctx context.Context) (string, error) {
	out, err := v.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// GetVPCByTag returns the first VPC carrying the tag, or nil when none
// exists.
func (v *Validator) GetVPCByTag(ctx context.Context, tagKey, tagValue string) (*ec2types.Vpc, error) {
	out, err := v.EC2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:" + tagKey), Values: []string{tagValue}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing VPCs: %w", err)
	}
	if len(out.Vpcs) == 0 {
		return nil, nil
	}
	return &out.Vpcs[0], nil
}

// GetSecurityGroupsByVPC returns all security groups in a VPC.
func (v *Validator) GetSecurityGroupsByVPC(ctx context.Context, vpcID string) ([]ec2types.SecurityGroup, error) {
	out, err := v.EC2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing security groups: %w", err)
	}
	return out.SecurityGroups, nil
}

// CheckSecurityGroupRule reports whether a security group has an ingress rule
// covering the port from the given CIDR.
func (v *Validator) CheckSecurityGroupRule(ctx context.Context, securityGroupID string, port int32, cidr string) (bool, error) {
	out, err := v.EC2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{securityGroupID},
	})
	if err != nil {
		return false, fmt.Errorf("describing security group %s: %w", securityGroupID, err)
	}
	if len(out.SecurityGroups) == 0 {
		return false, nil
	}

	for _, rule := range out.SecurityGroups[0].IpPermissions {
		if rule.FromPort == nil || rule.ToPort == nil {
			continue
		}
		if *rule.FromPort > port || port > *rule.ToPort {
			continue
		}
		for _, ipRange := range rule.IpRanges {
			if aws.ToString(ipRange.CidrIp) == cidr {
				return true, nil
			}
		}
	}
	return false, nil
}

// GetVPCEndpoints returns all VPC endpoints in a VPC.
func (v *Validator) GetVPCEndpoints(ctx context.Context, vpcID string) ([]ec2types.VpcEndpoint, error) {
	out, err := v.EC2.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing VPC endpoints: %w", err)
	}
	return out.VpcEndpoints, nil
}

// GetRDSInstance returns the RDS instance with the identifier, or nil when it
// does not exist.
func (v *Validator) GetRDSInstance(ctx context.Context, dbInstanceIdentifier string) (*rdstypes.DBInstance, error) {
	out, err := v.RDS.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(dbInstanceIdentifier),
	})
	if err != nil {
		var notFound *rdstypes.DBInstanceNotFoundFault
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("describing RDS instance %s: %w", dbInstanceIdentifier, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, nil
	}
	return &out.DBInstances[0], nil
}

// CheckRDSEncryption reports whether the RDS instance has encryption at rest
// enabled.
func (v *Validator) CheckRDSEncryption(ctx context.Context, dbInstanceIdentifier string) (bool, error) {
	instance, err := v.GetRDSInstance(ctx, dbInstanceIdentifier)
	if err != nil {
		return false, err
	}
	if instance == nil {
		return false, nil
	}
	return aws.ToBool(instance.StorageEncrypted), nil
}

// GetElastiCacheCluster returns the cache cluster with the ID, or nil when it
// does not exist.
func (v *Validator) GetElastiCacheCluster(ctx context.Context, cacheClusterID string) (*ectypes.CacheCluster, error) {
	out, err := v.ElastiCache.DescribeCacheClusters(ctx, &elasticache.DescribeCacheClustersInput{
		CacheClusterId:    aws.String(cacheClusterID),
		ShowCacheNodeInfo: aws.Bool(true),
	})
	if err != nil {
		var notFound *ectypes.CacheClusterNotFoundFault
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("describing ElastiCache cluster %s: %w", cacheClusterID, err)
	}
	if len(out.CacheClusters) == 0 {
		return nil, nil
	}
	return &out.CacheClusters[0], nil
}

// CheckElastiCacheEncryption reports the at-rest and in-transit encryption
// settings of a cache cluster. A missing cluster reports both as disabled.
func (v *Validator) CheckElastiCacheEncryption(ctx context.Context, cacheClusterID string) (EncryptionStatus, error) {
	cluster, err := v.GetElastiCacheCluster(ctx, cacheClusterID)
	if err != nil || cluster == nil {
		return EncryptionStatus{}, err
	}
	return EncryptionStatus{
		AtRest:    aws.ToBool(cluster.AtRestEncryptionEnabled),
		InTransit: aws.ToBool(cluster.TransitEncryptionEnabled),
	}, nil
}

// GetBucketEncryption returns the default encryption algorithm of a bucket
// (for example "AES256" or "aws:kms"), or empty when the bucket has no
// default encryption configured.
func (v *Validator) GetBucketEncryption(ctx context.Context, bucketName string) (string, error) {
	out, err := v.S3.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ServerSideEncryptionConfigurationNotFoundError" {
			return "", nil
		}
		return "", fmt.Errorf("getting bucket encryption for %s: %w", bucketName, err)
	}

	if out.ServerSideEncryptionConfiguration == nil || len(out.ServerSideEncryptionConfiguration.Rules) == 0 {
		return "", nil
	}
	rule := out.ServerSideEncryptionConfiguration.Rules[0]
	if rule.ApplyServerSideEncryptionByDefault == nil {
		return "", nil
	}
	return string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm), nil
}

// CheckBucketVersioning reports whether a bucket has versioning enabled.
func (v *Validator) CheckBucketVersioning(ctx context.Context, bucketName string) (bool, error) {
	out, err := v.S3.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return false, fmt.Errorf("getting bucket versioning for %s: %w", bucketName, err)
	}
	return out.Status == s3types.BucketVersioningStatusEnabled, nil
}

// GetAlarmsByPrefix returns the CloudWatch alarms whose names start with the
// prefix.
func (v *Validator) GetAlarmsByPrefix(ctx context.Context, alarmNamePrefix string) ([]cwtypes.MetricAlarm, error) {
	out, err := v.CloudWatch.DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{
		AlarmNamePrefix: aws.String(alarmNamePrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("describing alarms: %w", err)
	}
	return out.MetricAlarms, nil
}

// GetResourcesByTag returns all resources carrying the tag, optionally
// restricted to resource types such as "ec2:vpc" or "rds:db".
func (v *Validator) GetResourcesByTag(ctx context.Context, tagKey, tagValue string, resourceTypeFilters ...string) ([]taggingtypes.ResourceTagMapping, error) {
	out, err := v.Tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		TagFilters: []taggingtypes.TagFilter{
			{Key: aws.String(tagKey), Values: []string{tagValue}},
		},
		ResourceTypeFilters: resourceTypeFilters,
	})
	if err != nil {
		return nil, fmt.Errorf("getting resources by tag: %w", err)
	}
	return out.ResourceTagMappingList, nil
}

// CheckResourceTags reports, per required tag key, whether the resource
// carries it.
func (v *Validator) CheckResourceTags(ctx context.Context, resourceARN string, requiredTags []string) (map[string]bool, error) {
	result := make(map[string]bool, len(requiredTags))
	for _, key := range requiredTags {
		result[key] = false
	}

	out, err := v.Tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceARNList: []string{resourceARN},
	})
	if err != nil {
		return nil, fmt.Errorf("getting tags for %s: %w", resourceARN, err)
	}
	if len(out.ResourceTagMappingList) == 0 {
		return result, nil
	}

	present := make(map[string]struct{})
	for _, tag := range out.ResourceTagMappingList[0].Tags {
		present[aws.ToString(tag.Key)] = struct{}{}
	}
	for _, key := range requiredTags {
		_, ok := present[key]
		result[key] = ok
	}
	return result, nil
}

// GetTrails returns all CloudTrail trails in the account.
func (v *Validator) GetTrails(ctx context.Context) ([]trailtypes.Trail, error) {
	out, err := v.CloudTrail.DescribeTrails(ctx, &cloudtrail.DescribeTrailsInput{})
	if err != nil {
		return nil, fmt.Errorf("describing trails: %w", err)
	}
	return out.TrailList, nil
}

// CheckTrailLogging reports whether a CloudTrail trail is currently logging.
func (v *Validator) CheckTrailLogging(ctx context.Context, trailName string) (bool, error) {
	out, err := v.CloudTrail.GetTrailStatus(ctx, &cloudtrail.GetTrailStatusInput{
		Name: aws.String(trailName),
	})
	if err != nil {
		return false, fmt.Errorf("getting trail status for %s: %w", trailName, err)
	}
	return aws.ToBool(out.IsLogging), nil
}

// GetTopicAttributes returns the attributes of an SNS topic, or nil when the
// topic does not exist.
func (v *Validator) GetTopicAttributes(ctx context.Context, topicARN string) (map[string]string, error) {
	out, err := v.SNS.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{
		TopicArn: aws.String(topicARN),
	})
	if err != nil {
		var notFound *snstypes.NotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting topic attributes for %s: %w", topicARN, err)
	}
	return out.Attributes, nil
}

// GetBackupVault returns the backup vault with the name, or nil when it does
// not exist.
func (v *Validator) GetBackupVault(ctx context.Context, vaultName string) (*backup.DescribeBackupVaultOutput, error) {
	out, err := v.Backup.DescribeBackupVault(ctx, &backup.DescribeBackupVaultInput{
		BackupVaultName: aws.String(vaultName),
	})
	if err != nil {
		var notFound *backuptypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("describing backup vault %s: %w", vaultName, err)
	}
	return out, nil
}

// GetBackupPlansByPrefix returns the backup plans whose names start with the
// prefix.
func (v *Validator) GetBackupPlansByPrefix(ctx context.Context, prefix string) ([]backuptypes.BackupPlansListMember, error) {
	var plans []backuptypes.BackupPlansListMember
	var nextToken *string
	for {
		out, err := v.Backup.ListBackupPlans(ctx, &backup.ListBackupPlansInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("listing backup plans: %w", err)
		}
		for _, plan := range out.BackupPlansList {
			if strings.HasPrefix(aws.ToString(plan.BackupPlanName), prefix) {
				plans = append(plans, plan)
			}
		}
		if out.NextToken == nil {
			return plans, nil
		}
		nextToken = out.NextToken
	}
}

// WaitForStackComplete polls a CloudFormation stack until it reaches
// CREATE_COMPLETE or UPDATE_COMPLETE. It returns an error when the stack
// enters a failed or rollback state, or when the timeout elapses. A zero
// timeout means DefaultStackTimeout.
func (v *Validator) WaitForStackComplete(ctx context.Context, stackName string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultStackTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(stackPollInterval)
	defer ticker.Stop()

	for {
		out, err := v.CloudFormation.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
			StackName: aws.String(stackName),
		})
		if err != nil {
			return fmt.Errorf("describing stack %s: %w", stackName, err)
		}
		if len(out.Stacks) == 0 {
			return fmt.Errorf("stack %s not found", stackName)
		}

		status := out.Stacks[0].StackStatus
		switch status {
		case cfntypes.StackStatusCreateComplete, cfntypes.StackStatusUpdateComplete:
			return nil
		}
		if strings.Contains(string(status), "FAILED") || strings.Contains(string(status), "ROLLBACK") {
			return fmt.Errorf("stack %s is in state %s", stackName, status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("timed out waiting for stack %s (last status %s)", stackName, status)
		case <-ticker.C:
		}
	}
}
