package showcore

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// StorageStack deploys the ShowCore S3 buckets: one for static assets served
// through CloudFront and one for backups. Both are versioned, encrypted with
// SSE-S3, closed to public access, and kept on stack deletion. Lifecycle
// rules move backups to Glacier after 30 days and expire old data after 90.
type StorageStack struct {
	*Stack

	// StaticAssetsBucket holds the static site assets.
	StaticAssetsBucket awss3.Bucket

	// BackupsBucket holds database dumps and other backups.
	BackupsBucket awss3.Bucket
}

// NewStorageStack creates the ShowCore storage stack.
func NewStorageStack(scope constructs.Construct, id string, config StackConfig) *StorageStack {
	s := &StorageStack{
		Stack: newStack(scope, id, ComponentStorage,
			"ShowCore Phase 1 - S3 Buckets for Static Assets and Backups",
			config),
	}

	s.createStaticAssetsBucket()
	s.createBackupsBucket()
	s.addOutputs()

	return s
}

// StaticAssetsBucketName returns the static assets bucket name. The CDN
// stack imports the bucket by name to avoid a cyclic reference.
func (s *StorageStack) StaticAssetsBucketName() *string {
	return s.StaticAssetsBucket.BucketName()
}

// createStaticAssetsBucket creates the bucket CloudFront serves from.
// Public access stays blocked; CloudFront reads through its origin access
// identity only.
func (s *StorageStack) createStaticAssetsBucket() {
	s.StaticAssetsBucket = awss3.NewBucket(s.Stack, jsii.String("StaticAssetsBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(fmt.Sprintf("showcore-static-assets-%s", *s.Account())),
		Versioned:         jsii.Bool(true),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		EnforceSSL:        jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Id:                          jsii.String("DeleteOldVersions"),
				Enabled:                     jsii.Bool(true),
				NoncurrentVersionExpiration: awscdk.Duration_Days(jsii.Number(90)),
			},
		},
	})

	s.AddCustomTag("DataClassification", "Internal")
	s.AddCustomTag("BackupRequired", "false") // Versioning provides protection
}

// createBackupsBucket creates the backups bucket. Backups move to Glacier
// after 30 days and are deleted after 90.
func (s *StorageStack) createBackupsBucket() {
	s.BackupsBucket = awss3.NewBucket(s.Stack, jsii.String("BackupsBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(fmt.Sprintf("showcore-backups-%s", *s.Account())),
		Versioned:         jsii.Bool(true),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		EnforceSSL:        jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Id:      jsii.String("TransitionToGlacier"),
				Enabled: jsii.Bool(true),
				Transitions: &[]*awss3.Transition{
					{
						StorageClass:    awss3.StorageClass_GLACIER(),
						TransitionAfter: awscdk.Duration_Days(jsii.Number(30)),
					},
				},
			},
			{
				Id:         jsii.String("DeleteOldBackups"),
				Enabled:    jsii.Bool(true),
				Expiration: awscdk.Duration_Days(jsii.Number(90)),
			},
			{
				Id:                          jsii.String("DeleteOldVersions"),
				Enabled:                     jsii.Bool(true),
				NoncurrentVersionExpiration: awscdk.Duration_Days(jsii.Number(90)),
			},
		},
	})

	s.AddCustomTag("DataClassification", "Internal")
	s.AddCustomTag("BackupRequired", "true") // This IS the backup bucket
}

// addOutputs exports the bucket names and ARNs.
func (s *StorageStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("StaticAssetsBucketName"), &awscdk.CfnOutputProps{
		Value:       s.StaticAssetsBucket.BucketName(),
		Description: jsii.String("ShowCore static assets bucket name"),
		ExportName:  jsii.String("ShowCoreStaticAssetsBucketName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("StaticAssetsBucketArn"), &awscdk.CfnOutputProps{
		Value:       s.StaticAssetsBucket.BucketArn(),
		Description: jsii.String("ShowCore static assets bucket ARN"),
		ExportName:  jsii.String("ShowCoreStaticAssetsBucketArn"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("BackupsBucketName"), &awscdk.CfnOutputProps{
		Value:       s.BackupsBucket.BucketName(),
		Description: jsii.String("ShowCore backups bucket name"),
		ExportName:  jsii.String("ShowCoreBackupsBucketName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("BackupsBucketArn"), &awscdk.CfnOutputProps{
		Value:       s.BackupsBucket.BucketArn(),
		Description: jsii.String("ShowCore backups bucket ARN"),
		ExportName:  jsii.String("ShowCoreBackupsBucketArn"),
	})
}
