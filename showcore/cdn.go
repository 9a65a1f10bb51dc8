package showcore

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// CDNStack deploys the CloudFront distribution in front of the static assets
// bucket. The bucket is imported by name to avoid a cyclic reference with
// the storage stack. PriceClass 100 limits edge locations to North America
// and Europe, and the error responses rewrite 403/404 to index.html for
// single-page app routing.
type CDNStack struct {
	*Stack

	// StaticAssetsBucket is the origin bucket, imported by name.
	StaticAssetsBucket awss3.IBucket

	// OriginAccessIdentity is the identity CloudFront reads the bucket with.
	OriginAccessIdentity awscloudfront.OriginAccessIdentity

	// CachePolicy controls TTLs and cache keys for the default behavior.
	CachePolicy awscloudfront.CachePolicy

	// Distribution is the CloudFront distribution.
	Distribution awscloudfront.Distribution
}

// NewCDNStack creates the ShowCore CDN stack.
func NewCDNStack(scope constructs.Construct, id string, staticAssetsBucketName *string, config StackConfig) *CDNStack {
	s := &CDNStack{
		Stack: newStack(scope, id, ComponentCDN,
			"ShowCore Phase 1 - CloudFront CDN Distribution",
			config),
	}

	s.StaticAssetsBucket = awss3.Bucket_FromBucketName(s.Stack, jsii.String("StaticAssetsBucket"), staticAssetsBucketName)

	s.createCachePolicy()
	s.createDistribution()
	s.addBucketPolicy()

	s.AddCustomTag("DataClassification", "Public")
	s.AddCustomTag("BackupRequired", "false") // CDN can be recreated

	s.addOutputs()

	return s
}

// createCachePolicy creates the cache policy for static assets: one day
// default TTL, full query string forwarding, and the CORS request headers
// in the cache key.
func (s *CDNStack) createCachePolicy() {
	s.CachePolicy = awscloudfront.NewCachePolicy(s.Stack, jsii.String("CachePolicy"), &awscloudfront.CachePolicyProps{
		Comment:    jsii.String("Cache policy for ShowCore static assets"),
		DefaultTtl: awscdk.Duration_Seconds(jsii.Number(86400)),
		MaxTtl:     awscdk.Duration_Seconds(jsii.Number(31536000)),
		MinTtl:     awscdk.Duration_Seconds(jsii.Number(0)),
		QueryStringBehavior: awscloudfront.CacheQueryStringBehavior_All(),
		HeaderBehavior: awscloudfront.CacheHeaderBehavior_AllowList(
			jsii.String("Origin"),
			jsii.String("Access-Control-Request-Method"),
			jsii.String("Access-Control-Request-Headers"),
		),
		CookieBehavior:             awscloudfront.CacheCookieBehavior_None(),
		EnableAcceptEncodingGzip:   jsii.Bool(true),
		EnableAcceptEncodingBrotli: jsii.Bool(true),
	})
}

// createDistribution creates the distribution with HTTPS redirect and SPA
// friendly error responses.
func (s *CDNStack) createDistribution() {
	s.OriginAccessIdentity = awscloudfront.NewOriginAccessIdentity(s.Stack, jsii.String("S3OriginAccessIdentity"), &awscloudfront.OriginAccessIdentityProps{
		Comment: jsii.String("OAI for ShowCore static assets bucket"),
	})

	origin := awscloudfrontorigins.S3BucketOrigin_WithOriginAccessIdentity(s.StaticAssetsBucket, &awscloudfrontorigins.S3BucketOriginWithOAIProps{
		OriginAccessIdentity: s.OriginAccessIdentity,
	})

	s.Distribution = awscloudfront.NewDistribution(s.Stack, jsii.String("CloudFrontDistribution"), &awscloudfront.DistributionProps{
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:               origin,
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
			AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_GET_HEAD_OPTIONS(),
			CachedMethods:        awscloudfront.CachedMethods_CACHE_GET_HEAD_OPTIONS(),
			CachePolicy:          s.CachePolicy,
			Compress:             jsii.Bool(true),
		},
		PriceClass:               awscloudfront.PriceClass_PRICE_CLASS_100,
		MinimumProtocolVersion:   awscloudfront.SecurityPolicyProtocol_TLS_V1_2_2021,
		EnableIpv6:               jsii.Bool(true),
		DefaultRootObject:        jsii.String("index.html"),
		Comment:                  jsii.String(fmt.Sprintf("ShowCore Phase 1 - Static Assets CDN (%s)", s.Config.Environment)),
		ErrorResponses: &[]*awscloudfront.ErrorResponse{
			{
				HttpStatus:         jsii.Number(404),
				ResponseHttpStatus: jsii.Number(200),
				ResponsePagePath:   jsii.String("/index.html"),
				Ttl:                awscdk.Duration_Seconds(jsii.Number(300)),
			},
			{
				HttpStatus:         jsii.Number(403),
				ResponseHttpStatus: jsii.Number(200),
				ResponsePagePath:   jsii.String("/index.html"),
				Ttl:                awscdk.Duration_Seconds(jsii.Number(300)),
			},
		},
	})
}

// addBucketPolicy grants the distribution read access on the origin bucket.
// The bucket is imported, so the statement only lands when the stack owns
// the bucket policy; otherwise the grant has to exist on the bucket already.
func (s *CDNStack) addBucketPolicy() {
	s.StaticAssetsBucket.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Sid:        jsii.String("AllowCloudFrontRead"),
		Effect:     awsiam.Effect_ALLOW,
		Principals: &[]awsiam.IPrincipal{awsiam.NewServicePrincipal(jsii.String("cloudfront.amazonaws.com"), nil)},
		Actions:    jsii.Strings("s3:GetObject"),
		Resources:  &[]*string{s.StaticAssetsBucket.ArnForObjects(jsii.String("*"))},
		Conditions: &map[string]interface{}{
			"StringEquals": map[string]interface{}{
				"AWS:SourceArn": fmt.Sprintf("arn:aws:cloudfront::%s:distribution/%s", *s.Account(), *s.Distribution.DistributionId()),
			},
		},
	}))
}

// addOutputs exports the distribution details.
func (s *CDNStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("DistributionId"), &awscdk.CfnOutputProps{
		Value:       s.Distribution.DistributionId(),
		Description: jsii.String("ShowCore CloudFront distribution ID"),
		ExportName:  jsii.String("ShowCoreDistributionId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("DistributionDomainName"), &awscdk.CfnOutputProps{
		Value:       s.Distribution.DistributionDomainName(),
		Description: jsii.String("ShowCore CloudFront distribution domain name"),
		ExportName:  jsii.String("ShowCoreDistributionDomainName"),
	})
}
