package showcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticache"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// CacheStack deploys the ShowCore Redis cluster: a single cache.t3.micro
// node (Free Tier) in the private subnets with encryption at rest and in
// transit, daily snapshots, and CPU and memory alarms. ElastiCache has no
// stable L2 construct, so the resources are built from the L1 layer.
type CacheStack struct {
	*Stack

	// VPC is the ShowCore VPC.
	VPC awsec2.IVpc

	// SecurityGroup guards the Redis port.
	SecurityGroup awsec2.ISecurityGroup

	// SubnetGroup places the cluster in the private subnets.
	SubnetGroup awselasticache.CfnSubnetGroup

	// ParameterGroup holds the Redis 7 parameters.
	ParameterGroup awselasticache.CfnParameterGroup

	// Cluster is the Redis cluster.
	Cluster awselasticache.CfnCacheCluster
}

// NewCacheStack creates the ShowCore cache stack.
func NewCacheStack(scope constructs.Construct, id string, vpc awsec2.IVpc, elasticacheSecurityGroup awsec2.ISecurityGroup, config StackConfig) *CacheStack {
	s := &CacheStack{
		Stack: newStack(scope, id, ComponentCache,
			"ShowCore Phase 1 - ElastiCache Redis Cluster (cache.t3.micro, Free Tier)",
			config),
		VPC:           vpc,
		SecurityGroup: elasticacheSecurityGroup,
	}

	s.createSubnetGroup()
	s.createParameterGroup()
	s.createCluster()
	s.createAlarms()
	s.addOutputs()

	return s
}

// createSubnetGroup places the cluster in the private subnets.
func (s *CacheStack) createSubnetGroup() {
	selected := s.VPC.SelectSubnets(&awsec2.SubnetSelection{SubnetType: privateSubnetType(s.Config)})

	s.SubnetGroup = awselasticache.NewCfnSubnetGroup(s.Stack, jsii.String("CacheSubnetGroup"), &awselasticache.CfnSubnetGroupProps{
		Description: jsii.String("Subnet group for ShowCore Redis in private subnets"),
		SubnetIds:   selected.SubnetIds,
	})
}

// createParameterGroup creates the Redis 7 parameter group.
func (s *CacheStack) createParameterGroup() {
	s.ParameterGroup = awselasticache.NewCfnParameterGroup(s.Stack, jsii.String("CacheParameterGroup"), &awselasticache.CfnParameterGroupProps{
		CacheParameterGroupFamily: jsii.String("redis7"),
		Description:               jsii.String("Parameter group for ShowCore Redis 7"),
	})
}

// createCluster creates the single-node Redis cluster.
func (s *CacheStack) createCluster() {
	s.Cluster = awselasticache.NewCfnCacheCluster(s.Stack, jsii.String("RedisCluster"), &awselasticache.CfnCacheClusterProps{
		Engine:                     jsii.String("redis"),
		EngineVersion:              jsii.String("7.1"),
		CacheNodeType:              jsii.String("cache.t3.micro"),
		NumCacheNodes:              jsii.Number(1),
		ClusterName:                jsii.String("showcore-redis"),
		Port:                       jsii.Number(6379),
		PreferredAvailabilityZone:  jsii.String("us-east-1a"),
		AtRestEncryptionEnabled:    jsii.Bool(true),
		TransitEncryptionEnabled:   jsii.Bool(true),
		SnapshotRetentionLimit:     jsii.Number(7),
		SnapshotWindow:             jsii.String("03:00-04:00"),
		PreferredMaintenanceWindow: jsii.String("sun:04:00-sun:05:00"),
		AutoMinorVersionUpgrade:    jsii.Bool(true),
		CacheSubnetGroupName:       s.SubnetGroup.Ref(),
		CacheParameterGroupName:    s.ParameterGroup.Ref(),
		VpcSecurityGroupIds:        &[]*string{s.SecurityGroup.SecurityGroupId()},
	})
}

// createAlarms creates the CPU and memory alarms for the cluster.
func (s *CacheStack) createAlarms() {
	awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheCpuHighAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-cpu-high"),
		AlarmDescription: jsii.String("Alert when ElastiCache CPU exceeds 75%"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/ElastiCache"),
			MetricName:    jsii.String("CPUUtilization"),
			DimensionsMap: &map[string]*string{"CacheClusterId": s.Cluster.Ref()},
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
			Statistic:     jsii.String("Average"),
		}),
		Threshold:          jsii.Number(75),
		EvaluationPeriods:  jsii.Number(1),
		DatapointsToAlarm:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})

	awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheMemoryHighAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-memory-high"),
		AlarmDescription: jsii.String("Alert when ElastiCache memory usage exceeds 80%"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/ElastiCache"),
			MetricName:    jsii.String("DatabaseMemoryUsagePercentage"),
			DimensionsMap: &map[string]*string{"CacheClusterId": s.Cluster.Ref()},
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
			Statistic:     jsii.String("Average"),
		}),
		Threshold:          jsii.Number(80),
		EvaluationPeriods:  jsii.Number(1),
		DatapointsToAlarm:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
}

// addOutputs exports the cluster endpoint for the application tier.
func (s *CacheStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheSubnetGroupName"), &awscdk.CfnOutputProps{
		Value:       s.SubnetGroup.Ref(),
		Description: jsii.String("ShowCore ElastiCache subnet group name"),
		ExportName:  jsii.String("ShowCoreElastiCacheSubnetGroupName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheParameterGroupName"), &awscdk.CfnOutputProps{
		Value:       s.ParameterGroup.Ref(),
		Description: jsii.String("ShowCore ElastiCache parameter group name"),
		ExportName:  jsii.String("ShowCoreElastiCacheParameterGroupName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheEndpoint"), &awscdk.CfnOutputProps{
		Value:       s.Cluster.AttrRedisEndpointAddress(),
		Description: jsii.String("ShowCore Redis endpoint address"),
		ExportName:  jsii.String("ShowCoreElastiCacheEndpoint"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCachePort"), &awscdk.CfnOutputProps{
		Value:       s.Cluster.AttrRedisEndpointPort(),
		Description: jsii.String("ShowCore Redis endpoint port"),
		ExportName:  jsii.String("ShowCoreElastiCachePort"),
	})
}
