package showcore

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// MonitoringStack deploys the ShowCore alerting plane: SNS topics for
// critical, warning, and billing alerts, billing alarms per configured
// threshold, CloudWatch alarms for RDS, ElastiCache, and S3, an overview
// dashboard, and log groups with seven day retention.
//
// The stack has no construct-level dependency on the resource stacks.
// Alarms and widgets reference resources through the identifiers in the
// configuration, so the stack deploys in any order and keeps alerting even
// while a resource stack is being replaced.
type MonitoringStack struct {
	*Stack

	// CriticalAlertsTopic receives alarms that need immediate attention.
	CriticalAlertsTopic awssns.Topic

	// WarningAlertsTopic receives alarms that can wait for business hours.
	WarningAlertsTopic awssns.Topic

	// BillingAlertsTopic receives estimated charge alarms.
	BillingAlertsTopic awssns.Topic

	// Dashboard charts the Phase 1 infrastructure.
	Dashboard awscloudwatch.Dashboard
}

// NewMonitoringStack creates the ShowCore monitoring stack.
func NewMonitoringStack(scope constructs.Construct, id string, config StackConfig) *MonitoringStack {
	s := &MonitoringStack{
		Stack: newStack(scope, id, ComponentMonitoring,
			"ShowCore Phase 1 - Monitoring, Alerting, and Billing",
			config),
	}

	s.createAlertTopics()
	s.createBillingAlarms()
	s.createRdsAlarms()
	s.createElastiCacheAlarms()
	s.createS3Alarms()
	s.createDashboard()
	s.createLogGroups()

	return s
}

// createAlertTopics creates the three alert topics and subscribes every
// configured email address to all of them.
func (s *MonitoringStack) createAlertTopics() {
	s.CriticalAlertsTopic = awssns.NewTopic(s.Stack, jsii.String("CriticalAlerts"), &awssns.TopicProps{
		TopicName:   jsii.String("showcore-critical-alerts"),
		DisplayName: jsii.String("Critical alerts for ShowCore infrastructure"),
	})

	s.WarningAlertsTopic = awssns.NewTopic(s.Stack, jsii.String("WarningAlerts"), &awssns.TopicProps{
		TopicName:   jsii.String("showcore-warning-alerts"),
		DisplayName: jsii.String("Warning alerts for ShowCore infrastructure"),
	})

	s.BillingAlertsTopic = awssns.NewTopic(s.Stack, jsii.String("BillingAlerts"), &awssns.TopicProps{
		TopicName:   jsii.String("showcore-billing-alerts"),
		DisplayName: jsii.String("Billing alerts for ShowCore infrastructure"),
	})

	for _, email := range s.Config.AlarmEmailAddresses {
		s.CriticalAlertsTopic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(email), nil))
		s.WarningAlertsTopic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(email), nil))
		s.BillingAlertsTopic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(email), nil))
	}

	awscdk.NewCfnOutput(s.Stack, jsii.String("CriticalAlertsTopicArn"), &awscdk.CfnOutputProps{
		Value:       s.CriticalAlertsTopic.TopicArn(),
		Description: jsii.String("ARN of SNS topic for critical alerts"),
		ExportName:  jsii.String("ShowCoreCriticalAlertsTopicArn"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("WarningAlertsTopicArn"), &awscdk.CfnOutputProps{
		Value:       s.WarningAlertsTopic.TopicArn(),
		Description: jsii.String("ARN of SNS topic for warning alerts"),
		ExportName:  jsii.String("ShowCoreWarningAlertsTopicArn"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("BillingAlertsTopicArn"), &awscdk.CfnOutputProps{
		Value:       s.BillingAlertsTopic.TopicArn(),
		Description: jsii.String("ARN of SNS topic for billing alerts"),
		ExportName:  jsii.String("ShowCoreBillingAlertsTopicArn"),
	})
}

// createBillingAlarms creates one estimated charge alarm per configured
// threshold. Billing metrics live in us-east-1 only and update roughly every
// six hours.
func (s *MonitoringStack) createBillingAlarms() {
	for _, threshold := range s.Config.BillingAlertThresholds {
		label := strconv.FormatFloat(threshold, 'f', -1, 64)

		alarm := awscloudwatch.NewAlarm(s.Stack, jsii.String(fmt.Sprintf("BillingAlarm%s", label)), &awscloudwatch.AlarmProps{
			AlarmName:        jsii.String(fmt.Sprintf("showcore-billing-%s", label)),
			AlarmDescription: jsii.String(fmt.Sprintf("Alert when estimated charges exceed $%s", label)),
			Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
				Namespace:  jsii.String("AWS/Billing"),
				MetricName: jsii.String("EstimatedCharges"),
				DimensionsMap: &map[string]*string{
					"Currency": jsii.String("USD"),
				},
				Statistic: jsii.String("Maximum"),
				Period:    awscdk.Duration_Hours(jsii.Number(6)),
			}),
			Threshold:          jsii.Number(threshold),
			EvaluationPeriods:  jsii.Number(1),
			ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
			TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
		})
		alarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.BillingAlertsTopic))

		awscdk.NewCfnOutput(s.Stack, jsii.String(fmt.Sprintf("BillingAlarm%sArn", label)), &awscdk.CfnOutputProps{
			Value:       alarm.AlarmArn(),
			Description: jsii.String(fmt.Sprintf("ARN of billing alarm for $%s threshold", label)),
		})
	}
}

// createRdsAlarms creates the database alarm set. CPU pages through the
// critical topic; storage, connections, and latency warn.
func (s *MonitoringStack) createRdsAlarms() {
	dimensions := &map[string]*string{
		"DBInstanceIdentifier": jsii.String(s.Config.RdsInstanceID),
	}

	cpuAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsCpuAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-cpu-high"),
		AlarmDescription: jsii.String("Alert when RDS CPU utilization exceeds 80% for 5 minutes"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/RDS"),
			MetricName:    jsii.String("CPUUtilization"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(80),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	cpuAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.CriticalAlertsTopic))

	storageAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsStorageAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-storage-high"),
		AlarmDescription: jsii.String("Alert when RDS free storage space is less than 15% (3 GB for 20 GB storage)"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/RDS"),
			MetricName:    jsii.String("FreeStorageSpace"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(3221225472), // 3 GB in bytes
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	storageAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	connectionsAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsConnectionsAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-connections-high"),
		AlarmDescription: jsii.String("Alert when RDS connection count exceeds 80"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/RDS"),
			MetricName:    jsii.String("DatabaseConnections"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(80),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	connectionsAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	readLatencyAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsReadLatencyAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-read-latency-high"),
		AlarmDescription: jsii.String("Alert when RDS read latency exceeds 100ms"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/RDS"),
			MetricName:    jsii.String("ReadLatency"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(0.1), // seconds
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	readLatencyAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	writeLatencyAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsWriteLatencyAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-write-latency-high"),
		AlarmDescription: jsii.String("Alert when RDS write latency exceeds 100ms"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/RDS"),
			MetricName:    jsii.String("WriteLatency"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(0.1), // seconds
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	writeLatencyAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsCpuAlarmArn"), &awscdk.CfnOutputProps{
		Value:       cpuAlarm.AlarmArn(),
		Description: jsii.String("ARN of RDS CPU utilization alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsStorageAlarmArn"), &awscdk.CfnOutputProps{
		Value:       storageAlarm.AlarmArn(),
		Description: jsii.String("ARN of RDS storage utilization alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsConnectionsAlarmArn"), &awscdk.CfnOutputProps{
		Value:       connectionsAlarm.AlarmArn(),
		Description: jsii.String("ARN of RDS connections alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsReadLatencyAlarmArn"), &awscdk.CfnOutputProps{
		Value:       readLatencyAlarm.AlarmArn(),
		Description: jsii.String("ARN of RDS read latency alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsWriteLatencyAlarmArn"), &awscdk.CfnOutputProps{
		Value:       writeLatencyAlarm.AlarmArn(),
		Description: jsii.String("ARN of RDS write latency alarm"),
	})
}

// createElastiCacheAlarms creates the cache alarm set. CPU and memory page;
// evictions and a falling hit rate warn.
func (s *MonitoringStack) createElastiCacheAlarms() {
	dimensions := &map[string]*string{
		"CacheClusterId": jsii.String(s.Config.ElastiCacheClusterID),
	}

	cpuAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheCpuAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-cpu-high"),
		AlarmDescription: jsii.String("Alert when ElastiCache CPU utilization exceeds 75% for 5 minutes"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/ElastiCache"),
			MetricName:    jsii.String("CPUUtilization"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(75),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	cpuAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.CriticalAlertsTopic))

	memoryAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheMemoryAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-memory-high"),
		AlarmDescription: jsii.String("Alert when ElastiCache memory utilization exceeds 80%"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/ElastiCache"),
			MetricName:    jsii.String("DatabaseMemoryUsagePercentage"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Average"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(80),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	memoryAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.CriticalAlertsTopic))

	evictionsAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheEvictionsAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-evictions"),
		AlarmDescription: jsii.String("Alert when ElastiCache evictions occur (> 0)"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/ElastiCache"),
			MetricName:    jsii.String("Evictions"),
			DimensionsMap: dimensions,
			Statistic:     jsii.String("Sum"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(0),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	evictionsAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	hitRateAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheCacheHitRateAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-cache-hit-low"),
		AlarmDescription: jsii.String("Alert when ElastiCache cache hit rate is below 80%"),
		Metric: awscloudwatch.NewMathExpression(&awscloudwatch.MathExpressionProps{
			Expression: jsii.String("(hits / (hits + misses)) * 100"),
			UsingMetrics: &map[string]awscloudwatch.IMetric{
				"hits": awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("CacheHits"),
					DimensionsMap: dimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
				}),
				"misses": awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("CacheMisses"),
					DimensionsMap: dimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
				}),
			},
			Label: jsii.String("Cache Hit Rate %"),
		}),
		Threshold:          jsii.Number(80),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	hitRateAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheCpuAlarmArn"), &awscdk.CfnOutputProps{
		Value:       cpuAlarm.AlarmArn(),
		Description: jsii.String("ARN of ElastiCache CPU utilization alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheMemoryAlarmArn"), &awscdk.CfnOutputProps{
		Value:       memoryAlarm.AlarmArn(),
		Description: jsii.String("ARN of ElastiCache memory utilization alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheEvictionsAlarmArn"), &awscdk.CfnOutputProps{
		Value:       evictionsAlarm.AlarmArn(),
		Description: jsii.String("ARN of ElastiCache evictions alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheCacheHitRateAlarmArn"), &awscdk.CfnOutputProps{
		Value:       hitRateAlarm.AlarmArn(),
		Description: jsii.String("ARN of ElastiCache cache hit rate alarm"),
	})
}

// createS3Alarms creates the bucket alarms. Storage metrics report once per
// day, so the size alarm reacts slowly; the error rate alarms need request
// metrics enabled on the bucket.
func (s *MonitoringStack) createS3Alarms() {
	bucketName := jsii.String(s.Config.StaticAssetsBucket)

	sizeAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("S3SizeAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-s3-size-high"),
		AlarmDescription: jsii.String("Alert when S3 bucket size exceeds 10GB"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:  jsii.String("AWS/S3"),
			MetricName: jsii.String("BucketSizeBytes"),
			DimensionsMap: &map[string]*string{
				"BucketName":  bucketName,
				"StorageType": jsii.String("StandardStorage"),
			},
			Statistic: jsii.String("Average"),
			Period:    awscdk.Duration_Days(jsii.Number(1)),
		}),
		Threshold:          jsii.Number(10737418240), // 10 GB in bytes
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	sizeAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	clientErrorsAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("S34xxErrorsAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-s3-4xx-errors"),
		AlarmDescription: jsii.String("Alert when S3 4xx error rate exceeds 5%"),
		Metric: awscloudwatch.NewMathExpression(&awscloudwatch.MathExpressionProps{
			Expression: jsii.String("(errors / requests) * 100"),
			UsingMetrics: &map[string]awscloudwatch.IMetric{
				"errors": awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/S3"),
					MetricName:    jsii.String("4xxErrors"),
					DimensionsMap: &map[string]*string{"BucketName": bucketName},
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
				}),
				"requests": awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/S3"),
					MetricName:    jsii.String("AllRequests"),
					DimensionsMap: &map[string]*string{"BucketName": bucketName},
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
				}),
			},
			Label: jsii.String("4xx Error Rate %"),
		}),
		Threshold:          jsii.Number(5),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	clientErrorsAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.WarningAlertsTopic))

	serverErrorsAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("S35xxErrorsAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-s3-5xx-errors"),
		AlarmDescription: jsii.String("Alert when S3 5xx error rate exceeds 1%"),
		Metric: awscloudwatch.NewMathExpression(&awscloudwatch.MathExpressionProps{
			Expression: jsii.String("(errors / requests) * 100"),
			UsingMetrics: &map[string]awscloudwatch.IMetric{
				"errors": awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/S3"),
					MetricName:    jsii.String("5xxErrors"),
					DimensionsMap: &map[string]*string{"BucketName": bucketName},
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
				}),
				"requests": awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/S3"),
					MetricName:    jsii.String("AllRequests"),
					DimensionsMap: &map[string]*string{"BucketName": bucketName},
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
				}),
			},
			Label: jsii.String("5xx Error Rate %"),
		}),
		Threshold:          jsii.Number(1),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	serverErrorsAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.CriticalAlertsTopic))

	awscdk.NewCfnOutput(s.Stack, jsii.String("S3SizeAlarmArn"), &awscdk.CfnOutputProps{
		Value:       sizeAlarm.AlarmArn(),
		Description: jsii.String("ARN of S3 bucket size alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("S34xxErrorsAlarmArn"), &awscdk.CfnOutputProps{
		Value:       clientErrorsAlarm.AlarmArn(),
		Description: jsii.String("ARN of S3 4xx errors alarm"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("S35xxErrorsAlarmArn"), &awscdk.CfnOutputProps{
		Value:       serverErrorsAlarm.AlarmArn(),
		Description: jsii.String("ARN of S3 5xx errors alarm"),
	})
}

// createDashboard builds the overview dashboard: RDS, ElastiCache, S3,
// CloudFront, and VPC endpoint traffic, two widgets per row.
func (s *MonitoringStack) createDashboard() {
	dashboardName := jsii.String("ShowCore-Phase1-Dashboard")
	s.Dashboard = awscloudwatch.NewDashboard(s.Stack, jsii.String("Dashboard"), &awscloudwatch.DashboardProps{
		DashboardName: dashboardName,
	})

	rdsDimensions := &map[string]*string{"DBInstanceIdentifier": jsii.String(s.Config.RdsInstanceID)}
	cacheDimensions := &map[string]*string{"CacheClusterId": jsii.String(s.Config.ElastiCacheClusterID)}
	distributionDimensions := &map[string]*string{"DistributionId": jsii.String(s.Config.CloudFrontDistributionID)}
	endpointDimensions := &map[string]*string{"VPC Endpoint Id": jsii.String(s.Config.VpcEndpointID)}
	bucketName := jsii.String(s.Config.StaticAssetsBucket)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("RDS - CPU Utilization"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/RDS"),
					MetricName:    jsii.String("CPUUtilization"),
					DimensionsMap: rdsDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("CPU %"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("RDS - Database Connections"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/RDS"),
					MetricName:    jsii.String("DatabaseConnections"),
					DimensionsMap: rdsDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Connections"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("RDS - Read/Write Latency"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/RDS"),
					MetricName:    jsii.String("ReadLatency"),
					DimensionsMap: rdsDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Read Latency (ms)"),
				}),
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/RDS"),
					MetricName:    jsii.String("WriteLatency"),
					DimensionsMap: rdsDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Write Latency (ms)"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("RDS - Free Storage Space"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/RDS"),
					MetricName:    jsii.String("FreeStorageSpace"),
					DimensionsMap: rdsDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Free Storage (bytes)"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("ElastiCache - CPU Utilization"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("CPUUtilization"),
					DimensionsMap: cacheDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("CPU %"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("ElastiCache - Memory Usage"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("DatabaseMemoryUsagePercentage"),
					DimensionsMap: cacheDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Memory %"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("ElastiCache - Evictions"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("Evictions"),
					DimensionsMap: cacheDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Evictions"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("ElastiCache - Cache Hits/Misses"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("CacheHits"),
					DimensionsMap: cacheDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Cache Hits"),
				}),
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/ElastiCache"),
					MetricName:    jsii.String("CacheMisses"),
					DimensionsMap: cacheDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Cache Misses"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("S3 - Bucket Size and Object Count"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:  jsii.String("AWS/S3"),
					MetricName: jsii.String("BucketSizeBytes"),
					DimensionsMap: &map[string]*string{
						"BucketName":  bucketName,
						"StorageType": jsii.String("StandardStorage"),
					},
					Statistic: jsii.String("Average"),
					Period:    awscdk.Duration_Days(jsii.Number(1)),
					Label:     jsii.String("Bucket Size (bytes)"),
				}),
			},
			Right: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:  jsii.String("AWS/S3"),
					MetricName: jsii.String("NumberOfObjects"),
					DimensionsMap: &map[string]*string{
						"BucketName":  bucketName,
						"StorageType": jsii.String("AllStorageTypes"),
					},
					Statistic: jsii.String("Average"),
					Period:    awscdk.Duration_Days(jsii.Number(1)),
					Label:     jsii.String("Object Count"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("S3 - Errors"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/S3"),
					MetricName:    jsii.String("4xxErrors"),
					DimensionsMap: &map[string]*string{"BucketName": bucketName},
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("4xx Errors"),
				}),
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/S3"),
					MetricName:    jsii.String("5xxErrors"),
					DimensionsMap: &map[string]*string{"BucketName": bucketName},
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("5xx Errors"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("CloudFront - Requests and Data Transfer"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/CloudFront"),
					MetricName:    jsii.String("Requests"),
					DimensionsMap: distributionDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Requests"),
				}),
			},
			Right: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/CloudFront"),
					MetricName:    jsii.String("BytesDownloaded"),
					DimensionsMap: distributionDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Bytes Downloaded"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("CloudFront - Error Rates"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/CloudFront"),
					MetricName:    jsii.String("4xxErrorRate"),
					DimensionsMap: distributionDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("4xx Error Rate %"),
				}),
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/CloudFront"),
					MetricName:    jsii.String("5xxErrorRate"),
					DimensionsMap: distributionDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("5xx Error Rate %"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("CloudFront - Cache Hit Rate"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/CloudFront"),
					MetricName:    jsii.String("CacheHitRate"),
					DimensionsMap: distributionDimensions,
					Statistic:     jsii.String("Average"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Cache Hit Rate %"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	s.Dashboard.AddWidgets(
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("VPC Endpoints - Network Traffic (Packets)"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/PrivateLinkEndpoints"),
					MetricName:    jsii.String("PacketsReceived"),
					DimensionsMap: endpointDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Packets Received"),
				}),
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/PrivateLinkEndpoints"),
					MetricName:    jsii.String("PacketsSent"),
					DimensionsMap: endpointDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Packets Sent"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
		awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
			Title: jsii.String("VPC Endpoints - Network Traffic (Bytes)"),
			Left: &[]awscloudwatch.IMetric{
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/PrivateLinkEndpoints"),
					MetricName:    jsii.String("BytesReceived"),
					DimensionsMap: endpointDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Bytes Received"),
				}),
				awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
					Namespace:     jsii.String("AWS/PrivateLinkEndpoints"),
					MetricName:    jsii.String("BytesSent"),
					DimensionsMap: endpointDimensions,
					Statistic:     jsii.String("Sum"),
					Period:        awscdk.Duration_Minutes(jsii.Number(5)),
					Label:         jsii.String("Bytes Sent"),
				}),
			},
			Width:  jsii.Number(12),
			Height: jsii.Number(6),
		}),
	)

	awscdk.NewCfnOutput(s.Stack, jsii.String("DashboardUrl"), &awscdk.CfnOutputProps{
		Value: jsii.String(fmt.Sprintf(
			"https://console.aws.amazon.com/cloudwatch/home?region=%s#dashboards:name=%s",
			*s.Region(), *dashboardName)),
		Description: jsii.String("URL to CloudWatch dashboard for ShowCore Phase 1"),
	})
}

// createLogGroups creates the Phase 1 log groups with one week retention.
// The services write the log streams; creating the groups here pins the
// retention before the first write.
func (s *MonitoringStack) createLogGroups() {
	rdsLogGroup := awslogs.NewLogGroup(s.Stack, jsii.String("RdsLogGroup"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String(fmt.Sprintf("/aws/rds/instance/%s/postgresql", s.Config.RdsInstanceID)),
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	cacheLogGroup := awslogs.NewLogGroup(s.Stack, jsii.String("ElastiCacheLogGroup"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String(fmt.Sprintf("/aws/elasticache/%s", s.Config.ElastiCacheClusterID)),
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	trailLogGroup := awslogs.NewLogGroup(s.Stack, jsii.String("CloudTrailLogGroup"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String("/aws/cloudtrail/showcore"),
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsLogGroupArn"), &awscdk.CfnOutputProps{
		Value:       rdsLogGroup.LogGroupArn(),
		Description: jsii.String("ARN of RDS CloudWatch log group"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheLogGroupArn"), &awscdk.CfnOutputProps{
		Value:       cacheLogGroup.LogGroupArn(),
		Description: jsii.String("ARN of ElastiCache CloudWatch log group"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("CloudTrailLogGroupArn"), &awscdk.CfnOutputProps{
		Value:       trailLogGroup.LogGroupArn(),
		Description: jsii.String("ARN of CloudTrail CloudWatch log group"),
	})
}
