package showcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsbackup"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsevents"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// BackupStack deploys AWS Backup for the data stores: one vault, a daily
// plan for RDS with continuous backup, a daily snapshot plan for
// ElastiCache, and tag based selections that pick up every resource tagged
// Project=ShowCore. Retention is seven days on both plans.
type BackupStack struct {
	*Stack

	// CriticalAlertsTopic receives the backup failure alarms. When nil the
	// plans still run but failures only show up in the console.
	CriticalAlertsTopic awssns.ITopic

	// Vault holds the RDS backups and ElastiCache snapshots.
	Vault awsbackup.BackupVault

	// RdsBackupPlan is the daily RDS plan with point in time recovery.
	RdsBackupPlan awsbackup.BackupPlan

	// ElastiCacheBackupPlan is the daily ElastiCache snapshot plan.
	ElastiCacheBackupPlan awsbackup.BackupPlan
}

// NewBackupStack creates the ShowCore backup stack.
func NewBackupStack(scope constructs.Construct, id string, criticalAlertsTopic awssns.ITopic, config StackConfig) *BackupStack {
	s := &BackupStack{
		Stack: newStack(scope, id, ComponentBackup,
			"ShowCore Phase 1 - AWS Backup Plans for RDS and ElastiCache",
			config),
		CriticalAlertsTopic: criticalAlertsTopic,
	}

	s.createVault()
	s.createRdsBackupPlan()
	s.createElastiCacheBackupPlan()
	if s.CriticalAlertsTopic != nil {
		s.createFailureAlarms()
	}
	s.addOutputs()

	return s
}

// createVault creates the backup vault. AWS managed encryption keeps the
// vault free; the retain policy protects existing recovery points when the
// stack is deleted.
func (s *BackupStack) createVault() {
	s.Vault = awsbackup.NewBackupVault(s.Stack, jsii.String("BackupVault"), &awsbackup.BackupVaultProps{
		BackupVaultName: jsii.String("showcore-backup-vault"),
		RemovalPolicy:   awscdk.RemovalPolicy_RETAIN,
	})

	s.AddCustomTag("BackupRequired", "true")
	s.AddCustomTag("Compliance", "Required")
}

// createRdsBackupPlan creates the daily RDS backup plan and its tag based
// selection. Continuous backup enables point in time recovery within the
// seven day retention window.
func (s *BackupStack) createRdsBackupPlan() {
	s.RdsBackupPlan = awsbackup.NewBackupPlan(s.Stack, jsii.String("RdsBackupPlan"), &awsbackup.BackupPlanProps{
		BackupPlanName: jsii.String("showcore-rds-backup-plan"),
		BackupVault:    s.Vault,
		BackupPlanRules: &[]awsbackup.BackupPlanRule{
			awsbackup.NewBackupPlanRule(&awsbackup.BackupPlanRuleProps{
				RuleName:    jsii.String("daily-rds-backup"),
				BackupVault: s.Vault,
				ScheduleExpression: awsevents.Schedule_Cron(&awsevents.CronOptions{
					Minute: jsii.String("0"),
					Hour:   jsii.String("5"),
				}),
				StartWindow:            awscdk.Duration_Hours(jsii.Number(1)),
				CompletionWindow:       awscdk.Duration_Hours(jsii.Number(2)),
				DeleteAfter:            awscdk.Duration_Days(jsii.Number(7)),
				EnableContinuousBackup: jsii.Bool(true),
			}),
		},
	})

	awsbackup.NewBackupSelection(s.Stack, jsii.String("RdsBackupSelection"), &awsbackup.BackupSelectionProps{
		BackupPlan:          s.RdsBackupPlan,
		BackupSelectionName: jsii.String("showcore-rds-instances"),
		Resources: &[]awsbackup.BackupResource{
			awsbackup.BackupResource_FromTag(jsii.String("Project"), jsii.String("ShowCore"),
				awsbackup.TagOperation_STRING_EQUALS),
		},
		AllowRestores: jsii.Bool(true),
	})
}

// createElastiCacheBackupPlan creates the daily snapshot plan for the cache
// and its tag based selection. Continuous backup is not supported for
// ElastiCache, so the plan only takes the daily snapshot.
func (s *BackupStack) createElastiCacheBackupPlan() {
	s.ElastiCacheBackupPlan = awsbackup.NewBackupPlan(s.Stack, jsii.String("ElastiCacheBackupPlan"), &awsbackup.BackupPlanProps{
		BackupPlanName: jsii.String("showcore-elasticache-backup-plan"),
		BackupVault:    s.Vault,
		BackupPlanRules: &[]awsbackup.BackupPlanRule{
			awsbackup.NewBackupPlanRule(&awsbackup.BackupPlanRuleProps{
				RuleName:    jsii.String("daily-elasticache-snapshot"),
				BackupVault: s.Vault,
				ScheduleExpression: awsevents.Schedule_Cron(&awsevents.CronOptions{
					Minute: jsii.String("0"),
					Hour:   jsii.String("5"),
				}),
				StartWindow:      awscdk.Duration_Hours(jsii.Number(1)),
				CompletionWindow: awscdk.Duration_Hours(jsii.Number(2)),
				DeleteAfter:      awscdk.Duration_Days(jsii.Number(7)),
			}),
		},
	})

	awsbackup.NewBackupSelection(s.Stack, jsii.String("ElastiCacheBackupSelection"), &awsbackup.BackupSelectionProps{
		BackupPlan:          s.ElastiCacheBackupPlan,
		BackupSelectionName: jsii.String("showcore-elasticache-clusters"),
		Resources: &[]awsbackup.BackupResource{
			awsbackup.BackupResource_FromTag(jsii.String("Project"), jsii.String("ShowCore"),
				awsbackup.TagOperation_STRING_EQUALS),
		},
		AllowRestores: jsii.Bool(true),
	})
}

// createFailureAlarms alerts on failed backup jobs per resource type. AWS
// Backup publishes job metrics account wide, so the alarms watch the
// ResourceType dimension rather than individual plans.
func (s *BackupStack) createFailureAlarms() {
	rdsAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsBackupFailureAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-backup-failure"),
		AlarmDescription: jsii.String("Alert when RDS backup jobs fail"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/Backup"),
			MetricName:    jsii.String("NumberOfBackupJobsFailed"),
			DimensionsMap: &map[string]*string{"ResourceType": jsii.String("RDS")},
			Statistic:     jsii.String("Sum"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(1),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	rdsAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.CriticalAlertsTopic))

	cacheAlarm := awscloudwatch.NewAlarm(s.Stack, jsii.String("ElastiCacheBackupFailureAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-elasticache-backup-failure"),
		AlarmDescription: jsii.String("Alert when ElastiCache backup jobs fail"),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:     jsii.String("AWS/Backup"),
			MetricName:    jsii.String("NumberOfBackupJobsFailed"),
			DimensionsMap: &map[string]*string{"ResourceType": jsii.String("ElastiCache")},
			Statistic:     jsii.String("Sum"),
			Period:        awscdk.Duration_Minutes(jsii.Number(5)),
		}),
		Threshold:          jsii.Number(1),
		EvaluationPeriods:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
	cacheAlarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(s.CriticalAlertsTopic))

	s.AddCustomTag("AlarmType", "BackupFailure")
	s.AddCustomTag("Severity", "Critical")
}

// addOutputs exports the vault and plan identifiers.
func (s *BackupStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("BackupVaultName"), &awscdk.CfnOutputProps{
		Value:       s.Vault.BackupVaultName(),
		Description: jsii.String("Name of the ShowCore backup vault"),
		ExportName:  jsii.String("ShowCoreBackupVaultName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("BackupVaultArn"), &awscdk.CfnOutputProps{
		Value:       s.Vault.BackupVaultArn(),
		Description: jsii.String("ARN of the ShowCore backup vault"),
		ExportName:  jsii.String("ShowCoreBackupVaultArn"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsBackupPlanId"), &awscdk.CfnOutputProps{
		Value:       s.RdsBackupPlan.BackupPlanId(),
		Description: jsii.String("ID of the RDS backup plan"),
		ExportName:  jsii.String("ShowCoreRdsBackupPlanId"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("ElastiCacheBackupPlanId"), &awscdk.CfnOutputProps{
		Value:       s.ElastiCacheBackupPlan.BackupPlanId(),
		Description: jsii.String("ID of the ElastiCache backup plan"),
		ExportName:  jsii.String("ShowCoreElastiCacheBackupPlanId"),
	})
}
