package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
)

// newBackupTestStack wires the backup stack to a monitoring stack in the same
// app, mirroring how BuildStacks passes the critical alerts topic across.
func newBackupTestStack(config StackConfig) *BackupStack {
	app := awscdk.NewApp(nil)
	monitoring := NewMonitoringStack(app, "TestMonitoringStack", config)
	return NewBackupStack(app, "TestBackupStack", monitoring.CriticalAlertsTopic, config)
}

func TestBackupStackVault(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::Backup::BackupVault"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::Backup::BackupVault"), map[string]interface{}{
		"BackupVaultName": "showcore-backup-vault",
	})

	// Recovery points survive stack deletion
	template.HasResource(jsii.String("AWS::Backup::BackupVault"), map[string]interface{}{
		"DeletionPolicy": "Retain",
	})
}

func TestBackupStackRdsPlan(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::Backup::BackupPlan"), jsii.Number(2))
	template.HasResourceProperties(jsii.String("AWS::Backup::BackupPlan"), map[string]interface{}{
		"BackupPlan": assertions.Match_ObjectLike(&map[string]interface{}{
			"BackupPlanName": "showcore-rds-backup-plan",
			"BackupPlanRule": []interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"RuleName":                "daily-rds-backup",
					"ScheduleExpression":      "cron(0 5 * * ? *)",
					"StartWindowMinutes":      60,
					"CompletionWindowMinutes": 120,
					"EnableContinuousBackup":  true,
					"Lifecycle":               map[string]interface{}{"DeleteAfterDays": 7},
				}),
			},
		}),
	})
}

func TestBackupStackElastiCachePlan(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	// ElastiCache does not support continuous backup, snapshots only
	template.HasResourceProperties(jsii.String("AWS::Backup::BackupPlan"), map[string]interface{}{
		"BackupPlan": assertions.Match_ObjectLike(&map[string]interface{}{
			"BackupPlanName": "showcore-elasticache-backup-plan",
			"BackupPlanRule": []interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"RuleName":               "daily-elasticache-snapshot",
					"ScheduleExpression":     "cron(0 5 * * ? *)",
					"EnableContinuousBackup": assertions.Match_Absent(),
					"Lifecycle":              map[string]interface{}{"DeleteAfterDays": 7},
				}),
			},
		}),
	})
}

func TestBackupStackSelections(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::Backup::BackupSelection"), jsii.Number(2))

	for _, selectionName := range []string{"showcore-rds-instances", "showcore-elasticache-clusters"} {
		template.HasResourceProperties(jsii.String("AWS::Backup::BackupSelection"), map[string]interface{}{
			"BackupSelection": assertions.Match_ObjectLike(&map[string]interface{}{
				"SelectionName": selectionName,
				"ListOfTags": []interface{}{
					map[string]interface{}{
						"ConditionKey":   "Project",
						"ConditionType":  "STRINGEQUALS",
						"ConditionValue": "ShowCore",
					},
				},
			}),
		})
	}

	// One service role per selection
	template.ResourceCountIs(jsii.String("AWS::IAM::Role"), jsii.Number(2))
}

func TestBackupStackFailureAlarms(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Alarm"), jsii.Number(2))

	for _, alarm := range []struct{ name, resourceType string }{
		{"showcore-rds-backup-failure", "RDS"},
		{"showcore-elasticache-backup-failure", "ElastiCache"},
	} {
		template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]interface{}{
			"AlarmName":  alarm.name,
			"Namespace":  "AWS/Backup",
			"MetricName": "NumberOfBackupJobsFailed",
			"Dimensions": []interface{}{
				map[string]interface{}{"Name": "ResourceType", "Value": alarm.resourceType},
			},
			"Statistic":          "Sum",
			"Period":             300,
			"Threshold":          1,
			"ComparisonOperator": "GreaterThanOrEqualToThreshold",
			"TreatMissingData":   "notBreaching",
			"AlarmActions":       assertions.Match_AnyValue(),
		})
	}
}

func TestBackupStackWithoutTopic(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewBackupStack(app, "TestBackupStack", nil, testConfig())
	template := assertions.Template_FromStack(stack, nil)

	// Plans still deploy, failures just are not routed anywhere
	template.ResourceCountIs(jsii.String("AWS::Backup::BackupVault"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::Backup::BackupPlan"), jsii.Number(2))
	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Alarm"), jsii.Number(0))
}

func TestBackupStackVaultTags(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	// Vault tags render as a map, not a tag list
	template.HasResourceProperties(jsii.String("AWS::Backup::BackupVault"), map[string]interface{}{
		"BackupVaultTags": assertions.Match_ObjectLike(&map[string]interface{}{
			"Project":        "ShowCore",
			"Component":      "Backup",
			"BackupRequired": "true",
			"Compliance":     "Required",
		}),
	})
}

func TestBackupStackOutputs(t *testing.T) {
	stack := newBackupTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	for logicalID, exportName := range map[string]string{
		"BackupVaultName":         "ShowCoreBackupVaultName",
		"BackupVaultArn":          "ShowCoreBackupVaultArn",
		"RdsBackupPlanId":         "ShowCoreRdsBackupPlanId",
		"ElastiCacheBackupPlanId": "ShowCoreElastiCacheBackupPlanId",
	} {
		template.HasOutput(jsii.String(logicalID), map[string]interface{}{
			"Export": map[string]interface{}{"Name": exportName},
		})
	}
}
