package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
)

func newDatabaseTestStack(config StackConfig) *DatabaseStack {
	app := awscdk.NewApp(nil)
	network := NewNetworkStack(app, "TestNetworkStack", config)
	security := NewSecurityStack(app, "TestSecurityStack", network.VPC, config)
	return NewDatabaseStack(app, "TestDatabaseStack", network.VPC, security.RdsSecurityGroup, config)
}

func TestDatabaseStackInstance(t *testing.T) {
	stack := newDatabaseTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::RDS::DBInstance"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::RDS::DBInstance"), map[string]interface{}{
		"DBInstanceIdentifier":        "showcore-database-production-rds",
		"DBInstanceClass":             "db.t3.micro",
		"Engine":                      "postgres",
		"MultiAZ":                     false,
		"AvailabilityZone":            "us-east-1a",
		"AllocatedStorage":            "20",
		"StorageType":                 "gp3",
		"StorageEncrypted":            true,
		"DBName":                      "showcore",
		"BackupRetentionPeriod":       7,
		"PreferredBackupWindow":       "03:00-04:00",
		"PreferredMaintenanceWindow":  "Sun:04:00-Sun:05:00",
		"AutoMinorVersionUpgrade":     true,
		"DeletionProtection":          false,
		"EnableCloudwatchLogsExports": []interface{}{"postgresql"},
	})
}

func TestDatabaseStackParameterGroupForcesSSL(t *testing.T) {
	stack := newDatabaseTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.HasResourceProperties(jsii.String("AWS::RDS::DBParameterGroup"), map[string]interface{}{
		"Family": "postgres16",
		"Parameters": map[string]interface{}{
			"rds.force_ssl": "1",
		},
	})
}

func TestDatabaseStackSubnetGroup(t *testing.T) {
	stack := newDatabaseTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::RDS::DBSubnetGroup"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::RDS::DBSubnetGroup"), map[string]interface{}{
		"DBSubnetGroupDescription": "Subnet group for ShowCore RDS in private subnets",
	})
}

func TestDatabaseStackGeneratesCredentials(t *testing.T) {
	stack := newDatabaseTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	// RDS generates the master credentials into Secrets Manager
	template.ResourceCountIs(jsii.String("AWS::SecretsManager::Secret"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::SecretsManager::SecretTargetAttachment"), jsii.Number(1))
}

func TestDatabaseStackAlarms(t *testing.T) {
	stack := newDatabaseTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Alarm"), jsii.Number(2))

	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]interface{}{
		"AlarmName":          "showcore-rds-cpu-high",
		"MetricName":         "CPUUtilization",
		"Namespace":          "AWS/RDS",
		"Statistic":          "Average",
		"Period":             300,
		"Threshold":          80,
		"ComparisonOperator": "GreaterThanThreshold",
		"TreatMissingData":   "notBreaching",
	})

	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]interface{}{
		"AlarmName":          "showcore-rds-storage-high",
		"MetricName":         "FreeStorageSpace",
		"Namespace":          "AWS/RDS",
		"Statistic":          "Minimum",
		"Threshold":          3221225472,
		"ComparisonOperator": "LessThanThreshold",
		"TreatMissingData":   "notBreaching",
	})
}

func TestDatabaseStackOutputs(t *testing.T) {
	stack := newDatabaseTestStack(testConfig())
	template := assertions.Template_FromStack(stack, nil)

	for logicalID, exportName := range map[string]string{
		"RdsSubnetGroupName":    "ShowCoreRdsSubnetGroupName",
		"RdsParameterGroupName": "ShowCoreRdsParameterGroupName",
		"RdsEndpoint":           "ShowCoreRdsEndpoint",
		"RdsPort":               "ShowCoreRdsPort",
		"RdsDatabaseName":       "ShowCoreRdsDatabaseName",
	} {
		template.HasOutput(jsii.String(logicalID), map[string]interface{}{
			"Export": map[string]interface{}{"Name": exportName},
		})
	}
}
