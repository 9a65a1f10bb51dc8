package showcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// DatabaseStack deploys the ShowCore PostgreSQL database: a single-AZ
// db.t3.micro instance (Free Tier) in the private subnets, encrypted with
// AWS managed keys, forced SSL, seven day backups, and CPU and storage
// alarms.
type DatabaseStack struct {
	*Stack

	// VPC is the ShowCore VPC.
	VPC awsec2.IVpc

	// SecurityGroup guards the database port.
	SecurityGroup awsec2.ISecurityGroup

	// SubnetGroup places the instance in the private subnets.
	SubnetGroup awsrds.SubnetGroup

	// ParameterGroup forces SSL connections.
	ParameterGroup awsrds.ParameterGroup

	// Instance is the PostgreSQL instance.
	Instance awsrds.DatabaseInstance
}

// NewDatabaseStack creates the ShowCore database stack.
func NewDatabaseStack(scope constructs.Construct, id string, vpc awsec2.IVpc, rdsSecurityGroup awsec2.ISecurityGroup, config StackConfig) *DatabaseStack {
	s := &DatabaseStack{
		Stack: newStack(scope, id, ComponentDatabase,
			"ShowCore Phase 1 - RDS PostgreSQL Database (db.t3.micro, Free Tier)",
			config),
		VPC:           vpc,
		SecurityGroup: rdsSecurityGroup,
	}

	s.createSubnetGroup()
	s.createParameterGroup()
	s.createInstance()
	s.createAlarms()
	s.addOutputs()

	return s
}

// createSubnetGroup places the database in the private subnets.
func (s *DatabaseStack) createSubnetGroup() {
	s.SubnetGroup = awsrds.NewSubnetGroup(s.Stack, jsii.String("DbSubnetGroup"), &awsrds.SubnetGroupProps{
		Vpc:         s.VPC,
		Description: jsii.String("Subnet group for ShowCore RDS in private subnets"),
		VpcSubnets:  &awsec2.SubnetSelection{SubnetType: privateSubnetType(s.Config)},
	})
}

// createParameterGroup forces SSL on every connection.
func (s *DatabaseStack) createParameterGroup() {
	s.ParameterGroup = awsrds.NewParameterGroup(s.Stack, jsii.String("ParameterGroup"), &awsrds.ParameterGroupProps{
		Engine: awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
			Version: awsrds.PostgresEngineVersion_VER_16(),
		}),
		Description: jsii.String("Parameter group for ShowCore PostgreSQL 16"),
		Parameters: &map[string]*string{
			"rds.force_ssl": jsii.String("1"),
		},
	})
}

// createInstance creates the PostgreSQL instance. Single AZ and db.t3.micro
// keep it inside the Free Tier; credentials are generated by RDS and land in
// Secrets Manager.
func (s *DatabaseStack) createInstance() {
	s.Instance = awsrds.NewDatabaseInstance(s.Stack, jsii.String("Database"), &awsrds.DatabaseInstanceProps{
		Engine: awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
			Version: awsrds.PostgresEngineVersion_VER_16(),
		}),
		InstanceType:               awsec2.InstanceType_Of(awsec2.InstanceClass_BURSTABLE3, awsec2.InstanceSize_MICRO),
		Vpc:                        s.VPC,
		SubnetGroup:                s.SubnetGroup,
		SecurityGroups:             &[]awsec2.ISecurityGroup{s.SecurityGroup},
		MultiAz:                    jsii.Bool(false),
		AvailabilityZone:           jsii.String("us-east-1a"),
		AllocatedStorage:           jsii.Number(20),
		StorageType:                awsrds.StorageType_GP3,
		StorageEncrypted:           jsii.Bool(true),
		DatabaseName:               jsii.String("showcore"),
		ParameterGroup:             s.ParameterGroup,
		BackupRetention:            awscdk.Duration_Days(jsii.Number(7)),
		PreferredBackupWindow:      jsii.String("03:00-04:00"),
		PreferredMaintenanceWindow: jsii.String("Sun:04:00-Sun:05:00"),
		AutoMinorVersionUpgrade:    jsii.Bool(true),
		DeletionProtection:         jsii.Bool(false),
		CloudwatchLogsExports:      jsii.Strings("postgresql"),
		InstanceIdentifier:         jsii.String(s.MustResourceName("rds")),
	})
}

// createAlarms creates the CPU and free storage alarms for the instance.
// The standalone monitoring stack carries the full alarm set; these two stay
// with the database so they exist even when monitoring is deployed later.
func (s *DatabaseStack) createAlarms() {
	awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsCpuHighAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-cpu-high"),
		AlarmDescription: jsii.String("Alert when RDS CPU exceeds 80%"),
		Metric: s.Instance.MetricCPUUtilization(&awscloudwatch.MetricOptions{
			Period:    awscdk.Duration_Minutes(jsii.Number(5)),
			Statistic: jsii.String("Average"),
		}),
		Threshold:          jsii.Number(80),
		EvaluationPeriods:  jsii.Number(1),
		DatapointsToAlarm:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})

	awscloudwatch.NewAlarm(s.Stack, jsii.String("RdsStorageHighAlarm"), &awscloudwatch.AlarmProps{
		AlarmName:        jsii.String("showcore-rds-storage-high"),
		AlarmDescription: jsii.String("Alert when RDS free storage drops below 3 GB"),
		Metric: s.Instance.MetricFreeStorageSpace(&awscloudwatch.MetricOptions{
			Period:    awscdk.Duration_Minutes(jsii.Number(5)),
			Statistic: jsii.String("Minimum"),
		}),
		Threshold:          jsii.Number(3221225472), // 3 GiB in bytes
		EvaluationPeriods:  jsii.Number(1),
		DatapointsToAlarm:  jsii.Number(1),
		ComparisonOperator: awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
}

// addOutputs exports the connection details for the application tier.
func (s *DatabaseStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsSubnetGroupName"), &awscdk.CfnOutputProps{
		Value:       s.SubnetGroup.SubnetGroupName(),
		Description: jsii.String("ShowCore RDS subnet group name"),
		ExportName:  jsii.String("ShowCoreRdsSubnetGroupName"),
	})

	// The L2 parameter group does not expose its name, so read it from the
	// underlying CloudFormation resource.
	cfnParameterGroup := s.ParameterGroup.Node().DefaultChild().(awsrds.CfnDBParameterGroup)
	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsParameterGroupName"), &awscdk.CfnOutputProps{
		Value:       cfnParameterGroup.Ref(),
		Description: jsii.String("ShowCore RDS parameter group name"),
		ExportName:  jsii.String("ShowCoreRdsParameterGroupName"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsEndpoint"), &awscdk.CfnOutputProps{
		Value:       s.Instance.DbInstanceEndpointAddress(),
		Description: jsii.String("ShowCore RDS endpoint address"),
		ExportName:  jsii.String("ShowCoreRdsEndpoint"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsPort"), &awscdk.CfnOutputProps{
		Value:       s.Instance.DbInstanceEndpointPort(),
		Description: jsii.String("ShowCore RDS endpoint port"),
		ExportName:  jsii.String("ShowCoreRdsPort"),
	})

	awscdk.NewCfnOutput(s.Stack, jsii.String("RdsDatabaseName"), &awscdk.CfnOutputProps{
		Value:       jsii.String("showcore"),
		Description: jsii.String("ShowCore RDS database name"),
		ExportName:  jsii.String("ShowCoreRdsDatabaseName"),
	})
}
