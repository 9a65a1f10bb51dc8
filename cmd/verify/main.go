// verify checks deployed ShowCore Phase 1 infrastructure against the
// expected configuration.
//
// It queries live AWS resources and prints a pass/fail line per check:
//
//	verify                                # Run all checks in us-east-1
//	verify --region us-west-2             # Check a specific region
//	verify --environment staging          # Check the staging environment
//	verify --checks network,security      # Run selected check groups
//
// The exit code is non-zero when any check fails.
//
// Install:
//
//	go install github.com/showcore/showcore-aws-cdk/cmd/verify@latest
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/showcore/showcore-aws-cdk/showcore"
	"github.com/showcore/showcore-aws-cdk/verify"
)

// trailName is the fixed audit trail name created by the security stack.
const trailName = "showcore-audit-trail"

// sensitivePorts must never accept ingress from 0.0.0.0/0.
var sensitivePorts = []int32{22, 5432, 6379}

var (
	region      = flag.String("region", "", "AWS region (default: AWS_REGION or us-east-1)")
	profile     = flag.String("profile", "", "AWS profile name (default: default profile)")
	environment = flag.String("environment", "production", "Deployment environment to check")
	checksFlag  = flag.String("checks", "", "Comma-separated check groups to run (default: all)")
)

type result struct {
	name   string
	passed bool
	detail string
}

func pass(name, detail string) result { return result{name: name, passed: true, detail: detail} }
func fail(name, detail string) result { return result{name: name, passed: false, detail: detail} }

// checkContext carries everything a check group needs.
type checkContext struct {
	validator *verify.Validator
	config    showcore.StackConfig
	accountID string
}

type checkGroup struct {
	name string
	run  func(ctx context.Context, c *checkContext) []result
}

var checkGroups = []checkGroup{
	{"network", checkNetwork},
	{"security", checkSecurity},
	{"database", checkDatabase},
	{"cache", checkCache},
	{"storage", checkStorage},
	{"monitoring", checkMonitoring},
	{"backup", checkBackup},
	{"tagging", checkTagging},
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Verify deployed ShowCore Phase 1 infrastructure.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCheck groups:\n")
		for _, group := range checkGroups {
			fmt.Fprintf(os.Stderr, "  %s\n", group.name)
		}
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine region
	awsRegion := *region
	if awsRegion == "" {
		awsRegion = os.Getenv("AWS_REGION")
	}
	if awsRegion == "" {
		awsRegion = os.Getenv("AWS_DEFAULT_REGION")
	}
	if awsRegion == "" {
		awsRegion = "us-east-1"
	}

	if err := showcore.ValidateEnvironment(*environment); err != nil {
		return err
	}

	selected, err := selectGroups(*checksFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()

	opts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if *profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(*profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	validator := verify.New(cfg)

	accountID, err := validator.GetAccountID(ctx)
	if err != nil {
		return fmt.Errorf("getting AWS identity: %w", err)
	}

	stackConfig := showcore.StackConfig{Environment: strings.ToLower(*environment), Region: awsRegion}
	stackConfig.ApplyDefaults()

	fmt.Println("=== ShowCore Infrastructure Verification ===")
	fmt.Println()
	fmt.Printf("Region: %s\n", awsRegion)
	fmt.Printf("Environment: %s\n", stackConfig.Environment)
	fmt.Printf("AWS Account: %s\n", accountID)

	c := &checkContext{validator: validator, config: stackConfig, accountID: accountID}

	passed, failed := 0, 0
	for _, group := range selected {
		fmt.Println()
		fmt.Printf("--- %s ---\n", group.name)
		for _, r := range group.run(ctx, c) {
			status := "PASS"
			if !r.passed {
				status = "FAIL"
				failed++
			} else {
				passed++
			}
			fmt.Printf("  %s  %s: %s\n", status, r.name, r.detail)
		}
	}

	fmt.Println()
	fmt.Printf("Result: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

func selectGroups(value string) ([]checkGroup, error) {
	if value == "" {
		return checkGroups, nil
	}

	byName := make(map[string]checkGroup, len(checkGroups))
	var names []string
	for _, group := range checkGroups {
		byName[group.name] = group
		names = append(names, group.name)
	}

	var selected []checkGroup
	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		group, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown check group %q (valid: %s)", name, strings.Join(names, ", "))
		}
		selected = append(selected, group)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no check groups in --checks %q", value)
	}
	return selected, nil
}

func checkNetwork(ctx context.Context, c *checkContext) []result {
	var results []result

	vpc, err := c.validator.GetVPCByTag(ctx, "Project", "ShowCore")
	if err != nil {
		return append(results, fail("VPC tagged Project=ShowCore", err.Error()))
	}
	if vpc == nil {
		return append(results, fail("VPC tagged Project=ShowCore", "not found (infrastructure not deployed?)"))
	}
	results = append(results, pass("VPC tagged Project=ShowCore", aws.ToString(vpc.VpcId)))

	if cidr := aws.ToString(vpc.CidrBlock); cidr == c.config.VpcCidr {
		results = append(results, pass("VPC CIDR", cidr))
	} else {
		results = append(results, fail("VPC CIDR", fmt.Sprintf("got %s, want %s", cidr, c.config.VpcCidr)))
	}

	endpoints, err := c.validator.GetVPCEndpoints(ctx, aws.ToString(vpc.VpcId))
	if err != nil {
		return append(results, fail("VPC endpoints", err.Error()))
	}
	// 2 gateway (S3, DynamoDB) + 3 interface (SSM trio)
	if len(endpoints) >= 5 {
		results = append(results, pass("VPC endpoints", fmt.Sprintf("%d present", len(endpoints))))
	} else {
		results = append(results, fail("VPC endpoints", fmt.Sprintf("found %d, want at least 5", len(endpoints))))
	}

	return results
}

func checkSecurity(ctx context.Context, c *checkContext) []result {
	var results []result

	logging, err := c.validator.CheckTrailLogging(ctx, trailName)
	switch {
	case err != nil:
		results = append(results, fail("CloudTrail logging", err.Error()))
	case logging:
		results = append(results, pass("CloudTrail logging", trailName+" is logging"))
	default:
		results = append(results, fail("CloudTrail logging", trailName+" is not logging"))
	}

	vpc, err := c.validator.GetVPCByTag(ctx, "Project", "ShowCore")
	if err != nil || vpc == nil {
		return append(results, fail("Security group audit", "ShowCore VPC not found"))
	}
	groups, err := c.validator.GetSecurityGroupsByVPC(ctx, aws.ToString(vpc.VpcId))
	if err != nil {
		return append(results, fail("Security group audit", err.Error()))
	}

	var exposures []string
	for _, sg := range groups {
		for _, port := range openSensitivePorts(sg) {
			exposures = append(exposures, fmt.Sprintf("%s port %d", aws.ToString(sg.GroupId), port))
		}
	}
	if len(exposures) == 0 {
		results = append(results, pass("Security group audit",
			fmt.Sprintf("no 0.0.0.0/0 ingress on ports 22/5432/6379 across %d groups", len(groups))))
	} else {
		results = append(results, fail("Security group audit", "open to internet: "+strings.Join(exposures, ", ")))
	}

	return results
}

// openSensitivePorts returns the sensitive ports a security group exposes to
// 0.0.0.0/0.
func openSensitivePorts(sg ec2types.SecurityGroup) []int32 {
	var open []int32
	for _, port := range sensitivePorts {
		for _, rule := range sg.IpPermissions {
			if rule.FromPort == nil || rule.ToPort == nil {
				continue
			}
			if *rule.FromPort > port || port > *rule.ToPort {
				continue
			}
			for _, ipRange := range rule.IpRanges {
				if aws.ToString(ipRange.CidrIp) == "0.0.0.0/0" {
					open = append(open, port)
				}
			}
		}
	}
	return open
}

func checkDatabase(ctx context.Context, c *checkContext) []result {
	var results []result

	identifier := fmt.Sprintf("showcore-database-%s-rds", c.config.Environment)
	instance, err := c.validator.GetRDSInstance(ctx, identifier)
	if err != nil {
		return append(results, fail("RDS instance", err.Error()))
	}
	if instance == nil {
		return append(results, fail("RDS instance", identifier+" not found"))
	}
	results = append(results, pass("RDS instance", fmt.Sprintf("%s (%s)", identifier, aws.ToString(instance.DBInstanceStatus))))

	if aws.ToBool(instance.StorageEncrypted) {
		results = append(results, pass("RDS storage encryption", "enabled"))
	} else {
		results = append(results, fail("RDS storage encryption", "disabled"))
	}

	if len(instance.VpcSecurityGroups) > 0 {
		sgID := aws.ToString(instance.VpcSecurityGroups[0].VpcSecurityGroupId)
		ok, err := c.validator.CheckSecurityGroupRule(ctx, sgID, 5432, c.config.VpcCidr)
		switch {
		case err != nil:
			results = append(results, fail("RDS ingress from VPC", err.Error()))
		case ok:
			results = append(results, pass("RDS ingress from VPC", fmt.Sprintf("%s allows 5432 from %s", sgID, c.config.VpcCidr)))
		default:
			results = append(results, fail("RDS ingress from VPC", fmt.Sprintf("%s has no 5432 rule for %s", sgID, c.config.VpcCidr)))
		}
	}

	return results
}

func checkCache(ctx context.Context, c *checkContext) []result {
	var results []result

	cluster, err := c.validator.GetElastiCacheCluster(ctx, c.config.ElastiCacheClusterID)
	if err != nil {
		return append(results, fail("ElastiCache cluster", err.Error()))
	}
	if cluster == nil {
		return append(results, fail("ElastiCache cluster", c.config.ElastiCacheClusterID+" not found"))
	}
	results = append(results, pass("ElastiCache cluster",
		fmt.Sprintf("%s (%s)", c.config.ElastiCacheClusterID, aws.ToString(cluster.CacheClusterStatus))))

	status, err := c.validator.CheckElastiCacheEncryption(ctx, c.config.ElastiCacheClusterID)
	if err != nil {
		return append(results, fail("ElastiCache encryption", err.Error()))
	}
	if status.AtRest {
		results = append(results, pass("ElastiCache at-rest encryption", "enabled"))
	} else {
		results = append(results, fail("ElastiCache at-rest encryption", "disabled"))
	}
	if status.InTransit {
		results = append(results, pass("ElastiCache in-transit encryption", "enabled"))
	} else {
		results = append(results, fail("ElastiCache in-transit encryption", "disabled"))
	}

	return results
}

func checkStorage(ctx context.Context, c *checkContext) []result {
	var results []result

	for _, prefix := range []string{"showcore-static-assets", "showcore-backups"} {
		bucket := fmt.Sprintf("%s-%s", prefix, c.accountID)

		algorithm, err := c.validator.GetBucketEncryption(ctx, bucket)
		switch {
		case err != nil:
			results = append(results, fail(bucket+" encryption", err.Error()))
		case algorithm == "AES256":
			results = append(results, pass(bucket+" encryption", algorithm))
		case algorithm == "":
			results = append(results, fail(bucket+" encryption", "not configured"))
		default:
			results = append(results, fail(bucket+" encryption", "unexpected algorithm "+algorithm))
		}

		versioned, err := c.validator.CheckBucketVersioning(ctx, bucket)
		switch {
		case err != nil:
			results = append(results, fail(bucket+" versioning", err.Error()))
		case versioned:
			results = append(results, pass(bucket+" versioning", "enabled"))
		default:
			results = append(results, fail(bucket+" versioning", "disabled"))
		}
	}

	return results
}

func checkMonitoring(ctx context.Context, c *checkContext) []result {
	var results []result

	alarms, err := c.validator.GetAlarmsByPrefix(ctx, "showcore-")
	if err != nil {
		return append(results, fail("CloudWatch alarms", err.Error()))
	}
	if len(alarms) == 0 {
		return append(results, fail("CloudWatch alarms", "no alarms with prefix showcore-"))
	}
	results = append(results, pass("CloudWatch alarms", fmt.Sprintf("%d present", len(alarms))))

	billing := 0
	for _, alarm := range alarms {
		if strings.HasPrefix(aws.ToString(alarm.AlarmName), "showcore-billing-") {
			billing++
		}
	}
	if billing >= len(c.config.BillingAlertThresholds) {
		results = append(results, pass("Billing alarms", fmt.Sprintf("%d present", billing)))
	} else {
		results = append(results, fail("Billing alarms",
			fmt.Sprintf("found %d, want %d", billing, len(c.config.BillingAlertThresholds))))
	}

	for _, topic := range []string{"showcore-critical-alerts", "showcore-warning-alerts", "showcore-billing-alerts"} {
		arn := fmt.Sprintf("arn:aws:sns:%s:%s:%s", c.config.Region, c.accountID, topic)
		attrs, err := c.validator.GetTopicAttributes(ctx, arn)
		switch {
		case err != nil:
			results = append(results, fail("SNS topic "+topic, err.Error()))
		case attrs == nil:
			results = append(results, fail("SNS topic "+topic, "not found"))
		default:
			results = append(results, pass("SNS topic "+topic,
				fmt.Sprintf("%s confirmed subscriptions", attrs["SubscriptionsConfirmed"])))
		}
	}

	return results
}

func checkBackup(ctx context.Context, c *checkContext) []result {
	var results []result

	vault, err := c.validator.GetBackupVault(ctx, "showcore-backup-vault")
	if err != nil {
		return append(results, fail("Backup vault", err.Error()))
	}
	if vault == nil {
		return append(results, fail("Backup vault", "showcore-backup-vault not found"))
	}
	results = append(results, pass("Backup vault", aws.ToString(vault.BackupVaultArn)))

	plans, err := c.validator.GetBackupPlansByPrefix(ctx, "showcore-")
	if err != nil {
		return append(results, fail("Backup plans", err.Error()))
	}
	// One plan for RDS, one for ElastiCache
	if len(plans) >= 2 {
		var names []string
		for _, plan := range plans {
			names = append(names, aws.ToString(plan.BackupPlanName))
		}
		results = append(results, pass("Backup plans", strings.Join(names, ", ")))
	} else {
		results = append(results, fail("Backup plans", fmt.Sprintf("found %d, want at least 2", len(plans))))
	}

	return results
}

func checkTagging(ctx context.Context, c *checkContext) []result {
	var results []result

	resources, err := c.validator.GetResourcesByTag(ctx, "Project", "ShowCore")
	if err != nil {
		return append(results, fail("Tagged resources", err.Error()))
	}
	if len(resources) == 0 {
		return append(results, fail("Tagged resources", "no resources tagged Project=ShowCore"))
	}
	results = append(results, pass("Tagged resources", fmt.Sprintf("%d found", len(resources))))

	var offenders []string
	for _, resource := range resources {
		present := make(map[string]bool, len(resource.Tags))
		for _, tag := range resource.Tags {
			present[aws.ToString(tag.Key)] = true
		}
		for _, required := range verify.RequiredTagKeys {
			if !present[required] {
				offenders = append(offenders, fmt.Sprintf("%s missing %s", aws.ToString(resource.ResourceARN), required))
			}
		}
	}
	if len(offenders) == 0 {
		results = append(results, pass("Standard tag compliance",
			fmt.Sprintf("all %d resources carry %s", len(resources), strings.Join(verify.RequiredTagKeys, "/"))))
	} else {
		if len(offenders) > 5 {
			offenders = append(offenders[:5], fmt.Sprintf("and %d more", len(offenders)-5))
		}
		results = append(results, fail("Standard tag compliance", strings.Join(offenders, "; ")))
	}

	return results
}
