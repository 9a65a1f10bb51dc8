// deploy orchestrates the full ShowCore Phase 1 deployment process.
//
// It handles:
//  1. Pushing database and Redis credentials from .env to AWS Secrets Manager
//  2. Bootstrapping AWS CDK
//  3. Deploying the CDK stacks in dependency order
//
// Usage:
//
//	deploy [flags]
//
// Examples:
//
//	deploy                                   # Deploy everything to us-east-1
//	deploy --env-file ../.env                # Specify env file location
//	deploy --environment staging             # Deploy the staging environment
//	deploy --region us-west-2                # Deploy to a specific region
//	deploy --dry-run                         # Preview without deploying
//	deploy --skip-secrets                    # Skip secrets push (if already created)
//	deploy --stacks ShowCoreNetworkStack,ShowCoreSecurityStack
//
// Install:
//
//	go install github.com/showcore/showcore-aws-cdk/cmd/deploy@latest
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/showcore/showcore-aws-cdk/showcore"
)

// secretPrefix namespaces the ShowCore secrets in Secrets Manager.
const secretPrefix = "showcore"

// ssmAccessStackName is only deployed when selected explicitly; selecting it
// switches the enable_ssm_access context on.
const ssmAccessStackName = "ShowCoreSSMAccessStack"

// deployOrder lists the stacks in dependency order.
var deployOrder = []string{
	"ShowCoreNetworkStack",
	"ShowCoreSecurityStack",
	"ShowCoreMonitoringStack",
	"ShowCoreDatabaseStack",
	"ShowCoreCacheStack",
	"ShowCoreStorageStack",
	"ShowCoreCDNStack",
	"ShowCoreBackupStack",
}

var (
	region        = flag.String("region", "", "AWS region (default: AWS_REGION or us-east-1)")
	profile       = flag.String("profile", "", "AWS profile name (default: default profile)")
	environment   = flag.String("environment", "production", "Deployment environment (production, staging, development)")
	envFile       = flag.String("env-file", "", "Path to .env file (default: auto-detect)")
	stacksFlag    = flag.String("stacks", "", "Comma-separated stack names to deploy (default: all, in dependency order)")
	dryRun        = flag.Bool("dry-run", false, "Preview changes without deploying")
	skipSecrets   = flag.Bool("skip-secrets", false, "Skip pushing secrets")
	skipBootstrap = flag.Bool("skip-bootstrap", false, "Skip CDK bootstrap")
	verbose       = flag.Bool("verbose", false, "Show verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Deploy the ShowCore Phase 1 infrastructure to AWS.\n\n")
		fmt.Fprintf(os.Stderr, "Env file search order (if --env-file not specified):\n")
		fmt.Fprintf(os.Stderr, "  1. .env (current directory)\n")
		fmt.Fprintf(os.Stderr, "  2. ../.env (parent directory)\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSteps:\n")
		fmt.Fprintf(os.Stderr, "  1. Push database/redis credentials from .env to AWS Secrets Manager\n")
		fmt.Fprintf(os.Stderr, "  2. Bootstrap AWS CDK (if needed)\n")
		fmt.Fprintf(os.Stderr, "  3. Deploy the CDK stacks in dependency order\n")
		fmt.Fprintf(os.Stderr, "\nStacks (in deployment order):\n")
		for _, stack := range deployOrder {
			fmt.Fprintf(os.Stderr, "  %s\n", stack)
		}
		fmt.Fprintf(os.Stderr, "  %s (only when selected via --stacks)\n", ssmAccessStackName)
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

	stacks := deployOrder
	if *stacksFlag != "" {
		stacks = splitStacks(*stacksFlag)
		if len(stacks) == 0 {
			return fmt.Errorf("no stack names in --stacks %q", *stacksFlag)
		}
	}

	fmt.Println("=== ShowCore Phase 1 Deployment ===")
	fmt.Println()
	fmt.Printf("Region: %s\n", awsRegion)
	fmt.Printf("Environment: %s\n", *environment)
	fmt.Printf("Working directory: %s\n", mustGetwd())
	if *dryRun {
		fmt.Println("Mode: DRY RUN (no changes will be made)")
	}
	fmt.Println()

	ctx := context.Background()

	// Load AWS config
	opts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if *profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(*profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	// Get account ID
	stsClient := sts.NewFromConfig(cfg)
	identity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("getting AWS identity: %w", err)
	}
	accountID := *identity.Account
	fmt.Printf("AWS Account: %s\n", accountID)
	fmt.Println()

	// Step 1: Push secrets
	if !*skipSecrets {
		fmt.Println("=== Step 1: Push Secrets ===")
		if err := pushSecrets(ctx, cfg, *envFile, *dryRun, *verbose); err != nil {
			return fmt.Errorf("pushing secrets: %w", err)
		}
		fmt.Println()
	} else {
		fmt.Println("=== Step 1: Skipping secrets (--skip-secrets) ===")
		fmt.Println()
	}

	// Step 2: Bootstrap CDK
	if !*skipBootstrap {
		fmt.Println("=== Step 2: Bootstrap CDK ===")
		bootstrapCDK(ctx, accountID, awsRegion, *profile, *dryRun)
		fmt.Println()
	} else {
		fmt.Println("=== Step 2: Skipping bootstrap (--skip-bootstrap) ===")
		fmt.Println()
	}

	// Step 3: Deploy
	fmt.Println("=== Step 3: Deploy Stacks ===")
	if err := deployStacks(ctx, stacks, *environment, awsRegion, *profile, *dryRun); err != nil {
		return fmt.Errorf("deploying: %w", err)
	}
	fmt.Println()

	fmt.Println("=== Deployment Complete ===")
	if !*dryRun {
		fmt.Println()
		fmt.Println("To get outputs:")
		fmt.Printf("  aws cloudformation describe-stacks --stack-name ShowCoreMonitoringStack --region %s --query 'Stacks[0].Outputs' --no-cli-pager\n", awsRegion)
	}

	return nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func splitStacks(value string) []string {
	var stacks []string
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			stacks = append(stacks, name)
		}
	}
	return stacks
}

// pushSecrets pushes database and Redis credentials to AWS Secrets Manager
func pushSecrets(ctx context.Context, cfg aws.Config, envFile string, dryRun, verbose bool) error {
	// Find env file
	var envPath string
	if envFile != "" {
		envPath = envFile
		if !filepath.IsAbs(envPath) {
			// Try relative to current directory, then parent
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				parentPath := filepath.Join("..", envPath)
				if _, err := os.Stat(parentPath); err == nil {
					envPath = parentPath
				}
			}
		}
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			fmt.Printf("Warning: %s not found, skipping secrets push\n", envFile)
			return nil
		}
	} else {
		// Auto-detect env file
		var err error
		envPath, err = findEnvFile()
		if err != nil {
			fmt.Println("No .env file found, skipping secrets push")
			fmt.Println("  Searched: .env, ../.env")
			return nil
		}
	}

	fmt.Printf("Reading from: %s\n", envPath)

	// Define secret groups
	groups := []secretGroup{
		{
			name:        "database",
			description: "ShowCore PostgreSQL application credentials",
			keys:        make(map[string]string),
			patterns: []string{
				"DB_USERNAME", "DB_PASSWORD", "DB_NAME", "DB_HOST", "DB_PORT", "DATABASE_URL",
			},
		},
		{
			name:        "redis",
			description: "ShowCore Redis connection settings",
			keys:        make(map[string]string),
			patterns:    []string{"REDIS_AUTH_TOKEN", "REDIS_URL", "REDIS_HOST", "REDIS_PORT"},
		},
	}

	// Parse env file
	if err := parseEnvFile(envPath, groups, verbose); err != nil {
		return err
	}

	// Create secrets client
	var client *secretsmanager.Client
	if !dryRun {
		client = secretsmanager.NewFromConfig(cfg)
	}

	// Process each group
	for _, group := range groups {
		secretName := fmt.Sprintf("%s/%s", secretPrefix, group.name)
		if err := createOrUpdateSecret(ctx, client, secretName, group, dryRun); err != nil {
			return err
		}
	}

	return nil
}

type secretGroup struct {
	name        string
	description string
	keys        map[string]string
	patterns    []string
}

func parseEnvFile(filename string, groups []secretGroup, verbose bool) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	envRegex := regexp.MustCompile(`^\s*(export\s+)?([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		matches := envRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		key := matches[2]
		value := strings.Trim(matches[3], `"'`)

		if value == "" || strings.HasPrefix(value, "your-") {
			continue
		}

		for i := range groups {
			for _, pattern := range groups[i].patterns {
				if key == pattern {
					groups[i].keys[key] = value
					if verbose {
						fmt.Printf("  Found %s: %s\n", groups[i].name, key)
					}
					break
				}
			}
		}
	}

	return scanner.Err()
}

func createOrUpdateSecret(ctx context.Context, client *secretsmanager.Client, secretName string, group secretGroup, dryRun bool) error {
	if len(group.keys) == 0 {
		fmt.Printf("  Skipping %s (no keys found)\n", secretName)
		return nil
	}

	jsonBytes, err := json.Marshal(group.keys)
	if err != nil {
		return err
	}
	secretValue := string(jsonBytes)

	var keyNames []string
	for k := range group.keys {
		keyNames = append(keyNames, k)
	}
	fmt.Printf("  %s: %s\n", secretName, strings.Join(keyNames, ", "))

	if dryRun {
		fmt.Printf("    [DRY RUN] Would create/update\n")
		return nil
	}

	_, err = client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(secretName),
		SecretString: aws.String(secretValue),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			_, err = client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
				Name:         aws.String(secretName),
				Description:  aws.String(group.description),
				SecretString: aws.String(secretValue),
			})
			if err != nil {
				return err
			}
			fmt.Printf("    Created\n")
			return nil
		}
		return err
	}
	fmt.Printf("    Updated\n")
	return nil
}

// bootstrapCDK runs cdk bootstrap
func bootstrapCDK(ctx context.Context, accountID, region, profile string, dryRun bool) {
	target := fmt.Sprintf("aws://%s/%s", accountID, region)
	fmt.Printf("Bootstrap target: %s\n", target)

	if dryRun {
		fmt.Println("[DRY RUN] Would run: cdk bootstrap " + target)
		return
	}

	args := []string{"bootstrap", target}
	if profile != "" {
		args = append(args, "--profile", profile)
	}
	cmd := exec.CommandContext(ctx, "cdk", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Bootstrap might fail if already done, that's OK
		fmt.Println("  Bootstrap completed (or already bootstrapped)")
	}
}

// findEnvFile searches for .env file in standard locations
func findEnvFile() (string, error) {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no .env file found")
}

// deployStacks runs cdk deploy for each stack in order
func deployStacks(ctx context.Context, stacks []string, environment, region, profile string, dryRun bool) error {
	// Run go mod tidy first
	fmt.Println("Running go mod tidy...")
	tidyCmd := exec.CommandContext(ctx, "go", "mod", "tidy")
	tidyCmd.Stdout = os.Stdout
	tidyCmd.Stderr = os.Stderr
	if err := tidyCmd.Run(); err != nil {
		fmt.Printf("Warning: go mod tidy failed: %v\n", err)
	}

	common := []string{
		"--context", "environment=" + environment,
		"--context", "region=" + region,
	}
	for _, stack := range stacks {
		if stack == ssmAccessStackName {
			common = append(common, "--context", "enable_ssm_access=true")
			break
		}
	}
	if profile != "" {
		common = append(common, "--profile", profile)
	}

	if dryRun {
		fmt.Println("Running cdk diff...")
		cmd := exec.CommandContext(ctx, "cdk", append([]string{"diff"}, common...)...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		_ = cmd.Run() // Ignore error, diff returns non-zero if there are differences
		return nil
	}

	for i, stack := range stacks {
		fmt.Printf("Deploying %s (%d/%d)...\n", stack, i+1, len(stacks))
		args := append([]string{"deploy", stack, "--require-approval", "never"}, common...)
		cmd := exec.CommandContext(ctx, "cdk", args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("deploying %s: %w", stack, err)
		}
	}

	return nil
}
