// Package showcore provides AWS CDK constructs for the ShowCore Phase 1 infrastructure.
package showcore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/constructs-go/constructs/v10"
	"gopkg.in/yaml.v3"
)

// LoadConfigFromFile loads a StackConfig from a JSON or YAML file, applies
// defaults, and validates it. The format follows the file extension; files
// without a YAML extension are parsed as JSON.
func LoadConfigFromFile(path string) (*StackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadConfigFromYAML(data)
	default:
		return LoadConfigFromJSON(data)
	}
}

// LoadConfigFromJSON parses a StackConfig from JSON data.
func LoadConfigFromJSON(data []byte) (*StackConfig, error) {
	var config StackConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigFromYAML parses a StackConfig from YAML data.
func LoadConfigFromYAML(data []byte) (*StackConfig, error) {
	var config StackConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// NewStacksFromFile creates the ShowCore stacks from a JSON or YAML config
// file. This is the simplest way to deploy - just provide a config file.
func NewStacksFromFile(scope constructs.Construct, configPath string) (*Stacks, error) {
	config, err := LoadConfigFromFile(configPath)
	if err != nil {
		return nil, err
	}

	return BuildStacks(scope, *config), nil
}

// MustNewStacksFromFile is like NewStacksFromFile but panics on error.
func MustNewStacksFromFile(scope constructs.Construct, configPath string) *Stacks {
	stacks, err := NewStacksFromFile(scope, configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to create stacks from %s: %v", configPath, err))
	}
	return stacks
}

// JSONConfigExample returns an example JSON configuration.
func JSONConfigExample() string {
	return `{
  "environment": "production",
  "region": "us-east-1",
  "vpc_cidr": "10.0.0.0/16",
  "billing_alert_thresholds": [50, 100],
  "alarm_email_addresses": ["ops@example.com"],
  "tags": {
    "Team": "platform"
  }
}
`
}

// YAMLConfigExample returns an example YAML configuration.
func YAMLConfigExample() string {
	return `environment: production
region: us-east-1
vpc_cidr: 10.0.0.0/16
billing_alert_thresholds:
  - 50
  - 100
alarm_email_addresses:
  - ops@example.com
tags:
  Team: platform
`
}

// WriteExampleConfig writes an example configuration file in the format
// matching the path extension.
func WriteExampleConfig(path string) error {
	content := JSONConfigExample()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		content = YAMLConfigExample()
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
