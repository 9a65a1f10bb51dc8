package showcore

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// StandardTags is applied to every ShowCore resource for cost allocation and
// compliance reporting. Environment and Component are added per stack.
var StandardTags = map[string]string{
	"Project":    "ShowCore",
	"Phase":      "Phase1",
	"ManagedBy":  "CDK",
	"CostCenter": "Engineering",
}

// ShowCore component names. Each stack tags its resources with exactly one.
const (
	ComponentNetwork    = "Network"
	ComponentSecurity   = "Security"
	ComponentDatabase   = "Database"
	ComponentCache      = "Cache"
	ComponentStorage    = "Storage"
	ComponentCDN        = "CDN"
	ComponentMonitoring = "Monitoring"
	ComponentBackup     = "Backup"
	ComponentSSMAccess  = "SSMAccess"
)

// Deployment environment names.
const (
	EnvironmentProduction  = "production"
	EnvironmentStaging     = "staging"
	EnvironmentDevelopment = "development"
)

// Components lists the valid component tag values.
var Components = []string{
	ComponentNetwork,
	ComponentSecurity,
	ComponentDatabase,
	ComponentCache,
	ComponentStorage,
	ComponentCDN,
	ComponentMonitoring,
	ComponentBackup,
	ComponentSSMAccess,
}

// Environments lists the valid deployment environments.
var Environments = []string{
	EnvironmentProduction,
	EnvironmentStaging,
	EnvironmentDevelopment,
}

// ValidateComponent checks that component is a known ShowCore component.
func ValidateComponent(component string) error {
	for _, c := range Components {
		if component == c {
			return nil
		}
	}
	return fmt.Errorf("unknown component %q (valid: %s)", component, strings.Join(Components, ", "))
}

// ValidateEnvironment checks that environment names a known deployment
// environment. The check is case-insensitive because resource names lowercase
// the environment anyway.
func ValidateEnvironment(environment string) error {
	lower := strings.ToLower(environment)
	for _, e := range Environments {
		if lower == e {
			return nil
		}
	}
	return fmt.Errorf("unknown environment %q (valid: %s)", environment, strings.Join(Environments, ", "))
}

// ApplyStandardTags adds the standard ShowCore tags plus the Environment tag
// to a construct. The Component tag is added when component is non-empty.
// Tags propagate to every taggable resource under the construct.
func ApplyStandardTags(scope constructs.IConstruct, environment, component string) {
	for key, value := range StandardTags {
		awscdk.Tags_Of(scope).Add(jsii.String(key), jsii.String(value), nil)
	}

	awscdk.Tags_Of(scope).Add(jsii.String("Environment"), jsii.String(environment), nil)

	if component != "" {
		awscdk.Tags_Of(scope).Add(jsii.String("Component"), jsii.String(component), nil)
	}
}

// ResourceTags returns the full tag set for a resource: the standard tags,
// Environment, Component, and any additional tags. Additional tags win on
// key collisions. Useful for resources tagged outside the CDK aspect system.
func ResourceTags(environment, component string, additional map[string]string) map[string]string {
	tags := make(map[string]string, len(StandardTags)+len(additional)+2)
	for key, value := range StandardTags {
		tags[key] = value
	}

	tags["Environment"] = environment
	if component != "" {
		tags["Component"] = component
	}

	for key, value := range additional {
		tags[key] = value
	}

	return tags
}
