package showcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// ErrComponentNotSet is returned by ResourceName when the stack was created
// without a component.
var ErrComponentNotSet = errors.New("component must be set to generate resource names")

// Stack is the base for every ShowCore stack. It resolves the deployment
// configuration, applies the standard tag set to all resources in the stack,
// and provides the resource naming convention.
type Stack struct {
	awscdk.Stack

	// Config is the stack configuration.
	Config StackConfig

	// Component is the ShowCore component this stack deploys. Empty when the
	// stack was created without one.
	Component string
}

// NewBaseStack creates a tagged stack without provisioning any resources.
// The concrete ShowCore stacks build on it.
func NewBaseStack(scope constructs.Construct, id, component string, config StackConfig) *Stack {
	return newStack(scope, id, component, "", config)
}

// newStack validates the configuration and creates the underlying CDK stack
// with the standard ShowCore tags applied. The environment falls back to the
// "environment" context value, then to the production default.
func newStack(scope constructs.Construct, id, component, description string, config StackConfig) *Stack {
	if config.Environment == "" {
		config.Environment = contextString(scope.Node(), ContextEnvironment)
	}

	// Validate and apply defaults
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("invalid stack configuration: %v", err))
	}

	props := &awscdk.StackProps{
		Env:  config.Env(),
		Tags: convertTags(config.Tags),
	}
	if description != "" {
		props.Description = jsii.String(description)
	}

	// Create the stack
	stack := awscdk.NewStack(scope, jsii.String(id), props)

	s := &Stack{
		Stack:     stack,
		Config:    config,
		Component: component,
	}

	ApplyStandardTags(stack, config.Environment, component)

	return s
}

// EnvName returns the deployment environment for this stack.
func (s *Stack) EnvName() string {
	return s.Config.Environment
}

// ResourceName builds a resource name following the ShowCore convention:
//
//	showcore-{component}-{environment}-{type}[-{suffix}]
//
// Component, environment, and type are lowercased; underscores in the
// component become hyphens. The suffix is appended verbatim so account IDs
// and similar identifiers survive unchanged. Returns ErrComponentNotSet when
// the stack has no component.
func (s *Stack) ResourceName(resourceType string, suffix ...string) (string, error) {
	if s.Component == "" {
		return "", ErrComponentNotSet
	}

	component := strings.ReplaceAll(strings.ToLower(s.Component), "_", "-")
	parts := []string{"showcore", component, strings.ToLower(s.Config.Environment), strings.ToLower(resourceType)}
	for _, sfx := range suffix {
		if sfx != "" {
			parts = append(parts, sfx)
		}
	}

	return strings.Join(parts, "-"), nil
}

// MustResourceName is like ResourceName but panics when no component is set.
// Stack constructors use it for names that are fixed at synthesis time.
func (s *Stack) MustResourceName(resourceType string, suffix ...string) string {
	name, err := s.ResourceName(resourceType, suffix...)
	if err != nil {
		panic(fmt.Sprintf("failed to build resource name for %q: %v", resourceType, err))
	}
	return name
}

// AddComponentTag sets the component for this stack and tags every resource
// in it. Used when a stack was created without a component.
func (s *Stack) AddComponentTag(component string) {
	s.Component = component
	awscdk.Tags_Of(s.Stack).Add(jsii.String("Component"), jsii.String(component), nil)
}

// AddCustomTag tags every resource in this stack.
// Examples: BackupRequired, Compliance, DataClassification.
func (s *Stack) AddCustomTag(key, value string) {
	awscdk.Tags_Of(s.Stack).Add(jsii.String(key), jsii.String(value), nil)
}

// convertTags converts a map to CDK tags.
func convertTags(tags map[string]string) *map[string]*string {
	if tags == nil {
		return nil
	}
	result := make(map[string]*string)
	for k, v := range tags {
		result[k] = jsii.String(v)
	}
	return &result
}
