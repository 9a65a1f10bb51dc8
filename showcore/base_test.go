package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a production configuration with a pinned account so
// account-derived resource names resolve to literals.
func testConfig() StackConfig {
	config := StackConfig{
		Environment: EnvironmentProduction,
		Account:     "123456789012",
		Region:      "us-east-1",
	}
	config.ApplyDefaults()
	return config
}

func TestResourceName(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewBaseStack(app, "TestStack", ComponentNetwork, testConfig())

	name, err := stack.ResourceName("vpc")
	require.NoError(t, err)
	assert.Equal(t, "showcore-network-production-vpc", name)

	name, err = stack.ResourceName("bucket", "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "showcore-network-production-bucket-123456789012", name)
}

func TestResourceNameLowercases(t *testing.T) {
	app := awscdk.NewApp(nil)

	config := testConfig()
	config.Environment = "production"
	stack := NewBaseStack(app, "TestStack", "Data_Pipeline", config)

	name, err := stack.ResourceName("SG")
	require.NoError(t, err)
	assert.Equal(t, "showcore-data-pipeline-production-sg", name)
}

func TestResourceNameSkipsEmptySuffix(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewBaseStack(app, "TestStack", ComponentStorage, testConfig())

	name, err := stack.ResourceName("bucket", "")
	require.NoError(t, err)
	assert.Equal(t, "showcore-storage-production-bucket", name)
}

func TestResourceNameWithoutComponent(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewBaseStack(app, "TestStack", "", testConfig())

	_, err := stack.ResourceName("vpc")
	assert.ErrorIs(t, err, ErrComponentNotSet)

	assert.Panics(t, func() {
		stack.MustResourceName("vpc")
	})
}

func TestEnvNameFallsBackToContext(t *testing.T) {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"environment": "staging",
		},
	})
	stack := NewBaseStack(app, "TestStack", ComponentNetwork, StackConfig{})

	assert.Equal(t, "staging", stack.EnvName())
}

func TestNewBaseStackRejectsInvalidConfig(t *testing.T) {
	app := awscdk.NewApp(nil)

	config := testConfig()
	config.VpcCidr = "not-a-cidr"

	assert.Panics(t, func() {
		NewBaseStack(app, "TestStack", ComponentNetwork, config)
	})
}
