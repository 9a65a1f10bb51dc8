package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var config StackConfig
	config.ApplyDefaults()

	assert.Equal(t, EnvironmentProduction, config.Environment)
	assert.Equal(t, "us-east-1", config.Region)
	assert.Equal(t, "10.0.0.0/16", config.VpcCidr)
	assert.Equal(t, []float64{50, 100}, config.BillingAlertThresholds)
	assert.Equal(t, "showcore-db", config.RdsInstanceID)
	assert.Equal(t, "showcore-redis", config.ElastiCacheClusterID)
	assert.Equal(t, "showcore-static-assets", config.StaticAssetsBucket)
	assert.False(t, config.EnableNatGateway)
	assert.False(t, config.EnableSSMAccess)
	assert.False(t, config.EnableConfigRules)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	config := StackConfig{
		Environment:            EnvironmentStaging,
		Region:                 "eu-west-1",
		VpcCidr:                "10.1.0.0/16",
		BillingAlertThresholds: []float64{25},
	}
	config.ApplyDefaults()

	assert.Equal(t, EnvironmentStaging, config.Environment)
	assert.Equal(t, "eu-west-1", config.Region)
	assert.Equal(t, "10.1.0.0/16", config.VpcCidr)
	assert.Equal(t, []float64{25}, config.BillingAlertThresholds)
}

func TestValidate(t *testing.T) {
	config := testConfig()
	require.NoError(t, config.Validate())

	invalid := testConfig()
	invalid.Environment = "qa"
	assert.ErrorContains(t, invalid.Validate(), `unknown environment "qa"`)

	invalid = testConfig()
	invalid.VpcCidr = "10.0.0.0"
	assert.ErrorContains(t, invalid.Validate(), "invalid vpc_cidr")

	invalid = testConfig()
	invalid.BillingAlertThresholds = []float64{50, -1}
	assert.ErrorContains(t, invalid.Validate(), "must be positive")

	invalid = testConfig()
	invalid.AlarmEmailAddresses = []string{"not-an-email"}
	assert.ErrorContains(t, invalid.Validate(), "invalid alarm email")
}

func TestEnv(t *testing.T) {
	config := StackConfig{Region: "us-east-1"}
	assert.Nil(t, config.Env())

	config.Account = "123456789012"
	env := config.Env()
	require.NotNil(t, env)
	assert.Equal(t, "123456789012", *env.Account)
	assert.Equal(t, "us-east-1", *env.Region)
}

func TestConfigFromContext(t *testing.T) {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"environment":              "staging",
			"account":                  "123456789012",
			"region":                   "us-west-2",
			"vpc_cidr":                 "10.1.0.0/16",
			"enable_nat_gateway":       true,
			"billing_alert_thresholds": []interface{}{25.0, 75.0, 150.0},
			"alarm_email_addresses":    []interface{}{"ops@example.com", "oncall@example.com"},
			"enable_ssm_access":        "true",
			"enable_config_rules":      "1",
		},
	})

	config := ConfigFromContext(app)

	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "123456789012", config.Account)
	assert.Equal(t, "us-west-2", config.Region)
	assert.Equal(t, "10.1.0.0/16", config.VpcCidr)
	assert.True(t, config.EnableNatGateway)
	assert.Equal(t, []float64{25, 75, 150}, config.BillingAlertThresholds)
	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, config.AlarmEmailAddresses)
	assert.True(t, config.EnableSSMAccess)
	assert.True(t, config.EnableConfigRules)
}

func TestConfigFromContextDefaults(t *testing.T) {
	app := awscdk.NewApp(nil)

	config := ConfigFromContext(app)

	assert.Equal(t, EnvironmentProduction, config.Environment)
	assert.Equal(t, "us-east-1", config.Region)
	assert.Equal(t, "10.0.0.0/16", config.VpcCidr)
	assert.False(t, config.EnableSSMAccess)
}

func TestContextBoolIgnoresUnknownValues(t *testing.T) {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"enable_nat_gateway": "yes",
		},
	})

	assert.False(t, contextBool(app.Node(), ContextEnableNatGateway))
	assert.False(t, contextBool(app.Node(), "missing_key"))
}
