package showcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder(t *testing.T) {
	config := NewConfigBuilder("staging").
		WithAccount("123456789012", "us-west-2").
		WithVpcCidr("10.1.0.0/16").
		WithNatGateway().
		WithBillingThresholds(25, 75, 150).
		WithAlarmEmails("ops@example.com").
		WithAlarmEmails("oncall@example.com").
		WithRdsInstanceID("showcore-staging-db").
		WithElastiCacheClusterID("showcore-staging-redis").
		WithSSMAccess().
		WithConfigRules().
		WithTags(map[string]string{"Team": "platform"}).
		WithTag("Owner", "ops@example.com").
		Config()

	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "123456789012", config.Account)
	assert.Equal(t, "us-west-2", config.Region)
	assert.Equal(t, "10.1.0.0/16", config.VpcCidr)
	assert.True(t, config.EnableNatGateway)
	assert.Equal(t, []float64{25, 75, 150}, config.BillingAlertThresholds)
	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, config.AlarmEmailAddresses)
	assert.Equal(t, "showcore-staging-db", config.RdsInstanceID)
	assert.Equal(t, "showcore-staging-redis", config.ElastiCacheClusterID)
	assert.True(t, config.EnableSSMAccess)
	assert.True(t, config.EnableConfigRules)
	assert.Equal(t, map[string]string{"Team": "platform", "Owner": "ops@example.com"}, config.Tags)
}

func TestConfigBuilderValidate(t *testing.T) {
	require.NoError(t, NewConfigBuilder("production").Validate())

	err := NewConfigBuilder("qa").Validate()
	assert.ErrorContains(t, err, `unknown environment "qa"`)

	err = NewConfigBuilder("production").WithVpcCidr("bogus").Validate()
	assert.ErrorContains(t, err, "invalid vpc_cidr")
}
