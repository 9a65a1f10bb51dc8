package showcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEnvironment(t *testing.T) {
	assert.NoError(t, ValidateEnvironment("production"))
	assert.NoError(t, ValidateEnvironment("staging"))
	assert.NoError(t, ValidateEnvironment("development"))
	assert.NoError(t, ValidateEnvironment("Production"))

	assert.ErrorContains(t, ValidateEnvironment("qa"), `unknown environment "qa"`)
	assert.ErrorContains(t, ValidateEnvironment(""), "unknown environment")
}

func TestValidateComponent(t *testing.T) {
	for _, component := range Components {
		assert.NoError(t, ValidateComponent(component))
	}

	assert.ErrorContains(t, ValidateComponent("network"), `unknown component "network"`)
}

func TestResourceTags(t *testing.T) {
	tags := ResourceTags("production", ComponentDatabase, map[string]string{
		"BackupRequired": "true",
	})

	assert.Equal(t, "ShowCore", tags["Project"])
	assert.Equal(t, "Phase1", tags["Phase"])
	assert.Equal(t, "CDK", tags["ManagedBy"])
	assert.Equal(t, "Engineering", tags["CostCenter"])
	assert.Equal(t, "production", tags["Environment"])
	assert.Equal(t, "Database", tags["Component"])
	assert.Equal(t, "true", tags["BackupRequired"])
}

func TestResourceTagsAdditionalWins(t *testing.T) {
	tags := ResourceTags("production", ComponentStorage, map[string]string{
		"CostCenter": "Marketing",
	})

	assert.Equal(t, "Marketing", tags["CostCenter"])
}

func TestResourceTagsWithoutComponent(t *testing.T) {
	tags := ResourceTags("staging", "", nil)

	_, ok := tags["Component"]
	assert.False(t, ok)
	assert.Equal(t, "staging", tags["Environment"])
}
