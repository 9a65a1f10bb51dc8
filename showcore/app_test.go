package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStacks(t *testing.T) {
	app := awscdk.NewApp(nil)
	stacks := BuildStacks(app, testConfig())

	require.NotNil(t, stacks.Network)
	require.NotNil(t, stacks.Security)
	require.NotNil(t, stacks.Monitoring)
	require.NotNil(t, stacks.Database)
	require.NotNil(t, stacks.Cache)
	require.NotNil(t, stacks.Storage)
	require.NotNil(t, stacks.CDN)
	require.NotNil(t, stacks.Backup)
	assert.Nil(t, stacks.SSMAccess)

	// The whole set synthesizes together, including cross stack references
	assembly := app.Synth(nil)
	require.NotNil(t, assembly)
}

func TestBuildStacksWithSSMAccess(t *testing.T) {
	app := awscdk.NewApp(nil)
	config := testConfig()
	config.EnableSSMAccess = true
	stacks := BuildStacks(app, config)

	require.NotNil(t, stacks.SSMAccess)

	template := assertions.Template_FromStack(stacks.SSMAccess, nil)
	template.ResourceCountIs(jsii.String("AWS::EC2::Instance"), jsii.Number(1))
}

func TestBuildStacksDependencies(t *testing.T) {
	app := awscdk.NewApp(nil)
	stacks := BuildStacks(app, testConfig())

	dependencyNames := func(deps *[]awscdk.Stack) []string {
		var names []string
		for _, dep := range *deps {
			names = append(names, *dep.StackName())
		}
		return names
	}

	assert.Contains(t, dependencyNames(stacks.Security.Dependencies()), "ShowCoreNetworkStack")
	assert.Contains(t, dependencyNames(stacks.Database.Dependencies()), "ShowCoreNetworkStack")
	assert.Contains(t, dependencyNames(stacks.Database.Dependencies()), "ShowCoreSecurityStack")
	assert.Contains(t, dependencyNames(stacks.Cache.Dependencies()), "ShowCoreSecurityStack")
	assert.Contains(t, dependencyNames(stacks.CDN.Dependencies()), "ShowCoreStorageStack")
	assert.Contains(t, dependencyNames(stacks.Backup.Dependencies()), "ShowCoreMonitoringStack")
}

func TestBuildStacksStackNames(t *testing.T) {
	app := awscdk.NewApp(nil)
	stacks := BuildStacks(app, testConfig())

	for name, stack := range map[string]awscdk.Stack{
		"ShowCoreNetworkStack":    stacks.Network,
		"ShowCoreSecurityStack":   stacks.Security,
		"ShowCoreMonitoringStack": stacks.Monitoring,
		"ShowCoreDatabaseStack":   stacks.Database,
		"ShowCoreCacheStack":      stacks.Cache,
		"ShowCoreStorageStack":    stacks.Storage,
		"ShowCoreCDNStack":        stacks.CDN,
		"ShowCoreBackupStack":     stacks.Backup,
	} {
		assert.Equal(t, name, *stack.StackName())
	}
}
