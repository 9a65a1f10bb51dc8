package showcore

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCfnIncludeStack(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewCfnIncludeStack(app, CfnIncludeConfig{
		StackName:          "showcore-legacy",
		Description:        "Legacy resources pending CDK migration",
		TemplateFile:       "testdata/legacy-stack.json",
		PreserveLogicalIds: true,
	})

	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::SNS::Topic"), jsii.Number(1))
	template.HasParameter(jsii.String("Environment"), map[string]interface{}{
		"Type": "String",
	})

	// Logical IDs carry over from the original template
	resources := template.FindResources(jsii.String("AWS::S3::Bucket"), nil)
	assert.Contains(t, *resources, "LegacyArtifactsBucket")

	template.HasOutput(jsii.String("LegacyArtifactsBucketName"), map[string]interface{}{
		"Export": map[string]interface{}{"Name": "ShowCoreLegacyArtifactsBucket"},
	})
}

func TestCfnIncludeStackGetters(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewCfnIncludeStack(app, CfnIncludeConfig{
		StackName:          "showcore-legacy",
		TemplateFile:       "testdata/legacy-stack.json",
		PreserveLogicalIds: true,
	})

	resource := stack.GetResource("LegacyArtifactsBucket")
	require.NotNil(t, resource)
	assert.Equal(t, "AWS::S3::Bucket", *resource.CfnResourceType())

	output := stack.GetOutput("LegacyArtifactsBucketName")
	require.NotNil(t, output)
}

func TestCfnIncludeStackParameterOverride(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewCfnIncludeBuilder("showcore-legacy", "testdata/legacy-stack.json").
		WithParameter("Environment", "staging").
		Build(app)

	template := assertions.Template_FromStack(stack, nil)

	// Overridden parameters are substituted and removed from the template
	assert.Empty(t, *template.FindParameters(jsii.String("Environment"), nil))
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(1))
}

func TestCfnIncludeStackRenamesLogicalIds(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := NewCfnIncludeBuilder("showcore-legacy", "testdata/legacy-stack.json").
		WithPreserveLogicalIds(false).
		Build(app)

	template := assertions.Template_FromStack(stack, nil)

	resources := template.FindResources(jsii.String("AWS::S3::Bucket"), nil)
	require.Len(t, *resources, 1)
	for logicalID := range *resources {
		assert.NotEqual(t, "LegacyArtifactsBucket", logicalID)
	}
}

func TestCfnIncludeBuilder(t *testing.T) {
	b := NewCfnIncludeBuilder("showcore-legacy", "testdata/legacy-stack.json").
		WithDescription("Legacy resources pending CDK migration").
		WithParameter("Environment", "staging").
		WithParameters(map[string]string{"Owner": "platform"}).
		WithTag("Team", "platform").
		WithTags(map[string]string{"CostCenter": "Engineering"})

	assert.Equal(t, "showcore-legacy", b.config.StackName)
	assert.Equal(t, "testdata/legacy-stack.json", b.config.TemplateFile)
	assert.Equal(t, "Legacy resources pending CDK migration", b.config.Description)
	assert.Equal(t, "staging", b.config.Parameters["Environment"])
	assert.Equal(t, "platform", b.config.Parameters["Owner"])
	assert.Equal(t, "platform", b.config.Tags["Team"])
	assert.Equal(t, "Engineering", b.config.Tags["CostCenter"])
	assert.True(t, b.config.PreserveLogicalIds)
}
