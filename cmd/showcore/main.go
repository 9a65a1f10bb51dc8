// showcore synthesizes the ShowCore Phase 1 infrastructure stacks.
//
// The CDK CLI invokes it through cdk.json. Configuration comes from CDK
// context values (cdk.json or --context flags):
//
//	cdk synth
//	cdk deploy --all
//	cdk deploy --all --context environment=staging --context enable_ssm_access=true
package main

import (
	"github.com/aws/jsii-runtime-go"

	"github.com/showcore/showcore-aws-cdk/showcore"
)

func main() {
	defer jsii.Close()

	app := showcore.NewApp()
	config := showcore.ConfigFromContext(app)
	showcore.BuildStacks(app, config)
	showcore.Synth(app)
}
