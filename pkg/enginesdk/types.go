// Package enginesdk is the public SDK for building taskrank strategy engine
// plugins. It re-exports the engine contract so plugin authors never import
// internal packages.
//
// A minimal plugin:
//
//	package main
//
//	import "github.com/felixgeelhaar/taskrank/pkg/enginesdk"
//
//	type sprint struct{ *enginesdk.BaseEngine }
//
//	func main() {
//		meta := enginesdk.NewMetadata("acme.sprint", "Sprint", "1.0.0").Build()
//		enginesdk.Serve(&sprint{enginesdk.NewBaseEngine(meta)})
//	}
package enginesdk

import (
	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

type (
	// Engine is the interface every strategy engine implements.
	Engine = sdk.Engine

	// EngineMetadata identifies an engine.
	EngineMetadata = sdk.EngineMetadata

	// EngineConfig carries engine settings.
	EngineConfig = sdk.EngineConfig

	// HealthStatus is the result of a health check.
	HealthStatus = sdk.HealthStatus

	// StrategyDefinition describes a strategy an engine offers.
	StrategyDefinition = sdk.StrategyDefinition

	// Weights are factor weights returned by an engine.
	Weights = sdk.Weights

	// WeighRequest summarises the batch being scored.
	WeighRequest = sdk.WeighRequest
)

var (
	ErrStrategyNotFound = sdk.ErrStrategyNotFound
	ErrInvalidWeights   = sdk.ErrInvalidWeights
)

// SDKVersion is the SDK version plugins should declare as min_api_version.
var SDKVersion = sdk.SDKVersion

// NewHealthStatus creates a timestamped health status.
func NewHealthStatus(healthy bool, message string) HealthStatus {
	return sdk.NewHealthStatus(healthy, message)
}
