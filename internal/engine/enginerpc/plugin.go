// Package enginerpc carries strategy engines across the go-plugin process
// boundary using net/rpc.
package enginerpc

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

// PluginName is the key engines are dispensed under.
const PluginName = "strategy"

// HandshakeConfig must match between taskrank and every engine binary.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TASKRANK_ENGINE_PLUGIN",
	MagicCookieValue: "taskrank-strategy-v1",
}

// StrategyPlugin implements plugin.Plugin for strategy engines. Impl is set
// on the plugin side only.
type StrategyPlugin struct {
	Impl sdk.Engine
}

// Server returns the RPC server wrapping Impl.
func (p *StrategyPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

// Client returns an sdk.Engine backed by the RPC connection.
func (p *StrategyPlugin) Client(_ *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// PluginMap returns the plugin set for a host (impl nil) or a plugin binary.
func PluginMap(impl sdk.Engine) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &StrategyPlugin{Impl: impl},
	}
}
