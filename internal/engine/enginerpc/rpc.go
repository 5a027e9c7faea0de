package enginerpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/rpc"
	"strings"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

// Empty is the argument for calls that take none.
type Empty struct{}

// InitializeArgs carries the engine configuration as JSON so arbitrary
// values survive gob encoding.
type InitializeArgs struct {
	EngineID string
	Config   []byte
}

// RPCServer runs inside the plugin binary and forwards to the engine.
type RPCServer struct {
	Impl sdk.Engine
}

func (s *RPCServer) Metadata(_ Empty, resp *sdk.EngineMetadata) error {
	*resp = s.Impl.Metadata()
	return nil
}

func (s *RPCServer) Initialize(args InitializeArgs, _ *Empty) error {
	raw := map[string]any{}
	if len(args.Config) > 0 {
		if err := json.Unmarshal(args.Config, &raw); err != nil {
			return fmt.Errorf("decode engine config: %w", err)
		}
	}
	return s.Impl.Initialize(context.Background(), sdk.NewEngineConfig(args.EngineID, raw))
}

func (s *RPCServer) Strategies(_ Empty, resp *[]sdk.StrategyDefinition) error {
	defs, err := s.Impl.Strategies(context.Background())
	if err != nil {
		return err
	}
	*resp = defs
	return nil
}

func (s *RPCServer) Weigh(req sdk.WeighRequest, resp *sdk.Weights) error {
	w, err := s.Impl.Weigh(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = w
	return nil
}

func (s *RPCServer) HealthCheck(_ Empty, resp *sdk.HealthStatus) error {
	*resp = s.Impl.HealthCheck(context.Background())
	return nil
}

func (s *RPCServer) Shutdown(_ Empty, _ *Empty) error {
	return s.Impl.Shutdown(context.Background())
}

// RPCClient is the host-side sdk.Engine talking to a plugin process.
type RPCClient struct {
	client *rpc.Client
}

var _ sdk.Engine = (*RPCClient)(nil)

// call issues method asynchronously so ctx cancellation is honoured even
// though net/rpc itself has no context support.
func (c *RPCClient) call(ctx context.Context, method string, args, reply any) error {
	pending := c.client.Go("Plugin."+method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case done := <-pending.Done:
		return remoteError(done.Error)
	}
}

// remoteError restores sentinel errors flattened to strings by net/rpc.
func remoteError(err error) error {
	if err == nil {
		return nil
	}
	var serverErr rpc.ServerError
	if !errors.As(err, &serverErr) {
		return err
	}
	for _, sentinel := range []error{sdk.ErrStrategyNotFound, sdk.ErrInvalidWeights} {
		if strings.Contains(string(serverErr), sentinel.Error()) {
			return fmt.Errorf("%s: %w", strings.TrimSuffix(string(serverErr), ": "+sentinel.Error()), sentinel)
		}
	}
	return err
}

func (c *RPCClient) Metadata() sdk.EngineMetadata {
	var resp sdk.EngineMetadata
	if err := c.call(context.Background(), "Metadata", Empty{}, &resp); err != nil {
		return sdk.EngineMetadata{}
	}
	return resp
}

func (c *RPCClient) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	data, err := json.Marshal(config.Raw)
	if err != nil {
		return fmt.Errorf("encode engine config: %w", err)
	}
	return c.call(ctx, "Initialize", InitializeArgs{EngineID: config.EngineID, Config: data}, &Empty{})
}

func (c *RPCClient) Strategies(ctx context.Context) ([]sdk.StrategyDefinition, error) {
	var resp []sdk.StrategyDefinition
	if err := c.call(ctx, "Strategies", Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RPCClient) Weigh(ctx context.Context, req sdk.WeighRequest) (sdk.Weights, error) {
	var resp sdk.Weights
	if err := c.call(ctx, "Weigh", req, &resp); err != nil {
		return sdk.Weights{}, err
	}
	return resp, nil
}

func (c *RPCClient) HealthCheck(ctx context.Context) sdk.HealthStatus {
	var resp sdk.HealthStatus
	if err := c.call(ctx, "HealthCheck", Empty{}, &resp); err != nil {
		return sdk.NewHealthStatus(false, err.Error())
	}
	return resp
}

func (c *RPCClient) Shutdown(ctx context.Context) error {
	return c.call(ctx, "Shutdown", Empty{}, &Empty{})
}
