// Package grpcserver serves the standard gRPC health protocol for
// orchestrators that probe over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// ServicePrefix names per-component services, e.g. "taskrank.database".
// The empty service name carries the overall status.
const ServicePrefix = "taskrank."

// DefaultSyncInterval is how often component checks are re-run.
const DefaultSyncInterval = 15 * time.Second

// HealthServer mirrors a HealthRegistry into grpc_health_v1.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	checks   *observability.HealthRegistry
	interval time.Duration
	logger   *slog.Logger
}

// NewHealthServer creates a server for checks. A zero interval uses
// DefaultSyncInterval.
func NewHealthServer(checks *observability.HealthRegistry, interval time.Duration, logger *slog.Logger) *HealthServer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &HealthServer{
		server:   grpc.NewServer(),
		health:   health.NewServer(),
		checks:   checks,
		interval: interval,
		logger:   logger,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	return s
}

// Sync runs every check once and publishes the results.
func (s *HealthServer) Sync(ctx context.Context) {
	overall := s.checks.Check(ctx)
	s.health.SetServingStatus("", servingStatus(overall.Status))
	for name, result := range overall.Components {
		s.health.SetServingStatus(ServicePrefix+name, servingStatus(result.Status))
	}
}

// Serve listens on addr until ctx is done.
func (s *HealthServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is done, then stops gracefully.
func (s *HealthServer) ServeListener(ctx context.Context, lis net.Listener) error {
	s.Sync(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.server.GracefulStop()
				return
			case <-ticker.C:
				s.Sync(ctx)
			}
		}
	}()

	s.logger.Info("grpc health server listening", "addr", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// degraded still serves; only critical failures take the service out.
func servingStatus(status observability.HealthStatus) healthpb.HealthCheckResponse_ServingStatus {
	if status == observability.HealthStatusUnhealthy {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
