package api

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aarondl/ircstate/dispatch"
)

// Health is a grpc health service with one entry per network. A network is
// serving while its state is being tracked.
type Health struct {
	*health.Server
}

// NewHealth creates the health service, the overall status is serving.
func NewHealth() *Health {
	return &Health{Server: health.NewServer()}
}

// Register adds the service to a grpc server.
func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.Server)
}

// Hook returns a state hook for dispatch.WithStateHook.
func (h *Health) Hook() dispatch.StateHook {
	return func(network string, state dispatch.ConnState) {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if state == dispatch.Tracking {
			status = healthpb.HealthCheckResponse_SERVING
		}
		h.SetServingStatus(network, status)
	}
}
