package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/authkeeper-server/internal/logger"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "authkeeper.v1.Auth"

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reporter keeps the gRPC health status in sync with the storage backend.
type Reporter struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger

	last grpc_health_v1.HealthCheckResponse_ServingStatus
}

func NewReporter(server *health.Server, pinger Pinger, interval time.Duration, logger *logger.Logger) *Reporter {
	timeout := interval / 2
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Reporter{
		server:   server,
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		last:     grpc_health_v1.HealthCheckResponse_UNKNOWN,
	}
}

// Run checks the backend every interval until ctx is done, then marks every
// service as not serving.
func (r *Reporter) Run(ctx context.Context) {
	r.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Check pings the backend once and publishes the result.
func (r *Reporter) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := r.pinger.Ping(pingCtx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		r.logger.Warn("Health reporter: storage ping failed", "error", err.Error())
	}

	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(ServiceName, status)

	if status != r.last {
		r.logger.Info("Health reporter: status changed",
			"from", r.last.String(),
			"to", status.String())
		r.last = status
	}
}
