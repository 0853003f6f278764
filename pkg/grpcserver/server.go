// Package grpcserver runs the gRPC endpoint of the service. It exposes the
// standard health protocol and server reflection.
package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/tair/manufacturing-erp/pkg/logger"
)

// Server wraps a grpc.Server with health reporting
type Server struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	metrics     *rpcMetrics
}

type rpcMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a server with tracing, metrics and logging interceptors
func New(serviceName string, reg prometheus.Registerer) *Server {
	m := &rpcMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "status_code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "erp_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(m.requests, m.duration)

	s := &Server{
		health:      health.NewServer(),
		serviceName: serviceName,
		metrics:     m,
	}
	s.server = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.metricsInterceptor, loggingInterceptor),
	)

	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	s.SetServing(false)
	return s
}

// Serve blocks serving lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	logger.Logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC server started")
	return s.server.Serve(lis)
}

// SetServing updates the reported health of the service and of the server
// as a whole.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(s.serviceName, st)
}

// Watch runs check every interval and mirrors the result into the health
// status until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration, check func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		err := check(ctx)
		if (err == nil) != serving {
			serving = err == nil
			logger.Logger.Warn().Err(err).Bool("serving", serving).Msg("Health status changed")
		}
		s.SetServing(serving)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GracefulStop marks the service as not serving and drains connections
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *Server) metricsInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.metrics.requests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	s.metrics.duration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}

func loggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	traceID := "no-trace"
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		traceID = span.SpanContext().TraceID().String()
	}

	event := logger.Debug(ctx)
	if err != nil {
		event = logger.Error(ctx).Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Str("grpc_status", status.Code(err).String()).
		Dur("duration", time.Since(start)).
		Str("trace_id", traceID).
		Msg("gRPC request completed")
	return resp, err
}
