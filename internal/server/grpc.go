package server

import (
	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/middleware"
	verificationH "github.com/fekuna/omnipos-trace-service/internal/verification/handler"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer registers the verification service, the standard health
// service and reflection. The returned health server reports SERVING for the
// verification service until the caller calls Shutdown on it.
func NewGRPCServer(verify verificationH.VerificationServiceServer, tokens *auth.TokenIssuer, log logger.ZapLogger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(log, tokens)),
	)

	verificationH.RegisterVerificationServiceServer(srv, verify)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(verificationH.VerificationServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv, hs
}
