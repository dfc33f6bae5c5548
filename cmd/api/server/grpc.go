package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "user-registry-service/internal/adapter/grpc"
	"user-registry-service/internal/adapter/grpc/middleware"
	"user-registry-service/internal/usecase/user"
	"user-registry-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(userUC user.UserUsecase, l *zap.Logger, rateLimiter *middleware.RateLimiter) *grpc.Server {
	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	grpcadapter.RegisterUserRegistryServer(grpcServer, grpcadapter.NewUserServiceServer(userUC))

	l.Info("gRPC service registered", zap.String("service", "userregistry.v1.UserRegistry"))
	return grpcServer
}
