package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"user-registry-service/cmd/api/server"
	"user-registry-service/internal/adapter/gin/handler"
	ginrouter "user-registry-service/internal/adapter/gin/router"
	"user-registry-service/internal/adapter/registryclient"
	"user-registry-service/internal/adapter/repository/memory"
	"user-registry-service/internal/config"
	"user-registry-service/internal/usecase/task"
	"user-registry-service/pkg/logger"
	"user-registry-service/pkg/telemetry"
)

type gateway struct {
	cfg       *config.Config
	log       *zap.Logger
	telemetry *telemetry.Provider
	server    *server.Server
}

func newGateway(ctx context.Context, configPath string) (*gateway, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateGateway(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	name := cfg.Gateway.ServiceName
	l, err := logger.NewWithConfig(cfg.LoggerConfig(name))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.TelemetryConfig(name), l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	client := registryclient.New(
		cfg.Gateway.RegistryURL,
		time.Duration(cfg.Gateway.RequestTimeoutSeconds)*time.Second,
		l,
		otelhttp.WithTracerProvider(tp.TracerProvider),
		otelhttp.WithPropagators(tp.Propagator),
		otelhttp.WithMeterProvider(tp.MeterProvider),
	)

	router, err := ginrouter.SetupGatewayRouter(ginrouter.GatewayDeps{
		ServiceName: name,
		Users:       handler.NewGatewayUserHandler(client, l),
		Tasks:       handler.NewTaskHandler(task.New(memory.NewTaskStore(), l), l),
		Health:      handler.NewHealthHandler(name),
		CORS: ginrouter.CORSConfig{
			AllowOrigins:  cfg.CORS.AllowOrigins,
			ExposeHeaders: cfg.CORS.ExposeHeaders,
		},
		Tracing:       ginrouter.Tracing{TracerProvider: tp.TracerProvider, Propagator: tp.Propagator},
		MeterProvider: tp.MeterProvider,
		Log:           l,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to build router: %w", err), tp.Shutdown(ctx))
	}

	return &gateway{
		cfg:       cfg,
		log:       l,
		telemetry: tp,
		server: &server.Server{
			Logger: l,
			HTTP:   server.SetupGinServer(router, ":"+cfg.Gateway.HTTPPort, l),
		},
	}, nil
}

func (g *gateway) run(ctx context.Context) error {
	g.log.Info("starting gateway",
		zap.String("registry_url", g.cfg.Gateway.RegistryURL),
		zap.Strings("cors_allow_origins", g.cfg.CORS.AllowOrigins),
	)

	errChan := make(chan error, 1)
	go func() { errChan <- g.server.Start(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
		g.log.Info("shutting down gateway...")
	case runErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(g.cfg.App.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	err := errors.Join(runErr, g.server.Shutdown(shutdownCtx), g.telemetry.Shutdown(shutdownCtx))
	logger.Sync(g.log)
	return err
}
