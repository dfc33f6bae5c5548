package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-registry-service/cmd/api/di"
	"user-registry-service/cmd/api/server"
	ginrouter "user-registry-service/internal/adapter/gin/router"
	"user-registry-service/internal/config"
	"user-registry-service/pkg/logger"
	"user-registry-service/pkg/telemetry"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Provider
	Server    *server.Server
	Container *di.Container
}

// New creates a new application instance from the configuration in configPath
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.NewWithConfig(cfg.LoggerConfig(cfg.Logger.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create DI container
	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.TelemetryConfig(cfg.Logger.ServiceName), l)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize telemetry: %w", err), container.Close())
	}

	router := ginrouter.SetupRouter(
		cfg.Logger.ServiceName,
		container.GinHandler,
		container.HealthHandler,
		container.RateLimiter,
		ginrouter.Tracing{TracerProvider: tp.TracerProvider, Propagator: tp.Propagator},
		l,
	)

	srv := &server.Server{
		Logger: l,
		HTTP:   server.SetupGinServer(router, ":"+cfg.App.HTTPPort, l),
	}
	if cfg.App.GRPCEnabled {
		srv.GRPC = server.SetupGRPC(container.UserUC, l, container.RateLimiter)
		srv.GRPCAddr = ":" + cfg.App.GRPCPort
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Telemetry: tp,
		Server:    srv,
		Container: container,
	}, nil
}

// Run serves until ctx is cancelled or a server fails, then shuts down
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Environment),
		zap.String("store", a.Config.Store.Driver),
		zap.Bool("grpc_enabled", a.Config.App.GRPCEnabled),
	)

	errChan := make(chan error, 1)
	go func() {
		// Add panic recovery for server goroutine
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server panic: %v", r)
			}
		}()
		errChan <- a.Server.Start(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
	case runErr = <-errChan:
		if runErr != nil {
			a.Logger.Error("server stopped unexpectedly", zap.Error(runErr))
		}
	}

	return errors.Join(runErr, a.shutdown())
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", a.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("failed to shutdown servers", zap.Error(err))
		errs = append(errs, err)
	}

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("failed to flush telemetry", zap.Error(err))
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	// Close container resources
	if a.Container != nil {
		a.Logger.Info("closing container resources...")
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	a.Logger.Info("application shutdown complete")
	logger.Sync(a.Logger)

	return errors.Join(errs...)
}

// Migrate creates the SQL schema and seeds it. The memory store needs nothing.
func Migrate(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver == config.DriverMemory {
		return errors.New("STORE_DRIVER=memory has nothing to migrate")
	}

	l, err := logger.NewWithConfig(cfg.LoggerConfig(cfg.Logger.ServiceName))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync(l)

	// Building the container runs the migration
	cfg.Redis.Enabled = false
	cfg.RateLimit.Enabled = false
	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		return err
	}

	l.Info("migration complete", zap.String("driver", cfg.Store.Driver))
	return container.Close()
}
