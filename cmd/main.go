package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/reflection"

	apicontext "github.com/dtroode/authkeeper-server/internal/api/context"
	grpchealth "github.com/dtroode/authkeeper-server/internal/api/grpc/health"
	grpcrouter "github.com/dtroode/authkeeper-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/authkeeper-server/internal/api/grpc/server"
	"github.com/dtroode/authkeeper-server/internal/api/http/handler"
	httprouter "github.com/dtroode/authkeeper-server/internal/api/http/router"
	httpserver "github.com/dtroode/authkeeper-server/internal/api/http/server"
	"github.com/dtroode/authkeeper-server/internal/config"
	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/notify"
	"github.com/dtroode/authkeeper-server/internal/notify/smtp"
	"github.com/dtroode/authkeeper-server/internal/repository/memory"
	"github.com/dtroode/authkeeper-server/internal/repository/postgres"
	"github.com/dtroode/authkeeper-server/internal/server"
	"github.com/dtroode/authkeeper-server/internal/service"
	storage "github.com/dtroode/authkeeper-server/internal/storage/minio"
	"github.com/dtroode/authkeeper-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

type storeBackend interface {
	model.Store
	grpchealth.Pinger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	// a missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	hasher, err := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to initialize password hasher", "error", err)
	}
	tokenManager := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenService := service.NewTokenService(tokenManager, cfg.JWT.RefreshTTL, logger)

	deliverer := newDeliverer(ctx, cfg, logger)
	dispatcher := notify.NewDispatcher(
		deliverer,
		notify.NewBreaker(cfg.Mail.BreakerThreshold, cfg.Mail.BreakerCooldown),
		notify.DispatcherConfig{
			Workers:         cfg.Mail.Workers,
			QueueSize:       cfg.Mail.QueueSize,
			MaxRetries:      cfg.Mail.RetryMax,
			InitialInterval: cfg.Mail.RetryInitialInterval,
			MaxInterval:     cfg.Mail.RetryMaxInterval,
			AttemptTimeout:  cfg.Mail.Timeout,
		},
		logger.With("component", "notify"),
	)
	dispatcher.Start()
	notifier := notify.NewNotifier(notify.NewComposer(cfg.Auth.ClientURL), dispatcher, logger)

	authService := service.NewAuth(store, hasher, tokenService, notifier, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	httpRouter := httprouter.New(authService, apicontext.NewManager(), httprouter.Options{
		Cookie: handler.CookieConfig{
			Name:   cfg.Cookie.Name,
			Path:   cfg.Cookie.Path,
			Domain: cfg.Cookie.Domain,
			Secure: cfg.IsProduction(),
			MaxAge: cfg.JWT.RefreshTTL,
		},
		RequireVerification: cfg.Auth.RequireVerification,
	}, logger)
	httpServer := httpserver.NewHTTPServer(httpRouter.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	healthServer := health.NewServer()
	grpcServer := registerGRPCServer(healthServer, logger, fmt.Sprintf(":%s", cfg.GRPC.Port))
	reporter := grpchealth.NewReporter(healthServer, store, cfg.GRPC.HealthInterval, logger)

	var wg sync.WaitGroup

	reporterCtx, stopReporter := context.WithCancel(ctx)
	defer stopReporter()
	wg.Add(1)
	go func() {
		defer wg.Done()
		reporter.Run(reporterCtx)
	}()

	servers := []struct {
		server model.Server
		layer  model.SecurityLayer
	}{
		{httpServer, server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)},
		{grpcServer, server.NewPlainListener()},
	}
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s.server, s.layer)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.server.Address())
		}
	}
	stopReporter()

	mailCtx, mailCancel := context.WithTimeout(context.Background(), cfg.Mail.ShutdownTimeout)
	defer mailCancel()
	if err := dispatcher.Close(mailCtx); err != nil {
		logger.Warn("notification queue was not drained", "error", err)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func openStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (storeBackend, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}

	return postgresBackend{Store: postgres.NewStore(conn.DB), conn: conn}, func() { _ = conn.Close() }
}

type postgresBackend struct {
	*postgres.Store
	conn *postgres.Connection
}

func (b postgresBackend) Ping(ctx context.Context) error {
	return b.conn.Ping(ctx)
}

func newDeliverer(ctx context.Context, cfg *config.Config, logger *logger.Logger) model.Deliverer {
	switch cfg.Mail.Transport {
	case config.TransportSMTP:
		d, err := smtp.New(smtp.Config{
			Host:      cfg.Mail.SMTP.Host,
			Port:      cfg.Mail.SMTP.Port,
			Username:  cfg.Mail.SMTP.Username,
			Password:  cfg.Mail.SMTP.Password,
			From:      cfg.Mail.From,
			TLSPolicy: cfg.Mail.SMTP.TLSPolicy,
			Timeout:   cfg.Mail.Timeout,
		})
		if err != nil {
			logger.Fatal("failed to initialize smtp deliverer", "error", err)
		}
		return d
	case config.TransportBucket:
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to create minio client", "error", err)
		}
		outbox, err := storage.NewOutbox(ctx, minioClient, cfg.Storage.Bucket, cfg.Mail.From)
		if err != nil {
			logger.Fatal("failed to initialize mail outbox", "error", err)
		}
		return outbox
	default:
		return notify.NewLogDeliverer(logger)
	}
}

func registerGRPCServer(healthServer *health.Server, logger *logger.Logger, addr string) *grpcserver.GRPCServer {
	s := grpcrouter.New(healthServer, logger).Register()

	reflection.Register(s)

	return grpcserver.NewGRPCServer(s, addr)
}
