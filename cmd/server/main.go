package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"assetbase/backend/internal/audit"
	audithandler "assetbase/backend/internal/audit/handler"
	"assetbase/backend/internal/audit/producer"
	auditrepo "assetbase/backend/internal/audit/repository"
	"assetbase/backend/internal/config"
	"assetbase/backend/internal/db"
	identityhandler "assetbase/backend/internal/identity/handler"
	"assetbase/backend/internal/identity/service"
	"assetbase/backend/internal/security"
	"assetbase/backend/internal/server"
	"assetbase/backend/internal/server/middleware"
	sessionrepo "assetbase/backend/internal/session/repository"
	otelsetup "assetbase/backend/internal/telemetry/otel"
	tenantrepo "assetbase/backend/internal/tenant/repository"
	userrepo "assetbase/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Fatal("JWT_PRIVATE_KEY", zap.Error(err))
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Fatal("JWT_PUBLIC_KEY", zap.Error(err))
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	ctx := context.Background()
	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "assetbase-auth", cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal("telemetry", zap.Error(err))
	}
	providers.SetGlobal()

	kafkaProd, err := producer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic)
	if err != nil {
		logger.Fatal("kafka producer", zap.Error(err))
	}
	var kafkaSink producer.Producer
	if kafkaProd != nil {
		kafkaSink = kafkaProd
	}
	auditSink := producer.NewFanout(kafkaSink, otelsetup.NewAuditEmitter(providers.LoggerProvider))
	auditLogs := auditrepo.NewPostgresRepository(database)
	auditor := audit.NewLogger(auditLogs, auditSink, logger)

	sessions := sessionrepo.NewPostgresRepository(database)
	svc := service.NewAuthService(
		tenantrepo.NewPostgresRepository(database),
		userrepo.NewPostgresRepository(database),
		sessions,
		security.NewHasher(cfg.BcryptCost),
		tokens,
		auditor,
	)

	authHandler := identityhandler.NewHTTPHandler(svc, identityhandler.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	}, logger)
	authenticator := middleware.NewAuthenticator(tokens, sessions, logger)

	router := server.NewRouter(server.Options{
		Auth:          authHandler,
		Audit:         audithandler.NewHTTPHandler(auditLogs, logger),
		Authenticator: authenticator,
		DB:            database,
		Logger:        logger,
		CORSOrigins:   cfg.CORSOrigins(),
	})
	srv := server.New(cfg.HTTPAddr, router)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	// Let in-flight async audit emits drain before tearing the sinks down.
	time.Sleep(audit.ShutdownDrainDuration)
	if auditSink != nil {
		_ = auditSink.Close()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
