package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/config"
	"github.com/mychangex/app-wallet/internal/gateways"
	"github.com/mychangex/app-wallet/internal/handlers"
	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/middleware"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/redisclient"
	"github.com/mychangex/app-wallet/internal/services"
	"github.com/mychangex/app-wallet/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mychangex/app-wallet/docs"
)

// @title           myChangeX Wallet API
// @version         1.0
// @description     Phone verification, signup and coupon transfers for the myChangeX wallet.

// @host      localhost:8080
// @BasePath  /v1

// @tag.name otp
// @tag.description Phone verification sessions

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name auth
// @tag.description Access tokens for the wallet endpoints

// @tag.name signup
// @tag.description Account creation

// @tag.name coupons
// @tag.description Coupon transfers and balances

// @tag.name health
// @tag.description Health check operations

func main() {
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger := logging.Logger

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	observability.InitTracer(cfg)
	defer observability.ShutdownTracer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	pool, err := config.InitPostgres(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	checks := map[string]handlers.HealthCheck{
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		"postgres": pool.Ping,
	}

	var (
		auditSink   services.AuditSink
		auditWorker *utils.AuditWorker
	)
	if cfg.AuditLogsEnabled {
		db, err := config.InitMongoDB(cfg)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("failed to disconnect MongoDB", zap.Error(err))
			}
		}()

		auditWorker = utils.NewAuditWorker(db.Collection(cfg.AuditLogsCollection), 2, 1000, logger.Named("audit"))
		auditWorker.Start()
		auditSink = auditWorker
		checks["mongodb"] = func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }
	}

	auth := newAuthGateway(cfg, rdb, logger)
	limiter := services.NewSendCodeLimiter(cfg.SendCodeRatePerMin, logger)

	sessions := services.NewSessionManager(auth, services.SessionManagerConfig{
		IdleTimeout:      cfg.SessionIdleTimeout,
		CountdownSeconds: int(cfg.OTPCountdown / time.Second),
		Limiter:          limiter,
		Navigator:        services.LogNavigator(logger),
		Logger:           logger.Named("otp"),
	})
	go sessions.RunJanitor(ctx, time.Minute)

	tokens := services.NewRegistrationTokens(rdb, cfg.RegistrationTokenTTL)
	signup := services.NewSignupService(sessions, tokens, auditSink, logger.Named("signup"))
	access := services.NewAccessTokens(signingKey(cfg, logger), cfg.AccessTokenTTL)
	wallet := services.NewWalletAuthService(sessions, tokens, access, auditSink, logger.Named("auth"))
	coupons := services.NewCouponService(gateways.NewPostgresLedger(pool), auditSink, cfg.MaxTransferCents, logger.Named("coupons"))

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.New(sessions, signup, wallet, coupons, checks, logger)
	h.RegisterRoutes(router.Group("/v1"))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("auth_provider", cfg.AuthProvider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	sessions.Shutdown()
	auditWorker.Stop()
	_ = logger.Sync()

	logger.Info("server exited gracefully")
}

// signingKey returns JWT_SECRET, or a random per-process key outside production
func signingKey(cfg *config.Config, logger *logging.SafeLogger) []byte {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		logger.Fatal("failed to generate signing key", zap.Error(err))
	}
	logger.Warn("JWT_SECRET not set, access tokens will not survive a restart")
	return key
}

// newAuthGateway picks the code delivery backend named by AUTH_PROVIDER
func newAuthGateway(cfg *config.Config, rdb *redisclient.Client, logger *logging.SafeLogger) services.AuthGateway {
	if cfg.AuthProvider == config.AuthProviderTwilio {
		client := gateways.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		return gateways.NewTwilioVerifyGateway(client, cfg.TwilioVerifyServiceSID, logger.Named("twilio"))
	}

	var sender gateways.CodeSender = gateways.LogSender{Logger: logger.Named("sms")}
	if cfg.HasSMSSender() {
		client := gateways.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		sender = gateways.NewTwilioSMSSender(client, cfg.TwilioFrom, logger.Named("twilio"))
	} else {
		// LoadConfig refuses this in production
		logger.Warn("no SMS provider configured, verification codes are only logged")
	}

	return gateways.NewRedisAuthGateway(rdb, sender, gateways.RedisAuthConfig{
		TTL:         cfg.OTPTTL,
		Cooldown:    cfg.OTPCooldown,
		MaxAttempts: cfg.OTPMaxAttempts,
	}, logger.Named("otp"))
}
