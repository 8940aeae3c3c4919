package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/handler"
	"auth-service/internal/middleware"
	"auth-service/internal/notifier"
	"auth-service/internal/rate"
	"auth-service/internal/repository"
	"auth-service/internal/router"
	otpservice "auth-service/internal/service/otp"
	"auth-service/internal/usecase"
	"auth-service/internal/ws"
	"auth-service/pkg/cache"
	"auth-service/pkg/id"
	"auth-service/pkg/jwtutil"

	"github.com/go-chi/chi/v5"
)

// NewServer wires every component and returns a ready http.Server. It also
// installs the shutdown handler that drains connections on SIGTERM.
func NewServer(cfg config.AppConfig) *http.Server {
	db, err := config.ConnectDB(context.Background(), cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}

	cch := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)
	rdb := cch.Client()

	sf, err := id.NewSnowflake(8)
	if err != nil {
		log.Fatalf("failed to init snowflake: %v", err)
	}

	priv, err := jwtutil.LoadRSAPrivateKeyFromPEM(cfg.JWTPrivPath)
	if err != nil {
		log.Fatalf("load jwt private key: %v", err)
	}
	pub, err := jwtutil.LoadRSAPublicKeyFromPEM(cfg.JWTPubPath)
	if err != nil {
		log.Fatalf("load jwt public key: %v", err)
	}
	jwtGen := jwtutil.NewGenerator(priv, cfg.JWTIssuer, cfg.JWTAudience)
	jwtVer := jwtutil.NewVerifier(pub, cfg.JWTIssuer, cfg.JWTAudience)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	biometricRepo := repository.NewBiometricRepository(db)
	otpRepo := repository.NewOTPRepo(db)

	lim := rate.NewLimiter(cch, cfg.OTP_Window, cfg.OTP_MaxPerWindow, cfg.OTP_Cooldown)
	emailCli := notifier.NewEmailSender(cfg.SMTP)
	smsCli := notifier.NewSMSSender(cfg.SMS)
	otpSvc := otpservice.NewService(cch, lim, otpRepo, sf, emailCli, smsCli, cfg.OTP_TTL, cfg.OTP_MaxAttempts)

	authEvPub := ws.NewAuthEventPublisher(rdb)

	authUC := usecase.NewAuthUsecase(
		userRepo,
		sessionRepo,
		biometricRepo,
		otpSvc,
		cch,
		sf,
		jwtGen,
		jwtVer,
		authEvPub,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.MfaSessionTTL,
	)

	auth := middleware.NewAuthMiddleware(authUC)

	hub := ws.NewHub()
	bgCtx, stopListeners := context.WithCancel(context.Background())
	go ws.ListenAuthEvents(bgCtx, rdb, hub)

	authHandler := handler.NewAuthHandler(authUC, hub)

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, auth, rdb)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutdown signal received, draining...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}

		stopListeners()
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
		db.Close()
		log.Println("graceful shutdown complete")
	}()

	return srv
}
