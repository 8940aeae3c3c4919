package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"auth-service/internal/handler"
	"auth-service/internal/middleware"
)

func SetupRoutes(
	r chi.Router,
	h *handler.AuthHandler,
	auth *middleware.AuthMiddleware,
	rdb redis.UniversalClient,
) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, time.Minute, "global_user_auth"))

	r.Route("/api/v1", func(api chi.Router) {
		// ---------------- Public ----------------
		api.Group(func(pub chi.Router) {
			pub.Get("/auth/health", h.Health)
			pub.Post("/auth/check-email", h.CheckEmail)

			pub.Post("/auth/signup", h.Signup)
			pub.Post("/auth/signin", h.Signin)
			pub.Post("/auth/refresh-token", h.RefreshToken)

			pub.Post("/auth/biometric/login", h.BiometricLogin)

			pub.Post("/auth/mfa/send-code", h.SendMfaCode)
			pub.Post("/auth/mfa/verify-login", h.VerifyMfaLogin)

			pub.Post("/auth/password/forgot", h.HandleForgotPassword)
			pub.Post("/auth/password/reset", h.HandleResetPassword)
		})

		// ---------------- OTP (send is rate limited harder) ----------------
		api.Group(func(g chi.Router) {
			g.Use(middleware.RateLimiter(rdb, 5, 30*time.Second, 30*time.Second, "user_otp"))
			g.Post("/auth/phone/send-otp", h.SendPhoneOtp)
			g.Post("/auth/email/send-otp", h.SendEmailOtp)
		})
		api.Group(func(g chi.Router) {
			g.Post("/auth/phone/verify-otp", h.VerifyPhoneOtp)
			g.Post("/auth/email/verify-otp", h.VerifyEmailOtp)
		})

		// ---------------- Authenticated ----------------
		api.Group(func(g chi.Router) {
			g.Use(auth.Require())

			g.Get("/auth/ws", h.HandleWS)
			g.Get("/auth/status", h.AuthStatus)
			g.Post("/auth/logout", h.Logout)

			g.Get("/auth/profile", h.HandleProfile)
			g.Put("/auth/update-profile/{id}", h.HandleUpdateProfile)
			g.Post("/auth/preferences/login-method", h.HandleUpdateLoginPreference)
			g.Delete("/auth/account/{id}", h.HandleDeleteAccount)

			g.Route("/auth/mfa", func(r chi.Router) {
				r.Post("/setup", h.SetupMfa)
				r.Post("/disable", h.DisableMfa)
			})

			g.Route("/auth/biometric", func(r chi.Router) {
				r.Post("/enable", h.EnableBiometric)
				r.Post("/disable", h.DisableBiometric)
			})
		})
	})

	return r
}
