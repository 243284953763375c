package wire

import (
	"marketplace-api/internal/adaptor"
	"marketplace-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	tokens middleware.TokenParser,
	log *zap.Logger,
) {
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/verify", authHandler.VerifyAccount)
	r.Post("/api/resend-otp", authHandler.ResendOTP)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/forgot-password", authHandler.ForgotPassword)
	r.Post("/api/reset-password", authHandler.ResetPassword)

	r.With(middleware.AuthBearer(tokens, log)).Post("/api/change-password", authHandler.ChangePassword)
}
