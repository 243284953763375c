package wire

import (
	"marketplace-api/internal/adaptor"
	"marketplace-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	deps Deps,
	log *zap.Logger,
) {
	auth := middleware.AuthBearer(deps.Tokens, log)

	r.With(auth).Get("/api/profile", userHandler.GetProfile)
	r.With(auth).Post("/api/profile-picture", userHandler.UploadProfilePicture)

	// admin only, the role is read from the stored record
	r.With(
		auth,
		middleware.Admin(deps.Repo.User, log),
	).Route("/api/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Put("/{id}", userHandler.UpdateUser)
		r.Delete("/{id}", userHandler.DeleteUser)
	})
}
