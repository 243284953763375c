package wire

import (
	"net/http"

	"marketplace-api/internal/adaptor"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/middleware"
	"marketplace-api/pkg/storage"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the process-level collaborators built in main.
type Deps struct {
	Repo   *repository.Repository
	Tokens *token.Manager
	Mailer mailer.Mailer
	Store  storage.ObjectStorage
}

type App struct {
	Router *chi.Mux
}

func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.Tokens, deps.Mailer, deps.Store, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	return &App{
		Router: setupRouter(handler, deps, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigin))

	wireAuth(r, handler.Auth, deps.Tokens, logger)
	wireUser(r, handler.User, deps, logger)
	wireUploads(r, deps.Store)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// wireUploads serves locally stored pictures. S3 objects are served by the bucket.
func wireUploads(r chi.Router, store storage.ObjectStorage) {
	local, ok := store.(*storage.LocalStorage)
	if !ok {
		return
	}

	prefix := local.MountPath()
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(local.BasePath())))
	r.Get(prefix+"*", files.ServeHTTP)
}
