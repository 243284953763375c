package usecase

import (
	"marketplace-api/internal/data/repository"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/storage"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
	User UserService
}

func NewService(
	repo *repository.Repository,
	tokens TokenIssuer,
	mail mailer.Mailer,
	store storage.ObjectStorage,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth: NewAuthService(repo, tokens, mail, config, log),
		User: NewUserService(repo.User, store, config, log),
	}
}
