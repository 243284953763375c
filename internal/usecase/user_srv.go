package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/storage"
	"marketplace-api/pkg/utils"

	"dario.cat/mergo"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=user_srv.go -destination=../mock/user_srv_mock.go -package=mock

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.ProfileUpdateRequest) (*response.UserResponse, error)
	ListUsers(ctx context.Context, req *request.PaginationRequest) (*response.UserListResponse, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, permanent bool) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	store    storage.ObjectStorage
	maxBytes int64
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, store storage.ObjectStorage, config *utils.Config, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		store:    store,
		maxBytes: config.Storage.MaxUploadBytes(),
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// UpdateProfile stores an optional new picture and merges the non-empty form
// fields into the caller's record.
func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.ProfileUpdateRequest) (*response.UserResponse, error) {
	req.Email = entity.NormalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, FieldsError(errs)
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch := entity.Profile{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Bio:         req.Bio,
	}

	var uploadedKey string
	if req.Picture != nil {
		url, key, err := us.uploadPicture(ctx, userID, req.Picture)
		if err != nil {
			return nil, err
		}
		patch.ProfilePic = url
		uploadedKey = key
	}

	if err := mergo.Merge(&user.Profile, patch, mergo.WithOverride); err != nil {
		us.discardUpload(ctx, uploadedKey)
		return nil, fmt.Errorf("merge profile: %w", err)
	}

	if err := us.userRepo.Update(ctx, user); err != nil {
		us.discardUpload(ctx, uploadedKey)
		return nil, us.mapWriteError(err)
	}

	us.log.Info("Profile updated", zap.String("user_id", userID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// uploadPicture stores the file and returns its public URL and storage key.
func (us *userService) uploadPicture(ctx context.Context, userID uuid.UUID, file *request.FileUpload) (string, string, error) {
	size := int64(len(file.Content))
	if size == 0 {
		return "", "", ValidationError("Profile picture is empty")
	}
	if us.maxBytes > 0 && size > us.maxBytes {
		return "", "", ValidationError(fmt.Sprintf("Profile picture must not exceed %d MB", us.maxBytes>>20))
	}

	mt := mimetype.Detect(file.Content)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", "", ValidationError("Profile picture must be an image")
	}

	key := fmt.Sprintf("profile-pictures/%s/%s%s", userID, uuid.New(), mt.Extension())
	url, err := us.store.Put(ctx, key, bytes.NewReader(file.Content), size, mt.String())
	if err != nil {
		us.log.Error("Failed to store profile picture",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("filename", file.Filename))
		return "", "", err
	}

	return url, key, nil
}

// discardUpload removes a picture whose profile update did not persist. The
// update error is what the caller sees, so a failed delete is only logged.
func (us *userService) discardUpload(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := us.store.Delete(ctx, key); err != nil {
		us.log.Warn("Failed to remove orphaned profile picture", zap.Error(err), zap.String("key", key))
	}
}

func (us *userService) ListUsers(ctx context.Context, req *request.PaginationRequest) (*response.UserListResponse, error) {
	if req.PageNumber < 0 || req.Limit < 0 || req.PageNumber > request.MaxPageNumber {
		return nil, ValidationError("Invalid query parameters")
	}

	limit := req.PerPage()
	skip := utils.CalculateSkip(req.PageNumber, limit)
	if skip < 0 {
		return nil, ValidationError("Invalid combination of pageNumber and limit.")
	}

	users, err := us.userRepo.FindAll(ctx, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return response.NewUserListResponse(response.UsersToResponse(users), req.PageNumber, limit, total), nil
}

func (us *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, FieldsError(errs)
	}

	if _, err := us.findUser(ctx, userID); err != nil {
		return nil, err
	}

	patch := repository.UserPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Bio:         req.Bio,
		IsDeleted:   req.IsDeleted,
	}
	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		patch.Role = &role
	}

	user, err := us.userRepo.UpdateFields(ctx, userID, patch)
	if err != nil {
		return nil, us.mapWriteError(err)
	}

	us.log.Info("User updated", zap.String("user_id", userID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, userID uuid.UUID, permanent bool) (*response.UserResponse, error) {
	if _, err := us.findUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		user *entity.User
		err  error
	)
	if permanent {
		user, err = us.userRepo.Delete(ctx, userID)
	} else {
		user, err = us.userRepo.SoftDelete(ctx, userID)
	}
	if err != nil {
		return nil, us.mapWriteError(err)
	}

	us.log.Info("User deleted",
		zap.String("user_id", userID.String()),
		zap.Bool("permanent", permanent))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if user == nil {
		return nil, NotFoundError("User Not Found in our records")
	}
	return user, nil
}

func (us *userService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return NotFoundError("User Not Found in our records")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ConflictError("Email already exists")
	default:
		return err
	}
}
