package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=auth_srv.go -destination=../mock/auth_srv_mock.go -package=mock

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	VerifyAccount(ctx context.Context, req *request.VerifyAccountRequest) (*response.UserResponse, error)
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) (*response.UserResponse, error)
}

// TokenIssuer signs the bearer token returned on login.
type TokenIssuer interface {
	Issue(userID uuid.UUID, role string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	mail     mailer.Mailer
	hasher   utils.PasswordHasher
	policy   utils.PasswordPolicy
	config   *utils.Config
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	tokens TokenIssuer,
	mail mailer.Mailer,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo: repo.User,
		tokens:   tokens,
		mail:     mail,
		hasher:   utils.NewBcryptHasher(config.Password.BcryptCost),
		policy:   utils.NewPasswordPolicy(config.Password.MinLength),
		config:   config,
		log:      log.With(zap.String("service", "auth")),
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	req.Email = entity.NormalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, FieldsError(errs)
	}
	if err := s.policy(req.Password); err != nil {
		return nil, weakPassword("password", err)
	}

	email := req.Email

	// the unique index is authoritative, this only saves a hash on the common path
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ConflictError("Email already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	otp, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	expiry := utils.ExpiryMillis(now, s.config.OTP.OTPTTL())
	user := &entity.User{
		Base: entity.NewBase(now),
		Profile: entity.Profile{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     email,
		},
		PasswordHash: hash,
		Role:         entity.RoleUser,
		OTP:          &otp,
		OTPExpiry:    &expiry,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ConflictError("Email already exists")
		}
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	// the record stays even if the mail bounces; the user can ask for a new code
	if err := s.mail.Send(ctx, verificationMessage(user.Email, otp)); err != nil {
		s.log.Error("Failed to send verification email", zap.Error(err), zap.String("email", user.Email))
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) VerifyAccount(ctx context.Context, req *request.VerifyAccountRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, FieldsError(errs)
	}
	otp := int(req.OTP)

	user, err := s.userRepo.FindByOTP(ctx, otp)
	if err != nil {
		return nil, fmt.Errorf("find user by otp: %w", err)
	}

	switch {
	case user == nil:
		return nil, NotFoundError("User not found")
	case user.OTPExpiry == nil || utils.IsExpired(*user.OTPExpiry, s.now()):
		return nil, ExpiredError("OTP expired")
	case user.IsEmailConfirmed:
		return nil, ConflictError("Account already verified")
	case user.OTP == nil || *user.OTP != otp:
		return nil, ValidationError("Invalid OTP")
	}

	confirmed, err := s.userRepo.ConfirmEmail(ctx, user.ID, otp)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		// consumed by a concurrent request in the meantime
		return nil, NotFoundError("User not found")
	}

	user.IsEmailConfirmed = true
	user.OTP, user.OTPExpiry = nil, nil

	s.log.Info("Account verified", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error {
	req.Email = entity.NormalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return FieldsError(errs)
	}
	email := req.Email

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		// same answer as for a known address
		s.log.Info("OTP requested for unknown email", zap.String("email", email))
		return nil
	}

	otp, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiry := utils.ExpiryMillis(s.now(), s.config.OTP.OTPTTL())

	if err := s.userRepo.SetOTP(ctx, user.ID, otp, expiry); err != nil {
		return err
	}

	if err := s.mail.Send(ctx, verificationMessage(user.Email, otp)); err != nil {
		s.log.Error("Failed to resend verification email", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("send verification email: %w", err)
	}

	return nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	req.Email = entity.NormalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, FieldsError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return nil, NotFoundError("User not found")
	}
	if !user.IsEmailConfirmed {
		return nil, ForbiddenError("Email not confirmed. Please confirm your email via otp.")
	}
	if !s.hasher.Compare(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, UnauthorizedError("Invalid Credentials")
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &response.LoginResponse{
		Token: token,
		User:  response.UserToResponse(user),
	}, nil
}

// ForgotPassword replaces the password with a temporary one at once, so the old
// password stops working even if the email never arrives.
func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	req.Email = entity.NormalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return FieldsError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return NotFoundError("User not found")
	}

	temporary, err := utils.GenerateTemporaryPassword()
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := s.hasher.Hash(temporary)
	if err != nil {
		return err
	}
	token, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expires := utils.ExpiryMillis(s.now(), s.config.OTP.ResetTokenTTL())

	if err := s.userRepo.SetTemporaryPassword(ctx, user.ID, hash, token, expires); err != nil {
		return err
	}

	msg := resetMessage(user.Email, temporary, s.resetLink(token))
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("Failed to send reset email", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("send reset email: %w", err)
	}

	s.log.Info("Password reset issued", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return FieldsError(errs)
	}
	if err := s.policy(req.NewPassword); err != nil {
		return weakPassword("newPassword", err)
	}

	user, err := s.userRepo.FindByResetToken(ctx, req.Token, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("find user by reset token: %w", err)
	}
	if user == nil {
		return NotFoundError("User not found")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.ResetPassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return NotFoundError("User not found")
		}
		return err
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, FieldsError(errs)
	}
	if err := s.policy(req.NewPassword); err != nil {
		return nil, weakPassword("newPassword", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if user == nil {
		return nil, NotFoundError("User not found")
	}
	if !s.hasher.Compare(req.CurrentPassword, user.PasswordHash) {
		return nil, UnauthorizedError("Invalid Credentials")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, err
	}
	user.PasswordHash = hash

	s.log.Info("Password changed", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) resetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, token)
}

func weakPassword(field string, err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Password is too weak",
		Fields:  map[string]string{field: err.Error()},
		Err:     err,
	}
}

func verificationMessage(to string, otp int) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "User Account Email Verification",
		Body:    fmt.Sprintf("Thank you for registering with We Have And You Have!\n\nYour verification code is: %d", otp),
	}
}

func resetMessage(to, temporary, link string) mailer.Message {
	body := fmt.Sprintf(`Dear User,

Temporary Password: %s

This temporary password will be valid until you reset your password.
You can choose a new password here: %s

Regards,
Your App Team`, temporary, link)

	return mailer.Message{
		To:      to,
		Subject: "Change Password Link and Temporary Password",
		Body:    body,
	}
}
