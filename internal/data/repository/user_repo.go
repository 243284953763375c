package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/pkg/database"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByOTP(ctx context.Context, otp int) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string, nowMillis int64) (*entity.User, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *entity.User) error
	SetOTP(ctx context.Context, id uuid.UUID, otp int, expiry int64) error
	ConfirmEmail(ctx context.Context, id uuid.UUID, otp int) (bool, error)
	SetTemporaryPassword(ctx context.Context, id uuid.UUID, hash, token string, expires int64) error
	ResetPassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateFields(ctx context.Context, id uuid.UUID, patch UserPatch) (*entity.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Role        *entity.UserRole
	PhoneNumber *string
	Address     *string
	Bio         *string
	IsDeleted   *bool
}

const userColumns = `id, first_name, last_name, email, password, role,
	profile_pic, phone_number, address, bio,
	otp, otp_expiry, is_email_confirmed,
	reset_password_token, reset_password_expires,
	is_deleted, created_at, updated_at`

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
	now func() time.Time
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
		now: time.Now,
	}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.ProfilePic,
		&user.PhoneNumber,
		&user.Address,
		&user.Bio,
		&user.OTP,
		&user.OTPExpiry,
		&user.IsEmailConfirmed,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// findOne runs a single-row lookup; a missing row yields nil, nil.
func (ur *userRepository) findOne(ctx context.Context, op string, query string, args ...any) (*entity.User, error) {
	user, err := scanUser(ur.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to "+op, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Create inserts a new user record into the database
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password, role,
		                   profile_pic, phone_number, address, bio,
		                   otp, otp_expiry, is_email_confirmed,
		                   reset_password_token, reset_password_expires,
		                   is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ProfilePic,
		user.PhoneNumber,
		user.Address,
		user.Bio,
		user.OTP,
		user.OTPExpiry,
		user.IsEmailConfirmed,
		user.ResetPasswordToken,
		user.ResetPasswordExpires,
		user.IsDeleted,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return ur.findOne(ctx, "find user by id", query, id)
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return ur.findOne(ctx, "find user by email", query, email)
}

// FindByOTP returns the newest holder of the code. Codes are not unique, so two
// pending accounts may collide; the most recently issued one wins.
func (ur *userRepository) FindByOTP(ctx context.Context, otp int) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE otp = $1
		ORDER BY otp_expiry DESC
		LIMIT 1
	`
	return ur.findOne(ctx, "find user by otp", query, otp)
}

// FindByResetToken only matches tokens that have not yet expired.
func (ur *userRepository) FindByResetToken(ctx context.Context, token string, nowMillis int64) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_password_token = $1 AND reset_password_expires > $2
	`
	return ur.findOne(ctx, "find user by reset token", query, token, nowMillis)
}

// FindAll retrieves paginated list of users
func (ur *userRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := ur.db.Query(ctx, query, limit, offset)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE is_deleted = FALSE`

	var count int64
	if err := ur.db.QueryRow(ctx, query).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

// Update writes the profile and role of an existing user.
func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, role = $5,
		    profile_pic = $6, phone_number = $7, address = $8, bio = $9,
		    updated_at = $10
		WHERE id = $1
	`

	user.UpdatedAt = ur.now()
	return ur.exec(ctx, "update user", user.ID, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Role,
		user.ProfilePic,
		user.PhoneNumber,
		user.Address,
		user.Bio,
		user.UpdatedAt,
	)
}

// SetOTP overwrites any pending code.
func (ur *userRepository) SetOTP(ctx context.Context, id uuid.UUID, otp int, expiry int64) error {
	query := `UPDATE users SET otp = $2, otp_expiry = $3, updated_at = $4 WHERE id = $1`
	return ur.exec(ctx, "set otp", id, query, id, otp, expiry, ur.now())
}

// ConfirmEmail consumes the code only if it is still the one on record, so two
// concurrent verifications cannot both succeed. It reports whether a row changed.
func (ur *userRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, otp int) (bool, error) {
	query := `
		UPDATE users
		SET is_email_confirmed = TRUE, otp = NULL, otp_expiry = NULL, updated_at = $3
		WHERE id = $1 AND otp = $2 AND is_email_confirmed = FALSE
	`

	result, err := ur.db.Exec(ctx, query, id, otp, ur.now())
	if err != nil {
		ur.log.Error("Failed to confirm email", zap.Error(err), zap.String("user_id", id.String()))
		return false, fmt.Errorf("confirm email %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (ur *userRepository) SetTemporaryPassword(ctx context.Context, id uuid.UUID, hash, token string, expires int64) error {
	query := `
		UPDATE users
		SET password = $2, reset_password_token = $3, reset_password_expires = $4, updated_at = $5
		WHERE id = $1
	`
	return ur.exec(ctx, "set temporary password", id, query, id, hash, token, expires, ur.now())
}

// ResetPassword stores the new hash and consumes both the reset token and any pending otp.
func (ur *userRepository) ResetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `
		UPDATE users
		SET password = $2, otp = NULL, otp_expiry = NULL,
		    reset_password_token = NULL, reset_password_expires = NULL,
		    updated_at = $3
		WHERE id = $1
	`
	return ur.exec(ctx, "reset password", id, query, id, hash, ur.now())
}

func (ur *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`
	return ur.exec(ctx, "update password", id, query, id, hash, ur.now())
}

func (ur *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, patch UserPatch) (*entity.User, error) {
	query, args, err := buildPatchQuery(id, patch, ur.now())
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	user, err := scanUser(ur.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		ur.log.Error("Failed to update user fields", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("update user fields %s: %w", id.String(), err)
	}

	return user, nil
}

func (ur *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	deleted := true
	return ur.UpdateFields(ctx, id, UserPatch{IsDeleted: &deleted})
}

// Delete removes the row and returns what was removed.
func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		ur.log.Error("Failed to delete user", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	ur.log.Info("User deleted", zap.String("id", id.String()))
	return user, nil
}

func (ur *userRepository) exec(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	result, err := ur.db.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		ur.log.Error("Failed to "+op, zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("%s %s: %w", op, id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// buildPatchQuery turns the non-nil patch fields into a single UPDATE ... RETURNING.
func buildPatchQuery(id uuid.UUID, patch UserPatch, now time.Time) (string, []any, error) {
	set := map[string]any{"updated_at": now}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Email != nil {
		set["email"] = entity.NormalizeEmail(*patch.Email)
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.PhoneNumber != nil {
		set["phone_number"] = *patch.PhoneNumber
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}
	if patch.IsDeleted != nil {
		set["is_deleted"] = *patch.IsDeleted
	}

	return sq.Update("users").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}
