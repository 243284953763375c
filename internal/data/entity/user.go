package entity

import "strings"

type UserRole string

const (
	RoleUser  UserRole = "User"
	RoleAdmin UserRole = "Admin"
)

// Profile holds the fields a user may edit about themselves.
type Profile struct {
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Email       string `db:"email"`
	ProfilePic  string `db:"profile_pic"`
	PhoneNumber string `db:"phone_number"`
	Address     string `db:"address"`
	Bio         string `db:"bio"`
}

type User struct {
	Base
	Profile
	PasswordHash     string   `db:"password"`
	Role             UserRole `db:"role"`
	IsEmailConfirmed bool     `db:"is_email_confirmed"`
	IsDeleted        bool     `db:"is_deleted"`

	// pending verification code, both nil once consumed
	OTP       *int   `db:"otp"`
	OTPExpiry *int64 `db:"otp_expiry"`

	// pending reset token, both nil once consumed
	ResetPasswordToken   *string `db:"reset_password_token"`
	ResetPasswordExpires *int64  `db:"reset_password_expires"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
