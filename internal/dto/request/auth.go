package request

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MaxOTPCode is the largest code that fits the nine digit OTP range and the int4 column.
const MaxOTPCode = 999_999_999

var errInvalidOTP = errors.New("otp must be a number of at most 9 digits")

// OTPCode accepts the code either as a JSON number or as a numeric string.
type OTPCode int

func (c *OTPCode) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 || n > MaxOTPCode {
		return errInvalidOTP
	}
	*c = OTPCode(n)
	return nil
}

func (c OTPCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(c))
}

type VerifyAccountRequest struct {
	OTP OTPCode `json:"otp" validate:"required,min=1,max=999999999"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}
