package adaptor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/internal/mock"
	"marketplace-api/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *mock.MockAuthService) {
	t.Helper()
	svc := mock.NewMockAuthService(gomock.NewController(t))
	return NewAuthHandler(svc, zap.NewNop()), svc
}

func TestRegister(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.EXPECT().Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
			assert.Equal(t, "Ada", req.FirstName)
			assert.Equal(t, "ada@example.com", req.Email)
			return &response.UserResponse{ID: uuid.NewString(), Email: req.Email}, nil
		})

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/api/register", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "Str0ng!pass",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
	assert.Equal(t, "User Registered successfully.", env.Message)
	assert.Contains(t, string(env.Data), `"email":"ada@example.com"`)
	assert.NotContains(t, string(env.Data), "password")
}

func TestRegister_MalformedBody(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/api/register", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeEnvelope(t, rec).Message)
}

func TestAuthHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation carries fields", usecase.FieldsError(map[string]string{"email": "email is required"}), http.StatusBadRequest, "Validation failed"},
		{"conflict", usecase.ConflictError("Email already exists"), http.StatusBadRequest, "Email already exists"},
		{"unauthorized", usecase.UnauthorizedError("Invalid Credentials"), http.StatusBadRequest, "Invalid Credentials"},
		{"forbidden", usecase.ForbiddenError("Email not confirmed. Please confirm your email via otp."), http.StatusBadRequest, "Email not confirmed. Please confirm your email via otp."},
		{"not found", usecase.NotFoundError("User Not Found in our records"), http.StatusNotFound, "User Not Found in our records"},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newAuthHandler(t)
			svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			h.Login(rec, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
				"email": "a@b.com", "password": "x",
			}))

			assert.Equal(t, tt.code, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Status)
			assert.Equal(t, tt.message, env.Message)
			assert.NotContains(t, rec.Body.String(), "connection refused")
			if tt.name == "validation carries fields" {
				assert.JSONEq(t, `{"email":"email is required"}`, string(env.Errors))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	h, svc := newAuthHandler(t)
	svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(&response.LoginResponse{
		Token: "GHA abc.def.ghi",
		User:  response.UserResponse{Email: "a@b.com"},
	}, nil)

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
		"email": "a@b.com", "password": "Str0ng!pass",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Log in successfully", env.Message)
	assert.Contains(t, string(env.Data), `"token":"GHA abc.def.ghi"`)
}

func TestVerifyAccount_AcceptsStringOTP(t *testing.T) {
	h, svc := newAuthHandler(t)
	svc.EXPECT().VerifyAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *request.VerifyAccountRequest) (*response.UserResponse, error) {
			assert.EqualValues(t, 123456, req.OTP)
			return &response.UserResponse{IsEmailConfirmed: true}, nil
		})

	rec := httptest.NewRecorder()
	h.VerifyAccount(rec, jsonRequest(t, http.MethodPost, "/api/verify", `{"otp":"123456"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account verified successfully", decodeEnvelope(t, rec).Message)
}

func TestVerifyAccount_OversizedOTP(t *testing.T) {
	h, _ := newAuthHandler(t)

	for _, body := range []string{`{"otp":99999999999}`, `{"otp":"99999999999"}`} {
		rec := httptest.NewRecorder()
		h.VerifyAccount(rec, jsonRequest(t, http.MethodPost, "/api/verify", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid request body", decodeEnvelope(t, rec).Message)
	}
}

func TestResendOTPAndForgotPassword(t *testing.T) {
	h, svc := newAuthHandler(t)
	svc.EXPECT().ResendOTP(gomock.Any(), gomock.Any()).Return(nil)
	svc.EXPECT().ForgotPassword(gomock.Any(), gomock.Any()).Return(usecase.NotFoundError("User Not Found in our records"))

	rec := httptest.NewRecorder()
	h.ResendOTP(rec, jsonRequest(t, http.MethodPost, "/api/resend-otp", map[string]string{"email": "a@b.com"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Reset otp has been sent to your registered email.", decodeEnvelope(t, rec).Message)

	rec = httptest.NewRecorder()
	h.ForgotPassword(rec, jsonRequest(t, http.MethodPost, "/api/forgot-password", map[string]string{"email": "nobody@b.com"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPassword_TokenFromQuery(t *testing.T) {
	h, svc := newAuthHandler(t)
	svc.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *request.ResetPasswordRequest) error {
			assert.Equal(t, "query-token", req.Token)
			assert.Equal(t, "N3w!password", req.NewPassword)
			return nil
		})

	rec := httptest.NewRecorder()
	h.ResetPassword(rec, jsonRequest(t, http.MethodPost, "/api/reset-password?token=query-token", map[string]string{
		"token":       "body-token",
		"newPassword": "N3w!password",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password has been successfully reset.", decodeEnvelope(t, rec).Message)
}

func TestResetPassword_Expired(t *testing.T) {
	h, svc := newAuthHandler(t)
	svc.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).Return(usecase.ExpiredError("Reset token is invalid or has expired"))

	rec := httptest.NewRecorder()
	h.ResetPassword(rec, jsonRequest(t, http.MethodPost, "/api/reset-password?token=t", map[string]string{"newPassword": "N3w!password"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	h, svc := newAuthHandler(t)
	userID := uuid.New()

	rec := httptest.NewRecorder()
	h.ChangePassword(rec, jsonRequest(t, http.MethodPost, "/api/change-password", map[string]string{}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no caller on the context")

	svc.EXPECT().ChangePassword(gomock.Any(), userID, gomock.Any()).
		Return(&response.UserResponse{ID: userID.String()}, nil)

	rec = httptest.NewRecorder()
	h.ChangePassword(rec, withUser(jsonRequest(t, http.MethodPost, "/api/change-password", map[string]string{
		"currentPassword": "Old!pass1",
		"newPassword":     "N3w!password",
	}), userID))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password updated successfully", decodeEnvelope(t, rec).Message)
}
