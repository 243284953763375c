package adaptor

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const profilePicField = "profilePic"

// room for the form fields and multipart framing on top of the file itself
const multipartOverhead = 1 << 20

type UserHandler struct {
	service   usecase.UserService
	maxUpload int64
	log       *zap.Logger
}

func NewUserHandler(service usecase.UserService, maxUpload int64, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service:   service,
		maxUpload: maxUpload,
		log:       log,
	}
}

// GetProfile handles GET /api/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "User found successfully", profile)
}

// UploadProfilePicture handles POST /api/profile-picture (multipart/form-data)
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			utils.ResponseTooLarge(w, "Upload is too large")
			return
		}
		utils.ResponseBadRequest(w, "Invalid multipart form", nil)
		return
	}

	req := request.ProfileUpdateRequest{
		FirstName:   r.FormValue("firstName"),
		LastName:    r.FormValue("lastName"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Address:     r.FormValue("address"),
		Bio:         r.FormValue("bio"),
	}

	file, header, err := r.FormFile(profilePicField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		utils.ResponseBadRequest(w, "Invalid profile picture", nil)
		return
	default:
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
		if err != nil {
			h.log.Error("Failed to read upload", zap.Error(err))
			utils.ResponseBadRequest(w, "Invalid profile picture", nil)
			return
		}
		req.Picture = &request.FileUpload{Filename: header.Filename, Content: content}
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Data updated successfully", user)
}

// ListUsers handles GET /api/users?pageNumber=&limit=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	pageNumber, err := parseIntParam(query.Get("pageNumber"), 1)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid query parameters", nil)
		return
	}
	limit, err := parseIntParam(query.Get("limit"), request.DefaultLimit)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid query parameters", nil)
		return
	}

	users, err := h.service.ListUsers(r.Context(), &request.PaginationRequest{PageNumber: pageNumber, Limit: limit})
	if err != nil {
		writeServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users found successfully", users)
}

// UpdateUser handles PUT /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req request.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update user")
		return
	}

	utils.ResponseSuccess(w, "User updated successfully", user)
}

// DeleteUser handles DELETE /api/users/{id}?permanent=true|false
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	permanent := false
	if raw := r.URL.Query().Get("permanent"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid query parameters", nil)
			return
		}
		permanent = v
	}

	user, err := h.service.DeleteUser(r.Context(), userID, permanent)
	if err != nil {
		writeServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", user)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseIntParam returns def for an empty value.
func parseIntParam(value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}
