package response

import (
	"time"

	"marketplace-api/internal/data/entity"
)

// UserResponse is the public view of a user. The password hash, otp and
// reset token never leave the service.
type UserResponse struct {
	ID               string          `json:"id"`
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	Email            string          `json:"email"`
	Role             entity.UserRole `json:"role"`
	ProfilePic       string          `json:"profilePic"`
	PhoneNumber      string          `json:"phoneNumber"`
	Address          string          `json:"address"`
	Bio              string          `json:"bio"`
	IsEmailConfirmed bool            `json:"isEmailConfirmed"`
	IsDeleted        bool            `json:"isDeleted"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:               user.ID.String(),
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Email:            user.Email,
		Role:             user.Role,
		ProfilePic:       user.ProfilePic,
		PhoneNumber:      user.PhoneNumber,
		Address:          user.Address,
		Bio:              user.Bio,
		IsEmailConfirmed: user.IsEmailConfirmed,
		IsDeleted:        user.IsDeleted,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToResponse(u))
	}
	return out
}
