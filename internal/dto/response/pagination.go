package response

import "marketplace-api/pkg/utils"

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Total      int64          `json:"total"`
	Limit      int            `json:"limit"`
	PageNumber int            `json:"pageNumber"`
	TotalPages int            `json:"totalPages"`
}

func NewUserListResponse(users []UserResponse, pageNumber, limit int, total int64) *UserListResponse {
	if users == nil {
		users = []UserResponse{}
	}
	return &UserListResponse{
		Users:      users,
		Total:      total,
		Limit:      limit,
		PageNumber: pageNumber,
		TotalPages: utils.CalculateTotalPages(total, limit),
	}
}
