package request

type UpdateUserRequest struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=User Admin"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,max=30"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	IsDeleted   *bool   `json:"isDeleted,omitempty"`
}

// ProfileUpdateRequest carries the multipart form of the profile endpoint.
// Empty fields keep their stored value.
type ProfileUpdateRequest struct {
	FirstName   string `json:"firstName" validate:"omitempty,max=100"`
	LastName    string `json:"lastName" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=30"`
	Address     string `json:"address" validate:"omitempty,max=255"`
	Bio         string `json:"bio" validate:"omitempty,max=1000"`

	Picture *FileUpload `json:"-"`
}

type FileUpload struct {
	Filename string
	Content  []byte
}
