// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email,max=255"`
	Role     *string `json:"role,omitempty"     validate:"omitempty,oneof=user admin"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	core.PageParams
	Search string
	Role   string
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Verified:  u.IsVerified(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
