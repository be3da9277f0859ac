// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                    int64      `db:"id"`
	Username              string     `db:"username"`
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password_hash"`
	Role                  string     `db:"role"`
	VerifiedAt            *time.Time `db:"verified_at"`
	VerificationCodeHash  *string    `db:"verification_code_hash"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
	DeletedAt             *time.Time `db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
