// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/storefront-api/internal/auth"
)

var (
	ErrRoleChangeForbidden = errors.New("only admins can change roles")
	ErrAdminUndeletable    = errors.New("admin accounts cannot be deleted")
	ErrNotOwner            = errors.New("not allowed to access this user")
)

// Actor is the authenticated caller of a management operation.
type Actor struct {
	ID      int64
	IsAdmin bool
}

func (a Actor) canAccess(id int64) bool {
	return a.IsAdmin || a.ID == id
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) CreatePending(
	ctx context.Context,
	p auth.PendingUser,
) (*auth.UserInfo, error) {
	codeHash := p.CodeHash
	expiresAt := p.CodeExpiresAt

	user := &User{
		Username:              p.Username,
		Email:                 strings.ToLower(p.Email),
		PasswordHash:          p.PasswordHash,
		Role:                  RoleUser,
		VerificationCodeHash:  &codeHash,
		VerificationExpiresAt: &expiresAt,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) SetVerificationCode(
	ctx context.Context,
	userID int64,
	codeHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetVerificationCode(ctx, userID, codeHash, expiresAt)
}

func (s *Service) MarkVerified(ctx context.Context, userID int64) error {
	return s.repo.MarkVerified(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, actor Actor, id int64) (*User, error) {
	if !actor.canAccess(id) {
		return nil, fmt.Errorf("get user: %w", ErrNotOwner)
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateUser applies a partial profile update. Role changes require an
// admin caller regardless of whose profile is edited.
func (s *Service) UpdateUser(
	ctx context.Context,
	actor Actor,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	if !actor.canAccess(id) {
		return nil, fmt.Errorf("update user: %w", ErrNotOwner)
	}
	if req.Role != nil && !actor.IsAdmin {
		return nil, fmt.Errorf("update user: %w", ErrRoleChangeForbidden)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("delete user: %w", ErrAdminUndeletable)
	}

	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		Role:                  u.Role,
		VerifiedAt:            u.VerifiedAt,
		VerificationCodeHash:  u.VerificationCodeHash,
		VerificationExpiresAt: u.VerificationExpiresAt,
		CreatedAt:             u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
