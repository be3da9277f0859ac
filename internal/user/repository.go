// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetVerificationCode(
		ctx context.Context,
		id int64,
		codeHash string,
		expiresAt time.Time,
	) error
	MarkVerified(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, username, email, password_hash, role, verified_at,
	verification_code_hash, verification_expires_at,
	created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			username, email, password_hash, role,
			verification_code_hash, verification_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.VerificationCodeHash,
		user.VerificationExpiresAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", core.MapPgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("get user: %w", core.MapPgError(err))
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("get user by email: %w", core.MapPgError(err))
	}

	return &user, nil
}

// Update saves profile fields. Moving to a new email clears verified_at,
// so the account has to confirm the new address before it can log in.
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET username = $2,
		    email = $3,
		    role = $4,
		    verified_at = CASE WHEN email = $3 THEN verified_at ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at, verified_at`

	var row struct {
		UpdatedAt  time.Time  `db:"updated_at"`
		VerifiedAt *time.Time `db:"verified_at"`
	}
	err := r.db.GetContext(ctx, &row, query,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", core.MapPgError(err))
	}

	user.UpdatedAt = row.UpdatedAt
	user.VerifiedAt = row.VerifiedAt
	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) SetVerificationCode(
	ctx context.Context,
	id int64,
	codeHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET verification_code_hash = $2,
		    verification_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND verified_at IS NULL`

	return r.execOne(ctx, "set verification code", query, id, codeHash, expiresAt)
}

// MarkVerified only matches unverified rows. When nothing matches it tells a
// missing user (ErrNotFound) apart from a lost race (ErrConflict).
func (r *repository) MarkVerified(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET verified_at = NOW(),
		    verification_code_hash = NULL,
		    verification_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND verified_at IS NULL`

	err := r.execOne(ctx, "mark verified", query, id)
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return fmt.Errorf("mark verified: %w", core.ErrConflict)
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "delete user", query, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"deleted_at IS NULL"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR username ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM users WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, core.MapPgError(err))
	}

	rows, err := core.RowsAffected(result)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
