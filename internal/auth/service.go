// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/storefront-api/internal/config"
	"github.com/carterperez-dev/storefront-api/internal/core"
	"github.com/carterperez-dev/storefront-api/internal/mail"
)

const codeDigits = 6

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailDomain        = errors.New("email domain not allowed")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrNotVerified        = errors.New("account not verified")
)

type UserInfo struct {
	ID                    int64
	Username              string
	Email                 string
	PasswordHash          string
	Role                  string
	VerifiedAt            *time.Time
	VerificationCodeHash  *string
	VerificationExpiresAt *time.Time
	CreatedAt             time.Time
}

func (u *UserInfo) IsVerified() bool {
	return u.VerifiedAt != nil
}

type PendingUser struct {
	Username      string
	Email         string
	PasswordHash  string
	CodeHash      string
	CodeExpiresAt time.Time
}

// UserProvider is the slice of user storage the identity flows need.
// MarkVerified must fail with core.ErrConflict when the account is already
// verified so that concurrent confirmations succeed exactly once.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	CreatePending(ctx context.Context, u PendingUser) (*UserInfo, error)
	SetVerificationCode(
		ctx context.Context,
		userID int64,
		codeHash string,
		expiresAt time.Time,
	) error
	MarkVerified(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	mailer       mail.Mailer
	domains      map[string]struct{}
	codeTTL      time.Duration
	codeSecret   []byte
	now          func() time.Time
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	mailer mail.Mailer,
	cfg config.AuthConfig,
) *Service {
	domains := make(map[string]struct{}, len(cfg.AllowedEmailDomains))
	for _, d := range cfg.AllowedEmailDomains {
		domains[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		mailer:       mailer,
		domains:      domains,
		codeTTL:      cfg.VerificationCodeTTL,
		codeSecret:   []byte(cfg.CodeSecret),
		now:          time.Now,
	}
}

// Register creates an unverified account and mails its confirmation code.
// Delivery is best effort: a mail failure is logged and the account stays
// pending so the caller can use Resend.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserInfo, error) {
	email := normalizeEmail(req.Email)
	if !s.domainAllowed(email) {
		return nil, fmt.Errorf("register: %w", ErrEmailDomain)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, codeHash, err := s.newVerificationCode()
	if err != nil {
		return nil, err
	}

	user, err := s.userProvider.CreatePending(ctx, PendingUser{
		Username:      strings.TrimSpace(req.Username),
		Email:         email,
		PasswordHash:  passwordHash,
		CodeHash:      codeHash,
		CodeExpiresAt: s.now().Add(s.codeTTL),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code, s.codeTTL); err != nil {
		slog.WarnContext(ctx, "verification email not sent",
			"user_id", user.ID,
			"error", err,
		)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Verify confirms the account and logs the user in.
func (s *Service) Verify(
	ctx context.Context,
	req VerifyRequest,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	if user.IsVerified() {
		return nil, ErrAlreadyVerified
	}

	if !s.codeMatches(user, req.Code) {
		return nil, ErrInvalidCode
	}

	if err := s.userProvider.MarkVerified(ctx, user.ID); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, ErrAlreadyVerified
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	verifiedAt := s.now()
	user.VerifiedAt = &verifiedAt
	user.VerificationCodeHash = nil
	user.VerificationExpiresAt = nil

	return s.createAuthResponse(user)
}

func (s *Service) Resend(ctx context.Context, req ResendRequest) error {
	email := normalizeEmail(req.Email)

	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	if user.IsVerified() {
		return ErrAlreadyVerified
	}

	code, codeHash, err := s.newVerificationCode()
	if err != nil {
		return err
	}

	if err := s.userProvider.SetVerificationCode(
		ctx,
		user.ID,
		codeHash,
		s.now().Add(s.codeTTL),
	); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code, s.codeTTL); err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	return nil
}

// Login reports ErrInvalidCredentials for both unknown emails and wrong
// passwords, and spends the same argon2 work on each.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.BurnPasswordCheck(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, stale, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return nil, ErrNotVerified
	}

	if stale {
		s.rehash(ctx, user.ID, req.Password)
	}

	return s.createAuthResponse(user)
}

func (s *Service) rehash(ctx context.Context, userID int64, password string) {
	hash, err := core.HashPassword(password)
	if err == nil {
		err = s.userProvider.UpdatePassword(ctx, userID, hash)
	}
	if err != nil {
		slog.WarnContext(ctx, "password rehash failed",
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(time.Until(expiresAt).Seconds()),
			ExpiresAt:   expiresAt,
		},
	}, nil
}

func (s *Service) codeMatches(user *UserInfo, code string) bool {
	if user.VerificationCodeHash == nil || user.VerificationExpiresAt == nil {
		return false
	}
	if s.now().After(*user.VerificationExpiresAt) {
		return false
	}
	return core.CompareCodeHash(s.codeSecret, code, *user.VerificationCodeHash)
}

// domainAllowed treats an empty allow-list as allowing every domain.
func (s *Service) domainAllowed(email string) bool {
	if len(s.domains) == 0 {
		return true
	}
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	_, ok := s.domains[email[at+1:]]
	return ok
}

func (s *Service) newVerificationCode() (code, hash string, err error) {
	code, err = core.GenerateNumericCode(codeDigits)
	if err != nil {
		return "", "", fmt.Errorf("generate verification code: %w", err)
	}
	return code, core.HashCode(s.codeSecret, code), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
