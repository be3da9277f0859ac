// AngelaMos | 2026
// helpers_test.go

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"github.com/carterperez-dev/storefront-api/internal/config"
	"github.com/carterperez-dev/storefront-api/internal/core"
)

func newTestJWT(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    priv,
		PublicKeyPath:     pub,
		AccessTokenExpire: expire,
		Issuer:            "storefront-api",
		Audience:          "storefront-web",
	})
	require.NoError(t, err)
	return m
}

type memUsers struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*UserInfo
	rehashN int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*UserInfo)}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) CreatePending(_ context.Context, p PendingUser) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[p.Email]; ok {
		return nil, fmt.Errorf("create user: %w: users_email_active_key", core.ErrDuplicateKey)
	}

	m.nextID++
	expires := p.CodeExpiresAt
	hash := p.CodeHash
	u := &UserInfo{
		ID:                    m.nextID,
		Username:              p.Username,
		Email:                 p.Email,
		PasswordHash:          p.PasswordHash,
		Role:                  "user",
		VerificationCodeHash:  &hash,
		VerificationExpiresAt: &expires,
		CreatedAt:             time.Now(),
	}
	m.byEmail[p.Email] = u

	cp := *u
	return &cp, nil
}

func (m *memUsers) find(id int64) *UserInfo {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *memUsers) SetVerificationCode(
	_ context.Context,
	id int64,
	hash string,
	expiresAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.find(id)
	if u == nil {
		return core.ErrNotFound
	}
	u.VerificationCodeHash = &hash
	u.VerificationExpiresAt = &expiresAt
	return nil
}

func (m *memUsers) MarkVerified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.find(id)
	if u == nil {
		return core.ErrNotFound
	}
	if u.VerifiedAt != nil {
		return fmt.Errorf("mark verified: %w", core.ErrConflict)
	}
	now := time.Now()
	u.VerifiedAt = &now
	u.VerificationCodeHash = nil
	u.VerificationExpiresAt = nil
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.find(id)
	if u == nil {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	m.rehashN++
	return nil
}

type recordingMailer struct {
	mu    sync.Mutex
	codes map[string]string
	fail  bool
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{codes: make(map[string]string)}
}

func (r *recordingMailer) SendVerificationCode(
	_ context.Context,
	to, code string,
	_ time.Duration,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return errors.New("smtp: connection refused")
	}
	r.codes[to] = code
	return nil
}

func (r *recordingMailer) code(to string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[to]
}

type fixture struct {
	svc    *Service
	users  *memUsers
	mailer *recordingMailer
	jwt    *JWTManager
}

const testCodeSecret = "test-code-secret"

func newFixture(t *testing.T, domains ...string) *fixture {
	t.Helper()

	f := &fixture{
		users:  newMemUsers(),
		mailer: newRecordingMailer(),
		jwt:    newTestJWT(t, time.Hour),
	}
	f.svc = NewService(f.jwt, f.users, f.mailer, config.AuthConfig{
		AllowedEmailDomains: domains,
		VerificationCodeTTL: 15 * time.Minute,
		CodeSecret:          testCodeSecret,
	})
	return f
}

func (f *fixture) registerAndVerify(t *testing.T, email, password string) *AuthResponse {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{
		Username: "tester",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	resp, err := f.svc.Verify(ctx, VerifyRequest{Email: email, Code: f.mailer.code(email)})
	require.NoError(t, err)
	return resp
}

// argonTestHash encodes password with weaker parameters than production so
// CheckPassword reports the hash as stale.
func argonTestHash(t *testing.T, password string) string {
	t.Helper()
	salt := []byte("fixed-test-salt!")
	key := argon2.IDKey([]byte(password), salt, 2, 16*1024, 1, 32)
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 16*1024, 2, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}
