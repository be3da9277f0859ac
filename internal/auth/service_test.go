// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

func TestRegisterStoresHashedCodeAndMailsIt(t *testing.T) {
	f := newFixture(t, "gmail.com")

	user, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Email:    "  Ana@Gmail.com ",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@gmail.com", user.Email)
	assert.False(t, user.IsVerified())

	code := f.mailer.code("ana@gmail.com")
	require.Len(t, code, 6)

	stored, err := f.users.GetByEmail(context.Background(), "ana@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCodeHash)
	assert.Equal(t, core.HashCode([]byte(testCodeSecret), code), *stored.VerificationCodeHash)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	req := RegisterRequest{Username: "ana", Email: "ana@gmail.com", Password: "s3cret-pass"}

	_, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterDomainAllowList(t *testing.T) {
	f := newFixture(t, "gmail.com", "yahoo.com")

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@mailinator.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrEmailDomain)

	open := newFixture(t)
	_, err = open.svc.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@mailinator.com",
		Password: "s3cret-pass",
	})
	assert.NoError(t, err)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.fail = true

	user, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Email:    "ana@gmail.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestVerifyIssuesTokenOnce(t *testing.T) {
	f := newFixture(t)

	resp := f.registerAndVerify(t, "ana@gmail.com", "s3cret-pass")
	assert.True(t, resp.User.Verified)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)

	claims, err := f.jwt.VerifyAccessToken(context.Background(), resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)

	_, err = f.svc.Verify(context.Background(), VerifyRequest{Email: "ana@gmail.com", Code: "000000"})
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyConcurrentConfirmationsSucceedOnce(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Email:    "ana@gmail.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	code := f.mailer.code("ana@gmail.com")

	var ok, already atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, err := f.svc.Verify(context.Background(), VerifyRequest{Email: "ana@gmail.com", Code: code})
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, ErrAlreadyVerified):
				already.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), already.Load())
}

func TestVerifyRejectsWrongOrExpiredCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Email:    "ana@gmail.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	code := f.mailer.code("ana@gmail.com")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = f.svc.Verify(context.Background(), VerifyRequest{Email: "ana@gmail.com", Code: wrong})
	assert.ErrorIs(t, err, ErrInvalidCode)

	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = f.svc.Verify(context.Background(), VerifyRequest{Email: "ana@gmail.com", Code: code})
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Verify(context.Background(), VerifyRequest{Email: "nobody@gmail.com", Code: "123456"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResendReplacesCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Email:    "ana@gmail.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Resend(context.Background(), ResendRequest{Email: "ana@gmail.com"}))

	fresh := f.mailer.code("ana@gmail.com")
	stored, err := f.users.GetByEmail(context.Background(), "ana@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, core.HashCode([]byte(testCodeSecret), fresh), *stored.VerificationCodeHash)

	_, err = f.svc.Verify(context.Background(), VerifyRequest{Email: "ana@gmail.com", Code: fresh})
	require.NoError(t, err)

	err = f.svc.Resend(context.Background(), ResendRequest{Email: "ana@gmail.com"})
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	err = f.svc.Resend(context.Background(), ResendRequest{Email: "ghost@gmail.com"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResendReportsMailFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Email:    "ana@gmail.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	f.mailer.fail = true
	assert.Error(t, f.svc.Resend(context.Background(), ResendRequest{Email: "ana@gmail.com"}))
}

func TestLoginOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{
		Username: "ana",
		Email:    "ana@gmail.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ana@gmail.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ana@gmail.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ghost@gmail.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Verify(ctx, VerifyRequest{Email: "ana@gmail.com", Code: f.mailer.code("ana@gmail.com")})
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, LoginRequest{Email: "ANA@gmail.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.Positive(t, resp.Tokens.ExpiresIn)
}

func TestLoginRehashesStaleHash(t *testing.T) {
	f := newFixture(t)
	f.registerAndVerify(t, "ana@gmail.com", "s3cret-pass")

	old := argonTestHash(t, "s3cret-pass")
	f.users.mu.Lock()
	f.users.byEmail["ana@gmail.com"].PasswordHash = old
	f.users.mu.Unlock()

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "ana@gmail.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.users.rehashN)
	stored, err := f.users.GetByEmail(context.Background(), "ana@gmail.com")
	require.NoError(t, err)
	assert.NotEqual(t, old, stored.PasswordHash)
}
