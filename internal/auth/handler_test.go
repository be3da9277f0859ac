// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, passthrough, passthrough)
	return r
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestRegisterEndpoint(t *testing.T) {
	f := newFixture(t, "gmail.com")
	h := newRouter(f)

	rec, body := post(t, h, "/auth/register",
		`{"username":"ana","email":"ana@gmail.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["user"].(map[string]any)["verified"])

	rec, body = post(t, h, "/auth/register",
		`{"username":"ana","email":"ana@gmail.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DUPLICATE", body["code"])

	rec, body = post(t, h, "/auth/register",
		`{"username":"bob","email":"bob@corp.test","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email domain is not allowed", body["message"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	h := newRouter(newFixture(t))

	rec, body := post(t, h, "/auth/register", `{"email":"nope","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Contains(t, body["message"], "username is required")

	rec, body = post(t, h, "/auth/register", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", body["message"])
}

func TestVerifyAndLoginEndpoints(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	post(t, h, "/auth/register", `{"username":"ana","email":"ana@gmail.com","password":"s3cret-pass"}`)

	rec, body := post(t, h, "/auth/login", `{"email":"ana@gmail.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_VERIFIED", body["code"])

	code := f.mailer.code("ana@gmail.com")
	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	rec, body = post(t, h, "/auth/verify", `{"email":"ana@gmail.com","code":"`+wrong+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CODE", body["code"])

	rec, _ = post(t, h, "/auth/verify", `{"email":"ana@gmail.com","code":"`+code+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = post(t, h, "/auth/verify", `{"email":"ana@gmail.com","code":"`+code+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_VERIFIED", body["code"])

	rec, body = post(t, h, "/auth/login", `{"email":"ana@gmail.com","password":"bad-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := body["message"]

	rec, body = post(t, h, "/auth/login", `{"email":"ghost@gmail.com","password":"bad-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPassword, body["message"])
	assert.Equal(t, "invalid email or password", body["message"])

	rec, body = post(t, h, "/auth/login", `{"email":"ana@gmail.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	tokens := body["data"].(map[string]any)["tokens"].(map[string]any)
	assert.NotEmpty(t, tokens["access_token"])
}

func TestResendEndpoint(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec, body := post(t, h, "/auth/resend", `{"email":"ghost@gmail.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", body["message"])

	post(t, h, "/auth/register", `{"username":"ana","email":"ana@gmail.com","password":"s3cret-pass"}`)
	rec, _ = post(t, h, "/auth/resend", `{"email":"ana@gmail.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
