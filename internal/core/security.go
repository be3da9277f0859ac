// AngelaMos | 2026
// security.go

package core

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

const saltLength = 16

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

func (p argonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// HashPassword returns an argon2id PHC string.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return currentParams.encode(salt, currentParams.key(password, salt)), nil
}

// CheckPassword compares password against an encoded hash. stale reports
// that the hash was produced with different parameters and should be
// replaced after a successful login.
func CheckPassword(password, encodedHash string) (ok, stale bool, err error) {
	params, salt, want, err := parsePHC(encodedHash)
	if err != nil {
		return false, false, err
	}

	got := params.key(password, salt)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return false, false, nil
	}

	return true, params != currentParams, nil
}

var dummyHash string

func init() {
	hash, err := HashPassword("storefront-timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = hash
}

// BurnPasswordCheck spends the same time as a real verification. Login
// calls it for unknown emails so response timing does not reveal which
// addresses are registered.
func BurnPasswordCheck(password string) {
	//nolint:errcheck // result is irrelevant
	_, _, _ = CheckPassword(password, dummyHash)
}

func parsePHC(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("invalid hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&p.memory,
		&p.time,
		&p.threads,
	); err != nil {
		return p, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: key length is always small
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

// GenerateNumericCode returns a uniformly random decimal code with exactly
// the given number of digits, leading zeros included.
func GenerateNumericCode(digits int) (string, error) {
	var b strings.Builder
	b.Grow(digits)

	ten := big.NewInt(10)
	for range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate code digit: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// HashCode keys a short one-time code with secret. A plain digest of a
// six digit code is reversible by enumeration; without the secret it is not.
func HashCode(secret []byte, code string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

func CompareCodeHash(secret []byte, code, hash string) bool {
	return hmac.Equal([]byte(HashCode(secret, code)), []byte(hash))
}
