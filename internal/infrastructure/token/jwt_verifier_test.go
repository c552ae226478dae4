package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-valid-ingest-token-secret-32-chars-long"

func signHS256(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "librarian-svc",
		Issuer:    "https://issuer.example.com",
		Audience:  jwt.ClaimStrings{"memory-library-ingest"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func newHMACVerifier(t *testing.T, issuers ...string) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier(VerifierConfig{HMACSecret: []byte(testSecret), Issuers: issuers})
	require.NoError(t, err)
	return v
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := newHMACVerifier(t, "https://issuer.example.com")

	identity, err := v.Verify(context.Background(), signHS256(t, validClaims()), "memory-library-ingest")

	require.NoError(t, err)
	assert.Equal(t, "librarian-svc", identity.Subject)
	assert.Equal(t, "https://issuer.example.com", identity.Issuer)
	assert.Contains(t, identity.Audience, "memory-library-ingest")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), identity.ExpiresAt, 2*time.Second)
}

func TestJWTVerifier_Rejections(t *testing.T) {
	v := newHMACVerifier(t, "https://issuer.example.com")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"someone-else"}

	wrongIss := validClaims()
	wrongIss.Issuer = "https://evil.example.com"

	noSub := validClaims()
	noSub.Subject = ""

	noExp := validClaims()
	noExp.ExpiresAt = nil

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("another-secret-that-is-long-enough-000"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: signHS256(t, expired)},
		{name: "wrong audience", token: signHS256(t, wrongAud)},
		{name: "untrusted issuer", token: signHS256(t, wrongIss)},
		{name: "missing subject", token: signHS256(t, noSub)},
		{name: "missing expiry", token: signHS256(t, noExp)},
		{name: "bad signature", token: otherKey},
		{name: "malformed", token: "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := v.Verify(context.Background(), tt.token, "memory-library-ingest")
			assert.Error(t, err)
			assert.Nil(t, identity)
		})
	}
}

func TestJWTVerifier_AnyIssuerWhenUnset(t *testing.T) {
	v := newHMACVerifier(t)
	claims := validClaims()
	claims.Issuer = "whoever"

	identity, err := v.Verify(context.Background(), signHS256(t, claims), "memory-library-ingest")

	require.NoError(t, err)
	assert.Equal(t, "whoever", identity.Issuer)
}

func TestJWTVerifier_RejectsUnsignedToken(t *testing.T) {
	v := newHMACVerifier(t)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), unsigned, "memory-library-ingest")
	assert.Error(t, err)
}

func TestJWTVerifier_RSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	pub, err := ParseRSAPublicKey(pemStr)
	require.NoError(t, err)

	v, err := NewJWTVerifier(VerifierConfig{RSAPublicKey: pub})
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(key)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), signed, "memory-library-ingest")
	require.NoError(t, err)
	assert.Equal(t, "librarian-svc", identity.Subject)

	// An HMAC token is refused when only an RSA key is configured.
	_, err = v.Verify(context.Background(), signHS256(t, validClaims()), "memory-library-ingest")
	assert.Error(t, err)
}

func TestJWTVerifier_CancelledContext(t *testing.T) {
	v := newHMACVerifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Verify(ctx, signHS256(t, validClaims()), "memory-library-ingest")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewJWTVerifier_RequiresKey(t *testing.T) {
	_, err := NewJWTVerifier(VerifierConfig{})
	assert.ErrorIs(t, err, errNoVerificationKey)
}

func TestParseRSAPublicKey_Invalid(t *testing.T) {
	_, err := ParseRSAPublicKey("-----BEGIN PUBLIC KEY-----\nnope\n-----END PUBLIC KEY-----")
	assert.Error(t, err)
}
