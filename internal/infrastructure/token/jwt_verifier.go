package token

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

var (
	errNoVerificationKey = errors.New("no verification key configured")
	errInvalidToken      = errors.New("invalid token")
	errInvalidIssuer     = errors.New("untrusted issuer")
	errMissingSubject    = errors.New("token has no subject")
)

// VerifierConfig holds the keys and trust settings for JWTVerifier.
type VerifierConfig struct {
	// HMACSecret verifies HS256/HS384/HS512 tokens when set.
	HMACSecret []byte
	// RSAPublicKey verifies RS256/RS384/RS512 tokens when set.
	RSAPublicKey *rsa.PublicKey
	// Issuers lists trusted "iss" values. Empty accepts any issuer.
	Issuers []string
	Leeway  time.Duration
}

// JWTVerifier validates bearer tokens locally with golang-jwt.
type JWTVerifier struct {
	cfg     VerifierConfig
	methods []string
}

// NewJWTVerifier builds a verifier. At least one key must be configured.
func NewJWTVerifier(cfg VerifierConfig) (*JWTVerifier, error) {
	var methods []string
	if len(cfg.HMACSecret) > 0 {
		methods = append(methods, "HS256", "HS384", "HS512")
	}
	if cfg.RSAPublicKey != nil {
		methods = append(methods, "RS256", "RS384", "RS512")
	}
	if len(methods) == 0 {
		return nil, errNoVerificationKey
	}
	return &JWTVerifier{cfg: cfg, methods: methods}, nil
}

// ParseRSAPublicKey decodes a PEM encoded RSA public key.
func ParseRSAPublicKey(pem string) (*rsa.PublicKey, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}
	return key, nil
}

// Verify checks signature, expiry, audience and issuer and returns the caller identity.
func (v *JWTVerifier) Verify(ctx context.Context, tokenStr, audience string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, errInvalidToken
	}

	if len(v.cfg.Issuers) > 0 && !slices.Contains(v.cfg.Issuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: %q", errInvalidIssuer, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, errMissingSubject
	}

	identity := &domain.Identity{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func (v *JWTVerifier) keyFunc(t *jwt.Token) (any, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.cfg.HMACSecret) == 0 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.cfg.HMACSecret, nil
	case *jwt.SigningMethodRSA:
		if v.cfg.RSAPublicKey == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.cfg.RSAPublicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
}
