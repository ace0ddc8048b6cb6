package jwt

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignerConfig configures token minting for backends and test tooling.
type SignerConfig struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	Issuer        string
	TTL           time.Duration
	KeyID         string
	Now           func() time.Time
}

// Signer mints access tokens with the claim set the session layer decodes.
type Signer struct {
	config  SignerConfig
	signKey interface{}
}

// NewSigner validates cfg and returns a signer.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)

	s := &Signer{config: cfg}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
		s.signKey = cfg.PrivateKey
	case MethodEd25519:
		key, err := parseEdPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		s.signKey = key
	default:
		return nil, errors.New("unsupported signing method")
	}
	return s, nil
}

// Sign mints a token that expires after the configured TTL.
func (s *Signer) Sign(subject, nickname, role string) (string, error) {
	return s.SignWithExpiry(subject, nickname, role, s.config.Now().Add(s.config.TTL))
}

// SignWithExpiry mints a token with an explicit exp claim. Past expiry times
// are allowed so callers can produce already-expired tokens.
func (s *Signer) SignWithExpiry(subject, nickname, role string, expiresAt time.Time) (string, error) {
	now := s.config.Now()
	claims := Claims{
		Nickname: nickname,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(methodFor(s.config.SigningMethod), claims)
	if s.config.KeyID != "" {
		token.Header["kid"] = s.config.KeyID
	}
	return token.SignedString(s.signKey)
}

// Method returns the configured signing method.
func (s *Signer) Method() SigningMethod {
	return s.config.SigningMethod
}

// PublicKey returns the verification key matching the signing key, suitable
// for [Config.VerifyKey].
func (s *Signer) PublicKey() []byte {
	switch key := s.signKey.(type) {
	case ed25519.PrivateKey:
		return key.Public().(ed25519.PublicKey)
	case []byte:
		return key
	default:
		return nil
	}
}
