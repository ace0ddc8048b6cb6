package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod names the algorithm used to verify or sign access tokens.
type SigningMethod string

const (
	// MethodNone disables signature verification on decode.
	MethodNone SigningMethod = ""
	// MethodEd25519 verifies or signs with EdDSA over Ed25519 keys.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 verifies or signs with an HMAC-SHA256 shared secret.
	MethodHS256 SigningMethod = "hs256"
)

var (
	// ErrMalformed is returned when the token cannot be parsed or verified.
	ErrMalformed = errors.New("malformed access token")
	// ErrExpired is returned when the exp claim lies in the past.
	ErrExpired = errors.New("access token expired")
	// ErrMissingClaims is returned when a required claim is empty.
	ErrMissingClaims = errors.New("access token missing required claims")
)

// Claims is the decoded access-token payload.
type Claims struct {
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Email returns the sub claim, which the backend fills with the account email.
func (c *Claims) Email() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// ExpiresAtTime returns the exp claim, or the zero time when it is absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Config controls how a [Decoder] treats incoming tokens.
type Config struct {
	// SigningMethod enables signature verification when set.
	SigningMethod SigningMethod
	// VerifyKey is the HS256 secret or the Ed25519 public key (raw or PEM).
	VerifyKey []byte
	Issuer    string
	// Leeway is added to exp before a token counts as expired.
	Leeway time.Duration
	// RequireNickname rejects tokens without a nickname claim.
	RequireNickname bool
	// Now overrides the wall clock; nil means time.Now.
	Now func() time.Time
}

// Decoder turns access-token strings into [Claims].
//
// Decoder is immutable after construction and safe for concurrent use.
type Decoder struct {
	config    Config
	verifyKey interface{}
	parser    *jwt.Parser
}

// NewDecoder validates cfg and returns a ready decoder.
func NewDecoder(cfg Config) (*Decoder, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	d := &Decoder{config: cfg}

	switch cfg.SigningMethod {
	case MethodNone:
		d.parser = jwt.NewParser()
		return d, nil
	case MethodHS256:
		if len(cfg.VerifyKey) == 0 {
			return nil, errors.New("hs256 requires verify key")
		}
		d.verifyKey = cfg.VerifyKey
	case MethodEd25519:
		key, err := parseEdPublicKey(cfg.VerifyKey)
		if err != nil {
			return nil, err
		}
		d.verifyKey = key
	default:
		return nil, errors.New("unsupported signing method")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{methodFor(cfg.SigningMethod).Alg()}),
		jwt.WithTimeFunc(cfg.Now),
	}
	if cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}
	d.parser = jwt.NewParser(options...)
	return d, nil
}

// Decode parses tokenStr and enforces expiry.
//
// A missing exp claim is accepted; an exp older than now minus leeway yields
// [ErrExpired]. Parse and signature failures wrap [ErrMalformed].
func (d *Decoder) Decode(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	if d.config.SigningMethod == MethodNone {
		if _, _, err := d.parser.ParseUnverified(tokenStr, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	} else {
		token, err := d.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != methodFor(d.config.SigningMethod).Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
			}
			return d.verifyKey, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrExpired
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if !token.Valid {
			return nil, ErrMalformed
		}
	}

	if d.Expired(claims) {
		return nil, ErrExpired
	}
	if d.config.RequireNickname && strings.TrimSpace(claims.Nickname) == "" {
		return nil, ErrMissingClaims
	}
	return claims, nil
}

// Expired reports whether claims carry an exp claim that has passed.
func (d *Decoder) Expired(claims *Claims) bool {
	exp := claims.ExpiresAtTime()
	if exp.IsZero() {
		return false
	}
	return d.config.Now().After(exp.Add(d.config.Leeway))
}

// PeekExpiry returns the exp claim without verifying or validating the
// token, or the zero time when it cannot be read.
func (d *Decoder) PeekExpiry(tokenStr string) time.Time {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(tokenStr), claims); err != nil {
		return time.Time{}
	}
	return claims.ExpiresAtTime()
}

func methodFor(m SigningMethod) jwt.SigningMethod {
	switch m {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}
