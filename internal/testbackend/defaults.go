package testbackend

import (
	"crypto/ed25519"
	"crypto/rand"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// Fixture accounts seeded by [NewDefault].
var (
	UserAccount = Account{
		ID:          1,
		Email:       "a@b.com",
		Password:    "password1!",
		Nickname:    "foo",
		Role:        "ROLE_USER",
		PhoneNumber: "010-1234-5678",
	}
	AdminAccount = Account{
		ID:          2,
		Email:       "admin@b.com",
		Password:    "admin-password1!",
		Nickname:    "admin",
		Role:        "ROLE_ADMIN",
		PhoneNumber: "010-0000-0000",
	}
)

// NewDefault returns a backend seeded with [UserAccount], [AdminAccount] and
// order 1001 owned by the user, signing with a fresh Ed25519 key.
func NewDefault() (*Server, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	signer, err := jwt.NewSigner(jwt.SignerConfig{
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		Issuer:        "auction-api",
		TTL:           15 * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	s, err := New(signer, UserAccount, AdminAccount)
	if err != nil {
		return nil, err
	}
	s.AddOrder(Order{ID: 1001, ProductName: "vintage camera", Amount: 120000, Status: "PENDING", BuyerEmail: UserAccount.Email})
	return s, nil
}

// Signer returns the token signer.
func (s *Server) Signer() *jwt.Signer {
	return s.signer
}
