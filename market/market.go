package market

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/goSession/api"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingPaymentParams is returned when paymentKey, orderID or amount is missing.
	ErrMissingPaymentParams = errors.New("paymentKey, orderId and amount are required")
	// ErrMissingResetParams is returned when the reset token or password is empty.
	ErrMissingResetParams = errors.New("reset token and password are required")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

// Client groups the marketplace services.
type Client struct {
	Users     *Users
	Orders    *Orders
	Payments  *Payments
	Products  *Products
	Passwords *Passwords
}

// New returns services that issue their requests through c.
func New(c *api.Client) *Client {
	return &Client{
		Users:     &Users{c: c},
		Orders:    &Orders{c: c},
		Payments:  &Payments{c: c},
		Products:  &Products{c: c},
		Passwords: &Passwords{c: c},
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validateStruct(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
