package market

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goSession/api"
)

// Order is the order detail shown on the checkout page.
type Order struct {
	ID           int64         `json:"id"`
	ProductName  string        `json:"productName"`
	Amount       int64         `json:"amount"`
	Status       string        `json:"status"`
	BuyerEmail   string        `json:"buyerEmail"`
	ShippingInfo *ShippingInfo `json:"shippingInfo,omitempty"`
}

// ShippingInfo is the delivery address for an order.
type ShippingInfo struct {
	Name          string `json:"name" validate:"required"`
	PhoneNumber   string `json:"phoneNumber" validate:"required"`
	ZipCode       string `json:"zipCode" validate:"required"`
	Address       string `json:"address" validate:"required"`
	DetailAddress string `json:"detailAddress,omitempty"`
}

type Orders struct {
	c *api.Client
}

func (o *Orders) Get(ctx context.Context, id int64) (Order, error) {
	return api.Get[Order](ctx, o.c, fmt.Sprintf("/api/orders/%d", id))
}

// UpdateShippingInfo sets the delivery address and returns the updated order.
func (o *Orders) UpdateShippingInfo(ctx context.Context, id int64, info ShippingInfo) (Order, error) {
	if err := validateStruct(info); err != nil {
		return Order{}, err
	}
	return api.Patch[Order](ctx, o.c, fmt.Sprintf("/api/orders/%d/shipping-info", id), info)
}
