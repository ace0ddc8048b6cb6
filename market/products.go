package market

import (
	"context"
	"strconv"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
)

// Option is one entry of a fixed catalog, with its display label.
type Option struct {
	Label string
	Value string
}

// Product categories.
const (
	CategoryElectronics = "ELECTRONICS"
	CategoryFashion     = "FASHION"
	CategoryGoods       = "GOODS"
	CategoryBooks       = "BOOKS"
	CategoryHome        = "HOME"
	CategorySports      = "SPORTS"
	CategoryEtc         = "ETC"
)

// Item conditions.
const (
	StatusGood    = "GOOD"
	StatusAverage = "AVERAGE"
	StatusBad     = "BAD"
)

// Auction states.
const (
	BidNotBidded = "NOT_BIDDED"
	BidBidded    = "BIDDED"
	BidCompleted = "COMPLETED"
)

var categories = []Option{
	{Label: "Electronics", Value: CategoryElectronics},
	{Label: "Fashion", Value: CategoryFashion},
	{Label: "Collectibles", Value: CategoryGoods},
	{Label: "Books", Value: CategoryBooks},
	{Label: "Home/Garden", Value: CategoryHome},
	{Label: "Sports", Value: CategorySports},
	{Label: "Other", Value: CategoryEtc},
}

var productStatuses = []Option{
	{Label: "Good", Value: StatusGood},
	{Label: "Average", Value: StatusAverage},
	{Label: "Bad", Value: StatusBad},
}

var bidStatuses = []Option{
	{Label: "No bids", Value: BidNotBidded},
	{Label: "Bidding", Value: BidBidded},
	{Label: "Closed", Value: BidCompleted},
}

// Categories returns the product category catalog in display order.
func Categories() []Option { return append([]Option(nil), categories...) }

// ProductStatuses returns the item condition catalog.
func ProductStatuses() []Option { return append([]Option(nil), productStatuses...) }

// BidStatuses returns the auction state catalog.
func BidStatuses() []Option { return append([]Option(nil), bidStatuses...) }

// Product is a listed item.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	StartPrice    int64           `json:"startPrice"`
	BidPrice      int64           `json:"bidPrice"`
	ProductStatus string          `json:"productStatus"`
	ImageURL      string          `json:"imageUrl"`
	User          *goSession.User `json:"user,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	ModifiedAt    string          `json:"modifiedAt,omitempty"`
}

// CreateProductRequest lists a new item.
type CreateProductRequest struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Category      string `json:"category" validate:"required,oneof=ELECTRONICS FASHION GOODS BOOKS HOME SPORTS ETC"`
	StartPrice    int64  `json:"startPrice" validate:"gt=0"`
	ProductStatus string `json:"productStatus" validate:"required,oneof=GOOD AVERAGE BAD"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,url"`
}

// ProductPage is one page of the listing.
type ProductPage struct {
	Content          []Product `json:"content"`
	TotalElements    int       `json:"totalElements"`
	TotalPages       int       `json:"totalPages"`
	Number           int       `json:"number"`
	Size             int       `json:"size"`
	NumberOfElements int       `json:"numberOfElements"`
	First            bool      `json:"first"`
	Last             bool      `json:"last"`
	Empty            bool      `json:"empty"`
}

type Products struct {
	c *api.Client
}

// Create lists req and returns the new product id.
func (p *Products) Create(ctx context.Context, req CreateProductRequest) (int64, error) {
	if err := validateStruct(req); err != nil {
		return 0, err
	}
	resp, err := api.Post[struct {
		ProductID int64 `json:"productId"`
	}](ctx, p.c, "/api/products", req)
	if err != nil {
		return 0, err
	}
	return resp.ProductID, nil
}

// List returns page (zero-based) of size items.
func (p *Products) List(ctx context.Context, page, size int) (ProductPage, error) {
	return api.Get[ProductPage](ctx, p.c, "/api/products",
		api.WithQuery("page", strconv.Itoa(page)),
		api.WithQuery("size", strconv.Itoa(size)))
}
