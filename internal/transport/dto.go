package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/util"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ProductRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Stock           *int             `json:"stock"`
	CategoryID      *uint            `json:"categoryId"`
	SupplierID      *uint            `json:"supplierId"`
	Rating          *float64         `json:"rating"`
	ReviewCount     *int             `json:"reviewCount"`
	DiscountPercent *int             `json:"discountPercent"`
	ImageURL        *string          `json:"imageUrl"`
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type SupplierRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contactEmail"`
	Phone        *string `json:"phone"`
}

type ShippingOptionRequest struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	EstimatedDays *int             `json:"estimatedDays"`
	Active        *bool            `json:"active"`
}

type AddToCartRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	ShippingOptionID  uint  `json:"shippingOptionId"`
	ShippingAddressID *uint `json:"shippingAddressId"`
	PaymentMethodID   *uint `json:"paymentMethodId"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type AddressRequest struct {
	FullName   *string `json:"fullName"`
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	Phone      *string `json:"phone"`
	IsDefault  bool    `json:"isDefault"`
}

// PaymentMethodRequest never carries a card number or CVV; only the last four
// digits are accepted.
type PaymentMethodRequest struct {
	Type        *string `json:"type"`
	Provider    *string `json:"provider"`
	HolderName  *string `json:"holderName"`
	Last4       *string `json:"last4"`
	ExpiryMonth *int    `json:"expiryMonth"`
	ExpiryYear  *int    `json:"expiryYear"`
	IsDefault   bool    `json:"isDefault"`
}

type WishlistRequest struct {
	ProductID uint `json:"productId"`
}

type Paged[T any] struct {
	Data []T       `json:"data"`
	Meta util.Meta `json:"meta"`
}

func NewPaged[T any](items []T, page util.Page, total int64) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Data: items, Meta: page.Meta(total)}
}
