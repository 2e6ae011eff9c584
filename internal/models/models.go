package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"      json:"username"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:user"     json:"role"`
	CreatedAt    time.Time `                                 json:"createdAt"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	JTI       string `gorm:"uniqueIndex;not null" json:"jti"`
	UserID    uint   `gorm:"index;not null"      json:"userId"`
	TokenHash string `gorm:"not null"            json:"-"`
	ExpiresAt int64  `gorm:"not null"            json:"expiresAt"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;not null"     json:"name"`
	Description string `                                json:"description"`
}

type Supplier struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	ContactEmail string `                                json:"contactEmail"`
	Phone        string `                                json:"phone"`
}

type Product struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name            string          `gorm:"not null"                      json:"name"`
	Description     string          `gorm:"not null;default:''"           json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"`
	Stock           int             `gorm:"not null;default:0"            json:"stock"`
	CategoryID      *uint           `gorm:"index"                         json:"categoryId"`
	SupplierID      *uint           `gorm:"index"                         json:"supplierId"`
	Rating          float64         `gorm:"not null;default:0"            json:"rating"`
	ReviewCount     int             `gorm:"not null;default:0"            json:"reviewCount"`
	DiscountPercent int             `gorm:"not null;default:0"            json:"discountPercent"`
	ImageURL        string          `                                     json:"imageUrl"`
	CreatedAt       time.Time       `                                     json:"createdAt"`
	UpdatedAt       time.Time       `                                     json:"updatedAt"`
}

type ShippingOption struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name          string          `gorm:"not null"                    json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	EstimatedDays int             `gorm:"not null;default:0"          json:"estimatedDays"`
	Active        bool            `gorm:"not null"                    json:"active"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey"                                  json:"id"`
	UserID    uint     `gorm:"uniqueIndex:idx_cart_user_product;not null"  json:"userId"`
	ProductID uint     `gorm:"uniqueIndex:idx_cart_user_product;not null"  json:"productId"`
	Quantity  int      `gorm:"not null;default:1;check:quantity>0"         json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"                        json:"product,omitempty"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"userId"`
	ProductID uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"productId"`
	CreatedAt time.Time `                                                      json:"createdAt"`
	Product   *Product  `gorm:"foreignKey:ProductID"                           json:"product,omitempty"`
}

type Address struct {
	ID         uint   `gorm:"primaryKey"     json:"id"`
	UserID     uint   `gorm:"index;not null" json:"userId"`
	FullName   string `gorm:"not null"       json:"fullName"`
	Line1      string `gorm:"not null"       json:"line1"`
	Line2      string `                      json:"line2"`
	City       string `gorm:"not null"       json:"city"`
	State      string `                      json:"state"`
	PostalCode string `gorm:"not null"       json:"postalCode"`
	Country    string `gorm:"not null"       json:"country"`
	Phone      string `                      json:"phone"`
	IsDefault  bool   `gorm:"not null;default:false" json:"isDefault"`
}

type PaymentMethod struct {
	ID          uint   `gorm:"primaryKey"             json:"id"`
	UserID      uint   `gorm:"index;not null"         json:"userId"`
	Type        string `gorm:"not null"               json:"type"`
	Provider    string `                              json:"provider"`
	HolderName  string `                              json:"holderName"`
	Last4       string `gorm:"size:4"                 json:"last4"`
	ExpiryMonth int    `                              json:"expiryMonth"`
	ExpiryYear  int    `                              json:"expiryYear"`
	IsDefault   bool   `gorm:"not null;default:false" json:"isDefault"`
}

type Order struct {
	ID                uint            `gorm:"primaryKey"                  json:"id"`
	OrderNumber       string          `gorm:"uniqueIndex;not null"        json:"orderNumber"`
	UserID            uint            `gorm:"index;not null"              json:"userId"`
	ShippingOptionID  uint            `gorm:"not null"                    json:"shippingOptionId"`
	ShippingAddressID *uint           `                                   json:"shippingAddressId"`
	PaymentMethodID   *uint           `                                   json:"paymentMethodId"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"taxAmount"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingCost"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	Status            OrderStatus     `gorm:"type:varchar(16);not null"   json:"status"`
	CreatedAt         time.Time       `                                   json:"createdAt"`
	UpdatedAt         time.Time       `                                   json:"updatedAt"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID"          json:"items"`
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                  json:"id"`
	OrderID     uint            `gorm:"index;not null"              json:"orderId"`
	ProductID   uint            `gorm:"not null"                    json:"productId"`
	ProductName string          `gorm:"not null"                    json:"productName"`
	Quantity    int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Category{},
		&Supplier{},
		&Product{},
		&ShippingOption{},
		&CartItem{},
		&WishlistItem{},
		&Address{},
		&PaymentMethod{},
		&Order{},
		&OrderItem{},
	}
}

// PerUser lists the models owned by a user, children before parents.
func PerUser() []any {
	return []any{
		&CartItem{},
		&WishlistItem{},
		&Address{},
		&PaymentMethod{},
		&RefreshToken{},
	}
}
