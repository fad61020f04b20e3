package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

const (
	OrderProcessing = "Processing"
	OrderConfirmed  = "Confirmed"
	OrderShipped    = "Shipped"
	OrderDelivered  = "Delivered"
	OrderCancelled  = "Cancelled"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"not null"                 json:"name"`
	Model         string  `json:"model"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	Price         float64 `gorm:"not null"                 json:"price"`
	DiscountPrice float64 `json:"discountPrice"`
	Category      string  `gorm:"index"                    json:"category"`
	InStock       bool    `json:"inStock"`
	Rating        float64 `gorm:"default:4.5"              json:"rating"`
	Reviews       uint    `gorm:"default:0"                json:"reviews"`
}

// EffectivePrice is what a buyer actually pays: the discount price when one
// is set, the list price otherwise.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.Price
}

// CartItem is one line of a user's cart. The (user_id, product_id) pair is
// unique so a repeated add merges into the existing line.
type CartItem struct {
	ID        uint `gorm:"primaryKey"                                 json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  uint `gorm:"not null;default:1"                         json:"quantity"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Phone   string `json:"phone"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey"                    json:"id"`
	Number          string          `gorm:"uniqueIndex;not null"          json:"number"`
	UserID          uint            `gorm:"index;not null"                json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"            json:"items"`
	TotalAmount     float64         `gorm:"not null"                      json:"totalAmount"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `gorm:"not null;default:Pending"      json:"paymentStatus"`
	OrderStatus     string          `gorm:"not null;default:Processing"   json:"orderStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem keeps the unit price snapshotted at order time so later catalog
// price changes never rewrite order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Quantity  uint    `gorm:"not null"       json:"quantity"`
	UnitPrice float64 `gorm:"not null"       json:"price"`
	LineTotal float64 `gorm:"not null"       json:"line_total"`
}
