package order

import (
	"time"

	"github.com/wichananm65/grocery-store/internal/cart"
)

const (
	StatusPending   = "Pending"
	StatusDelivered = "Delivered"
)

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FullName string `json:"fullName" validate:"required,alphaspace,min=2"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Address  string `json:"address" validate:"required,min=5"`
	City     string `json:"city" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
}

// Order represents a purchase made by a user.
type Order struct {
	OrderID       string       `json:"orderId" validate:"required"`
	Items         []cart.Item  `json:"items"`
	TotalAmount   float64      `json:"totalAmount"`
	ShippingInfo  ShippingInfo `json:"shippingInfo" validate:"-"`
	PaymentMethod string       `json:"paymentMethod"`
	Status        string       `json:"status" validate:"omitempty,oneof=Pending Delivered"`
	CreatedAt     time.Time    `json:"createdAt"`
	UserID        int64        `json:"userId"`
	User          string       `json:"user"`
}

// Draft is what checkout hands over; the service stamps the rest.
type Draft struct {
	Items         []cart.Item
	TotalAmount   float64
	ShippingInfo  ShippingInfo
	PaymentMethod string
}

// ItemCount is the number of units ordered.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

type exportRow struct {
	OrderID       string `csv:"order_id"`
	CreatedAt     string `csv:"created_at"`
	UserID        int64  `csv:"user_id"`
	User          string `csv:"user"`
	Items         int    `csv:"items"`
	TotalAmount   string `csv:"total_amount"`
	PaymentMethod string `csv:"payment_method"`
	Status        string `csv:"status"`
	City          string `csv:"city"`
}
