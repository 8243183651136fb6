package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every status an admin may set, in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusFulfilled,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodStripe || m == PaymentMethodPaypal
}

type Order struct {
	ID                string             `json:"id" gorm:"primaryKey;size:64;not null" firestore:"-"`
	UserID            string             `json:"userId" gorm:"size:128;index;not null" firestore:"userId"`
	UserEmail         string             `json:"userEmail" gorm:"size:255" firestore:"userEmail"`
	Items             []OrderItem        `json:"items" gorm:"serializer:json;type:text" firestore:"items"`
	TotalAmount       float64            `json:"totalAmount" gorm:"not null" firestore:"totalAmount"`
	Status            OrderStatus        `json:"status" gorm:"size:32;index;not null" firestore:"status"`
	PaymentMethod     PaymentMethod      `json:"paymentMethod" gorm:"size:16;not null" firestore:"paymentMethod"`
	PaymentID         string             `json:"paymentId,omitempty" gorm:"size:255" firestore:"paymentId,omitempty"`
	UserMessage       string             `json:"userMessage,omitempty" gorm:"type:text" firestore:"userMessage,omitempty"`
	AdminResponse     string             `json:"adminResponse,omitempty" gorm:"type:text" firestore:"adminResponse,omitempty"`
	Fulfillment       *OrderFulfillment  `json:"fulfillment,omitempty" gorm:"serializer:json;type:text" firestore:"fulfillment,omitempty"`
	DeliveredAccounts []DeliveredAccount `json:"deliveredAccounts,omitempty" gorm:"serializer:json;type:text" firestore:"deliveredAccounts,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" gorm:"index" firestore:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" firestore:"updatedAt"`
}

type OrderItem struct {
	ProductID   string  `json:"productId" firestore:"productId"`
	ProductName string  `json:"productName" firestore:"productName"`
	Quantity    int     `json:"quantity" firestore:"quantity"`
	UnitPrice   float64 `json:"unitPrice" firestore:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice" firestore:"totalPrice"`
}

// ItemsTotal sums the line totals as sent by the client.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(decimal.NewFromFloat(item.TotalPrice))
	}
	return sum
}

// TotalMismatch reports whether totalAmount disagrees with the item lines.
// The mismatch is tolerated on write, callers only log it.
func (o *Order) TotalMismatch() bool {
	return !o.ItemsTotal().Round(2).Equal(decimal.NewFromFloat(o.TotalAmount).Round(2))
}

// StockDecrements lists the stock to take off per product, one entry per
// distinct product.
func (o *Order) StockDecrements() []StockDecrement {
	decrements := make([]StockDecrement, 0, len(o.Items))
	for _, item := range o.Items {
		decrements = append(decrements, StockDecrement{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return MergeDecrements(decrements)
}

type AccountCredentials struct {
	Email          string `json:"email" firestore:"email"`
	Password       string `json:"password" firestore:"password"`
	AdditionalInfo string `json:"additionalInfo,omitempty" firestore:"additionalInfo,omitempty"`
}

type OrderFulfillment struct {
	AccountDetails AccountCredentials `json:"accountDetails" firestore:"accountDetails"`
	ScreenshotURL  string             `json:"screenshotUrl" firestore:"screenshotUrl"`
	AccountTested  bool               `json:"accountTested" firestore:"accountTested"`
	FulfilledBy    string             `json:"fulfilledBy" firestore:"fulfilledBy"`
	FulfilledAt    time.Time          `json:"fulfilledAt" firestore:"fulfilledAt"`
	Notes          string             `json:"notes,omitempty" firestore:"notes,omitempty"`
}

type DeliveredAccount struct {
	ProductID   string             `json:"productId" firestore:"productId"`
	Credentials AccountCredentials `json:"credentials" firestore:"credentials"`
	DeliveredAt time.Time          `json:"deliveredAt" firestore:"deliveredAt"`
}
