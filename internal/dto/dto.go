package dto

import (
	"github.com/shopspring/decimal"

	"streamaccts/internal/model"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	StockCount  *int     `json:"stockCount"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	IsActive    *bool    `json:"isActive"`
}

type ImageUploadResponse struct {
	URL string `json:"url"`
}

type CreateOrderRequest struct {
	Items         []model.OrderItem `json:"items"`
	TotalAmount   float64           `json:"totalAmount"`
	PaymentMethod string            `json:"paymentMethod"`
	PaymentID     string            `json:"paymentId"`
	UserMessage   string            `json:"userMessage"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AdminResponseRequest struct {
	AdminResponse string `json:"adminResponse"`
}

type UserMessageRequest struct {
	UserMessage string `json:"userMessage"`
}

// FulfillRequest carries the multipart fields of a fulfillment; the
// screenshot arrives as a separate file part.
type FulfillRequest struct {
	Email          string
	Password       string
	AdditionalInfo string
	Notes          string
	AccountTested  bool
	Screenshot     *Upload
}

type Upload struct {
	Filename string
	Data     []byte
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type StripeIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type PaypalOrderResponse struct {
	OrderID    string `json:"orderID"`
	ApproveURL string `json:"approveUrl,omitempty"`
	Demo       bool   `json:"demo,omitempty"`
}

type PaypalCaptureRequest struct {
	OrderID string `json:"orderID"`
}

type PaypalCaptureResponse struct {
	OrderID    string `json:"orderID"`
	Status     string `json:"status"`
	PayerEmail string `json:"payerEmail,omitempty"`
}

type BraintreeTokenResponse struct {
	ClientToken string `json:"clientToken"`
}

type BraintreeCheckoutRequest struct {
	Nonce  string          `json:"nonce"`
	Amount decimal.Decimal `json:"amount"`
}

type BraintreeCheckoutResponse struct {
	TransactionID string `json:"transactionId"`
	PaymentMethod string `json:"paymentMethod"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type VerifiedUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

type SetClaimsRequest struct {
	UID    string                 `json:"uid"`
	Claims map[string]interface{} `json:"claims"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

type Stats struct {
	OrdersByStatus map[model.OrderStatus]int64 `json:"ordersByStatus"`
	TotalOrders    int64                       `json:"totalOrders"`
	Revenue        float64                     `json:"revenue"`
	Products       int64                       `json:"products"`
	ActiveProducts int64                       `json:"activeProducts"`
	LowStock       []*model.Product            `json:"lowStock"`
}
