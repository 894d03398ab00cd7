package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/go-shop-services/internal/model"
)

// Money goes over the wire as a JSON number, not a quoted string.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PageRequest struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=0"`
}

// --- Catalog ---

type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       int              `json:"stock" binding:"min=0"`
	Category    *string          `json:"category"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Category    *string          `json:"category"`
}

type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    *string         `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity" binding:"omitempty,min=1"`
}

type CartItemResponse struct {
	ID           int64            `json:"id"`
	UserID       string           `json:"user_id"`
	ProductID    int64            `json:"product_id"`
	Quantity     int              `json:"quantity"`
	ProductName  *string          `json:"product_name"`
	ProductPrice *decimal.Decimal `json:"product_price"`
	CreatedAt    time.Time        `json:"created_at"`
}

type CartResponse struct {
	UserID string             `json:"user_id"`
	Items  []CartItemResponse `json:"items"`
	Total  decimal.Decimal    `json:"total"`
}

// --- Order ---

type CreateOrderRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" form:"status"`
}

type OrderItemResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	UserID      string              `json:"user_id"`
	Status      model.OrderStatus   `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	PaymentID   *string             `json:"payment_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// --- Payment ---

type CreatePaymentRequest struct {
	OrderID int64            `json:"order_id" binding:"required"`
	Amount  *decimal.Decimal `json:"amount" binding:"required"`
}

type PaymentResponse struct {
	ID        string              `json:"id"`
	OrderID   int64               `json:"order_id"`
	Amount    decimal.Decimal     `json:"amount"`
	Status    model.PaymentStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}
