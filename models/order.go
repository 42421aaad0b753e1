package models

import "time"

type OrderStatus string

const (
	OrderStatusDiproses   OrderStatus = "diproses"
	OrderStatusSelesai    OrderStatus = "selesai"
	OrderStatusDibatalkan OrderStatus = "dibatalkan"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDiproses, OrderStatusSelesai, OrderStatusDibatalkan:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusMenunggu   PaymentStatus = "menunggu pembayaran"
	PaymentStatusDilakukan  PaymentStatus = "pembayaran sudah dilakukan"
	PaymentStatusDibatalkan PaymentStatus = "pembayaran dibatalkan"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusMenunggu, PaymentStatusDilakukan, PaymentStatusDibatalkan:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url"`
}

type Order struct {
	ID                    int           `json:"id"`
	UserID                int           `json:"user_id"`
	OrderStatus           OrderStatus   `json:"order_status"`
	PaymentStatus         PaymentStatus `json:"payment_status"`
	PaymentMethod         string        `json:"payment_method"`
	TotalAmount           int64         `json:"total_amount"`
	Items                 []OrderItem   `json:"items"`
	AdminComment          string        `json:"admin_comment"`
	PaymentProofURL       string        `json:"payment_proof_url"`
	DesiredCompletionDate string        `json:"desired_completion_date"`
	DeliveryAddress       string        `json:"delivery_address"`
	PhoneNumber           string        `json:"phone_number"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// AdminOrderUpdateRequest is the combined status/payment/comment update an
// admin submits as a single call.
type AdminOrderUpdateRequest struct {
	OrderStatus   OrderStatus   `json:"order_status" binding:"required"`
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required"`
	AdminComment  string        `json:"admin_comment"`
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
