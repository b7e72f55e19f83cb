package transport

import (
	"github.com/google/uuid"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest applies only the fields present in the body.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	IsAdmin *bool   `json:"isAdmin"`
}

type UserResponse struct {
	ID      uuid.UUID `json:"_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	Token   string    `json:"token,omitempty"`
}

func NewUserResponse(u *models.User, token string) *UserResponse {
	return &UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, Token: token}
}

type PatchProductRequest struct {
	Name         *string  `json:"name"`
	Price        *float64 `json:"price"`
	Description  *string  `json:"description"`
	Image        *string  `json:"image"`
	Brand        *string  `json:"brand"`
	Category     *string  `json:"category"`
	CountInStock *int     `json:"countInStock"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

type OrderItemRequest struct {
	Product uuid.UUID `json:"product"`
	Qty     int       `json:"qty"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type PayOrderRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
