package apiclient

import "time"

type UserInfo struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token,omitempty"`
}

// UserUpdate sends only the non-nil fields.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}

type Review struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID           string    `json:"_id"`
	User         string    `json:"user"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

type ProductPatch struct {
	Name         *string  `json:"name,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Image        *string  `json:"image,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Category     *string  `json:"category,omitempty"`
	CountInStock *int     `json:"countInStock,omitempty"`
}

type NewReview struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type OrderItem struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type OrderUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID              string          `json:"_id"`
	User            *OrderUser      `json:"user,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentResult   PaymentResult   `json:"paymentResult"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrderLine struct {
	Product string `json:"product"`
	Qty     int    `json:"qty"`
}

type NewOrder struct {
	OrderItems      []OrderLine     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

type Payer struct {
	EmailAddress string `json:"email_address"`
}

type Payment struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      Payer  `json:"payer"`
}

type message struct {
	Message string `json:"message"`
}
