package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"_id"`
	Name         string    `gorm:"not null"              json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	IsAdmin      bool      `gorm:"not null"              json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Review belongs to exactly one product; (ProductID, UserID) is unique.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                                  json:"_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user" json:"user"`
	Name      string    `gorm:"not null"                                              json:"name"`
	Rating    int       `gorm:"not null"                                              json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Product carries the derived Rating and NumReviews, written only by the
// review append path.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID       uuid.UUID `gorm:"type:uuid;index"      json:"user"`
	Name         string    `gorm:"not null"             json:"name"`
	Image        string    `gorm:"not null"             json:"image"`
	Brand        string    `gorm:"not null"             json:"brand"`
	Category     string    `gorm:"not null"             json:"category"`
	Description  string    `gorm:"not null"             json:"description"`
	Price        float64   `gorm:"not null"             json:"price"`
	CountInStock int       `gorm:"not null"             json:"countInStock"`
	Rating       float64   `gorm:"not null"             json:"rating"`
	NumReviews   int       `gorm:"not null"             json:"numReviews"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
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

// OrderItem is a snapshot of the product at purchase time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"_id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"       json:"product"`
	Name      string    `gorm:"not null"                 json:"name"`
	Image     string    `gorm:"not null"                 json:"image"`
	Price     float64   `gorm:"not null"                 json:"price"`
	Qty       int       `gorm:"not null"                 json:"qty"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"             json:"-"`
	User            *User           `gorm:"foreignKey:UserID"                    json:"user,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"    json:"shippingAddress"`
	PaymentMethod   string          `gorm:"not null"                             json:"paymentMethod"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_"     json:"paymentResult"`
	ItemsPrice      float64         `gorm:"not null"                             json:"itemsPrice"`
	TaxPrice        float64         `gorm:"not null"                             json:"taxPrice"`
	ShippingPrice   float64         `gorm:"not null"                             json:"shippingPrice"`
	TotalPrice      float64         `gorm:"not null"                             json:"totalPrice"`
	IsPaid          bool            `gorm:"not null"                             json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `gorm:"not null"                             json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Product{}, &Review{}, &Order{}, &OrderItem{}}
}
