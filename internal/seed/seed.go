// Package seed loads and wipes demo data.
package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/hash"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

const DefaultPassword = "123456"

type userSeed struct {
	Name    string
	Email   string
	IsAdmin bool
}

var users = []userSeed{
	{Name: "Admin User", Email: "admin@example.com", IsAdmin: true},
	{Name: "John Doe", Email: "john@example.com"},
	{Name: "Jane Doe", Email: "jane@example.com"},
}

var products = []models.Product{
	{
		Name:         "Airpods Wireless Bluetooth Headphones",
		Image:        "/images/airpods.jpg",
		Description:  "Bluetooth technology lets you connect it with compatible devices wirelessly.",
		Brand:        "Apple",
		Category:     "Electronics",
		Price:        89.99,
		CountInStock: 10,
	},
	{
		Name:         "iPhone 11 Pro 256GB Memory",
		Image:        "/images/phone.jpg",
		Description:  "Introducing the iPhone 11 Pro with a triple camera system.",
		Brand:        "Apple",
		Category:     "Electronics",
		Price:        599.99,
		CountInStock: 7,
	},
	{
		Name:         "Cannon EOS 80D DSLR Camera",
		Image:        "/images/camera.jpg",
		Description:  "Characterized by versatile imaging specs.",
		Brand:        "Cannon",
		Category:     "Electronics",
		Price:        929.99,
		CountInStock: 5,
	},
	{
		Name:         "Sony Playstation 4 Pro White Version",
		Image:        "/images/playstation.jpg",
		Description:  "The ultimate home entertainment center.",
		Brand:        "Sony",
		Category:     "Electronics",
		Price:        399.99,
		CountInStock: 11,
	},
	{
		Name:         "Logitech G-Series Gaming Mouse",
		Image:        "/images/mouse.jpg",
		Description:  "Get a better handle on your games with this Logitech gaming mouse.",
		Brand:        "Logitech",
		Category:     "Electronics",
		Price:        49.99,
		CountInStock: 7,
	},
	{
		Name:         "Amazon Echo Dot 3rd Generation",
		Image:        "/images/alexa.jpg",
		Description:  "Meet Echo Dot, our most popular smart speaker with a fabric design.",
		Brand:        "Amazon",
		Category:     "Electronics",
		Price:        29.99,
		CountInStock: 0,
	},
}

// Destroy removes every order, review, product and user.
func Destroy(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.OrderItem{}, &models.Order{}, &models.Review{}, &models.Product{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("destroy %T: %w", m, err)
			}
		}
		return nil
	})
}

// Import replaces all data with the demo users and a catalog owned by the
// first (admin) user.
func Import(ctx context.Context, db *gorm.DB) error {
	if err := Destroy(ctx, db); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(DefaultPassword)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := make([]models.User, 0, len(users))
		for _, u := range users {
			created = append(created, models.User{Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, PasswordHash: pwHash})
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("import users: %w", err)
		}

		admin := created[0].ID
		catalog := make([]models.Product, len(products))
		copy(catalog, products)
		for i := range catalog {
			catalog[i].UserID = admin
		}
		if err := tx.Omit("Reviews").Create(&catalog).Error; err != nil {
			return fmt.Errorf("import products: %w", err)
		}
		return nil
	})
}
