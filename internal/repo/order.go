package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

func withOrderRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderItems").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		})
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("User").Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := withOrderRefs(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	if err := withOrderRefs(r.DB.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := withOrderRefs(r.DB.WithContext(ctx)).Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid flips is_paid with a single conditional UPDATE, so paidAt and the
// payment result are written once and never race with MarkDelivered.
func (r *GormRepo) MarkPaid(ctx context.Context, id uuid.UUID, result models.PaymentResult, at time.Time) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]any{
			"is_paid":               true,
			"paid_at":               at,
			"payment_id":            result.ID,
			"payment_status":        result.Status,
			"payment_update_time":   result.UpdateTime,
			"payment_email_address": result.EmailAddress,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetOrder(ctx, id)
}

func (r *GormRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_delivered = ?", id, false).
		Updates(map[string]any{
			"is_delivered": true,
			"delivered_at": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetOrder(ctx, id)
}
