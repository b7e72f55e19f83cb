package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/events"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/repo"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/transport"
	"github.com/zapper13/Major-Mern-Stack-Project/pkg/pricing"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Clock  func() time.Time
}

// CreateOrder snapshots each product's current name, image and price and
// prices the order server side.
func (s *OrderService) CreateOrder(ctx context.Context, buyer *models.User, req transport.CreateOrderRequest) (*models.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, fmt.Errorf("%w: no order items", ErrValidation)
	}

	ids := make([]uuid.UUID, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		if it.Product == uuid.Nil {
			return nil, fmt.Errorf("%w: product is required", ErrValidation)
		}
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: qty must be > 0", ErrValidation)
		}
		ids = append(ids, it.Product)
	}

	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	lines := make([]pricing.Line, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		p, ok := byID[it.Product]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, it.Product)
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     p.Price,
			Qty:       it.Qty,
		})
		lines = append(lines, pricing.Line{Price: p.Price, Qty: it.Qty})
	}

	b := pricing.Compute(lines)
	order := &models.Order{
		UserID:          buyer.ID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      b.ItemsPrice,
		TaxPrice:        b.TaxPrice,
		ShippingPrice:   b.ShippingPrice,
		TotalPrice:      b.TotalPrice,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	order.User = &models.User{ID: buyer.ID, Name: buyer.Name, Email: buyer.Email}

	publish(ctx, s.Events, events.TopicOrders, "order_created", order.ID.String(), map[string]any{
		"user_id":    buyer.ID.String(),
		"totalPrice": order.TotalPrice,
		"items":      len(order.OrderItems),
	})
	return order, nil
}

// GetOrder hides orders of other users from non-admins.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, viewer *models.User) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}
	if !viewer.IsAdmin && order.UserID != viewer.ID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) PayOrder(ctx context.Context, id uuid.UUID, payer *models.User, req transport.PayOrderRequest) (*models.Order, error) {
	if _, err := s.GetOrder(ctx, id, payer); err != nil {
		return nil, err
	}

	order, err := s.Repo.MarkPaid(ctx, id, models.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.Payer.EmailAddress,
	}, now(s.Clock))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, "order_paid", id.String(), map[string]any{
		"payment_id": order.PaymentResult.ID,
		"status":     order.PaymentResult.Status,
	})
	return order, nil
}

func (s *OrderService) DeliverOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.MarkDelivered(ctx, id, now(s.Clock))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, "order_delivered", id.String(), nil)
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}
