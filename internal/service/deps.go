package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/events"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

// TopCache is implemented by cache.TopProducts.
type TopCache interface {
	Get(ctx context.Context) ([]models.Product, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, items []models.Product, gen int64) (bool, error)
	Invalidate(ctx context.Context) error
}

// ProductIndex is implemented by search.Index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, from, size int) (int64, []uuid.UUID, error)
}

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, pub events.Publisher, topic, typ, id string, data map[string]any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, id, events.NewEvent(typ, id, data)); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", typ, "error", err)
	}
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
