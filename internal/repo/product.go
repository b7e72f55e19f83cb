package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func withReviews(db *gorm.DB) *gorm.DB {
	return db.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := withReviews(r.DB.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts filters by a case-insensitive substring of the name.
func (r *GormRepo) ListProducts(ctx context.Context, keyword string, offset, limit int) (int64, []models.Product, error) {
	byName := func(db *gorm.DB) *gorm.DB {
		if keyword = strings.TrimSpace(keyword); keyword == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
		return db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(byName).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).Scopes(byName).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) TopProducts(ctx context.Context, n int) ([]models.Product, error) {
	items := make([]models.Product, 0, n)
	if err := r.DB.WithContext(ctx).
		Order("rating DESC").Order("created_at ASC").
		Limit(n).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetProductsByIDs keeps the order of ids and skips ids that do not exist.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&models.Review{}).Error
	})
}

// AddReview appends rev and recomputes the product's aggregates in one
// transaction. The product row is locked so concurrent reviews serialize.
func (r *GormRepo) AddReview(ctx context.Context, productID uuid.UUID, rev *models.Review) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", productID).First(&product).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("product_id = ? AND user_id = ?", productID, rev.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrReviewExists
		}

		rev.ProductID = productID
		if err := tx.Create(rev).Error; err != nil {
			if isDuplicate(err) {
				return ErrReviewExists
			}
			return err
		}

		var agg struct {
			Count int64
			Total float64
		}
		if err := tx.Model(&models.Review{}).
			Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS total").
			Where("product_id = ?", productID).
			Scan(&agg).Error; err != nil {
			return err
		}

		product.NumReviews = int(agg.Count)
		product.Rating = 0
		if agg.Count > 0 {
			product.Rating = agg.Total / float64(agg.Count)
		}

		return tx.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]any{
			"num_reviews": product.NumReviews,
			"rating":      product.Rating,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetProduct(ctx, productID)
}
