package repo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/db"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

func newPostgresRepo(t *testing.T, driver string) *GormRepo {
	t.Helper()
	dsn := os.Getenv("STOREFRONT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_DATABASE_URL not set")
	}
	gdb, err := db.Open(context.Background(), dsn, driver)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })
	require.NoError(t, db.Migrate(gdb))
	return &GormRepo{DB: gdb}
}

func TestPostgres_ConcurrentReviews(t *testing.T) {
	for _, driver := range []string{"pgx", "pq"} {
		t.Run(driver, func(t *testing.T) {
			r := newPostgresRepo(t, driver)
			ctx := context.Background()
			p := seedProduct(t, r, "Concurrent "+uuid.NewString())

			const n = 8
			users := make([]*models.User, n)
			for i := range users {
				users[i] = seedUser(t, r, fmt.Sprintf("%s-%d@x.com", uuid.NewString(), i))
			}

			var wg sync.WaitGroup
			errs := make([]error, n)
			for i, u := range users {
				wg.Add(1)
				go func(i int, u *models.User) {
					defer wg.Done()
					_, errs[i] = r.AddReview(ctx, p.ID, &models.Review{UserID: u.ID, Name: u.Name, Rating: i%5 + 1})
				}(i, u)
			}
			wg.Wait()
			for _, err := range errs {
				require.NoError(t, err)
			}

			got, err := r.GetProduct(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, n, got.NumReviews)
			assert.Len(t, got.Reviews, n)

			// Ratings 1,2,3,4,5,1,2,3 average to 2.625.
			assert.InDelta(t, 2.625, got.Rating, 1e-9)

			_, err = r.AddReview(ctx, p.ID, &models.Review{UserID: users[0].ID, Name: "again", Rating: 3})
			assert.ErrorIs(t, err, ErrReviewExists)
		})
	}
}
