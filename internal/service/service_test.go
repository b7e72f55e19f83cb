package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/cache"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/db/dbtest"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/events"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/hash"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/repo"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/tokens"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/transport"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

type recordedEvent struct {
	Topic string
	Event events.Event
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

func (r *recorder) PublishEvent(_ context.Context, topic, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("broker down")
	}
	r.events = append(r.events, recordedEvent{Topic: topic, Event: event.(events.Event)})
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event.Type)
	}
	return out
}

type fakeIndex struct {
	indexed map[uuid.UUID]string
	hits    []uuid.UUID
	total   int64
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	return f.total, f.hits, f.err
}

type env struct {
	repo     *repo.GormRepo
	events   *recorder
	users    *UserService
	products *ProductService
	orders   *OrderService
	redis    *miniredis.Miniredis
	rdb      *redis.Client
}

var secret = []byte("test-jwt-secret")

func newEnv(t *testing.T) *env {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	r := &repo.GormRepo{DB: dbtest.New(t)}
	rec := &recorder{}
	return &env{
		repo:     r,
		events:   rec,
		redis:    mr,
		rdb:      rdb,
		users:    &UserService{Repo: r, JWTSecret: secret, Events: rec},
		products: &ProductService{Repo: r, Events: rec, Cache: cache.NewTopProducts(rdb, "test", time.Minute)},
		orders:   &OrderService{Repo: r, Events: rec},
	}
}

func (e *env) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	res, err := e.users.Register(context.Background(), transport.RegisterRequest{Name: name, Email: email, Password: "p"})
	require.NoError(t, err)
	u, err := e.users.GetUser(context.Background(), res.ID)
	require.NoError(t, err)
	return u
}

func TestUserService_Register(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.users.Register(ctx, transport.RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "A", res.Name)
	assert.False(t, res.IsAdmin)
	require.NotEmpty(t, res.Token)

	claims, err := tokens.Parse(res.Token, secret)
	require.NoError(t, err)
	assert.Equal(t, res.ID.String(), claims.Subject)

	_, err = e.users.Register(ctx, transport.RegisterRequest{Name: "A2", Email: "A@x.com ", Password: "q"})
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, []string{"user_registered"}, e.events.types())
}

func TestUserService_Register_Validation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		req  transport.RegisterRequest
	}{
		{name: "missing name", req: transport.RegisterRequest{Email: "a@x.com", Password: "p"}},
		{name: "missing email", req: transport.RegisterRequest{Name: "A", Password: "p"}},
		{name: "missing password", req: transport.RegisterRequest{Name: "A", Email: "a@x.com"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "A", "a@x.com")

	res, err := e.users.Login(ctx, transport.LoginRequest{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = e.users.Login(ctx, transport.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = e.users.Login(ctx, transport.LoginRequest{Email: "nobody@x.com", Password: "p"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserService_UpdateProfile_PatchByPresence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "A", "a@x.com")
	e.register(t, "B", "b@x.com")

	name := "Alice"
	res, err := e.users.UpdateProfile(ctx, u.ID, transport.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.Name)
	assert.Equal(t, "a@x.com", res.Email)
	assert.NotEmpty(t, res.Token)

	taken := "b@x.com"
	_, err = e.users.UpdateProfile(ctx, u.ID, transport.UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	pw := "new-secret"
	_, err = e.users.UpdateProfile(ctx, u.ID, transport.UpdateProfileRequest{Password: &pw})
	require.NoError(t, err)
	_, err = e.users.Login(ctx, transport.LoginRequest{Email: "a@x.com", Password: "new-secret"})
	assert.NoError(t, err)

	_, err = e.users.UpdateProfile(ctx, uuid.New(), transport.UpdateProfileRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_AdminUpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "A", "a@x.com")

	yes := true
	res, err := e.users.UpdateUser(ctx, u.ID, transport.UpdateUserRequest{IsAdmin: &yes})
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	assert.Equal(t, "A", res.Name)
	assert.Empty(t, res.Token)

	res, err = e.users.UpdateUser(ctx, u.ID, transport.UpdateUserRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)

	users, err := e.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, e.users.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, e.users.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestProductService_CreateDefaultsAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.register(t, "Admin", "admin@x.com")

	p, err := e.products.CreateProduct(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sample name", p.Name)
	assert.Equal(t, "/images/sample.jpg", p.Image)
	assert.Equal(t, "Sample brand", p.Brand)
	assert.Equal(t, "Sample category", p.Category)
	assert.Equal(t, "Sample description", p.Description)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.CountInStock)
	assert.Zero(t, p.NumReviews)
	assert.Equal(t, admin.ID, p.UserID)

	name, price := "Airpods", 89.99
	updated, err := e.products.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Airpods", updated.Name)
	assert.Equal(t, 89.99, updated.Price)
	assert.Equal(t, "Sample brand", updated.Brand)

	neg := -1.0
	_, err = e.products.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Price: &neg})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.products.UpdateProduct(ctx, uuid.New(), transport.PatchProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"user_registered", "product_created", "product_updated"}, e.events.types())
}

func TestProductService_ListPagination(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, e.repo.CreateProduct(ctx, &models.Product{Name: fmt.Sprintf("phone %d", i)}))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, e.repo.CreateProduct(ctx, &models.Product{Name: fmt.Sprintf("tablet %d", i)}))
	}

	page, err := e.products.ListProducts(ctx, "phone", 2)
	require.NoError(t, err)
	assert.Len(t, page.Products, 10)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)

	page, err = e.products.ListProducts(ctx, "phone", 3)
	require.NoError(t, err)
	assert.Len(t, page.Products, 5)

	page, err = e.products.ListProducts(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Pages)
	for _, p := range page.Products {
		assert.NotNil(t, p.Reviews)
	}

	page, err = e.products.ListProducts(ctx, "nothing-matches", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.Pages)
}

func TestProductService_AddReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u1 := e.register(t, "U1", "u1@x.com")
	u2 := e.register(t, "U2", "u2@x.com")
	u3 := e.register(t, "U3", "u3@x.com")
	p, err := e.products.CreateProduct(ctx, u1.ID)
	require.NoError(t, err)

	_, err = e.products.AddReview(ctx, p.ID, u1, transport.CreateReviewRequest{Rating: 4, Comment: "ok"})
	require.NoError(t, err)
	_, err = e.products.AddReview(ctx, p.ID, u2, transport.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	// rating' == (sum(R) + r) / (|R| + 1)
	got, err := e.products.AddReview(ctx, p.ID, u3, transport.CreateReviewRequest{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumReviews)
	assert.InDelta(t, (4.0+5.0+1.0)/3.0, got.Rating, 1e-12)
	assert.Len(t, got.Reviews, 3)

	_, err = e.products.AddReview(ctx, p.ID, u1, transport.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrConflict)

	after, err := e.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.NumReviews)
	assert.InDelta(t, 10.0/3.0, after.Rating, 1e-12)

	for _, r := range []int{0, 6, -1} {
		_, err = e.products.AddReview(ctx, p.ID, u1, transport.CreateReviewRequest{Rating: r})
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err = e.products.AddReview(ctx, uuid.New(), u1, transport.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_TopProductsCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "U", "u@x.com")

	for i, rating := range []float64{2, 5, 3, 4} {
		p := &models.Product{Name: fmt.Sprintf("p%d", i), Rating: rating}
		require.NoError(t, e.repo.CreateProduct(ctx, p))
	}

	top, err := e.products.TopProducts(ctx)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "p1", top[0].Name)
	assert.True(t, e.redis.Exists("test:products:top"))

	// A write through the service invalidates the cached listing.
	_, err = e.products.CreateProduct(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, e.redis.Exists("test:products:top"))
}

// invalidatingCache bumps the generation right after TopProducts reads it,
// as a concurrent product write would.
type invalidatingCache struct {
	*cache.TopProducts
}

func (c invalidatingCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.TopProducts.Generation(ctx)
	if err != nil {
		return 0, err
	}
	return gen, c.TopProducts.Invalidate(ctx)
}

func TestProductService_TopProductsSkipsStaleCacheWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.repo.CreateProduct(ctx, &models.Product{Name: "p0", Rating: 4}))

	e.products.Cache = invalidatingCache{cache.NewTopProducts(e.rdb, "test", time.Minute)}

	top, err := e.products.TopProducts(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.False(t, e.redis.Exists("test:products:top"))
}

func TestProductService_SearchUsesIndex(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "U", "u@x.com")
	idx := &fakeIndex{indexed: map[uuid.UUID]string{}}
	e.products.Index = idx

	a, err := e.products.CreateProduct(ctx, u.ID)
	require.NoError(t, err)
	b, err := e.products.CreateProduct(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, idx.indexed, 2)

	idx.hits = []uuid.UUID{b.ID, a.ID}
	idx.total = 12
	page, err := e.products.SearchProducts(ctx, "sampel", 1)
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, b.ID, page.Products[0].ID)
	assert.Equal(t, 2, page.Pages)

	idx.err = errors.New("cluster red")
	page, err = e.products.SearchProducts(ctx, "sample", 1)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 1, page.Pages)

	require.NoError(t, e.products.DeleteProduct(ctx, a.ID))
	assert.Len(t, idx.indexed, 1)
	assert.ErrorIs(t, e.products.DeleteProduct(ctx, a.ID), ErrNotFound)
}

func TestOrderService_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.register(t, "Buyer", "buyer@x.com")
	other := e.register(t, "Other", "other@x.com")
	admin := &models.User{ID: uuid.New(), IsAdmin: true}

	p := &models.Product{Name: "Mouse", Image: "/images/mouse.jpg", Price: 29.99, CountInStock: 5}
	require.NoError(t, e.repo.CreateProduct(ctx, p))

	_, err := e.orders.CreateOrder(ctx, buyer, transport.CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.orders.CreateOrder(ctx, buyer, transport.CreateOrderRequest{
		OrderItems: []transport.OrderItemRequest{{Product: uuid.New(), Qty: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	order, err := e.orders.CreateOrder(ctx, buyer, transport.CreateOrderRequest{
		OrderItems:      []transport.OrderItemRequest{{Product: p.ID, Qty: 2}},
		ShippingAddress: models.ShippingAddress{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"},
		PaymentMethod:   "PayPal",
	})
	require.NoError(t, err)
	assert.Equal(t, 59.98, order.ItemsPrice)
	assert.Equal(t, 9.0, order.TaxPrice)
	assert.Equal(t, 10.0, order.ShippingPrice)
	assert.Equal(t, 78.98, order.TotalPrice)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "Mouse", order.OrderItems[0].Name)
	assert.False(t, order.IsPaid)

	_, err = e.orders.GetOrder(ctx, order.ID, other)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := e.orders.GetOrder(ctx, order.ID, admin)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "Buyer", got.User.Name)

	req := transport.PayOrderRequest{ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-01-01T00:00:00Z"}
	req.Payer.EmailAddress = "buyer@paypal.test"
	paid, err := e.orders.PayOrder(ctx, order.ID, buyer, req)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.False(t, paid.IsDelivered)
	assert.Equal(t, "buyer@paypal.test", paid.PaymentResult.EmailAddress)

	delivered, err := e.orders.DeliverOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.NotNil(t, delivered.DeliveredAt)
	assert.True(t, delivered.IsPaid)

	_, err = e.orders.DeliverOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := e.orders.MyOrders(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := e.orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	types := e.events.types()
	assert.Contains(t, types, "order_created")
	assert.Contains(t, types, "order_paid")
	assert.Contains(t, types, "order_delivered")
}

func TestPublish_FailureDoesNotFailRequest(t *testing.T) {
	e := newEnv(t)
	e.events.fail = true

	_, err := e.users.Register(context.Background(), transport.RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
}
