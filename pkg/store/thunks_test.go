package store

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/db/dbtest"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/hash"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/httpserver"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/auth"
	loggingmw "github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/metrics"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/ratelimit"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/repo"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/service"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/upload"
	"github.com/zapper13/Major-Mern-Stack-Project/pkg/apiclient"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

// newAPI serves the real storefront API over sqlite.
func newAPI(t *testing.T) (*apiclient.Client, *gorm.DB) {
	t.Helper()
	gdb := dbtest.New(t)
	r := &repo.GormRepo{DB: gdb}
	secret := []byte("store-test-secret")
	uploadDir := t.TempDir()

	e := echo.New()
	e.IPExtractor = ratelimit.IPExtractor(false)
	e.HTTPErrorHandler = httpserver.ErrorHandler(true)
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))
	httpserver.Register(e, &httpserver.Deps{
		DB:           gdb,
		Auth:         auth.New(secret, r),
		Users:        &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, JWTSecret: secret}},
		Product:      &httpserver.ProductHTTP{Svc: &service.ProductService{Repo: r}},
		Orders:       &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r}},
		Upload:       &httpserver.UploadHTTP{Store: upload.NewStore(uploadDir)},
		Metrics:      metrics.New("store_test"),
		LoginLimiter: ratelimit.New(100, 100),
		UploadDir:    uploadDir,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return apiclient.NewClient(srv.URL), gdb
}

func newActions(t *testing.T, api *apiclient.Client) *Actions {
	t.Helper()
	return &Actions{Store: New(InitialState()), API: api, Storage: NewMemoryStorage()}
}

func TestActions_LoginFailureRecordsServerMessage(t *testing.T) {
	api, _ := newAPI(t)
	a := newActions(t, api)
	ctx := context.Background()

	var phases []bool
	a.Store.Subscribe(func(s State) { phases = append(phases, s.UserLogin.Loading) })

	_, err := a.Login(ctx, "nobody@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, []bool{true, false}, phases)

	s := a.Store.State()
	assert.Equal(t, "Invalid email or password", s.UserLogin.Error)
	assert.Nil(t, s.UserLogin.Data)

	_, ok, err := a.Storage.Get(ctx, KeyUserInfo)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActions_NotLoggedIn(t *testing.T) {
	api, _ := newAPI(t)
	a := newActions(t, api)

	_, err := a.ListMyOrders(context.Background())
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
	assert.Equal(t, "not logged in", a.Store.State().OrderListMy.Error)
}

func TestActions_ShopperFlow(t *testing.T) {
	api, gdb := newAPI(t)
	ctx := context.Background()

	admin := newActions(t, api)
	root, err := admin.Register(ctx, "Admin", "admin@example.com", "123456")
	require.NoError(t, err)
	require.NoError(t, gdb.Model(&models.User{}).Where("email = ?", root.Email).Update("is_admin", true).Error)

	p, err := admin.CreateProduct(ctx)
	require.NoError(t, err)
	name, price, stock := "Airpods", 120.0, 10
	_, err = admin.UpdateProduct(ctx, p.ID, apiclient.ProductPatch{Name: &name, Price: &price, CountInStock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Airpods", admin.Store.State().ProductDetails.Data.Name)

	shopper := newActions(t, api)
	info, err := shopper.Register(ctx, "John", "john@example.com", "123456")
	require.NoError(t, err)
	s := shopper.Store.State()
	assert.True(t, s.UserRegister.Success)
	require.NotNil(t, s.UserLogin.Data)
	assert.Equal(t, info.Token, s.UserLogin.Data.Token)

	page, err := shopper.ListProducts(ctx, "air", 1)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)

	require.NoError(t, shopper.AddToCart(ctx, p.ID, 2))
	require.NoError(t, shopper.AddToCart(ctx, p.ID, 1))
	addr := apiclient.ShippingAddress{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"}
	require.NoError(t, shopper.SaveShippingAddress(ctx, addr))
	require.NoError(t, shopper.SavePaymentMethod(ctx, "PayPal"))

	// A fresh process sees the same cart and session.
	restored, err := LoadState(ctx, shopper.Storage)
	require.NoError(t, err)
	require.Len(t, restored.Cart.CartItems, 1)
	assert.Equal(t, 1, restored.Cart.CartItems[0].Qty)
	assert.Equal(t, 120.0, restored.Cart.CartItems[0].Price)
	assert.Equal(t, "PayPal", restored.Cart.PaymentMethod)
	assert.Equal(t, info.Token, restored.UserLogin.Data.Token)

	order, err := shopper.CreateOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 138.0, order.TotalPrice)
	assert.Equal(t, restored.Cart.Prices().TotalPrice, order.TotalPrice)
	assert.Empty(t, shopper.Store.State().Cart.CartItems)
	_, ok, err := shopper.Storage.Get(ctx, KeyCartItems)
	require.NoError(t, err)
	assert.False(t, ok)

	paid, err := shopper.PayOrder(ctx, order.ID, apiclient.Payment{ID: "PAY-1", Status: "COMPLETED", Payer: apiclient.Payer{EmailAddress: "john@example.com"}})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	_, err = shopper.DeliverOrder(ctx, order.ID)
	require.Error(t, err)
	assert.Equal(t, "Not authorized as an admin", shopper.Store.State().OrderDeliver.Error)

	delivered, err := admin.DeliverOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)

	mine, err := shopper.ListMyOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, shopper.CreateReview(ctx, p.ID, apiclient.NewReview{Rating: 4, Comment: "good"}))
	err = shopper.CreateReview(ctx, p.ID, apiclient.NewReview{Rating: 5})
	require.Error(t, err)
	assert.Equal(t, "Product already reviewed", shopper.Store.State().ProductReviewCreate.Error)
	shopper.Reset(SliceProductReviewCreate)
	assert.Equal(t, AsyncState[struct{}]{}, shopper.Store.State().ProductReviewCreate)

	newName := "Johnny"
	_, err = shopper.UpdateProfile(ctx, apiclient.UserUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", shopper.Store.State().UserLogin.Data.Name)

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, shopper.Logout(ctx))
	assert.Nil(t, shopper.Store.State().UserLogin.Data)
	_, ok, err = shopper.Storage.Get(ctx, KeyUserInfo)
	require.NoError(t, err)
	assert.False(t, ok)
}
