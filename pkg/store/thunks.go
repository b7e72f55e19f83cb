package store

import (
	"context"
	"errors"

	"github.com/zapper13/Major-Mern-Stack-Project/pkg/apiclient"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Actions runs API calls and records their progress in Store. Each call
// dispatches a request action and then exactly one of success or fail.
// Storage may be nil, in which case nothing is persisted.
type Actions struct {
	Store   *Store
	API     *apiclient.Client
	Storage Storage
}

func errMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func run[T any](st *Store, slice Slice, call func() (T, error)) (T, error) {
	st.Dispatch(AsyncAction{Slice: slice, Phase: PhaseRequest})
	out, err := call()
	if err != nil {
		st.Dispatch(AsyncAction{Slice: slice, Phase: PhaseFail, Err: errMessage(err)})
		return out, err
	}
	st.Dispatch(AsyncAction{Slice: slice, Phase: PhaseSuccess, Payload: out})
	return out, nil
}

func (a *Actions) token() (string, error) {
	info := a.Store.State().UserLogin.Data
	if info == nil || info.Token == "" {
		return "", ErrNotLoggedIn
	}
	return info.Token, nil
}

// authed is like run but fails the slice when nobody is logged in.
func authed[T any](a *Actions, slice Slice, call func(token string) (T, error)) (T, error) {
	return run(a.Store, slice, func() (T, error) {
		tok, err := a.token()
		if err != nil {
			var zero T
			return zero, err
		}
		return call(tok)
	})
}

func (a *Actions) Reset(slice Slice) {
	a.Store.Dispatch(AsyncAction{Slice: slice, Phase: PhaseReset})
}

func (a *Actions) Login(ctx context.Context, email, password string) (*apiclient.UserInfo, error) {
	info, err := run(a.Store, SliceUserLogin, func() (*apiclient.UserInfo, error) {
		return a.API.Login(ctx, email, password)
	})
	if err != nil {
		return nil, err
	}
	return info, persist(ctx, a.Storage, KeyUserInfo, info)
}

// Logout forgets the session. Cart contents stay.
func (a *Actions) Logout(ctx context.Context) error {
	a.Store.Dispatch(UserLogout{})
	return forget(ctx, a.Storage, KeyUserInfo)
}

// Register logs the new user in on success.
func (a *Actions) Register(ctx context.Context, name, email, password string) (*apiclient.UserInfo, error) {
	info, err := run(a.Store, SliceUserRegister, func() (*apiclient.UserInfo, error) {
		return a.API.Register(ctx, name, email, password)
	})
	if err != nil {
		return nil, err
	}
	a.Store.Dispatch(AsyncAction{Slice: SliceUserLogin, Phase: PhaseSuccess, Payload: info})
	return info, persist(ctx, a.Storage, KeyUserInfo, info)
}

// UserDetails loads a user by id, or the caller's profile when id is "profile".
func (a *Actions) UserDetails(ctx context.Context, id string) (*apiclient.UserInfo, error) {
	return authed(a, SliceUserDetails, func(tok string) (*apiclient.UserInfo, error) {
		return a.API.GetUser(ctx, tok, id)
	})
}

// UpdateProfile refreshes the logged-in session with the returned token.
func (a *Actions) UpdateProfile(ctx context.Context, in apiclient.UserUpdate) (*apiclient.UserInfo, error) {
	info, err := authed(a, SliceUserUpdateProfile, func(tok string) (*apiclient.UserInfo, error) {
		return a.API.UpdateProfile(ctx, tok, in)
	})
	if err != nil {
		return nil, err
	}
	a.Store.Dispatch(AsyncAction{Slice: SliceUserLogin, Phase: PhaseSuccess, Payload: info})
	return info, persist(ctx, a.Storage, KeyUserInfo, info)
}

func (a *Actions) ListUsers(ctx context.Context) ([]apiclient.UserInfo, error) {
	return authed(a, SliceUserList, func(tok string) ([]apiclient.UserInfo, error) {
		return a.API.ListUsers(ctx, tok)
	})
}

func (a *Actions) DeleteUser(ctx context.Context, id string) error {
	_, err := authed(a, SliceUserDelete, func(tok string) (struct{}, error) {
		return struct{}{}, a.API.DeleteUser(ctx, tok, id)
	})
	return err
}

func (a *Actions) UpdateUser(ctx context.Context, id string, in apiclient.UserUpdate) (*apiclient.UserInfo, error) {
	info, err := authed(a, SliceUserUpdate, func(tok string) (*apiclient.UserInfo, error) {
		return a.API.UpdateUser(ctx, tok, id, in)
	})
	if err != nil {
		return nil, err
	}
	a.Store.Dispatch(AsyncAction{Slice: SliceUserDetails, Phase: PhaseSuccess, Payload: info})
	return info, nil
}

func (a *Actions) ListProducts(ctx context.Context, keyword string, page int) (*apiclient.ProductPage, error) {
	return run(a.Store, SliceProductList, func() (*apiclient.ProductPage, error) {
		return a.API.ListProducts(ctx, keyword, page)
	})
}

func (a *Actions) ProductDetails(ctx context.Context, id string) (*apiclient.Product, error) {
	return run(a.Store, SliceProductDetails, func() (*apiclient.Product, error) {
		return a.API.GetProduct(ctx, id)
	})
}

func (a *Actions) TopProducts(ctx context.Context) ([]apiclient.Product, error) {
	return run(a.Store, SliceProductTop, func() ([]apiclient.Product, error) {
		return a.API.TopProducts(ctx)
	})
}

func (a *Actions) DeleteProduct(ctx context.Context, id string) error {
	_, err := authed(a, SliceProductDelete, func(tok string) (struct{}, error) {
		return struct{}{}, a.API.DeleteProduct(ctx, tok, id)
	})
	return err
}

func (a *Actions) CreateProduct(ctx context.Context) (*apiclient.Product, error) {
	return authed(a, SliceProductCreate, func(tok string) (*apiclient.Product, error) {
		return a.API.CreateProduct(ctx, tok)
	})
}

func (a *Actions) UpdateProduct(ctx context.Context, id string, in apiclient.ProductPatch) (*apiclient.Product, error) {
	p, err := authed(a, SliceProductUpdate, func(tok string) (*apiclient.Product, error) {
		return a.API.UpdateProduct(ctx, tok, id, in)
	})
	if err != nil {
		return nil, err
	}
	a.Store.Dispatch(AsyncAction{Slice: SliceProductDetails, Phase: PhaseSuccess, Payload: p})
	return p, nil
}

func (a *Actions) CreateReview(ctx context.Context, productID string, in apiclient.NewReview) error {
	_, err := authed(a, SliceProductReviewCreate, func(tok string) (struct{}, error) {
		return struct{}{}, a.API.CreateReview(ctx, tok, productID, in)
	})
	return err
}

// AddToCart reads the product from the API so the cart line carries current
// price and stock.
func (a *Actions) AddToCart(ctx context.Context, productID string, qty int) error {
	p, err := a.API.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	s := a.Store.Dispatch(CartAddItem{Item: CartItem{
		Product:      p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Price:        p.Price,
		CountInStock: p.CountInStock,
		Qty:          qty,
	}})
	return persist(ctx, a.Storage, KeyCartItems, s.Cart.CartItems)
}

func (a *Actions) RemoveFromCart(ctx context.Context, productID string) error {
	s := a.Store.Dispatch(CartRemoveItem{Product: productID})
	return persist(ctx, a.Storage, KeyCartItems, s.Cart.CartItems)
}

func (a *Actions) SaveShippingAddress(ctx context.Context, addr apiclient.ShippingAddress) error {
	a.Store.Dispatch(CartSaveShippingAddress{Address: addr})
	return persist(ctx, a.Storage, KeyShippingAddress, addr)
}

func (a *Actions) SavePaymentMethod(ctx context.Context, method string) error {
	a.Store.Dispatch(CartSavePaymentMethod{Method: method})
	return persist(ctx, a.Storage, KeyPaymentMethod, method)
}

// CreateOrder places an order for the current cart and empties it on success.
func (a *Actions) CreateOrder(ctx context.Context) (*apiclient.Order, error) {
	cart := a.Store.State().Cart
	in := apiclient.NewOrder{
		ShippingAddress: cart.ShippingAddress,
		PaymentMethod:   cart.PaymentMethod,
	}
	for _, it := range cart.CartItems {
		in.OrderItems = append(in.OrderItems, apiclient.OrderLine{Product: it.Product, Qty: it.Qty})
	}

	o, err := authed(a, SliceOrderCreate, func(tok string) (*apiclient.Order, error) {
		return a.API.CreateOrder(ctx, tok, in)
	})
	if err != nil {
		return nil, err
	}
	a.Store.Dispatch(CartClearItems{})
	return o, forget(ctx, a.Storage, KeyCartItems)
}

func (a *Actions) OrderDetails(ctx context.Context, id string) (*apiclient.Order, error) {
	return authed(a, SliceOrderDetails, func(tok string) (*apiclient.Order, error) {
		return a.API.GetOrder(ctx, tok, id)
	})
}

func (a *Actions) PayOrder(ctx context.Context, id string, p apiclient.Payment) (*apiclient.Order, error) {
	return authed(a, SliceOrderPay, func(tok string) (*apiclient.Order, error) {
		return a.API.PayOrder(ctx, tok, id, p)
	})
}

func (a *Actions) DeliverOrder(ctx context.Context, id string) (*apiclient.Order, error) {
	return authed(a, SliceOrderDeliver, func(tok string) (*apiclient.Order, error) {
		return a.API.DeliverOrder(ctx, tok, id)
	})
}

func (a *Actions) ListMyOrders(ctx context.Context) ([]apiclient.Order, error) {
	return authed(a, SliceOrderListMy, func(tok string) ([]apiclient.Order, error) {
		return a.API.ListMyOrders(ctx, tok)
	})
}

func (a *Actions) ListOrders(ctx context.Context) ([]apiclient.Order, error) {
	return authed(a, SliceOrderList, func(tok string) ([]apiclient.Order, error) {
		return a.API.ListOrders(ctx, tok)
	})
}
