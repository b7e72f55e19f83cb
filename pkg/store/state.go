package store

import (
	"github.com/zapper13/Major-Mern-Stack-Project/pkg/apiclient"
	"github.com/zapper13/Major-Mern-Stack-Project/pkg/pricing"
)

// AsyncState is the shape of every server-backed slice.
type AsyncState[T any] struct {
	Loading bool
	Success bool
	Error   string
	Data    T
}

type CartState struct {
	CartItems       []CartItem                `json:"cartItems"`
	ShippingAddress apiclient.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                    `json:"paymentMethod"`
}

type State struct {
	UserLogin         AsyncState[*apiclient.UserInfo]
	UserRegister      AsyncState[*apiclient.UserInfo]
	UserDetails       AsyncState[*apiclient.UserInfo]
	UserUpdateProfile AsyncState[*apiclient.UserInfo]
	UserList          AsyncState[[]apiclient.UserInfo]
	UserDelete        AsyncState[struct{}]
	UserUpdate        AsyncState[*apiclient.UserInfo]

	ProductList         AsyncState[*apiclient.ProductPage]
	ProductDetails      AsyncState[*apiclient.Product]
	ProductDelete       AsyncState[struct{}]
	ProductCreate       AsyncState[*apiclient.Product]
	ProductUpdate       AsyncState[*apiclient.Product]
	ProductReviewCreate AsyncState[struct{}]
	ProductTop          AsyncState[[]apiclient.Product]

	OrderCreate  AsyncState[*apiclient.Order]
	OrderDetails AsyncState[*apiclient.Order]
	OrderPay     AsyncState[*apiclient.Order]
	OrderDeliver AsyncState[*apiclient.Order]
	OrderListMy  AsyncState[[]apiclient.Order]
	OrderList    AsyncState[[]apiclient.Order]

	Cart CartState
}

// Prices previews the checkout totals the server will charge for the cart.
func (c CartState) Prices() pricing.Breakdown {
	lines := make([]pricing.Line, 0, len(c.CartItems))
	for _, it := range c.CartItems {
		lines = append(lines, pricing.Line{Price: it.Price, Qty: it.Qty})
	}
	return pricing.Compute(lines)
}

// InitialState has every slice present and an empty, non-nil cart.
func InitialState() State {
	return State{Cart: CartState{CartItems: []CartItem{}}}
}
