package store

import "github.com/zapper13/Major-Mern-Stack-Project/pkg/apiclient"

// Action is anything Reduce accepts. Types it does not know leave the state
// untouched.
type Action interface {
	Type() string
}

type Slice string

const (
	SliceUserLogin           Slice = "userLogin"
	SliceUserRegister        Slice = "userRegister"
	SliceUserDetails         Slice = "userDetails"
	SliceUserUpdateProfile   Slice = "userUpdateProfile"
	SliceUserList            Slice = "userList"
	SliceUserDelete          Slice = "userDelete"
	SliceUserUpdate          Slice = "userUpdate"
	SliceProductList         Slice = "productList"
	SliceProductDetails      Slice = "productDetails"
	SliceProductDelete       Slice = "productDelete"
	SliceProductCreate       Slice = "productCreate"
	SliceProductUpdate       Slice = "productUpdate"
	SliceProductReviewCreate Slice = "productReviewCreate"
	SliceProductTop          Slice = "productTop"
	SliceOrderCreate         Slice = "orderCreate"
	SliceOrderDetails        Slice = "orderDetails"
	SliceOrderPay            Slice = "orderPay"
	SliceOrderDeliver        Slice = "orderDeliver"
	SliceOrderListMy         Slice = "orderListMy"
	SliceOrderList           Slice = "orderList"
)

type Phase int

const (
	PhaseRequest Phase = iota + 1
	PhaseSuccess
	PhaseFail
	PhaseReset
)

func (p Phase) String() string {
	switch p {
	case PhaseRequest:
		return "REQUEST"
	case PhaseSuccess:
		return "SUCCESS"
	case PhaseFail:
		return "FAIL"
	case PhaseReset:
		return "RESET"
	}
	return "UNKNOWN"
}

// AsyncAction moves one slice through request, success, fail and reset.
// Payload must have the slice's data type on success.
type AsyncAction struct {
	Slice   Slice
	Phase   Phase
	Payload any
	Err     string
}

func (a AsyncAction) Type() string { return string(a.Slice) + "_" + a.Phase.String() }

type CartItem struct {
	Product      string  `json:"product"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Qty          int     `json:"qty"`
}

// CartAddItem replaces any line for the same product.
type CartAddItem struct{ Item CartItem }

type CartRemoveItem struct{ Product string }

type CartSaveShippingAddress struct{ Address apiclient.ShippingAddress }

type CartSavePaymentMethod struct{ Method string }

type CartClearItems struct{}

type UserLogout struct{}

func (CartAddItem) Type() string             { return "CART_ADD_ITEM" }
func (CartRemoveItem) Type() string          { return "CART_REMOVE_ITEM" }
func (CartSaveShippingAddress) Type() string { return "CART_SAVE_SHIPPING_ADDRESS" }
func (CartSavePaymentMethod) Type() string   { return "CART_SAVE_PAYMENT_METHOD" }
func (CartClearItems) Type() string          { return "CART_CLEAR_ITEMS" }
func (UserLogout) Type() string              { return "USER_LOGOUT" }
