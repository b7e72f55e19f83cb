package store

import "github.com/zapper13/Major-Mern-Stack-Project/pkg/apiclient"

func reduceAsync[T any](s AsyncState[T], a AsyncAction) (AsyncState[T], bool) {
	switch a.Phase {
	case PhaseRequest:
		return AsyncState[T]{Loading: true, Data: s.Data}, true
	case PhaseSuccess:
		data, ok := a.Payload.(T)
		if !ok && a.Payload != nil {
			return s, false
		}
		return AsyncState[T]{Success: true, Data: data}, true
	case PhaseFail:
		return AsyncState[T]{Error: a.Err}, true
	case PhaseReset:
		return AsyncState[T]{}, true
	}
	return s, false
}

func slot[T any](field func(*State) *AsyncState[T]) func(*State, AsyncAction) bool {
	return func(s *State, a AsyncAction) bool {
		p := field(s)
		next, ok := reduceAsync(*p, a)
		if ok {
			*p = next
		}
		return ok
	}
}

var sliceReducers = map[Slice]func(*State, AsyncAction) bool{
	SliceUserLogin:           slot(func(s *State) *AsyncState[*apiclient.UserInfo] { return &s.UserLogin }),
	SliceUserRegister:        slot(func(s *State) *AsyncState[*apiclient.UserInfo] { return &s.UserRegister }),
	SliceUserDetails:         slot(func(s *State) *AsyncState[*apiclient.UserInfo] { return &s.UserDetails }),
	SliceUserUpdateProfile:   slot(func(s *State) *AsyncState[*apiclient.UserInfo] { return &s.UserUpdateProfile }),
	SliceUserList:            slot(func(s *State) *AsyncState[[]apiclient.UserInfo] { return &s.UserList }),
	SliceUserDelete:          slot(func(s *State) *AsyncState[struct{}] { return &s.UserDelete }),
	SliceUserUpdate:          slot(func(s *State) *AsyncState[*apiclient.UserInfo] { return &s.UserUpdate }),
	SliceProductList:         slot(func(s *State) *AsyncState[*apiclient.ProductPage] { return &s.ProductList }),
	SliceProductDetails:      slot(func(s *State) *AsyncState[*apiclient.Product] { return &s.ProductDetails }),
	SliceProductDelete:       slot(func(s *State) *AsyncState[struct{}] { return &s.ProductDelete }),
	SliceProductCreate:       slot(func(s *State) *AsyncState[*apiclient.Product] { return &s.ProductCreate }),
	SliceProductUpdate:       slot(func(s *State) *AsyncState[*apiclient.Product] { return &s.ProductUpdate }),
	SliceProductReviewCreate: slot(func(s *State) *AsyncState[struct{}] { return &s.ProductReviewCreate }),
	SliceProductTop:          slot(func(s *State) *AsyncState[[]apiclient.Product] { return &s.ProductTop }),
	SliceOrderCreate:         slot(func(s *State) *AsyncState[*apiclient.Order] { return &s.OrderCreate }),
	SliceOrderDetails:        slot(func(s *State) *AsyncState[*apiclient.Order] { return &s.OrderDetails }),
	SliceOrderPay:            slot(func(s *State) *AsyncState[*apiclient.Order] { return &s.OrderPay }),
	SliceOrderDeliver:        slot(func(s *State) *AsyncState[*apiclient.Order] { return &s.OrderDeliver }),
	SliceOrderListMy:         slot(func(s *State) *AsyncState[[]apiclient.Order] { return &s.OrderListMy }),
	SliceOrderList:           slot(func(s *State) *AsyncState[[]apiclient.Order] { return &s.OrderList }),
}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	next, _ := reduce(s, a)
	return next
}

func reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case AsyncAction:
		fn, ok := sliceReducers[a.Slice]
		if !ok {
			return s, false
		}
		next := s
		if !fn(&next, a) {
			return s, false
		}
		return next, true

	case CartAddItem:
		items := make([]CartItem, 0, len(s.Cart.CartItems)+1)
		replaced := false
		for _, it := range s.Cart.CartItems {
			if it.Product == a.Item.Product {
				items = append(items, a.Item)
				replaced = true
				continue
			}
			items = append(items, it)
		}
		if !replaced {
			items = append(items, a.Item)
		}
		s.Cart.CartItems = items
		return s, true

	case CartRemoveItem:
		items := make([]CartItem, 0, len(s.Cart.CartItems))
		for _, it := range s.Cart.CartItems {
			if it.Product != a.Product {
				items = append(items, it)
			}
		}
		s.Cart.CartItems = items
		return s, true

	case CartSaveShippingAddress:
		s.Cart.ShippingAddress = a.Address
		return s, true

	case CartSavePaymentMethod:
		s.Cart.PaymentMethod = a.Method
		return s, true

	case CartClearItems:
		s.Cart.CartItems = []CartItem{}
		return s, true

	case UserLogout:
		s.UserLogin = AsyncState[*apiclient.UserInfo]{}
		s.UserRegister = AsyncState[*apiclient.UserInfo]{}
		s.UserDetails = AsyncState[*apiclient.UserInfo]{}
		s.OrderListMy = AsyncState[[]apiclient.Order]{}
		s.UserList = AsyncState[[]apiclient.UserInfo]{}
		return s, true
	}
	return s, false
}
