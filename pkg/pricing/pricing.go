// Package pricing computes the order price breakdown. The server uses it to
// price orders and the client uses it to preview a cart at checkout.
package pricing

import "math"

const (
	TaxRate           = 0.15
	FreeShippingAbove = 100.0
	ShippingFlat      = 10.0
)

type Line struct {
	Price float64
	Qty   int
}

type Breakdown struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

func Compute(lines []Line) Breakdown {
	var items float64
	for _, l := range lines {
		items += l.Price * float64(l.Qty)
	}
	items = Round(items)

	shipping := ShippingFlat
	if items > FreeShippingAbove || items == 0 {
		shipping = 0
	}
	tax := Round(items * TaxRate)

	return Breakdown{
		ItemsPrice:    items,
		TaxPrice:      tax,
		ShippingPrice: shipping,
		TotalPrice:    Round(items + tax + shipping),
	}
}

// Round rounds to cents.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
