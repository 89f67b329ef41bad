package service

import (
	"better-being/internal/config"

	"github.com/shopspring/decimal"
)

// Pricing holds the tax and shipping rules applied to an order subtotal.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	LoyaltyPoints int
}

// DefaultPricing is 15% tax and a flat 50 shipping fee waived above 500.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.15"),
		ShippingFee:           decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(500),
	}
}

// NewPricing builds the pricing rules from configuration.
func NewPricing(cfg config.OrderConfig) Pricing {
	return Pricing{
		TaxRate:               cfg.TaxRate,
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}
}

// Calculate prices a subtotal. Shipping is free only when the subtotal is
// strictly above the threshold. Loyalty points are the whole currency units
// of the total.
func (p Pricing) Calculate(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	shipping := p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping)

	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Total:         total,
		LoyaltyPoints: int(total.Floor().IntPart()),
	}
}
