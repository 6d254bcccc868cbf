// Package pricing holds the money arithmetic shared by products, orders and
// negotiations. Amounts are float64 at the edges and decimal inside; results
// are rounded half-away-from-zero to two places.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

const Tolerance = 0.01

var (
	hundred = decimal.NewFromInt(100)

	ErrInvalidBasePrice = errors.New("base price must be greater than zero")
	ErrInvalidDiscount  = errors.New("discount must be between 0 and 100")
	ErrSellingAboveBase = errors.New("selling price cannot exceed base price")
	ErrInvalidSelling   = errors.New("selling price must be greater than zero")
)

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Quote is the outcome of resolving a product's price fields.
type Quote struct {
	BasePrice     float64
	SellingPrice  float64
	PriceDiscount float64
}

// Resolve derives the selling price and discount from the supplied fields.
// A discount takes precedence over a selling price; with neither, the product
// sells at its base price.
func Resolve(basePrice float64, discount, sellingPrice *float64) (Quote, error) {
	if basePrice <= 0 {
		return Quote{}, ErrInvalidBasePrice
	}
	base := decimal.NewFromFloat(basePrice)

	switch {
	case discount != nil:
		if *discount < 0 || *discount >= 100 {
			return Quote{}, ErrInvalidDiscount
		}
		d := decimal.NewFromFloat(*discount)
		selling := base.Mul(hundred.Sub(d)).Div(hundred).Round(2)
		return Quote{
			BasePrice:     toFloat(base.Round(2)),
			SellingPrice:  toFloat(selling),
			PriceDiscount: toFloat(d),
		}, nil
	case sellingPrice != nil:
		if *sellingPrice <= 0 {
			return Quote{}, ErrInvalidSelling
		}
		selling := decimal.NewFromFloat(*sellingPrice)
		if selling.GreaterThan(base) {
			return Quote{}, ErrSellingAboveBase
		}
		d := hundred.Sub(selling.Mul(hundred).Div(base))
		return Quote{
			BasePrice:     toFloat(base.Round(2)),
			SellingPrice:  toFloat(selling.Round(2)),
			PriceDiscount: toFloat(d),
		}, nil
	default:
		return Quote{
			BasePrice:     toFloat(base.Round(2)),
			SellingPrice:  toFloat(base.Round(2)),
			PriceDiscount: 0,
		}, nil
	}
}

// Consistent reports whether selling = base × (1 − discount/100) within Tolerance.
func Consistent(basePrice, sellingPrice, discount float64) bool {
	expected := decimal.NewFromFloat(basePrice).Mul(hundred.Sub(decimal.NewFromFloat(discount))).Div(hundred)
	diff := expected.Sub(decimal.NewFromFloat(sellingPrice)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(Tolerance))
}

// Line is one priced quantity.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// LineTotal returns unitPrice × quantity.
func LineTotal(unitPrice float64, quantity int) float64 {
	return toFloat(decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2))
}

// Subtotal returns Σ unitPrice × quantity.
func Subtotal(lines []Line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return toFloat(sum.Round(2))
}

// Add returns a + b rounded to two places.
func Add(a, b float64) float64 {
	return toFloat(decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2))
}

// Less reports a < b after rounding both to two places.
func Less(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).LessThan(decimal.NewFromFloat(b).Round(2))
}

// AtLeast reports a ≥ b after rounding both to two places.
func AtLeast(a, b float64) bool {
	return !Less(a, b)
}

// Equal reports whether a and b differ by no more than Tolerance.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().LessThanOrEqual(decimal.NewFromFloat(Tolerance))
}

// Ceiling returns price × ratio, used for the challenge threshold.
func Ceiling(price, ratio float64) float64 {
	return toFloat(decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(ratio)).Round(2))
}

// MinorUnits converts an amount to the smallest currency unit (paise, cents).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
