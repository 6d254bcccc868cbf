package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestResolve_FromDiscount(t *testing.T) {
	q, err := Resolve(1000, ptr(10), nil)
	require.NoError(t, err)
	assert.Equal(t, 900.0, q.SellingPrice)
	assert.Equal(t, 10.0, q.PriceDiscount)
	assert.True(t, Consistent(q.BasePrice, q.SellingPrice, q.PriceDiscount))
}

func TestResolve_FromSellingPrice(t *testing.T) {
	q, err := Resolve(1499, nil, ptr(999))
	require.NoError(t, err)
	assert.Equal(t, 999.0, q.SellingPrice)
	assert.InDelta(t, 33.3556, q.PriceDiscount, 0.0001)
	assert.True(t, Consistent(q.BasePrice, q.SellingPrice, q.PriceDiscount))
}

func TestResolve_DiscountWinsOverSellingPrice(t *testing.T) {
	q, err := Resolve(200, ptr(25), ptr(190))
	require.NoError(t, err)
	assert.Equal(t, 150.0, q.SellingPrice)
}

func TestResolve_NoPriceFields(t *testing.T) {
	q, err := Resolve(350.5, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 350.5, q.SellingPrice)
	assert.Zero(t, q.PriceDiscount)
}

func TestResolve_Rejects(t *testing.T) {
	testCases := []struct {
		name     string
		base     float64
		discount *float64
		selling  *float64
		err      error
	}{
		{"zero base", 0, nil, nil, ErrInvalidBasePrice},
		{"negative discount", 100, ptr(-1), nil, ErrInvalidDiscount},
		{"full discount", 100, ptr(100), nil, ErrInvalidDiscount},
		{"selling above base", 100, nil, ptr(101), ErrSellingAboveBase},
		{"zero selling", 100, nil, ptr(0), ErrInvalidSelling},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.base, tc.discount, tc.selling)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestResolve_ConsistencyHoldsAcrossDiscounts(t *testing.T) {
	for _, base := range []float64{1, 9.99, 123.45, 1000, 25999} {
		for d := 0.0; d < 100; d += 7.5 {
			q, err := Resolve(base, ptr(d), nil)
			require.NoError(t, err)
			assert.True(t, Consistent(q.BasePrice, q.SellingPrice, q.PriceDiscount), "base=%v d=%v", base, d)
		}
	}
}

func TestSubtotalAndTotal(t *testing.T) {
	sub := Subtotal([]Line{{UnitPrice: 900, Quantity: 2}})
	assert.Equal(t, 1800.0, sub)

	sub = Subtotal([]Line{{UnitPrice: 0.1, Quantity: 3}, {UnitPrice: 0.2, Quantity: 1}})
	assert.Equal(t, 0.5, sub)
	assert.Equal(t, 50.5, Add(sub, 50))
}

func TestCeilingAndComparisons(t *testing.T) {
	assert.Equal(t, 900.0, Ceiling(1000, 0.9))
	assert.True(t, Less(899.99, 900))
	assert.False(t, Less(900, 900))
	assert.True(t, AtLeast(900, 900))
	assert.True(t, Equal(900.004, 900))
	assert.Equal(t, int64(180000), MinorUnits(1800))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
}
