package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCharges(t *testing.T) {
	testCases := []struct {
		name     string
		info     DeliveryInfo
		subtotal float64
		want     float64
	}{
		{"pickup below threshold", DeliveryInfo{Option: DeliverySellerPickup}, 120, 0},
		{"pickup at threshold", DeliveryInfo{Option: DeliverySellerPickup}, 500, 0},
		{"metro", DeliveryInfo{Option: DeliveryMetro, MetroStation: "Andheri"}, 1000, 50},
		{"dabbawala", DeliveryInfo{Option: DeliveryDabbawala, Address: "Flat 4"}, 200, 30},
		{"rapido", DeliveryInfo{Option: DeliveryRapido, Address: "Flat 4"}, 800, 100},
		{"uber upper case", DeliveryInfo{Option: "UBER", Address: "Flat 4"}, 10, 100},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opt, err := ParseDeliveryOption(tc.info)
			require.NoError(t, err)
			assert.Equal(t, tc.want, opt.Charge(tc.subtotal))
		})
	}
}

func TestParseDeliveryOption_RequiredFields(t *testing.T) {
	_, err := ParseDeliveryOption(DeliveryInfo{Option: DeliveryMetro})
	assert.ErrorIs(t, err, ErrMetroStationMissing)

	_, err = ParseDeliveryOption(DeliveryInfo{Option: DeliveryDabbawala, Address: "  "})
	assert.ErrorIs(t, err, ErrAddressMissing)

	_, err = ParseDeliveryOption(DeliveryInfo{Option: DeliveryRapido})
	assert.ErrorIs(t, err, ErrAddressMissing)

	_, err = ParseDeliveryOption(DeliveryInfo{Option: "drone"})
	assert.ErrorIs(t, err, ErrUnknownDelivery)
}

func TestCheckPickupLocation(t *testing.T) {
	seller := &Seller{ID: "s1", PickupLocations: []PickupLocation{{ID: "loc1", Label: "Shop"}}}

	assert.NoError(t, CheckPickupLocation(SellerPickup{PickupLocationID: "loc1"}, seller))
	assert.NoError(t, CheckPickupLocation(SellerPickup{}, seller))
	assert.NoError(t, CheckPickupLocation(Metro{Station: "Dadar"}, seller))
	assert.ErrorIs(t, CheckPickupLocation(SellerPickup{PickupLocationID: "elsewhere"}, seller), ErrPickupNotOffered)
}
