package pricing

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotalPrice_DefaultDurationKeepsPrice(t *testing.T) {
	price, err := NewEngine().ComputeTotalPrice(Offering{Price: money("60.00"), DurationInMinutes: 60}, 60)

	require.NoError(t, err)
	assert.True(t, price.Equal(money("60.00")))
}

func TestComputeTotalPrice_HalfDuration(t *testing.T) {
	price, err := NewEngine().ComputeTotalPrice(Offering{Price: money("60.00"), DurationInMinutes: 60}, 30)

	require.NoError(t, err)
	assert.Equal(t, "30.00", price.StringFixed(2))
}

func TestComputeTotalPrice_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		price    string
		offered  int
		booked   int
		expected string
	}{
		// 0.25 * 45 / 90 = 0.125
		{"0.25", 90, 45, "0.13"},
		// 10.00 * 20 / 60 = 3.3333...
		{"10.00", 60, 20, "3.33"},
		// 10.00 * 40 / 60 = 6.6666...
		{"10.00", 60, 40, "6.67"},
		{"45.50", 60, 90, "68.25"},
	}

	for _, tc := range cases {
		price, err := NewEngine().ComputeTotalPrice(
			Offering{Price: money(tc.price), DurationInMinutes: tc.offered},
			tc.booked,
		)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, price.StringFixed(2), "price=%s %d/%d", tc.price, tc.booked, tc.offered)
	}
}

func TestComputeTotalPrice_RejectsNonPositiveDuration(t *testing.T) {
	for _, minutes := range []int{0, -15} {
		_, err := NewEngine().ComputeTotalPrice(Offering{Price: money("60.00"), DurationInMinutes: 60}, minutes)

		var durErr *InvalidDurationError
		require.True(t, errors.As(err, &durErr))
		assert.Equal(t, minutes, durErr.Minutes)
	}
}

func TestComputeTotalPrice_RejectsBrokenOffering(t *testing.T) {
	_, err := NewEngine().ComputeTotalPrice(Offering{Price: money("60.00"), DurationInMinutes: 0}, 30)

	var durErr *InvalidDurationError
	assert.ErrorAs(t, err, &durErr)
}

func TestComputePlatformFee_FifteenPercent(t *testing.T) {
	fee, net, err := NewEngine().ComputePlatformFee(money("100.00"), money("0.15"))

	require.NoError(t, err)
	assert.Equal(t, "15.00", fee.StringFixed(2))
	assert.Equal(t, "85.00", net.StringFixed(2))
}

func TestComputePlatformFee_RemainderGoesToNet(t *testing.T) {
	// 33.33 * 0.15 = 4.9995 -> fee 5.00, net 28.33
	fee, net, err := NewEngine().ComputePlatformFee(money("33.33"), money("0.15"))

	require.NoError(t, err)
	assert.Equal(t, "5.00", fee.StringFixed(2))
	assert.Equal(t, "28.33", net.StringFixed(2))
}

func TestComputePlatformFee_Bounds(t *testing.T) {
	engine := NewEngine()

	fee, net, err := engine.ComputePlatformFee(money("80.00"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())
	assert.True(t, net.Equal(money("80.00")))

	fee, net, err = engine.ComputePlatformFee(money("80.00"), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, fee.Equal(money("80.00")))
	assert.True(t, net.IsZero())

	for _, p := range []string{"-0.01", "1.01", "15"} {
		_, _, err := engine.ComputePlatformFee(money("80.00"), money(p))
		var pctErr *InvalidFeePercentageError
		assert.ErrorAs(t, err, &pctErr, p)
	}
}

func TestComputePlatformFee_AlwaysReconciles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	engine := NewEngine()

	for i := 0; i < 2000; i++ {
		base := decimal.New(rng.Int63n(10_000_000)+1, -2)
		pct := decimal.New(rng.Int63n(10_001), -4)

		fee, net, err := engine.ComputePlatformFee(base, pct)
		require.NoError(t, err)

		assert.True(t, fee.Add(net).Equal(base), "base=%s pct=%s", base, pct)
		assert.LessOrEqual(t, fee.Exponent()*-1, int32(MoneyPlaces))
	}
}
