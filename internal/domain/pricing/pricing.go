// Package pricing derives booking prices and platform fees. Everything here
// is a pure function of its arguments.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept on every amount.
const MoneyPlaces = 2

// Offering carries the two offering fields pricing depends on.
type Offering struct {
	Price             decimal.Decimal
	DurationInMinutes int
}

type InvalidDurationError struct {
	Minutes int
	Field   string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("%s must be positive, got %d minutes", e.Field, e.Minutes)
}

type InvalidFeePercentageError struct {
	Percentage decimal.Decimal
}

func (e *InvalidFeePercentageError) Error() string {
	return fmt.Sprintf("fee percentage %s is outside [0, 1]", e.Percentage)
}

type Engine struct{}

func NewEngine() Engine {
	return Engine{}
}

// ComputeTotalPrice returns the offering price for its default duration and
// scales it linearly otherwise, rounding half-up to cents.
func (Engine) ComputeTotalPrice(o Offering, durationMinutes int) (decimal.Decimal, error) {
	if durationMinutes <= 0 {
		return decimal.Zero, &InvalidDurationError{Minutes: durationMinutes, Field: "duration"}
	}
	if o.DurationInMinutes <= 0 {
		return decimal.Zero, &InvalidDurationError{Minutes: o.DurationInMinutes, Field: "offering duration"}
	}

	if durationMinutes == o.DurationInMinutes {
		return o.Price, nil
	}

	scaled := o.Price.Mul(decimal.NewFromInt(int64(durationMinutes)))
	return scaled.DivRound(decimal.NewFromInt(int64(o.DurationInMinutes)), MoneyPlaces), nil
}

// ComputePlatformFee splits totalPrice into the platform's cut and the
// sitter's payout. The rounding remainder always lands in net.
func (Engine) ComputePlatformFee(totalPrice, feePercentage decimal.Decimal) (fee, net decimal.Decimal, err error) {
	if err := ValidateFeePercentage(feePercentage); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	fee = totalPrice.Mul(feePercentage).Round(MoneyPlaces)
	net = totalPrice.Sub(fee)
	return fee, net, nil
}

func ValidateFeePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(1)) {
		return &InvalidFeePercentageError{Percentage: p}
	}
	return nil
}
