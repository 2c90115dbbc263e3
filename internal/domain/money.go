package domain

import "github.com/shopspring/decimal"

// MinorUnitExponent is the number of fractional digits kept for amounts (cents).
const MinorUnitExponent = 2

// ToMinorUnits converts a decimal amount to integer cents, rounding half away
// from zero: 50.005 becomes 5001.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(MinorUnitExponent).Shift(MinorUnitExponent).IntPart()
}

// FromMinorUnits converts integer cents back to an exact decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(NormalizeZero(cents), -MinorUnitExponent)
}

// RoundToMinorUnits rounds an amount to the precision stored by the ledger.
func RoundToMinorUnits(amount decimal.Decimal) decimal.Decimal {
	return FromMinorUnits(ToMinorUnits(amount))
}

// NormalizeZero maps any zero result to the canonical positive zero.
func NormalizeZero(cents int64) int64 {
	if cents == 0 {
		return 0
	}
	return cents
}
