// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package limits

import (
	"errors"
	"fmt"
	"math/big"
)

// MaxDecimalShift bounds |shift| so that 10^shift stays within 256 bits.
const MaxDecimalShift = 76

var ErrInvalidDecimalShift = errors.New("invalid decimal shift")

// DecimalShift rescales values between the foreign and home denominations:
// home = foreign * 10^shift. Negative shifts divide.
type DecimalShift int

func NewDecimalShift(shift int) (DecimalShift, error) {
	if shift > MaxDecimalShift || shift < -MaxDecimalShift {
		return 0, fmt.Errorf("%w: |%d| > %d", ErrInvalidDecimalShift, shift, MaxDecimalShift)
	}
	return DecimalShift(shift), nil
}

func (s DecimalShift) factor() *big.Int {
	exp := int64(s)
	if exp < 0 {
		exp = -exp
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
}

// ToHome converts a foreign denominated value.
func (s DecimalShift) ToHome(value *big.Int) *big.Int {
	switch {
	case s > 0:
		return new(big.Int).Mul(value, s.factor())
	case s < 0:
		return new(big.Int).Quo(value, s.factor())
	}
	return new(big.Int).Set(value)
}

// ToForeign converts a home denominated value.
func (s DecimalShift) ToForeign(value *big.Int) *big.Int {
	switch {
	case s > 0:
		return new(big.Int).Quo(value, s.factor())
	case s < 0:
		return new(big.Int).Mul(value, s.factor())
	}
	return new(big.Int).Set(value)
}
