package limits_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/ChainSafe/utopia-relay/relayer/limits"
)

type DecimalShiftTestSuite struct {
	suite.Suite
}

func TestRunDecimalShiftTestSuite(t *testing.T) {
	suite.Run(t, new(DecimalShiftTestSuite))
}

func (s *DecimalShiftTestSuite) Test_PositiveShift() {
	shift, err := limits.NewDecimalShift(2)
	s.Nil(err)

	s.Equal("12300", shift.ToHome(big.NewInt(123)).String())
	s.Equal("1", shift.ToForeign(big.NewInt(199)).String())
}

func (s *DecimalShiftTestSuite) Test_NegativeShift() {
	shift, err := limits.NewDecimalShift(-12)
	s.Nil(err)

	s.Equal("1", shift.ToHome(big.NewInt(1e12)).String())
	s.Equal("0", shift.ToHome(big.NewInt(999)).String())
	s.Equal("1000000000000", shift.ToForeign(big.NewInt(1)).String())
}

func (s *DecimalShiftTestSuite) Test_ZeroShiftCopies() {
	shift, err := limits.NewDecimalShift(0)
	s.Nil(err)
	value := big.NewInt(5)

	home := shift.ToHome(value)
	home.SetInt64(6)

	s.Equal("5", value.String())
}

func (s *DecimalShiftTestSuite) Test_Bounds() {
	_, err := limits.NewDecimalShift(limits.MaxDecimalShift)
	s.Nil(err)
	_, err = limits.NewDecimalShift(-limits.MaxDecimalShift)
	s.Nil(err)

	_, err = limits.NewDecimalShift(limits.MaxDecimalShift + 1)
	s.ErrorIs(err, limits.ErrInvalidDecimalShift)
	_, err = limits.NewDecimalShift(-limits.MaxDecimalShift - 1)
	s.ErrorIs(err, limits.ErrInvalidDecimalShift)
}

func TestDecimalShiftRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-18, 18).Draw(t, "shift")
		v := rapid.Int64Range(0, 1<<40).Draw(t, "value")
		shift, err := limits.NewDecimalShift(n)
		if err != nil {
			t.Fatal(err)
		}
		value := big.NewInt(v)

		// scaling up first never loses precision
		var back *big.Int
		if n >= 0 {
			back = shift.ToForeign(shift.ToHome(value))
		} else {
			back = shift.ToHome(shift.ToForeign(value))
		}
		if back.Cmp(value) != 0 {
			t.Fatalf("round trip of %d with shift %d returned %s", v, n, back)
		}
	})
}
