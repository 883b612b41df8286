// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package limits

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ChainSafe/utopia-relay/store"
)

const SecondsPerDay = 86400

var (
	ErrZeroValue          = errors.New("value must be greater than zero")
	ErrBridgingDisabled   = errors.New("bridging disabled in this direction")
	ErrBelowMinPerTx      = errors.New("value below minimum per transaction")
	ErrAboveMaxPerTx      = errors.New("value above maximum per transaction")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
	ErrInvalidLimits      = errors.New("invalid limits")
	ErrLimitsNotSet       = errors.New("limits not configured")
	ErrUnknownDirection   = errors.New("unknown direction")
)

// Direction selects one of the two independent limit sets.
type Direction uint8

const (
	// Outbound limits value leaving through deposits ("spent").
	Outbound Direction = iota
	// Inbound limits value arriving through executions ("executed").
	Inbound
)

func (d Direction) String() string {
	switch d {
	case Outbound:
		return "outbound"
	case Inbound:
		return "inbound"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "outbound", "spent":
		return Outbound, nil
	case "inbound", "executed":
		return Inbound, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownDirection, s)
}

// CurrentDay is the day index keying the daily totals.
func CurrentDay(now time.Time) uint64 {
	return uint64(now.Unix()) / SecondsPerDay
}

// Limits of one direction. A zero DailyLimit disables the direction.
type Limits struct {
	DailyLimit *big.Int
	MaxPerTx   *big.Int
	MinPerTx   *big.Int
}

func (l Limits) Validate() error {
	if l.DailyLimit == nil || l.MaxPerTx == nil || l.MinPerTx == nil {
		return fmt.Errorf("%w: all limits must be set", ErrInvalidLimits)
	}
	if l.DailyLimit.Sign() < 0 || l.MaxPerTx.Sign() < 0 || l.MinPerTx.Sign() < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidLimits)
	}
	if l.MinPerTx.Cmp(l.MaxPerTx) > 0 {
		return fmt.Errorf("%w: minPerTx %s above maxPerTx %s", ErrInvalidLimits, l.MinPerTx, l.MaxPerTx)
	}
	if l.DailyLimit.Sign() != 0 && l.MaxPerTx.Cmp(l.DailyLimit) > 0 {
		return fmt.Errorf("%w: maxPerTx %s above dailyLimit %s", ErrInvalidLimits, l.MaxPerTx, l.DailyLimit)
	}
	return nil
}

const (
	dailyLimitKey = "limits:%s:daily"
	maxPerTxKey   = "limits:%s:max"
	minPerTxKey   = "limits:%s:min"
	totalKey      = "limits:%s:total:%d"
)

// Limiter accounts value per direction and day. Old days are never touched
// again once the day index moves on.
type Limiter struct{}

func NewLimiter() *Limiter {
	return &Limiter{}
}

func (l *Limiter) Limits(r store.KeyValueReader, dir Direction) (Limits, error) {
	if _, err := r.GetByKey(store.Key(dailyLimitKey, dir)); err != nil {
		if store.IsNotFound(err) {
			return Limits{}, fmt.Errorf("%w: %s", ErrLimitsNotSet, dir)
		}
		return Limits{}, err
	}

	daily, err := store.GetBig(r, store.Key(dailyLimitKey, dir))
	if err != nil {
		return Limits{}, err
	}
	maxPerTx, err := store.GetBig(r, store.Key(maxPerTxKey, dir))
	if err != nil {
		return Limits{}, err
	}
	minPerTx, err := store.GetBig(r, store.Key(minPerTxKey, dir))
	if err != nil {
		return Limits{}, err
	}
	return Limits{DailyLimit: daily, MaxPerTx: maxPerTx, MinPerTx: minPerTx}, nil
}

// Initialize stores limits for a direction unless they are already present.
func (l *Limiter) Initialize(rw store.KeyValueReaderWriter, dir Direction, limits Limits) error {
	_, err := l.Limits(rw, dir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrLimitsNotSet) {
		return err
	}
	if err := limits.Validate(); err != nil {
		return err
	}
	return l.write(rw, dir, limits)
}

func (l *Limiter) write(rw store.KeyValueReaderWriter, dir Direction, limits Limits) error {
	if err := store.SetBig(rw, store.Key(dailyLimitKey, dir), limits.DailyLimit); err != nil {
		return err
	}
	if err := store.SetBig(rw, store.Key(maxPerTxKey, dir), limits.MaxPerTx); err != nil {
		return err
	}
	return store.SetBig(rw, store.Key(minPerTxKey, dir), limits.MinPerTx)
}

// SetDailyLimit must stay at or above maxPerTx unless it is the zero sentinel.
func (l *Limiter) SetDailyLimit(rw store.KeyValueReaderWriter, dir Direction, value *big.Int) error {
	limits, err := l.Limits(rw, dir)
	if err != nil {
		return err
	}
	if value.Sign() < 0 || (value.Sign() != 0 && value.Cmp(limits.MaxPerTx) < 0) {
		return fmt.Errorf("%w: dailyLimit %s below maxPerTx %s", ErrInvalidLimits, value, limits.MaxPerTx)
	}
	return store.SetBig(rw, store.Key(dailyLimitKey, dir), value)
}

// SetMaxPerTx must stay within [minPerTx, dailyLimit].
func (l *Limiter) SetMaxPerTx(rw store.KeyValueReaderWriter, dir Direction, value *big.Int) error {
	limits, err := l.Limits(rw, dir)
	if err != nil {
		return err
	}
	if value.Cmp(limits.DailyLimit) > 0 {
		return fmt.Errorf("%w: maxPerTx %s above dailyLimit %s", ErrInvalidLimits, value, limits.DailyLimit)
	}
	if value.Cmp(limits.MinPerTx) < 0 {
		return fmt.Errorf("%w: maxPerTx %s below minPerTx %s", ErrInvalidLimits, value, limits.MinPerTx)
	}
	return store.SetBig(rw, store.Key(maxPerTxKey, dir), value)
}

// SetMinPerTx must stay at or below maxPerTx.
func (l *Limiter) SetMinPerTx(rw store.KeyValueReaderWriter, dir Direction, value *big.Int) error {
	limits, err := l.Limits(rw, dir)
	if err != nil {
		return err
	}
	if value.Sign() < 0 || value.Cmp(limits.MaxPerTx) > 0 {
		return fmt.Errorf("%w: minPerTx %s above maxPerTx %s", ErrInvalidLimits, value, limits.MaxPerTx)
	}
	return store.SetBig(rw, store.Key(minPerTxKey, dir), value)
}

func (l *Limiter) TotalForDay(r store.KeyValueReader, dir Direction, day uint64) (*big.Int, error) {
	return store.GetBig(r, store.Key(totalKey, dir, day))
}

// Check validates value against the per transaction bounds and the total of
// the current day without recording anything.
func (l *Limiter) Check(r store.KeyValueReader, dir Direction, value *big.Int, now time.Time) error {
	if value == nil || value.Sign() <= 0 {
		return ErrZeroValue
	}
	limits, err := l.Limits(r, dir)
	if err != nil {
		return err
	}
	if limits.DailyLimit.Sign() == 0 {
		return fmt.Errorf("%w: %s", ErrBridgingDisabled, dir)
	}
	if value.Cmp(limits.MinPerTx) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinPerTx, value, limits.MinPerTx)
	}
	if value.Cmp(limits.MaxPerTx) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrAboveMaxPerTx, value, limits.MaxPerTx)
	}

	day := CurrentDay(now)
	total, err := l.TotalForDay(r, dir, day)
	if err != nil {
		return err
	}
	if new(big.Int).Add(total, value).Cmp(limits.DailyLimit) > 0 {
		return fmt.Errorf("%w: %s on day %d, spent %s of %s", ErrDailyLimitExceeded, dir, day, total, limits.DailyLimit)
	}
	return nil
}

// Record checks value and adds it to the total of the current day.
func (l *Limiter) Record(rw store.KeyValueReaderWriter, dir Direction, value *big.Int, now time.Time) error {
	if err := l.Check(rw, dir, value, now); err != nil {
		return err
	}
	day := CurrentDay(now)
	total, err := l.TotalForDay(rw, dir, day)
	if err != nil {
		return err
	}
	return store.SetBig(rw, store.Key(totalKey, dir, day), total.Add(total, value))
}
