// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package effects

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultGasUnitTime is the wall time a handler may spend per unit of gas.
const DefaultGasUnitTime = 10 * time.Microsecond

var (
	ErrOutOfGas      = errors.New("out of gas")
	ErrUnknownTarget = errors.New("unknown call target")
)

// Handler executes calldata for a registered target. gas is the budget the
// handler may consume.
type Handler func(ctx context.Context, data []byte, gas uint64) error

// Router dispatches calls to registered targets. Every call runs under a
// deadline of gas * gasUnitTime; a handler still running at the deadline is
// reported as out of gas.
type Router struct {
	mu          sync.RWMutex
	handlers    map[common.Address]Handler
	gasUnitTime time.Duration
}

func NewRouter(gasUnitTime time.Duration) *Router {
	if gasUnitTime <= 0 {
		gasUnitTime = DefaultGasUnitTime
	}
	return &Router{
		handlers:    make(map[common.Address]Handler),
		gasUnitTime: gasUnitTime,
	}
}

func (r *Router) RegisterHandler(target common.Address, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[target] = handler
}

func (r *Router) budget(gas uint64) time.Duration {
	if gas > uint64(math.MaxInt64/int64(r.gasUnitTime)) {
		return math.MaxInt64
	}
	return time.Duration(gas) * r.gasUnitTime
}

// Call never panics: a panicking handler is reported as a failed call.
func (r *Router) Call(ctx context.Context, target common.Address, data []byte, gas uint64) error {
	if gas == 0 {
		return ErrOutOfGas
	}

	r.mu.RLock()
	handler, ok := r.handlers[target]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	ctx, cancel := context.WithTimeout(ctx, r.budget(gas))
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("call to %s panicked: %v", target, rec)
			}
		}()
		done <- handler(ctx, data, gas)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: call to %s exceeded %d gas", ErrOutOfGas, target, gas)
	}
	return err
}
