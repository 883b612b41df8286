package bridge

import (
	"errors"

	"github.com/ChainSafe/utopia-relay/relayer/effects"
	"github.com/ChainSafe/utopia-relay/relayer/ledger"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/merkle"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/optimistic"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/relayer/validators"
)

// ErrorClass groups failed calls for callers and metrics.
type ErrorClass string

const (
	ValidationError    ErrorClass = "validation"
	AuthorizationError ErrorClass = "authorization"
	IdempotencyError   ErrorClass = "idempotency"
	LimitError         ErrorClass = "limit"
	NotFoundError      ErrorClass = "notFound"
	PreconditionError  ErrorClass = "precondition"
	EffectError        ErrorClass = "effect"
	InternalError      ErrorClass = "internal"
)

var errorClasses = []struct {
	class ErrorClass
	errs  []error
}{
	{IdempotencyError, []error{
		ledger.ErrAlreadyRelayed,
		ledger.ErrAlreadySigned,
		ledger.ErrAlreadyFixed,
		ledger.ErrAlreadyCollected,
		optimistic.ErrCommitExists,
		optimistic.ErrAlreadyRejected,
		validators.ErrAlreadyValidator,
		validators.ErrAlreadyInitialized,
	}},
	{AuthorizationError, []error{
		ErrNotOwner,
		ErrNotMediator,
		ErrSignerMismatch,
		validators.ErrNotValidator,
		validators.ErrValidatorSetExpired,
		validators.ErrRootMismatch,
		signature.ErrNotValidator,
		signature.ErrDuplicateSigner,
		signature.ErrInsufficientSignatures,
	}},
	{LimitError, []error{
		limits.ErrBridgingDisabled,
		limits.ErrBelowMinPerTx,
		limits.ErrAboveMaxPerTx,
		limits.ErrDailyLimitExceeded,
		optimistic.ErrDailyCommitLimit,
	}},
	{NotFoundError, []error{
		ledger.ErrUnknownMessage,
		optimistic.ErrNoCommit,
		limits.ErrLimitsNotSet,
	}},
	{PreconditionError, []error{
		optimistic.ErrChallengeWindow,
		ErrUnsupportedOperation,
	}},
	{EffectError, []error{
		effects.ErrInsufficientBalance,
		effects.ErrRevokedMinter,
		effects.ErrOutOfGas,
		effects.ErrUnknownTarget,
	}},
	{ValidationError, []error{
		ErrZeroRecipient,
		ErrMessageFormat,
		ErrWrongContract,
		message.ErrInvalidLength,
		message.ErrValueOverflow,
		message.ErrGasOverflow,
		message.ErrCallGasPrice,
		signature.ErrMalformedSignatures,
		signature.ErrNoSignatures,
		signature.ErrInvalidV,
		signature.ErrInvalidSignature,
		signature.ErrInvalidThreshold,
		signature.ErrUnsortedEntries,
		merkle.ErrEmptyTree,
		merkle.ErrUnsortedLeaves,
		validators.ErrZeroAddress,
		validators.ErrInvalidThreshold,
		validators.ErrStaleExpiration,
		validators.ErrZeroRoot,
		validators.ErrNoValidatorSet,
		limits.ErrZeroValue,
		limits.ErrInvalidLimits,
		limits.ErrInvalidDecimalShift,
		limits.ErrUnknownDirection,
		optimistic.ErrBondTooLow,
		optimistic.ErrZeroExecutor,
		optimistic.ErrInvalidConfig,
		optimistic.ErrConfigNotInitialized,
		effects.ErrInvalidAmount,
	}},
}

// Classify returns the class of an error returned by a bridge call.
func Classify(err error) ErrorClass {
	for _, c := range errorClasses {
		for _, target := range c.errs {
			if errors.Is(err, target) {
				return c.class
			}
		}
	}
	return InternalError
}
