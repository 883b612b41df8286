package api

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
)

// MaxRequestTTL bounds how far in the future a request deadline may lie. It
// keeps a request from outliving its entry in the replay cache.
const MaxRequestTTL = time.Hour

var (
	ErrRequestExpired  = errors.New("request deadline passed")
	ErrDeadlineTooFar  = errors.New("request deadline too far in the future")
	ErrRequestReplayed = errors.New("request already submitted")
	ErrUnauthenticated = errors.New("request signature invalid")
)

// DepositRequestHash is signed by the sender of a deposit request.
func DepositRequestHash(bridge, recipient common.Address, value *big.Int, deadline uint64) common.Hash {
	return message.SigningHash(crypto.Keccak256(
		[]byte("deposit"),
		bridge.Bytes(),
		recipient.Bytes(),
		math.U256Bytes(new(big.Int).Set(value)),
		math.U256Bytes(new(big.Int).SetUint64(deadline)),
	))
}

// CommitRequestHash is signed by the sender of a commit request.
func CommitRequestHash(bridge common.Address, id common.Hash, executor common.Address, data []byte, bond *big.Int, deadline uint64) common.Hash {
	return message.SigningHash(crypto.Keccak256(
		[]byte("commit"),
		bridge.Bytes(),
		id.Bytes(),
		executor.Bytes(),
		crypto.Keccak256(data),
		math.U256Bytes(new(big.Int).Set(bond)),
		math.U256Bytes(new(big.Int).SetUint64(deadline)),
	))
}

// AffirmationRequestHash is signed by a validator affirming an inbound
// transfer, or by the mediator delivering one.
func AffirmationRequestHash(recipient common.Address, value *big.Int, id common.Hash) common.Hash {
	return message.SigningHash(message.AffirmationHash(recipient, value, id).Bytes())
}

// requestGuard rejects expired requests and replays of recently seen
// requests.
type requestGuard struct {
	verifier *signature.Verifier
	seen     *lru.Cache[common.Hash, struct{}]
	now      func() time.Time
}

func newRequestGuard(verifier *signature.Verifier, size int, now func() time.Time) (*requestGuard, error) {
	seen, err := lru.New[common.Hash, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &requestGuard{verifier: verifier, seen: seen, now: now}, nil
}

// authenticate checks that sig over hash was made by claimed.
func (g *requestGuard) authenticate(hash common.Hash, sig []byte, claimed common.Address) error {
	signer, err := g.verifier.Recover(hash, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if signer != claimed {
		return fmt.Errorf("%w: signed by %s, not %s", ErrUnauthenticated, signer, claimed)
	}
	return nil
}

// once authenticates a deadline bound request and records it as seen.
func (g *requestGuard) once(hash common.Hash, sig []byte, claimed common.Address, deadline uint64) error {
	now := uint64(g.now().Unix())
	if now > deadline {
		return ErrRequestExpired
	}
	if deadline-now > uint64(MaxRequestTTL/time.Second) {
		return fmt.Errorf("%w: %d, at most %s ahead", ErrDeadlineTooFar, deadline, MaxRequestTTL)
	}
	if g.seen.Contains(hash) {
		return ErrRequestReplayed
	}
	if err := g.authenticate(hash, sig, claimed); err != nil {
		return err
	}
	g.seen.Add(hash, struct{}{})
	return nil
}
