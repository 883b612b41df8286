package effects

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCClient is the subset of the go-ethereum rpc client a call target uses.
type RPCClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// NewRPCHandler forwards calls to a JSON-RPC method taking the calldata and
// the gas budget as hex encoded arguments.
func NewRPCHandler(client RPCClient, method string) Handler {
	return func(ctx context.Context, data []byte, gas uint64) error {
		return client.CallContext(ctx, nil, method, hexutil.Bytes(data), hexutil.Uint64(gas))
	}
}

// DialRPCTarget connects to the JSON-RPC endpoint at url and registers it as
// the handler of target.
func (r *Router) DialRPCTarget(ctx context.Context, target common.Address, url, method string) (*rpc.Client, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	r.RegisterHandler(target, NewRPCHandler(client, method))
	return client, nil
}
