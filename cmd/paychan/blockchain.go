package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/config"
	"github.com/nspcc-dev/paychan/registry"
)

// wrapper over rpcNeo providing blockchain services needed for the client.
type remoteBlockchain struct {
	rpc *rpcclient.Client
	inv *invoker.Invoker

	currentBlock uint32
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection.
func newRemoteBlockChain(ctx context.Context, cfg config.RPC) (*remoteBlockchain, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing Neo RPC endpoint (config or %s)", config.EnvRPCEndpoint)
	}

	c, err := rpcclient.New(ctx, cfg.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.DialTimeout,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	nLatestBlock, err := c.GetBlockCount()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("get number of the latest block: %w", err)
	}

	return &remoteBlockchain{
		rpc:          c,
		inv:          invoker.New(c, nil),
		currentBlock: nLatestBlock,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// resolveModules resolves addresses of the named modules via NNS.
func (x *remoteBlockchain) resolveModules(zone string, names []string) (*registry.Registry, error) {
	nnsHash, err := registry.InferNNSHash(x.rpc)
	if err != nil {
		return nil, fmt.Errorf("inferring nns: %w", err)
	}

	return registry.ResolveNNS(x.inv, nnsHash, zone, names...)
}

// iterateAccountStorage iterates over all storage items of the account
// referenced by given address at the state of the penult block and passes them
// into f. iterateAccountStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateAccountStorage(acc util.Uint160, f func(key, value []byte) error) error {
	if x.currentBlock == 0 {
		return fmt.Errorf("empty blockchain")
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(x.currentBlock - 1)
	if err != nil {
		return fmt.Errorf("get state root at penult block #%d: %w", x.currentBlock-1, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, acc, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested account at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated || len(res.Results) == 0 {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
