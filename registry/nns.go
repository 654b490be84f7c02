package registry

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nns"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// NNSContractID is the ID of the NNS contract which is always deployed first.
const NNSContractID = 1

// DefaultZone is the NNS zone module domains are registered in.
const DefaultZone = "paychan"

// ContractStateGetter is the interface required for contract state resolution
// using a known contract ID.
type ContractStateGetter interface {
	GetContractStateByID(int32) (*state.Contract, error)
}

// Invoker performs test invocations of the NNS contract.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// InferNNSHash returns address of the NNS contract assuming it has
// [NNSContractID].
func InferNNSHash(sg ContractStateGetter) (util.Uint160, error) {
	c, err := sg.GetContractStateByID(NNSContractID)
	if err != nil {
		return util.Uint160{}, err
	}

	return c.Hash, nil
}

// ResolveNNS resolves owner addresses of the named modules through TXT
// records of '<name>.<zone>' domains. Records may hold either Neo address or
// LE HEX string, the first decodable one is used.
func ResolveNNS(inv Invoker, nnsHash util.Uint160, zone string, names ...string) (*Registry, error) {
	var r Registry

	for _, name := range names {
		addr, err := resolveDomain(inv, nnsHash, name+"."+zone)
		if err != nil {
			return nil, fmt.Errorf("resolve module '%s': %w", name, err)
		}

		r.Add(name, addr)
	}

	return &r, nil
}

func resolveDomain(inv Invoker, nnsHash util.Uint160, domain string) (util.Uint160, error) {
	recs, err := unwrap.ArrayOfUTF8Strings(inv.Call(nnsHash, "resolve", domain, int64(nns.TXT)))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("resolve TXT records of '%s': %w", domain, err)
	}

	for i := range recs {
		addr, err := ParseAddress(recs[i])
		if err == nil {
			return addr, nil
		}
	}

	return util.Uint160{}, errors.New("no valid address records")
}
