package registry_test

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/stretchr/testify/require"
)

type stateGetter struct {
	f func(int32) (*state.Contract, error)
}

func (s stateGetter) GetContractStateByID(id int32) (*state.Contract, error) {
	return s.f(id)
}

func TestInferNNSHash(t *testing.T) {
	var sg stateGetter
	sg.f = func(int32) (*state.Contract, error) {
		return nil, errors.New("bad")
	}
	_, err := registry.InferNNSHash(sg)
	require.Error(t, err)

	sg.f = func(id int32) (*state.Contract, error) {
		require.EqualValues(t, registry.NNSContractID, id)
		return &state.Contract{
			ContractBase: state.ContractBase{
				Hash: util.Uint160{0x01, 0x02, 0x03},
			},
		}, nil
	}
	h, err := registry.InferNNSHash(sg)
	require.NoError(t, err)
	require.Equal(t, util.Uint160{0x01, 0x02, 0x03}, h)
}

type testInv struct {
	err     error
	records map[string][]string
}

func (t *testInv) Call(_ util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	if t.err != nil {
		return nil, t.err
	}

	domain := params[0].(string)

	var items []stackitem.Item
	for _, rec := range t.records[domain] {
		items = append(items, stackitem.Make(rec))
	}

	return &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(items)},
	}, nil
}

func TestResolveNNS(t *testing.T) {
	nnsHash := util.Uint160{0xff}
	tokenOwner := util.Uint160{1, 2, 3}
	channelOwner := util.Uint160{4, 5, 6}

	inv := &testInv{
		records: map[string][]string{
			"etoken.paychan":  {tokenOwner.StringLE()},
			"channel.paychan": {"garbage", address.Uint160ToString(channelOwner)},
			"empty.paychan":   {},
		},
	}

	r, err := registry.ResolveNNS(inv, nnsHash, registry.DefaultZone, "etoken", "channel")
	require.NoError(t, err)
	require.Equal(t, []registry.Entry{
		{Name: "etoken", Address: tokenOwner},
		{Name: "channel", Address: channelOwner},
	}, r.Entries())

	_, err = registry.ResolveNNS(inv, nnsHash, registry.DefaultZone, "empty")
	require.Error(t, err)

	inv.err = errors.New("bad")
	_, err = registry.ResolveNNS(inv, nnsHash, registry.DefaultZone, "etoken")
	require.Error(t, err)
}
