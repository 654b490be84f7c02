package ledger_test

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/channel"
	"github.com/nspcc-dev/paychan/ledger"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/nspcc-dev/paychan/resource"
	"github.com/nspcc-dev/paychan/state"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var channelOwner = util.Uint160{0xcc}

func newAccount(t *testing.T) *ledger.Account {
	key, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return ledger.NewAccountFromKey(key)
}

// accountState returns decoded state of the account holding the channel
// resource referencing other.
func accountState(t *testing.T, other util.Uint160, coin uint64) *state.AccountState {
	s := state.NewSnapshot()
	s.Put(resource.PathOf(resource.KindChannelBalance, channelOwner),
		resource.Encode(&resource.ChannelBalance{Other: other, Coin: coin}))

	reg := registry.New(registry.Entry{Name: resource.ModuleChannel, Address: channelOwner})

	return state.NewDecoder(zaptest.NewLogger(t), reg).Decode(s)
}

func emptyState(t *testing.T) *state.AccountState {
	reg := registry.New(registry.Entry{Name: resource.ModuleChannel, Address: channelOwner})
	return state.NewDecoder(zaptest.NewLogger(t), reg).Decode(state.NewSnapshot())
}

func TestChannelBookkeeping(t *testing.T) {
	a := ledger.NewAccount(util.Uint160{1}, nil, 5, ledger.StatusPersisted)

	cp1, cp2 := util.Uint160{3}, util.Uint160{2}

	_, ok := a.Channel(cp1)
	require.False(t, ok)

	err := a.WithChannel(cp1, func(*channel.Channel) error { return nil })
	require.ErrorIs(t, err, ledger.ErrChannelNotFound)

	ch1 := channel.New(a.Address, cp1)
	ch2 := channel.New(a.Address, cp2)
	a.InsertChannel(ch1)
	a.InsertChannel(ch2)

	got, ok := a.Channel(cp1)
	require.True(t, ok)
	require.Same(t, ch1, got)

	require.Equal(t, []*channel.Channel{ch2, ch1}, a.Channels())

	replacement := channel.New(a.Address, cp1)
	a.InsertChannel(replacement)
	got, _ = a.Channel(cp1)
	require.Same(t, replacement, got)
	require.Len(t, a.Channels(), 2)

	require.True(t, a.RemoveChannel(cp1))
	require.False(t, a.RemoveChannel(cp1))
	require.Equal(t, []*channel.Channel{ch2}, a.Channels())

	require.Nil(t, a.Signer())
}

func TestReconcile(t *testing.T) {
	alice, bob := newAccount(t), newAccount(t)

	_, err := alice.Reconcile(bob.Address, emptyState(t), emptyState(t))
	require.ErrorIs(t, err, ledger.ErrChannelNotFound)

	// only counterparty opened so far
	ch, err := alice.Reconcile(bob.Address, emptyState(t), accountState(t, alice.Address, 50))
	require.NoError(t, err)
	require.Equal(t, channel.Unestablished, ch.SelfStatus().Kind)
	require.Equal(t, channel.Open, ch.OtherStatus().Kind)

	again, err := alice.Reconcile(bob.Address, accountState(t, bob.Address, 100), accountState(t, alice.Address, 50))
	require.NoError(t, err)
	require.Same(t, ch, again)
	require.True(t, ch.IsReady())

	coin, _ := ch.SelfStatus().Coin()
	require.EqualValues(t, 100, coin)
}

func TestAccountProtocol(t *testing.T) {
	alice, bob := newAccount(t), newAccount(t)

	aliceState := accountState(t, bob.Address, 100)
	bobState := accountState(t, alice.Address, 50)

	_, err := alice.Transfer(bob.Address, 30)
	require.ErrorIs(t, err, ledger.ErrChannelNotFound)

	_, err = alice.Reconcile(bob.Address, aliceState, bobState)
	require.NoError(t, err)
	_, err = bob.Reconcile(alice.Address, bobState, aliceState)
	require.NoError(t, err)

	req, err := alice.Transfer(bob.Address, 30)
	require.NoError(t, err)
	require.NotEmpty(t, req.Signature)

	conf, err := bob.Conform(req)
	require.NoError(t, err)
	require.Equal(t, bob.Address, conf.Sender)

	require.NoError(t, alice.ProcessConform(conf))

	require.Equal(t, []channel.TransferRequest{req}, alice.Requests())
	require.Equal(t, []channel.TransferConform{conf}, alice.Conforms())
	require.Equal(t, []channel.TransferRequest{req}, bob.Requests())
	require.Equal(t, []channel.TransferConform{conf}, bob.Conforms())

	ch, _ := alice.Channel(bob.Address)
	data, ok := ch.Data()
	require.True(t, ok)
	require.EqualValues(t, 70, data.SelfBalance)
	require.EqualValues(t, 80, data.OtherBalance)

	t.Run("failure is not recorded", func(t *testing.T) {
		_, err := bob.Conform(req)
		require.ErrorIs(t, err, channel.ErrVersionMismatch)
		require.Len(t, bob.Requests(), 1)
		require.Len(t, bob.Conforms(), 1)
	})
}
