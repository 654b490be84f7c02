package channel_test

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/channel"
	"github.com/nspcc-dev/paychan/resource"
	"github.com/stretchr/testify/require"
)

var (
	alice = util.Uint160{0xa1}
	bob   = util.Uint160{0xb0}
)

type constSigner []byte

func (x constSigner) Sign([]byte) []byte { return x }

// openPair returns channels of both parties opened with the given on-chain
// escrow. Resource in the account of one side references the other side.
func openPair(aliceCoin, bobCoin uint64) (*channel.Channel, *channel.Channel) {
	aliceRes := &resource.ChannelBalance{Other: bob, Coin: aliceCoin}
	bobRes := &resource.ChannelBalance{Other: alice, Coin: bobCoin}

	a := channel.New(alice, bob)
	a.UpdateWithResource(aliceRes, nil)
	a.UpdateWithResource(bobRes, nil)

	b := channel.New(bob, alice)
	b.UpdateWithResource(bobRes, nil)
	b.UpdateWithResource(aliceRes, nil)

	return a, b
}

func TestUpdateWithResource(t *testing.T) {
	c := channel.New(alice, bob)
	require.Equal(t, channel.Unestablished, c.SelfStatus().Kind)
	require.Equal(t, channel.Unestablished, c.OtherStatus().Kind)
	require.False(t, c.IsReady())

	own := &resource.ChannelBalance{Other: bob, Coin: 100}
	c.UpdateWithResource(own, nil)
	require.Equal(t, channel.Open, c.SelfStatus().Kind)
	require.Equal(t, channel.Unestablished, c.OtherStatus().Kind)
	require.False(t, c.IsReady())

	coin, ok := c.SelfStatus().Coin()
	require.True(t, ok)
	require.EqualValues(t, 100, coin)

	c.UpdateWithResource(&resource.ChannelBalance{Other: alice, Coin: 50}, nil)
	require.True(t, c.IsReady())

	t.Run("unrelated", func(t *testing.T) {
		c.UpdateWithResource(&resource.Token{Value: 1}, nil)
		c.UpdateWithResource(&resource.ChannelBalance{Other: util.Uint160{0xff}, Coin: 1}, nil)
		require.Equal(t, channel.OpenStatus(own), c.SelfStatus())
		require.True(t, c.IsReady())
	})

	t.Run("nil", func(t *testing.T) {
		require.NotPanics(t, func() {
			c.UpdateWithResource(nil, nil)
			c.UpdateWithResource((*resource.ChannelBalance)(nil), nil)
			c.UpdateWithResource((*resource.ClosedChannel)(nil), nil)
		})
		require.True(t, c.IsReady())
	})

	t.Run("closed", func(t *testing.T) {
		proof := &resource.Proof{Version: 2, SelfBalance: 10, OtherBalance: 20}
		closed := &resource.ClosedChannel{Other: alice, Coin: 50, Height: 7}

		c.UpdateWithResource(closed, proof)
		require.False(t, c.IsReady())
		require.Equal(t, channel.Closed, c.OtherStatus().Kind)
		require.Equal(t, closed, c.OtherStatus().Resource)
		require.Equal(t, proof, c.OtherStatus().Proof)

		_, ok := c.OtherStatus().Coin()
		require.False(t, ok)
	})
}

func TestNotReady(t *testing.T) {
	c := channel.New(alice, bob)
	c.UpdateWithResource(&resource.ChannelBalance{Other: bob, Coin: 100}, nil)

	_, err := c.Transfer(1, nil)
	require.ErrorIs(t, err, channel.ErrNotReady)

	_, err = c.Conform(channel.TransferRequest{Version: 1}, nil)
	require.ErrorIs(t, err, channel.ErrNotReady)

	err = c.ProcessTransferConform(channel.TransferConform{})
	require.ErrorIs(t, err, channel.ErrNotReady)

	_, ok := c.Data()
	require.False(t, ok)
}

func TestFirstTransfer(t *testing.T) {
	a, b := openPair(100, 50)

	req, err := a.Transfer(30, nil)
	require.NoError(t, err)
	require.Equal(t, alice, req.Sender)
	require.EqualValues(t, 1, req.Version)
	require.EqualValues(t, 30, req.Amount)
	require.EqualValues(t, 70, req.SelfBalance)
	require.EqualValues(t, 80, req.OtherBalance)
	require.Empty(t, req.Signature)

	_, ok := a.Data()
	require.False(t, ok, "requester state must change on conform only")

	conf, err := b.Conform(req, nil)
	require.NoError(t, err)
	require.Equal(t, bob, conf.Sender)
	require.Equal(t, req, conf.Request)

	bd, ok := b.Data()
	require.True(t, ok)
	require.Equal(t, channel.LocalData{Version: 1, SelfBalance: 80, OtherBalance: 70}, bd)

	require.NoError(t, a.ProcessTransferConform(conf))

	ad, ok := a.Data()
	require.True(t, ok)
	require.Equal(t, channel.LocalData{Version: 1, SelfBalance: 70, OtherBalance: 80}, ad)

	args, ok := a.CloseArgs()
	require.True(t, ok)
	require.Equal(t, ad, args)
}

func TestTransferSequence(t *testing.T) {
	a, b := openPair(100, 50)

	step := func(from, to *channel.Channel, amount uint64) {
		req, err := from.Transfer(amount, nil)
		require.NoError(t, err)

		conf, err := to.Conform(req, nil)
		require.NoError(t, err)

		require.NoError(t, from.ProcessTransferConform(conf))
	}

	step(a, b, 30)
	step(a, b, 20)
	step(b, a, 90)

	ad, _ := a.Data()
	bd, _ := b.Data()

	require.EqualValues(t, 3, ad.Version)
	require.EqualValues(t, 3, bd.Version)
	require.EqualValues(t, 140, ad.SelfBalance)
	require.EqualValues(t, 10, ad.OtherBalance)
	require.Equal(t, ad.SelfBalance, bd.OtherBalance)
	require.Equal(t, ad.OtherBalance, bd.SelfBalance)

	total, ok := ad.TotalBalance()
	require.True(t, ok)
	require.EqualValues(t, 150, total)
}

func TestTransferInsufficientBalance(t *testing.T) {
	a, b := openPair(100, 50)

	_, err := a.Transfer(101, nil)
	require.ErrorIs(t, err, channel.ErrInsufficientBalance)

	req, err := a.Transfer(100, nil)
	require.NoError(t, err)

	conf, err := b.Conform(req, nil)
	require.NoError(t, err)
	require.NoError(t, a.ProcessTransferConform(conf))

	_, err = a.Transfer(1, nil)
	require.ErrorIs(t, err, channel.ErrInsufficientBalance)

	_, err = a.Transfer(0, nil)
	require.NoError(t, err)
}

func TestConformFirstTransferChecks(t *testing.T) {
	valid := channel.TransferRequest{
		Sender:       alice,
		Version:      1,
		Amount:       30,
		SelfBalance:  70,
		OtherBalance: 80,
	}

	for _, tc := range []struct {
		name   string
		mutate func(*channel.TransferRequest)
		err    error
	}{
		{"version 0", func(r *channel.TransferRequest) { r.Version = 0 }, channel.ErrVersionMismatch},
		{"version 2", func(r *channel.TransferRequest) { r.Version = 2 }, channel.ErrVersionMismatch},
		{"amount exceeds escrow", func(r *channel.TransferRequest) {
			r.Amount, r.SelfBalance, r.OtherBalance = 101, 0, 151
		}, channel.ErrInsufficientBalance},
		{"total", func(r *channel.TransferRequest) { r.SelfBalance = 71 }, channel.ErrBalanceMismatch},
		{"claimed balance", func(r *channel.TransferRequest) {
			r.SelfBalance, r.OtherBalance = 60, 90
		}, channel.ErrBalanceMismatch},
		{"overflow", func(r *channel.TransferRequest) {
			r.SelfBalance, r.OtherBalance = ^uint64(0), 1
		}, channel.ErrBalanceMismatch},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, b := openPair(100, 50)

			req := valid
			tc.mutate(&req)

			_, err := b.Conform(req, nil)
			require.ErrorIs(t, err, tc.err)

			_, ok := b.Data()
			require.False(t, ok)
		})
	}
}

func TestConformWithLocalData(t *testing.T) {
	setup := func(t *testing.T) (*channel.Channel, *channel.Channel) {
		a, b := openPair(100, 50)

		req, err := a.Transfer(30, nil)
		require.NoError(t, err)
		conf, err := b.Conform(req, nil)
		require.NoError(t, err)
		require.NoError(t, a.ProcessTransferConform(conf))

		return a, b
	}

	t.Run("valid", func(t *testing.T) {
		a, b := setup(t)

		before, _ := b.Data()

		req, err := a.Transfer(10, nil)
		require.NoError(t, err)
		require.EqualValues(t, 2, req.Version)
		require.EqualValues(t, 60, req.SelfBalance)
		require.EqualValues(t, 90, req.OtherBalance)

		_, err = b.Conform(req, nil)
		require.NoError(t, err)

		after, _ := b.Data()
		require.EqualValues(t, 2, after.Version)

		oldTotal, _ := before.TotalBalance()
		newTotal, _ := after.TotalBalance()
		require.Equal(t, oldTotal, newTotal)
	})

	for _, tc := range []struct {
		name   string
		mutate func(*channel.TransferRequest)
		err    error
	}{
		{"replay", func(r *channel.TransferRequest) { r.Version = 1 }, channel.ErrVersionMismatch},
		{"skip", func(r *channel.TransferRequest) { r.Version = 3 }, channel.ErrVersionMismatch},
		{"claimed balance", func(r *channel.TransferRequest) {
			r.SelfBalance, r.OtherBalance = 59, 91
		}, channel.ErrBalanceMismatch},
		{"total", func(r *channel.TransferRequest) { r.SelfBalance = 61 }, channel.ErrBalanceMismatch},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a, b := setup(t)
			before, _ := b.Data()

			req, err := a.Transfer(10, nil)
			require.NoError(t, err)
			tc.mutate(&req)

			_, err = b.Conform(req, nil)
			require.ErrorIs(t, err, tc.err)

			after, _ := b.Data()
			require.Equal(t, before, after)
		})
	}
}

func TestSignatures(t *testing.T) {
	a, b := openPair(100, 50)

	req, err := a.Transfer(30, constSigner("alice"))
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), req.Signature)

	conf, err := b.Conform(req, constSigner("bob"))
	require.NoError(t, err)
	require.Equal(t, []byte("bob"), conf.Signature)

	bd, _ := b.Data()
	require.Equal(t, []byte("bob"), bd.SelfSignature)
	require.Equal(t, []byte("alice"), bd.OtherSignature)

	require.NoError(t, a.ProcessTransferConform(conf))

	ad, _ := a.Data()
	require.Equal(t, []byte("alice"), ad.SelfSignature)
	require.Equal(t, []byte("bob"), ad.OtherSignature)

	// returned copies do not alias channel state
	ad.SelfSignature[0] = 'x'
	again, _ := a.Data()
	require.Equal(t, []byte("alice"), again.SelfSignature)
}

func TestKeySigner(t *testing.T) {
	key, err := keys.NewPrivateKey()
	require.NoError(t, err)

	a, _ := openPair(100, 50)

	req, err := a.Transfer(1, channel.KeySigner{Key: key})
	require.NoError(t, err)
	require.Len(t, req.Signature, keys.SignatureLen)

	unsigned := req
	unsigned.Signature = nil
	require.True(t, key.PublicKey().Verify(req.Signature, signedHash(unsigned)))
}

// signedHash returns digest of the request fields preceding the signature.
func signedHash(req channel.TransferRequest) []byte {
	b := req.Bytes()
	return hash.Sha256(b[:len(b)-1]).BytesBE()
}

func TestCloseArgsWithoutData(t *testing.T) {
	a, _ := openPair(1, 1)

	_, ok := a.CloseArgs()
	require.False(t, ok)
}
