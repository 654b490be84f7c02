package channel_test

import (
	"encoding/hex"
	"slices"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/channel"
	"github.com/stretchr/testify/require"
)

func TestMessageEncoding(t *testing.T) {
	req := channel.TransferRequest{
		Sender:       util.Uint160{1, 2, 3},
		Version:      7,
		Amount:       30,
		SelfBalance:  70,
		OtherBalance: 80,
		Signature:    []byte{0xde, 0xad},
	}

	t.Run("request", func(t *testing.T) {
		s := channel.EncodeRequest(req)

		res, err := channel.DecodeRequest(s)
		require.NoError(t, err)
		require.Equal(t, req, res)
		require.Equal(t, s, channel.EncodeRequest(res))
	})

	t.Run("unsigned request", func(t *testing.T) {
		unsigned := req
		unsigned.Signature = nil

		res, err := channel.DecodeRequest(channel.EncodeRequest(unsigned))
		require.NoError(t, err)
		require.Equal(t, unsigned, res)
	})

	t.Run("conform", func(t *testing.T) {
		conf := channel.TransferConform{
			Sender:    util.Uint160{4, 5, 6},
			Signature: []byte{0xbe, 0xef},
			Request:   req,
		}

		s := channel.EncodeConform(conf)

		res, err := channel.DecodeConform(s)
		require.NoError(t, err)
		require.Equal(t, conf, res)
		require.Equal(t, s, channel.EncodeConform(res))
	})
}

func TestMessageDecodingFailures(t *testing.T) {
	req := channel.TransferRequest{Version: 1, Signature: []byte{1}}
	b := req.Bytes()

	t.Run("invalid hex", func(t *testing.T) {
		_, err := channel.DecodeRequest("not hex")
		require.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		for i := range b {
			_, err := channel.DecodeRequest(hex.EncodeToString(b[:i]))
			require.Error(t, err, i)
		}
	})

	t.Run("trailing", func(t *testing.T) {
		_, err := channel.DecodeRequest(hex.EncodeToString(append(b, 0)))
		require.Error(t, err)
	})

	t.Run("oversized signature", func(t *testing.T) {
		big := req
		big.Signature = make([]byte, channel.MaxSignatureSize+1)

		_, err := channel.DecodeRequest(channel.EncodeRequest(big))
		require.Error(t, err)
	})

	t.Run("non-minimal signature length", func(t *testing.T) {
		signed := req.Bytes()
		prefix := signed[:len(signed)-2] // 1-byte length and 1-byte signature

		for _, tail := range [][]byte{
			{0xfd, 0x01, 0x00, 0x01},
			{0xfe, 0x01, 0x00, 0x00, 0x00, 0x01},
		} {
			_, err := channel.DecodeRequest(hex.EncodeToString(append(slices.Clone(prefix), tail...)))
			require.Error(t, err)
		}

		unsigned := channel.TransferRequest{Version: 1}
		b := unsigned.Bytes()
		b = append(b[:len(b)-1], 0xfd, 0x00, 0x00)

		_, err := channel.DecodeRequest(hex.EncodeToString(b))
		require.Error(t, err)

		conf := channel.TransferConform{Request: unsigned}
		cb := conf.Bytes()
		cb = append(cb[:len(cb)-1], 0xfd, 0x00, 0x00)

		_, err = channel.DecodeConform(hex.EncodeToString(cb))
		require.Error(t, err)
	})

	t.Run("request as conform", func(t *testing.T) {
		_, err := channel.DecodeConform(hex.EncodeToString(b))
		require.Error(t, err)
	})
}
