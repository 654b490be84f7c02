package registry_test

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	var r registry.Registry
	require.False(t, r.Exists("etoken"))
	require.Zero(t, r.Len())

	r.Add("etoken", util.Uint160{1})
	r.Add("channel", util.Uint160{2})
	r.Add("etoken", util.Uint160{3})

	require.Equal(t, []registry.Entry{
		{Name: "etoken", Address: util.Uint160{3}},
		{Name: "channel", Address: util.Uint160{2}},
	}, r.Entries())

	addr, ok := r.Get("channel")
	require.True(t, ok)
	require.Equal(t, util.Uint160{2}, addr)

	_, ok = r.Get("unknown")
	require.False(t, ok)

	t.Run("entries are copied", func(t *testing.T) {
		es := r.Entries()
		es[0].Name = "changed"
		require.True(t, r.Exists("etoken"))
	})

	t.Run("constructor", func(t *testing.T) {
		r := registry.New(
			registry.Entry{Name: "a", Address: util.Uint160{1}},
			registry.Entry{Name: "a", Address: util.Uint160{2}},
		)
		require.Equal(t, 1, r.Len())
		addr, _ := r.Get("a")
		require.Equal(t, util.Uint160{2}, addr)
	})
}

func TestParseAddress(t *testing.T) {
	h := util.Uint160{1, 2, 3, 4, 5}

	for _, s := range []string{
		address.Uint160ToString(h),
		h.StringLE(),
		"0x" + h.StringLE(),
	} {
		res, err := registry.ParseAddress(s)
		require.NoError(t, err, s)
		require.Equal(t, h, res)
	}

	_, err := registry.ParseAddress("not an address")
	require.Error(t, err)
}
