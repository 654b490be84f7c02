package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/dump"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/nspcc-dev/paychan/resource"
	"github.com/nspcc-dev/paychan/state"
	"github.com/urfave/cli/v2"
)

// dumpFlags returns flags referencing the dump.
func dumpFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Directory with dumps (overrides config)",
		},
		&cli.StringFlag{
			Name:     "label",
			Usage:    "Label of the dump",
			Required: true,
		},
		&cli.UintFlag{
			Name:     "height",
			Usage:    "Block height of the dump",
			Required: true,
		},
	}
}

func (x *application) resourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "resources",
		Usage: "Decode and print account resources from the dump",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "Account address",
				Required: true,
			},
		}, dumpFlags()...),
		Action: x.printResources,
	}
}

// openDump opens dump referenced by the command flags.
func (x *application) openDump(c *cli.Context) (*dump.Reader, error) {
	dir := x.cfg.Dump.Dir
	if c.IsSet("dir") {
		dir = c.String("dir")
	}

	return dump.Open(dir, dump.ID{
		Label: c.String("label"),
		Block: uint32(c.Uint("height")),
	})
}

// decodeAccount decodes resources of the dumped account.
func (x *application) decodeAccount(r *dump.Reader, reg *registry.Registry, addr util.Uint160) (*state.AccountState, error) {
	s, err := r.Snapshot(addr)
	if err != nil {
		return nil, err
	}

	return state.NewDecoder(x.log, reg).Decode(s), nil
}

func (x *application) printResources(c *cli.Context) error {
	addr, err := registry.ParseAddress(c.String("account"))
	if err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	reg, err := x.registry(c)
	if err != nil {
		return err
	}

	r, err := x.openDump(c)
	if err != nil {
		return err
	}

	st, err := x.decodeAccount(r, reg, addr)
	if err != nil {
		return err
	}

	var n int

	for _, e := range reg.Entries() {
		for _, res := range st.Resources(e.Name) {
			fmt.Fprintf(c.App.Writer, "%s: ", e.Name)
			printResource(c.App.Writer, res)
			n++
		}
	}

	if n == 0 {
		fmt.Fprintln(c.App.Writer, "no resources")
	}

	return nil
}

func printResource(w io.Writer, r resource.Resource) {
	switch v := r.(type) {
	case *resource.Token:
		fmt.Fprintf(w, "%s value=%d\n", v.Kind(), v.Value)
	case *resource.ChannelBalance:
		fmt.Fprintf(w, "%s other=%s coin=%d\n", v.Kind(), address.Uint160ToString(v.Other), v.Coin)
	case *resource.ClosedChannel:
		fmt.Fprintf(w, "%s other=%s coin=%d height=%d\n", v.Kind(), address.Uint160ToString(v.Other), v.Coin, v.Height)
	case *resource.Proof:
		fmt.Fprintf(w, "%s version=%d self_balance=%d other_balance=%d self_signature=%s other_signature=%s\n",
			v.Kind(), v.Version, v.SelfBalance, v.OtherBalance,
			hex.EncodeToString(v.SelfSignature), hex.EncodeToString(v.OtherSignature))
	}
}
