package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/dump"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func (x *application) fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Dump storages of the accounts at the latest state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "label",
				Usage:    "Label of the blockchain environment (e.g. 'testnet')",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory to write the dump to (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:     "account",
				Usage:    "Account to dump as 'name=address'",
				Required: true,
			},
		},
		Action: x.fetch,
	}
}

type namedAccount struct {
	name string
	addr util.Uint160
}

func parseNamedAccounts(ss []string) ([]namedAccount, error) {
	res := make([]namedAccount, 0, len(ss))

	for _, s := range ss {
		name, addrStr, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid account '%s', expected 'name=address'", s)
		}

		addr, err := registry.ParseAddress(addrStr)
		if err != nil {
			return nil, fmt.Errorf("account '%s': %w", name, err)
		}

		res = append(res, namedAccount{name: name, addr: addr})
	}

	return res, nil
}

func (x *application) fetch(c *cli.Context) error {
	accs, err := parseNamedAccounts(c.StringSlice("account"))
	if err != nil {
		return err
	}

	dir := x.cfg.Dump.Dir
	if c.IsSet("dir") {
		dir = c.String("dir")
	}

	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}

	b, err := newRemoteBlockChain(c.Context, x.cfg.RPC)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	id := dump.ID{
		Label: c.String("label"),
		Block: b.currentBlock,
	}

	d, err := dump.NewCreator(dir, id)
	if err != nil {
		return fmt.Errorf("init local dumper: %w", err)
	}

	for _, acc := range accs {
		x.log.Info("processing account", zap.String("name", acc.name), zap.Stringer("address", acc.addr))

		s := d.AddAccount(acc.name, acc.addr)

		err = b.iterateAccountStorage(acc.addr, func(k, v []byte) error {
			s.Put(k, v)
			return nil
		})
		if err != nil {
			return fmt.Errorf("iterate '%s' account storage: %w", acc.name, err)
		}
	}

	err = d.Flush()
	if err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}

	x.log.Info("accounts are successfully dumped", zap.String("dir", dir), zap.Stringer("id", id))
	fmt.Fprintln(c.App.Writer, id)

	return nil
}
