package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/paychan/channel"
	"github.com/nspcc-dev/paychan/ledger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func accountFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "account",
		Usage:    "Local account address",
		Required: true,
	}
}

func (x *application) accountCommand() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage local accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Create new account or import existing key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "wif",
						Usage: "WIF-encoded private key to import",
					},
				},
				Action: x.newAccount,
			},
			{
				Name:   "show",
				Usage:  "Print account with its channels",
				Flags:  []cli.Flag{accountFlag()},
				Action: x.showAccount,
			},
			{
				Name:   "list",
				Usage:  "Print addresses of all local accounts",
				Action: x.listAccounts,
			},
		},
	}
}

func (x *application) newAccount(c *cli.Context) error {
	var key *keys.PrivateKey
	var err error

	if wif := c.String("wif"); wif != "" {
		key, err = keys.NewPrivateKeyFromWIF(wif)
	} else {
		key, err = keys.NewPrivateKey()
	}
	if err != nil {
		return fmt.Errorf("init private key: %w", err)
	}

	s, err := x.openStore()
	if err != nil {
		return err
	}

	defer s.Close()

	a := ledger.NewAccountFromKey(key)

	_, err = s.Get(a.Address)
	if err == nil {
		return fmt.Errorf("account %s already exists", address.Uint160ToString(a.Address))
	}
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		return err
	}

	err = s.Put(a)
	if err != nil {
		return err
	}

	x.log.Info("account created", zap.Stringer("address", a.Address))
	fmt.Fprintln(c.App.Writer, address.Uint160ToString(a.Address))

	return nil
}

func (x *application) showAccount(c *cli.Context) error {
	return x.withAccount(c, func(a *ledger.Account) error {
		printAccount(c.App.Writer, a)
		return nil
	})
}

func (x *application) listAccounts(c *cli.Context) error {
	s, err := x.openStore()
	if err != nil {
		return err
	}

	defer s.Close()

	accs, err := s.List()
	if err != nil {
		return err
	}

	for i := range accs {
		fmt.Fprintln(c.App.Writer, address.Uint160ToString(accs[i].Address))
	}

	return nil
}

func printAccount(w io.Writer, a *ledger.Account) {
	fmt.Fprintf(w, "address: %s\n", address.Uint160ToString(a.Address))
	fmt.Fprintf(w, "script hash: %s\n", a.Address.StringLE())
	fmt.Fprintf(w, "status: %s\n", a.Status)
	fmt.Fprintf(w, "sequence number: %d\n", a.SequenceNumber)
	if a.Key != nil {
		fmt.Fprintf(w, "public key: %s\n", a.Key.PublicKey().StringCompressed())
	}
	fmt.Fprintf(w, "requests: %d\n", len(a.Requests()))
	fmt.Fprintf(w, "conforms: %d\n", len(a.Conforms()))

	for _, ch := range a.Channels() {
		printChannel(w, ch)
	}
}

func printChannel(w io.Writer, ch *channel.Channel) {
	fmt.Fprintf(w, "channel with %s: self %s, other %s", address.Uint160ToString(ch.Other()),
		ch.SelfStatus().Kind, ch.OtherStatus().Kind)

	if data, ok := ch.Data(); ok {
		fmt.Fprintf(w, ", version %d, self balance %d, other balance %d", data.Version, data.SelfBalance, data.OtherBalance)
	}

	fmt.Fprintln(w)
}
