package main

import (
	"encoding/hex"
	"fmt"

	"github.com/nspcc-dev/paychan/channel"
	"github.com/nspcc-dev/paychan/ledger"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func counterpartyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "counterparty",
		Usage:    "Counterparty address",
		Required: true,
	}
}

func (x *application) channelCommand() *cli.Command {
	return &cli.Command{
		Name:  "channel",
		Usage: "Off-chain channel operations",
		Subcommands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Sync channel with dumped account states of both sides",
				Flags:  append([]cli.Flag{accountFlag(), counterpartyFlag()}, dumpFlags()...),
				Action: x.syncChannel,
			},
			{
				Name:  "transfer",
				Usage: "Issue transfer request, print it as HEX",
				Flags: []cli.Flag{
					accountFlag(),
					counterpartyFlag(),
					&cli.Uint64Flag{
						Name:     "amount",
						Usage:    "Amount to transfer",
						Required: true,
					},
				},
				Action: x.transfer,
			},
			{
				Name:  "conform",
				Usage: "Accept HEX transfer request, print conform as HEX",
				Flags: []cli.Flag{
					accountFlag(),
					&cli.StringFlag{
						Name:     "request",
						Usage:    "HEX-encoded transfer request",
						Required: true,
					},
				},
				Action: x.conform,
			},
			{
				Name:  "process",
				Usage: "Apply HEX conform received from the counterparty",
				Flags: []cli.Flag{
					accountFlag(),
					&cli.StringFlag{
						Name:     "conform",
						Usage:    "HEX-encoded transfer conform",
						Required: true,
					},
				},
				Action: x.processConform,
			},
			{
				Name:   "close-args",
				Usage:  "Print agreed state to be submitted on channel close",
				Flags:  []cli.Flag{accountFlag(), counterpartyFlag()},
				Action: x.closeArgs,
			},
			{
				Name:   "remove",
				Usage:  "Remove channel from the local account",
				Flags:  []cli.Flag{accountFlag(), counterpartyFlag()},
				Action: x.removeChannel,
			},
		},
	}
}

func (x *application) syncChannel(c *cli.Context) error {
	cp, err := registry.ParseAddress(c.String("counterparty"))
	if err != nil {
		return fmt.Errorf("invalid counterparty: %w", err)
	}

	reg, err := x.registry(c)
	if err != nil {
		return err
	}

	r, err := x.openDump(c)
	if err != nil {
		return err
	}

	return x.withAccount(c, func(a *ledger.Account) error {
		self, err := x.decodeAccount(r, reg, a.Address)
		if err != nil {
			return err
		}

		other, err := x.decodeAccount(r, reg, cp)
		if err != nil {
			return err
		}

		ch, err := a.Reconcile(cp, self, other)
		if err != nil {
			return err
		}

		x.log.Info("channel synced",
			zap.Stringer("counterparty", cp),
			zap.Stringer("self", ch.SelfStatus().Kind),
			zap.Stringer("other", ch.OtherStatus().Kind))
		printChannel(c.App.Writer, ch)

		return nil
	})
}

func (x *application) transfer(c *cli.Context) error {
	cp, err := registry.ParseAddress(c.String("counterparty"))
	if err != nil {
		return fmt.Errorf("invalid counterparty: %w", err)
	}

	return x.withAccount(c, func(a *ledger.Account) error {
		req, err := a.Transfer(cp, c.Uint64("amount"))
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}

		x.log.Info("transfer request issued",
			zap.Stringer("counterparty", cp), zap.Uint64("version", req.Version))
		fmt.Fprintln(c.App.Writer, channel.EncodeRequest(req))

		return nil
	})
}

func (x *application) conform(c *cli.Context) error {
	req, err := channel.DecodeRequest(c.String("request"))
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	return x.withAccount(c, func(a *ledger.Account) error {
		conf, err := a.Conform(req)
		if err != nil {
			return fmt.Errorf("conform: %w", err)
		}

		x.log.Info("transfer request conformed",
			zap.Stringer("counterparty", req.Sender), zap.Uint64("version", req.Version))
		fmt.Fprintln(c.App.Writer, channel.EncodeConform(conf))

		return nil
	})
}

func (x *application) processConform(c *cli.Context) error {
	conf, err := channel.DecodeConform(c.String("conform"))
	if err != nil {
		return fmt.Errorf("invalid conform: %w", err)
	}

	return x.withAccount(c, func(a *ledger.Account) error {
		err := a.ProcessConform(conf)
		if err != nil {
			return fmt.Errorf("process conform: %w", err)
		}

		x.log.Info("transfer conform processed",
			zap.Stringer("counterparty", conf.Sender), zap.Uint64("version", conf.Request.Version))

		return nil
	})
}

func (x *application) closeArgs(c *cli.Context) error {
	cp, err := registry.ParseAddress(c.String("counterparty"))
	if err != nil {
		return fmt.Errorf("invalid counterparty: %w", err)
	}

	return x.withAccount(c, func(a *ledger.Account) error {
		return a.WithChannel(cp, func(ch *channel.Channel) error {
			data, ok := ch.CloseArgs()
			if !ok {
				fmt.Fprintln(c.App.Writer, "no off-chain state, close without proof")
				return nil
			}

			fmt.Fprintf(c.App.Writer, "version: %d\nself balance: %d\nother balance: %d\nself signature: %s\nother signature: %s\n",
				data.Version, data.SelfBalance, data.OtherBalance,
				hex.EncodeToString(data.SelfSignature), hex.EncodeToString(data.OtherSignature))

			return nil
		})
	})
}

func (x *application) removeChannel(c *cli.Context) error {
	cp, err := registry.ParseAddress(c.String("counterparty"))
	if err != nil {
		return fmt.Errorf("invalid counterparty: %w", err)
	}

	return x.withAccount(c, func(a *ledger.Account) error {
		if !a.RemoveChannel(cp) {
			return fmt.Errorf("%w: %s", ledger.ErrChannelNotFound, cp.StringLE())
		}

		x.log.Info("channel removed", zap.Stringer("counterparty", cp))

		return nil
	})
}
