package main

import (
	"fmt"
	"os"

	"github.com/nspcc-dev/paychan/config"
	"github.com/nspcc-dev/paychan/ledger"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/nspcc-dev/paychan/resource"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		cli.HandleExitCoder(cli.Exit(err.Error(), 1))
	}
}

// application holds state shared by the commands. It is initialized before
// any command runs.
type application struct {
	cfg *config.Config
	log *zap.Logger
}

func newApp() *cli.App {
	var x application

	return &cli.App{
		Name:  "paychan",
		Usage: "Off-chain payment channel client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "wallet",
				Usage: "Path to the local account store (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Logger level (overrides config)",
			},
		},
		Before: x.init,
		After: func(*cli.Context) error {
			if x.log != nil {
				_ = x.log.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			x.fetchCommand(),
			x.resourcesCommand(),
			x.accountCommand(),
			x.channelCommand(),
		},
	}
}

func (x *application) init(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("wallet") {
		cfg.Wallet.Path = c.String("wallet")
	}

	if c.IsSet("log-level") {
		cfg.Logger.Level = c.String("log-level")
	}

	lvl, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	x.log, err = newLogger(lvl)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	x.cfg = cfg

	return nil
}

func newLogger(lvl zapcore.Level) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Sampling = nil

	return c.Build()
}

// registry returns configured module registry. Modules missing in the
// configuration are resolved via NNS if enabled.
func (x *application) registry(c *cli.Context) (*registry.Registry, error) {
	r, err := x.cfg.Registry()
	if err != nil {
		return nil, err
	}

	if !x.cfg.NNS.Enabled {
		return r, nil
	}

	names := x.cfg.NNS.Names
	if len(names) == 0 {
		names = []string{resource.ModuleToken, resource.ModuleChannel}
	}

	var missing []string
	for _, name := range names {
		if !r.Exists(name) {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return r, nil
	}

	b, err := newRemoteBlockChain(c.Context, x.cfg.RPC)
	if err != nil {
		return nil, fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	resolved, err := b.resolveModules(x.cfg.NNS.Zone, missing)
	if err != nil {
		return nil, err
	}

	for _, e := range resolved.Entries() {
		x.log.Debug("module resolved via NNS",
			zap.String("name", e.Name), zap.Stringer("address", e.Address))
		r.Add(e.Name, e.Address)
	}

	return r, nil
}

// openStore opens the local account store.
func (x *application) openStore() (*ledger.BoltStore, error) {
	return ledger.OpenBoltStore(x.cfg.Wallet.Path, x.log)
}

// withAccount loads account referenced by the 'account' flag, passes it into
// f and saves the account if f succeeds.
func (x *application) withAccount(c *cli.Context, f func(*ledger.Account) error) error {
	addr, err := registry.ParseAddress(c.String("account"))
	if err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	s, err := x.openStore()
	if err != nil {
		return err
	}

	defer s.Close()

	a, err := s.Get(addr)
	if err != nil {
		return err
	}

	err = f(a)
	if err != nil {
		return err
	}

	return s.Put(a)
}
