package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chazu/sewcustom/pkg/server"
	"github.com/urfave/cli/v2"
)

func Serve(opts *Options) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the web server that receives drawings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "address to listen on"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "port to listen on"},
			dirFlag,
			rulesFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, app, log, err := setup(c, opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if c.IsSet("host") {
				cfg.Server.Host = c.String("host")
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.Int("port")
			}

			lan, err := server.LANAddresses()
			if err != nil {
				log.Warnf("could not list LAN addresses: %v", err)
			}

			dir, err := filepath.Abs(cfg.Storage.Dir)
			if err != nil {
				dir = cfg.Storage.Dir
			}
			infoPrinter.Println("SewCustom server")
			infoPrinter.Printf("Saving drawings to %s\n", dir)
			for _, u := range server.URLs(cfg.Server.Host, cfg.Server.Port, lan) {
				successPrinter.Printf("  %s\n", u)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(app, log).ListenAndServe(ctx, server.Addr(cfg.Server.Host, cfg.Server.Port))
		},
	}
}
