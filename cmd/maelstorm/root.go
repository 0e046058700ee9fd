package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/maelstorm-web/maelstorm"
	"github.com/maelstorm-web/maelstorm/config"
	"github.com/maelstorm-web/maelstorm/handlers"
	"github.com/maelstorm-web/maelstorm/internal/logging"
	"github.com/maelstorm-web/maelstorm/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewRootCmd creates the root command with all the subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           version.AppName,
		Short:         version.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

type serveOptions struct {
	configPath    string
	addr          string
	tlsAddr       string
	debug         bool
	allowShutdown bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built-in endpoints until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	flags.StringVar(&opts.addr, "addr", "", "plain-text listener address, overrides the config")
	flags.StringVar(&opts.tlsAddr, "tls-addr", "", "TLS listener address, overrides the config")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
	flags.BoolVar(&opts.allowShutdown, "allow-shutdown", false, "expose the /shutdown endpoint")

	return cmd
}

func serve(ctx context.Context, out io.Writer, opts serveOptions) error {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return err
	}

	if len(opts.addr) > 0 {
		cfg.Addr = opts.addr
	}

	if len(opts.tlsAddr) > 0 {
		cfg.TLS.Addr = opts.tlsAddr
	}

	if opts.debug {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	app := maelstorm.New(cfg, log)
	mux := handlers.NewMux().
		Route("", handlers.Text(version.String()+"\n")).
		Route("echo", handlers.Echo()).
		Route("stats", handlers.Stats(app.Stats()))

	if opts.allowShutdown {
		mux.Route("shutdown", handlers.Shutdown(app))
	}

	app.NotifyOnStart(func() {
		printBanner(out, app.Addrs())
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	served := make(chan struct{})

	g.Go(func() error {
		defer close(served)
		return app.Serve(mux)
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			app.ShutdownGracefully()
		case <-served:
		}

		return nil
	})

	err = g.Wait()
	app.Wait()
	log.Info("final statistics", zap.Any("stats", app.Stats().Report()))

	return err
}

func printBanner(out io.Writer, addrs []net.Addr) {
	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintf(out, "%s %s\n", version.AppName, version.Version)

	for _, addr := range addrs {
		fmt.Fprintf(out, "  listening on %s\n", color.GreenString(addr.String()))
	}
}
