package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lemmi/compress"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/gamegeek/geekcms/config"
)

var (
	cfgFile string
	prefix  string
	git     bool
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gcserver",
	Short: "Serve the GameGeek site, its content API and the CMS backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("prefix") {
			cfg.Content.Root = prefix
		}
		if git {
			cfg.Content.Source = "git"
		}

		zc := zap.NewProductionConfig()
		if cfg.Debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for HTTP requests (default)",
	RunE:  runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.StringVar(&prefix, "prefix", ".", "path to the site checkout")
	pf.String("bind", "localhost:8080", "address or path to bind to")
	pf.String("network", "tcp", `"tcp", "tcp4", "tcp6", "unix" or "unixpacket"`)
	pf.BoolVar(&git, "git", false, "prefix is a git repo")
	pf.Bool("debug", false, "set debug output")
	rootCmd.AddCommand(serveCmd)
}

func listen(network, addr string) (net.Listener, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s %q", network, addr)
	}
	if strings.HasPrefix(network, "unix") {
		if err := os.Chmod(addr, 0666); err != nil {
			ln.Close()
			return nil, errors.Wrapf(err, "chmod %q", addr)
		}
	}
	return ln, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	ln, err := listen(cfg.Network, cfg.Bind)
	if err != nil {
		return err
	}

	logger.Info("Starting",
		zap.String("addr", cfg.Bind),
		zap.String("network", cfg.Network),
		zap.String("source", cfg.Content.Source),
	)
	logger.Debug("content", zap.String("root", cfg.Content.Root), zap.String("repo", cfg.GitHub.Repo))

	hs := &http.Server{
		Handler:           compress.New(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
