package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-posyandu/internal/config"
	"github.com/goliatone/go-posyandu/pkg/apiclient"
	"github.com/goliatone/go-posyandu/pkg/contract"
	"github.com/goliatone/go-posyandu/pkg/messages"
)

// app holds what PersistentPreRunE resolves for the subcommands.
type app struct {
	configFile string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	catalog *messages.Catalog
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "posyandu-admin",
		Short:        "Edit Posyandu records from the terminal or a browser dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "optional YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newEditCmd(a),
		newServeCmd(a),
		newKelurahanCmd(a),
		newValidateCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configFile, nil)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	if a.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	catalog, err := messages.Load(cfg.Locale)
	if err != nil {
		return err
	}
	a.catalog = catalog
	return nil
}

// client builds the API client, contract checked unless disabled.
func (a *app) client(ctx context.Context) (*apiclient.Client, error) {
	opts := []apiclient.Option{
		apiclient.WithBaseURL(a.cfg.APIBaseURL),
		apiclient.WithTimeout(a.cfg.APITimeout),
		apiclient.WithLogger(a.logger.Named("apiclient")),
	}
	if a.cfg.ContractChecks {
		ct, err := contract.Load(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, apiclient.WithContract(ct))
	}
	return apiclient.New(opts...)
}
