package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-posyandu/pkg/editform"
	"github.com/goliatone/go-posyandu/pkg/model"
	"github.com/goliatone/go-posyandu/pkg/renderers/tui"
	"github.com/goliatone/go-posyandu/pkg/web"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit one Posyandu record in an interactive terminal session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			session, err := tui.NewSession(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithMessages(a.catalog),
				tui.WithLogger(a.logger.Named("tui")),
			)
			if err != nil {
				return err
			}
			fb := session.Feedback(ctx)
			form := editform.New(args[0], client,
				editform.WithNotifier(fb),
				editform.WithNavigator(fb),
				editform.WithMessages(a.catalog),
				editform.WithLogger(a.logger.Named("editform")),
				editform.WithReferenceMode(a.cfg.Reference()),
			)
			outcome, err := session.Run(ctx, form)
			a.logger.Info("edit session finished",
				zap.String("id", args[0]),
				zap.Stringer("outcome", outcome),
			)
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			if outcome == tui.OutcomeCancelled {
				return nil
			}
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Posyandu management dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			srv, err := web.New(client, a.cfg.ThemeVariant,
				web.WithLogger(a.logger.Named("web")),
				web.WithMessages(a.catalog),
				web.WithReferenceMode(a.cfg.Reference()),
			)
			if err != nil {
				return err
			}
			a.logger.Info("serving dashboard",
				zap.String("addr", addr),
				zap.String("api", a.cfg.APIBaseURL),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to POSYANDU_LISTEN_ADDR)")
	return cmd
}

func newKelurahanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kelurahan",
		Short: "Print the kelurahan reference options as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			options, err := client.ListKelurahan(ctx)
			if err != nil {
				return err
			}
			if options == nil {
				options = []model.KelurahanOption{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(options)
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate form values offline and print the update body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read values: %w", err)
			}
			var values model.FormValues
			if err := json.Unmarshal(raw, &values); err != nil {
				return fmt.Errorf("decode values: %w", err)
			}
			payload, err := model.Validate(values)
			if err != nil {
				var verr *model.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", verr.Kind)
					for _, f := range verr.Fields {
						fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s)\n", f, f.Label())
					}
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with form values")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
