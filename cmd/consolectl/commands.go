package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garyjia/asset-console/internal/application/service"
	"github.com/garyjia/asset-console/internal/container"
	"github.com/garyjia/asset-console/internal/domain/module"
	"github.com/garyjia/asset-console/internal/domain/workflow"
	"github.com/garyjia/asset-console/internal/infrastructure/export"
	"github.com/garyjia/asset-console/internal/infrastructure/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return opts.withContainer(ctx, func(ctx context.Context, c *container.Container) error {
				if err := c.StartWorkers(ctx); err != nil {
					return err
				}
				return c.HTTPServer().Start(ctx)
			})
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default approval configurations into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd.Context(), func(_ context.Context, c *container.Container) error {
				if c.Seeded() == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "approval configurations already present (%d)\n", len(c.Services().Configs.List()))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d approval configurations\n", c.Seeded())
				return nil
			})
		},
	}
}

func newModulesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List modules with their record and pending counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd.Context(), func(_ context.Context, c *container.Container) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CODE\tMODULE\tRECORDS\tPENDING")
				for _, r := range c.Router().Routes() {
					pending := 0
					for _, st := range r.Repository.States() {
						if _, ok := workflow.PendingApprover(st.Status); ok {
							pending++
						}
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Code, c.Translator().Translate(r.Code.LabelKey()), len(r.Repository.List()), pending)
				}
				return w.Flush()
			})
		},
	}
}

func newInboxCmd(opts *rootOptions) *cobra.Command {
	var approver string
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List records waiting for an approver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd.Context(), func(_ context.Context, c *container.Container) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MODULE\tRECORD\tAPPROVER\tTIER\tDUE\tOVERDUE")
				for _, it := range c.Services().Workflow.Inbox(approver) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\n", it.Module, it.RecordID, it.Approver, it.CurrentTier, it.DueDate, it.Overdue)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&approver, "approver", "", "approver name, empty for everyone")
	return cmd
}

func newApproveCmd(opts *rootOptions) *cobra.Command {
	var (
		action  string
		comment string
	)
	cmd := &cobra.Command{
		Use:   "approve MODULE RECORD_ID",
		Short: "Apply Approve, Reject or Revise to a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := module.Parse(args[0])
			if err != nil {
				return err
			}
			act, err := workflow.ParseAction(action)
			if err != nil {
				return err
			}
			return opts.withContainer(cmd.Context(), func(ctx context.Context, c *container.Container) error {
				res, err := c.Services().Workflow.Act(ctx, service.ActionRequest{
					Module:   code,
					RecordID: args[1],
					Action:   act,
					Comment:  comment,
				})
				if err != nil {
					return err
				}
				d := res.Decision
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (tier %d)", code, args[1], d.NextStatus, d.NextTier)
				if d.DueDate != "" {
					fmt.Fprintf(cmd.OutOrStdout(), " due %s", d.DueDate)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				if d.Anomaly != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", d.Anomaly)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&action, "action", "a", string(workflow.ActionApprove), "Approve, Reject or Revise")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "comment, required for Reject and Revise")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export MODULE",
		Short: "Write a module's records and workflow logs to an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := module.Parse(args[0])
			if err != nil {
				return err
			}
			return opts.withContainer(cmd.Context(), func(_ context.Context, c *container.Container) error {
				route, err := c.Router().Resolve(code)
				if err != nil {
					return err
				}
				f, name, err := export.Workbook(code.String(), route.Repository, c.Clock()())
				if err != nil {
					return err
				}
				defer f.Close()

				buf, err := f.WriteToBuffer()
				if err != nil {
					return fmt.Errorf("failed to render workbook: %w", err)
				}
				path, err := storage.NewLocalFileStorage(dir, c.Logger()).Save(cmd.Context(), name, buf.Bytes())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	return cmd
}
