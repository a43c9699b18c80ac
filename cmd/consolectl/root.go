package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/config"
	"github.com/garyjia/asset-console/internal/container"
	"github.com/garyjia/asset-console/pkg/utils"
)

type rootOptions struct {
	configPath    string
	actor         string
	containerOpts []container.Option
}

func newRootCmd(containerOpts ...container.Option) *cobra.Command {
	opts := &rootOptions{containerOpts: containerOpts}
	cmd := &cobra.Command{
		Use:           "consolectl",
		Short:         "Asset console administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "configuration file, empty for defaults")
	cmd.PersistentFlags().StringVar(&opts.actor, "actor", "", "actor recorded in workflow logs")

	cmd.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newModulesCmd(opts),
		newInboxCmd(opts),
		newApproveCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// withContainer loads configuration, starts the container and closes it
// once fn returns
func (o *rootOptions) withContainer(ctx context.Context, fn func(context.Context, *container.Container) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.actor != "" {
		cfg.Workflow.DefaultActor = o.actor
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "consolectl",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	c, err := container.NewContainer(cfg, logger, o.containerOpts...)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			logger.Warn("Container close failed", zap.Error(cerr))
		}
	}()
	return fn(ctx, c)
}
