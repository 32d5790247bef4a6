package main

import (
	"context"
	"io"
	"koppeltaal-service/internal/app/config"
	"koppeltaal-service/internal/app/drivers/koppeltaal"
	"koppeltaal-service/internal/app/drivers/logger"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what every subcommand needs once the flags are parsed.
type cli struct {
	out            io.Writer
	internalConfig *config.InternalConfig
	driverConfig   *config.DriverConfig
	console        *logrus.Logger
	verbose        bool
	clients        *koppeltaal.Clients
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{
		out:            out,
		internalConfig: config.NewInternalConfig(),
		driverConfig:   config.NewDriverConfig(),
	}
	kt := &c.internalConfig.Koppeltaal

	rootCmd := &cobra.Command{
		Use:           "ktctl",
		Short:         "Operator tool for a koppeltaal mailbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.console = logger.NewLogrusLogger(c.internalConfig)
			c.console.SetOutput(cmd.ErrOrStderr())
			serviceLogger := zap.NewNop()
			if c.verbose {
				serviceLogger = logger.NewZapLogger(c.driverConfig, c.internalConfig)
			}
			c.clients = koppeltaal.NewClients(c.internalConfig, serviceLogger)
			return nil
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&kt.ServerURL, "server", kt.ServerURL, "koppeltaal server url")
	flags.StringVar(&kt.Username, "username", kt.Username, "application username")
	flags.StringVar(&kt.Password, "password", kt.Password, "application password")
	flags.StringVar(&kt.Namespace, "namespace", kt.Namespace, "extension namespace")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log every request to the server")

	rootCmd.AddCommand(
		c.versionCmd(),
		c.metadataCmd(),
		c.testAuthCmd(),
		c.activitiesCmd(),
		c.headersCmd(),
		c.claimNextCmd(),
		c.fetchCmd(),
		c.transitionCmd(),
	)

	wrapErrors(rootCmd, c)
	return rootCmd
}

func (c *cli) context(cmd *cobra.Command) context.Context {
	return utils.WithRequestID(cmd.Context(), "")
}

func (c *cli) namespace() extensions.Namespace {
	return extensions.Namespace(c.internalConfig.Koppeltaal.Namespace)
}

// wrapErrors logs a failing subcommand through the console logger.
func wrapErrors(root *cobra.Command, c *cli) {
	for _, sub := range root.Commands() {
		run := sub.RunE
		if run == nil {
			continue
		}
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err != nil && c.console != nil {
				c.console.WithError(err).WithField("command", cmd.Name()).Error("command failed")
			}
			return err
		}
	}
}
