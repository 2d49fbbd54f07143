// Package cmd описывает команды cobra для клиента Thought Book.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/thoughtbook/internal/client/app"
	"github.com/iudanet/thoughtbook/internal/client/iocli"
	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/logging"
)

// BuildInfo версия сборки, передается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewRootCmd создает корневую команду. Без подкоманды открывается оболочка.
func NewRootCmd(build BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "thoughtbook",
		Short:         config.AppName + ": encrypted local notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, build, "")
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd(build))
	root.AddCommand(newNotesCmd(build))
	root.AddCommand(newVersionCmd(build))
	return root
}

func newRunCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the interactive notes shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, build, "")
		},
	}
}

func newNotesCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <command> [args...]",
		Short: "Run one shell command and exit",
		Example: "  thoughtbook notes list\n" +
			"  thoughtbook notes search milk\n" +
			"  thoughtbook notes export backup.json",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, build, strings.Join(args, " "))
		},
	}
}

func newVersionCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s, commit %s)\n",
				config.AppName, build.Version, build.BuildDate, build.GitCommit)
		},
	}
}

// loadConfig собирает конфигурацию: значения по умолчанию, JSON файл, флаги
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, err := flags.GetString(config.FlagConfig)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.ApplyFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runApp(cmd *cobra.Command, build BuildInfo, command string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths := cfg.Paths()
	if err := paths.Ensure(); err != nil {
		return err
	}

	logger, closer := logging.NewFileLogger(paths.LogFile, cfg.Debug)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, iocli.NewStdio(), logger, build.Version)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer a.Close()

	err = a.Run(ctx, command)
	switch {
	case errors.Is(err, app.ErrExit), errors.Is(err, context.Canceled):
		logger.Info("application closed")
		return nil
	case err != nil:
		logger.Error("application failed", "error", err)
		return err
	}
	logger.Info("application closed")
	return nil
}
