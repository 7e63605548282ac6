// Package patcher implements the patcher command line.
package patcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/patcher/internal/archive"
	"github.com/temirov/patcher/internal/config"
	"github.com/temirov/patcher/internal/console"
	"github.com/temirov/patcher/internal/fetch"
	"github.com/temirov/patcher/internal/fsops"
	"github.com/temirov/patcher/internal/install"
	"github.com/temirov/patcher/internal/locator"
	"github.com/temirov/patcher/internal/logging"
	"github.com/temirov/patcher/internal/merge"
	"github.com/temirov/patcher/internal/pipeline"
)

// ErrStagesFailed is returned when the pipeline ran but at least one stage
// reported a failure.
var ErrStagesFailed = errors.New(stagesFailedMessage)

type rootCommandOptions struct {
	configPath string
	installDir string
	pause      bool
	pauseSet   bool
}

// NewRootCommand builds the patcher command tree.
func NewRootCommand() *cobra.Command {
	options := &rootCommandOptions{configPath: defaultConfigPath}

	command := &cobra.Command{
		Use:           rootCommandUse,
		Short:         rootCommandShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				pauseFlag := cmd.Flags().Lookup(pauseFlagName)
				if pauseFlag != nil && pauseFlag.Changed {
					if _, ok := parseBoolChoice(args[0]); ok {
						return nil
					}
					return fmt.Errorf(invalidPauseValueFormat, args[0], pauseFlagName)
				}
			}
			return cobra.MaximumNArgs(rootCommandArgsMax)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			effectiveOptions := *options
			pauseFlag := cmd.Flags().Lookup(pauseFlagName)
			effectiveOptions.pauseSet = pauseFlag != nil && pauseFlag.Changed
			if _, pauseOverride := splitPauseArgument(args, effectiveOptions.pauseSet); pauseOverride != nil {
				effectiveOptions.pause = *pauseOverride
			}
			return runPatcher(cmd, effectiveOptions)
		},
	}

	command.PersistentFlags().StringVar(&options.configPath, configFlagName, defaultConfigPath, configFlagUsage)
	command.Flags().StringVar(&options.installDir, installDirFlagName, "", installDirFlagUsage)
	pauseValue := newBoolChoiceValue(&options.pause)
	command.Flags().Var(pauseValue, pauseFlagName, pauseFlagUsage)
	if pauseFlag := command.Flags().Lookup(pauseFlagName); pauseFlag != nil {
		pauseFlag.NoOptDefVal = "true"
		pauseFlag.DefValue = "false"
	}

	command.AddCommand(newConfigCommand(options))
	return command
}

// Execute runs the root command with ctx, which cancels an in-flight
// download or merge when done.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// ExitCode maps an Execute result to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitCodeSuccess
	case errors.Is(err, ErrStagesFailed):
		return exitCodeStageFailure
	default:
		return exitCodeCommandFailure
	}
}

func runPatcher(command *cobra.Command, options rootCommandOptions) error {
	rootConfiguration, err := loadRootConfiguration(options.configPath)
	if err != nil {
		return err
	}

	logger, loggerErr := logging.New(rootConfiguration.Common.Logging.Level, rootConfiguration.Common.Logging.Format, command.ErrOrStderr())
	if loggerErr != nil {
		return fmt.Errorf(loggerInitializationErrorFormat, loggerErr)
	}
	defer func() { _ = logger.Sync() }()

	input := command.InOrStdin()
	terminal := console.New(input, command.OutOrStdout(), isInteractive(input))
	if options.pauseSet {
		terminal.SetInteractive(options.pause)
	}
	terminal.SetTitle(rootConfiguration.Product.Title)

	fileSystem := fsops.NewOS()
	defaultDirectory := rootConfiguration.Install.DefaultDirectory
	if strings.TrimSpace(options.installDir) != "" {
		defaultDirectory = options.installDir
	}
	installDir, locateErr := locator.Locator{
		FS:               fileSystem,
		Prompter:         terminal,
		ProductName:      rootConfiguration.Product.Name,
		DefaultDirectory: defaultDirectory,
	}.Locate()
	if locateErr != nil {
		return fmt.Errorf(locateInstallationErrorFormat, locateErr)
	}

	installer, installerErr := newInstaller(rootConfiguration, installDir, fileSystem, logger)
	if installerErr != nil {
		return installerErr
	}
	terminal.Println(fmt.Sprintf(installTargetFormat, installer.Layout.InstallDir))

	report := pipeline.Runner{Reporter: terminal, Logger: logger}.Run(command.Context(), installer.Stages())
	terminal.Pause(exitPrompt)

	failed := report.Failed()
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for _, result := range failed {
		names = append(names, result.Name)
	}
	return fmt.Errorf(stagesFailedDetailFormat, ErrStagesFailed, strings.Join(names, ", "))
}

func newInstaller(rootConfiguration config.Root, installDir string, fileSystem fsops.FS, logger *zap.Logger) (install.Installer, error) {
	layout, layoutErr := install.Layout{
		InstallDir:      installDir,
		ArchiveName:     rootConfiguration.Install.ArchiveName,
		PatchDirectory:  rootConfiguration.Install.PatchDirectory,
		ReadmeName:      rootConfiguration.Install.ReadmeName,
		ReadmeDirectory: rootConfiguration.Install.ReadmeDirectory,
	}.Resolve()
	if layoutErr != nil {
		return install.Installer{}, fmt.Errorf(resolveLayoutErrorFormat, layoutErr)
	}

	download := rootConfiguration.Download
	return install.Installer{
		Layout:    layout,
		Reference: fetch.Reference{Endpoint: download.Endpoint, ArtifactID: download.ArtifactID},
		Product: install.Product{
			Name:       rootConfiguration.Product.Name,
			Maintainer: rootConfiguration.Product.Maintainer,
		},
		FS: fileSystem,
		Fetcher: fetch.Fetcher{
			FS:                  fileSystem,
			Logger:              logger.Named("fetch"),
			WarningCookiePrefix: download.WarningCookiePrefix,
			ChunkSize:           download.ChunkSizeBytes,
			Timeout:             time.Duration(download.TimeoutSeconds) * time.Second,
		},
		Extractor: archive.New(fileSystem, logger.Named("archive")),
		Merger:    merge.New(fileSystem, logger.Named("merge")),
		Logger:    logger.Named("install"),
	}, nil
}

func isInteractive(input io.Reader) bool {
	file, ok := input.(*os.File)
	return ok && console.IsTerminal(file)
}
