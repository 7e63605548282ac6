package patcher

const (
	defaultConfigPath        = "./patcher.yaml"
	rootCommandUse           = "patcher"
	rootCommandShort         = "Download a patch archive and merge it into an installation"
	rootCommandArgsMax       = 0
	configCommandUse         = "config"
	configCommandShort       = "Print the effective configuration as YAML"
	configFlagName           = "config"
	configFlagUsage          = "Path to patcher.yaml (defaults to ./patcher.yaml, then ~/.patcher/config.yaml)"
	installDirFlagName       = "install-dir"
	installDirFlagUsage      = "Installation directory (overrides install.default_directory)"
	pauseFlagName            = "pause"
	pauseFlagUsage           = "Wait for enter after failures and before exiting (default: only on a terminal)"
	installTargetFormat      = "Patch will be installed to %s"
	exitPrompt               = "Press enter to exit the patcher."
	exitCodeSuccess          = 0
	exitCodeCommandFailure   = 1
	exitCodeStageFailure     = 2
	invalidPauseValueFormat  = "invalid boolean value %q for --%s"
	stagesFailedMessage      = "one or more stages failed"
	stagesFailedDetailFormat = "%w: %s"

	configurationLoaderInitializationErrorFormat = "initialize configuration loader: %w"
	configurationSourceResolutionErrorFormat     = "resolve configuration source: %w"
	rootConfigurationLoadErrorFormat             = "load root configuration %s: %w"
	loggerInitializationErrorFormat              = "initialize logger: %w"
	locateInstallationErrorFormat                = "locate installation: %w"
	resolveLayoutErrorFormat                     = "resolve install layout: %w"
	renderConfigurationErrorFormat               = "render configuration: %w"
	writeConfigurationErrorFormat                = "write configuration: %w"
)
