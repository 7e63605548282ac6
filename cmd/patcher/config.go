package patcher

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(options *rootCommandOptions) *cobra.Command {
	return &cobra.Command{
		Use:   configCommandUse,
		Short: configCommandShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootConfiguration, err := loadRootConfiguration(options.configPath)
			if err != nil {
				return err
			}
			rendered, marshalErr := yaml.Marshal(rootConfiguration)
			if marshalErr != nil {
				return fmt.Errorf(renderConfigurationErrorFormat, marshalErr)
			}
			if _, writeErr := cmd.OutOrStdout().Write(rendered); writeErr != nil {
				return fmt.Errorf(writeConfigurationErrorFormat, writeErr)
			}
			return nil
		},
	}
}
