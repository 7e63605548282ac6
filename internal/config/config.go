package config

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	environmentPrefix                        = "PATCHER"
	configurationType                        = "yaml"
	rootConfigurationEmptyContentErrorFormat = "root configuration %s is empty"
	embeddedDefaultsReadErrorFormat          = "read embedded defaults: %w"
	rootConfigurationMergeErrorFormat        = "merge root configuration %s: %w"
	rootConfigurationUnmarshalErrorFormat    = "unmarshal root configuration %s: %w"
	invalidSettingErrorFormat                = "%s failed validation for tag '%s'"
	rootNamespacePrefix                      = "Root."
	notBlankTag                              = "not_blank"
)

var (
	validatorOnce    sync.Once
	validateInstance *validator.Validate
)

type Root struct {
	Common   Common   `yaml:"common" mapstructure:"common"`
	Product  Product  `yaml:"product" mapstructure:"product"`
	Download Download `yaml:"download" mapstructure:"download"`
	Install  Install  `yaml:"install" mapstructure:"install"`
}

type Common struct {
	Logging struct {
		Level  string `yaml:"level" mapstructure:"level"`
		Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=console json"`
	} `yaml:"logging" mapstructure:"logging"`
}

// Product names the software being patched in operator-facing text.
type Product struct {
	Name       string `yaml:"name" mapstructure:"name"`
	Title      string `yaml:"title" mapstructure:"title"`
	Maintainer string `yaml:"maintainer" mapstructure:"maintainer"`
}

type Download struct {
	Endpoint            string `yaml:"endpoint" mapstructure:"endpoint" validate:"not_blank,url"`
	ArtifactID          string `yaml:"artifact_id" mapstructure:"artifact_id" validate:"not_blank"`
	WarningCookiePrefix string `yaml:"warning_cookie_prefix" mapstructure:"warning_cookie_prefix"`
	ChunkSizeBytes      int    `yaml:"chunk_size_bytes" mapstructure:"chunk_size_bytes" validate:"min=0"`
	TimeoutSeconds      int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"min=0"`
}

type Install struct {
	DefaultDirectory string `yaml:"default_directory" mapstructure:"default_directory"`
	ArchiveName      string `yaml:"archive_name" mapstructure:"archive_name" validate:"not_blank"`
	PatchDirectory   string `yaml:"patch_directory" mapstructure:"patch_directory" validate:"not_blank"`
	ReadmeName       string `yaml:"readme_name" mapstructure:"readme_name" validate:"not_blank"`
	ReadmeDirectory  string `yaml:"readme_directory" mapstructure:"readme_directory"`
}

// LoadRoot layers the provided source over the embedded defaults, applies
// PATCHER_* environment overrides and validates the result.
func LoadRoot(source RootConfigurationSource) (Root, error) {
	if len(source.Content) == 0 {
		return Root{}, fmt.Errorf(rootConfigurationEmptyContentErrorFormat, source.Reference)
	}

	layered := viper.New()
	layered.SetConfigType(configurationType)
	if err := layered.ReadConfig(bytes.NewReader(embeddedRootConfigurationBytes)); err != nil {
		return Root{}, fmt.Errorf(embeddedDefaultsReadErrorFormat, err)
	}
	if source.Reference != embeddedRootConfigurationReference {
		if err := layered.MergeConfig(bytes.NewReader(source.Content)); err != nil {
			return Root{}, fmt.Errorf(rootConfigurationMergeErrorFormat, source.Reference, err)
		}
	}
	layered.SetEnvPrefix(environmentPrefix)
	layered.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	layered.AutomaticEnv()

	var rootConfiguration Root
	if err := layered.Unmarshal(&rootConfiguration); err != nil {
		return Root{}, fmt.Errorf(rootConfigurationUnmarshalErrorFormat, source.Reference, err)
	}
	if err := rootConfiguration.Validate(); err != nil {
		return Root{}, err
	}
	return rootConfiguration, nil
}

// Validate reports the first missing or out-of-range setting.
func (root Root) Validate() error {
	validationErr := validatorInstance().Struct(root)
	if validationErr == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(validationErr, &fieldErrors) && len(fieldErrors) > 0 {
		fieldError := fieldErrors[0]
		field := strings.TrimPrefix(fieldError.Namespace(), rootNamespacePrefix)
		return fmt.Errorf(invalidSettingErrorFormat, field, fieldError.Tag())
	}
	return validationErr
}

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		instance := validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get(configurationType), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = instance.RegisterValidation(notBlankTag, func(fieldLevel validator.FieldLevel) bool {
			return strings.TrimSpace(fieldLevel.Field().String()) != ""
		})
		validateInstance = instance
	})
	return validateInstance
}
