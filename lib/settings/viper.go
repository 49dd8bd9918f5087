package settings

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	LogLevel                 = "logLevel"
	SuppressAlgebraDebugLogs = "suppressAlgebraDebugLogs"
	MaxPendingCommits        = "maxPendingCommits"
)

func ReadConfig(jsonStr string) (*Settings, error) {
	viper.SetConfigName("settings")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("sharedtree")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if jsonStr != "" {
		if err := viper.ReadConfig(strings.NewReader(jsonStr)); err != nil {
			return nil, err
		}
	} else {
		if err := viper.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, err
			}
			// no config file is fine, defaults apply
		}
	}

	viper.SetDefault(LogLevel, "info")
	viper.SetDefault(SuppressAlgebraDebugLogs, false)
	viper.SetDefault(MaxPendingCommits, 0)

	var retrievedSettings = Settings{
		LogLevel:                 viper.GetString(LogLevel),
		SuppressAlgebraDebugLogs: viper.GetBool(SuppressAlgebraDebugLogs),
		MaxPendingCommits:        viper.GetInt(MaxPendingCommits),
	}

	var validate = validator.New()
	if err := validate.Struct(&retrievedSettings); err != nil {
		return nil, err
	}

	return &retrievedSettings, nil
}
