package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadSuperConfigViper reads a super.json-shaped configuration the way the
// runtime's predecessor loaded its own config: via viper, from a config
// file. name is the config file's base name without extension (e.g.
// "super" for super.json); searchPaths are directories to look for it in,
// in addition to the current directory.
//
// Unlike [Load], which is a from-scratch generic JSON reader, this function
// exists specifically for SuperConfig. AutomaticEnv is enabled with the
// ONESDK prefix, but no env key replacer is set, so underscore-separated
// variables (ONESDK_PROFILES_ACME/CHAT_VERSION) are not mapped onto the
// nested profile and provider keys and the file's values stand.
func LoadSuperConfigViper(name string, searchPaths ...string) (SuperConfig, error) {
	var cfg SuperConfig

	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("ONESDK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", name, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", name, err)
	}
	if err := ValidateSuperConfig(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
