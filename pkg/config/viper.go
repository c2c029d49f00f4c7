// Package config locates the configuration file when none is passed on the command line.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// SearchPaths are checked in order for a file named config.{yaml,yml,json,toml}.
var SearchPaths = []string{
	".",
	"$HOME/.eventcrawler",
	"/etc/eventcrawler/",
}

// Discover returns the first config file found on SearchPaths, or "" when there is none.
// A file that exists but cannot be parsed is an error.
func Discover() (string, error) {
	v := viper.New()
	v.SetConfigName("config")
	for _, p := range SearchPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}
