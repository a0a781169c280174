// Package config resolves runtime settings from defaults, an optional
// config file and LOREBOT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the process needs to start.
type Config struct {
	// ContentPath is the JSON content document.
	ContentPath string

	// ScoresPath is the SQLite database holding quiz results.
	ScoresPath string

	// MediaDir is the root directory for uploaded images and videos.
	MediaDir string

	// Admins lists identities allowed to author and delete content.
	Admins []int64

	// Debug lowers the log level to debug.
	Debug bool

	// JSONLogs switches log output to JSON.
	JSONLogs bool
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		ContentPath: "content.json",
		ScoresPath:  "scores.db",
		MediaDir:    "media",
	}
}

// Load reads configuration with the precedence: environment variables,
// then the config file, then defaults. path may be empty, in which case a
// lorebot.yaml in the working directory is used if present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("lorebot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing file just means defaults apply.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LOREBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		ContentPath: v.GetString("content.path"),
		ScoresPath:  v.GetString("scores.path"),
		MediaDir:    v.GetString("media.dir"),
		Debug:       v.GetBool("log.debug"),
		JSONLogs:    v.GetBool("log.json"),
	}
	for _, id := range v.GetIntSlice("admins") {
		cfg.Admins = append(cfg.Admins, int64(id))
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("content.path", d.ContentPath)
	v.SetDefault("scores.path", d.ScoresPath)
	v.SetDefault("media.dir", d.MediaDir)
	v.SetDefault("admins", []int{})
	v.SetDefault("log.debug", d.Debug)
	v.SetDefault("log.json", d.JSONLogs)
}
