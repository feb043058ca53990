// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/service/httpclient"
)

// EnvPrefix is prepended to every setting read from the environment,
// e.g. DRUIDCTL_CONFIG_DIR.
const EnvPrefix = "DRUIDCTL"

// Settings configures where druidctl writes and how it talks to the host.
// Every field can be set by flag or by environment.
type Settings struct {
	ConfigDir       string        `mapstructure:"config_dir" validate:"required,startswith=/"`
	UnitDir         string        `mapstructure:"unit_dir" validate:"required,startswith=/"`
	Systemctl       string        `mapstructure:"systemctl" validate:"required"`
	CacheDir        string        `mapstructure:"cache_dir" validate:"required,startswith=/"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout" validate:"gt=0"`
	HostIP          string        `mapstructure:"host_ip" validate:"omitempty,ip"`
	ProcessorCount  int           `mapstructure:"processor_count" validate:"gte=0"`
	MetricsTextfile string        `mapstructure:"metrics_textfile"`
	SentryDSN       string        `mapstructure:"sentry_dsn"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// DefaultSettings returns the settings of a stock host.
func DefaultSettings() Settings {
	return Settings{
		ConfigDir:       constants.DruidConfigDir,
		UnitDir:         constants.SystemdUnitDir,
		Systemctl:       constants.SystemctlPath,
		CacheDir:        constants.ArchiveCacheDir,
		DownloadTimeout: httpclient.DefaultDownloadTimeout,
		LogLevel:        "info",
	}
}

// settingFlags maps setting keys to their persistent flag names.
var settingFlags = map[string]string{
	"config_dir":       "config-dir",
	"unit_dir":         "unit-dir",
	"systemctl":        "systemctl",
	"cache_dir":        "cache-dir",
	"download_timeout": "download-timeout",
	"host_ip":          "host-ip",
	"processor_count":  "processor-count",
	"metrics_textfile": "metrics-textfile",
	"sentry_dsn":       "sentry-dsn",
	"log_level":        "log-level",
}

func addSettingFlags(cmd *cobra.Command) {
	d := DefaultSettings()
	flags := cmd.PersistentFlags()
	flags.String("config-dir", d.ConfigDir, "Directory the Druid configuration is written to")
	flags.String("unit-dir", d.UnitDir, "Directory systemd units are written to")
	flags.String("systemctl", d.Systemctl, "Path of the systemctl binary")
	flags.String("cache-dir", d.CacheDir, "Directory release archives are downloaded to")
	flags.Duration("download-timeout", d.DownloadTimeout, "Timeout for downloading a release archive")
	flags.String("host-ip", "", "Address used for druid.host (detected when empty)")
	flags.Int("processor-count", 0, "Processor count used for role defaults (detected when 0)")
	flags.String("metrics-textfile", "", "Write run metrics to this file in the Prometheus text format")
	flags.String("sentry-dsn", "", "Sentry DSN for error reporting (disabled when empty)")
	flags.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
}

// loadSettings resolves the settings from defaults, environment and the
// flags of cmd, in increasing priority.
func loadSettings(cmd *cobra.Command) (Settings, error) {
	v := viper.New()

	d := DefaultSettings()
	v.SetDefault("config_dir", d.ConfigDir)
	v.SetDefault("unit_dir", d.UnitDir)
	v.SetDefault("systemctl", d.Systemctl)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("download_timeout", d.DownloadTimeout)
	v.SetDefault("host_ip", d.HostIP)
	v.SetDefault("processor_count", d.ProcessorCount)
	v.SetDefault("metrics_textfile", d.MetricsTextfile)
	v.SetDefault("sentry_dsn", d.SentryDSN)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, name := range settingFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Settings{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	if err := validator.New().Struct(&s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}
