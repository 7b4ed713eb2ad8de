package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/spf13/viper"
)

// DefaultMirror is the upstream distribution mirror
const DefaultMirror = "https://nodejs.org/dist"

// DefaultJobs bounds concurrent install units
const DefaultJobs = 4

// DefaultHTTPTimeout bounds a single catalog or artifact request
const DefaultHTTPTimeout = 10 * time.Minute

// Settings are the user-tunable values. Sources, lowest priority first:
// built-in defaults, <config-dir>/config.toml, RTVM_* environment variables.
type Settings struct {
	Root            string        `mapstructure:"root"`
	LinkDir         string        `mapstructure:"link_dir"`
	Mirror          string        `mapstructure:"mirror"`
	Jobs            int           `mapstructure:"jobs"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	ArchiveFormat   string        `mapstructure:"archive_format"`
	Activation      string        `mapstructure:"activation"`
	VerifyChecksums bool          `mapstructure:"verify_checksums"`
	Verbose         bool          `mapstructure:"verbose"`
}

var (
	currentSettings *Settings
	settingsErr     error
	settingsOnce    sync.Once
)

// DefaultSettings returns the built-in settings
func DefaultSettings() *Settings {
	return &Settings{
		Mirror:          DefaultMirror,
		Jobs:            DefaultJobs,
		HTTPTimeout:     DefaultHTTPTimeout,
		Activation:      constants.ActivationAuto,
		VerifyChecksums: true,
	}
}

// Load reads settings from the config directory and environment
func Load() (*Settings, error) {
	return LoadFrom(ConfigDir())
}

// LoadFrom reads settings using configDir as the config file location
func LoadFrom(configDir string) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("link_dir", defaults.LinkDir)
	v.SetDefault("mirror", defaults.Mirror)
	v.SetDefault("jobs", defaults.Jobs)
	v.SetDefault("http_timeout", defaults.HTTPTimeout)
	v.SetDefault("archive_format", defaults.ArchiveFormat)
	v.SetDefault("activation", defaults.Activation)
	v.SetDefault("verify_checksums", defaults.VerifyChecksums)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix("RTVM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(ConfigFileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Settings) validate() error {
	s.Mirror = strings.TrimRight(strings.TrimSpace(s.Mirror), "/")
	if s.Mirror == "" {
		return fmt.Errorf("invalid setting mirror: must not be empty")
	}

	if s.Jobs < 1 {
		return fmt.Errorf("invalid setting jobs: %d (must be at least 1)", s.Jobs)
	}

	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid setting http_timeout: %s", s.HTTPTimeout)
	}

	switch s.Activation {
	case constants.ActivationAuto, constants.ActivationSymlink, constants.ActivationCopy:
	default:
		return fmt.Errorf("invalid setting activation: %q (want auto, symlink or copy)", s.Activation)
	}

	switch s.ArchiveFormat {
	case "", constants.ArchiveTarXz, constants.ArchiveTarGz, constants.ArchiveZip, constants.ArchiveSevenZip:
	default:
		return fmt.Errorf("invalid setting archive_format: %q", s.ArchiveFormat)
	}

	return nil
}

// Current returns the process-wide settings, loading them once. A broken
// config file falls back to defaults; the error is kept for SettingsError.
func Current() *Settings {
	settingsOnce.Do(func() {
		currentSettings, settingsErr = Load()
		if settingsErr != nil {
			currentSettings = DefaultSettings()
		}
	})
	return currentSettings
}

// SettingsError returns the error encountered loading settings, if any
func SettingsError() error {
	Current()
	return settingsErr
}

// ResetSettingsCache forces settings to be reloaded on next access
func ResetSettingsCache() {
	settingsOnce = sync.Once{}
	currentSettings = nil
	settingsErr = nil
}
