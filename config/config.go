// Package config loads interactivity settings from a config file, XFILTER_
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides, for example
// XFILTER_SELECTIONMAXDATAPOINTS=100 or XFILTER_EXPORT_BACKEND=s3.
const EnvPrefix = "XFILTER"

// Selection modes.
const (
	ModeSimple   = "simple"
	ModeAdvanced = "advanced"
)

// Features are feature switches that gate interactivity capabilities.
type Features struct {
	SelectionDataPoint              bool `mapstructure:"selectionDataPoint" yaml:"selectionDataPoint"`
	SelectionContextMenu            bool `mapstructure:"selectionContextMenu" yaml:"selectionContextMenu"`
	TooltipHandler                  bool `mapstructure:"tooltipHandler" yaml:"tooltipHandler"`
	TooltipResolveNumberFieldFormat bool `mapstructure:"tooltipResolveNumberFieldFormat" yaml:"tooltipResolveNumberFieldFormat"`
}

// Export configures the snapshot blob store.
type Export struct {
	// Backend is memory, local, minio or s3.
	Backend     string `mapstructure:"backend" yaml:"backend"`
	Path        string `mapstructure:"path" yaml:"path,omitempty"`
	Bucket      string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix      string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region      string `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey   string `mapstructure:"accessKey" yaml:"accessKey,omitempty"`
	SecretKey   string `mapstructure:"secretKey" yaml:"-"`
	Secure      bool   `mapstructure:"secure" yaml:"secure"`
	Compression string `mapstructure:"compression" yaml:"compression"`
	Codec       string `mapstructure:"codec" yaml:"codec"`
	CacheBytes  int64  `mapstructure:"cacheBytes" yaml:"cacheBytes,omitempty"`
}

// Settings are the interactivity settings.
type Settings struct {
	EnableSelection        bool   `mapstructure:"enableSelection" yaml:"enableSelection"`
	EnableContextMenu      bool   `mapstructure:"enableContextMenu" yaml:"enableContextMenu"`
	EnableTooltips         bool   `mapstructure:"enableTooltips" yaml:"enableTooltips"`
	EnableHighlight        bool   `mapstructure:"enableHighlight" yaml:"enableHighlight"`
	SelectionMaxDataPoints int    `mapstructure:"selectionMaxDataPoints" yaml:"selectionMaxDataPoints"`
	SelectionMode          string `mapstructure:"selectionMode" yaml:"selectionMode"`
	// TooltipDelayMS is the delay in milliseconds before a tooltip shows
	// while ctrl is held.
	TooltipDelayMS int    `mapstructure:"tooltipDelay" yaml:"tooltipDelay"`
	Locale         string `mapstructure:"locale" yaml:"locale"`
	LogLevel       string `mapstructure:"logLevel" yaml:"logLevel"`
	LogFormat      string `mapstructure:"logFormat" yaml:"logFormat"`

	Features Features `mapstructure:"features" yaml:"features"`
	Export   Export   `mapstructure:"export" yaml:"export"`
}

// TooltipDelay returns TooltipDelayMS as a duration.
func (s Settings) TooltipDelay() time.Duration {
	return time.Duration(s.TooltipDelayMS) * time.Millisecond
}

// Advanced reports whether the advanced selection mode is configured.
func (s Settings) Advanced() bool {
	return s.SelectionMode == ModeAdvanced
}

// Validate checks value ranges and enumerations.
func (s Settings) Validate() error {
	var errs []error
	if s.SelectionMaxDataPoints < 1 {
		errs = append(errs, fmt.Errorf("selectionMaxDataPoints must be positive, got %d", s.SelectionMaxDataPoints))
	}
	if s.SelectionMode != ModeSimple && s.SelectionMode != ModeAdvanced {
		errs = append(errs, fmt.Errorf("selectionMode must be %s or %s, got %q", ModeSimple, ModeAdvanced, s.SelectionMode))
	}
	if s.TooltipDelayMS < 0 {
		errs = append(errs, fmt.Errorf("tooltipDelay must not be negative, got %d", s.TooltipDelayMS))
	}
	switch s.Export.Backend {
	case "memory", "local", "minio", "s3":
	default:
		errs = append(errs, fmt.Errorf("export.backend %q is not supported", s.Export.Backend))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SetDefaults registers the default settings on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("enableSelection", d.EnableSelection)
	v.SetDefault("enableContextMenu", d.EnableContextMenu)
	v.SetDefault("enableTooltips", d.EnableTooltips)
	v.SetDefault("enableHighlight", d.EnableHighlight)
	v.SetDefault("selectionMaxDataPoints", d.SelectionMaxDataPoints)
	v.SetDefault("selectionMode", d.SelectionMode)
	v.SetDefault("tooltipDelay", d.TooltipDelayMS)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("logFormat", d.LogFormat)

	v.SetDefault("features.selectionDataPoint", d.Features.SelectionDataPoint)
	v.SetDefault("features.selectionContextMenu", d.Features.SelectionContextMenu)
	v.SetDefault("features.tooltipHandler", d.Features.TooltipHandler)
	v.SetDefault("features.tooltipResolveNumberFieldFormat", d.Features.TooltipResolveNumberFieldFormat)

	v.SetDefault("export.backend", d.Export.Backend)
	v.SetDefault("export.path", d.Export.Path)
	v.SetDefault("export.secure", d.Export.Secure)
	v.SetDefault("export.compression", d.Export.Compression)
	v.SetDefault("export.codec", d.Export.Codec)
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in settings. It ignores the environment; use
// Load or FromViper to apply overrides.
func Default() Settings {
	return Settings{
		EnableContextMenu:      true,
		EnableTooltips:         true,
		SelectionMaxDataPoints: 50,
		SelectionMode:          ModeSimple,
		Locale:                 "en-US",
		LogLevel:               "info",
		LogFormat:              "text",
		Features: Features{
			SelectionDataPoint:              true,
			SelectionContextMenu:            true,
			TooltipHandler:                  true,
			TooltipResolveNumberFieldFormat: true,
		},
		Export: Export{
			Backend:     "local",
			Path:        "exports",
			Secure:      true,
			Compression: "zstd",
			Codec:       "go-json",
		},
	}
}

// Load reads settings from path (YAML or JSON, by extension). An empty path
// loads defaults and environment overrides only.
func Load(path string) (Settings, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// Read reads YAML settings from r on top of the defaults.
func Read(r io.Reader) (Settings, error) {
	v := New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return Settings{}, fmt.Errorf("config: read: %w", err)
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Write encodes s as YAML. Secrets are left out.
func Write(w io.Writer, s Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}
