package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"hlkit/internal/grammar"
	"hlkit/internal/logger"
	"hlkit/internal/outline"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/tracing"
)

type outlineConfig struct {
	SectionMarkers    []string `mapstructure:"section_markers"`
	AdjustMarkerDepth bool     `mapstructure:"adjust_marker_depth"`
	Flatten           bool     `mapstructure:"flatten"`
}

type cacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type symbolsConfig struct {
	ExcludeTests bool     `mapstructure:"exclude_tests"`
	Exclude      []string `mapstructure:"exclude"`
	Hidden       bool     `mapstructure:"hidden"`
	Workers      int      `mapstructure:"workers"`
	Limit        int      `mapstructure:"limit"`
	NoCache      bool     `mapstructure:"no_cache"`
}

type config struct {
	Grammars           string        `mapstructure:"grammars"`
	Theme              string        `mapstructure:"theme"`
	Escape             string        `mapstructure:"escape"`
	Backend            string        `mapstructure:"backend"`
	EditorCmd          string        `mapstructure:"editor_cmd"`
	HighlightDelay     time.Duration `mapstructure:"highlight_delay"`
	OutlineDelay       time.Duration `mapstructure:"outline_delay"`
	BootstrapLength    int           `mapstructure:"bootstrap_length"`
	MinimumParseLength int           `mapstructure:"minimum_parse_length"`

	Outline outlineConfig  `mapstructure:"outline"`
	Log     logger.Config  `mapstructure:"log"`
	Tracing tracing.Config `mapstructure:"tracing"`
	Cache   cacheConfig    `mapstructure:"cache"`
	Symbols symbolsConfig  `mapstructure:"symbols"`
}

const (
	backendRegex      = "regex"
	backendTreeSitter = "treesitter"
)

var errInvalidConfig = errors.New("invalid configuration")

func setDefaults(v *viper.Viper) {
	tc := tracing.DefaultConfig()

	v.SetDefault("grammars", "")
	v.SetDefault("theme", "nord")
	v.SetDefault("escape", "backslash")
	v.SetDefault("backend", backendRegex)
	v.SetDefault("editor_cmd", "")
	v.SetDefault("highlight_delay", syntaxctl.DefaultHighlightDelay)
	v.SetDefault("outline_delay", syntaxctl.DefaultOutlineDelay)
	v.SetDefault("bootstrap_length", syntaxctl.DefaultBootstrapLength)
	v.SetDefault("minimum_parse_length", syntaxctl.DefaultMinimumParseLength)
	v.SetDefault("outline.section_markers", []string{string(grammar.OutlineSeparator)})
	v.SetDefault("outline.adjust_marker_depth", false)
	v.SetDefault("outline.flatten", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", tc.Exporter)
	v.SetDefault("tracing.file", "")
	v.SetDefault("tracing.endpoint", tc.OTLPEndpoint)
	v.SetDefault("tracing.service", tc.ServiceName)
	v.SetDefault("cache.ttl", 30*time.Minute)
	v.SetDefault("symbols.exclude_tests", false)
	v.SetDefault("symbols.exclude", []string{})
	v.SetDefault("symbols.hidden", false)
	v.SetDefault("symbols.workers", max(1, runtime.GOMAXPROCS(0)-1))
	v.SetDefault("symbols.limit", 50)
	v.SetDefault("symbols.no_cache", false)
}

// readConfig loads cfgFile, or hlkit.yaml from the working directory or
// the user config directory. A missing file leaves the defaults.
func readConfig(v *viper.Viper, cfgFile string) (config, error) {
	setDefaults(v)
	v.SetEnvPrefix("HLKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("hlkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "hlkit"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	switch strings.ToLower(c.Backend) {
	case backendRegex, backendTreeSitter:
	default:
		return fmt.Errorf("backend %q: use %s or %s (%w)", c.Backend, backendRegex, backendTreeSitter, errInvalidConfig)
	}
	if c.HighlightDelay < 0 || c.OutlineDelay < 0 {
		return fmt.Errorf("delays must not be negative (%w)", errInvalidConfig)
	}
	if c.BootstrapLength < 0 || c.MinimumParseLength < 0 {
		return fmt.Errorf("lengths must not be negative (%w)", errInvalidConfig)
	}
	for _, k := range c.Outline.SectionMarkers {
		var kind grammar.OutlineKind
		if err := kind.UnmarshalText([]byte(k)); err != nil {
			return fmt.Errorf("outline.section_markers: %w (%w)", err, errInvalidConfig)
		}
	}
	return nil
}

func (c config) policy() outline.Policy {
	p := outline.Policy{
		AdjustSectionMarkerDepth: c.Outline.AdjustMarkerDepth,
		FlattenLevels:            c.Outline.Flatten,
	}
	for _, k := range c.Outline.SectionMarkers {
		p.SectionMarkerKinds = append(p.SectionMarkerKinds, grammar.OutlineKind(k))
	}
	return p
}
