package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"domino/internal/domain"
)

// Rule presets selectable with rule_preset.
const (
	PresetStrict  = "strict"
	PresetLenient = "lenient"
)

type HistoryConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type EventsConfig struct {
	NATSURL       string        `mapstructure:"nats_url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type ArchiveConfig struct {
	DSN string `mapstructure:"dsn"`
}

type GameConfig struct {
	TurnTimeoutSeconds int  `mapstructure:"turn_timeout_seconds"`
	TimeoutAutoPlay    bool `mapstructure:"timeout_auto_play"`
	BotMinDelaySeconds int  `mapstructure:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int  `mapstructure:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int    `mapstructure:"bot_auto_fill_delay_seconds"`
	DefaultVariant          string `mapstructure:"default_variant"`
	RulePreset              string `mapstructure:"rule_preset"`

	History HistoryConfig `mapstructure:"history"`
	Events  EventsConfig  `mapstructure:"events"`
	Archive ArchiveConfig `mapstructure:"archive"`

	rules map[domain.VariantKind]domain.RuleSet
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("turn_timeout_seconds", 30)
	v.SetDefault("timeout_auto_play", false)
	v.SetDefault("bot_min_delay_seconds", 1)
	v.SetDefault("bot_max_delay_seconds", 3)
	v.SetDefault("bot_auto_fill_delay_seconds", 5)
	v.SetDefault("default_variant", string(domain.AllFives))
	v.SetDefault("rule_preset", PresetStrict)
	v.SetDefault("history.redis_addr", "")
	v.SetDefault("history.redis_password", "")
	v.SetDefault("history.redis_db", 0)
	v.SetDefault("history.ttl", 24*time.Hour)
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.max_reconnects", 10)
	v.SetDefault("events.reconnect_wait", 2*time.Second)
	v.SetDefault("archive.dsn", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DOMINO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the YAML file at path with DOMINO_* environment overrides.
// An empty path loads defaults and environment only.
func Load(path string) (*GameConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*GameConfig, error) {
	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.RulePreset != PresetStrict && c.RulePreset != PresetLenient {
		return nil, fmt.Errorf("unknown rule preset %q", c.RulePreset)
	}
	if _, err := domain.VariantFor(domain.VariantKind(c.DefaultVariant)); err != nil {
		return nil, fmt.Errorf("default variant: %w", err)
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = c.BotMinDelaySeconds
	}

	c.rules = make(map[domain.VariantKind]domain.RuleSet, len(domain.Variants))
	for _, kind := range domain.Variants {
		rules := preset(c.RulePreset, kind)
		key := "variants." + string(kind)
		if v.IsSet(key) {
			if err := v.UnmarshalKey(key, &rules); err != nil {
				return nil, fmt.Errorf("variant %s: %w", kind, err)
			}
		}
		if err := rules.Validate(); err != nil {
			return nil, fmt.Errorf("variant %s: %w", kind, err)
		}
		c.rules[kind] = rules
	}
	return &c, nil
}

func preset(name string, kind domain.VariantKind) domain.RuleSet {
	if name == PresetLenient {
		return domain.LenientRules(kind)
	}
	return domain.StrictRules(kind)
}

// Defaults returns the built-in configuration, ignoring files and environment.
func Defaults() *GameConfig {
	v := viper.New()
	setDefaults(v)
	c, _ := decode(v)
	return c
}

// LoadGameConfig loads the game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return cfg
}

// RulesFor returns the configured rules of kind. Unknown variants get the strict preset.
func (c *GameConfig) RulesFor(kind domain.VariantKind) domain.RuleSet {
	if rules, ok := c.rules[kind]; ok {
		return rules
	}
	return domain.StrictRules(kind)
}
