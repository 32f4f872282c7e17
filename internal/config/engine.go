package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EngineConfig carries the tunables of the venue engine.
type EngineConfig struct {
	AmbienceWindow    int           `mapstructure:"ambienceWindow"`
	RatingWindow      int           `mapstructure:"ratingWindow"`
	CatalogRadiusDeg  float64       `mapstructure:"catalogRadiusDeg"`
	CatalogLimit      int           `mapstructure:"catalogLimit"`
	DefaultMaxPlayers int           `mapstructure:"defaultMaxPlayers"`
	DefaultSurface    string        `mapstructure:"defaultSurface"`
	HotIdleTimeout    time.Duration `mapstructure:"hotIdleTimeout"`
	ActiveIdleTimeout time.Duration `mapstructure:"activeIdleTimeout"`
	DecayInterval     time.Duration `mapstructure:"decayInterval"`
	StartingBalance   int64         `mapstructure:"startingBalance"`
	ReportReward      int64         `mapstructure:"reportReward"`
	MatchWinGain      int           `mapstructure:"matchWinGain"`
	StartingRating    int           `mapstructure:"startingRating"`
}

// MaxAmbienceWindow is the longest ambience history a venue may keep.
const MaxAmbienceWindow = 5

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AmbienceWindow:    MaxAmbienceWindow,
		RatingWindow:      30,
		CatalogRadiusDeg:  0.2,
		CatalogLimit:      100,
		DefaultMaxPlayers: 10,
		DefaultSurface:    "Bitume",
		HotIdleTimeout:    45 * time.Minute,
		ActiveIdleTimeout: 2 * time.Hour,
		DecayInterval:     time.Minute,
		StartingBalance:   450,
		ReportReward:      50,
		MatchWinGain:      12,
		StartingRating:    1250,
	}
}

type EngineConfigHolder struct {
	current atomic.Value // holds EngineConfig
}

// NewStaticEngineConfigHolder wraps a fixed config, for tests and tools.
func NewStaticEngineConfigHolder(cfg EngineConfig) *EngineConfigHolder {
	holder := &EngineConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewEngineConfigHolder(log *zap.Logger) (*EngineConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.engine")

	v := viper.New()

	v.SetConfigName("engine")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/streetsignal")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREETSIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEngineConfig()
	v.SetDefault("engine.ambienceWindow", defaults.AmbienceWindow)
	v.SetDefault("engine.ratingWindow", defaults.RatingWindow)
	v.SetDefault("engine.catalogRadiusDeg", defaults.CatalogRadiusDeg)
	v.SetDefault("engine.catalogLimit", defaults.CatalogLimit)
	v.SetDefault("engine.defaultMaxPlayers", defaults.DefaultMaxPlayers)
	v.SetDefault("engine.defaultSurface", defaults.DefaultSurface)
	v.SetDefault("engine.hotIdleTimeout", defaults.HotIdleTimeout)
	v.SetDefault("engine.activeIdleTimeout", defaults.ActiveIdleTimeout)
	v.SetDefault("engine.decayInterval", defaults.DecayInterval)
	v.SetDefault("engine.startingBalance", defaults.StartingBalance)
	v.SetDefault("engine.reportReward", defaults.ReportReward)
	v.SetDefault("engine.matchWinGain", defaults.MatchWinGain)
	v.SetDefault("engine.startingRating", defaults.StartingRating)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg EngineConfig
	if err := v.UnmarshalKey("engine", &cfg); err != nil {
		return nil, err
	}
	if err := validateEngineConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticEngineConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EngineConfig
		if err := v.UnmarshalKey("engine", &updated); err != nil {
			log.Warn("engine config reload failed", zap.Error(err))
			return
		}
		if err := holder.Set(updated); err != nil {
			log.Warn("invalid engine config ignored", zap.Error(err))
			return
		}
		log.Info("engine config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// Set validates cfg and makes it current.
func (h *EngineConfigHolder) Set(cfg EngineConfig) error {
	if err := validateEngineConfig(cfg); err != nil {
		return err
	}
	h.current.Store(cfg)
	return nil
}

func (h *EngineConfigHolder) Get() EngineConfig {
	if h == nil {
		return DefaultEngineConfig()
	}
	return h.current.Load().(EngineConfig)
}

func validateEngineConfig(cfg EngineConfig) error {
	if cfg.AmbienceWindow < 1 || cfg.AmbienceWindow > MaxAmbienceWindow {
		return fmt.Errorf("engine.ambienceWindow must be between 1 and %d", MaxAmbienceWindow)
	}
	if cfg.RatingWindow < 1 {
		return errors.New("engine.ratingWindow must be positive")
	}
	if cfg.CatalogRadiusDeg <= 0 {
		return errors.New("engine.catalogRadiusDeg must be positive")
	}
	if cfg.CatalogLimit < 1 {
		return errors.New("engine.catalogLimit must be positive")
	}
	if cfg.DefaultMaxPlayers < 1 {
		return errors.New("engine.defaultMaxPlayers must be positive")
	}
	if cfg.StartingBalance < 0 {
		return errors.New("engine.startingBalance cannot be negative")
	}
	if cfg.ReportReward < 1 {
		return errors.New("engine.reportReward must be positive")
	}
	return nil
}
