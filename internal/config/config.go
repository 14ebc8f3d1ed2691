// Package config provides Viper-based configuration loading for the fantasy engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres" or "memory".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections. Zero waits forever.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxSessions caps concurrent sessions; further connections are turned away. Zero means no cap.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig points at the YAML content directory.
type ContentConfig struct {
	// Dir holds classes.yaml, enemies.yaml and story.yaml. Empty selects the built-in content.
	Dir string `mapstructure:"dir"`
}

// RulesConfig holds the numeric tuning of combat and progression.
type RulesConfig struct {
	BasicVictoryXP     int     `mapstructure:"basic_victory_xp"`
	BossVictoryXP      int     `mapstructure:"boss_victory_xp"`
	AbilityMultiplier  float64 `mapstructure:"ability_multiplier"`
	DivineShieldPct    float64 `mapstructure:"divine_shield_pct"`
	HalfStepTimers     bool    `mapstructure:"half_step_timers"`
	StepXP             int     `mapstructure:"step_xp"`
	EncounterChancePct int     `mapstructure:"encounter_chance_pct"`
	EncounterVictoryXP int     `mapstructure:"encounter_victory_xp"`
	BasicScaleSpan     float64 `mapstructure:"basic_scale_span"`
	BossScaleSpan      float64 `mapstructure:"boss_scale_span"`
	BossEvery          int     `mapstructure:"boss_every"`
	BossBaseXP         int     `mapstructure:"boss_base_xp"`
	BossStepXP         int     `mapstructure:"boss_step_xp"`
	DeclinePenalty     string  `mapstructure:"decline_penalty"`
	XPPerLevel         int     `mapstructure:"xp_per_level"`
	LevelAttackBonus   int     `mapstructure:"level_attack_bonus"`
	LevelHPBonus       int     `mapstructure:"level_hp_bonus"`
}

// GameConfig holds per-run settings.
type GameConfig struct {
	// Seed makes every random draw reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
	// Color enables ANSI color in narration.
	Color bool `mapstructure:"color"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Content  ContentConfig  `mapstructure:"content"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "memory": true}
	if !validDrivers[s.Driver] {
		return fmt.Errorf("storage.driver must be one of [sqlite, postgres, memory], got %q", s.Driver)
	}
	if s.Driver == "sqlite" && s.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path must not be empty for the sqlite driver")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.MaxSessions < 0 {
		errs = append(errs, fmt.Sprintf("telnet.max_sessions must not be negative, got %d", t.MaxSessions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.EncounterChancePct < 0 || r.EncounterChancePct > 100 {
		errs = append(errs, fmt.Sprintf("rules.encounter_chance_pct must be 0-100, got %d", r.EncounterChancePct))
	}
	if r.DivineShieldPct < 0 || r.DivineShieldPct > 1 {
		errs = append(errs, fmt.Sprintf("rules.divine_shield_pct must be within [0, 1], got %v", r.DivineShieldPct))
	}
	if r.AbilityMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("rules.ability_multiplier must be >= 1, got %v", r.AbilityMultiplier))
	}
	if r.BossEvery < 1 {
		errs = append(errs, fmt.Sprintf("rules.boss_every must be >= 1, got %d", r.BossEvery))
	}
	if r.XPPerLevel < 1 {
		errs = append(errs, fmt.Sprintf("rules.xp_per_level must be >= 1, got %d", r.XPPerLevel))
	}
	if r.DeclinePenalty == "" {
		errs = append(errs, "rules.decline_penalty must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and FANTASY_ environment overrides applied.
//
// Postcondition: Returns a non-nil Viper ready for ReadInConfig or flag binding.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with FANTASY_ prefix
	v.SetEnvPrefix("FANTASY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "fantasy.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fantasy")
	v.SetDefault("database.password", "fantasy")
	v.SetDefault("database.name", "fantasy")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "0s")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.max_sessions", 64)

	v.SetDefault("content.dir", "")

	v.SetDefault("rules.basic_victory_xp", 14)
	v.SetDefault("rules.boss_victory_xp", 70)
	v.SetDefault("rules.ability_multiplier", 1.5)
	v.SetDefault("rules.divine_shield_pct", 0.7)
	v.SetDefault("rules.half_step_timers", true)
	v.SetDefault("rules.step_xp", 7)
	v.SetDefault("rules.encounter_chance_pct", 30)
	v.SetDefault("rules.encounter_victory_xp", 7)
	v.SetDefault("rules.basic_scale_span", 0.5)
	v.SetDefault("rules.boss_scale_span", 1.2)
	v.SetDefault("rules.boss_every", 10)
	v.SetDefault("rules.boss_base_xp", 50)
	v.SetDefault("rules.boss_step_xp", 2)
	v.SetDefault("rules.decline_penalty", "1d3-1")
	v.SetDefault("rules.xp_per_level", 20)
	v.SetDefault("rules.level_attack_bonus", 1)
	v.SetDefault("rules.level_hp_bonus", 5)

	v.SetDefault("game.seed", 0)
	v.SetDefault("game.color", true)
}
