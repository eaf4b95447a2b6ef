package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball/scoreboard"

// Config holds all configuration for the bot
type Config struct {
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DiscordBotToken  string `mapstructure:"DISCORD_BOT_TOKEN"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	DefaultPoolName  string `mapstructure:"DEFAULT_POOL_NAME"`
	SchedulerEnabled bool   `mapstructure:"SCHEDULER_ENABLED"`
	ScoreSyncSpec    string `mapstructure:"SCORE_SYNC_SPEC"`
	ScoreboardURL    string `mapstructure:"ESPN_SCOREBOARD_URL"`
}

var keys = []string{
	"DATABASE_URL",
	"DISCORD_BOT_TOKEN",
	"LOG_LEVEL",
	"DEFAULT_POOL_NAME",
	"SCHEDULER_ENABLED",
	"SCORE_SYNC_SPEC",
	"ESPN_SCOREBOARD_URL",
}

// Load reads .env (if present), an optional config.yaml and the environment, in increasing
// order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	// AutomaticEnv only answers Get; Unmarshal needs every key bound explicitly.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEFAULT_POOL_NAME", "Main Pool")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCORE_SYNC_SPEC", "0 */10 * * * *")
	v.SetDefault("ESPN_SCOREBOARD_URL", DefaultScoreboardURL)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL not set in environment variables")
	}
	if strings.TrimSpace(c.ScoreSyncSpec) == "" {
		return fmt.Errorf("SCORE_SYNC_SPEC must not be empty")
	}
	return nil
}

// BotEnabled reports whether a Discord token was configured.
func (c *Config) BotEnabled() bool {
	return strings.TrimSpace(c.DiscordBotToken) != ""
}
