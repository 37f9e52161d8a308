package config

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// Database Configuration
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// OpenAI Configuration
	OpenAIAPIKey          string `mapstructure:"OPENAI_API_KEY" validate:"required"`
	OpenAIChatModel       string `mapstructure:"OPENAI_CHAT_MODEL"`
	OpenAITranscribeModel string `mapstructure:"OPENAI_TRANSCRIBE_MODEL"`

	// Object Storage Configuration
	StorageURL    string `mapstructure:"STORAGE_URL" validate:"required"`
	StorageKey    string `mapstructure:"STORAGE_KEY" validate:"required"`
	StorageBucket string `mapstructure:"STORAGE_BUCKET"`

	// Downloader Configuration
	YtdlpPath      string `mapstructure:"YTDLP_PATH"`
	CookiesBrowser string `mapstructure:"COOKIES_BROWSER"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("mapstructure")
		if tag != "" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_TRANSCRIBE_MODEL", "whisper-1")
	viper.SetDefault("STORAGE_BUCKET", "media")
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("COOKIES_BROWSER", "chrome")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
