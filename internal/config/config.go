package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gt=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,origin"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Captions   CaptionsConfig   `mapstructure:"captions"`
	Generation GenerationConfig `mapstructure:"generation"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Outputs    OutputsConfig    `mapstructure:"outputs"`
}

type CaptionsConfig struct {
	Language string `mapstructure:"language" validate:"required"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`
}

type GenerationConfig struct {
	Provider         string      `mapstructure:"provider" validate:"oneof=openrouter openai"`
	BaseURL          string      `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey           string      `mapstructure:"api_key"`
	Model            string      `mapstructure:"model" validate:"required"`
	MaxRetryAttempts uint        `mapstructure:"max_retry_attempts"`
	TimeoutSeconds   int         `mapstructure:"timeout_seconds" validate:"gte=0"`
	Notes            StageConfig `mapstructure:"notes"`
	MockTest         StageConfig `mapstructure:"mock_test"`
	Mentor           StageConfig `mapstructure:"mentor"`
}

// StageConfig holds the sampling parameters of one generation stage.
type StageConfig struct {
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

type CacheConfig struct {
	Driver     string      `mapstructure:"driver" validate:"oneof=memory file sqlite mysql redis"`
	Directory  string      `mapstructure:"directory" validate:"required_if=Driver file,localpath"`
	SQLitePath string      `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite,localpath"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type OutputsConfig struct {
	Directory string `mapstructure:"directory" validate:"localpath"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tubenotes")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

var envBindings = map[string][]string{
	"generation.api_key":   {"OPENROUTER_API_KEY", "OPENAI_API_KEY"},
	"generation.model":     {"GENERATION_MODEL"},
	"generation.provider":  {"GENERATION_PROVIDER"},
	"generation.base_url":  {"GENERATION_BASE_URL"},
	"cache.driver":         {"TUBENOTES_CACHE_DRIVER"},
	"cache.redis.addr":     {"REDIS_ADDR"},
	"cache.redis.password": {"REDIS_PASSWORD"},
	"database.password":    {"DB_PASSWORD"},
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("captions.language", "en")
	v.SetDefault("captions.base_url", "https://www.youtube.com")
	v.SetDefault("generation.provider", "openrouter")
	v.SetDefault("generation.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("generation.model", "deepseek/deepseek-r1:free")
	v.SetDefault("generation.max_retry_attempts", 0)
	v.SetDefault("generation.timeout_seconds", 0)
	v.SetDefault("generation.notes.max_tokens", 5000)
	v.SetDefault("generation.notes.temperature", 0.7)
	v.SetDefault("generation.mock_test.max_tokens", 3000)
	v.SetDefault("generation.mock_test.temperature", 0.7)
	v.SetDefault("generation.mentor.max_tokens", 1500)
	v.SetDefault("generation.mentor.temperature", 0.7)
	v.SetDefault("cache.driver", "file")
	v.SetDefault("cache.directory", filepath.Join("cache", "notes"))
	v.SetDefault("cache.sqlite_path", filepath.Join("cache", "notes.db"))
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.prefix", "tubenotes:")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("outputs.directory", "outputs")

	// Secrets and deployment switches come from the environment only when set there
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variables: %w", strings.Join(envs, ","), err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// LoadDotEnv exports the variables of a .env file into the process environment.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("godotenv.Load(%s) > %w", path, err)
		}
	}
	return nil
}
