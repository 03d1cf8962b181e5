// Package config loads CLI settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	fpe "github.com/vdparikh/rangefpe"
	"github.com/vdparikh/rangefpe/subtle"
)

// Config holds engine and logging settings.
type Config struct {
	Cipher        string `validate:"required,cipher"`
	Rounds        int    `validate:"gte=3,odd"`
	KeysetPath    string `validate:"required"`
	MinValue      string `validate:"required,number"`
	MaxValue      string `validate:"required,number"`
	MaxCycleWalks int    `validate:"gte=0"`
	LogLevel      string `validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cipher", func(fl validator.FieldLevel) bool {
		return subtle.IsSupported(fl.Field().String())
	})
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 1
	})
	return v
}

// Load reads envFile (if present) into the environment, then builds a Config
// from environment variables with defaults. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	rounds, err := getEnvInt("RANGEFPE_ROUNDS", 7)
	if err != nil {
		return nil, err
	}
	walks, err := getEnvInt("RANGEFPE_MAX_CYCLE_WALKS", fpe.DefaultMaxCycleWalks)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Cipher:        getEnv("RANGEFPE_CIPHER", "aes-256-cbc"),
		Rounds:        rounds,
		KeysetPath:    getEnv("RANGEFPE_KEYSET", "rangefpe_keyset.json"),
		MinValue:      getEnv("RANGEFPE_MIN", fpe.DefaultMinValue),
		MaxValue:      getEnv("RANGEFPE_MAX", fpe.DefaultMaxValue),
		MaxCycleWalks: walks,
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field. Range semantics (max > min, side size) are
// left to fpe.NewDomain.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
