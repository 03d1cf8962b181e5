package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fpe "github.com/vdparikh/rangefpe"
)

var envKeys = []string{
	"RANGEFPE_CIPHER",
	"RANGEFPE_ROUNDS",
	"RANGEFPE_KEYSET",
	"RANGEFPE_MIN",
	"RANGEFPE_MAX",
	"RANGEFPE_MAX_CYCLE_WALKS",
	"LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "aes-256-cbc", cfg.Cipher)
	assert.Equal(t, 7, cfg.Rounds)
	assert.Equal(t, "rangefpe_keyset.json", cfg.KeysetPath)
	assert.Equal(t, fpe.DefaultMinValue, cfg.MinValue)
	assert.Equal(t, fpe.DefaultMaxValue, cfg.MaxValue)
	assert.Equal(t, fpe.DefaultMaxCycleWalks, cfg.MaxCycleWalks)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANGEFPE_CIPHER", "twofish-128-cbc")
	t.Setenv("RANGEFPE_ROUNDS", "11")
	t.Setenv("RANGEFPE_MIN", "100")
	t.Setenv("RANGEFPE_MAX", "999")
	t.Setenv("RANGEFPE_MAX_CYCLE_WALKS", "0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "twofish-128-cbc", cfg.Cipher)
	assert.Equal(t, 11, cfg.Rounds)
	assert.Equal(t, "100", cfg.MinValue)
	assert.Equal(t, "999", cfg.MaxValue)
	assert.Zero(t, cfg.MaxCycleWalks)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range envKeys {
		// godotenv never overrides variables that are already set.
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	content := "RANGEFPE_CIPHER=aes-128-ecb\nRANGEFPE_ROUNDS=5\nRANGEFPE_KEYSET=/tmp/keys.json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range envKeys {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "aes-128-ecb", cfg.Cipher)
	assert.Equal(t, 5, cfg.Rounds)
	assert.Equal(t, "/tmp/keys.json", cfg.KeysetPath)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"Even rounds", "RANGEFPE_ROUNDS", "4"},
		{"Too few rounds", "RANGEFPE_ROUNDS", "1"},
		{"Non numeric rounds", "RANGEFPE_ROUNDS", "seven"},
		{"Unknown cipher", "RANGEFPE_CIPHER", "des-ede3-cbc"},
		{"Non numeric max", "RANGEFPE_MAX", "1e9"},
		{"Negative walk cap", "RANGEFPE_MAX_CYCLE_WALKS", "-1"},
		{"Bad log level", "LOG_LEVEL", "verbose"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load(missingFile(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Cipher:     "aes-192-cbc",
		Rounds:     3,
		KeysetPath: "k.json",
		MinValue:   "0",
		MaxValue:   "10",
		LogLevel:   "WARN",
	}
	require.NoError(t, cfg.Validate())

	cfg.Rounds = 8
	assert.ErrorContains(t, cfg.Validate(), "Rounds")
}
