package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Telnet: TelnetConfig{
			Host:         "0.0.0.0",
			Port:         4000,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Battle: BattleConfig{
			MaxPartySize:     4,
			EnemyTemplate:    "goblin",
			EnemiesPerPlayer: 1,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestTelnetAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:4000", cfg.Telnet.Addr())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
telnet:
  host: 127.0.0.1
  port: 4001
  read_timeout: 1m
  write_timeout: 10s
logging:
  level: debug
  format: console
battle:
  max_party_size: 2
  enemy_template: orc
  enemies_per_player: 2
  clamp_heals: true
  seed: 42
content:
  dir: content
  script_dir: scripts
  instruction_limit: 5000
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Telnet.Port)
	assert.Equal(t, time.Minute, cfg.Telnet.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, BattleConfig{
		MaxPartySize:     2,
		EnemyTemplate:    "orc",
		EnemiesPerPlayer: 2,
		ClampHeals:       true,
		Seed:             42,
	}, cfg.Battle)
	assert.Equal(t, ContentConfig{Dir: "content", ScriptDir: "scripts", InstructionLimit: 5000}, cfg.Content)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Telnet.Port)
	assert.Equal(t, 5*time.Minute, cfg.Telnet.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.Telnet.IdleGracePeriod)
	assert.Equal(t, 4, cfg.Battle.MaxPartySize)
	assert.Equal(t, "goblin", cfg.Battle.EnemyTemplate)
	assert.Equal(t, 1, cfg.Battle.EnemiesPerPlayer)
	assert.False(t, cfg.Battle.ClampHeals)
	assert.Zero(t, cfg.Battle.Seed)
	assert.Empty(t, cfg.Content.Dir)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SKIRMISH_BATTLE_MAX_PARTY_SIZE", "2")
	t.Setenv("SKIRMISH_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Battle.MaxPartySize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("battle.enemy_template", "")

	_, err := LoadFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "battle.enemy_template")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateTelnetPort(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateTelnetTimeouts(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.ReadTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidateTelnetIdle(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.IdleTimeout = -time.Minute
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Telnet.IdleGracePeriod = -time.Minute
	assert.Error(t, cfg.Validate())
}

func TestValidateBattle(t *testing.T) {
	cfg := validConfig()
	cfg.Battle.MaxPartySize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.EnemyTemplate = "  "
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.EnemiesPerPlayer = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateContentInstructionLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Content.InstructionLimit = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateAggregatesViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.Port = 0
	cfg.Battle.MaxPartySize = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telnet.port")
	assert.Contains(t, err.Error(), "battle.max_party_size")
	assert.Contains(t, err.Error(), "logging.level")
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Telnet.Port = port
		err := cfg.Validate()
		if err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Generate ports outside valid range
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Telnet.Port = port
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyPartySizeMustBePositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(-50, 50).Draw(t, "size")
		cfg := validConfig()
		cfg.Battle.MaxPartySize = size
		err := cfg.Validate()
		if (size >= 1) != (err == nil) {
			t.Fatalf("max_party_size=%d: err=%v", size, err)
		}
	})
}
