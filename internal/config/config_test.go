package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000
  deposit_token: "s3cret"
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

ledger:
  backend: memory

game:
  tick_interval_ms: 500
  draw_interval: 2
  starting_bonus: 100
  payout_ratio: 0.9
  board_secret: "hall"
  draw_seed: 7

rooms:
  - id: "VIP"
    stake: 100
    lobby_duration: 45

log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.Equal(t, "s3cret", cfg.Server.DepositToken)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, LedgerMemory, cfg.Ledger.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.TickInterval())
	assert.Equal(t, 2, cfg.Game.DrawInterval)
	assert.InDelta(t, 100.0, cfg.Game.StartingBonus, 1e-9)
	assert.InDelta(t, 0.9, cfg.Game.PayoutRatio, 1e-9)
	assert.Equal(t, "hall", cfg.Game.BoardSecret)
	assert.Equal(t, uint64(7), cfg.Game.DrawSeed)
	assert.Equal(t, []RoomConfig{{ID: "VIP", Stake: 100, LobbyDuration: 45}}, cfg.Rooms)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// 未写出的字段保留默认值
	assert.Equal(t, 2*time.Second, cfg.Game.LedgerTimeout())
	assert.Equal(t, int64(10000), cfg.Game.MaxBoardNumber)
}

func TestLoad_PartialConfigKeepsDefaultRooms(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, Default().Rooms, cfg.Rooms)
	assert.InDelta(t, 0.8, cfg.Game.PayoutRatio, 1e-9)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
ledger:
  backend: sqlite
rooms:
  - id: R1
    stake: 10
    lobby_duration: 30
  - id: R1
    stake: 0
    lobby_duration: 30
`))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "ledger.backend")
	assert.Contains(t, err.Error(), "duplicated")
	assert.Contains(t, err.Error(), "rooms[1].stake")
}

// 环境变量测试不能并行
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BINGO_SERVER_PORT", "7000")
	t.Setenv("BINGO_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BINGO_REDIS_ADDR", "cache:6380")
	t.Setenv("BINGO_LEDGER_BACKEND", "memory")
	t.Setenv("BINGO_GAME_DRAW_INTERVAL", "3")
	t.Setenv("BINGO_GAME_BOARD_SECRET", "from-env")
	t.Setenv("BINGO_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\nledger:\n  backend: redis\n"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, LedgerMemory, cfg.Ledger.Backend)
	assert.Equal(t, 3, cfg.Game.DrawInterval)
	assert.Equal(t, "from-env", cfg.Game.BoardSecret)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("BINGO_GAME_PAYOUT_RATIO", "0.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cfg.Game.PayoutRatio, 1e-9)
	assert.Len(t, cfg.Rooms, 2)
}

func TestLoad_EnvInvalidValue(t *testing.T) {
	t.Setenv("BINGO_SERVER_PORT", "not-a-number")

	_, err := Load("")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1780, cfg.Server.Port)
	assert.Equal(t, LedgerRedis, cfg.Ledger.Backend)
	assert.Equal(t, time.Second, cfg.Game.TickInterval())
	assert.Equal(t, 5*time.Minute, cfg.Server.ShutdownTimeout())
	assert.Equal(t, 4, cfg.Game.DrawInterval)
	assert.InDelta(t, 50.0, cfg.Game.StartingBonus, 1e-9)
	assert.Equal(t, []RoomConfig{
		{ID: "R1", Stake: 10, LobbyDuration: 30},
		{ID: "R2", Stake: 50, LobbyDuration: 60},
	}, cfg.Rooms)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero tick", func(c *Config) { c.Game.TickIntervalMs = 0 }, "tick_interval_ms"},
		{"zero draw", func(c *Config) { c.Game.DrawInterval = 0 }, "draw_interval"},
		{"ratio above one", func(c *Config) { c.Game.PayoutRatio = 1.5 }, "payout_ratio"},
		{"negative bonus", func(c *Config) { c.Game.StartingBonus = -1 }, "starting_bonus"},
		{"no rooms", func(c *Config) { c.Rooms = nil }, "at least one room"},
		{"empty room id", func(c *Config) { c.Rooms[0].ID = "" }, "rooms[0].id"},
		{"zero lobby", func(c *Config) { c.Rooms[1].LobbyDuration = 0 }, "rooms[1].lobby_duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
