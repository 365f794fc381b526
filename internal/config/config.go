package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 BINGO_SERVER_PORT
const EnvPrefix = "BINGO_"

// 账本后端
const (
	LedgerRedis  = "redis"
	LedgerMemory = "memory"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Ledger LedgerConfig `yaml:"ledger"`
	Game   GameConfig   `yaml:"game"`
	Rooms  []RoomConfig `yaml:"rooms"` // 不支持环境变量覆盖
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host               string   `yaml:"host"                 env:"HOST"`
	Port               int      `yaml:"port"                 env:"PORT"`
	MaxConnections     int      `yaml:"max_connections"      env:"MAX_CONNECTIONS"`
	DepositToken       string   `yaml:"deposit_token"        env:"DEPOSIT_TOKEN"` // 充值接口共享密钥，空则不校验
	AllowedOrigins     []string `yaml:"allowed_origins"      env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_sec" env:"SHUTDOWN_TIMEOUT_SEC"` // 优雅关闭等待进行中的本轮
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db"       env:"DB"`
}

// LedgerConfig 账本配置
type LedgerConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"` // redis/memory
}

// GameConfig 游戏配置
type GameConfig struct {
	TickIntervalMs  int     `yaml:"tick_interval_ms"  env:"TICK_INTERVAL_MS"`  // 一个计时单位（毫秒）
	DrawInterval    int     `yaml:"draw_interval"     env:"DRAW_INTERVAL"`     // 两次开号间隔（计时单位）
	StartingBonus   float64 `yaml:"starting_bonus"    env:"STARTING_BONUS"`    // 新玩家赠送余额
	PayoutRatio     float64 `yaml:"payout_ratio"      env:"PAYOUT_RATIO"`      // 奖池比例
	LedgerTimeoutMs int     `yaml:"ledger_timeout_ms" env:"LEDGER_TIMEOUT_MS"` // 单次账本调用超时（毫秒）
	BoardSecret     string  `yaml:"board_secret"      env:"BOARD_SECRET"`      // 卡片密钥，空则使用零密钥
	DrawSeed        uint64  `yaml:"draw_seed"         env:"DRAW_SEED"`         // 开号随机种子，0 表示随机
	MaxBoardNumber  int64   `yaml:"max_board_number"  env:"MAX_BOARD_NUMBER"`  // 可选卡号上限
}

// RoomConfig 房间配置（启动时创建，不可变）
type RoomConfig struct {
	ID            string  `yaml:"id"`
	Stake         float64 `yaml:"stake"`
	LobbyDuration int     `yaml:"lobby_duration"` // 大厅倒计时（计时单位）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`  // debug/info/warn/error
	Format string `yaml:"format" env:"FORMAT"` // text/json
	File   string `yaml:"file"   env:"FILE"`   // 为空输出到 stderr
}

// TickInterval 返回计时单位时长
func (c *GameConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// LedgerTimeout 返回账本调用超时时长
func (c *GameConfig) LedgerTimeout() time.Duration {
	return time.Duration(c.LedgerTimeoutMs) * time.Millisecond
}

// ShutdownTimeout 返回优雅关闭等待时长
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load 加载配置文件，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		// 文件中出现的 rooms 整体替换默认房间
		cfg.Rooms = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if len(cfg.Rooms) == 0 {
			cfg.Rooms = defaultRooms()
		}
	}

	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnv 按段应用 BINGO_<SECTION>_<KEY> 环境变量
func (c *Config) parseEnv() error {
	sections := []struct {
		prefix string
		target any
	}{
		{"SERVER_", &c.Server},
		{"REDIS_", &c.Redis},
		{"LEDGER_", &c.Ledger},
		{"GAME_", &c.Game},
		{"LOG_", &c.Log},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: EnvPrefix + s.prefix}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// applyDefaults 补全被显式置零的字段
func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = def.Server.MaxConnections
	}
	if c.Server.ShutdownTimeoutSec == 0 {
		c.Server.ShutdownTimeoutSec = def.Server.ShutdownTimeoutSec
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = def.Ledger.Backend
	}
	if c.Game.TickIntervalMs == 0 {
		c.Game.TickIntervalMs = def.Game.TickIntervalMs
	}
	if c.Game.DrawInterval == 0 {
		c.Game.DrawInterval = def.Game.DrawInterval
	}
	if c.Game.PayoutRatio == 0 {
		c.Game.PayoutRatio = def.Game.PayoutRatio
	}
	if c.Game.LedgerTimeoutMs == 0 {
		c.Game.LedgerTimeoutMs = def.Game.LedgerTimeoutMs
	}
	if c.Game.MaxBoardNumber == 0 {
		c.Game.MaxBoardNumber = def.Game.MaxBoardNumber
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Ledger.Backend != LedgerRedis && c.Ledger.Backend != LedgerMemory {
		errs = append(errs, fmt.Errorf("ledger.backend %q must be %q or %q", c.Ledger.Backend, LedgerRedis, LedgerMemory))
	}
	if c.Game.TickIntervalMs <= 0 {
		errs = append(errs, errors.New("game.tick_interval_ms must be positive"))
	}
	if c.Game.DrawInterval <= 0 {
		errs = append(errs, errors.New("game.draw_interval must be positive"))
	}
	if c.Game.PayoutRatio <= 0 || c.Game.PayoutRatio > 1 {
		errs = append(errs, fmt.Errorf("game.payout_ratio %v must be in (0, 1]", c.Game.PayoutRatio))
	}
	if c.Game.StartingBonus < 0 {
		errs = append(errs, errors.New("game.starting_bonus must not be negative"))
	}
	if c.Game.MaxBoardNumber <= 0 {
		errs = append(errs, errors.New("game.max_board_number must be positive"))
	}
	if len(c.Rooms) == 0 {
		errs = append(errs, errors.New("at least one room is required"))
	}

	seen := make(map[string]bool, len(c.Rooms))
	for i, r := range c.Rooms {
		switch {
		case r.ID == "":
			errs = append(errs, fmt.Errorf("rooms[%d].id is empty", i))
		case seen[r.ID]:
			errs = append(errs, fmt.Errorf("rooms[%d].id %q is duplicated", i, r.ID))
		}
		seen[r.ID] = true
		if r.Stake <= 0 {
			errs = append(errs, fmt.Errorf("rooms[%d].stake must be positive", i))
		}
		if r.LobbyDuration <= 0 {
			errs = append(errs, fmt.Errorf("rooms[%d].lobby_duration must be positive", i))
		}
	}

	return errors.Join(errs...)
}

func defaultRooms() []RoomConfig {
	return []RoomConfig{
		{ID: "R1", Stake: 10, LobbyDuration: 30},
		{ID: "R2", Stake: 50, LobbyDuration: 60},
	}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               1780,
			MaxConnections:     10000,
			ShutdownTimeoutSec: 300,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Ledger: LedgerConfig{
			Backend: LedgerRedis,
		},
		Game: GameConfig{
			TickIntervalMs:  1000,
			DrawInterval:    4,
			StartingBonus:   50,
			PayoutRatio:     0.8,
			LedgerTimeoutMs: 2000,
			MaxBoardNumber:  10000,
		},
		Rooms: defaultRooms(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
