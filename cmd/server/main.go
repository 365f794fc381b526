package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/palemoky/bingo-hall/internal/config"
	"github.com/palemoky/bingo-hall/internal/logger"
	"github.com/palemoky/bingo-hall/internal/server"
)

var CLI struct {
	Config   string `short:"c" help:"配置文件路径（为空时只使用默认值与 BINGO_* 环境变量）" type:"path"`
	Addr     string `short:"a" help:"监听地址 host:port（覆盖配置）"`
	LogLevel string `short:"l" help:"日志级别 debug/info/warn/error（覆盖配置）"`
	Ledger   string `help:"账本后端 redis/memory（覆盖配置）"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("bingo-server"),
		kong.Description("多房间实时宾果服务器"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.Error("加载配置失败", "path", CLI.Config, "error", err)
		kctx.Exit(1)
	}
	if err := applyOverrides(cfg); err != nil {
		log.Error("命令行参数无效", "error", err)
		kctx.Exit(1)
	}

	l, closer, err := logger.Init(cfg.Log)
	if err != nil {
		log.Error("初始化日志失败", "error", err)
		kctx.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := server.OpenBackend(ctx, cfg)
	if err != nil {
		l.Error("打开账本后端失败", "backend", cfg.Ledger.Backend, "error", err)
		kctx.Exit(1)
	}

	srv := server.NewServer(cfg, backend, server.Options{Logger: l})
	l.Info("🎱 宾果服务器启动中...", "rooms", len(cfg.Rooms), "tick", cfg.Game.TickInterval())
	if err := srv.Run(ctx); err != nil {
		l.Error("服务器异常退出", "error", err)
		kctx.Exit(1)
	}
}

// applyOverrides 命令行参数覆盖配置文件与环境变量
func applyOverrides(cfg *config.Config) error {
	if CLI.Addr != "" {
		host, port, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			return err
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return err
		}
		cfg.Server.Host, cfg.Server.Port = host, p
	}
	if CLI.LogLevel != "" {
		cfg.Log.Level = CLI.LogLevel
	}
	if CLI.Ledger != "" {
		cfg.Ledger.Backend = CLI.Ledger
	}
	return cfg.Validate()
}
