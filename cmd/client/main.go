package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/sound"
	"github.com/palemoky/bingo-hall/internal/transport"
	"github.com/palemoky/bingo-hall/internal/ui"
)

var CLI struct {
	Server  string `short:"s" default:"localhost:1780" help:"服务器地址"`
	Player  string `short:"p" required:"" help:"玩家 ID（稳定身份）"`
	Name    string `short:"n" help:"显示名，默认与玩家 ID 相同"`
	Codec   string `default:"json" enum:"json,proto" help:"帧格式"`
	Sounds  string `default:"assets/sounds" type:"path" help:"音效目录"`
	NoSound bool   `help:"关闭音效"`
	LogFile string `default:"bingo-client.log" type:"path" help:"日志文件（界面占用终端）"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("bingo"),
		kong.Description("终端宾果客户端"),
		kong.UsageOnError(),
	)

	f, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开日志文件失败: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = f.Close() }()
	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "client"})

	frameCodec, err := codec.ByName(CLI.Codec)
	kctx.FatalIfErrorf(err)
	client, err := transport.NewClient(fmt.Sprintf("ws://%s/ws", CLI.Server), frameCodec, logger)
	kctx.FatalIfErrorf(err)

	var player *sound.Player
	if !CLI.NoSound {
		player = sound.NewPlayer(CLI.Sounds)
		if err := player.Init(); err != nil {
			logger.Warn("音效初始化失败，静音运行", "error", err)
			player = nil
		}
	}
	if player != nil {
		defer player.Close()
	}

	name := CLI.Name
	if name == "" {
		name = CLI.Player
	}
	model := ui.NewModel(client, ui.Identity{PlayerID: CLI.Player, Name: name}, player)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("客户端异常退出", "error", err)
		fmt.Fprintf(os.Stderr, "启动客户端时出错: %v\n", err)
		kctx.Exit(1)
	}
}
