//go:build !ci

// Package sound 终端客户端的提示音
package sound

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

// Player 按名称播放预加载的音效
type Player struct {
	dir     string
	buffers map[Name]*beep.Buffer
	enabled bool
	mu      sync.RWMutex
}

// NewPlayer 创建播放器，dir 为空时使用 DefaultDir
func NewPlayer(dir string) *Player {
	if dir == "" {
		dir = DefaultDir
	}
	return &Player{
		dir:     dir,
		buffers: make(map[Name]*beep.Buffer),
	}
}

// Init 初始化扬声器并加载目录下已知名称的音效；目录不存在时静默
func (p *Player) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	files, err := os.ReadDir(p.dir)
	if errors.Is(err, os.ErrNotExist) {
		p.setEnabled(true)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		name := Name(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())))
		if !name.Known() {
			continue
		}
		// 单个文件损坏不影响其他音效
		if buf, err := decodeFile(filepath.Join(p.dir, file.Name()), ext); err == nil {
			p.mu.Lock()
			p.buffers[name] = buf
			p.mu.Unlock()
		}
	}

	p.setEnabled(true)
	return nil
}

func decodeFile(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	if ext == ".mp3" {
		streamer, format, err = mp3.Decode(f)
	} else {
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var source beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		source = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buf.Append(source)
	return buf, nil
}

func (p *Player) setEnabled(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = v
}

// Loaded 已加载的音效数量
func (p *Player) Loaded() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.buffers)
}

// Play 播放音效，未加载或未启用时什么也不做
func (p *Player) Play(name Name) {
	p.mu.RLock()
	buf, ok := p.buffers[name]
	enabled := p.enabled
	p.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

// Close 停止播放
func (p *Player) Close() {
	p.setEnabled(false)
}
