// Package config loads server settings from the environment and canvas
// preferences from the environment or an optional TOML file.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/tool"
)

type Config struct {
	Port            int        `envconfig:"PORT" default:"8080"`
	DatabaseURL     string     `envconfig:"DATABASE_URL"`
	SQLitePath      string     `envconfig:"SQLITE_PATH" default:"./data/annotate.db"`
	AssetDir        string     `envconfig:"ASSET_DIR" default:"./data/assets"`
	AllowedOrigins  []string   `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	SettingsFile    string     `envconfig:"SETTINGS_FILE"`
	LogLevel        slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`
	SystemClipboard bool       `envconfig:"SYSTEM_CLIPBOARD" default:"false"`

	Canvas
}

// Canvas holds the user preferences new canvases start from.
type Canvas struct {
	ObjectColor   string  `envconfig:"OBJECT_COLOR" default:"#FF0000" toml:"object_color"`
	LineWidth     float64 `envconfig:"LINE_WIDTH" default:"2" toml:"line_width"`
	HandleColor   string  `envconfig:"HANDLE_COLOR" default:"#1E90FF" toml:"handle_color"`
	Background    string  `envconfig:"BACKGROUND" default:"transparent" toml:"background"`
	FontFamily    string  `envconfig:"FONT_FAMILY" default:"Go" toml:"font_family"`
	FontSize      float64 `envconfig:"FONT_SIZE" default:"12" toml:"font_size"`
	PixelateBlock float64 `envconfig:"PIXELATE_BLOCK" default:"8" toml:"pixelate_block"`
	MaxZoom       float64 `envconfig:"MAX_ZOOM" default:"10" toml:"max_zoom"`
	HistoryLimit  int     `envconfig:"HISTORY_LIMIT" default:"0" toml:"history_limit"`
	DPIZoom       float64 `envconfig:"DPI_ZOOM" default:"1" toml:"dpi_zoom"`
}

// Transparent selects the checkered background.
const Transparent = "transparent"

type settingsFile struct {
	Canvas Canvas `toml:"canvas"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SettingsFile != "" {
		c, err := ReadCanvas(cfg.SettingsFile, cfg.Canvas)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg.Canvas = c
	}
	if _, err := cfg.Canvas.Settings(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadCanvas overlays the [canvas] table of a TOML file on base. Keys the
// file does not set keep their base value.
func ReadCanvas(path string, base Canvas) (Canvas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read settings: %w", err)
	}
	f := settingsFile{Canvas: base}
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
		return base, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return f.Canvas, nil
}

// Settings converts the preferences into canvas settings.
func (c Canvas) Settings() (canvas.Settings, error) {
	s := canvas.DefaultSettings()

	obj, err := ParseColor(c.ObjectColor)
	if err != nil {
		return s, fmt.Errorf("object color: %w", err)
	}
	handle, err := ParseColor(c.HandleColor)
	if err != nil {
		return s, fmt.Errorf("handle color: %w", err)
	}
	if strings.EqualFold(c.Background, Transparent) {
		s.Background = scene.Background{Checkered: true}
	} else {
		bg, err := ParseColor(c.Background)
		if err != nil {
			return s, fmt.Errorf("background: %w", err)
		}
		s.Background = scene.Background{Color: bg}
	}
	if !(c.LineWidth > 0) {
		return s, fmt.Errorf("line width %g: %w", c.LineWidth, canvas.ErrInvalidArgument)
	}
	if !(c.FontSize > 0) {
		return s, fmt.Errorf("font size %g: %w", c.FontSize, canvas.ErrInvalidArgument)
	}
	if !(c.DPIZoom > 0) {
		return s, fmt.Errorf("dpi zoom %g: %w", c.DPIZoom, canvas.ErrInvalidArgument)
	}
	if c.HistoryLimit < 0 {
		return s, fmt.Errorf("history limit %d: %w", c.HistoryLimit, canvas.ErrInvalidArgument)
	}

	s.Defaults = tool.Defaults{
		Color:     obj,
		LineWidth: c.LineWidth,
		Font: draw.Font{
			Family:  c.FontFamily,
			Size:    c.FontSize,
			Weight:  draw.WeightNormal,
			Stretch: draw.StretchNormal,
		},
		PixelateBlock: s.Defaults.PixelateBlock,
	}
	if c.PixelateBlock > 0 {
		s.Defaults.PixelateBlock = c.PixelateBlock
	}
	if c.FontFamily == "" {
		s.Defaults.Font.Family = "Go"
	}
	s.HandleColor = handle
	if c.MaxZoom > 0 {
		s.MaxZoom = c.MaxZoom
	}
	s.HistoryLimit = c.HistoryLimit
	s.DPI = c.DPIZoom
	return s, nil
}

// ParseColor reads "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA".
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, canvas.ErrInvalidArgument)
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return color.NRGBA{}, fmt.Errorf("color %q: %w", s, canvas.ErrInvalidArgument)
		}
	}
	c := gg.Hex(h)
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}, nil
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Watch calls fn with the reloaded preferences whenever path is written.
// Unreadable or invalid files are logged and skipped. It returns when ctx
// is done.
func Watch(ctx context.Context, path string, base Canvas, fn func(Canvas)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("settings path %q: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("watching settings", "path", abs)

	var debounce *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != abs {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			c, err := ReadCanvas(abs, base)
			if err != nil {
				slog.Warn("settings reload failed", "path", abs, "error", err)
				continue
			}
			if _, err := c.Settings(); err != nil {
				slog.Warn("settings rejected", "path", abs, "error", err)
				continue
			}
			slog.Info("settings reloaded", "path", abs)
			fn(c)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("settings watcher error", "error", err)
		}
	}
}
