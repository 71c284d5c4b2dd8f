package config

import (
	"context"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/scene"
)

func stock() Canvas {
	return Canvas{
		ObjectColor:   "#FF0000",
		LineWidth:     2,
		HandleColor:   "#1E90FF",
		Background:    Transparent,
		FontFamily:    "Go",
		FontSize:      12,
		PixelateBlock: 8,
		MaxZoom:       10,
		DPIZoom:       1,
	}
}

func TestStockPreferencesMatchDefaultSettings(t *testing.T) {
	s, err := stock().Settings()
	require.NoError(t, err)
	assert.Equal(t, canvas.DefaultSettings(), s)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#FF0000", color.NRGBA{R: 255, A: 255}, true},
		{"1e90ff", color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 255}, true},
		{"#0f08", color.NRGBA{G: 0xFF, A: 0x88}, true},
		{"#12345680", color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x80}, true},
		{"#abc", color.NRGBA{R: 0xAA, G: 0xBB, B: 0xCC, A: 255}, true},
		{"red", color.NRGBA{}, false},
		{"#GG0000", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, canvas.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsRejectsBadValues(t *testing.T) {
	for name, edit := range map[string]func(*Canvas){
		"color":      func(c *Canvas) { c.ObjectColor = "blue" },
		"background": func(c *Canvas) { c.Background = "none" },
		"line width": func(c *Canvas) { c.LineWidth = 0 },
		"font size":  func(c *Canvas) { c.FontSize = -1 },
		"dpi":        func(c *Canvas) { c.DPIZoom = 0 },
		"history":    func(c *Canvas) { c.HistoryLimit = -2 },
	} {
		t.Run(name, func(t *testing.T) {
			c := stock()
			edit(&c)
			_, err := c.Settings()
			assert.ErrorIs(t, err, canvas.ErrInvalidArgument)
		})
	}
}

func TestSolidBackground(t *testing.T) {
	c := stock()
	c.Background = "#FFFFFF"
	s, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, scene.Background{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}, s.Background)
}

func TestLoadReadsEnvironmentAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(file, []byte("[canvas]\nline_width = 5\nbackground = \"#000000\"\n"), 0o644))

	t.Setenv("PORT", "9090")
	t.Setenv("OBJECT_COLOR", "#00FF00")
	t.Setenv("LINE_WIDTH", "3")
	t.Setenv("SETTINGS_FILE", file)
	t.Setenv("ALLOWED_ORIGINS", "localhost:5173,*.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"localhost:5173", "*.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "#00FF00", cfg.ObjectColor)
	assert.Equal(t, 5.0, cfg.LineWidth, "file overrides environment")
	assert.Equal(t, "#000000", cfg.Background)
	assert.Equal(t, "Go", cfg.FontFamily)
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	t.Setenv("SETTINGS_FILE", filepath.Join(t.TempDir(), "absent.toml"))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.FontSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"localhost:5173", "localhost:3000"}, cfg.AllowedOrigins)
}

func TestReadCanvasRejectsUnknownKeys(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(file, []byte("[canvas]\nline_widht = 5\n"), 0o644))
	base := stock()
	got, err := ReadCanvas(file, base)
	assert.Error(t, err)
	assert.Equal(t, base, got)
}

func TestWatchReloads(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(file, []byte("[canvas]\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Canvas, 8)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, file, stock(), func(c Canvas) { got <- c }) }()

	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(file, []byte("[canvas]\nmax_zoom = 4\n"), 0o644))
		select {
		case c := <-got:
			assert.Equal(t, 4.0, c.MaxZoom)
			assert.Equal(t, "#FF0000", c.ObjectColor)
			cancel()
			require.NoError(t, <-done)
			return
		case <-time.After(250 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
