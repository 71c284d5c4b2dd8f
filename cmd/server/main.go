package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/annotate/internal/asset"
	"github.com/inamate/annotate/internal/clipboard"
	"github.com/inamate/annotate/internal/config"
	"github.com/inamate/annotate/internal/document"
	"github.com/inamate/annotate/internal/export"
	"github.com/inamate/annotate/internal/logging"
	mw "github.com/inamate/annotate/internal/middleware"
	"github.com/inamate/annotate/internal/session"
	"github.com/inamate/annotate/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	logging.SetLogger(slog.Default())

	settings, err := cfg.Canvas.Settings()
	if err != nil {
		slog.Error("canvas settings", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	docService := document.NewService(st)
	docService.SetBackground(settings.Background)
	docHandler := document.NewHandler(docService)

	assetHandler := asset.NewHandler(cfg.AssetDir)
	exportHandler := export.NewHandler(docService.Background)

	// Sessions load the latest revision and save new ones
	docLoader := func(ctx context.Context, documentID string) ([]byte, error) {
		data, _, err := docService.Scene(ctx, documentID, 0)
		return data, err
	}
	docSaver := func(ctx context.Context, documentID string, data []byte) (int, error) {
		rev, err := docService.Save(ctx, documentID, data)
		if err != nil {
			return 0, err
		}
		return rev.Version, nil
	}

	pasteDir := filepath.Join(cfg.AssetDir, "pasted")
	if err := os.MkdirAll(pasteDir, 0o755); err != nil {
		slog.Error("create paste dir", "error", err)
		os.Exit(1)
	}

	opts := session.Options{
		Load:      docLoader,
		Save:      docSaver,
		Settings:  settings,
		AssetPath: assetHandler.Path,
		TempDir:   pasteDir,
	}
	if cfg.SystemClipboard {
		opts.Clipboard = clipboard.System{}
	}
	hub := session.NewHub(opts)
	go hub.Run()

	if cfg.SettingsFile != "" {
		go func() {
			err := config.Watch(ctx, cfg.SettingsFile, cfg.Canvas, func(c config.Canvas) {
				s, err := c.Settings()
				if err != nil {
					return
				}
				slog.Info("canvas settings reloaded")
				docService.SetBackground(s.Background)
				hub.ApplySettings(s)
			})
			if err != nil {
				slog.Error("watch settings", "error", err)
			}
		}()
	}

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset endpoints
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.HandleFunc("/assets/{assetId}", assetHandler.DeleteHandler).Methods("DELETE")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Export endpoint
	r.HandleFunc("/export/png", exportHandler.ExportPNG).Methods("POST")

	// Document API
	docHandler.Routes(r.PathPrefix("/api").Subrouter())

	// WebSocket endpoint
	r.HandleFunc("/ws/documents/{documentId}", hub.ServeWS(cfg.AllowedOrigins))

	// CORS wraps the router so preflight requests reach it before route matching
	handler := mw.Recovery(mw.Logger(mw.CORS(cfg.AllowedOrigins)(r)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		cancel()

		// Stop hub first to save all changed documents
		slog.Info("saving all documents...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
