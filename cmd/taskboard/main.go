package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dragonbytelabs/taskboard/internal/auth"
	"github.com/dragonbytelabs/taskboard/internal/board"
	"github.com/dragonbytelabs/taskboard/internal/config"
	"github.com/dragonbytelabs/taskboard/internal/storage"
	"github.com/dragonbytelabs/taskboard/internal/tui"
)

func main() {
	var (
		configPath string
		dataDir    string
	)

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Single-user task board in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, dataDir)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&configPath, "config", "taskboard.yml", "path to the config file")
	root.Flags().StringVar(&dataDir, "data", "", "data directory (overrides config)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, dataDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = config.FromEnv(cfg)
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}

	logPath := filepath.Join(cfg.Storage.DataDir, "taskboard.log")
	logger := log.Default()
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			logger = log.New(f, "", log.LstdFlags)
			defer f.Close()
		}
	}

	// A store that cannot even be created degrades the session to
	// memory-only; the board stays usable, nothing survives exit.
	var kv storage.KV
	fileKV, err := storage.NewFileKV(cfg.Storage.DataDir, cfg.Storage.QuotaBytes)
	if err != nil {
		logger.Printf("falling back to in-memory storage: %v", err)
		kv = storage.NewMemoryKV(cfg.Storage.QuotaBytes)
	} else {
		kv = fileKV
	}

	adapter := storage.NewAdapter(kv, logger)
	mgr := board.NewManager(adapter, cfg.Limits, logger)
	authSvc := auth.NewService(adapter, cfg.Auth, logger)

	if err := mgr.Initialize(); err != nil {
		// The TUI renders the errored state and offers a retry.
		logger.Printf("initial load failed: %v", err)
	}

	p := tea.NewProgram(tui.NewModel(mgr, authSvc), tea.WithAltScreen())
	// Subscribers fire synchronously from inside the update loop, so the
	// refresh message has to be sent from a separate goroutine.
	mgr.Subscribe(func() {
		go p.Send(tui.StateChanged{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
