package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/quell/internal/config"
	"github.com/jwebster45206/quell/internal/logger"
	"github.com/jwebster45206/quell/internal/storage"
	"github.com/jwebster45206/quell/pkg/game"
	"github.com/jwebster45206/quell/pkg/inventory"
	"github.com/jwebster45206/quell/pkg/scheduler"
	"github.com/jwebster45206/quell/pkg/story"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	// The terminal belongs to the UI; logs go to a file.
	if cfg.LogFile == "" {
		cfg.LogFile = "quell.log"
	}
	log := logger.Setup(cfg)

	sessionID := uuid.New()
	if cfg.SessionID != "" {
		sessionID, err = uuid.Parse(cfg.SessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid QUELL_SESSION_ID: %v\n", err)
			os.Exit(1)
		}
	}
	log = logger.WithSession(log, sessionID.String())

	script, err := story.Load(cfg.ScriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load script: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to session storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	inv := inventory.New(store, sessionID, log)
	if err := inv.Load(context.Background()); err != nil {
		// Start with an empty inventory rather than refuse to play.
		log.Error("Failed to load inventory", "error", err)
	}

	timings := game.DefaultTimings()
	timings.CharDelay = cfg.CharDelay
	timings.MessageDelay = cfg.MessageDelay

	sched := scheduler.NewTea()
	g := game.New(game.Options{
		Script:    script,
		Inventory: inv,
		Scheduler: sched,
		Logger:    log,
		Timings:   timings,
	})

	log.Info("Console started", "items", inv.Items())

	p := tea.NewProgram(NewConsoleUI(g, sched, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Session %s\nResume with QUELL_SESSION_ID=%s\n", sessionID, sessionID)
}
