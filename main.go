package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SamuelAraag/pr-manager-cloud/internal/config"
	"github.com/SamuelAraag/pr-manager-cloud/internal/logger"
	"github.com/SamuelAraag/pr-manager-cloud/internal/store"
	"github.com/SamuelAraag/pr-manager-cloud/internal/tui"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogFilePath)
	defer log.Sync()

	st, err := store.Open(cfg.StateDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open state db: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.New(cfg, st, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
