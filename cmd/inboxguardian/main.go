package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"inboxguardian/internal/analysis"
	"inboxguardian/internal/app"
	"inboxguardian/internal/config"
	"inboxguardian/internal/store"
)

func main() {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load config: %v\n", err)
		os.Exit(1)
	}

	dataDir := config.DefaultDataDir()
	tokens, err := store.Open(filepath.Join(dataDir, "credentials.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open credential store: %v\n", err)
		os.Exit(1)
	}
	defer tokens.Close()

	analyzer := analysis.New(cfg.Analysis.APIKey, cfg.Analysis.Model)

	m := app.New(cfg, tokens, analyzer, dataDir)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetProgram(p)
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
	if fm, ok := finalModel.(*app.Model); ok && fm.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", fm.Err)
		os.Exit(1)
	}
}
