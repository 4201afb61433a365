package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	config "fare-insight-api/configs"
	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/repository"
	"fare-insight-api/pkg/server"
)

// environment はコマンド実行に必要なサービス一式です。
type environment struct {
	services *server.Services
	close    func() error
}

func openEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg := config.LoadConfig()
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DatabasePath = path
	}
	level, _ := cmd.Flags().GetString("log-level")
	logg := logger.NewLogger(cfg.Environment, level)

	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}

	return &environment{
		services: server.NewServices(cfg, db, logg, nil),
		close:    db.Close,
	}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
