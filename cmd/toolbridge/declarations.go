package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/skosovsky/toolbridge/internal/config"
	"github.com/skosovsky/toolbridge/setup"
)

func newDeclarationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "declarations",
		Short: "Print the session setup message with the capability declarations",
		Args:  cobra.NoArgs,
		RunE:  runDeclarations,
	}
}

func runDeclarations(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	reg, err := newRegistry(&canvas{logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(setup.Build(cfg.Setup(), reg))
}
