/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ch4uTR/TarimKocum/config"
	"github.com/ch4uTR/TarimKocum/internal/classifier"
	"github.com/ch4uTR/TarimKocum/internal/console"
	"github.com/ch4uTR/TarimKocum/internal/db"
	"github.com/ch4uTR/TarimKocum/internal/describer"
	"github.com/ch4uTR/TarimKocum/internal/server"
	"github.com/ch4uTR/TarimKocum/internal/services"
	"github.com/ch4uTR/TarimKocum/internal/store"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the interactive diagnosis console",
	Long: `Runs Tarım Koçum as a single-process interactive terminal session:
log in or sign up, then diagnose leaf images by file path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		// Console sessions do not need request logs on the terminal.
		log := slog.New(slog.NewTextHandler(io.Discard, nil))

		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer dbConn.Close()

		fileStore, err := server.NewFileStore(ctx, cfg.Storage)
		if err != nil {
			return err
		}

		userService := services.NewUserService(store.NewUserRepository(dbConn))
		diagnosisService := services.NewDiagnosisService(
			store.NewPlantRepository(dbConn),
			fileStore,
			classifier.NewHTTPClient(cfg.Classifier),
			describer.NewGemini(cfg.Gemini, log),
			log,
		)

		if err := console.New(userService, diagnosisService).Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "console error: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
