/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tarimkocum",
	Short: "Plant disease diagnosis backend",
	Long: `Tarım Koçum lets authenticated users upload plant-leaf photographs,
predicts a disease label with a pretrained classifier, fetches an
explanation from a generative-language API, and stores the result.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
