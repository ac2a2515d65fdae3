// Package cmd implements the CLI commands for PaperPipe using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paperpipe",
	Short: "Convert scholarly-article markup into Markdown",
	Long: `PaperPipe is a deterministic conversion pipeline for scholarly articles.
It parses JATS XML (PubMed Central) and LaTeXML HTML (arXiv) into a shared
document representation and renders it as Markdown.

Usage:
  paperpipe convert <file> [flags]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
