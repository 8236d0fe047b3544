// Toolgate — a safety layer between LLM tool calls and real CLI tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolgate",
	Short: "Toolgate — structured, policy-checked access to external CLI tools over MCP.",
	Long: `Toolgate exposes external command-line tools (ripgrep, git, curl) as MCP
tools. Every command is assembled through a safety layer that rejects
flag injection, allow-lists programs, confines filesystem paths to
configured roots, and spawns with an argument vector — never a shell.`,
	RunE:          runServe, // Default to serve mode.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
