// Package cmd implements the styc CLI's cobra command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "styc",
	Short: "Compile the styc stylesheet language to plain CSS",
	Long: `styc compiles a stylesheet written in an indented/curly-brace
preprocessor language — variables, nested rulesets, mixins, functions,
control flow, first-class colors and numbers, lists and maps, string
interpolation — into plain CSS.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
