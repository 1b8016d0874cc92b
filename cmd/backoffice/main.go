// Command backoffice serves the lending back-office dashboard.
//
// @title        Lending Back-Office API
// @version      1.0
// @description  Backend for the multi-tenant lending back-office dashboard.
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "backoffice",
	Short:         "Lending back-office dashboard server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, tenantsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
