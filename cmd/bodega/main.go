// Command bodega runs the inventory API and its maintenance tasks.
//
//	bodega migrate && bodega seed
//	bodega serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bodega",
	Short:         "Inventory and order management API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, routeListCmd)
	rootCmd.AddCommand(migrateCmd, migrateRollbackCmd, migrateStatusCmd, seedCmd, sqlFunctionsCmd)
	rootCmd.AddCommand(queueWorkCmd, queueFailedCmd, scheduleRunCmd)
	rootCmd.AddCommand(tokenIssueCmd, userCreateCmd, reportExportCmd, reportCompareCmd)
}
