// Command obedi runs the API server and its maintenance tasks:
//
//	obedi serve             # migrate and start the HTTP server
//	obedi migrate           # run pending migrations
//	obedi migrate:rollback
//	obedi migrate:status
//	obedi seed              # demo users and lunches
//	obedi queue:work        # queue workers + scheduled storage sweep
//	obedi storage:sweep     # one reconciliation pass over stored images
//	obedi route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers migrations and seeders from init().
	_ "github.com/reflaxess123/obedi/database/migrations"
	_ "github.com/reflaxess123/obedi/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "obedi",
	Short:         "obedi: lunches and orders API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(storageSweepCmd)
}
