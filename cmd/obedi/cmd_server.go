package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reflaxess123/obedi/config"
	"github.com/reflaxess123/obedi/internal/kernel"
	"github.com/reflaxess123/obedi/internal/server"
	"github.com/reflaxess123/obedi/pkg/auth"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/migration"
	"github.com/reflaxess123/obedi/pkg/storage"
)

var serveSkipMigrate bool

// obedi serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		if !serveSkipMigrate {
			if err := migration.New(k.DB).Quiet().Run(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		// Without redis nobody else can drain the queue.
		if k.QueueIsLocal {
			workers := k.Queue.StartWorkers(ctx, 2)
			defer workers.Wait()
		}

		err = server.Start(ctx, ":"+config.AppPort(), k.Handler())
		stop()
		if err != nil {
			logger.Error("server: stopped with error", "error", err)
		}
		return err
	},
}

// obedi route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Routes only; nothing is connected.
		k := kernel.New(kernel.Deps{
			Disk:   storage.NewMemoryDisk(config.StorageURL()),
			Tokens: auth.NewTokensFromConfig(),
		})

		infos := k.Router().Routes()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No named routes registered.")
			return nil
		}

		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSkipMigrate, "no-migrate", false, "Do not run pending migrations on start")
}
