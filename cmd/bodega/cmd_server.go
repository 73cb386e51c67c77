package main

import (
	"context"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bodega/internal/kernel"
	"github.com/shashiranjanraj/bodega/internal/server"
)

var serveOpts = server.DefaultOptions()

// bodega serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start HTTP, gRPC, queue workers and the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot()
		if err != nil {
			return err
		}
		defer k.Close()
		if err := k.Background(); err != nil {
			return err
		}
		return server.Serve(ctx, k, serveOpts)
	},
}

// bodega route:list
var routeListCmd = &cobra.Command{
	Use:     "route:list",
	Aliases: []string{"routes"},
	Short:   "List every named route",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := kernel.New().Application()
		if err != nil {
			return err
		}
		infos := a.Router().Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		rows := [][]string{{"METHOD", "PATH", "NAME"}}
		for _, ri := range infos {
			rows = append(rows, []string{ri.Method, ri.Path, ri.Name})
		}
		table(rows)
		return nil
	},
}

func init() {
	f := serveCmd.Flags()
	f.IntVarP(&serveOpts.Workers, "workers", "w", serveOpts.Workers, "queue workers to run in-process (0 disables)")
	f.BoolVar(&serveOpts.Scheduler, "scheduler", serveOpts.Scheduler, "run the scheduler in-process")
	f.BoolVar(&serveOpts.GRPC, "grpc", serveOpts.GRPC, "start the gRPC health server")
}
