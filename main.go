package main

import (
	"fmt"
	"os"

	"github.com/setwise/setkv/cmd"
	"github.com/setwise/setkv/config"
	"github.com/setwise/setkv/db"
	"github.com/setwise/setkv/log"
	"github.com/setwise/setkv/node"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "setkv",
		Short: "An in-memory key-value store built around the SET data type",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := log.InitLogger(cfg.LogLevel); err != nil {
				return err
			}
			db.MaxIntsetEntries = cfg.SetMaxIntsetEntries
			srv := node.NewServer(cfg.Port, db.New(0))
			return srv.Run()
		},
	}

	var host string
	var port int
	cli := &cobra.Command{
		Use:   "cli",
		Short: "Interactive client",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.RunCLI(host, port)
		},
	}
	cli.Flags().StringVarP(&host, "host", "H", "127.0.0.1", "server hostname")
	cli.Flags().IntVarP(&port, "port", "p", 6380, "server port")

	root.AddCommand(serve, cli)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
