// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dacolabs/records/internal/server"
	"github.com/dacolabs/records/internal/session"
	"github.com/dacolabs/records/internal/version"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	addr string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the HTTP server exposing every configured collection under /api/{collection}.
The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured address
  records serve

  # Override the listen address
  records serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd, sc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (overrides server.addr)")

	return withSession(cmd, root)
}

func runServe(cmd *cobra.Command, sc *session.Context, opts *serveOptions) error {
	addr := sc.Config.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc.Logger.Info("starting", "env", sc.Config.Server.Env, "remote", sc.Config.Remote.Kind, "version", version.Short())
	srv := server.New(sc.Registry, server.Options{
		Development: sc.Config.Development(),
		Version:     version.Short(),
		Missing:     sc.Config.Missing(),
		Logger:      sc.Logger,
	})
	return srv.Run(ctx, addr)
}
