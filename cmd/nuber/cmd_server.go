package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/internal/kernel"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// nuber serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server, the order feed and the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		return k.App.Serve(ctx, ":"+config.AppPort())
	},
}

// nuber route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Describe()
		if err != nil {
			return err
		}

		infos := k.App.Router().Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// nuber policy:list
var policyListCmd = &cobra.Command{
	Use:   "policy:list",
	Short: "List every GraphQL operation and the roles allowed to call it",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Describe()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "OPERATION\tROLES")
		for _, op := range k.Registry.List() {
			fmt.Fprintf(w, "%s\t%s\n", op.Name, op.Policy)
		}
		return w.Flush()
	},
}
