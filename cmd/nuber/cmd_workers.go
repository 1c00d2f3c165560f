package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuber-eats/nuber/internal/kernel"
)

// nuber schedule:run runs the scheduled tasks without the HTTP server.
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the task scheduler in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Registered scheduled tasks:")
		for _, t := range k.Scheduler.List() {
			fmt.Println("  ", t)
		}
		k.Scheduler.Start(ctx)
		return k.App.Close()
	},
}
